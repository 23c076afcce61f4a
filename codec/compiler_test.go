package codec

import (
	"errors"
	"sync"
	"testing"

	lerrors "github.com/wippyai/binlayout/errors"
	"github.com/wippyai/binlayout/schema"
)

func rgb565(t *testing.T) *schema.Packed {
	t.Helper()
	p, err := schema.NewPacked("Rgb565", 16,
		schema.BitField("r", schema.UNorm8, 5),
		schema.BitField("g", schema.UNorm8, 6),
		schema.BitField("b", schema.UNorm8, 5),
	)
	if err != nil {
		t.Fatalf("NewPacked: %v", err)
	}
	return p
}

func nested(t *testing.T) *schema.Record {
	t.Helper()
	str, err := schema.NewString(4, schema.EncodingUTF8)
	if err != nil {
		t.Fatalf("NewString: %v", err)
	}
	n2, err := schema.NewRecord("N2", schema.Field("s", str))
	if err != nil {
		t.Fatalf("NewRecord: %v", err)
	}
	n1, err := schema.NewRecord("N1", schema.Field("s", str), schema.Field("n", n2))
	if err != nil {
		t.Fatalf("NewRecord: %v", err)
	}
	n0, err := schema.NewRecord("N0", schema.Field("s", str), schema.Field("n", n1))
	if err != nil {
		t.Fatalf("NewRecord: %v", err)
	}
	return n0
}

func TestScalarContracts(t *testing.T) {
	tests := []struct {
		typ      schema.Scalar
		access   Access
		conv     Conversion
		external uint32
		widen    bool
		signed   bool
	}{
		{schema.U8, AccessInteger, ConvNone, 32, true, false},
		{schema.S32, AccessInteger, ConvNone, 32, false, true},
		{schema.U64, AccessInteger, ConvNone, 64, false, false},
		{schema.UNorm8, AccessNormalized, ConvNormalized32, 32, true, false},
		{schema.SNorm16, AccessNormalized, ConvNormalized32, 32, true, true},
		{schema.UNorm32, AccessNormalized, ConvNormalized32, 32, false, false},
		{schema.SNorm64, AccessNormalized, ConvNormalized64, 64, false, true},
		{schema.F16, AccessHalf, ConvHalf, 64, true, false},
		{schema.F32, AccessFloat, ConvNone, 32, false, false},
		{schema.F64, AccessFloat, ConvNone, 64, false, false},
	}

	c := NewCompiler(nil)
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			f, err := c.Compile(tt.typ)
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			if f.Access != tt.access {
				t.Errorf("Access = %s, want %s", f.Access, tt.access)
			}
			if f.Conversion != tt.conv {
				t.Errorf("Conversion = %s, want %s", f.Conversion, tt.conv)
			}
			if f.ExternalBits != tt.external {
				t.Errorf("ExternalBits = %d, want %d", f.ExternalBits, tt.external)
			}
			if f.Widen != tt.widen {
				t.Errorf("Widen = %v, want %v", f.Widen, tt.widen)
			}
			if f.Signed != tt.signed {
				t.Errorf("Signed = %v, want %v", f.Signed, tt.signed)
			}
			if f.Width != tt.typ.Bits() {
				t.Errorf("Width = %d, want %d", f.Width, tt.typ.Bits())
			}
		})
	}
}

func TestPackedContracts(t *testing.T) {
	f, err := NewCompiler(nil).Compile(rgb565(t))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if f.Access != AccessPacked || f.Width != 16 || f.Size != 2 {
		t.Fatalf("got access %s width %d size %d", f.Access, f.Width, f.Size)
	}

	want := map[string]PackedContract{
		"r": {ContainerBits: 16, Low: 0, High: 4, Shift: 11, FieldMask: 0x1F, ClearMask: 0x07FF},
		"g": {ContainerBits: 16, Low: 5, High: 10, Shift: 5, FieldMask: 0x3F, ClearMask: 0xF81F},
		"b": {ContainerBits: 16, Low: 11, High: 15, Shift: 0, FieldMask: 0x1F, ClearMask: 0xFFE0},
	}
	for name, pc := range want {
		child, ok := f.Child(name)
		if !ok {
			t.Fatalf("child %s missing", name)
		}
		if *child.Packed != pc {
			t.Errorf("%s: got %+v, want %+v", name, *child.Packed, pc)
		}
		if child.Access != AccessNormalized || child.Conversion != ConvNormalized32 {
			t.Errorf("%s: access %s conversion %s", name, child.Access, child.Conversion)
		}
	}
}

func TestPackFloat(t *testing.T) {
	f, err := NewCompiler(nil).Compile(rgb565(t))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	got, err := f.PackFloat(1, 0, 0)
	if err != nil {
		t.Fatalf("PackFloat: %v", err)
	}
	if got != 0b11111_000000_00000 {
		t.Errorf("PackFloat(1,0,0) = %#04x, want 0xf800", got)
	}

	if _, err := f.Pack(1, 2); !errors.Is(err, &lerrors.Error{Phase: lerrors.PhaseAccess, Kind: lerrors.KindInvalidInput}) {
		t.Errorf("Pack with wrong count: %v", err)
	}
}

func TestNormalizedConversion(t *testing.T) {
	p, err := schema.NewPacked("Signed", 8,
		schema.BitField("a", schema.SNorm8, 4),
		schema.BitField("b", schema.UNorm8, 4),
	)
	if err != nil {
		t.Fatalf("NewPacked: %v", err)
	}
	f, err := NewCompiler(nil).Compile(p)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	a, _ := f.Child("a")

	if got := a.FromNormalized(-1); got != 0x8 {
		t.Errorf("FromNormalized(-1) = %#x, want 0x8", got)
	}
	if got := a.FromNormalized(1); got != 0x7 {
		t.Errorf("FromNormalized(1) = %#x, want 0x7", got)
	}
	if got := a.ToNormalized(0x8); got != -1 {
		t.Errorf("ToNormalized(0x8) = %v, want -1", got)
	}
	if got := a.ToNormalized(0); got != 0 {
		t.Errorf("ToNormalized(0) = %v, want 0", got)
	}
	for raw := uint64(0); raw < 16; raw++ {
		if got := a.FromNormalized(a.ToNormalized(raw)); got != raw {
			t.Errorf("round trip of %#x gave %#x", raw, got)
		}
	}
}

func TestWideNormalizedPrecision(t *testing.T) {
	p, err := schema.NewPacked("Wide", 64,
		schema.BitField("w", schema.UNorm64, 48),
		schema.BitField("pad", schema.U16, 16),
	)
	if err != nil {
		t.Fatalf("NewPacked: %v", err)
	}
	f, err := NewCompiler(nil).Compile(p)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	w, _ := f.Child("w")
	for _, raw := range []uint64{0, 1, 1 << 24, 123456789012345, 1<<48 - 2, 1<<48 - 1} {
		if got := w.FromNormalized(w.ToNormalized(raw)); got != raw {
			t.Errorf("48-bit round trip of %d gave %d", raw, got)
		}
	}

	full, err := NewCompiler(nil).Compile(schema.UNorm64)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	tests := []struct {
		raw  uint64
		want uint64
	}{
		{0, 0},
		{1<<64 - 1, 1<<64 - 1},
		{1<<64 - 2, 1<<64 - 1},
	}
	for _, tt := range tests {
		if got := full.FromNormalized(full.ToNormalized(tt.raw)); got != tt.want {
			t.Errorf("64-bit round trip of %d gave %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestRecordContracts(t *testing.T) {
	r, err := schema.NewSizedRecord("Floats", 16,
		schema.Field("f16", schema.F16),
		schema.Field("f32", schema.F32),
		schema.Field("f64", schema.F64),
		schema.Padding(2),
	)
	if err != nil {
		t.Fatalf("NewSizedRecord: %v", err)
	}
	f, err := NewCompiler(nil).Compile(r)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if f.Size != 16 {
		t.Errorf("Size = %d, want 16", f.Size)
	}
	for name, off := range map[string]uint32{"f16": 0, "f32": 2, "f64": 6} {
		child, ok := f.Child(name)
		if !ok {
			t.Fatalf("child %s missing", name)
		}
		if child.Offset != off || child.AbsOffset != off {
			t.Errorf("%s: offset %d abs %d, want %d", name, child.Offset, child.AbsOffset, off)
		}
	}
}

func TestNestedOffsetAccumulation(t *testing.T) {
	f, err := NewCompiler(nil).Compile(nested(t))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	tests := []struct {
		path    []string
		abs     uint32
		payload uint32
	}{
		{[]string{"s"}, 0, 4},
		{[]string{"n", "s"}, 12, 16},
		{[]string{"n", "n", "s"}, 24, 28},
	}
	for _, tt := range tests {
		s, err := f.Lookup(tt.path...)
		if err != nil {
			t.Fatalf("Lookup(%v): %v", tt.path, err)
		}
		if s.AbsOffset != tt.abs {
			t.Errorf("%v: AbsOffset = %d, want %d", tt.path, s.AbsOffset, tt.abs)
		}
		if got := s.AbsOffset + s.String.PayloadOffset; got != tt.payload {
			t.Errorf("%v: payload at %d, want %d", tt.path, got, tt.payload)
		}
		if s.Size != 12 {
			t.Errorf("%v: Size = %d, want 12", tt.path, s.Size)
		}
	}

	if _, err := f.Lookup("n", "missing"); !errors.Is(err, &lerrors.Error{Phase: lerrors.PhaseAccess, Kind: lerrors.KindNotFound}) {
		t.Errorf("Lookup of missing field: %v", err)
	}
}

func TestBoolSetContracts(t *testing.T) {
	names := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	b, err := schema.NewBoolSet("Flags", names...)
	if err != nil {
		t.Fatalf("NewBoolSet: %v", err)
	}
	f, err := NewCompiler(nil).Compile(b)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if f.Size != 2 {
		t.Errorf("Size = %d, want 2", f.Size)
	}

	tests := []struct {
		name  string
		octet uint32
		bit   uint8
		mask  uint8
	}{
		{"a", 0, 7, 0x80},
		{"h", 0, 0, 0x01},
		{"i", 1, 7, 0x80},
		{"j", 1, 6, 0x40},
	}
	for _, tt := range tests {
		c, ok := f.Child(tt.name)
		if !ok {
			t.Fatalf("flag %s missing", tt.name)
		}
		if c.Offset != tt.octet || c.Flag.Bit != tt.bit || c.Flag.Mask != tt.mask {
			t.Errorf("%s: octet %d bit %d mask %#x, want %d %d %#x",
				tt.name, c.Offset, c.Flag.Bit, c.Flag.Mask, tt.octet, tt.bit, tt.mask)
		}
	}
}

func TestSequenceContracts(t *testing.T) {
	c := NewCompiler(nil)

	m, err := c.Compile(schema.Matrix{Elem: schema.F32, Dim: 4})
	if err != nil {
		t.Fatalf("Compile matrix: %v", err)
	}
	if m.Count != 16 || m.Stride != 4 || m.Dim != 4 || m.Size != 64 {
		t.Errorf("matrix: count %d stride %d dim %d size %d", m.Count, m.Stride, m.Dim, m.Size)
	}

	inner, _ := schema.NewRecord("Pair", schema.Field("x", schema.U16), schema.Field("y", schema.U16))
	arr, err := schema.NewArray(inner, 3)
	if err != nil {
		t.Fatalf("NewArray: %v", err)
	}
	a, err := c.Compile(arr)
	if err != nil {
		t.Fatalf("Compile array: %v", err)
	}
	if a.Stride != 4 || a.Count != 3 || a.Size != 12 {
		t.Errorf("array: stride %d count %d size %d", a.Stride, a.Count, a.Size)
	}
	if y, ok := a.Elem.Child("y"); !ok || y.Offset != 2 {
		t.Errorf("array element field y: %+v", y)
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name string
		typ  schema.Type
		want error
	}{
		{
			name: "size mismatch",
			typ: &schema.Record{Name: "R", Size: 16, Fields: []schema.RecordField{
				schema.Field("a", schema.F16), schema.Field("b", schema.F32), schema.Field("c", schema.F64),
			}},
			want: lerrors.ErrSizeMismatch,
		},
		{
			name: "container",
			typ: &schema.Packed{Name: "P", Bits: 12, Fields: []schema.PackedField{
				schema.BitField("a", schema.U16, 12),
			}},
			want: lerrors.ErrUnsupportedContainerSize,
		},
		{
			name: "field width",
			typ: &schema.Packed{Name: "P", Bits: 64, Fields: []schema.PackedField{
				schema.BitField("a", schema.U64, 72),
			}},
			want: lerrors.ErrUnsupportedFieldWidth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCompiler(nil)
			if _, err := c.Compile(tt.typ); !errors.Is(err, tt.want) {
				t.Fatalf("Compile() = %v, want %v", err, tt.want)
			}
			if len(c.cache) != 0 {
				t.Error("failed compile should not be cached")
			}
		})
	}
}

func TestCompileConcurrent(t *testing.T) {
	c := NewCompiler(nil)
	r := nested(t)

	var wg sync.WaitGroup
	results := make([]*Field, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			f, err := c.Compile(r)
			if err != nil {
				t.Errorf("Compile: %v", err)
				return
			}
			results[i] = f
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(results); i++ {
		if results[i] != results[0] {
			t.Fatal("concurrent compiles should share the cached tree")
		}
	}
}

func TestStringPolicyPropagates(t *testing.T) {
	str, _ := schema.NewString(4, schema.EncodingRaw)
	f, err := NewCompiler(&Config{StringPolicy: TruncateReject}).Compile(str)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if f.String.Policy != TruncateReject {
		t.Errorf("Policy = %s, want reject", f.String.Policy)
	}
}

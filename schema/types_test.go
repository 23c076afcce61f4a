package schema

import (
	"errors"
	"testing"

	lerrors "github.com/wippyai/binlayout/errors"
)

func TestNewScalar(t *testing.T) {
	tests := []struct {
		kind    Kind
		bits    uint32
		wantErr bool
	}{
		{KindSigned, 8, false},
		{KindUnsigned, 64, false},
		{KindSignedNormalized, 16, false},
		{KindUnsignedNormalized, 32, false},
		{KindFloat, 16, false},
		{KindFloat, 64, false},
		{KindSigned, 12, true},
		{KindUnsigned, 128, true},
		{KindFloat, 8, true},
		{KindFloat, 128, true},
		{KindUnsignedNormalized, 0, true},
	}

	for _, tt := range tests {
		s := Scalar{kind: tt.kind, bits: tt.bits}
		t.Run(s.String(), func(t *testing.T) {
			got, err := NewScalar(tt.kind, tt.bits)
			if tt.wantErr {
				if !errors.Is(err, lerrors.ErrUnsupportedWidth) {
					t.Fatalf("NewScalar(%s, %d) err = %v, want unsupported width", tt.kind, tt.bits, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewScalar(%s, %d) unexpected error: %v", tt.kind, tt.bits, err)
			}
			if got.SizeInBits() != uint64(tt.bits) {
				t.Errorf("SizeInBits() = %d, want %d", got.SizeInBits(), tt.bits)
			}
		})
	}
}

func TestScalarString(t *testing.T) {
	tests := []struct {
		s    Scalar
		want string
	}{
		{S8, "s8"},
		{U64, "u64"},
		{SNorm16, "snorm16"},
		{UNorm8, "unorm8"},
		{F16, "f16"},
		{F64, "f64"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestSizes(t *testing.T) {
	vec3, _ := NewVector(F32, 3)
	mat4, _ := NewMatrix(F32, 4)
	str, _ := NewString(16, EncodingUTF8)
	raw, _ := NewString(8, EncodingRaw)
	arr, err := NewArray(U16, 10)
	if err != nil {
		t.Fatalf("NewArray: %v", err)
	}
	flags, err := NewBoolSet("Caps", "a", "b", "c", "d", "e", "f", "g", "h", "i")
	if err != nil {
		t.Fatalf("NewBoolSet: %v", err)
	}
	rgb, err := NewPacked("Rgb565", 16,
		BitField("r", UNorm8, 5),
		BitField("g", UNorm8, 6),
		BitField("b", UNorm8, 5),
	)
	if err != nil {
		t.Fatalf("NewPacked: %v", err)
	}
	rec, err := NewRecord("Vertex",
		Field("pos", vec3),
		Field("color", rgb),
		Padding(2),
		Field("name", str),
	)
	if err != nil {
		t.Fatalf("NewRecord: %v", err)
	}

	tests := []struct {
		name   string
		typ    Type
		octets uint64
	}{
		{"scalar", U32, 4},
		{"half", F16, 2},
		{"vec3<f32>", vec3, 12},
		{"mat4<f32>", mat4, 64},
		{"utf8 string", str, 24},
		{"raw string", raw, 8},
		{"array", arr, 20},
		{"boolset rounds up", flags, 2},
		{"packed", rgb, 2},
		{"record sums fields", rec, 12 + 2 + 2 + 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.typ.SizeInOctets(); got != tt.octets {
				t.Errorf("SizeInOctets() = %d, want %d", got, tt.octets)
			}
			if got := tt.typ.SizeInBits(); got != tt.octets*8 {
				t.Errorf("SizeInBits() = %d, want %d", got, tt.octets*8)
			}
		})
	}
}

func TestPackedSizeIsDeclared(t *testing.T) {
	p, err := NewPacked("Short", 16, BitField("a", U8, 3))
	if err != nil {
		t.Fatalf("NewPacked: %v", err)
	}
	if p.SizeInBits() != 16 {
		t.Errorf("SizeInBits() = %d, want declared 16", p.SizeInBits())
	}
}

func TestValidateErrors(t *testing.T) {
	vec, _ := NewVector(F32, 2)

	tests := []struct {
		name string
		typ  Type
		want error
	}{
		{
			name: "float in packed",
			typ:  &Packed{Name: "P", Bits: 16, Fields: []PackedField{BitField("f", F16, 16)}},
			want: lerrors.ErrUnsupportedPackedType,
		},
		{
			name: "vector in packed",
			typ:  &Packed{Name: "P", Bits: 64, Fields: []PackedField{BitField("v", vec, 64)}},
			want: lerrors.ErrUnsupportedPackedType,
		},
		{
			name: "packed field wider than 64",
			typ:  &Packed{Name: "P", Bits: 64, Fields: []PackedField{BitField("a", U64, 65)}},
			want: lerrors.ErrUnsupportedFieldWidth,
		},
		{
			name: "zero scalar in packed",
			typ:  &Packed{Name: "P", Bits: 8, Fields: []PackedField{BitField("z", Scalar{}, 8)}},
			want: lerrors.ErrUnsupportedWidth,
		},
		{
			name: "odd width scalar in packed",
			typ:  &Packed{Name: "P", Bits: 16, Fields: []PackedField{BitField("a", Scalar{kind: KindUnsigned, bits: 12}, 16)}},
			want: lerrors.ErrUnsupportedWidth,
		},
		{
			name: "duplicate record field",
			typ:  &Record{Name: "R", Fields: []RecordField{Field("a", U8), Field("a", U16)}},
			want: lerrors.ErrDuplicateName,
		},
		{
			name: "duplicate packed field",
			typ:  &Packed{Name: "P", Bits: 8, Fields: []PackedField{BitField("a", U8, 4), BitField("a", U8, 4)}},
			want: lerrors.ErrDuplicateName,
		},
		{
			name: "duplicate flag",
			typ:  &BoolSet{Name: "F", Flags: []string{"x", "x"}},
			want: lerrors.ErrDuplicateName,
		},
		{
			name: "bad width inside record",
			typ:  &Record{Name: "R", Fields: []RecordField{Field("a", Scalar{kind: KindFloat, bits: 8})}},
			want: lerrors.ErrUnsupportedWidth,
		},
		{
			name: "bad vector length",
			typ:  Vector{Elem: F32, Count: 5},
			want: &lerrors.Error{Phase: lerrors.PhaseType, Kind: lerrors.KindInvalidInput},
		},
		{
			name: "zero padding",
			typ:  &Record{Name: "R", Fields: []RecordField{Padding(0)}},
			want: &lerrors.Error{Phase: lerrors.PhaseType, Kind: lerrors.KindInvalidInput},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.typ)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestValidateRecursive(t *testing.T) {
	r := &Record{Name: "Loop"}
	r.Fields = []RecordField{Field("self", r)}

	err := Validate(r)
	if !errors.Is(err, &lerrors.Error{Phase: lerrors.PhaseType, Kind: lerrors.KindRecursiveType}) {
		t.Fatalf("Validate() = %v, want recursive type", err)
	}
}

func TestValidateSharedSubtype(t *testing.T) {
	inner, err := NewRecord("Inner", Field("a", U8))
	if err != nil {
		t.Fatalf("NewRecord: %v", err)
	}
	// The same type used twice is not recursion.
	if _, err := NewRecord("Outer", Field("x", inner), Field("y", inner)); err != nil {
		t.Fatalf("NewRecord: %v", err)
	}
}

func TestBoolSetFlagIndex(t *testing.T) {
	b, err := NewBoolSet("Perm", "read", "write", "exec")
	if err != nil {
		t.Fatalf("NewBoolSet: %v", err)
	}
	if i, ok := b.FlagIndex("exec"); !ok || i != 2 {
		t.Errorf("FlagIndex(exec) = %d, %v; want 2, true", i, ok)
	}
	if _, ok := b.FlagIndex("none"); ok {
		t.Error("FlagIndex(none) should not be found")
	}
}

func TestTypeStrings(t *testing.T) {
	arr, _ := NewArray(U8, 4)
	tests := []struct {
		typ  Type
		want string
	}{
		{arr, "[4]u8"},
		{Vector{Elem: F32, Count: 3}, "vec3<f32>"},
		{Matrix{Elem: F64, Dim: 2}, "mat2<f64>"},
		{String{MaxOctets: 16}, "string<16>"},
		{String{MaxOctets: 8, Encoding: EncodingRaw}, "string<8,raw>"},
		{&Record{Name: "gfx.Vertex"}, "gfx.Vertex"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

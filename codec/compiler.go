package codec

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/binlayout/errors"
	"github.com/wippyai/binlayout/layout"
	"github.com/wippyai/binlayout/schema"
)

// Compiler turns schema types into accessor contracts. It is safe for
// concurrent use; compiled trees are immutable and cached per type.
type Compiler struct {
	calc  *layout.Calculator
	cache map[schema.Type]*Field
	cfg   Config
	mu    sync.Mutex
}

// NewCompiler creates a compiler. A nil cfg selects the defaults.
func NewCompiler(cfg *Config) *Compiler {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Compiler{
		calc:  layout.NewCalculator(),
		cache: make(map[schema.Type]*Field),
		cfg:   *cfg,
	}
}

// Compile returns the accessor tree rooted at t.
func (c *Compiler) Compile(t schema.Type) (*Field, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if f, ok := c.cache[t]; ok {
		return f, nil
	}
	if err := schema.Validate(t); err != nil {
		return nil, err
	}

	f, err := c.compile(t, "", []string{t.String()}, 0, 0)
	if err != nil {
		return nil, err
	}
	c.cache[t] = f

	Logger().Debug("type compiled",
		zap.String("type", t.String()),
		zap.Uint32("size", f.Size))
	return f, nil
}

// Layout exposes the record layout used by the compiler.
func (c *Compiler) Layout(r *schema.Record) (*layout.RecordInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calc.Record(r)
}

func (c *Compiler) compile(t schema.Type, name string, path []string, offset, abs uint32) (*Field, error) {
	f := &Field{
		Type:      t,
		TypeName:  t.String(),
		Name:      name,
		Path:      path,
		Offset:    offset,
		AbsOffset: abs,
		Size:      uint32(t.SizeInOctets()),
	}

	switch v := t.(type) {
	case schema.Scalar:
		scalarContract(f, v, v.Bits())
	case schema.String:
		f.Access = AccessString
		f.String = &StringContract{
			PayloadOffset: v.Encoding.PrefixOctets(),
			MaxOctets:     v.MaxOctets,
			Encoding:      v.Encoding,
			Policy:        c.cfg.StringPolicy,
		}
	case schema.Vector:
		f.Access = AccessVector
		c.sequence(f, v.Elem, v.Count, path, abs)
	case schema.Matrix:
		f.Access = AccessMatrix
		f.Dim = v.Dim
		c.sequence(f, v.Elem, v.Dim*v.Dim, path, abs)
	case *schema.Array:
		f.Access = AccessArray
		elem, err := c.compile(v.Elem, "", appendPath(path, "[]"), 0, abs)
		if err != nil {
			return nil, err
		}
		f.Elem = elem
		f.Count = v.Count
		f.Stride = elem.Size
	case *schema.BoolSet:
		f.Access = AccessBoolSet
		for i, flag := range v.Flags {
			bit := uint8(7 - i%8)
			f.addChild(&Field{
				Type:      t,
				TypeName:  "flag",
				Name:      flag,
				Path:      appendPath(path, flag),
				Access:    AccessFlag,
				Offset:    uint32(i / 8),
				AbsOffset: abs + uint32(i/8),
				Size:      1,
				Width:     1,
				Flag:      &FlagContract{Index: i, Bit: bit, Mask: 1 << bit},
			})
		}
	case *schema.Record:
		f.Access = AccessRecord
		info, err := c.calc.Record(v)
		if err != nil {
			return nil, err
		}
		for _, fo := range info.Fields {
			child, err := c.compile(fo.Type, fo.Name, appendPath(path, fo.Name), fo.Offset, abs+fo.Offset)
			if err != nil {
				return nil, err
			}
			f.addChild(child)
		}
		f.Size = info.Size
	case *schema.Packed:
		f.Access = AccessPacked
		info, err := c.calc.Packed(v)
		if err != nil {
			return nil, err
		}
		f.Width = info.ContainerBits
		for _, br := range info.Fields {
			pf, _ := v.Field(br.Name)
			child := &Field{
				Type:      pf.Type,
				TypeName:  pf.Type.String(),
				Name:      br.Name,
				Path:      appendPath(path, br.Name),
				AbsOffset: abs,
				Size:      f.Size,
			}
			scalarContract(child, pf.Type.(schema.Scalar), br.Width())
			shift := Shift(info.ContainerBits, br.Low, br.Width())
			child.Packed = &PackedContract{
				ContainerBits: info.ContainerBits,
				Low:           br.Low,
				High:          br.High,
				Shift:         shift,
				FieldMask:     FieldMask(br.Width()),
				ClearMask:     ClearMask(info.ContainerBits, shift, br.Width()),
			}
			f.addChild(child)
		}
	default:
		return nil, errors.New(errors.PhaseType, errors.KindUnsupported).
			Path(path...).
			Detail("no codec for %T", t).
			Build()
	}
	return f, nil
}

func (c *Compiler) sequence(f *Field, elem schema.Scalar, count uint32, path []string, abs uint32) {
	e := &Field{
		Type:      elem,
		TypeName:  elem.String(),
		Path:      appendPath(path, "[]"),
		AbsOffset: abs,
		Size:      uint32(elem.SizeInOctets()),
	}
	scalarContract(e, elem, elem.Bits())
	f.Elem = e
	f.Count = count
	f.Stride = e.Size
}

// scalarContract fills the numeric accessor contract for a stored width.
// The external width is 32 bits for stored widths up to 32 and 64 above.
func scalarContract(f *Field, s schema.Scalar, width uint32) {
	f.Width = width
	f.Signed = s.Kind().IsSigned()
	f.ExternalBits = 32
	if width > 32 {
		f.ExternalBits = 64
	}

	switch s.Kind() {
	case schema.KindSigned, schema.KindUnsigned:
		f.Access = AccessInteger
		f.Widen = width != f.ExternalBits
	case schema.KindSignedNormalized, schema.KindUnsignedNormalized:
		f.Access = AccessNormalized
		f.Conversion = ConvNormalized32
		if width > 32 {
			f.Conversion = ConvNormalized64
		}
		f.Widen = width != f.ExternalBits
	case schema.KindFloat:
		if width == 16 {
			f.Access = AccessHalf
			f.Conversion = ConvHalf
			f.ExternalBits = 64
			f.Widen = true
			return
		}
		f.Access = AccessFloat
		f.ExternalBits = width
	}
}

func appendPath(path []string, seg string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, seg)
}

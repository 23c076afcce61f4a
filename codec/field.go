package codec

import (
	"github.com/wippyai/binlayout/codec/internal/nfp"
	"github.com/wippyai/binlayout/errors"
	"github.com/wippyai/binlayout/schema"
)

// Access selects the accessor family of a field.
type Access uint8

const (
	AccessInteger Access = iota
	AccessNormalized
	AccessFloat
	AccessHalf
	AccessFlag
	AccessString
	AccessBoolSet
	AccessVector
	AccessMatrix
	AccessArray
	AccessRecord
	AccessPacked
)

var accessNames = [...]string{
	AccessInteger:    "integer",
	AccessNormalized: "normalized",
	AccessFloat:      "float",
	AccessHalf:       "half",
	AccessFlag:       "flag",
	AccessString:     "string",
	AccessBoolSet:    "boolset",
	AccessVector:     "vector",
	AccessMatrix:     "matrix",
	AccessArray:      "array",
	AccessRecord:     "record",
	AccessPacked:     "packed",
}

func (a Access) String() string {
	if int(a) < len(accessNames) {
		return accessNames[a]
	}
	return "unknown"
}

// MarshalText lets contracts serialize with readable access names.
func (a Access) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// Composite reports whether the field is reached through a sub-view.
func (a Access) Composite() bool {
	return a >= AccessString
}

// Conversion selects the numeric conversion between the stored raw value and
// the float exposed to callers.
type Conversion uint8

const (
	ConvNone Conversion = iota
	ConvNormalized32
	ConvNormalized64
	ConvHalf
)

func (c Conversion) String() string {
	switch c {
	case ConvNone:
		return "none"
	case ConvNormalized32:
		return "nfp32"
	case ConvNormalized64:
		return "nfp64"
	case ConvHalf:
		return "half"
	default:
		return "unknown"
	}
}

func (c Conversion) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// PackedContract locates a field inside a packed container.
type PackedContract struct {
	ContainerBits uint32 `json:"container_bits"`
	Low           uint32 `json:"low"`
	High          uint32 `json:"high"`
	Shift         uint32 `json:"shift"`
	FieldMask     uint64 `json:"field_mask"`
	ClearMask     uint64 `json:"clear_mask"`
}

// FlagContract locates one flag of a boolean set. The field offset is the
// octet holding the flag.
type FlagContract struct {
	Index int   `json:"index"`
	Bit   uint8 `json:"bit"`
	Mask  uint8 `json:"mask"`
}

// StringContract describes a fixed-capacity string slot.
type StringContract struct {
	PayloadOffset uint32          `json:"payload_offset"`
	MaxOctets     uint32          `json:"max_octets"`
	Encoding      schema.Encoding `json:"encoding"`
	Policy        TruncatePolicy  `json:"policy"`
}

// Field is the compiled accessor contract of one node of a type. Offsets are
// in octets; Offset is relative to the parent node and AbsOffset to the start
// of the compiled root, so a nested field's AbsOffset is the sum of its own
// offset and every enclosing offset.
type Field struct {
	Type         schema.Type `json:"-"`
	TypeName     string      `json:"type"`
	Name         string      `json:"name,omitempty"`
	Path         []string    `json:"path,omitempty"`
	Access       Access      `json:"access"`
	Offset       uint32      `json:"offset"`
	AbsOffset    uint32      `json:"abs_offset"`
	Size         uint32      `json:"size"`
	Width        uint32      `json:"width,omitempty"`
	Signed       bool        `json:"signed,omitempty"`
	ExternalBits uint32      `json:"external_bits,omitempty"`
	Conversion   Conversion  `json:"conversion,omitempty"`
	Widen        bool        `json:"widen,omitempty"`

	Packed *PackedContract `json:"packed,omitempty"`
	Flag   *FlagContract   `json:"flag,omitempty"`
	String *StringContract `json:"string,omitempty"`

	// Vector, matrix and array nodes: Elem is the template of element 0.
	Elem   *Field `json:"elem,omitempty"`
	Count  uint32 `json:"count,omitempty"`
	Stride uint32 `json:"stride,omitempty"`
	Dim    uint32 `json:"dim,omitempty"`

	Children []*Field `json:"children,omitempty"`
	index    map[string]int
}

// Child returns the named child of a record, packed or boolean set node.
func (f *Field) Child(name string) (*Field, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.Children[i], true
}

// Lookup follows a dotted path of child names.
func (f *Field) Lookup(path ...string) (*Field, error) {
	cur := f
	for _, name := range path {
		next, ok := cur.Child(name)
		if !ok {
			err := errors.NotFound(errors.PhaseAccess, "field", name)
			err.Path = append(append([]string(nil), cur.Path...), name)
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// Walk visits f and every node below it in declaration order. Element
// templates are visited once.
func (f *Field) Walk(fn func(*Field) bool) {
	if !fn(f) {
		return
	}
	if f.Elem != nil {
		f.Elem.Walk(fn)
	}
	for _, c := range f.Children {
		c.Walk(fn)
	}
}

func (f *Field) addChild(c *Field) {
	if f.index == nil {
		f.index = make(map[string]int)
	}
	f.index[c.Name] = len(f.Children)
	f.Children = append(f.Children, c)
}

// ToNormalized converts a raw stored value to its normalized float.
// FromNormalized inverts it exactly for widths up to 48 bits; wider fields
// keep only zero and the endpoints exact.
func (f *Field) ToNormalized(raw uint64) float64 {
	raw &= FieldMask(f.Width)
	switch f.Conversion {
	case ConvNormalized32:
		if f.Signed {
			return nfp.Snorm32{Bits: f.Width}.ToFloat(int32(SignExtend(raw, f.Width)))
		}
		return nfp.Unorm32{Bits: f.Width}.ToFloat(uint32(raw))
	case ConvNormalized64:
		if f.Signed {
			return nfp.Snorm64{Bits: f.Width}.ToFloat(SignExtend(raw, f.Width))
		}
		return nfp.Unorm64{Bits: f.Width}.ToFloat(raw)
	default:
		panic("codec: ToNormalized on " + f.Access.String() + " field " + f.TypeName)
	}
}

// FromNormalized converts v to the raw stored bits, clamping out of range
// input. The result is masked to the field width. Above 48 bits distinct
// raws can share a float, so the raw is recovered only to float64 precision.
func (f *Field) FromNormalized(v float64) uint64 {
	var raw uint64
	switch f.Conversion {
	case ConvNormalized32:
		if f.Signed {
			raw = uint64(int64(nfp.Snorm32{Bits: f.Width}.FromFloat(v)))
		} else {
			raw = uint64(nfp.Unorm32{Bits: f.Width}.FromFloat(v))
		}
	case ConvNormalized64:
		if f.Signed {
			raw = uint64(nfp.Snorm64{Bits: f.Width}.FromFloat(v))
		} else {
			raw = nfp.Unorm64{Bits: f.Width}.FromFloat(v)
		}
	default:
		panic("codec: FromNormalized on " + f.Access.String() + " field " + f.TypeName)
	}
	return raw & FieldMask(f.Width)
}

// Pack combines one raw value per packed child, in declaration order, into a
// container value. Padding bits are zero.
func (f *Field) Pack(values ...uint64) (uint64, error) {
	if f.Access != AccessPacked {
		return 0, errors.InvalidInput(errors.PhaseAccess, "Pack on "+f.Access.String()+" field")
	}
	if len(values) != len(f.Children) {
		return 0, errors.New(errors.PhaseAccess, errors.KindInvalidInput).
			Path(f.Path...).
			Type(f.TypeName).
			Value(len(values)).
			Detail("got %d values for %d fields", len(values), len(f.Children)).
			Build()
	}
	var result uint64
	for i, c := range f.Children {
		result |= (values[i] & c.Packed.FieldMask) << c.Packed.Shift
	}
	return result, nil
}

// PackFloat is Pack for normalized children. Plain integer children take the
// value truncated toward zero.
func (f *Field) PackFloat(values ...float64) (uint64, error) {
	raws := make([]uint64, len(values))
	for i, v := range values {
		if i < len(f.Children) && f.Children[i].Access == AccessNormalized {
			raws[i] = f.Children[i].FromNormalized(v)
			continue
		}
		raws[i] = uint64(int64(v))
	}
	return f.Pack(raws...)
}

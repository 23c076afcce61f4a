package schema

import (
	"strconv"

	"github.com/wippyai/binlayout/errors"
	"github.com/wippyai/binlayout/internal/arith"
)

// Type is the closed set of schema types. The concrete variants are Scalar,
// String, Vector, Matrix, *Array, *BoolSet, *Record and *Packed.
type Type interface {
	Kind() Kind
	SizeInBits() uint64
	SizeInOctets() uint64
	String() string
	sealed()
}

// Scalar is a fixed-width integer, normalized integer or float.
type Scalar struct {
	kind Kind
	bits uint32
}

var (
	S8  = Scalar{KindSigned, 8}
	S16 = Scalar{KindSigned, 16}
	S32 = Scalar{KindSigned, 32}
	S64 = Scalar{KindSigned, 64}

	U8  = Scalar{KindUnsigned, 8}
	U16 = Scalar{KindUnsigned, 16}
	U32 = Scalar{KindUnsigned, 32}
	U64 = Scalar{KindUnsigned, 64}

	SNorm8  = Scalar{KindSignedNormalized, 8}
	SNorm16 = Scalar{KindSignedNormalized, 16}
	SNorm32 = Scalar{KindSignedNormalized, 32}
	SNorm64 = Scalar{KindSignedNormalized, 64}

	UNorm8  = Scalar{KindUnsignedNormalized, 8}
	UNorm16 = Scalar{KindUnsignedNormalized, 16}
	UNorm32 = Scalar{KindUnsignedNormalized, 32}
	UNorm64 = Scalar{KindUnsignedNormalized, 64}

	F16 = Scalar{KindFloat, 16}
	F32 = Scalar{KindFloat, 32}
	F64 = Scalar{KindFloat, 64}
)

// NewScalar returns the scalar of the given kind and width. Integers accept
// 8, 16, 32 and 64 bits; floats accept 16, 32 and 64.
func NewScalar(kind Kind, bits uint32) (Scalar, error) {
	s := Scalar{kind: kind, bits: bits}
	if err := s.validate(nil); err != nil {
		return Scalar{}, err
	}
	return s, nil
}

func (s Scalar) validate(path []string) error {
	switch {
	case s.kind.IsInteger():
		switch s.bits {
		case 8, 16, 32, 64:
			return nil
		}
	case s.kind == KindFloat:
		switch s.bits {
		case 16, 32, 64:
			return nil
		}
	default:
		return errors.New(errors.PhaseType, errors.KindInvalidInput).
			Path(path...).
			Detail("%s is not a scalar kind", s.kind).
			Build()
	}
	return errors.UnsupportedWidth(path, s.kind.String(), s.bits)
}

func (s Scalar) Kind() Kind           { return s.kind }
func (s Scalar) Bits() uint32         { return s.bits }
func (s Scalar) SizeInBits() uint64   { return uint64(s.bits) }
func (s Scalar) SizeInOctets() uint64 { return uint64(s.bits) / 8 }
func (Scalar) sealed()                {}

func (s Scalar) String() string {
	var prefix string
	switch s.kind {
	case KindSigned:
		prefix = "s"
	case KindUnsigned:
		prefix = "u"
	case KindSignedNormalized:
		prefix = "snorm"
	case KindUnsignedNormalized:
		prefix = "unorm"
	case KindFloat:
		prefix = "f"
	default:
		return "invalid"
	}
	return prefix + strconv.FormatUint(uint64(s.bits), 10)
}

// Encoding selects the metadata that surrounds a string payload.
type Encoding uint8

const (
	// EncodingUTF8 stores a 4-octet big-endian length before the payload and
	// a 4-octet zero slot after it, so a full payload stays NUL-terminated.
	EncodingUTF8 Encoding = iota
	// EncodingRaw stores the payload only, zero-padded.
	EncodingRaw
)

func (e Encoding) String() string {
	switch e {
	case EncodingUTF8:
		return "utf8"
	case EncodingRaw:
		return "raw"
	default:
		return "unknown"
	}
}

func (e Encoding) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// PrefixOctets is the length header placed before the payload.
func (e Encoding) PrefixOctets() uint32 {
	if e == EncodingUTF8 {
		return 4
	}
	return 0
}

// SuffixOctets is the terminator slot placed after the payload.
func (e Encoding) SuffixOctets() uint32 {
	if e == EncodingUTF8 {
		return 4
	}
	return 0
}

func (e Encoding) MetadataOctets() uint32 {
	return e.PrefixOctets() + e.SuffixOctets()
}

// String is a fixed-capacity string. The allocation does not depend on the
// stored content.
type String struct {
	MaxOctets uint32
	Encoding  Encoding
}

func NewString(maxOctets uint32, enc Encoding) (String, error) {
	s := String{MaxOctets: maxOctets, Encoding: enc}
	if err := s.validate(nil); err != nil {
		return String{}, err
	}
	return s, nil
}

func (s String) validate(path []string) error {
	if s.MaxOctets == 0 {
		return errors.New(errors.PhaseType, errors.KindInvalidInput).
			Path(path...).Type(s.String()).
			Detail("string capacity must be positive").
			Build()
	}
	if s.Encoding != EncodingUTF8 && s.Encoding != EncodingRaw {
		return errors.New(errors.PhaseType, errors.KindInvalidInput).
			Path(path...).
			Detail("unknown string encoding %d", s.Encoding).
			Build()
	}
	if _, ok := arith.SafeAddU32(s.MaxOctets, s.Encoding.MetadataOctets()); !ok {
		return errors.Overflow(errors.PhaseType, path, s.String())
	}
	return nil
}

func (String) Kind() Kind { return KindString }
func (s String) SizeInOctets() uint64 {
	return uint64(s.MaxOctets) + uint64(s.Encoding.MetadataOctets())
}
func (s String) SizeInBits() uint64 { return s.SizeInOctets() * 8 }
func (String) sealed()              {}

func (s String) String() string {
	n := strconv.FormatUint(uint64(s.MaxOctets), 10)
	if s.Encoding == EncodingRaw {
		return "string<" + n + ",raw>"
	}
	return "string<" + n + ">"
}

// Vector is 2 to 4 consecutive scalars.
type Vector struct {
	Elem  Scalar
	Count uint32
}

func NewVector(elem Scalar, count uint32) (Vector, error) {
	v := Vector{Elem: elem, Count: count}
	if err := v.validate(nil); err != nil {
		return Vector{}, err
	}
	return v, nil
}

func (v Vector) validate(path []string) error {
	if v.Count < 2 || v.Count > 4 {
		return errors.New(errors.PhaseType, errors.KindInvalidInput).
			Path(path...).
			Detail("vector length %d outside [2, 4]", v.Count).
			Value(v.Count).
			Build()
	}
	return v.Elem.validate(path)
}

func (Vector) Kind() Kind             { return KindVector }
func (v Vector) SizeInBits() uint64   { return uint64(v.Count) * v.Elem.SizeInBits() }
func (v Vector) SizeInOctets() uint64 { return uint64(v.Count) * v.Elem.SizeInOctets() }
func (Vector) sealed()                {}

func (v Vector) String() string {
	return "vec" + strconv.FormatUint(uint64(v.Count), 10) + "<" + v.Elem.String() + ">"
}

// Matrix is a square Dim x Dim block of scalars stored row-major.
type Matrix struct {
	Elem Scalar
	Dim  uint32
}

func NewMatrix(elem Scalar, dim uint32) (Matrix, error) {
	m := Matrix{Elem: elem, Dim: dim}
	if err := m.validate(nil); err != nil {
		return Matrix{}, err
	}
	return m, nil
}

func (m Matrix) validate(path []string) error {
	if m.Dim < 2 || m.Dim > 4 {
		return errors.New(errors.PhaseType, errors.KindInvalidInput).
			Path(path...).
			Detail("matrix dimension %d outside [2, 4]", m.Dim).
			Value(m.Dim).
			Build()
	}
	return m.Elem.validate(path)
}

func (Matrix) Kind() Kind { return KindMatrix }
func (m Matrix) SizeInBits() uint64 {
	return uint64(m.Dim) * uint64(m.Dim) * m.Elem.SizeInBits()
}
func (m Matrix) SizeInOctets() uint64 { return m.SizeInBits() / 8 }
func (Matrix) sealed()                {}

func (m Matrix) String() string {
	return "mat" + strconv.FormatUint(uint64(m.Dim), 10) + "<" + m.Elem.String() + ">"
}

// Array is Count consecutive elements of one type.
type Array struct {
	Elem  Type
	Count uint32
}

func NewArray(elem Type, count uint32) (*Array, error) {
	a := &Array{Elem: elem, Count: count}
	if err := Validate(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (*Array) Kind() Kind { return KindArray }
func (a *Array) SizeInOctets() uint64 {
	if a.Elem == nil {
		return 0
	}
	return uint64(a.Count) * a.Elem.SizeInOctets()
}
func (a *Array) SizeInBits() uint64 { return a.SizeInOctets() * 8 }
func (*Array) sealed()              {}

func (a *Array) String() string {
	elem := "invalid"
	if a.Elem != nil {
		elem = a.Elem.String()
	}
	return "[" + strconv.FormatUint(uint64(a.Count), 10) + "]" + elem
}

// BoolSet is a set of named one-bit flags packed MSB-first into octets.
type BoolSet struct {
	Name  string
	Flags []string
}

func NewBoolSet(name string, flags ...string) (*BoolSet, error) {
	b := &BoolSet{Name: name, Flags: flags}
	if err := Validate(b); err != nil {
		return nil, err
	}
	return b, nil
}

func (*BoolSet) Kind() Kind { return KindBoolSet }
func (b *BoolSet) SizeInOctets() uint64 {
	return uint64(arith.CeilDiv(uint32(len(b.Flags)), 8))
}
func (b *BoolSet) SizeInBits() uint64 { return b.SizeInOctets() * 8 }
func (*BoolSet) sealed()              {}

func (b *BoolSet) String() string {
	if b.Name != "" {
		return b.Name
	}
	return "flags"
}

// FlagIndex returns the declaration index of the named flag.
func (b *BoolSet) FlagIndex(name string) (int, bool) {
	for i, f := range b.Flags {
		if f == name {
			return i, true
		}
	}
	return -1, false
}

package schema

import (
	"github.com/wippyai/binlayout/internal/arith"
)

// RecordField is either a named value or an anonymous run of padding octets.
type RecordField struct {
	Type    Type
	Name    string
	Padding uint32 // octets, used when Type is nil
}

// Field declares a named record member.
func Field(name string, t Type) RecordField {
	return RecordField{Name: name, Type: t}
}

// Padding declares octets that are skipped and get no accessor.
func Padding(octets uint32) RecordField {
	return RecordField{Padding: octets}
}

func (f RecordField) IsPadding() bool { return f.Type == nil }

func (f RecordField) SizeInOctets() uint64 {
	if f.IsPadding() {
		return uint64(f.Padding)
	}
	return f.Type.SizeInOctets()
}

// Record lays its fields out at consecutive octet offsets in declaration
// order. Size is the declared total in octets; zero means "whatever the
// fields add up to".
type Record struct {
	Name   string
	Fields []RecordField
	Size   uint32
}

func NewRecord(name string, fields ...RecordField) (*Record, error) {
	r := &Record{Name: name, Fields: fields}
	if err := Validate(r); err != nil {
		return nil, err
	}
	return r, nil
}

// NewSizedRecord is NewRecord with a declared total size that the layout
// engine checks against the fields.
func NewSizedRecord(name string, size uint32, fields ...RecordField) (*Record, error) {
	r := &Record{Name: name, Fields: fields, Size: size}
	if err := Validate(r); err != nil {
		return nil, err
	}
	return r, nil
}

func (*Record) Kind() Kind { return KindRecord }
func (r *Record) SizeInOctets() uint64 {
	var total uint64
	for _, f := range r.Fields {
		total += f.SizeInOctets()
	}
	return total
}
func (r *Record) SizeInBits() uint64 { return r.SizeInOctets() * 8 }
func (*Record) sealed()              {}

func (r *Record) String() string {
	if r.Name != "" {
		return r.Name
	}
	return "record"
}

// Field returns the value field with the given name.
func (r *Record) Field(name string) (RecordField, bool) {
	for _, f := range r.Fields {
		if !f.IsPadding() && f.Name == name {
			return f, true
		}
	}
	return RecordField{}, false
}

// PackedField is either a named bit range or anonymous padding bits.
type PackedField struct {
	Type Type
	Name string
	Bits uint32
}

// BitField declares a named packed member. Only the kind of t matters; the
// stored width is bits.
func BitField(name string, t Type, bits uint32) PackedField {
	return PackedField{Name: name, Type: t, Bits: bits}
}

// PadBits declares bits that are skipped and get no accessor.
func PadBits(bits uint32) PackedField {
	return PackedField{Bits: bits}
}

func (f PackedField) IsPadding() bool { return f.Type == nil }

// Packed bit-packs integer fields MSB-first into one container of Bits bits.
// Bits is declared explicitly: padding must fill any remainder.
type Packed struct {
	Name   string
	Fields []PackedField
	Bits   uint32
}

func NewPacked(name string, bits uint32, fields ...PackedField) (*Packed, error) {
	p := &Packed{Name: name, Fields: fields, Bits: bits}
	if err := Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (*Packed) Kind() Kind           { return KindPacked }
func (p *Packed) SizeInBits() uint64 { return uint64(p.Bits) }
func (p *Packed) SizeInOctets() uint64 {
	return uint64(arith.CeilDiv(p.Bits, 8))
}
func (*Packed) sealed() {}

func (p *Packed) String() string {
	if p.Name != "" {
		return p.Name
	}
	return "packed"
}

func (p *Packed) Field(name string) (PackedField, bool) {
	for _, f := range p.Fields {
		if !f.IsPadding() && f.Name == name {
			return f, true
		}
	}
	return PackedField{}, false
}

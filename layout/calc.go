package layout

import (
	"go.uber.org/zap"

	"github.com/wippyai/binlayout/errors"
	"github.com/wippyai/binlayout/internal/arith"
	"github.com/wippyai/binlayout/schema"
)

// FieldOffset places one value field of a record.
type FieldOffset struct {
	Type   schema.Type
	Name   string
	Offset uint32
	Size   uint32
}

// RecordInfo is the computed layout of a record.
type RecordInfo struct {
	Name   string
	Fields []FieldOffset
	Size   uint32
}

// Field returns the placement of the named field.
func (r *RecordInfo) Field(name string) (FieldOffset, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldOffset{}, false
}

// BitRange is an inclusive range of bit positions inside a packed container.
// Position 0 is the container MSB.
type BitRange struct {
	Name string
	Kind schema.Kind
	Low  uint32
	High uint32
}

func (b BitRange) Width() uint32 { return b.High - b.Low + 1 }

// PackedInfo is the computed layout of a packed type.
type PackedInfo struct {
	Name          string
	Fields        []BitRange
	SizeBits      uint32
	ContainerBits uint32
}

func (p *PackedInfo) Field(name string) (BitRange, bool) {
	for _, f := range p.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return BitRange{}, false
}

// Calculator assigns offsets and bit ranges. Results are cached per type
// pointer. A Calculator is not safe for concurrent use.
type Calculator struct {
	records map[*schema.Record]*RecordInfo
	packed  map[*schema.Packed]*PackedInfo
}

func NewCalculator() *Calculator {
	return &Calculator{
		records: make(map[*schema.Record]*RecordInfo),
		packed:  make(map[*schema.Packed]*PackedInfo),
	}
}

// Record lays out r. Value fields sit at consecutive octet offsets starting
// at 0 and padding advances the offset without producing a field. Nested
// records and packed types are laid out first, so their errors abort r.
func (c *Calculator) Record(r *schema.Record) (*RecordInfo, error) {
	if cached, ok := c.records[r]; ok {
		return cached, nil
	}
	if err := schema.Validate(r); err != nil {
		return nil, err
	}
	info, err := c.record(r, []string{r.String()})
	if err != nil {
		return nil, err
	}
	return info, nil
}

func (c *Calculator) record(r *schema.Record, path []string) (*RecordInfo, error) {
	if cached, ok := c.records[r]; ok {
		return cached, nil
	}

	info := &RecordInfo{
		Name:   r.Name,
		Fields: make([]FieldOffset, 0, len(r.Fields)),
	}

	var offset uint32
	for _, f := range r.Fields {
		if f.IsPadding() {
			next, ok := arith.SafeAddU32(offset, f.Padding)
			if !ok {
				return nil, errors.Overflow(errors.PhaseLayout, path, "record padding")
			}
			offset = next
			continue
		}

		if err := c.nested(f.Type, appendPath(path, f.Name)); err != nil {
			return nil, err
		}

		size := f.Type.SizeInOctets()
		if !arith.FitsU32(size) {
			return nil, errors.Overflow(errors.PhaseLayout, appendPath(path, f.Name), f.Type.String())
		}
		info.Fields = append(info.Fields, FieldOffset{
			Name:   f.Name,
			Type:   f.Type,
			Offset: offset,
			Size:   uint32(size),
		})

		next, ok := arith.SafeAddU32(offset, uint32(size))
		if !ok {
			return nil, errors.Overflow(errors.PhaseLayout, path, "record size")
		}
		offset = next
	}

	if r.Size != 0 && r.Size != offset {
		return nil, errors.SizeMismatch(path, r.String(), uint64(r.Size), uint64(offset), "octets")
	}
	info.Size = offset

	Logger().Debug("record laid out",
		zap.String("record", r.String()),
		zap.Int("fields", len(info.Fields)),
		zap.Uint32("size", info.Size))

	c.records[r] = info
	return info, nil
}

// nested lays out record and packed types reachable from t.
func (c *Calculator) nested(t schema.Type, path []string) error {
	switch v := t.(type) {
	case *schema.Record:
		_, err := c.record(v, path)
		return err
	case *schema.Packed:
		_, err := c.packedLayout(v, path)
		return err
	case *schema.Array:
		return c.nested(v.Elem, appendPath(path, "[]"))
	default:
		return nil
	}
}

// Packed lays out p. Bit ranges are assigned MSB-first and must cover the
// declared width exactly; the width must match a supported container.
func (c *Calculator) Packed(p *schema.Packed) (*PackedInfo, error) {
	if cached, ok := c.packed[p]; ok {
		return cached, nil
	}
	if err := schema.Validate(p); err != nil {
		return nil, err
	}
	return c.packedLayout(p, []string{p.String()})
}

func (c *Calculator) packedLayout(p *schema.Packed, path []string) (*PackedInfo, error) {
	if cached, ok := c.packed[p]; ok {
		return cached, nil
	}

	info := &PackedInfo{
		Name:   p.Name,
		Fields: make([]BitRange, 0, len(p.Fields)),
	}

	var running uint64
	for _, f := range p.Fields {
		if !f.IsPadding() {
			info.Fields = append(info.Fields, BitRange{
				Name: f.Name,
				Kind: f.Type.Kind(),
				Low:  uint32(running),
				High: uint32(running + uint64(f.Bits) - 1),
			})
		}
		running += uint64(f.Bits)
		if running > MaxContainerBits {
			return nil, errors.SizeMismatch(path, p.String(), uint64(p.Bits), running, "bits")
		}
	}

	if running != uint64(p.Bits) {
		return nil, errors.SizeMismatch(path, p.String(), uint64(p.Bits), running, "bits")
	}

	container, err := containerBits(p.Bits, path, p.String())
	if err != nil {
		return nil, err
	}
	info.SizeBits = p.Bits
	info.ContainerBits = container

	Logger().Debug("packed type laid out",
		zap.String("packed", p.String()),
		zap.Int("fields", len(info.Fields)),
		zap.Uint32("container", container))

	c.packed[p] = info
	return info, nil
}

// MaxContainerBits is the widest packed container.
const MaxContainerBits = 64

// ContainerBits returns the unsigned container that holds a packed type of
// total bits. Only exact machine widths are accepted.
func ContainerBits(total uint32) (uint32, error) {
	return containerBits(total, nil, "")
}

func containerBits(total uint32, path []string, typ string) (uint32, error) {
	switch total {
	case 8, 16, 32, 64:
		return total, nil
	}
	return 0, errors.New(errors.PhaseLayout, errors.KindUnsupportedContainerSize).
		Path(path...).
		Type(typ).
		Value(total).
		Detail("packed width %d bits has no container; use 8, 16, 32 or 64", total).
		Build()
}

func appendPath(path []string, seg string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, seg)
}

// Package layout computes the exact placement of record fields and packed
// bit ranges.
//
// # Layout Rules
//
//   - Records: fields at consecutive octet offsets from 0 in declaration
//     order, no implicit alignment. Padding advances the offset.
//   - Packed types: fields at consecutive bit ranges starting at the
//     container MSB. The ranges plus padding must cover the declared width.
//   - Containers: the declared packed width must be exactly 8, 16, 32 or
//     64 bits.
//   - A declared record size must equal the sum of its fields.
//
// # Usage
//
//	calc := layout.NewCalculator()
//	info, err := calc.Record(rec)
//	// info.Fields[i].Offset, info.Size
//
// Nested records and packed types are laid out before their parent; any
// error aborts the parent's layout.
package layout

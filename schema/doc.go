// Package schema defines the type model of the binary record compiler.
//
// A schema is built from scalars and composites:
//
//	Scalar   s8..s64, u8..u64, snorm8..snorm64, unorm8..unorm64, f16, f32, f64
//	String   fixed capacity payload plus encoding metadata
//	Vector   2 to 4 scalars
//	Matrix   2x2 to 4x4 scalars, row-major
//	*Array   N elements of any type
//	*BoolSet named one-bit flags, MSB-first within each octet
//	*Record  fields at consecutive octet offsets
//	*Packed  integer fields at consecutive bit ranges of one container
//
// Type is sealed: code that dispatches on it switches over exactly these
// variants. Types are immutable values; build them once (directly, through
// the constructors, or with the schemafile and witimport packages) and share
// them freely.
//
// # Sizes
//
// Every type reports SizeInBits and SizeInOctets. Records sum their fields,
// strings reserve their full capacity, boolean sets round up to whole octets
// and packed types report their declared width, which padding must fill.
//
// # Validation
//
// The constructors reject unsupported widths, non-integer packed fields,
// packed field widths above 64 bits and duplicate names. Validate applies the
// same rules to types assembled as struct literals.
package schema

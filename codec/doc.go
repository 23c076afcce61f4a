// Package codec compiles schema types into per-field accessor contracts.
//
// A contract says which octets or bits a field touches and how they are
// converted:
//
//	integer     big-endian primitive of the declared width
//	normalized  raw integer plus float conversion, [0,1] or [-1,1]
//	float       f32/f64 directly, f16 as raw bits widened through binary16
//	flag        one bit of a boolean set, MSB-first within each octet
//	string      length prefix, fixed payload, terminator slot
//	composite   vector, matrix, array, record and packed sub-views
//
// Packed fields carry the container width, bit range, shift, field mask and
// clear mask. Reads compute (c >> shift) & mask and sign-extend signed kinds;
// writes compute (c & clear) | ((x & mask) << shift).
//
// Contracts are pure data; the cursor package binds them to a buffer.
package codec

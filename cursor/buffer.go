package cursor

import "encoding/binary"

// load reads a big-endian value of len(b) octets through a fixed scratch
// area.
func load(b []byte) uint64 {
	var scratch [8]byte
	copy(scratch[8-len(b):], b)
	return binary.BigEndian.Uint64(scratch[:])
}

// store writes the low len(b) octets of v big-endian.
func store(b []byte, v uint64) {
	var scratch [8]byte
	binary.BigEndian.PutUint64(scratch[:], v)
	copy(b, scratch[8-len(b):])
}

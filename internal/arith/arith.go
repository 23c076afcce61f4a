// Package arith holds the overflow-checked size arithmetic shared by the
// type model and the layout engine.
package arith

import "math"

func SafeMulU32(a, b uint32) (uint32, bool) {
	if b != 0 && a > math.MaxUint32/b {
		return 0, false
	}
	return a * b, true
}

func SafeAddU32(a, b uint32) (uint32, bool) {
	if a > math.MaxUint32-b {
		return 0, false
	}
	return a + b, true
}

// FitsU32 reports whether v can be used as an octet offset.
func FitsU32(v uint64) bool {
	return v <= math.MaxUint32
}

// CeilDiv returns ceil(n / d) for d > 0.
func CeilDiv(n, d uint32) uint32 {
	q := n / d
	if n%d != 0 {
		q++
	}
	return q
}

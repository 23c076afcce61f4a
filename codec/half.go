package codec

import "github.com/x448/float16"

// HalfToFloat widens the raw bits of an IEEE 754 binary16 value.
func HalfToFloat(raw uint16) float64 {
	return float64(float16.Frombits(raw).Float32())
}

// HalfFromFloat rounds v to the nearest binary16 value and returns its bits.
func HalfFromFloat(v float64) uint16 {
	return float16.Fromfloat32(float32(v)).Bits()
}

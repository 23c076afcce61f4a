// Package nfp converts between raw normalized integers and float64.
//
// Unsigned values of n bits map raw r to r / (2^n - 1), covering [0, 1].
// Signed values map negative raws to r / 2^(n-1) and non-negative raws to
// r / (2^(n-1) - 1), so -1, 0 and 1 are all exact. Inputs outside the range
// and NaN are clamped.
//
// The 32 variants take widths 1..32, the 64 variants widths 1..64.
// FromFloat(ToFloat(r)) == r holds for every raw value only up to 48 bits.
// Above that float64's 53-bit mantissa cannot tell neighbouring raws apart:
// the endpoints and zero stay exact, interior values may come back off by a
// few units, and values next to an endpoint may collapse onto it.
package nfp

import "math"

// Unorm32 converts unsigned normalized values of Bits (1..32) bits.
type Unorm32 struct{ Bits uint32 }

func (u Unorm32) max() uint32 {
	return uint32(math.MaxUint32 >> (32 - u.Bits))
}

func (u Unorm32) ToFloat(raw uint32) float64 {
	m := u.max()
	raw &= m
	if raw == m {
		return 1
	}
	return float64(raw) / float64(m)
}

func (u Unorm32) FromFloat(v float64) uint32 {
	m := u.max()
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= 1:
		return m
	}
	r := math.Round(v * float64(m))
	if r >= float64(m) {
		return m
	}
	return uint32(r)
}

// Snorm32 converts signed normalized values of Bits (1..32) bits.
type Snorm32 struct{ Bits uint32 }

// bounds returns the magnitude of the most negative raw and the largest
// positive raw.
func (s Snorm32) bounds() (neg, pos float64) {
	neg = math.Ldexp(1, int(s.Bits)-1)
	return neg, neg - 1
}

func (s Snorm32) ToFloat(raw int32) float64 {
	neg, pos := s.bounds()
	switch {
	case raw < 0:
		v := float64(raw) / neg
		return math.Max(v, -1)
	case pos == 0:
		return 0
	default:
		return math.Min(float64(raw)/pos, 1)
	}
}

func (s Snorm32) FromFloat(v float64) int32 {
	neg, pos := s.bounds()
	switch {
	case math.IsNaN(v):
		return 0
	case v <= -1:
		return int32(-neg)
	case v >= 1:
		return int32(pos)
	case v < 0:
		return int32(math.Round(v * neg))
	default:
		return int32(math.Round(v * pos))
	}
}

// Unorm64 converts unsigned normalized values of Bits (1..64) bits.
type Unorm64 struct{ Bits uint32 }

func (u Unorm64) max() uint64 {
	return math.MaxUint64 >> (64 - u.Bits)
}

func (u Unorm64) ToFloat(raw uint64) float64 {
	m := u.max()
	raw &= m
	if raw == m {
		return 1
	}
	return float64(raw) / float64(m)
}

func (u Unorm64) FromFloat(v float64) uint64 {
	m := u.max()
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= 1:
		return m
	}
	r := math.Round(v * float64(m))
	// float64(m) rounds up to 2^n for n > 53.
	if r >= float64(m) {
		return m
	}
	return uint64(r)
}

// Snorm64 converts signed normalized values of Bits (1..64) bits.
type Snorm64 struct{ Bits uint32 }

func (s Snorm64) limits() (lo int64, hi int64) {
	hi = int64(math.MaxInt64 >> (64 - s.Bits))
	return -hi - 1, hi
}

func (s Snorm64) ToFloat(raw int64) float64 {
	lo, hi := s.limits()
	switch {
	case raw <= lo:
		return -1
	case raw >= hi:
		if hi == 0 {
			return 0
		}
		return 1
	case raw < 0:
		return float64(raw) / -float64(lo)
	default:
		return float64(raw) / float64(hi)
	}
}

func (s Snorm64) FromFloat(v float64) int64 {
	lo, hi := s.limits()
	switch {
	case math.IsNaN(v):
		return 0
	case v <= -1:
		return lo
	case v >= 1:
		return hi
	case v < 0:
		r := math.Round(v * -float64(lo))
		if r <= float64(lo) {
			return lo
		}
		return int64(r)
	default:
		r := math.Round(v * float64(hi))
		if r >= float64(hi) {
			return hi
		}
		return int64(r)
	}
}

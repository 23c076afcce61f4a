package codec

import "math/bits"

// Container is the set of unsigned types a packed type is stored in.
type Container interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// ContainerWidth returns the width of C in bits.
func ContainerWidth[C Container]() uint32 {
	return uint32(bits.Len64(uint64(^C(0))))
}

// Shift is the position of a field's LSB inside its container, given the
// field's offset from the container MSB.
func Shift(container, low, width uint32) uint32 {
	return container - low - width
}

// FieldMask is width ones, LSB-aligned.
func FieldMask(width uint32) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return 1<<width - 1
}

// ClearMask is container ones with the field's slot cleared.
func ClearMask(container, shift, width uint32) uint64 {
	return FieldMask(container) &^ (FieldMask(width) << shift)
}

// Extract reads the width-bit field whose LSB sits at shift.
func Extract[C Container](c C, shift, width uint32) uint64 {
	return (uint64(c) >> shift) & FieldMask(width)
}

// Insert replaces the width-bit field at shift with the low bits of x and
// leaves every other bit of c unchanged.
func Insert[C Container](c C, shift, width uint32, x uint64) C {
	keep := ClearMask(ContainerWidth[C](), shift, width)
	return C(uint64(c)&keep | (x&FieldMask(width))<<shift)
}

// SignExtend interprets the low width bits of v as two's complement.
func SignExtend(v uint64, width uint32) int64 {
	if width >= 64 {
		return int64(v)
	}
	s := 64 - width
	return int64(v<<s) >> s
}

package cursor

import "github.com/wippyai/binlayout/codec"

// extract and insert dispatch to the container-typed bit helpers.

func extract(c uint64, container, shift, width uint32) uint64 {
	switch container {
	case 8:
		return codec.Extract(uint8(c), shift, width)
	case 16:
		return codec.Extract(uint16(c), shift, width)
	case 32:
		return codec.Extract(uint32(c), shift, width)
	default:
		return codec.Extract(c, shift, width)
	}
}

func insert(c uint64, container, shift, width uint32, x uint64) uint64 {
	switch container {
	case 8:
		return uint64(codec.Insert(uint8(c), shift, width, x))
	case 16:
		return uint64(codec.Insert(uint16(c), shift, width, x))
	case 32:
		return uint64(codec.Insert(uint32(c), shift, width, x))
	default:
		return codec.Insert(c, shift, width, x)
	}
}

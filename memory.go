package binlayout

// Memory is linear memory that hands out writable views of its contents.
// Views may be invalidated when the memory grows; callers rebind cursors
// after growth.
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Size() uint32
}

package cursor

import (
	"iter"

	"github.com/wippyai/binlayout/codec"
	"github.com/wippyai/binlayout/errors"
)

// Cursor is a shared position over an array of fixed-size elements. Views
// created from a cursor read its index at access time, so moving the cursor
// moves every view at once.
//
// A Cursor is not safe for concurrent use.
type Cursor struct {
	data     []byte
	elemSize uint32
	index    int
	checked  bool
}

// NewChecked returns a cursor whose SetIndex rejects positions outside the
// buffer.
func NewChecked(data []byte, elemSize uint32) *Cursor {
	return &Cursor{data: data, elemSize: elemSize, checked: true}
}

// NewUnchecked returns a cursor that accepts any index. Accessing an element
// outside the buffer panics.
func NewUnchecked(data []byte, elemSize uint32) *Cursor {
	return &Cursor{data: data, elemSize: elemSize}
}

// SetIndex moves the cursor. On a checked cursor an index outside [0, Len())
// fails with ErrIndexOutOfRange and leaves the cursor where it was.
func (c *Cursor) SetIndex(i int) error {
	if c.checked && (i < 0 || i >= c.Len()) {
		return errors.IndexOutOfRange(i, c.Len())
	}
	c.index = i
	return nil
}

func (c *Cursor) Index() int        { return c.index }
func (c *Cursor) ElemSize() uint32  { return c.elemSize }
func (c *Cursor) Checked() bool     { return c.checked }
func (c *Cursor) Data() []byte      { return c.data }

// Len is the number of whole elements in the buffer.
func (c *Cursor) Len() int {
	if c.elemSize == 0 {
		return 0
	}
	return len(c.data) / int(c.elemSize)
}

// Base is the octet offset of the current element. It may lie outside the
// buffer on an unchecked cursor.
func (c *Cursor) Base() int64 {
	return int64(c.index) * int64(c.elemSize)
}

// Bytes returns the octets of the current element.
func (c *Cursor) Bytes() []byte {
	return c.slice(0, c.elemSize)
}

// Rebind replaces the backing buffer, for example after the memory that
// holds it has grown. A checked cursor whose index no longer fits is moved
// back to 0.
func (c *Cursor) Rebind(data []byte) {
	c.data = data
	if c.checked && c.index >= c.Len() {
		c.index = 0
	}
}

// All moves the cursor over every element in order, yielding each index.
// The cursor stays on the last element visited.
func (c *Cursor) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := 0; i < c.Len(); i++ {
			c.index = i
			if !yield(i) {
				return
			}
		}
	}
}

// View binds a compiled field to the cursor. The field's AbsOffset is its
// position inside the element.
func (c *Cursor) View(f *codec.Field) View {
	return View{cur: c, f: f, base: f.AbsOffset}
}

func (c *Cursor) slice(off, n uint32) []byte {
	start := c.Base() + int64(off)
	return c.data[start : start+int64(n)]
}

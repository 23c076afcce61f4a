// Package wasmmem exposes WebAssembly guest memory to cursors without
// copying.
package wasmmem

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/binlayout"
	"github.com/wippyai/binlayout/cursor"
	"github.com/wippyai/binlayout/errors"
)

// PageSize is the WebAssembly page size in octets.
const PageSize = 65536

// Memory adapts a wazero api.Memory. Read returns views that alias guest
// memory, so writes through a cursor are visible to the guest.
type Memory struct {
	Mem api.Memory
}

var _ binlayout.Memory = (*Memory)(nil)

// Wrap returns nil for a nil memory.
func Wrap(mem api.Memory) *Memory {
	if mem == nil {
		return nil
	}
	return &Memory{Mem: mem}
}

// Read returns a writable view of [offset, offset+length).
func (m *Memory) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.Mem.Read(offset, length)
	if !ok {
		return nil, outOfBounds(offset, length, m.Mem.Size())
	}
	return data, nil
}

func (m *Memory) Size() uint32 {
	return m.Mem.Size()
}

// Grow adds pages and returns the previous size in pages. Views obtained
// before growth must be refreshed.
func (m *Memory) Grow(pages uint32) (uint32, error) {
	prev, ok := m.Mem.Grow(pages)
	if !ok {
		return 0, errors.New(errors.PhaseAccess, errors.KindOverflow).
			Value(pages).
			Detail("cannot grow memory by %d pages", pages).
			Build()
	}
	return prev, nil
}

func outOfBounds(offset, length, size uint32) error {
	return errors.New(errors.PhaseAccess, errors.KindIndexOutOfRange).
		Value(offset).
		Detail("range [%d, %d) outside memory of %d octets", offset, uint64(offset)+uint64(length), size).
		Build()
}

// Table is an array of fixed-size elements at a fixed guest address.
type Table struct {
	mem      *Memory
	cur      *cursor.Cursor
	offset   uint32
	elemSize uint32
	count    uint32
}

// NewTable maps count elements of elemSize octets starting at offset.
func NewTable(mem *Memory, offset, elemSize, count uint32, checked bool) (*Table, error) {
	t := &Table{mem: mem, offset: offset, elemSize: elemSize, count: count}
	data, err := t.view()
	if err != nil {
		return nil, err
	}
	if checked {
		t.cur = cursor.NewChecked(data, elemSize)
	} else {
		t.cur = cursor.NewUnchecked(data, elemSize)
	}
	return t, nil
}

func (t *Table) view() ([]byte, error) {
	length := uint64(t.elemSize) * uint64(t.count)
	if length > uint64(^uint32(0)) {
		return nil, errors.Overflow(errors.PhaseAccess, nil, "table")
	}
	return t.mem.Read(t.offset, uint32(length))
}

func (t *Table) Cursor() *cursor.Cursor { return t.cur }
func (t *Table) Offset() uint32         { return t.offset }

// Refresh rebinds the cursor to the current memory, as needed after Grow.
func (t *Table) Refresh() error {
	data, err := t.view()
	if err != nil {
		return err
	}
	t.cur.Rebind(data)
	return nil
}

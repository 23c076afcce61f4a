// Package cursor binds compiled field contracts to a byte buffer.
//
// A Cursor holds the buffer, the element size and the current index. Views
// hold a pointer to the cursor and compute index*elemSize + offset on every
// access, so one set of views serves every element:
//
//	cur := cursor.NewChecked(buf, rec.Size)
//	pos := cur.View(rec).MustField("pos")
//	for i := range cur.All() {
//		pos.Index(0).SetFloat(float64(i))
//	}
//
// Checked cursors reject out of range indices with ErrIndexOutOfRange and
// leave the cursor and buffer untouched. Unchecked cursors accept any index
// and panic on access outside the buffer.
package cursor

package cursor

import (
	"math"

	"github.com/wippyai/binlayout/codec"
	"github.com/wippyai/binlayout/errors"
)

// AccessError is the panic value of a View method used on a field whose
// access kind does not support it.
type AccessError struct {
	Method string
	Access codec.Access
}

func (e *AccessError) Error() string {
	return "cursor: call of View." + e.Method + " on " + e.Access.String() + " field"
}

// View is a field accessor bound to a cursor. Views are small values; they
// share the cursor's buffer and index and never copy element data.
//
// Like reflect.Value, calling a method that does not fit the field's access
// kind panics with an *AccessError.
type View struct {
	cur  *Cursor
	f    *codec.Field
	base uint32
}

// Contract returns the compiled field behind the view.
func (v View) Contract() *codec.Field { return v.f }

// Offset is the absolute octet offset of the field in the buffer for the
// cursor's current index.
func (v View) Offset() int64 {
	return v.cur.Base() + int64(v.base)
}

// Bytes returns the octets the field occupies in the current element.
func (v View) Bytes() []byte {
	return v.cur.slice(v.base, v.f.Size)
}

func (v View) mustBe(method string, kinds ...codec.Access) {
	for _, k := range kinds {
		if v.f.Access == k {
			return
		}
	}
	panic(&AccessError{Method: method, Access: v.f.Access})
}

// raw loads the stored bits of a scalar, packed field or whole container.
func (v View) raw() uint64 {
	if p := v.f.Packed; p != nil {
		c := load(v.cur.slice(v.base, p.ContainerBits/8))
		return extract(c, p.ContainerBits, p.Shift, v.f.Width)
	}
	return load(v.cur.slice(v.base, v.f.Width/8))
}

func (v View) setRaw(x uint64) {
	if p := v.f.Packed; p != nil {
		b := v.cur.slice(v.base, p.ContainerBits/8)
		store(b, insert(load(b), p.ContainerBits, p.Shift, v.f.Width, x))
		return
	}
	store(v.cur.slice(v.base, v.f.Width/8), x&codec.FieldMask(v.f.Width))
}

// Raw returns the stored bit pattern. Valid for integers, normalized
// integers, floats and packed containers.
func (v View) Raw() uint64 {
	v.mustBe("Raw", codec.AccessInteger, codec.AccessNormalized, codec.AccessFloat, codec.AccessHalf, codec.AccessPacked)
	return v.raw()
}

// SetRaw stores the low Width bits of x.
func (v View) SetRaw(x uint64) {
	v.mustBe("SetRaw", codec.AccessInteger, codec.AccessNormalized, codec.AccessFloat, codec.AccessHalf, codec.AccessPacked)
	v.setRaw(x)
}

// Int returns an integer field, sign-extended for signed kinds.
func (v View) Int() int64 {
	v.mustBe("Int", codec.AccessInteger, codec.AccessNormalized)
	raw := v.raw()
	if v.f.Signed {
		return codec.SignExtend(raw, v.f.Width)
	}
	return int64(raw)
}

func (v View) SetInt(x int64) {
	v.mustBe("SetInt", codec.AccessInteger, codec.AccessNormalized)
	v.setRaw(uint64(x))
}

func (v View) Uint() uint64 {
	v.mustBe("Uint", codec.AccessInteger, codec.AccessNormalized)
	return v.raw()
}

func (v View) SetUint(x uint64) {
	v.mustBe("SetUint", codec.AccessInteger, codec.AccessNormalized)
	v.setRaw(x)
}

// Float returns normalized integers in [0,1] or [-1,1], floats and half
// floats as float64, and plain integers converted.
func (v View) Float() float64 {
	switch v.f.Access {
	case codec.AccessNormalized:
		return v.f.ToNormalized(v.raw())
	case codec.AccessHalf:
		return codec.HalfToFloat(uint16(v.raw()))
	case codec.AccessFloat:
		if v.f.Width == 32 {
			return float64(math.Float32frombits(uint32(v.raw())))
		}
		return math.Float64frombits(v.raw())
	case codec.AccessInteger:
		if v.f.Signed {
			return float64(codec.SignExtend(v.raw(), v.f.Width))
		}
		return float64(v.raw())
	}
	panic(&AccessError{Method: "Float", Access: v.f.Access})
}

// SetFloat stores x. Normalized fields clamp out of range input; integer
// fields truncate toward zero.
func (v View) SetFloat(x float64) {
	switch v.f.Access {
	case codec.AccessNormalized:
		v.setRaw(v.f.FromNormalized(x))
	case codec.AccessHalf:
		v.setRaw(uint64(codec.HalfFromFloat(x)))
	case codec.AccessFloat:
		if v.f.Width == 32 {
			v.setRaw(uint64(math.Float32bits(float32(x))))
			return
		}
		v.setRaw(math.Float64bits(x))
	case codec.AccessInteger:
		if v.f.Signed {
			v.setRaw(uint64(int64(x)))
			return
		}
		v.setRaw(uint64(x))
	default:
		panic(&AccessError{Method: "SetFloat", Access: v.f.Access})
	}
}

// Bool reports whether a flag is set.
func (v View) Bool() bool {
	v.mustBe("Bool", codec.AccessFlag)
	b := v.cur.slice(v.base, 1)
	return b[0]&v.f.Flag.Mask != 0
}

func (v View) SetBool(on bool) {
	v.mustBe("SetBool", codec.AccessFlag)
	b := v.cur.slice(v.base, 1)
	if on {
		b[0] |= v.f.Flag.Mask
	} else {
		b[0] &^= v.f.Flag.Mask
	}
}

// Str returns the content of a string field.
func (v View) Str() string {
	v.mustBe("Str", codec.AccessString)
	return v.f.String.Decode(v.Bytes())
}

// SetStr stores s according to the field's truncation policy.
func (v View) SetStr(s string) error {
	v.mustBe("SetStr", codec.AccessString)
	return v.f.String.Encode(v.Bytes(), s)
}

// Len returns the element count of a vector, matrix or array and the child
// count of a record, packed type or boolean set.
func (v View) Len() int {
	switch v.f.Access {
	case codec.AccessVector, codec.AccessMatrix, codec.AccessArray:
		return int(v.f.Count)
	case codec.AccessRecord, codec.AccessPacked, codec.AccessBoolSet:
		return len(v.f.Children)
	}
	panic(&AccessError{Method: "Len", Access: v.f.Access})
}

// Index returns element i of a vector, matrix (row-major) or array. It
// panics if i is out of range.
func (v View) Index(i int) View {
	v.mustBe("Index", codec.AccessVector, codec.AccessMatrix, codec.AccessArray)
	if i < 0 || i >= int(v.f.Count) {
		panic(errors.IndexOutOfRange(i, int(v.f.Count)))
	}
	return View{cur: v.cur, f: v.f.Elem, base: v.base + uint32(i)*v.f.Stride}
}

// At returns the matrix element at row r, column c.
func (v View) At(r, c int) View {
	v.mustBe("At", codec.AccessMatrix)
	dim := int(v.f.Dim)
	if r < 0 || r >= dim || c < 0 || c >= dim {
		panic(errors.IndexOutOfRange(r*dim+c, int(v.f.Count)))
	}
	return v.Index(r*dim + c)
}

// Field returns the named child of a record, packed type or boolean set.
// Offsets accumulate: the child view starts at this view's offset plus the
// child's own.
func (v View) Field(name string) (View, error) {
	v.mustBe("Field", codec.AccessRecord, codec.AccessPacked, codec.AccessBoolSet)
	child, ok := v.f.Child(name)
	if !ok {
		err := errors.NotFound(errors.PhaseAccess, "field", name)
		err.Path = v.f.Path
		return View{}, err
	}
	return View{cur: v.cur, f: child, base: v.base + child.Offset}, nil
}

// MustField is Field for names known to exist.
func (v View) MustField(name string) View {
	f, err := v.Field(name)
	if err != nil {
		panic(err)
	}
	return f
}

// Child returns child i in declaration order.
func (v View) Child(i int) View {
	v.mustBe("Child", codec.AccessRecord, codec.AccessPacked, codec.AccessBoolSet)
	child := v.f.Children[i]
	return View{cur: v.cur, f: child, base: v.base + child.Offset}
}

// SetAll writes every field of a packed type at once, one raw value per
// field in declaration order. The container is written once and padding
// bits are cleared.
func (v View) SetAll(values ...uint64) error {
	v.mustBe("SetAll", codec.AccessPacked)
	c, err := v.f.Pack(values...)
	if err != nil {
		return err
	}
	v.setRaw(c)
	return nil
}

// SetAllFloat is SetAll with normalized values.
func (v View) SetAllFloat(values ...float64) error {
	v.mustBe("SetAllFloat", codec.AccessPacked)
	c, err := v.f.PackFloat(values...)
	if err != nil {
		return err
	}
	v.setRaw(c)
	return nil
}

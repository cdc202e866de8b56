package cbor

import "math"

// Kind discriminates the variants of the CBOR value model (spec.md
// §3). It is never mutated once a Value is constructed.
type Kind uint8

const (
	KindUint Kind = iota
	KindNegInt
	KindBytes
	KindText
	KindArray
	KindMap
	KindMapElement
	KindTag
	KindNull
	KindFloat32
	KindFloat64
)

// String implements fmt.Stringer for diagnostics and TypeMismatchError
// messages.
func (k Kind) String() string {
	switch k {
	case KindUint:
		return "uint"
	case KindNegInt:
		return "negint"
	case KindBytes:
		return "bytes"
	case KindText:
		return "text"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindMapElement:
		return "map-element"
	case KindTag:
		return "tag"
	case KindNull:
		return "null"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	default:
		return "invalid"
	}
}

// Value is a single node of the CBOR value tree (spec.md §3). The
// active fields depend on Kind:
//
//   - KindUint:       u holds the magnitude
//   - KindNegInt:     u holds m, where the mathematical value is -1-m
//   - KindBytes/Text: buf holds the owned (copied) payload
//   - KindArray:      kids holds the ordered children
//   - KindMap:         kids holds KindMapElement children, in insertion order
//   - KindMapElement: kids holds exactly [key, value]
//   - KindTag:        u holds the tag number, kids holds exactly [item]
//   - KindFloat32/64: u holds the IEEE-754 bit pattern
//   - KindNull:        no payload
//
// For KindArray/KindMap, backing holds the allocator-owned slice
// obtained when the children slice was sized or grown; kids itself is
// a native Go slice (the allocator has no way to back a []*Value
// directly), so backing exists solely so Free has something to return
// to the allocator, keeping array/map pre-sizing honest participants in
// allocator failure injection (spec.md §8) instead of a call whose
// result is silently discarded.
//
// Ownership is tree-shaped (spec.md §3): every child has exactly one
// parent, and Free walks the whole tree exactly once.
type Value struct {
	Kind    Kind
	u       uint64
	buf     []byte
	kids    []*Value
	backing []byte
}

// NewUint constructs an unsigned-integer value.
func NewUint(v uint64) *Value {
	return &Value{Kind: KindUint, u: v}
}

// newNegInt constructs the wire-native negative-integer variant from
// its stored magnitude m, where the mathematical value is -1-m. It is
// unexported: callers build signed integers through NewInt, which
// picks KindUint or KindNegInt for them (spec.md §9's NINT
// recommendation).
func newNegInt(m uint64) *Value {
	return &Value{Kind: KindNegInt, u: m}
}

// NewInt constructs a signed 64-bit integer, choosing KindUint for
// non-negative values and KindNegInt for negative ones. This is the
// sole entry point for building a signed integer and the mirror image
// of Value.Int.
func NewInt(v int64) *Value {
	if v >= 0 {
		return NewUint(uint64(v))
	}
	return newNegInt(uint64(-1 - v))
}

// NewBytes constructs a byte-string value. a is used to copy buf into
// an owned buffer; on allocator failure NewBytes returns (nil, err).
func NewBytes(a Allocator, buf []byte) (*Value, error) {
	owned, err := a.Alloc(len(buf))
	if err != nil {
		return nil, err
	}
	copy(owned, buf)
	return &Value{Kind: KindBytes, buf: owned}, nil
}

// NewText constructs a text-string value. Encoding does not validate
// UTF-8 (spec.md §3): s is copied byte-for-byte.
func NewText(a Allocator, s string) (*Value, error) {
	owned, err := a.Alloc(len(s))
	if err != nil {
		return nil, err
	}
	copy(owned, s)
	return &Value{Kind: KindText, buf: owned}, nil
}

// NewArray constructs an array value pre-sized to length n (spec.md
// §4.2 discipline (a)); all n slots are initially nil and must be
// filled in (by the decoder) or replaced wholesale, or the Value
// should be built empty and grown with Append (discipline (b), used by
// Pack). a is consulted (and may fail) so that array pre-sizing
// participates in allocator failure injection the same way a C
// cbor_make_array does.
func NewArray(a Allocator, n int) (*Value, error) {
	backing, err := a.Alloc(n * int(ptrSize))
	if err != nil {
		return nil, err
	}
	return &Value{Kind: KindArray, kids: make([]*Value, n), backing: backing}, nil
}

// NewMap constructs a map value pre-sized to n KindMapElement slots,
// mirroring NewArray's discipline.
func NewMap(a Allocator, n int) (*Value, error) {
	backing, err := a.Alloc(n * int(ptrSize))
	if err != nil {
		return nil, err
	}
	return &Value{Kind: KindMap, kids: make([]*Value, n), backing: backing}, nil
}

// NewMapElement pairs a key and a value into a single KindMapElement
// node (spec.md §3 "Map element owning exactly one key value and one
// value value").
func NewMapElement(a Allocator, key, value *Value) (*Value, error) {
	if _, err := a.Alloc(0); err != nil {
		return nil, err
	}
	return &Value{Kind: KindMapElement, kids: []*Value{key, value}}, nil
}

// NewTag constructs a tag value wrapping exactly one child item.
func NewTag(a Allocator, tag uint64, item *Value) (*Value, error) {
	if _, err := a.Alloc(0); err != nil {
		return nil, err
	}
	return &Value{Kind: KindTag, u: tag, kids: []*Value{item}}, nil
}

// NewNull constructs the null value.
func NewNull() *Value {
	return &Value{Kind: KindNull}
}

// NewFloat32 constructs a float32 value.
func NewFloat32(f float32) *Value {
	return &Value{Kind: KindFloat32, u: uint64(math.Float32bits(f))}
}

// NewFloat64 constructs a float64 value. A half-precision float
// decoded off the wire is always promoted into this variant (spec.md
// §3 "Constructed half-precision floats are decoded to Float64").
func NewFloat64(f float64) *Value {
	return &Value{Kind: KindFloat64, u: math.Float64bits(f)}
}

const ptrSize = 8

// Uint returns the magnitude for a KindUint value. The caller must
// check Kind first; Uint does not check it and, on any other variant,
// returns that variant's raw u field.
func (v *Value) Uint() uint64 { return v.u }

// NegMagnitude returns the stored magnitude m of a KindNegInt value,
// where the mathematical value is -1-m.
func (v *Value) NegMagnitude() uint64 { return v.u }

// Bytes returns the owned buffer of a KindBytes value.
func (v *Value) Bytes() []byte { return v.buf }

// Text returns the owned buffer of a KindText value as a string,
// copying it (strings are immutable in Go; this keeps Value's
// internal buf as the single owner).
func (v *Value) Text() string { return string(v.buf) }

// Len returns the number of children of an Array or Map value.
func (v *Value) Len() int { return len(v.kids) }

// At returns the i'th child of an Array value.
func (v *Value) At(i int) *Value { return v.kids[i] }

// Element returns the i'th KindMapElement child of a Map value.
func (v *Value) Element(i int) *Value { return v.kids[i] }

// Key returns the key half of a KindMapElement value.
func (v *Value) Key() *Value { return v.kids[0] }

// MapValue returns the value half of a KindMapElement value.
func (v *Value) MapValue() *Value { return v.kids[1] }

// Tag returns the tag number of a KindTag value.
func (v *Value) Tag() uint64 { return v.u }

// Item returns the tagged child of a KindTag value.
func (v *Value) Item() *Value { return v.kids[0] }

// Float32 returns the payload of a KindFloat32 value.
func (v *Value) Float32() float32 { return math.Float32frombits(uint32(v.u)) }

// Float64 returns the payload of a KindFloat64 value.
func (v *Value) Float64() float64 { return math.Float64frombits(v.u) }

// Append grows an Array value by one child, placed at the end
// (spec.md §4.2 "Append"). Growth is failure-safe: on allocator
// failure the array is unchanged and item remains the caller's to
// free.
func (v *Value) Append(a Allocator, item *Value) error {
	nb, err := a.Realloc(v.backing, (len(v.kids)+1)*int(ptrSize))
	if err != nil {
		return err
	}
	v.backing = nb
	v.kids = append(v.kids, item)
	return nil
}

// AppendElement grows a Map value by one KindMapElement child
// (spec.md §4.2 "Append-element").
func (v *Value) AppendElement(a Allocator, elem *Value) error {
	nb, err := a.Realloc(v.backing, (len(v.kids)+1)*int(ptrSize))
	if err != nil {
		return err
	}
	v.backing = nb
	v.kids = append(v.kids, elem)
	return nil
}

// AppendMapEntry builds a KindMapElement from key and value and
// appends it to a Map value. On failure the map is unchanged and the
// caller owns key and value and must free them; an element built
// before a failed append is not returned and is discarded.
func (v *Value) AppendMapEntry(a Allocator, key, value *Value) error {
	elem, err := NewMapElement(a, key, value)
	if err != nil {
		return err
	}
	if err := v.AppendElement(a, elem); err != nil {
		return err
	}
	return nil
}

// Free recursively destroys v, returning its owned buffers and nodes
// to a (spec.md §4.2 "Recursive destructor"). Visiting an
// unrecognized Kind is a programmer error and panics.
func (v *Value) Free(a Allocator) {
	if v == nil {
		return
	}
	switch v.Kind {
	case KindUint, KindNegInt, KindNull, KindFloat32, KindFloat64:
		// no owned payload
	case KindBytes, KindText:
		a.Free(v.buf)
	case KindArray, KindMap:
		for _, k := range v.kids {
			k.Free(a)
		}
		a.Free(v.backing)
	case KindMapElement:
		v.kids[0].Free(a)
		v.kids[1].Free(a)
	case KindTag:
		v.kids[0].Free(a)
	default:
		panic("cbor: Free of value with unknown Kind")
	}
}

// Int is the signed-integer accessor bridging the two integer wire
// forms (spec.md §4.2 "Signed-integer accessor"). It succeeds for
// KindUint when the magnitude fits in an int64, and for KindNegInt
// when the magnitude fits in an int64 (yielding -1-m); it fails for
// any other Kind, or for a magnitude that would overflow int64.
func (v *Value) Int() (int64, bool) {
	switch v.Kind {
	case KindUint:
		if v.u > math.MaxInt64 {
			return 0, false
		}
		return int64(v.u), true
	case KindNegInt:
		if v.u > math.MaxInt64 {
			return 0, false
		}
		return -1 - int64(v.u), true
	default:
		return 0, false
	}
}

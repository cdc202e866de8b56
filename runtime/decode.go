package cbor

import (
	"encoding/binary"
	"math"

	"github.com/x448/float16"
)

// decoder holds the byte cursor and allocator used while recursively
// building a value tree (spec.md §4.3). p advances as bytes are
// consumed; start/end never change.
type decoder struct {
	start, p, end []byte
	alloc         Allocator
	maxDepth      int
}

// take advances the cursor by want bytes and returns them, or returns
// nil if fewer than want bytes remain (spec.md §4.3 "cbor_take").
func (d *decoder) take(want int) []byte {
	if len(d.p) < want {
		return nil
	}
	b := d.p[:want:want]
	d.p = d.p[want:]
	return b
}

// Decoder configures and runs decode operations. The zero value uses
// DefaultAllocator and a conservative recursion bound.
type Decoder struct {
	// Allocator is consulted for every owned buffer and container
	// backing slice built while decoding. Defaults to DefaultAllocator.
	Allocator Allocator

	// MaxDepth bounds container/tag nesting (spec.md §9 "Recursion
	// depth" — "Implementers targeting untrusted input must enforce a
	// maximum depth"). Zero selects defaultMaxDepth.
	MaxDepth int
}

func (dd Decoder) resolve() (Allocator, int) {
	a := dd.Allocator
	if a == nil {
		a = DefaultAllocator
	}
	depth := dd.MaxDepth
	if depth <= 0 {
		depth = defaultMaxDepth
	}
	return a, depth
}

// Decode decodes a single CBOR item from b using a Decoder with
// allocator a (DefaultAllocator if a is nil) and the default depth
// bound. It is the package-level convenience wrapper around
// Decoder.Decode.
func Decode(a Allocator, b []byte) (*Value, error) {
	dd := Decoder{Allocator: a}
	return dd.Decode(b)
}

// Decode decodes a single CBOR item from b (spec.md §4.3). On
// malformed or truncated input it returns (nil, err); any partially
// built subtree is freed before returning.
func (dd Decoder) Decode(b []byte) (*Value, error) {
	a, depth := dd.resolve()
	d := &decoder{start: b, p: b, end: b[len(b):], alloc: a, maxDepth: depth}
	return d.decodeOne(0)
}

// decodeOne reads the initial byte and dispatches on its major type,
// mirroring the per-initial-byte jump table in spec.md §4.3's original
// C (decfuns[256]).
func (d *decoder) decodeOne(depth int) (*Value, error) {
	if depth > d.maxDepth {
		return nil, ErrMaxDepthExceeded
	}
	lead := d.take(1)
	if lead == nil {
		return nil, ErrShortBytes
	}
	b := lead[0]
	major := getMajorType(b)
	add := getAddInfo(b)

	switch major {
	case majorTypeUint:
		m, err := d.readLen(add)
		if err != nil {
			return nil, err
		}
		return NewUint(m), nil

	case majorTypeNegInt:
		m, err := d.readLen(add)
		if err != nil {
			return nil, err
		}
		return newNegInt(m), nil

	case majorTypeBytes:
		n, err := d.readLen(add)
		if err != nil {
			return nil, err
		}
		want, err := d.checkedLen(n)
		if err != nil {
			return nil, err
		}
		raw := d.take(want)
		if raw == nil {
			return nil, ErrShortBytes
		}
		return NewBytes(d.alloc, raw)

	case majorTypeText:
		n, err := d.readLen(add)
		if err != nil {
			return nil, err
		}
		want, err := d.checkedLen(n)
		if err != nil {
			return nil, err
		}
		raw := d.take(want)
		if raw == nil {
			return nil, ErrShortBytes
		}
		return NewText(d.alloc, string(raw))

	case majorTypeArray:
		n, err := d.readLen(add)
		if err != nil {
			return nil, err
		}
		want, err := d.checkedLen(n)
		if err != nil {
			return nil, err
		}
		return d.decodeArray(want, depth)

	case majorTypeMap:
		n, err := d.readLen(add)
		if err != nil {
			return nil, err
		}
		want, err := d.checkedLen(n)
		if err != nil {
			return nil, err
		}
		return d.decodeMap(want, depth)

	case majorTypeTag:
		tag, err := d.readLen(add)
		if err != nil {
			return nil, err
		}
		item, err := d.decodeOne(depth + 1)
		if err != nil {
			return nil, err
		}
		v, err := NewTag(d.alloc, tag, item)
		if err != nil {
			item.Free(d.alloc)
			return nil, err
		}
		return v, nil

	case majorTypeSimple:
		return d.decodeSimple(b, add)

	default:
		return nil, ErrUnknownMajorType{Byte: b}
	}
}

// readLen reads the literal-or-length-prefixed 64-bit value encoded by
// additional-info add (spec.md §4.3 "Length extraction"). It is used
// both for container/string counts and for integer magnitudes, which
// share the same additional-info encoding.
func (d *decoder) readLen(add uint8) (uint64, error) {
	switch {
	case add <= addInfoDirect:
		return uint64(add), nil
	case add == addInfoUint8:
		p := d.take(1)
		if p == nil {
			return 0, ErrShortBytes
		}
		return uint64(p[0]), nil
	case add == addInfoUint16:
		p := d.take(2)
		if p == nil {
			return 0, ErrShortBytes
		}
		return uint64(binary.BigEndian.Uint16(p)), nil
	case add == addInfoUint32:
		p := d.take(4)
		if p == nil {
			return 0, ErrShortBytes
		}
		return uint64(binary.BigEndian.Uint32(p)), nil
	case add == addInfoUint64:
		p := d.take(8)
		if p == nil {
			return 0, ErrShortBytes
		}
		return binary.BigEndian.Uint64(p), nil
	default:
		return 0, ErrInvalidAdditionalInfo{AddInfo: add}
	}
}

// checkedLen converts a 64-bit length or count read by readLen into an
// int usable for take/make. No well-formed item can encode a byte
// length or child count larger than the bytes remaining in the input —
// a string needs that many bytes outright, and even the most compact
// child (a single-byte scalar) needs one byte apiece — so anything
// larger is rejected here as truncated input (spec.md §7: malformed
// input fails cleanly, it never panics). This also catches the
// int(n) overflow an additional-info-27 length above math.MaxInt64
// would otherwise produce, which would have gone negative and defeated
// take's own length check or reached a negative make() call.
func (d *decoder) checkedLen(n uint64) (int, error) {
	if n > uint64(len(d.p)) {
		return 0, ErrShortBytes
	}
	return int(n), nil
}

// decodeArray pre-sizes an array to n and recursively decodes each
// child directly into its slot (spec.md §4.3 "Recursive
// construction"). On any child failure the partial container and its
// already-decoded children are freed.
func (d *decoder) decodeArray(n int, depth int) (*Value, error) {
	c, err := NewArray(d.alloc, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		e, err := d.decodeOne(depth + 1)
		if err != nil {
			c.Free(d.alloc)
			return nil, err
		}
		c.kids[i] = e
	}
	return c, nil
}

// decodeMap pre-sizes a map to n key/value pairs and recursively
// decodes each, mirroring decodeArray.
func (d *decoder) decodeMap(n int, depth int) (*Value, error) {
	c, err := NewMap(d.alloc, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		k, err := d.decodeOne(depth + 1)
		if err != nil {
			c.Free(d.alloc)
			return nil, err
		}
		v, err := d.decodeOne(depth + 1)
		if err != nil {
			k.Free(d.alloc)
			c.Free(d.alloc)
			return nil, err
		}
		elem, err := NewMapElement(d.alloc, k, v)
		if err != nil {
			k.Free(d.alloc)
			v.Free(d.alloc)
			c.Free(d.alloc)
			return nil, err
		}
		c.kids[i] = elem
	}
	return c, nil
}

// decodeSimple handles major type 7: null and the three float widths
// (spec.md §4.3's table; booleans and indefinite-length markers are
// outside the subset this package implements).
func (d *decoder) decodeSimple(lead byte, add uint8) (*Value, error) {
	switch lead {
	case simpleNull:
		return NewNull(), nil
	case simpleFloat16:
		p := d.take(2)
		if p == nil {
			return nil, ErrShortBytes
		}
		bits := binary.BigEndian.Uint16(p)
		f64 := decodeHalf(bits)
		return NewFloat64(f64), nil
	case simpleFloat32:
		p := d.take(4)
		if p == nil {
			return nil, ErrShortBytes
		}
		bits := binary.BigEndian.Uint32(p)
		return NewFloat32(math.Float32frombits(bits)), nil
	case simpleFloat64:
		p := d.take(8)
		if p == nil {
			return nil, ErrShortBytes
		}
		bits := binary.BigEndian.Uint64(p)
		return NewFloat64(math.Float64frombits(bits)), nil
	default:
		return nil, ErrUnknownMajorType{Byte: lead}
	}
}

// decodeHalf converts an IEEE-754 half-precision bit pattern to a
// float64 (spec.md §4.3 "Half-precision decoding"), delegating to
// x448/float16 rather than hand-rolling the subnormal/normal/inf/NaN
// cases spec.md spells out, since that package's Float32 method
// already implements exactly this conversion.
func decodeHalf(bits uint16) float64 {
	return float64(float16.Frombits(bits).Float32())
}

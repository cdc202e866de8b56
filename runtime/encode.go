package cbor

import "encoding/binary"

// encoder drives the two-phase (size, then bytes) traversal described
// in spec.md §4.4. Both phases share encodeOne; justSize selects
// whether it measures or writes.
type encoder struct {
	out      []byte // destination when !justSize; unused otherwise
	pos      int    // bytes written so far when !justSize
	justSize bool
}

// EncodeSize returns the exact number of bytes Encode would write for
// v (spec.md §4.4, §8 "Size-query law").
func EncodeSize(v *Value) uint64 {
	e := &encoder{justSize: true}
	return e.encodeOne(v)
}

// Encode writes v into buf and returns the number of bytes written.
// If buf is too small, it returns (0, ErrShortBuffer) rather than the
// ambiguous same-return-for-success-and-failure the original C
// cbor_encode used (spec.md §9).
func Encode(v *Value, buf []byte) (int, error) {
	need := EncodeSize(v)
	if uint64(len(buf)) < need {
		return 0, ErrShortBuffer
	}
	e := &encoder{out: buf}
	e.encodeOne(v)
	return e.pos, nil
}

// take reserves n bytes at the current write position and returns
// them for the caller to fill, advancing pos. In size-only mode it
// just advances a counter. Mirrors spec.md §4.3's cbor_take, reused
// here on the write side.
func (e *encoder) take(n int) []byte {
	if e.justSize {
		e.pos += n
		return nil
	}
	b := e.out[e.pos : e.pos+n]
	e.pos += n
	return b
}

// encodeOne dispatches on v.Kind and returns the number of bytes the
// item occupies (spec.md §4.4's per-variant table).
func (e *encoder) encodeOne(v *Value) uint64 {
	switch v.Kind {
	case KindUint:
		return e.encodeUint(majorTypeUint, v.u)
	case KindNegInt:
		return e.encodeUint(majorTypeNegInt, v.u)
	case KindBytes:
		return e.encodeData(majorTypeBytes, v.buf)
	case KindText:
		return e.encodeData(majorTypeText, v.buf)
	case KindArray:
		return e.encodeContainer(majorTypeArray, v.kids)
	case KindMap:
		return e.encodeContainer(majorTypeMap, v.kids)
	case KindMapElement:
		k := e.encodeOne(v.kids[0])
		val := e.encodeOne(v.kids[1])
		return k + val
	case KindTag:
		t := e.encodeUint(majorTypeTag, v.u)
		item := e.encodeOne(v.kids[0])
		return t + item
	case KindNull:
		p := e.take(1)
		if !e.justSize {
			p[0] = simpleNull
		}
		return 1
	case KindFloat32:
		p := e.take(5)
		if !e.justSize {
			p[0] = simpleFloat32
			binary.BigEndian.PutUint32(p[1:], uint32(v.u))
		}
		return 5
	case KindFloat64:
		p := e.take(9)
		if !e.justSize {
			p[0] = simpleFloat64
			binary.BigEndian.PutUint64(p[1:], v.u)
		}
		return 9
	default:
		panic("cbor: encode of value with unknown Kind")
	}
}

// encodeUint encodes a 64-bit magnitude under the given major type
// using the shortest length class that fits (spec.md §4.4 "Integer
// length-class selection").
func (e *encoder) encodeUint(major uint8, v uint64) uint64 {
	switch {
	case v <= addInfoDirect:
		p := e.take(1)
		if !e.justSize {
			p[0] = makeByte(major, uint8(v))
		}
		return 1
	case v <= 0xff:
		p := e.take(2)
		if !e.justSize {
			p[0] = makeByte(major, addInfoUint8)
			p[1] = uint8(v)
		}
		return 2
	case v <= 0xffff:
		p := e.take(3)
		if !e.justSize {
			p[0] = makeByte(major, addInfoUint16)
			binary.BigEndian.PutUint16(p[1:], uint16(v))
		}
		return 3
	case v <= 0xffffffff:
		p := e.take(5)
		if !e.justSize {
			p[0] = makeByte(major, addInfoUint32)
			binary.BigEndian.PutUint32(p[1:], uint32(v))
		}
		return 5
	default:
		p := e.take(9)
		if !e.justSize {
			p[0] = makeByte(major, addInfoUint64)
			binary.BigEndian.PutUint64(p[1:], v)
		}
		return 9
	}
}

// encodeData emits a length header (major 2 or 3) followed by the raw
// payload.
func (e *encoder) encodeData(major uint8, data []byte) uint64 {
	hdr := e.encodeUint(major, uint64(len(data)))
	p := e.take(len(data))
	if !e.justSize {
		copy(p, data)
	}
	return hdr + uint64(len(data))
}

// encodeContainer emits a length header (major 4 or 5) followed by the
// concatenation of each child's own encoding. A map's element children
// contribute no header of their own (spec.md §4.4 "Map element").
func (e *encoder) encodeContainer(major uint8, kids []*Value) uint64 {
	n := e.encodeUint(major, uint64(len(kids)))
	for _, k := range kids {
		n += e.encodeOne(k)
	}
	return n
}

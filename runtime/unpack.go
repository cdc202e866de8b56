package cbor

import "strconv"

// Unpack walks a format string alongside a value tree, writing scalars
// out through pointer arguments and using 'S' lookups to navigate maps
// by key — the mirror image of Pack (spec.md §4.6). As with Pack, the
// 'b'/'s' tokens write a *[]byte / *string rather than a separate
// (lenp, pp) pair, since the Go destination type already carries its
// own length.
//
// A mismatch between the format's expectation and the tree's actual
// Kind is a soft, resumable TypeMismatchError (spec.md §7): the caller
// chose the format against untrusted data and may recover. A malformed
// format string itself (unknown token, unmatched bracket) remains a
// programmer error and panics, as in Pack.
//
// Token table (spec.md §4.6):
//
//	u        *uint64 out           <- KindUint
//	i        *int64 out            <- KindUint or KindNegInt
//	b        *[]byte out (copied)  <- KindBytes
//	s        *string out           <- KindText
//	[ ... ]  nested tokens, positional <- KindArray
//	{ ... }  repeated "S", key, token  <- KindMap, by-key lookup
//	t        *uint64 out, then a token <- KindTag
//	c        **Value out, no copy      <- adopts the node as-is
func Unpack(a Allocator, v *Value, format string, outs ...any) error {
	outi := 0
	_, err := unpackOne(a, v, format, 0, outs, &outi)
	return err
}

// unpackOne consumes exactly one token (and, for containers/tags, the
// tokens nested inside it) against v, returning the position just past
// what it consumed.
func unpackOne(a Allocator, v *Value, format string, pos int, outs []any, outi *int) (int, error) {
	if pos >= len(format) {
		panic("cbor: malformed unpack format string: unexpected end")
	}
	tok := format[pos]
	pos++

	switch tok {
	case 'u':
		if v.Kind != KindUint {
			return pos, TypeMismatchError{Want: KindUint, Got: v.Kind}
		}
		*nextItem(outs, outi).(*uint64) = v.Uint()
		return pos, nil

	case 'i':
		iv, ok := v.Int()
		if !ok {
			if v.Kind == KindUint || v.Kind == KindNegInt {
				return pos, ErrIntOverflow{Kind: v.Kind}
			}
			return pos, TypeMismatchError{Want: KindUint, Got: v.Kind}
		}
		*nextItem(outs, outi).(*int64) = iv
		return pos, nil

	case 'b':
		if v.Kind != KindBytes {
			return pos, TypeMismatchError{Want: KindBytes, Got: v.Kind}
		}
		owned, err := a.Alloc(len(v.Bytes()))
		if err != nil {
			return pos, err
		}
		copy(owned, v.Bytes())
		*nextItem(outs, outi).(*[]byte) = owned
		return pos, nil

	case 's':
		if v.Kind != KindText {
			return pos, TypeMismatchError{Want: KindText, Got: v.Kind}
		}
		*nextItem(outs, outi).(*string) = v.Text()
		return pos, nil

	case '[':
		return unpackArray(a, v, format, pos, outs, outi)

	case ']':
		panic("cbor: malformed unpack format string: unmatched ']'")

	case '{':
		return unpackMap(a, v, format, pos, outs, outi)

	case '}':
		panic("cbor: malformed unpack format string: unmatched '}'")

	case 't':
		if v.Kind != KindTag {
			return pos, TypeMismatchError{Want: KindTag, Got: v.Kind}
		}
		*nextItem(outs, outi).(*uint64) = v.Tag()
		return unpackOne(a, v.Item(), format, pos, outs, outi)

	case 'c':
		*nextItem(outs, outi).(**Value) = v
		return pos, nil

	default:
		panic("cbor: malformed unpack format string: unknown token '" + string(tok) + "'")
	}
}

func unpackArray(a Allocator, v *Value, format string, pos int, outs []any, outi *int) (int, error) {
	if v.Kind != KindArray {
		return pos, TypeMismatchError{Want: KindArray, Got: v.Kind}
	}
	i := 0
	for {
		if pos >= len(format) {
			panic("cbor: malformed unpack format string: unterminated '['")
		}
		if format[pos] == ']' {
			return pos + 1, nil
		}
		if i >= v.Len() {
			return pos, ErrArrayTooShort{Want: i + 1, Got: v.Len()}
		}
		newPos, err := unpackOne(a, v.At(i), format, pos, outs, outi)
		if err != nil {
			return newPos, WrapError(err, "index "+strconv.Itoa(i))
		}
		pos = newPos
		i++
	}
}

func unpackMap(a Allocator, v *Value, format string, pos int, outs []any, outi *int) (int, error) {
	if v.Kind != KindMap {
		return pos, TypeMismatchError{Want: KindMap, Got: v.Kind}
	}
	for {
		if pos >= len(format) {
			panic("cbor: malformed unpack format string: unterminated '{'")
		}
		if format[pos] == '}' {
			return pos + 1, nil
		}
		if format[pos] != 'S' {
			panic("cbor: malformed unpack format string: expected 'S' before a map key")
		}
		pos++
		key := nextItem(outs, outi).(string)
		val := mapFind(v, key)
		if val == nil {
			return pos, ErrMapKeyNotFound{Key: key}
		}
		newPos, err := unpackOne(a, val, format, pos, outs, outi)
		if err != nil {
			return newPos, WrapError(err, "key "+key)
		}
		pos = newPos
	}
}

// mapFind looks up key by exact text equality among m's elements. The
// original C cbor_unpack used strncmp bounded by the shorter key
// length, which let a short lookup key spuriously match a longer
// stored key (spec.md §9); this requires the full key to match.
func mapFind(m *Value, key string) *Value {
	for i := 0; i < m.Len(); i++ {
		e := m.Element(i)
		k := e.Key()
		if k.Kind == KindText && k.Text() == key {
			return e.MapValue()
		}
	}
	return nil
}

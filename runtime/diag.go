package cbor

import (
	"io"
	"strconv"
	"strings"
)

// Sprint renders v as a human-readable diagnostic string (spec.md
// §4.7), grounded on the teacher's DiagBytes/diagOneBuf pair in
// runtime/diag.go. Unlike the original C seprint(bp, be, ...), which
// writes into a caller-provided character buffer and truncates at its
// end, Sprint always succeeds and returns the complete rendering; use
// Fprint against a bounded io.Writer for the truncating behavior.
func Sprint(v *Value) string {
	var b strings.Builder
	_ = fprintOne(&b, v)
	return b.String()
}

// Fprint writes v's diagnostic rendering to w, stopping and returning
// w's error the first time a Write call fails — the equivalent of the
// C original's buffer-exhaustion truncation when w is a capacity-
// bounded writer such as a bytes.Buffer wrapped to a fixed size.
func Fprint(w io.Writer, v *Value) error {
	return fprintOne(w, v)
}

func fprintOne(w io.Writer, v *Value) error {
	switch v.Kind {
	case KindUint:
		return writeString(w, strconv.FormatUint(v.Uint(), 10))

	case KindNegInt:
		return writeString(w, "-"+strconv.FormatUint(v.NegMagnitude()+1, 10))

	case KindBytes:
		return writeString(w, strings.ToUpper(hexEncode(v.Bytes())))

	case KindText:
		return writeString(w, strconv.Quote(v.Text()))

	case KindArray:
		return fprintSeq(w, "[", "]", v.Len(), func(i int) error {
			return fprintOne(w, v.At(i))
		})

	case KindMap:
		return fprintSeq(w, "{", "}", v.Len(), func(i int) error {
			e := v.Element(i)
			if err := fprintOne(w, e.Key()); err != nil {
				return err
			}
			if err := writeString(w, ": "); err != nil {
				return err
			}
			return fprintOne(w, e.MapValue())
		})

	case KindTag:
		if err := writeString(w, strconv.FormatUint(v.Tag(), 10)+"("); err != nil {
			return err
		}
		if err := fprintOne(w, v.Item()); err != nil {
			return err
		}
		return writeString(w, ")")

	case KindNull:
		return writeString(w, "null")

	case KindFloat32:
		return writeString(w, formatFloatDiag(float64(v.Float32()), 32))

	case KindFloat64:
		return writeString(w, formatFloatDiag(v.Float64(), 64))

	default:
		panic("cbor: diag of value with unknown Kind")
	}
}

func fprintSeq(w io.Writer, open, close string, n int, elem func(i int) error) error {
	if err := writeString(w, open); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if i > 0 {
			if err := writeString(w, ", "); err != nil {
				return err
			}
		}
		if err := elem(i); err != nil {
			return err
		}
	}
	return writeString(w, close)
}

func writeString(w io.Writer, s string) error {
	_, err := io.WriteString(w, s)
	return err
}

func hexEncode(b []byte) string {
	const digits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = digits[c>>4]
		out[i*2+1] = digits[c&0xf]
	}
	return string(out)
}

// formatFloatDiag renders f in general format with a guaranteed decimal
// point (spec.md §4.7: "floats in general format with a decimal
// point"), appending ".0" when strconv.FormatFloat's 'g' verb yields an
// integer-looking string (no '.', exponent, Inf or NaN).
func formatFloatDiag(f float64, bitSize int) string {
	s := strconv.FormatFloat(f, 'g', -1, bitSize)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

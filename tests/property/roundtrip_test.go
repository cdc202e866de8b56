package tests

import (
	"math"
	"testing"
	"testing/quick"

	cbor "github.com/mischief/libcbor/runtime"
)

// TestEncodeDecodeRoundTrip drives spec.md §8's "Encode/Decode round
// trip law": for any value built via Pack, decoding Encode's output
// must reproduce an equal wire form on re-encode. testing/quick
// supplies the random inputs, grounded on the standard library
// property-testing tool the teacher's own fuzz-style tests build on.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	f := func(u uint64, i int64, s string, bs []byte) bool {
		a := cbor.DefaultAllocator
		v, err := cbor.Pack(a, "[uisb[uu]{su}]", u, i, s, bs, u, u, "x", u)
		if err != nil {
			t.Fatalf("Pack: %v", err)
		}
		defer v.Free(a)

		size := cbor.EncodeSize(v)
		buf := make([]byte, size)
		n, err := cbor.Encode(v, buf)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}

		decoded, err := cbor.Decode(a, buf[:n])
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		defer decoded.Free(a)

		size2 := cbor.EncodeSize(decoded)
		buf2 := make([]byte, size2)
		n2, err := cbor.Encode(decoded, buf2)
		if err != nil {
			t.Fatalf("re-Encode: %v", err)
		}
		return n == n2 && string(buf[:n]) == string(buf2[:n2])
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

// TestSizeQueryLaw checks spec.md §8's "Size-query law": EncodeSize(v)
// always equals the number of bytes Encode actually writes.
func TestSizeQueryLaw(t *testing.T) {
	f := func(u uint64, s string) bool {
		a := cbor.DefaultAllocator
		v, err := cbor.Pack(a, "[us]", u, s)
		if err != nil {
			t.Fatalf("Pack: %v", err)
		}
		defer v.Free(a)

		want := cbor.EncodeSize(v)
		buf := make([]byte, want)
		n, err := cbor.Encode(v, buf)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		return uint64(n) == want
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

// TestIntegerRoundTripSweep exercises Value.Int against NewInt across
// the int64 range's interesting boundaries, confirming the UINT/NINT
// bridge (spec.md §4.2 "Signed-integer accessor") is lossless.
func TestIntegerRoundTripSweep(t *testing.T) {
	cases := []int64{
		0, 1, -1, 23, 24, -24, -25, 255, 256, -256, -257,
		math.MaxInt32, math.MinInt32, math.MaxInt64, math.MinInt64,
	}
	for _, want := range cases {
		v := cbor.NewInt(want)
		got, ok := v.Int()
		if !ok {
			t.Fatalf("Int() failed for %d", want)
		}
		if got != want {
			t.Fatalf("NewInt(%d).Int() = %d", want, got)
		}
	}
}

// TestPackUnpackRoundTrip exercises a map round trip through both
// mini-languages together.
func TestPackUnpackRoundTrip(t *testing.T) {
	a := cbor.DefaultAllocator
	v, err := cbor.Pack(a, "{sssu}", "name", "ana", "age", uint64(30))
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	defer v.Free(a)

	var name string
	var age uint64
	if err := cbor.Unpack(a, v, "{SsSu}", "name", &name, "age", &age); err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if name != "ana" || age != 30 {
		t.Fatalf("Unpack got name=%q age=%d", name, age)
	}
}

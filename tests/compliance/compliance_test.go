package tests

import (
	"testing"

	fxcbor "github.com/fxamacker/cbor/v2"
	cbor "github.com/mischief/libcbor/runtime"
)

// TestCrossLibraryDecodeCompatibility checks that bytes encoded by this
// package are accepted, and interpreted the same way, by an
// independent RFC 8949 implementation (fxamacker/cbor/v2). This is the
// cross-library wire-compatibility check named in SPEC_FULL.md's
// benchmark/compliance addition — the value model itself is this
// package's own, so the comparison is necessarily at the level of
// Go's generic decode target (map[string]any / []any / scalars).
func TestCrossLibraryDecodeCompatibility(t *testing.T) {
	a := cbor.DefaultAllocator
	v, err := cbor.Pack(a, "{susu}", "a", uint64(1), "b", uint64(2))
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	defer v.Free(a)

	buf := make([]byte, cbor.EncodeSize(v))
	n, err := cbor.Encode(v, buf)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var got map[string]any
	if err := fxcbor.Unmarshal(buf[:n], &got); err != nil {
		t.Fatalf("fxamacker/cbor/v2 failed to decode our encoding: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d map entries, want 2", len(got))
	}
	assertUint64(t, got, "a", 1)
	assertUint64(t, got, "b", 2)
}

// TestCrossLibraryEncodeCompatibility checks the opposite direction:
// this package's Decode accepts bytes produced by fxamacker/cbor/v2
// for the shared definite-length subset both implement.
func TestCrossLibraryEncodeCompatibility(t *testing.T) {
	buf, err := fxcbor.Marshal(map[string]any{"x": uint64(7), "y": "hi"})
	if err != nil {
		t.Fatalf("fxamacker/cbor/v2 Marshal: %v", err)
	}

	v, err := cbor.Decode(cbor.DefaultAllocator, buf)
	if err != nil {
		t.Fatalf("our Decode rejected fxamacker/cbor/v2's encoding: %v", err)
	}
	defer v.Free(cbor.DefaultAllocator)

	if v.Kind != cbor.KindMap || v.Len() != 2 {
		t.Fatalf("decoded tree mismatch: kind=%v len=%d", v.Kind, v.Len())
	}
}

func assertUint64(t *testing.T, m map[string]any, key string, want uint64) {
	t.Helper()
	raw, ok := m[key]
	if !ok {
		t.Fatalf("missing key %q", key)
	}
	got, ok := raw.(uint64)
	if !ok {
		t.Fatalf("key %q: got %T, want uint64", key, raw)
	}
	if got != want {
		t.Fatalf("key %q = %d, want %d", key, got, want)
	}
}

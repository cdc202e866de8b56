package cbor

import "testing"

func TestPackInsufficientArgumentsPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic when the format string outruns the argument list")
		}
	}()
	Pack(DefaultAllocator, "uu", uint64(7))
}

func TestPackTopLevelConsumesOnlyFirstToken(t *testing.T) {
	// Pack builds exactly one value from the format string's first
	// token; a format string with leftover tokens after it is a
	// malformed-format programmer error once those tokens are reached
	// by a container, but a single scalar token at the top level simply
	// returns after consuming it.
	v, err := Pack(DefaultAllocator, "u", uint64(7))
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if v.Kind != KindUint || v.Uint() != 7 {
		t.Fatalf("Pack(\"u\", 7) = %+v", v)
	}
}

func TestPackArray(t *testing.T) {
	v, err := Pack(DefaultAllocator, "[uuu]", uint64(1), uint64(2), uint64(3))
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	defer v.Free(DefaultAllocator)
	if v.Kind != KindArray || v.Len() != 3 {
		t.Fatalf("Pack array: kind=%v len=%d", v.Kind, v.Len())
	}
}

func TestPackMap(t *testing.T) {
	v, err := Pack(DefaultAllocator, "{susu}", "a", uint64(1), "b", uint64(2))
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	defer v.Free(DefaultAllocator)
	if v.Kind != KindMap || v.Len() != 2 {
		t.Fatalf("Pack map: kind=%v len=%d", v.Kind, v.Len())
	}
}

func TestPackTag(t *testing.T) {
	v, err := Pack(DefaultAllocator, "tu", uint64(1), uint64(12345))
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	defer v.Free(DefaultAllocator)
	if v.Kind != KindTag || v.Tag() != 1 || v.Item().Uint() != 12345 {
		t.Fatalf("Pack tag mismatch: %+v", v)
	}
}

func TestPackAdoptsExistingValue(t *testing.T) {
	inner := NewUint(99)
	v, err := Pack(DefaultAllocator, "c", inner)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if v != inner {
		t.Fatalf("'c' token should adopt the passed *Value without copying")
	}
	v.Free(DefaultAllocator)
}

func TestPackUnknownTokenPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on unknown format token")
		}
	}()
	Pack(DefaultAllocator, "Q")
}

func TestPackUnmatchedBracketPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on unmatched ']'")
		}
	}()
	Pack(DefaultAllocator, "]")
}

func TestPackFloatTokens(t *testing.T) {
	f32, err := Pack(DefaultAllocator, "f", 1.5)
	if err != nil {
		t.Fatalf("Pack f: %v", err)
	}
	if f32.Kind != KindFloat32 {
		t.Fatalf("'f' token should build KindFloat32, got %v", f32.Kind)
	}

	f64, err := Pack(DefaultAllocator, "d", 1.5)
	if err != nil {
		t.Fatalf("Pack d: %v", err)
	}
	if f64.Kind != KindFloat64 {
		t.Fatalf("'d' token should build KindFloat64, got %v", f64.Kind)
	}
}

func TestUnpackScalars(t *testing.T) {
	v, err := Pack(DefaultAllocator, "{susb}", "u", uint64(42), "b", []byte{9, 9})
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	defer v.Free(DefaultAllocator)

	var u uint64
	var b []byte
	if err := Unpack(DefaultAllocator, v, "{SuSb}", "u", &u, "b", &b); err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if u != 42 {
		t.Fatalf("u = %d, want 42", u)
	}
	if string(b) != "\x09\x09" {
		t.Fatalf("b = %v, want [9 9]", b)
	}
}

func TestUnpackMissingKeyFails(t *testing.T) {
	v, err := Pack(DefaultAllocator, "{su}", "a", uint64(1))
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	defer v.Free(DefaultAllocator)

	var out uint64
	err = Unpack(DefaultAllocator, v, "{Su}", "missing", &out)
	if _, ok := err.(ErrMapKeyNotFound); !ok {
		t.Fatalf("Unpack missing key = %v, want ErrMapKeyNotFound", err)
	}
}

func TestUnpackTypeMismatchIsResumable(t *testing.T) {
	v := NewUint(1)
	var s string
	err := Unpack(DefaultAllocator, v, "s", &s)
	tm, ok := err.(TypeMismatchError)
	if !ok {
		t.Fatalf("Unpack type mismatch = %v, want TypeMismatchError", err)
	}
	if !tm.Resumable() {
		t.Fatalf("TypeMismatchError.Resumable() = false, want true")
	}
}

func TestUnpackExactKeyMatchNotPrefix(t *testing.T) {
	v, err := Pack(DefaultAllocator, "{su}", "foobar", uint64(1))
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	defer v.Free(DefaultAllocator)

	var out uint64
	err = Unpack(DefaultAllocator, v, "{Su}", "foo", &out)
	if _, ok := err.(ErrMapKeyNotFound); !ok {
		t.Fatalf("Unpack with a short key should not prefix-match a longer stored key; got %v", err)
	}
}

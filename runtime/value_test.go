package cbor

import "testing"

func TestNewIntChoosesVariant(t *testing.T) {
	if v := NewInt(5); v.Kind != KindUint {
		t.Fatalf("NewInt(5).Kind = %v, want KindUint", v.Kind)
	}
	if v := NewInt(-5); v.Kind != KindNegInt {
		t.Fatalf("NewInt(-5).Kind = %v, want KindNegInt", v.Kind)
	}
	if v := NewInt(0); v.Kind != KindUint {
		t.Fatalf("NewInt(0).Kind = %v, want KindUint", v.Kind)
	}
}

func TestIntRoundTrip(t *testing.T) {
	for _, want := range []int64{0, 1, -1, 1000, -1000} {
		got, ok := NewInt(want).Int()
		if !ok || got != want {
			t.Fatalf("NewInt(%d).Int() = (%d, %v)", want, got, ok)
		}
	}
}

func TestIntWrongKindFails(t *testing.T) {
	v, err := NewBytes(DefaultAllocator, []byte("x"))
	if err != nil {
		t.Fatalf("NewBytes: %v", err)
	}
	if _, ok := v.Int(); ok {
		t.Fatalf("Int() on a KindBytes value should fail")
	}
}

func TestAppendGrowsArray(t *testing.T) {
	arr, err := NewArray(DefaultAllocator, 0)
	if err != nil {
		t.Fatalf("NewArray: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := arr.Append(DefaultAllocator, NewUint(uint64(i))); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if arr.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", arr.Len())
	}
	for i := 0; i < 3; i++ {
		if got := arr.At(i).Uint(); got != uint64(i) {
			t.Fatalf("At(%d) = %d, want %d", i, got, i)
		}
	}
	arr.Free(DefaultAllocator)
}

func TestAppendMapEntry(t *testing.T) {
	m, err := NewMap(DefaultAllocator, 0)
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	key, err := NewText(DefaultAllocator, "k")
	if err != nil {
		t.Fatalf("NewText: %v", err)
	}
	if err := m.AppendMapEntry(DefaultAllocator, key, NewUint(42)); err != nil {
		t.Fatalf("AppendMapEntry: %v", err)
	}
	if m.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", m.Len())
	}
	e := m.Element(0)
	if e.Key().Text() != "k" || e.MapValue().Uint() != 42 {
		t.Fatalf("unexpected element: key=%q value=%d", e.Key().Text(), e.MapValue().Uint())
	}
	m.Free(DefaultAllocator)
}

func TestFreeOfUnknownKindPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("Free of an invalid Kind should panic")
		}
	}()
	v := &Value{Kind: Kind(255)}
	v.Free(DefaultAllocator)
}

func TestFreeOfNilIsNoop(t *testing.T) {
	var v *Value
	v.Free(DefaultAllocator) // must not panic
}

func TestNewArrayAllocatorFailureReturnsNil(t *testing.T) {
	fa := NewFaultAllocator(DefaultAllocator, 1)
	arr, err := NewArray(fa, 0)
	if err == nil {
		t.Fatalf("expected NewArray to observe the injected failure")
	}
	if arr != nil {
		t.Fatalf("NewArray should return nil on failure")
	}
}

package cbor

import (
	"errors"
	"sync"
)

// Allocator is the capability an application threads through every
// value-tree operation that allocates or frees memory (spec.md §4.1,
// §9 "Allocator as a capability, not a global"). Go's garbage
// collector removes the need to allocator-route the *Value nodes
// themselves, so Allocator here governs exactly the memory spec.md
// cares about for the failure-injection and arena properties: the
// owned byte/text buffers and the growth of array/map backing slices.
//
// Alloc and Realloc return a non-nil error on failure; callers must
// leave their own state untouched and propagate the failure (spec.md
// §4.1 "a failing allocate/reallocate must leave inputs untouched").
// Free is a hint — implementations that rely on GC may no-op it.
type Allocator interface {
	Alloc(size int) ([]byte, error)
	Realloc(old []byte, newSize int) ([]byte, error)
	Free(b []byte)
}

// ErrAlloc is the sentinel wrapped by allocator implementations that
// report exhaustion.
var ErrAlloc = errors.New("cbor: allocator refused request")

// defaultAllocator forwards directly to the Go heap and ignores old
// size on Realloc, exactly mirroring spec.md §4.1's "default
// implementation forwards to the host allocator and ignores
// old_size". It never fails; Go's allocator fails by panicking on
// true exhaustion, which this library does not attempt to intercept.
type defaultAllocator struct{}

// DefaultAllocator is the package-wide default: a Decoder whose
// Allocator is nil uses this one. Constructors that take no Allocator
// (NewUint, NewInt, NewNull, NewFloat32, NewFloat64) use no allocator.
var DefaultAllocator Allocator = defaultAllocator{}

func (defaultAllocator) Alloc(size int) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}
	return make([]byte, size), nil
}

func (defaultAllocator) Realloc(old []byte, newSize int) ([]byte, error) {
	nb := make([]byte, newSize)
	copy(nb, old)
	return nb, nil
}

func (defaultAllocator) Free([]byte) {}

// FaultAllocator wraps an Allocator and fails the Nth call (1-indexed,
// counting both Alloc and Realloc) to it, then behaves normally
// thereafter. It exists to drive spec.md §8's "Allocator failure
// injection" property: for every k from 1 to the number of
// allocations a decode performs, a FaultAllocator failing on the kth
// call must yield a clean failure with nothing leaked.
type FaultAllocator struct {
	Under  Allocator
	FailAt int // 1-indexed call number to fail; 0 disables injection
	calls  int
}

// NewFaultAllocator wraps under, failing on the failAt'th call.
func NewFaultAllocator(under Allocator, failAt int) *FaultAllocator {
	return &FaultAllocator{Under: under, FailAt: failAt}
}

// Calls returns the number of Alloc/Realloc calls observed so far.
func (f *FaultAllocator) Calls() int { return f.calls }

func (f *FaultAllocator) shouldFail() bool {
	f.calls++
	return f.FailAt > 0 && f.calls == f.FailAt
}

func (f *FaultAllocator) Alloc(size int) ([]byte, error) {
	if f.shouldFail() {
		return nil, ErrAlloc
	}
	return f.Under.Alloc(size)
}

func (f *FaultAllocator) Realloc(old []byte, newSize int) ([]byte, error) {
	if f.shouldFail() {
		return nil, ErrAlloc
	}
	return f.Under.Realloc(old, newSize)
}

func (f *FaultAllocator) Free(b []byte) { f.Under.Free(b) }

// Arena is a bump allocator that hands out byte slices from a chain of
// fixed-size chunks and is bulk-freed in one shot by Release, per
// spec.md §9's "bulk-free an entire tree by dropping the arena". Free
// on individual buffers is a no-op; only Release reclaims memory.
type Arena struct {
	chunkSize int
	chunks    [][]byte
	used      int
}

// NewArena constructs an Arena that grows in chunkSize increments (or
// larger, to satisfy an oversized single request). A chunkSize of zero
// selects a 4096-byte default.
func NewArena(chunkSize int) *Arena {
	if chunkSize <= 0 {
		chunkSize = 4096
	}
	return &Arena{chunkSize: chunkSize}
}

func (a *Arena) Alloc(size int) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}
	if len(a.chunks) == 0 || a.used+size > len(a.chunks[len(a.chunks)-1]) {
		sz := a.chunkSize
		if size > sz {
			sz = size
		}
		a.chunks = append(a.chunks, make([]byte, sz))
		a.used = 0
	}
	cur := a.chunks[len(a.chunks)-1]
	b := cur[a.used : a.used+size : a.used+size]
	a.used += size
	return b, nil
}

func (a *Arena) Realloc(old []byte, newSize int) ([]byte, error) {
	nb, err := a.Alloc(newSize)
	if err != nil {
		return nil, err
	}
	copy(nb, old)
	return nb, nil
}

func (a *Arena) Free([]byte) {}

// Release returns every chunk the arena holds, invalidating all
// buffers it ever handed out. Callers must not touch a value tree
// built from this arena after calling Release.
func (a *Arena) Release() {
	a.chunks = nil
	a.used = 0
}

// bookkeepingAllocator wraps an Allocator and counts outstanding
// Alloc/Realloc calls against Free calls, used by the fault-injection
// test suite to assert nothing leaks on a failure path.
type bookkeepingAllocator struct {
	under      Allocator
	live       map[*byte]struct{}
	allocCount int
	freeCount  int
}

// NewBookkeepingAllocator wraps under with leak tracking.
func NewBookkeepingAllocator(under Allocator) *BookkeepingAllocator {
	return &BookkeepingAllocator{inner: &bookkeepingAllocator{under: under, live: map[*byte]struct{}{}}}
}

// BookkeepingAllocator is the exported handle returned by
// NewBookkeepingAllocator; it satisfies Allocator and exposes Live.
type BookkeepingAllocator struct {
	inner *bookkeepingAllocator
}

func keyOf(b []byte) *byte {
	if len(b) == 0 {
		return nil
	}
	return &b[:1][0]
}

func (b *BookkeepingAllocator) Alloc(size int) ([]byte, error) {
	out, err := b.inner.under.Alloc(size)
	if err != nil {
		return nil, err
	}
	b.inner.allocCount++
	if k := keyOf(out); k != nil {
		b.inner.live[k] = struct{}{}
	}
	return out, nil
}

func (b *BookkeepingAllocator) Realloc(old []byte, newSize int) ([]byte, error) {
	out, err := b.inner.under.Realloc(old, newSize)
	if err != nil {
		return nil, err
	}
	if k := keyOf(old); k != nil {
		delete(b.inner.live, k)
	}
	b.inner.allocCount++
	if k := keyOf(out); k != nil {
		b.inner.live[k] = struct{}{}
	}
	return out, nil
}

func (b *BookkeepingAllocator) Free(buf []byte) {
	b.inner.freeCount++
	if k := keyOf(buf); k != nil {
		delete(b.inner.live, k)
	}
	b.inner.under.Free(buf)
}

// Live reports the number of allocations not yet matched by a Free.
func (b *BookkeepingAllocator) Live() int { return len(b.inner.live) }

// PooledAllocator backs every request with a sync.Pool of ByteBuffers
// (bytebufferpool.go), grounded on the teacher's pooled-buffer idiom
// for amortizing allocation in hot encode/decode loops. It is the
// recommended Allocator for servers decoding many short-lived
// messages. Free must be called once per returned buffer: a buffer
// that is never freed stays referenced from the allocator's live map,
// so it is neither recycled nor garbage collected while the
// PooledAllocator itself is reachable.
type PooledAllocator struct {
	mu   sync.Mutex
	live map[*byte]*ByteBuffer
}

// NewPooledAllocator constructs an empty PooledAllocator.
func NewPooledAllocator() *PooledAllocator {
	return &PooledAllocator{live: make(map[*byte]*ByteBuffer)}
}

func (p *PooledAllocator) Alloc(size int) ([]byte, error) {
	bb := getByteBuffer()
	bb.ensure(size)
	bb.b = bb.b[:size]
	if size > 0 {
		p.mu.Lock()
		p.live[&bb.b[0]] = bb
		p.mu.Unlock()
	}
	return bb.b, nil
}

func (p *PooledAllocator) Realloc(old []byte, newSize int) ([]byte, error) {
	if len(old) == 0 {
		return p.Alloc(newSize)
	}
	p.mu.Lock()
	bb, ok := p.live[&old[0]]
	if ok {
		delete(p.live, &old[0])
	}
	p.mu.Unlock()
	if !ok {
		// old wasn't one of ours (e.g. came from another Allocator); fall
		// back to a fresh pooled buffer and copy the contents across.
		nb, err := p.Alloc(newSize)
		if err != nil {
			return nil, err
		}
		copy(nb, old)
		return nb, nil
	}
	bb.ensure(newSize)
	bb.b = bb.b[:newSize]
	if newSize > 0 {
		p.mu.Lock()
		p.live[&bb.b[0]] = bb
		p.mu.Unlock()
	}
	return bb.b, nil
}

func (p *PooledAllocator) Free(b []byte) {
	if len(b) == 0 {
		return
	}
	p.mu.Lock()
	bb, ok := p.live[&b[0]]
	if ok {
		delete(p.live, &b[0])
	}
	p.mu.Unlock()
	if ok {
		putByteBuffer(bb)
	}
}

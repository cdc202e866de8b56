package cbor

import "sync"

// ByteBuffer is a growable byte slice recycled through a sync.Pool. It
// backs PooledAllocator (alloc.go), grounded on the teacher's
// byte-buffer pool: one buffer, emptied by getByteBuffer, per Alloc
// call, returned to the pool on Free.
type ByteBuffer struct {
	b []byte
}

var bbPool = sync.Pool{New: func() any { return &ByteBuffer{b: make([]byte, 0, 256)} }}

// getByteBuffer obtains a pooled, zero-length ByteBuffer.
func getByteBuffer() *ByteBuffer {
	bb := bbPool.Get().(*ByteBuffer)
	bb.b = bb.b[:0]
	return bb
}

// putByteBuffer returns bb to the pool.
func putByteBuffer(bb *ByteBuffer) {
	bb.b = bb.b[:0]
	bbPool.Put(bb)
}

// Bytes returns the underlying slice.
func (bb *ByteBuffer) Bytes() []byte { return bb.b }

// ensure grows bb so that it has room for n bytes total, preserving
// any existing content.
func (bb *ByteBuffer) ensure(n int) {
	if cap(bb.b) >= n {
		return
	}
	c := cap(bb.b)
	if c == 0 {
		c = 256
	}
	for c < n {
		c <<= 1
	}
	nb := make([]byte, len(bb.b), c)
	copy(nb, bb.b)
	bb.b = nb
}

package cbor

import (
	"errors"
	"strconv"
)

const resumableDefault = false

var (
	// ErrShortBytes is returned when the slice being decoded is too
	// short to contain the item the initial byte promises.
	ErrShortBytes error = errShort{}

	// ErrShortBuffer is returned by Encode when the destination buffer
	// is too small to hold the encoded value. Unlike the original C
	// cbor_encode, which returns the same ulong for success and for a
	// too-small buffer, this is a distinct, checkable error (spec.md
	// §9 "Buffer-exhaustion signalling").
	ErrShortBuffer error = errors.New("cbor: destination buffer too small")

	// ErrMaxDepthExceeded is returned when a tree's nesting exceeds a
	// Decoder's configured MaxDepth.
	ErrMaxDepthExceeded error = errors.New("cbor: max recursion depth exceeded")

	// ErrAllocFailed names an allocation failure. No function in this
	// package returns it; its own allocators report a refused request
	// with ErrAlloc.
	ErrAllocFailed error = errors.New("cbor: allocation failed")
)

// Error is the interface satisfied by all errors native to this
// package.
type Error interface {
	error

	// Resumable reports whether the error leaves the input stream in
	// a state from which decoding could, in principle, continue
	// (e.g. a type mismatch during Unpack) as opposed to a
	// structurally unrecoverable condition (e.g. truncated input).
	Resumable() bool
}

// contextError lets an error be enriched with the path (array index,
// map key, tag) that produced it without changing its identity.
type contextError interface {
	Error
	withContext(ctx string) error
}

// WrapError adds path context to err, returning a new error. The
// original can be recovered with Cause.
func WrapError(err error, ctx string) error {
	if e, ok := err.(contextError); ok {
		return e.withContext(ctx)
	}
	return errWrapped{cause: err, ctx: ctx}
}

// Cause unwraps an error produced by WrapError, returning the
// underlying error.
func Cause(err error) error {
	if e, ok := err.(errWrapped); ok {
		return e.cause
	}
	return err
}

func addCtx(ctx, add string) string {
	if ctx == "" {
		return add
	}
	return add + "/" + ctx
}

type errWrapped struct {
	cause error
	ctx   string
}

func (e errWrapped) Error() string {
	if e.ctx == "" {
		return e.cause.Error()
	}
	return e.cause.Error() + " at " + e.ctx
}

func (e errWrapped) Resumable() bool {
	if e, ok := e.cause.(Error); ok {
		return e.Resumable()
	}
	return resumableDefault
}

func (e errWrapped) Unwrap() error { return e.cause }

type errShort struct{}

func (errShort) Error() string   { return "cbor: too few bytes left to read object" }
func (errShort) Resumable() bool { return false }

// ErrUnknownMajorType is returned by the decoder when it reads an
// initial byte with no entry in the major-type dispatch table
// (spec.md §4.3): any major-type-7 byte other than null and the three
// float widths, including the 0xff break marker. Additional-info 28-31
// under major types 0-6 is reported as ErrInvalidAdditionalInfo.
type ErrUnknownMajorType struct {
	Byte byte
}

func (e ErrUnknownMajorType) Error() string {
	return "cbor: unrecognized initial byte 0x" + strconv.FormatUint(uint64(e.Byte), 16)
}
func (ErrUnknownMajorType) Resumable() bool { return false }

// ErrInvalidAdditionalInfo is returned when an initial byte of major
// type 0-6 has an additional-info field of 28-31: the reserved range
// 28-30, or 31, the indefinite-length marker this package does not
// support (spec.md §4.3's dispatch table has no entry for these
// values).
type ErrInvalidAdditionalInfo struct {
	AddInfo uint8
}

func (e ErrInvalidAdditionalInfo) Error() string {
	return "cbor: reserved additional-info value " + strconv.Itoa(int(e.AddInfo))
}
func (ErrInvalidAdditionalInfo) Resumable() bool { return false }

// TypeMismatchError is returned by Unpack when a format token expects a
// Kind the tree does not have at that position. It is a soft error
// (spec.md §7): the caller chose the format and may recover.
type TypeMismatchError struct {
	Want Kind
	Got  Kind
	ctx  string
}

func (e TypeMismatchError) Error() string {
	out := "cbor: unpack expected " + e.Want.String() + " but found " + e.Got.String()
	if e.ctx != "" {
		out += " at " + e.ctx
	}
	return out
}
func (TypeMismatchError) Resumable() bool { return true }
func (e TypeMismatchError) withContext(ctx string) error {
	e.ctx = addCtx(e.ctx, ctx)
	return e
}

// ErrIntOverflow is returned by Unpack's 'i' token when the tree holds
// a KindUint or KindNegInt whose magnitude does not fit in an int64
// (Value.Int's bool return). The Kind itself matched what 'i' wants, so
// this is reported distinctly rather than as a TypeMismatchError
// claiming the wrong Kind was found.
type ErrIntOverflow struct {
	Kind Kind
}

func (e ErrIntOverflow) Error() string {
	return "cbor: unpack " + e.Kind.String() + " magnitude overflows int64"
}
func (ErrIntOverflow) Resumable() bool { return true }

// ErrMapKeyNotFound is returned by Unpack's 'S' map-lookup token when no
// element's key equals the requested string. The original C
// cbor_unpack located a key with strncmp bounded by the shorter of the
// two lengths, so a lookup for "foo" would match a stored "foobar"
// (spec.md §9's open question); this package resolves that by requiring
// exact length-and-content equality, so a genuine miss is reported
// here rather than silently matching a longer key.
type ErrMapKeyNotFound struct {
	Key string
}

func (e ErrMapKeyNotFound) Error() string {
	return "cbor: unpack map has no key " + strconv.Quote(e.Key)
}
func (ErrMapKeyNotFound) Resumable() bool { return true }

// ErrArrayTooShort is returned by Unpack when a '[' ... ']' group in
// the format string names more positions than the array value has
// elements.
type ErrArrayTooShort struct {
	Want int // index that was requested, plus one
	Got  int // actual number of elements
}

func (e ErrArrayTooShort) Error() string {
	return "cbor: unpack format wants at least " + strconv.Itoa(e.Want) + " array elements, value has " + strconv.Itoa(e.Got)
}
func (ErrArrayTooShort) Resumable() bool { return true }

// Resumable reports whether err (if it implements Error) represents a
// recoverable condition.
func Resumable(err error) bool {
	if e, ok := err.(Error); ok {
		return e.Resumable()
	}
	return resumableDefault
}

// Package cbor implements the definite-length subset of RFC 8949 CBOR
// described in spec.md: a tagged value tree (Value), an Allocator
// capability threaded through every tree-building operation, a
// byte-accurate two-phase encoder/decoder pair, a Pack/Unpack
// format-string mini-language, and a diagnostic pretty-printer.
//
// This package does not perform schema validation, does not support
// indefinite-length items, and does not enforce canonical CBOR on
// decode; see spec.md's Non-goals.
package cbor

package cbor

// CBOR major types (high 3 bits of the initial byte).
const (
	majorTypeUint   = 0 // unsigned integer
	majorTypeNegInt = 1 // negative integer
	majorTypeBytes  = 2 // byte string
	majorTypeText   = 3 // text string (UTF-8, unvalidated)
	majorTypeArray  = 4 // array
	majorTypeMap    = 5 // map
	majorTypeTag    = 6 // semantic tag
	majorTypeSimple = 7 // floats and the null simple value
)

// Additional info values (low 5 bits of the initial byte).
const (
	addInfoDirect = 23 // max literal value/count carried inline
	addInfoUint8  = 24 // 1-byte big-endian length/value follows
	addInfoUint16 = 25 // 2-byte big-endian length/value follows
	addInfoUint32 = 26 // 4-byte big-endian length/value follows
	addInfoUint64 = 27 // 8-byte big-endian length/value follows
)

// Simple values recognized under major type 7. Only null and the three
// float widths are supported; booleans and indefinite-length markers
// are outside the RFC 8949 subset this package implements.
const (
	simpleNull    = 0xf6
	simpleFloat16 = 0xf9
	simpleFloat32 = 0xfa
	simpleFloat64 = 0xfb
)

// Well-known semantic tags exercised by the round-trip vectors.
const (
	TagDateTimeString = 0  // RFC 3339 date/time string
	TagEpochDateTime  = 1  // Unix timestamp, integer or float
	TagEmbeddedCBOR   = 24 // embedded CBOR data item
	TagURI            = 32 // URI
)

// defaultMaxDepth bounds decoder recursion against adversarial input;
// see Decoder.MaxDepth. Encode, Pack and Unpack have no depth bound.
const defaultMaxDepth = 10000

// makeByte combines a major type and additional-info field into a CBOR
// initial byte.
func makeByte(major, add uint8) byte {
	return byte(major<<5) | add
}

// getMajorType extracts the major type from a CBOR initial byte.
func getMajorType(b byte) uint8 {
	return (b >> 5) & 0x07
}

// getAddInfo extracts the additional-info field from a CBOR initial byte.
func getAddInfo(b byte) uint8 {
	return b & 0x1f
}

package msgpack

// Format codes occupying a fixed range of leading byte values. The
// value stored in the code byte itself is recovered with the masks
// below.
const (
	CodePosFixIntMax byte = 0x7f // positive fixint: 0x00-0x7f, value is the byte
	CodeFixMap       byte = 0x80 // fixmap: 0x80-0x8f, low nibble is the pair count
	CodeFixArray     byte = 0x90 // fixarray: 0x90-0x9f, low nibble is the length
	CodeFixStr       byte = 0xa0 // fixstr: 0xa0-0xbf, low five bits are the length
	CodeNegFixInt    byte = 0xe0 // negative fixint: 0xe0-0xff, value is int8(byte)
)

// Masks extracting the embedded value from fix-family code bytes.
const (
	maskFixMap   byte = 0xf0
	maskFixArray byte = 0xf0
	maskFixStr   byte = 0xe0
	lenFixMap    byte = 0x0f
	lenFixArray  byte = 0x0f
	lenFixStr    byte = 0x1f
)

// Format codes with a dedicated byte value.
const (
	CodeNil      byte = 0xc0
	CodeReserved byte = 0xc1 // never produced by an encoder
	CodeFalse    byte = 0xc2
	CodeTrue     byte = 0xc3

	CodeBin8  byte = 0xc4
	CodeBin16 byte = 0xc5
	CodeBin32 byte = 0xc6

	CodeExt8  byte = 0xc7
	CodeExt16 byte = 0xc8
	CodeExt32 byte = 0xc9

	CodeFloat32 byte = 0xca
	CodeFloat64 byte = 0xcb

	CodeUint8  byte = 0xcc
	CodeUint16 byte = 0xcd
	CodeUint32 byte = 0xce
	CodeUint64 byte = 0xcf

	CodeInt8  byte = 0xd0
	CodeInt16 byte = 0xd1
	CodeInt32 byte = 0xd2
	CodeInt64 byte = 0xd3

	CodeFixExt1  byte = 0xd4
	CodeFixExt2  byte = 0xd5
	CodeFixExt4  byte = 0xd6
	CodeFixExt8  byte = 0xd7
	CodeFixExt16 byte = 0xd8

	CodeStr8  byte = 0xd9
	CodeStr16 byte = 0xda
	CodeStr32 byte = 0xdb

	CodeArray16 byte = 0xdc
	CodeArray32 byte = 0xdd

	CodeMap16 byte = 0xde
	CodeMap32 byte = 0xdf
)

// Capacity limits of the fix-family encodings.
const (
	maxFixStrLen   = 31
	maxFixArrayLen = 15
	maxFixMapLen   = 15
	minNegFixInt   = -32
)

func isFixMap(c byte) bool {
	return c&maskFixMap == CodeFixMap
}

func isFixArray(c byte) bool {
	return c&maskFixArray == CodeFixArray
}

func isFixStr(c byte) bool {
	return c&maskFixStr == CodeFixStr
}

func isFixExt(c byte) bool {
	return c >= CodeFixExt1 && c <= CodeFixExt16
}

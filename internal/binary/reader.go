package binary

import (
	"encoding/binary"
	"io"
)

// Initial allocation cap for ReadBytes. A corrupt length prefix can
// claim gigabytes that the source does not hold; growing on demand
// keeps such inputs from forcing a huge up-front allocation.
const maxPrealloc = 1 << 16

// Reader reads big-endian values from a byte stream and tracks the
// number of bytes consumed.
type Reader struct {
	r   io.ByteReader
	pos int
}

// NewReader creates a new Reader.
func NewReader(r io.ByteReader) *Reader {
	return &Reader{r: r}
}

// Position returns the current byte offset.
func (r *Reader) Position() int {
	return r.pos
}

// ReadByte reads a single byte.
func (r *Reader) ReadByte() (byte, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		return 0, err
	}
	r.pos++
	return b, nil
}

// ReadBytes reads exactly n bytes. ReadBytes(0) returns an empty slice
// without touching the source.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	buf := make([]byte, 0, min(n, maxPrealloc))
	for i := 0; i < n; i++ {
		b, err := r.r.ReadByte()
		if err != nil {
			return nil, err
		}
		buf = append(buf, b)
		r.pos++
	}
	return buf, nil
}

// ReadUint16 reads a big-endian 16-bit unsigned integer.
func (r *Reader) ReadUint16() (uint16, error) {
	buf, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf), nil
}

// ReadUint32 reads a big-endian 32-bit unsigned integer.
func (r *Reader) ReadUint32() (uint32, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf), nil
}

// ReadUint64 reads a big-endian 64-bit unsigned integer.
func (r *Reader) ReadUint64() (uint64, error) {
	buf, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf), nil
}

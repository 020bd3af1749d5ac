package binary

import (
	"bytes"
	"io"
	"testing"
)

// countingReader tracks how many times ReadByte was called.
type countingReader struct {
	data  []byte
	calls int
}

func (r *countingReader) ReadByte() (byte, error) {
	r.calls++
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	b := r.data[0]
	r.data = r.data[1:]
	return b, nil
}

func TestReaderReadByte(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x01, 0x02}))

	if pos := r.Position(); pos != 0 {
		t.Errorf("got position %d, want 0", pos)
	}

	b, err := r.ReadByte()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b != 0x01 {
		t.Errorf("got byte %#x, want 0x01", b)
	}

	b, err = r.ReadByte()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b != 0x02 {
		t.Errorf("got byte %#x, want 0x02", b)
	}
	if pos := r.Position(); pos != 2 {
		t.Errorf("got position %d, want 2", pos)
	}

	if _, err := r.ReadByte(); err != io.EOF {
		t.Errorf("got error %v, want io.EOF", err)
	}
	if pos := r.Position(); pos != 2 {
		t.Errorf("position moved on failed read: got %d, want 2", pos)
	}
}

func TestReaderReadBytes(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x01, 0x02, 0x03, 0x04}))

	buf, err := r.ReadBytes(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(buf, []byte{0x01, 0x02, 0x03}) {
		t.Errorf("got %v, want [1 2 3]", buf)
	}
	if pos := r.Position(); pos != 3 {
		t.Errorf("got position %d, want 3", pos)
	}
}

func TestReaderReadBytesEmpty(t *testing.T) {
	src := &countingReader{}
	r := NewReader(src)

	buf, err := r.ReadBytes(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(buf) != 0 {
		t.Errorf("got %d bytes, want 0", len(buf))
	}
	if src.calls != 0 {
		t.Errorf("source touched %d times, want 0", src.calls)
	}
}

func TestReaderReadBytesTruncated(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x01, 0x02}))

	if _, err := r.ReadBytes(5); err != io.EOF {
		t.Fatalf("got error %v, want io.EOF", err)
	}
	// The two available bytes were consumed before the failure.
	if pos := r.Position(); pos != 2 {
		t.Errorf("got position %d, want 2", pos)
	}
}

func TestReaderReadBytesHugeLength(t *testing.T) {
	// A length far beyond the source must fail, not allocate.
	r := NewReader(bytes.NewReader([]byte{0x01}))
	if _, err := r.ReadBytes(1 << 30); err != io.EOF {
		t.Fatalf("got error %v, want io.EOF", err)
	}
}

func TestReaderReadUint16(t *testing.T) {
	tests := []struct {
		encoded []byte
		want    uint16
	}{
		{[]byte{0x00, 0x00}, 0},
		{[]byte{0x00, 0x01}, 1},
		{[]byte{0x01, 0x00}, 256},
		{[]byte{0xff, 0xff}, 65535},
	}

	for _, tt := range tests {
		r := NewReader(bytes.NewReader(tt.encoded))
		got, err := r.ReadUint16()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tt.want {
			t.Errorf("got %d, want %d", got, tt.want)
		}
	}

	r := NewReader(bytes.NewReader([]byte{0x01}))
	if _, err := r.ReadUint16(); err != io.EOF {
		t.Errorf("got error %v, want io.EOF", err)
	}
}

func TestReaderReadUint32(t *testing.T) {
	tests := []struct {
		encoded []byte
		want    uint32
	}{
		{[]byte{0x00, 0x00, 0x00, 0x00}, 0},
		{[]byte{0x00, 0x01, 0x00, 0x00}, 65536},
		{[]byte{0xff, 0xff, 0xff, 0xff}, 4294967295},
	}

	for _, tt := range tests {
		r := NewReader(bytes.NewReader(tt.encoded))
		got, err := r.ReadUint32()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tt.want {
			t.Errorf("got %d, want %d", got, tt.want)
		}
	}

	r := NewReader(bytes.NewReader([]byte{0x01, 0x02, 0x03}))
	if _, err := r.ReadUint32(); err != io.EOF {
		t.Errorf("got error %v, want io.EOF", err)
	}
}

func TestReaderReadUint64(t *testing.T) {
	tests := []struct {
		encoded []byte
		want    uint64
	}{
		{[]byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, 0},
		{[]byte{0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00}, 4294967296},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, 18446744073709551615},
	}

	for _, tt := range tests {
		r := NewReader(bytes.NewReader(tt.encoded))
		got, err := r.ReadUint64()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tt.want {
			t.Errorf("got %d, want %d", got, tt.want)
		}
	}

	r := NewReader(bytes.NewReader([]byte{0x01}))
	if _, err := r.ReadUint64(); err != io.EOF {
		t.Errorf("got error %v, want io.EOF", err)
	}
}

func TestWriter(t *testing.T) {
	w := NewWriter()
	w.Byte(0xcd)
	w.WriteUint16(256)
	w.WriteBytes([]byte{0x01, 0x02})
	w.WriteString("ab")

	want := []byte{0xcd, 0x01, 0x00, 0x01, 0x02, 0x61, 0x62}
	if got := w.Bytes(); !bytes.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if w.Len() != len(want) {
		t.Errorf("got length %d, want %d", w.Len(), len(want))
	}
}

func TestWriterReaderRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteUint16(0x0102)
	w.WriteUint32(0x03040506)
	w.WriteUint64(0x0708090a0b0c0d0e)

	r := NewReader(bytes.NewReader(w.Bytes()))

	v16, err := r.ReadUint16()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v16 != 0x0102 {
		t.Errorf("got %#x, want 0x0102", v16)
	}

	v32, err := r.ReadUint32()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v32 != 0x03040506 {
		t.Errorf("got %#x, want 0x03040506", v32)
	}

	v64, err := r.ReadUint64()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v64 != 0x0708090a0b0c0d0e {
		t.Errorf("got %#x, want 0x0708090a0b0c0d0e", v64)
	}

	if pos := r.Position(); pos != w.Len() {
		t.Errorf("got position %d, want %d", pos, w.Len())
	}
}

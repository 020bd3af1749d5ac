package msgpack_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/wippyai/msgpack"
)

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"nil", []byte{0xc0}, true},
		{"fixint", []byte{0x2a}, true},
		{"array", []byte{0x92, 0x01, 0x02}, true},
		{"map", []byte{0x81, 0xa1, 0x61, 0x01}, true},
		{"string", []byte{0xa3, 0x61, 0x62, 0x63}, true},
		{"ext", []byte{0xd4, 0x05, 0xaa}, true},
		{"empty", nil, false},
		{"truncated array", []byte{0x92, 0x01}, false},
		{"truncated string", []byte{0xa3, 0x61}, false},
		{"trailing bytes", []byte{0x01, 0x02}, false},
		{"reserved code", []byte{0xc1}, false},
		{"reserved inside array", []byte{0x91, 0xc1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := msgpack.Valid(tt.data); got != tt.want {
				t.Errorf("Valid(% x): got %v, want %v", tt.data, got, tt.want)
			}
		})
	}
}

func TestValidAcceptsInvalidUTF8(t *testing.T) {
	// Validation is structural only; string payloads are not checked
	// for UTF-8.
	data := []byte{0xa2, 0xff, 0xfe}
	if !msgpack.Valid(data) {
		t.Error("structurally complete string should validate")
	}
}

func TestValidAcceptsDuplicateKeys(t *testing.T) {
	// Skip does not materialize keys, so duplicates pass validation.
	data := []byte{0x82, 0xa1, 0x61, 0x01, 0xa1, 0x61, 0x02}
	if !msgpack.Valid(data) {
		t.Error("structurally complete map should validate")
	}
}

func TestSkip(t *testing.T) {
	// Skip the array, land on the value after it.
	data := []byte{0x92, 0x01, 0x02, 0xc3}
	dec := msgpack.NewDecoder(bytes.NewReader(data))

	if err := dec.Skip(); err != nil {
		t.Fatalf("Skip: %v", err)
	}
	if off := dec.InputOffset(); off != 3 {
		t.Errorf("got offset %d, want 3", off)
	}

	v, err := dec.Decode()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if v != true {
		t.Errorf("got %v, want true", v)
	}

	if err := dec.Skip(); err != io.EOF {
		t.Errorf("got error %v, want io.EOF", err)
	}
}

func TestSkipComposite(t *testing.T) {
	// {"a": [1, {"b": bin(ff)}], "c": ext(5, aa)} followed by 0x2a
	data := []byte{
		0x82,
		0xa1, 0x61,
		0x92, 0x01, 0x81, 0xa1, 0x62, 0xc4, 0x01, 0xff,
		0xa1, 0x63,
		0xd4, 0x05, 0xaa,
		0x2a,
	}
	dec := msgpack.NewDecoder(bytes.NewReader(data))

	if err := dec.Skip(); err != nil {
		t.Fatalf("Skip: %v", err)
	}
	v, err := dec.Decode()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if v != int64(42) {
		t.Errorf("got %v, want 42", v)
	}
}

func TestSkipTruncated(t *testing.T) {
	data := []byte{0x92, 0x01}
	dec := msgpack.NewDecoder(bytes.NewReader(data))

	err := dec.Skip()
	if !errors.Is(err, msgpack.ErrInsufficientData) {
		t.Fatalf("got error %v, want ErrInsufficientData", err)
	}
}

func TestSkipMaxDepth(t *testing.T) {
	data := []byte{0x91, 0x91, 0x91, 0x01}
	dec := msgpack.DecodeOptions{MaxDepth: 2}.NewDecoder(bytes.NewReader(data))

	err := dec.Skip()
	if !errors.Is(err, msgpack.ErrDepthExceeded) {
		t.Fatalf("got error %v, want ErrDepthExceeded", err)
	}
}

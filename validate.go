package msgpack

import (
	"bytes"
	"errors"
	"io"
)

// Valid reports whether data holds exactly one well-formed value. The
// check is structural: string payloads are not required to be valid
// UTF-8, and trailing bytes after the value make data invalid.
func Valid(data []byte) bool {
	d := NewDecoder(bytes.NewReader(data))
	if err := d.Skip(); err != nil {
		return false
	}
	return d.InputOffset() == len(data)
}

// Skip reads past the next value without materializing it. Like
// Decode, it returns io.EOF when the stream ends cleanly at a value
// boundary.
func (d *Decoder) Skip() error {
	off := d.r.Position()
	c, err := d.r.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return io.EOF
		}
		return d.failAt(off, err)
	}
	return d.skipCode(c, off, 0)
}

func (d *Decoder) skipValue(depth int) error {
	off := d.r.Position()
	c, err := d.r.ReadByte()
	if err != nil {
		return d.failAt(off, err)
	}
	return d.skipCode(c, off, depth)
}

// skipCode walks the value introduced by c using only the length
// information in its header, mirroring the decodeCode dispatch.
func (d *Decoder) skipCode(c byte, off, depth int) error {
	if d.opts.MaxDepth > 0 && depth > d.opts.MaxDepth {
		return d.failAt(off, ErrDepthExceeded)
	}

	switch {
	case c <= CodePosFixIntMax, c >= CodeNegFixInt:
		return nil
	case isFixMap(c), c == CodeMap16, c == CodeMap32:
		n, err := d.mapLen(c)
		if err != nil {
			return d.failAt(off, err)
		}
		for i := 0; i < 2*n; i++ {
			if err := d.skipValue(depth + 1); err != nil {
				return err
			}
		}
		return nil
	case isFixArray(c), c == CodeArray16, c == CodeArray32:
		n, err := d.arrayLen(c)
		if err != nil {
			return d.failAt(off, err)
		}
		for i := 0; i < n; i++ {
			if err := d.skipValue(depth + 1); err != nil {
				return err
			}
		}
		return nil
	case isFixStr(c), c == CodeStr8, c == CodeStr16, c == CodeStr32:
		n, err := d.strLen(c)
		if err != nil {
			return d.failAt(off, err)
		}
		return d.discard(n, off)
	case c == CodeBin8, c == CodeBin16, c == CodeBin32:
		n, err := d.binLen(c)
		if err != nil {
			return d.failAt(off, err)
		}
		return d.discard(n, off)
	case isFixExt(c), c == CodeExt8, c == CodeExt16, c == CodeExt32:
		n, err := d.extLen(c)
		if err != nil {
			return d.failAt(off, err)
		}
		// Type byte plus payload.
		return d.discard(n+1, off)
	}

	switch c {
	case CodeNil, CodeFalse, CodeTrue:
		return nil
	case CodeReserved:
		return d.failAt(off, ErrReservedCode)
	case CodeUint8, CodeInt8:
		return d.discard(1, off)
	case CodeUint16, CodeInt16:
		return d.discard(2, off)
	case CodeUint32, CodeInt32, CodeFloat32:
		return d.discard(4, off)
	case CodeUint64, CodeInt64, CodeFloat64:
		return d.discard(8, off)
	}
	panic("msgpack: unreachable code byte")
}

func (d *Decoder) discard(n, off int) error {
	for i := 0; i < n; i++ {
		if _, err := d.r.ReadByte(); err != nil {
			return d.failAt(off, err)
		}
	}
	return nil
}

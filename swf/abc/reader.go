package abc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var (
	ErrTruncated     = errors.New("abc: unexpected end of data")
	ErrIndex         = errors.New("abc: index out of range")
	ErrUnknownOpcode = errors.New("abc: unknown opcode")
)

// reader walks a little-endian ABC byte stream.
type reader struct {
	buf []byte
	pos int
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

func (r *reader) remaining() int {
	return len(r.buf) - r.pos
}

func (r *reader) need(n int) error {
	if r.remaining() < n {
		return fmt.Errorf("%w: need %d bytes at offset %d", ErrTruncated, n, r.pos)
	}
	return nil
}

func (r *reader) u8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

func (r *reader) u16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

// s24 reads a signed 24-bit branch offset.
func (r *reader) s24() (int32, error) {
	if err := r.need(3); err != nil {
		return 0, err
	}
	b := r.buf[r.pos : r.pos+3]
	r.pos += 3
	v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
	if v&0x800000 != 0 {
		v -= 1 << 24
	}
	return v, nil
}

// u32 reads the variable-length encoding shared by u30, u32 and s32:
// up to five bytes, seven bits each, high bit set when another byte follows.
func (r *reader) u32() (uint32, error) {
	var v uint32
	for i := 0; i < 5; i++ {
		b, err := r.u8()
		if err != nil {
			return 0, err
		}
		v |= uint32(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			break
		}
	}
	return v, nil
}

func (r *reader) u30() (uint32, error) {
	v, err := r.u32()
	return v & 0x3fffffff, err
}

func (r *reader) s32() (int32, error) {
	v, err := r.u32()
	return int32(v), err
}

func (r *reader) d64() (float64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := math.Float64frombits(binary.LittleEndian.Uint64(r.buf[r.pos:]))
	r.pos += 8
	return v, nil
}

func (r *reader) bytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative length %d", ErrTruncated, n)
	}
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// str reads a u30 length-prefixed UTF-8 string.
func (r *reader) str() (string, error) {
	n, err := r.u30()
	if err != nil {
		return "", err
	}
	b, err := r.bytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// u30s reads a u30 count followed by that many u30 values.
func (r *reader) u30s() ([]uint32, error) {
	n, err := r.u30()
	if err != nil {
		return nil, err
	}
	return r.u30n(int(n))
}

func (r *reader) u30n(n int) ([]uint32, error) {
	if n > r.remaining() {
		return nil, fmt.Errorf("%w: %d entries at offset %d", ErrTruncated, n, r.pos)
	}
	out := make([]uint32, n)
	for i := range out {
		v, err := r.u30()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// appendU32 is the encoding counterpart of reader.u32.
func appendU32(dst []byte, v uint32) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(dst, b)
		}
		dst = append(dst, b|0x80)
	}
}

func appendS24(dst []byte, v int32) []byte {
	u := uint32(v) & 0xffffff
	return append(dst, byte(u), byte(u>>8), byte(u>>16))
}

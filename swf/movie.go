// Package swf reads the parts of a SWF movie the unpacker works with:
// the header, DoABC tags, the SymbolClass table and DefineBinaryData payloads.
package swf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/ulikunitz/xz/lzma"

	"github.com/ruinedyourlife/tfm-unpacker/swf/abc"
)

var ErrSignature = errors.New("swf: invalid signature")

// Tag codes
const (
	TagEnd              = 0
	TagShowFrame        = 1
	TagDoABC1           = 72
	TagSymbolClass      = 76
	TagDoABC            = 82
	TagDefineBinaryData = 87
)

// Header is the fixed 8-byte file header plus the frame header that follows
// it inside the (possibly compressed) body.
type Header struct {
	Signature  string
	Version    uint8
	FileLength uint32
	FrameRate  uint16 // 8.8 fixed point
	FrameCount uint16
}

// Compressed reports whether the body after the first 8 bytes was deflated or LZMA compressed.
func (h Header) Compressed() bool {
	return h.Signature != "FWS"
}

type DoABC struct {
	Flags uint32
	Name  string
	File  *abc.File
}

type BinaryData struct {
	CharID uint16
	Data   []byte
}

type Movie struct {
	Header   Header
	AbcFiles []*DoABC
	// Symbols maps a character id to its SymbolClass name.
	Symbols  map[uint16]string
	binaries []*BinaryData
	// TagCount is the number of tags read, including skipped ones.
	TagCount int
}

// ReadHeader reads the 8-byte file header.
func ReadHeader(r io.Reader) (Header, error) {
	var raw struct {
		Signature  [3]byte
		Version    uint8
		FileLength uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
		return Header{}, fmt.Errorf("failed to read header: %w", err)
	}
	h := Header{
		Signature:  string(raw.Signature[:]),
		Version:    raw.Version,
		FileLength: raw.FileLength,
	}
	switch h.Signature {
	case "FWS", "CWS", "ZWS":
		return h, nil
	}
	return h, fmt.Errorf("%w %q", ErrSignature, h.Signature)
}

// Parse reads a movie held in memory.
func Parse(data []byte) (*Movie, error) {
	return Read(bytes.NewReader(data))
}

// Read parses a complete movie from r.
func Read(r io.Reader) (*Movie, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}

	body, err := readBody(r, h)
	if err != nil {
		return nil, err
	}

	m := &Movie{Header: h, Symbols: make(map[uint16]string)}
	br := bytes.NewReader(body)
	if err := m.readFrameHeader(br); err != nil {
		return nil, err
	}
	if err := m.readTags(br); err != nil {
		return nil, err
	}
	return m, nil
}

func readBody(r io.Reader, h Header) ([]byte, error) {
	switch h.Signature {
	case "CWS":
		zr, err := zlib.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open zlib body: %w", err)
		}
		defer zr.Close()
		body, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("failed to inflate body: %w", err)
		}
		return body, nil
	case "ZWS":
		return readLZMABody(r, h)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	return body, nil
}

// readLZMABody rebuilds a classic .lzma header from the SWF one: the SWF stores
// the compressed length and the 5 property bytes, but not the uncompressed size.
func readLZMABody(r io.Reader, h Header) ([]byte, error) {
	var raw struct {
		CompressedLength uint32
		Props            [5]byte
	}
	if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
		return nil, fmt.Errorf("failed to read lzma header: %w", err)
	}
	if h.FileLength < 8 {
		return nil, fmt.Errorf("%w: file length %d", ErrSignature, h.FileLength)
	}

	hdr := make([]byte, 13)
	copy(hdr, raw.Props[:])
	binary.LittleEndian.PutUint64(hdr[5:], uint64(h.FileLength-8))

	lr, err := lzma.NewReader(io.MultiReader(bytes.NewReader(hdr), r))
	if err != nil {
		return nil, fmt.Errorf("failed to open lzma body: %w", err)
	}
	body, err := io.ReadAll(lr)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress lzma body: %w", err)
	}
	return body, nil
}

func (m *Movie) readFrameHeader(r *bytes.Reader) error {
	first, err := r.ReadByte()
	if err != nil {
		return fmt.Errorf("failed to read frame size: %w", err)
	}
	// RECT: 5 bits of field size then four fields of that size
	nbits := int(first >> 3)
	rectBytes := (5+4*nbits+7)/8 - 1
	if _, err := r.Seek(int64(rectBytes), io.SeekCurrent); err != nil {
		return fmt.Errorf("failed to skip frame size: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &m.Header.FrameRate); err != nil {
		return fmt.Errorf("failed to read frame rate: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &m.Header.FrameCount); err != nil {
		return fmt.Errorf("failed to read frame count: %w", err)
	}
	return nil
}

func (m *Movie) readTags(r *bytes.Reader) error {
	for r.Len() > 0 {
		code, data, err := readTag(r)
		if err != nil {
			return fmt.Errorf("tag %d: %w", m.TagCount, err)
		}
		m.TagCount++

		switch code {
		case TagEnd:
			return nil
		case TagDoABC, TagDoABC1:
			tag, err := parseDoABC(code, data)
			if err != nil {
				return fmt.Errorf("tag %d (DoABC): %w", m.TagCount-1, err)
			}
			m.AbcFiles = append(m.AbcFiles, tag)
		case TagSymbolClass:
			if err := m.parseSymbolClass(data); err != nil {
				return fmt.Errorf("tag %d (SymbolClass): %w", m.TagCount-1, err)
			}
		case TagDefineBinaryData:
			if len(data) < 6 {
				return fmt.Errorf("tag %d (DefineBinaryData): %w", m.TagCount-1, io.ErrUnexpectedEOF)
			}
			m.binaries = append(m.binaries, &BinaryData{
				CharID: binary.LittleEndian.Uint16(data),
				Data:   data[6:],
			})
		}
	}
	return nil
}

func readTag(r *bytes.Reader) (uint16, []byte, error) {
	var codeAndLength uint16
	if err := binary.Read(r, binary.LittleEndian, &codeAndLength); err != nil {
		return 0, nil, fmt.Errorf("failed to read tag header: %w", err)
	}
	code := codeAndLength >> 6
	length := uint32(codeAndLength & 0x3f)
	if length == 0x3f {
		if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
			return 0, nil, fmt.Errorf("failed to read tag length: %w", err)
		}
	}
	if int64(length) > int64(r.Len()) {
		return 0, nil, fmt.Errorf("tag %d of %d bytes: %w", code, length, io.ErrUnexpectedEOF)
	}
	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return 0, nil, fmt.Errorf("failed to read tag body: %w", err)
	}
	return code, data, nil
}

func parseDoABC(code uint16, data []byte) (*DoABC, error) {
	tag := &DoABC{}
	if code == TagDoABC {
		if len(data) < 4 {
			return nil, io.ErrUnexpectedEOF
		}
		tag.Flags = binary.LittleEndian.Uint32(data)
		data = data[4:]
		end := bytes.IndexByte(data, 0)
		if end < 0 {
			return nil, fmt.Errorf("unterminated name: %w", io.ErrUnexpectedEOF)
		}
		tag.Name = string(data[:end])
		data = data[end+1:]
	}
	file, err := abc.Parse(data)
	if err != nil {
		return nil, err
	}
	tag.File = file
	return tag, nil
}

func (m *Movie) parseSymbolClass(data []byte) error {
	if len(data) < 2 {
		return io.ErrUnexpectedEOF
	}
	n := int(binary.LittleEndian.Uint16(data))
	data = data[2:]
	for i := 0; i < n; i++ {
		if len(data) < 2 {
			return io.ErrUnexpectedEOF
		}
		id := binary.LittleEndian.Uint16(data)
		data = data[2:]
		end := bytes.IndexByte(data, 0)
		if end < 0 {
			return fmt.Errorf("unterminated symbol name: %w", io.ErrUnexpectedEOF)
		}
		m.Symbols[id] = string(data[:end])
		data = data[end+1:]
	}
	return nil
}

// Frame1 returns the DoABC tag named "frame1".
func (m *Movie) Frame1() (*DoABC, bool) {
	for _, tag := range m.AbcFiles {
		if tag.Name == "frame1" {
			return tag, true
		}
	}
	return nil, false
}

// Binaries returns the DefineBinaryData tags in file order.
func (m *Movie) Binaries() []*BinaryData {
	return m.binaries
}

// AddBinary appends a DefineBinaryData payload, as if it had been read from the file.
func (m *Movie) AddBinary(charID uint16, data []byte) {
	m.binaries = append(m.binaries, &BinaryData{CharID: charID, Data: data})
}

func (m *Movie) Symbol(charID uint16) (string, bool) {
	name, ok := m.Symbols[charID]
	return name, ok
}

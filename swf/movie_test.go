package swf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/ulikunitz/xz/lzma"

	"github.com/ruinedyourlife/tfm-unpacker/swf/abc"
)

// emptyABC is a version 46.16 ABC file with every table empty.
var emptyABC = []byte{16, 0, 46, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}

func TestEmptyABC(t *testing.T) {
	f, err := abc.Parse(emptyABC)
	if err != nil {
		t.Fatalf("abc.Parse: %v", err)
	}
	if f.MajorVersion != 46 || len(f.Bodies) != 0 {
		t.Fatalf("abc.Parse() = %+v", f)
	}
}

func tag(code uint16, data []byte) []byte {
	var out []byte
	if len(data) < 0x3f {
		out = binary.LittleEndian.AppendUint16(out, code<<6|uint16(len(data)))
	} else {
		out = binary.LittleEndian.AppendUint16(out, code<<6|0x3f)
		out = binary.LittleEndian.AppendUint32(out, uint32(len(data)))
	}
	return append(out, data...)
}

func doABC(name string) []byte {
	data := binary.LittleEndian.AppendUint32(nil, 1)
	data = append(data, name...)
	data = append(data, 0)
	return tag(TagDoABC, append(data, emptyABC...))
}

func symbolClass(symbols map[uint16]string, order ...uint16) []byte {
	data := binary.LittleEndian.AppendUint16(nil, uint16(len(order)))
	for _, id := range order {
		data = binary.LittleEndian.AppendUint16(data, id)
		data = append(data, symbols[id]...)
		data = append(data, 0)
	}
	return tag(TagSymbolClass, data)
}

func binaryData(id uint16, payload []byte) []byte {
	data := binary.LittleEndian.AppendUint16(nil, id)
	data = append(data, 0, 0, 0, 0)
	return tag(TagDefineBinaryData, append(data, payload...))
}

// testBody is the movie after the 8-byte header: an empty frame rectangle,
// 24 fps, one frame and a few tags.
func testBody() []byte {
	body := []byte{0x00, 0x00, 0x18, 0x01, 0x00}
	body = append(body, tag(9, []byte{0xff, 0xff, 0xff})...) // SetBackgroundColor
	body = append(body, doABC("frame1")...)
	body = append(body, binaryData(1, []byte("first"))...)
	body = append(body, binaryData(2, bytes.Repeat([]byte{0xab}, 100))...)
	body = append(body, symbolClass(map[uint16]string{1: "$_a", 2: "$_b"}, 1, 2)...)
	body = append(body, tag(TagShowFrame, nil)...)
	body = append(body, tag(TagEnd, nil)...)
	return body
}

func header(sig string, body []byte) []byte {
	out := append([]byte(sig), 10)
	return binary.LittleEndian.AppendUint32(out, uint32(8+len(body)))
}

func fws(t *testing.T, body []byte) []byte {
	t.Helper()
	return append(header("FWS", body), body...)
}

func cws(t *testing.T, body []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(body); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return append(header("CWS", body), buf.Bytes()...)
}

func zws(t *testing.T, body []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	lw, err := lzma.WriterConfig{SizeInHeader: true, Size: int64(len(body))}.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := lw.Write(body); err != nil {
		t.Fatal(err)
	}
	if err := lw.Close(); err != nil {
		t.Fatal(err)
	}
	// .lzma header: 5 property bytes, then the 8-byte size the SWF omits
	raw := buf.Bytes()
	out := header("ZWS", body)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(raw)-13))
	out = append(out, raw[:5]...)
	return append(out, raw[13:]...)
}

func TestParse(t *testing.T) {
	body := testBody()
	tests := []struct {
		name string
		data []byte
	}{
		{"uncompressed", fws(t, body)},
		{"zlib", cws(t, body)},
		{"lzma", zws(t, body)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse(tt.data)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if m.Header.FileLength != uint32(8+len(body)) {
				t.Errorf("FileLength = %d, want %d", m.Header.FileLength, 8+len(body))
			}
			if m.Header.FrameRate != 0x1800 || m.Header.FrameCount != 1 {
				t.Errorf("frame header = %+v", m.Header)
			}
			if m.TagCount != 7 {
				t.Errorf("TagCount = %d, want 7", m.TagCount)
			}

			frame1, ok := m.Frame1()
			if !ok || frame1.File == nil || frame1.File.MajorVersion != 46 {
				t.Fatalf("Frame1() = %+v, %v", frame1, ok)
			}

			bins := m.Binaries()
			if len(bins) != 2 {
				t.Fatalf("binaries = %d, want 2", len(bins))
			}
			if bins[0].CharID != 1 || string(bins[0].Data) != "first" {
				t.Errorf("binary 0 = %d %q", bins[0].CharID, bins[0].Data)
			}
			if len(bins[1].Data) != 100 {
				t.Errorf("long tag payload = %d bytes, want 100", len(bins[1].Data))
			}
			want := map[uint16]string{1: "$_a", 2: "$_b"}
			if !reflect.DeepEqual(m.Symbols, want) {
				t.Errorf("Symbols = %v, want %v", m.Symbols, want)
			}
		})
	}
}

func TestParseWithoutFrame1(t *testing.T) {
	body := []byte{0x00, 0x00, 0x18, 0x01, 0x00}
	body = append(body, doABC("other")...)
	body = append(body, tag(TagEnd, nil)...)

	m, err := Parse(fws(t, body))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, ok := m.Frame1(); ok {
		t.Fatal("Frame1() found a tag named other")
	}
	if len(m.AbcFiles) != 1 || m.AbcFiles[0].Name != "other" {
		t.Fatalf("AbcFiles = %+v", m.AbcFiles)
	}
}

func TestParseErrors(t *testing.T) {
	body := testBody()
	truncated := fws(t, body)
	truncated = truncated[:len(truncated)-40]

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"bad signature", append([]byte("GIF89a"), 0, 0, 0, 0), ErrSignature},
		{"short header", []byte("FW"), io.ErrUnexpectedEOF},
		{"truncated tag", truncated, io.ErrUnexpectedEOF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.data); !errors.Is(err, tt.want) {
				t.Fatalf("Parse() error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := Parse(append(header("CWS", body), body...)); err == nil {
		t.Error("Parse() of a CWS movie with a raw body succeeded")
	}
}

func TestAddBinary(t *testing.T) {
	m := &Movie{Symbols: map[uint16]string{3: "x_y"}}
	m.AddBinary(3, []byte("z"))
	if bins := m.Binaries(); len(bins) != 1 || bins[0].CharID != 3 {
		t.Fatalf("Binaries() = %+v", bins)
	}
	if name, ok := m.Symbol(3); !ok || name != "x_y" {
		t.Fatalf("Symbol(3) = %q, %v", name, ok)
	}
	if _, ok := m.Symbol(4); ok {
		t.Fatal("Symbol(4) resolved")
	}
}

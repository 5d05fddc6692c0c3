package rawinfo

import (
	"bytes"
	"encoding/binary"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// commentKey is the Info key holding JPEG and GIF comments
const commentKey = "comment"

// readJPEGComment returns the first COM segment of a JPEG stream.
// The scan stops at the start of scan data, at EOI or at a truncated segment.
func readJPEGComment(data []byte) (string, bool) {
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		return "", false
	}

	pos := 2
	for pos+1 < len(data) {
		if data[pos] != 0xFF {
			return "", false
		}
		marker := data[pos+1]
		pos += 2

		switch {
		case marker == 0xFF:
			// fill byte
			pos--
			continue
		case marker == 0x01, marker >= 0xD0 && marker <= 0xD7:
			continue
		case marker == 0xD9, marker == 0xDA:
			return "", false
		}

		if pos+2 > len(data) {
			return "", false
		}
		length := int(binary.BigEndian.Uint16(data[pos : pos+2]))
		if length < 2 || pos+length > len(data) {
			return "", false
		}
		if marker == 0xFE {
			return commentText(data[pos+2 : pos+length]), true
		}
		pos += length
	}
	return "", false
}

// readGIFComment returns the first comment extension of a GIF stream
func readGIFComment(data []byte) (string, bool) {
	// header (6) + logical screen descriptor (7)
	const lsdEnd = 13
	if len(data) < lsdEnd || !bytes.HasPrefix(data, []byte("GIF")) {
		return "", false
	}

	pos := lsdEnd
	if flags := data[10]; flags&0x80 != 0 {
		pos += 3 << ((flags & 0x07) + 1)
	}

	for pos < len(data) {
		switch data[pos] {
		case 0x21: // extension
			if pos+1 >= len(data) {
				return "", false
			}
			label := data[pos+1]
			body, next, ok := readSubBlocks(data, pos+2)
			if !ok {
				return "", false
			}
			if label == 0xFE {
				return commentText(body), true
			}
			pos = next
		case 0x2C: // image descriptor
			if pos+10 > len(data) {
				return "", false
			}
			flags := data[pos+9]
			pos += 10
			if flags&0x80 != 0 {
				pos += 3 << ((flags & 0x07) + 1)
			}
			// LZW minimum code size
			pos++
			_, next, ok := readSubBlocks(data, pos)
			if !ok {
				return "", false
			}
			pos = next
		default: // trailer or garbage
			return "", false
		}
	}
	return "", false
}

// readSubBlocks concatenates the data sub-blocks starting at pos and returns the offset
// after the block terminator
func readSubBlocks(data []byte, pos int) ([]byte, int, bool) {
	var out []byte
	for pos < len(data) {
		n := int(data[pos])
		pos++
		if n == 0 {
			return out, pos, true
		}
		if pos+n > len(data) {
			return nil, 0, false
		}
		out = append(out, data[pos:pos+n]...)
		pos += n
	}
	return nil, 0, false
}

// commentText decodes a comment as UTF-8, falling back to latin-1
func commentText(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(bytes.ToValidUTF8(b, []byte("�")))
	}
	return string(s)
}

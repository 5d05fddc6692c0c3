package rawinfo

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"golang.org/x/text/encoding/charmap"
)

// maxTextLen bounds a single decompressed text chunk
const maxTextLen = 8 << 20

type textChunk struct {
	keyword string
	text    string
}

// readTextChunks returns the tEXt, zTXt and iTXt chunks of a PNG stream in file order.
// Chunks with a bad CRC or a malformed body are skipped. A truncated stream ends the scan.
func readTextChunks(data []byte) ([]textChunk, error) {
	if !bytes.HasPrefix(data, pngSignature) {
		return nil, ErrUnsupportedFormat
	}

	var chunks []textChunk
	pos := len(pngSignature)
	for pos+12 <= len(data) {
		length := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		if length < 0 || pos+12+length > len(data) {
			break
		}
		typ := string(data[pos+4 : pos+8])
		body := data[pos+8 : pos+8+length]
		sum := binary.BigEndian.Uint32(data[pos+8+length : pos+12+length])
		pos += 12 + length

		if typ == "IEND" {
			break
		}
		if crc32.ChecksumIEEE(data[pos-length-8:pos-4]) != sum {
			continue
		}

		var (
			c   textChunk
			err error
		)
		switch typ {
		case "tEXt":
			c, err = parseText(body)
		case "zTXt":
			c, err = parseZText(body)
		case "iTXt":
			c, err = parseIText(body)
		default:
			continue
		}
		if err != nil {
			continue
		}
		chunks = append(chunks, c)
	}
	return chunks, nil
}

func parseText(body []byte) (textChunk, error) {
	keyword, text, found := bytes.Cut(body, []byte{0})
	if !found || len(keyword) == 0 {
		return textChunk{}, fmt.Errorf("malformed tEXt chunk")
	}
	return latin1Chunk(keyword, text)
}

func parseZText(body []byte) (textChunk, error) {
	keyword, rest, found := bytes.Cut(body, []byte{0})
	if !found || len(keyword) == 0 || len(rest) < 1 || rest[0] != 0 {
		return textChunk{}, fmt.Errorf("malformed zTXt chunk")
	}
	text, err := inflate(rest[1:])
	if err != nil {
		return textChunk{}, err
	}
	return latin1Chunk(keyword, text)
}

func parseIText(body []byte) (textChunk, error) {
	keyword, rest, found := bytes.Cut(body, []byte{0})
	if !found || len(keyword) == 0 || len(rest) < 2 {
		return textChunk{}, fmt.Errorf("malformed iTXt chunk")
	}
	compressed, method := rest[0], rest[1]
	rest = rest[2:]

	// language tag and translated keyword
	for i := 0; i < 2; i++ {
		var ok bool
		_, rest, ok = bytes.Cut(rest, []byte{0})
		if !ok {
			return textChunk{}, fmt.Errorf("malformed iTXt chunk")
		}
	}

	text := rest
	if compressed == 1 {
		if method != 0 {
			return textChunk{}, fmt.Errorf("unknown iTXt compression method %d", method)
		}
		var err error
		if text, err = inflate(rest); err != nil {
			return textChunk{}, err
		}
	}

	kw, err := charmap.ISO8859_1.NewDecoder().Bytes(keyword)
	if err != nil {
		return textChunk{}, err
	}
	return textChunk{keyword: string(kw), text: string(text)}, nil
}

func latin1Chunk(keyword, text []byte) (textChunk, error) {
	dec := charmap.ISO8859_1.NewDecoder()
	kw, err := dec.Bytes(keyword)
	if err != nil {
		return textChunk{}, err
	}
	t, err := dec.Bytes(text)
	if err != nil {
		return textChunk{}, err
	}
	return textChunk{keyword: string(kw), text: string(t)}, nil
}

func inflate(b []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("failed to open zlib stream: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, maxTextLen+1))
	if err != nil {
		return nil, fmt.Errorf("failed to inflate text: %w", err)
	}
	if len(out) > maxTextLen {
		return nil, fmt.Errorf("text chunk exceeds %d bytes", maxTextLen)
	}
	return out, nil
}

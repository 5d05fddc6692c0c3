package testutil

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/gif"
	"image/jpeg"
	"testing"
)

// JPEG encodes img and, when comment is not nil, inserts a COM segment right after SOI
func JPEG(t testing.TB, img image.Image, comment []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("failed to encode jpeg: %v", err)
	}
	raw := buf.Bytes()
	if comment == nil {
		return raw
	}

	out := append([]byte{}, raw[:2]...)
	out = append(out, 0xFF, 0xFE)
	out = binary.BigEndian.AppendUint16(out, uint16(len(comment)+2))
	out = append(out, comment...)
	return append(out, raw[2:]...)
}

// GIF encodes img and, when comment is not nil, inserts a comment extension before the
// first image block
func GIF(t testing.TB, img image.Image, comment []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := gif.Encode(&buf, img, nil); err != nil {
		t.Fatalf("failed to encode gif: %v", err)
	}
	raw := buf.Bytes()
	if comment == nil {
		return raw
	}

	pos := 13
	if flags := raw[10]; flags&0x80 != 0 {
		pos += 3 << ((flags & 0x07) + 1)
	}

	out := append([]byte{}, raw[:pos]...)
	out = append(out, 0x21, 0xFE)
	for rest := comment; len(rest) > 0; {
		n := min(len(rest), 255)
		out = append(out, byte(n))
		out = append(out, rest[:n]...)
		rest = rest[n:]
	}
	out = append(out, 0)
	return append(out, raw[pos:]...)
}

// Package testutil builds image fixtures for tests
package testutil

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

// Chunk is a PNG text chunk to insert into a fixture
type Chunk struct {
	Type       string // tEXt, zTXt or iTXt
	Keyword    string
	Text       string
	Compressed bool // iTXt only
}

// Opaque returns a w×h opaque image
func Opaque(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	return img
}

// PNG encodes img and inserts chunks right after IHDR
func PNG(t testing.TB, img image.Image, chunks ...Chunk) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	raw := buf.Bytes()

	// signature (8) + IHDR length/type (8) + IHDR data (13) + crc (4)
	const ihdrEnd = 33
	out := append([]byte{}, raw[:ihdrEnd]...)
	for _, c := range chunks {
		out = append(out, chunk(t, c)...)
	}
	return append(out, raw[ihdrEnd:]...)
}

// RawChunk frames data as a PNG chunk with a valid CRC
func RawChunk(typ string, data []byte) []byte {
	out := make([]byte, 8, 12+len(data))
	binary.BigEndian.PutUint32(out[:4], uint32(len(data)))
	copy(out[4:8], typ)
	out = append(out, data...)

	crc := crc32.NewIEEE()
	crc.Write(out[4:])
	return binary.BigEndian.AppendUint32(out, crc.Sum32())
}

func chunk(t testing.TB, c Chunk) []byte {
	t.Helper()

	var data []byte
	switch c.Type {
	case "tEXt":
		data = append(latin1(t, c.Keyword), 0)
		data = append(data, latin1(t, c.Text)...)
	case "zTXt":
		data = append(latin1(t, c.Keyword), 0, 0)
		data = append(data, deflate(t, latin1(t, c.Text))...)
	case "iTXt":
		data = append(latin1(t, c.Keyword), 0)
		if c.Compressed {
			data = append(data, 1, 0, 0, 0)
			data = append(data, deflate(t, []byte(c.Text))...)
		} else {
			data = append(data, 0, 0, 0, 0)
			data = append(data, c.Text...)
		}
	default:
		t.Fatalf("unsupported chunk type %q", c.Type)
	}
	return RawChunk(c.Type, data)
}

func latin1(t testing.TB, s string) []byte {
	t.Helper()
	b, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	if err != nil {
		t.Fatalf("failed to encode %q as latin-1: %v", s, err)
	}
	return b
}

func deflate(t testing.TB, b []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(b); err != nil {
		t.Fatalf("failed to compress: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to compress: %v", err)
	}
	return buf.Bytes()
}

// Stealth hides payload in the least significant bits of img, column by column.
// Magics starting with stealth_rgb use the colour channels, all others the alpha channel.
// Magics ending in comp gzip the payload first.
func Stealth(t testing.TB, img *image.NRGBA, magic, payload string) {
	t.Helper()

	data := []byte(payload)
	if len(magic) >= 4 && magic[len(magic)-4:] == "comp" {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		zw.Write(data)
		zw.Close()
		data = buf.Bytes()
	}

	stream := append([]byte(magic), binary.BigEndian.AppendUint32(nil, uint32(len(data)*8))...)
	stream = append(stream, data...)

	var bits []uint8
	for _, b := range stream {
		for i := 7; i >= 0; i-- {
			bits = append(bits, (b>>i)&1)
		}
	}

	rgb := len(magic) >= 11 && magic[:11] == "stealth_rgb"
	perPixel := 1
	if rgb {
		perPixel = 3
	}
	bounds := img.Bounds()
	if len(bits) > bounds.Dx()*bounds.Dy()*perPixel {
		t.Fatalf("payload of %d bits does not fit a %v image", len(bits), bounds.Size())
	}

	n := 0
	for x := bounds.Min.X; x < bounds.Max.X && n < len(bits); x++ {
		for y := bounds.Min.Y; y < bounds.Max.Y && n < len(bits); y++ {
			c := img.NRGBAAt(x, y)
			if rgb {
				c.R = c.R&^1 | bits[n]
				if n+1 < len(bits) {
					c.G = c.G&^1 | bits[n+1]
				}
				if n+2 < len(bits) {
					c.B = c.B&^1 | bits[n+2]
				}
				n += 3
			} else {
				c.A = c.A&^1 | bits[n]
				n++
			}
			img.SetNRGBA(x, y, c)
		}
	}
}

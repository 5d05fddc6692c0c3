// Package stealth recovers metadata hidden in the least significant bits of pixel data
package stealth

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"io"
	"unicode/utf8"
)

// Mode selects which channels carry the hidden bits
type Mode int

const (
	// ModeAlpha reads one bit per pixel from the alpha channel
	ModeAlpha Mode = iota
	// ModeRGB reads three bits per pixel from the red, green and blue channels
	ModeRGB
)

// String returns the string representation of a Mode
func (m Mode) String() string {
	if m == ModeRGB {
		return "rgb"
	}
	return "alpha"
}

type signature struct {
	mode       Mode
	compressed bool
}

// magic headers written in front of the payload
var signatures = map[string]signature{
	"stealth_pnginfo": {ModeAlpha, false},
	"stealth_pngcomp": {ModeAlpha, true},
	"stealth_rgbinfo": {ModeRGB, false},
	"stealth_rgbcomp": {ModeRGB, true},
}

// MagicLen is the length of every magic header
const MagicLen = 15

// DefaultMaxPayload bounds the decompressed payload size
const DefaultMaxPayload = 8 << 20

// Reader reads stealth payloads. It is safe for concurrent use.
type Reader struct {
	// MaxPayload bounds the decompressed payload in bytes
	MaxPayload int64
}

// NewReader creates a Reader with default limits
func NewReader() *Reader {
	return &Reader{MaxPayload: DefaultMaxPayload}
}

// Read returns the hidden text payload of img. Any failure, including a missing
// payload, reports false.
func (r *Reader) Read(img image.Image) (text string, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			text, ok = "", false
		}
	}()

	if img == nil || img.Bounds().Empty() {
		return "", false
	}
	for _, m := range []Mode{ModeAlpha, ModeRGB} {
		if payload, err := r.read(img, m); err == nil {
			return payload, true
		}
	}
	return "", false
}

func (r *Reader) read(img image.Image, m Mode) (string, error) {
	br := newBitReader(img, m)

	magic, err := br.readBytes(MagicLen)
	if err != nil {
		return "", err
	}
	sig, found := signatures[string(magic)]
	if !found || sig.mode != m {
		return "", fmt.Errorf("no %s signature", m)
	}

	header, err := br.readBytes(4)
	if err != nil {
		return "", err
	}
	bits := int64(binary.BigEndian.Uint32(header))
	if bits%8 != 0 || bits > br.remaining() {
		return "", fmt.Errorf("invalid payload length: %d bits", bits)
	}

	data, err := br.readBytes(int(bits / 8))
	if err != nil {
		return "", err
	}

	if sig.compressed {
		data, err = r.gunzip(data)
		if err != nil {
			return "", err
		}
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("payload is not valid UTF-8")
	}
	return string(data), nil
}

func (r *Reader) gunzip(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open gzip payload: %w", err)
	}
	defer zr.Close()

	limit := r.MaxPayload
	if limit <= 0 {
		limit = DefaultMaxPayload
	}
	out, err := io.ReadAll(io.LimitReader(zr, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress payload: %w", err)
	}
	if int64(len(out)) > limit {
		return nil, fmt.Errorf("payload exceeds %d bytes", limit)
	}
	return out, nil
}

// bitReader yields hidden bits walking pixels column by column
type bitReader struct {
	img      image.Image
	bounds   image.Rectangle
	mode     Mode
	next     int
	total    int
	buf      [3]uint8
	bufLen   int
	bufPos   int
	perPixel int
}

func newBitReader(img image.Image, m Mode) *bitReader {
	b := img.Bounds()
	perPixel := 1
	if m == ModeRGB {
		perPixel = 3
	}
	return &bitReader{
		img:      img,
		bounds:   b,
		mode:     m,
		total:    b.Dx() * b.Dy(),
		perPixel: perPixel,
	}
}

// remaining returns the number of unread bits
func (br *bitReader) remaining() int64 {
	return int64(br.total-br.next)*int64(br.perPixel) + int64(br.bufLen-br.bufPos)
}

func (br *bitReader) bit() (uint8, bool) {
	if br.bufPos == br.bufLen {
		if br.next >= br.total {
			return 0, false
		}
		h := br.bounds.Dy()
		x := br.bounds.Min.X + br.next/h
		y := br.bounds.Min.Y + br.next%h
		br.next++

		c := color.NRGBAModel.Convert(br.img.At(x, y)).(color.NRGBA)
		if br.mode == ModeAlpha {
			br.buf[0] = c.A & 1
			br.bufLen = 1
		} else {
			br.buf[0], br.buf[1], br.buf[2] = c.R&1, c.G&1, c.B&1
			br.bufLen = 3
		}
		br.bufPos = 0
	}
	b := br.buf[br.bufPos]
	br.bufPos++
	return b, true
}

func (br *bitReader) readBytes(n int) ([]byte, error) {
	if int64(n)*8 > br.remaining() {
		return nil, io.ErrUnexpectedEOF
	}
	out := make([]byte, n)
	for i := range out {
		var v byte
		for j := 0; j < 8; j++ {
			b, _ := br.bit()
			v = v<<1 | b
		}
		out[i] = v
	}
	return out, nil
}

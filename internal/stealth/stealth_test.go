package stealth

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alevsk/tagview/internal/testutil"
)

func TestReaderRead(t *testing.T) {
	payload := `{"Comment":"{\"prompt\":\"cat\",\"steps\":28}","Software":"NovelAI"}`

	tests := []struct {
		name  string
		magic string
		w, h  int
	}{
		{name: "alpha plain", magic: "stealth_pnginfo", w: 64, h: 64},
		{name: "alpha gzip", magic: "stealth_pngcomp", w: 64, h: 64},
		{name: "rgb plain", magic: "stealth_rgbinfo", w: 32, h: 32},
		{name: "rgb gzip", magic: "stealth_rgbcomp", w: 32, h: 32},
		{name: "non-square image", magic: "stealth_pnginfo", w: 7, h: 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := testutil.Opaque(tt.w, tt.h)
			testutil.Stealth(t, img, tt.magic, payload)

			text, ok := NewReader().Read(img)
			require.True(t, ok)
			assert.Equal(t, payload, text)
		})
	}
}

func TestReaderReadMissing(t *testing.T) {
	tests := []struct {
		name string
		img  image.Image
	}{
		{name: "nil image", img: nil},
		{name: "empty image", img: image.NewNRGBA(image.Rect(0, 0, 0, 0))},
		{name: "no payload", img: testutil.Opaque(16, 16)},
		{name: "too small for header", img: testutil.Opaque(2, 2)},
		{name: "transparent", img: image.NewNRGBA(image.Rect(0, 0, 40, 40))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, ok := NewReader().Read(tt.img)
			assert.False(t, ok)
			assert.Empty(t, text)
		})
	}
}

func TestReaderRejectsOversizedLength(t *testing.T) {
	img := testutil.Opaque(16, 16)
	testutil.Stealth(t, img, "stealth_pnginfo", "")

	// rewrite the length field (bits 120..151) to claim every bit is set
	for i := 120; i < 152; i++ {
		x, y := i/16, i%16
		c := img.NRGBAAt(x, y)
		c.A |= 1
		img.SetNRGBA(x, y, c)
	}

	_, ok := NewReader().Read(img)
	assert.False(t, ok)
}

func TestReaderRejectsCorruptGzip(t *testing.T) {
	img := testutil.Opaque(64, 64)
	testutil.Stealth(t, img, "stealth_pnginfo", "not gzip at all")

	// swap the plain magic for the compressed one without compressing the payload
	magic := []byte("stealth_pngcomp")
	for i := 0; i < len(magic)*8; i++ {
		bit := (magic[i/8] >> (7 - i%8)) & 1
		x, y := i/64, i%64
		c := img.NRGBAAt(x, y)
		c.A = c.A&^1 | bit
		img.SetNRGBA(x, y, c)
	}

	_, ok := NewReader().Read(img)
	assert.False(t, ok)
}

func TestReaderMaxPayload(t *testing.T) {
	img := testutil.Opaque(128, 128)
	testutil.Stealth(t, img, "stealth_pngcomp", strings.Repeat("a", 4096))

	r := &Reader{MaxPayload: 1024}
	_, ok := r.Read(img)
	assert.False(t, ok)

	text, ok := NewReader().Read(img)
	require.True(t, ok)
	assert.Len(t, text, 4096)
}

func TestReaderSurvivesPNGRoundTrip(t *testing.T) {
	img := testutil.Opaque(48, 48)
	testutil.Stealth(t, img, "stealth_pngcomp", "hello")

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	decoded, err := png.Decode(&buf)
	require.NoError(t, err)

	text, ok := NewReader().Read(decoded)
	require.True(t, ok)
	assert.Equal(t, "hello", text)
}

type panicImage struct{ image.Image }

func (panicImage) At(int, int) color.Color { panic("boom") }

func TestReaderRecoversPanics(t *testing.T) {
	img := panicImage{testutil.Opaque(8, 8)}
	text, ok := NewReader().Read(img)
	assert.False(t, ok)
	assert.Empty(t, text)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "alpha", ModeAlpha.String())
	assert.Equal(t, "rgb", ModeRGB.String())
}

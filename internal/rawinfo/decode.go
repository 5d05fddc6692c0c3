// Package rawinfo decodes image containers and exposes the raw metadata sources
package rawinfo

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// Error types for the rawinfo package
var (
	ErrEmpty             = errors.New("image data is empty")
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// Supported container formats
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
	FormatGIF  = "gif"
	FormatWebP = "webp"
	FormatBMP  = "bmp"
	FormatTIFF = "tiff"
)

// Image is a decoded image: its container format, container text metadata and pixels.
// Pixels is nil when the container was recognised but the pixel data could not be decoded.
type Image struct {
	Format string
	Info   map[string]any
	Pixels image.Image
}

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// DetectFormat identifies the container format from its leading bytes
func DetectFormat(data []byte) (string, error) {
	switch {
	case bytes.HasPrefix(data, pngSignature):
		return FormatPNG, nil
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return FormatJPEG, nil
	case bytes.HasPrefix(data, []byte("GIF87a")), bytes.HasPrefix(data, []byte("GIF89a")):
		return FormatGIF, nil
	case len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return FormatWebP, nil
	case bytes.HasPrefix(data, []byte("BM")):
		return FormatBMP, nil
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return FormatTIFF, nil
	}
	return "", ErrUnsupportedFormat
}

// Decode decodes an image container. PNG text chunks and JPEG/GIF comments fill Info;
// other containers carry no text metadata here.
func Decode(data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}

	format, err := DetectFormat(data)
	if err != nil {
		return nil, err
	}

	img := &Image{
		Format: format,
		Info:   make(map[string]any),
	}

	switch format {
	case FormatPNG:
		chunks, err := readTextChunks(data)
		if err != nil {
			return nil, fmt.Errorf("failed to read png text chunks: %w", err)
		}
		for _, c := range chunks {
			img.Info[c.keyword] = c.text
		}
	case FormatJPEG:
		if comment, ok := readJPEGComment(data); ok {
			img.Info[commentKey] = comment
		}
	case FormatGIF:
		if comment, ok := readGIFComment(data); ok {
			img.Info[commentKey] = comment
		}
	}

	if pixels, err := imaging.Decode(bytes.NewReader(data)); err == nil {
		img.Pixels = pixels
	}

	return img, nil
}

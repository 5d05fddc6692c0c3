package rawinfo

import (
	"encoding/json"
	"image"

	"github.com/alevsk/tagview/internal/logger"
)

// StegoReader recovers text hidden in pixel data
type StegoReader interface {
	Read(img image.Image) (string, bool)
}

// Reader produces the two raw metadata sources of an image
type Reader struct {
	stego StegoReader
}

// NewReader creates a Reader. A nil stego disables pixel reading.
func NewReader(stego StegoReader) *Reader {
	return &Reader{stego: stego}
}

// Read returns the container text (the JSON form of the container metadata) and the
// text hidden in the pixels. Either is nil when absent or unreadable.
func (r *Reader) Read(img *Image) (container, stego *string) {
	if img == nil {
		return nil, nil
	}
	return r.container(img), r.hidden(img)
}

func (r *Reader) container(img *Image) *string {
	if len(img.Info) == 0 {
		return nil
	}
	b, err := json.Marshal(img.Info)
	if err != nil {
		logger.Debug().Err(err).Msg("Container metadata is not serializable")
		return nil
	}
	s := string(b)
	return &s
}

func (r *Reader) hidden(img *Image) (text *string) {
	if r.stego == nil || img.Pixels == nil {
		return nil
	}

	defer func() {
		if rec := recover(); rec != nil {
			logger.Debug().Interface("panic", rec).Msg("Stego reader panicked")
			text = nil
		}
	}()

	s, ok := r.stego.Read(img.Pixels)
	if !ok {
		return nil
	}
	return &s
}

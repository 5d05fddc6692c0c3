// Package extractor turns the raw metadata sources of an image into a status-tagged
// canonical record
package extractor

import (
	"fmt"

	"github.com/alevsk/tagview/internal/classifier"
	"github.com/alevsk/tagview/internal/logger"
	"github.com/alevsk/tagview/internal/normalizer"
	"github.com/alevsk/tagview/internal/rawinfo"
	"github.com/alevsk/tagview/internal/stealth"
	"github.com/alevsk/tagview/internal/types"
	"github.com/alevsk/tagview/internal/webui"
)

// Extractor runs the extraction state machine. It holds no per-call state and is safe
// for concurrent use.
type Extractor struct {
	opts   *Options
	reader *rawinfo.Reader
}

// source is one raw metadata text and where it came from
type source struct {
	origin types.Origin
	text   *string
}

// candidate is a raw record awaiting normalization
type candidate struct {
	origin    types.Origin
	generator types.Generator
	record    map[string]any
}

// New creates an Extractor with the given options
func New(opts *Options) *Extractor {
	if opts == nil {
		opts = DefaultOptions()
	}

	var stego rawinfo.StegoReader
	if opts.Stealth {
		stego = opts.StegoReader
		if stego == nil {
			stego = stealth.NewReader()
		}
	}

	return &Extractor{
		opts:   opts,
		reader: rawinfo.NewReader(stego),
	}
}

// GetOptions returns the current options
func (e *Extractor) GetOptions() *Options {
	return e.opts
}

// Extract reads both raw sources of img and returns the first canonical record it can
// build. Container metadata is preferred over pixel data, and legacy records over any
// other dialect. It never fails: problems are reported through the status.
func (e *Extractor) Extract(img *rawinfo.Image) (ext *types.Extraction) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Extraction panicked")
			ext = &types.Extraction{Status: types.StatusNoMetadata}
		}
	}()

	container, stego := e.reader.Read(img)
	return e.extract([]source{
		{origin: types.OriginContainer, text: container},
		{origin: types.OriginStealth, text: stego},
	})
}

// ExtractText runs the state machine over a single container text
func (e *Extractor) ExtractText(text string) *types.Extraction {
	return e.extract([]source{{origin: types.OriginContainer, text: &text}})
}

func (e *Extractor) extract(sources []source) *types.Extraction {
	raw, found := firstRaw(sources)
	if !found {
		logger.Debug().Msg("No metadata found")
		return &types.Extraction{Status: types.StatusNoMetadata}
	}

	detections := make([]classifier.Detection, len(sources))
	for i, src := range sources {
		if src.text == nil {
			continue
		}
		detections[i] = safeClassify(*src.text)
		logger.Debug().
			Str("origin", string(src.origin)).
			Str("kind", detections[i].Kind.String()).
			Msg("Classified metadata source")
	}

	// legacy records are authoritative wherever they appear
	for i, src := range sources {
		if detections[i].Kind != classifier.KindLegacy {
			continue
		}
		rec, err := normalizeLegacy(detections[i].Payload)
		if err != nil {
			logger.Debug().Err(err).Str("origin", string(src.origin)).Msg("Legacy payload rejected")
			continue
		}
		return success(rec, types.GeneratorLegacy, src.origin)
	}

	var candidates []candidate
	for i, src := range sources {
		switch d := detections[i]; d.Kind {
		case classifier.KindWebUI:
			record, err := safeParseWebUI(d.Payload)
			if err != nil {
				logger.Debug().Err(err).Str("origin", string(src.origin)).Msg("Parameters block rejected")
				continue
			}
			candidates = append(candidates, candidate{src.origin, types.GeneratorWebUI, record})
		case classifier.KindFlat:
			candidates = append(candidates, candidate{src.origin, types.GeneratorFlat, d.Record})
		}
	}
	if len(candidates) == 0 {
		logger.Debug().Msg("No metadata source could be parsed")
		return &types.Extraction{Status: types.StatusUnparseableMetadata, Raw: raw}
	}

	for _, c := range candidates {
		rec, err := normalizer.Normalize(c.record)
		if err != nil {
			logger.Debug().Err(err).Str("origin", string(c.origin)).Msg("Record rejected by normalizer")
			continue
		}
		return success(rec, c.generator, c.origin)
	}

	logger.Debug().Msg("No metadata record could be normalized")
	return &types.Extraction{Status: types.StatusUnnormalizableMetadata, Raw: raw}
}

func success(rec *types.Record, gen types.Generator, origin types.Origin) *types.Extraction {
	logger.Debug().Str("generator", string(gen)).Str("origin", string(origin)).Msg("Metadata extracted")
	return &types.Extraction{
		Status:    types.StatusSuccess,
		Generator: gen,
		Origin:    origin,
		Record:    rec,
	}
}

func firstRaw(sources []source) (string, bool) {
	for _, src := range sources {
		if src.text != nil {
			return *src.text, true
		}
	}
	return "", false
}

func normalizeLegacy(payload string) (*types.Record, error) {
	record, err := classifier.DecodeRecord(payload)
	if err != nil {
		return nil, err
	}
	return normalizer.Normalize(record)
}

func safeClassify(text string) (d classifier.Detection) {
	defer func() {
		if r := recover(); r != nil {
			d = classifier.Detection{Kind: classifier.KindUnrecognized}
		}
	}()
	return classifier.Classify(text)
}

func safeParseWebUI(text string) (record map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			record, err = nil, fmt.Errorf("parameters parser panicked: %v", r)
		}
	}()
	return webui.Parse(text).Record(), nil
}

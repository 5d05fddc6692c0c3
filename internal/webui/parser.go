// Package webui parses the free-text parameters block written by the WebUI generator
package webui

import (
	"strconv"
	"strings"

	"github.com/alevsk/tagview/internal/vocab"
)

const negativeMarker = "Negative prompt:"

// Parameters is the parsed form of a parameters block
type Parameters struct {
	// Prompt is the text before the negative prompt line
	Prompt string
	// NegativePrompt is the remainder of the negative prompt line
	NegativePrompt string
	// Options holds recognized options under canonical names
	Options map[string]any
	// Etc holds every other option and bare flag
	Etc map[string]any
}

// Parse splits a parameters block into prompt, negative prompt and options
func Parse(text string) *Parameters {
	p := &Parameters{
		Options: make(map[string]any),
		Etc:     make(map[string]any),
	}

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	negIdx := -1
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), negativeMarker) {
			negIdx = i
			break
		}
	}

	if negIdx <= 0 {
		p.Prompt = strings.TrimSpace(strings.Join(lines, "\n"))
		return p
	}

	p.Prompt = strings.TrimSpace(strings.Join(lines[:negIdx], "\n"))
	p.NegativePrompt = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(lines[negIdx]), negativeMarker))

	for _, line := range lines[negIdx+1:] {
		p.parseOptionLine(line)
	}
	return p
}

// parseOptionLine records every comma separated "key: value" part of line
func (p *Parameters) parseOptionLine(line string) {
	for _, part := range strings.Split(line, ",") {
		key, value, found := strings.Cut(part, ":")
		if !found {
			if flag := strings.TrimSpace(part); flag != "" {
				p.Etc[flag] = ""
			}
			continue
		}

		key = vocab.Canonical(key)
		if vocab.IsRecognized(key) {
			p.Options[key] = Coerce(value)
		} else {
			p.Etc[key] = Coerce(value)
		}
	}
}

// Record returns the raw key/value record consumed by the normalizer.
// The negative prompt is exposed under the legacy "uc" key.
func (p *Parameters) Record() map[string]any {
	raw := make(map[string]any, len(p.Options)+len(p.Etc)+2)
	for k, v := range p.Etc {
		raw[k] = v
	}
	for k, v := range p.Options {
		raw[k] = v
	}
	raw["prompt"] = p.Prompt
	raw["uc"] = p.NegativePrompt
	return raw
}

// Coerce trims value and converts it to a float64 when it contains a decimal point,
// otherwise to an int64. Values that fail to parse are returned as trimmed strings.
func Coerce(value string) any {
	v := strings.TrimSpace(value)
	if strings.Contains(v, ".") {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		return v
	}
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return i
	}
	return v
}

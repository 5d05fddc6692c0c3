// Package vocab holds the fixed option vocabulary shared by the parsers and the normalizer
package vocab

import (
	"sort"
	"strings"
)

// recognized is the canonical set of generation options surfaced in a record
var recognized = map[string]struct{}{
	"steps":              {},
	"height":             {},
	"width":              {},
	"scale":              {},
	"seed":               {},
	"sampler":            {},
	"n_samples":          {},
	"sm":                 {},
	"sm_dyn":             {},
	"clip_skip":          {},
	"schedule_type":      {},
	"size":               {},
	"model":              {},
	"model_hash":         {},
	"denoising_strength": {},
}

// aliases maps WebUI spellings to canonical option names
var aliases = map[string]string{
	"cfg scale":          "scale",
	"cfg_scale":          "scale",
	"clip skip":          "clip_skip",
	"schedule type":      "schedule_type",
	"model hash":         "model_hash",
	"denoising strength": "denoising_strength",
}

// Canonical lower-cases and trims key and resolves WebUI aliases.
// Unknown keys are returned lower-cased and trimmed.
func Canonical(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	if c, ok := aliases[k]; ok {
		return c
	}
	// underscore and space spellings are interchangeable
	if c, ok := aliases[strings.ReplaceAll(k, "_", " ")]; ok {
		return c
	}
	return k
}

// IsRecognized reports whether key, after canonicalization, is a recognized option
func IsRecognized(key string) bool {
	_, ok := recognized[Canonical(key)]
	return ok
}

// IsAlias reports whether key is a WebUI source spelling rather than a canonical name
func IsAlias(key string) bool {
	k := strings.ToLower(strings.TrimSpace(key))
	return IsRecognized(k) && Canonical(k) != k
}

// Recognized returns the canonical option names in sorted order
func Recognized() []string {
	out := make([]string, 0, len(recognized))
	for k := range recognized {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Package normalizer merges a raw key/value record from either generator dialect into
// the canonical record
package normalizer

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/alevsk/tagview/internal/types"
	"github.com/alevsk/tagview/internal/vocab"
)

// Error types for the normalizer package
var (
	ErrNotMapping = errors.New("record is not a key/value mapping")
	ErrInternal   = errors.New("normalization failed")
)

const (
	keyPrompt         = "prompt"
	keyUC             = "uc"
	keyNegativePrompt = "negative_prompt"
)

// Normalize builds a canonical record from raw.
// It only fails when raw is not a mapping or normalization panics.
func Normalize(raw any) (rec *types.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec = nil
			err = fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()

	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNotMapping, raw)
	}

	rec = types.NewRecord()
	rec.Prompt = text(m[keyPrompt])
	if v := m[keyUC]; v != nil {
		rec.NegativePrompt = text(v)
	} else {
		rec.NegativePrompt = text(m[keyNegativePrompt])
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// exact canonical spellings claim their slot before alias spellings
	var pending []string
	for _, k := range keys {
		switch k {
		case keyPrompt, keyUC, keyNegativePrompt:
			continue
		}
		canonical := vocab.Canonical(k)
		if !vocab.IsRecognized(canonical) {
			rec.Overflow[k] = m[k]
			continue
		}
		if k != canonical {
			pending = append(pending, k)
			continue
		}
		if m[k] != nil {
			rec.Options[canonical] = m[k]
		}
	}
	for _, k := range pending {
		canonical := vocab.Canonical(k)
		if _, taken := rec.Options[canonical]; taken || m[k] == nil {
			continue
		}
		rec.Options[canonical] = m[k]
	}

	return rec, nil
}

// text renders a prompt value as trimmed text; nil becomes the empty string
func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

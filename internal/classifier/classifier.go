// Package classifier decides which generator dialect a raw metadata text encodes
package classifier

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/alevsk/tagview/internal/types"
)

// Kind represents the detected metadata dialect
type Kind int

const (
	// KindUnrecognized is used when the text is not a key/value record
	KindUnrecognized Kind = iota
	// KindLegacy is used for records carrying a Comment payload
	KindLegacy
	// KindWebUI is used for records carrying a parameters block
	KindWebUI
	// KindFlat is used for any other key/value record
	KindFlat
)

// String returns the string representation of a Kind
func (k Kind) String() string {
	switch k {
	case KindLegacy:
		return "legacy"
	case KindWebUI:
		return "webui"
	case KindFlat:
		return "flat"
	default:
		return "unrecognized"
	}
}

const (
	legacyKey = "Comment"
	webUIKey  = "parameters"
)

// ErrNotRecord is returned when a text does not decode to a JSON object
var ErrNotRecord = errors.New("not a key/value record")

// Detection is the result of classifying a raw text source
type Detection struct {
	// Kind is the detected dialect
	Kind Kind
	// Payload is the nested Comment JSON for KindLegacy or the parameters text for KindWebUI
	Payload string
	// Record is the decoded record for KindFlat
	Record map[string]any
}

// Classify inspects text and decides which dialect it encodes.
// The legacy Comment marker takes precedence over the WebUI parameters marker.
func Classify(text string) Detection {
	record, err := DecodeRecord(text)
	if err != nil {
		return Detection{Kind: KindUnrecognized}
	}

	if payload, ok := legacyPayload(record); ok {
		return Detection{Kind: KindLegacy, Payload: payload}
	}

	if params, ok := record[webUIKey].(string); ok {
		return Detection{Kind: KindWebUI, Payload: params}
	}

	return Detection{Kind: KindFlat, Record: record}
}

// legacyPayload finds the Comment value, preferring the exact spelling over other casings
func legacyPayload(record map[string]any) (string, bool) {
	value, found := record[legacyKey]
	if !found {
		keys := make([]string, 0, len(record))
		for key := range record {
			if strings.EqualFold(key, legacyKey) {
				keys = append(keys, key)
			}
		}
		if len(keys) == 0 {
			return "", false
		}
		sort.Strings(keys)
		value = record[keys[0]]
	}
	if value == nil {
		return "", false
	}

	if s, ok := value.(string); ok {
		return s, true
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return "", false
	}
	return string(encoded), true
}

// DecodeRecord decodes text as a JSON object. Integral numbers become int64 and
// the rest float64.
func DecodeRecord(text string) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotRecord, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data", ErrNotRecord)
	}

	record, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNotRecord, v)
	}
	return types.NormalizeNumbers(record).(map[string]any), nil
}

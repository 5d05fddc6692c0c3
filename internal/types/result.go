package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Status tags the outcome of a metadata extraction
type Status int

const (
	// StatusNoMetadata means neither the container nor the pixel data carried metadata
	StatusNoMetadata Status = iota
	// StatusUnparseableMetadata means metadata exists but no source could be parsed into a record
	StatusUnparseableMetadata
	// StatusUnnormalizableMetadata means a record was parsed but could not be normalized
	StatusUnnormalizableMetadata
	// StatusSuccess means a canonical record was produced
	StatusSuccess
)

var statusNames = map[Status]string{
	StatusNoMetadata:             "no_metadata",
	StatusUnparseableMetadata:    "unparseable",
	StatusUnnormalizableMetadata: "unnormalizable",
	StatusSuccess:                "success",
}

// String returns the text form of a Status
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler
func (s Status) MarshalText() ([]byte, error) {
	if _, ok := statusNames[s]; !ok {
		return nil, fmt.Errorf("unknown status: %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Status) UnmarshalText(text []byte) error {
	for status, name := range statusNames {
		if name == string(text) {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown status: %q", string(text))
}

// Generator identifies which metadata dialect produced a record
type Generator string

const (
	// GeneratorLegacy is the legacy generator's Comment-wrapped JSON
	GeneratorLegacy Generator = "legacy"
	// GeneratorWebUI is the WebUI free-text parameters block
	GeneratorWebUI Generator = "webui"
	// GeneratorFlat is an already flat key/value record
	GeneratorFlat Generator = "flat"
)

// Origin identifies where in the image a raw source was found
type Origin string

const (
	// OriginContainer is the container-level key/value metadata
	OriginContainer Origin = "container"
	// OriginStealth is the payload hidden in pixel data
	OriginStealth Origin = "stealth"
)

// Record is the canonical, normalized metadata record
type Record struct {
	// Prompt is the trimmed positive prompt
	Prompt string `json:"prompt" yaml:"prompt"`
	// NegativePrompt is the trimmed negative prompt (undesired content)
	NegativePrompt string `json:"negative_prompt" yaml:"negative_prompt"`
	// Options holds recognized generation options under their canonical names
	Options map[string]any `json:"options" yaml:"options"`
	// Overflow holds every other key, verbatim
	Overflow map[string]any `json:"overflow" yaml:"overflow"`
}

// NewRecord creates a Record with initialized maps
func NewRecord() *Record {
	return &Record{
		Options:  make(map[string]any),
		Overflow: make(map[string]any),
	}
}

// Flatten rebuilds a raw key/value mapping from the record.
// Normalizing the returned mapping yields the same record.
func (r *Record) Flatten() map[string]any {
	raw := make(map[string]any, len(r.Options)+len(r.Overflow)+2)
	for k, v := range r.Overflow {
		raw[k] = v
	}
	for k, v := range r.Options {
		raw[k] = v
	}
	raw["prompt"] = r.Prompt
	raw["uc"] = r.NegativePrompt
	return raw
}

// UnmarshalJSON keeps integral numbers as int64 instead of float64
func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	var p plain
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&p); err != nil {
		return err
	}
	for k, v := range p.Options {
		p.Options[k] = NormalizeNumbers(v)
	}
	for k, v := range p.Overflow {
		p.Overflow[k] = NormalizeNumbers(v)
	}
	*r = Record(p)
	return nil
}

// Extraction is the status-tagged outcome of extracting metadata from one image
type Extraction struct {
	// Status discriminates which of the other fields are meaningful
	Status Status `json:"status" yaml:"status"`
	// Generator is the dialect that produced Record
	Generator Generator `json:"generator,omitempty" yaml:"generator,omitempty"`
	// Origin is the raw source Record was built from
	Origin Origin `json:"origin,omitempty" yaml:"origin,omitempty"`
	// Record is set when Status is StatusSuccess
	Record *Record `json:"record,omitempty" yaml:"record,omitempty"`
	// Raw is the first non-empty raw source, set for the unparseable and unnormalizable statuses
	Raw string `json:"raw,omitempty" yaml:"raw,omitempty"`
}

// Result represents one processed image
type Result struct {
	// Source is the path or name of the image
	Source string `json:"source" yaml:"source"`
	// Size is the size of the image in bytes
	Size int64 `json:"size" yaml:"size"`
	// Digest is the hex SHA-256 of the image bytes
	Digest string `json:"digest,omitempty" yaml:"digest,omitempty"`
	// Format is the sniffed container format
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
	// Cached reports whether the extraction was served from the result cache
	Cached bool `json:"cached,omitempty" yaml:"cached,omitempty"`
	// Error describes an I/O or decode failure that prevented extraction
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
	// Timestamp is the unix time the result was produced
	Timestamp int64 `json:"timestamp" yaml:"timestamp"`

	Extraction `yaml:",inline"`
}

// Report represents a unified result type for an ingestion run
type Report struct {
	// Source is the file or folder that was ingested
	Source string `json:"source" yaml:"source"`
	// Timestamp is the unix time the run finished
	Timestamp int64 `json:"timestamp" yaml:"timestamp"`
	// Results holds one entry per image, in source order
	Results []*Result `json:"results" yaml:"results"`

	// Formatted output
	OutputFormatted string `json:"-" yaml:"-"`
}

// Counts returns the number of results per status. Nil results are not counted.
func (r *Report) Counts() map[Status]int {
	counts := make(map[Status]int)
	for _, res := range r.Results {
		if res == nil {
			continue
		}
		counts[res.Status]++
	}
	return counts
}

// NormalizeNumbers walks a decoded JSON value and replaces every json.Number with an
// int64 when it is integral and in range, or a float64 otherwise.
func NormalizeNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		s := t.String()
		if !strings.ContainsAny(s, ".eE") {
			if i, err := t.Int64(); err == nil {
				return i
			}
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return s
	case map[string]any:
		for k, val := range t {
			t[k] = NormalizeNumbers(val)
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = NormalizeNumbers(val)
		}
		return t
	default:
		return v
	}
}

package formatter

import "github.com/alevsk/tagview/internal/types"

// Type represents the type of formatter
type Type string

const (
	// TypeJSON formats data as JSON
	TypeJSON Type = "json"
	// TypeYAML formats data as YAML
	TypeYAML Type = "yaml"
	// TypeTable formats data as a table
	TypeTable Type = "table"
	// TypeMarkdown formats data as markdown
	TypeMarkdown Type = "markdown"
)

// Options configures the formatters
type Options struct {
	// IncludeMetadata adds the report source, timestamp and status counts
	IncludeMetadata bool
	// IncludeOverflow shows unrecognized keys next to the recognized options
	IncludeOverflow bool
}

// DefaultOptions returns the default formatter options
func DefaultOptions() *Options {
	return &Options{
		IncludeMetadata: true,
		IncludeOverflow: true,
	}
}

// JSON implements JSON formatting
type JSON struct {
	opts *Options
}

// YAML implements YAML formatting
type YAML struct {
	opts *Options
}

// Table implements table formatting
type Table struct {
	opts *Options
}

// Markdown implements markdown formatting
type Markdown struct {
	opts *Options
}

// Metadata describes the ingestion run
type Metadata struct {
	Source    string         `json:"source" yaml:"source"`
	Timestamp int64          `json:"timestamp" yaml:"timestamp"`
	Images    int            `json:"images" yaml:"images"`
	Counts    map[string]int `json:"counts" yaml:"counts"`
}

// ParsedData is the serialized shape of a report
type ParsedData struct {
	Metadata *Metadata       `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Images   []*types.Result `json:"images" yaml:"images"`
}

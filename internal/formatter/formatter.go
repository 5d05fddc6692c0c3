// Package formatter renders ingestion reports as JSON, YAML, tables or markdown
package formatter

import (
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/alevsk/tagview/internal/types"
)

// Formatter defines the interface for formatting data
type Formatter interface {
	Format(data types.Report) (string, error)
}

// PrepareData builds the serialized shape of a report
func PrepareData(data types.Report, opts *Options) (*ParsedData, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	parsed := &ParsedData{Images: data.Results}
	if parsed.Images == nil {
		parsed.Images = []*types.Result{}
	}
	for i, res := range parsed.Images {
		if res == nil {
			return nil, fmt.Errorf("result %d is nil", i)
		}
	}

	if opts.IncludeMetadata {
		counts := make(map[string]int)
		for status, n := range data.Counts() {
			counts[status.String()] = n
		}
		parsed.Metadata = &Metadata{
			Source:    data.Source,
			Timestamp: data.Timestamp,
			Images:    len(data.Results),
			Counts:    counts,
		}
	}

	return parsed, nil
}

// Format formats data as JSON
func (j *JSON) Format(data types.Report) (string, error) {
	parsed, err := PrepareData(data, j.opts)
	if err != nil {
		return "", err
	}
	bytes, err := json.MarshalIndent(parsed, "", "  ")
	if err != nil {
		return "", fmt.Errorf("error formatting as JSON: %w", err)
	}
	return string(bytes), nil
}

// Format formats data as YAML
func (y *YAML) Format(data types.Report) (string, error) {
	parsed, err := PrepareData(data, y.opts)
	if err != nil {
		return "", err
	}
	bytes, err := yaml.Marshal(parsed)
	if err != nil {
		return "", fmt.Errorf("error formatting as YAML: %w", err)
	}
	return string(bytes), nil
}

// Format formats data as tables using go-pretty/v6/table
func (t *Table) Format(data types.Report) (string, error) {
	tables, err := buildTables(data, t.opts)
	if err != nil {
		return "", err
	}
	return joinTables(tables, table.Writer.Render), nil
}

// Format formats data as markdown tables
func (m *Markdown) Format(data types.Report) (string, error) {
	tables, err := buildTables(data, m.opts)
	if err != nil {
		return "", err
	}
	return joinTables(tables, table.Writer.RenderMarkdown), nil
}

// ParseType converts a string to a Type
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeJSON, TypeYAML, TypeTable, TypeMarkdown:
		return Type(s), nil
	default:
		return "", fmt.Errorf("unknown formatter type: %s", s)
	}
}

// NewFormatter creates a new formatter of the specified type
func NewFormatter(t Type, opts *Options) (Formatter, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	switch t {
	case TypeJSON:
		return &JSON{opts: opts}, nil
	case TypeYAML:
		return &YAML{opts: opts}, nil
	case TypeTable:
		return &Table{opts: opts}, nil
	case TypeMarkdown:
		return &Markdown{opts: opts}, nil
	default:
		return nil, fmt.Errorf("unknown formatter type: %s", t)
	}
}

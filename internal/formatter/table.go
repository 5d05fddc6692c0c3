package formatter

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/alevsk/tagview/internal/types"
)

// newTable creates a titled table in the shared style
func newTable(title string, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(nil)
	t.SetStyle(table.StyleLight)
	t.Style().Options.SeparateColumns = true
	t.SetTitle(title)
	if header != nil {
		t.AppendHeader(header)
	}
	return t
}

// buildTables builds the tables for the given report: run metadata, a summary row per
// image, then the details of every image
func buildTables(data types.Report, opts *Options) ([]table.Writer, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	for i, res := range data.Results {
		if res == nil {
			return nil, fmt.Errorf("result %d is nil", i)
		}
	}

	var tables []table.Writer

	if opts.IncludeMetadata {
		metadataTable := newTable("METADATA", table.Row{"KEY", "VALUE"})
		metadataTable.AppendRow(table.Row{"SOURCE", data.Source})
		metadataTable.AppendRow(table.Row{"TIMESTAMP", data.Timestamp})
		metadataTable.AppendRow(table.Row{"IMAGES", len(data.Results)})

		counts := data.Counts()
		for _, status := range []types.Status{
			types.StatusSuccess,
			types.StatusUnnormalizableMetadata,
			types.StatusUnparseableMetadata,
			types.StatusNoMetadata,
		} {
			metadataTable.AppendRow(table.Row{strings.ToUpper(status.String()), counts[status]})
		}
		tables = append(tables, metadataTable)
	}

	summaryTable := newTable("SUMMARY", table.Row{
		"SOURCE",
		"FORMAT",
		"STATUS",
		"GENERATOR",
		"ORIGIN",
		"ERROR",
	})
	for _, res := range data.Results {
		summaryTable.AppendRow(table.Row{
			res.Source,
			res.Format,
			res.Status.String(),
			string(res.Generator),
			string(res.Origin),
			res.Error,
		})
	}
	tables = append(tables, summaryTable)

	for _, res := range data.Results {
		tables = append(tables, resultTables(res, opts)...)
	}

	return tables, nil
}

// resultTables builds the detail tables of one image
func resultTables(res *types.Result, opts *Options) []table.Writer {
	switch res.Status {
	case types.StatusSuccess:
		if res.Record == nil {
			return nil
		}
	case types.StatusUnparseableMetadata, types.StatusUnnormalizableMetadata:
		rawTable := newTable("RAW METADATA: "+res.Source, nil)
		rawTable.AppendRow(table.Row{res.Raw})
		return []table.Writer{rawTable}
	default:
		return nil
	}

	rec := res.Record

	promptTable := newTable("PROMPT: "+res.Source, table.Row{"KIND", "TEXT"})
	promptTable.AppendRow(table.Row{"PROMPT", rec.Prompt})
	promptTable.AppendRow(table.Row{"NEGATIVE PROMPT", rec.NegativePrompt})
	tables := []table.Writer{promptTable}

	if len(rec.Options) > 0 {
		tables = append(tables, keyValueTable("OPTIONS: "+res.Source, rec.Options))
	}
	if opts.IncludeOverflow && len(rec.Overflow) > 0 {
		tables = append(tables, keyValueTable("OVERFLOW: "+res.Source, rec.Overflow))
	}
	return tables
}

// keyValueTable renders a map sorted by key
func keyValueTable(title string, values map[string]any) table.Writer {
	t := newTable(title, table.Row{"KEY", "VALUE"})

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		t.AppendRow(table.Row{k, FormatValue(values[k])})
	}
	return t
}

// FormatValue renders an option value as display text. Nested values are JSON encoded.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	default:
		return fmt.Sprint(val)
	}
}

// joinTables renders every table and separates them with a blank line
func joinTables(tables []table.Writer, render func(table.Writer) string) string {
	parts := make([]string, 0, len(tables))
	for _, t := range tables {
		parts = append(parts, render(t))
	}
	return strings.Join(parts, "\n\n") + "\n"
}

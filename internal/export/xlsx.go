// Package export writes extraction results as spreadsheets
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/alevsk/tagview/internal/formatter"
	"github.com/alevsk/tagview/internal/logger"
	"github.com/alevsk/tagview/internal/types"
	"github.com/alevsk/tagview/internal/vocab"
)

// SheetName is the name of the worksheet holding one row per image
const SheetName = "Metadata"

// ErrNilWriter is returned when no destination is given
var ErrNilWriter = errors.New("export: nil writer")

// Headers returns the header row: fixed columns, every recognized option, then overflow
func Headers() []string {
	headers := []string{"Source", "Status", "Generator", "Origin", "Prompt", "Negative Prompt"}
	headers = append(headers, vocab.Recognized()...)
	return append(headers, "Overflow")
}

// WriteXLSX writes results to w as an XLSX workbook with a single Metadata sheet.
// Nil results are skipped.
func WriteXLSX(w io.Writer, results []*types.Result) error {
	if w == nil {
		return ErrNilWriter
	}
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headers := Headers()
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	options := vocab.Recognized()
	row := 2
	for _, res := range results {
		if res == nil {
			continue
		}

		var err error
		write := func(col int, v any) {
			if err != nil {
				return
			}
			if s, ok := v.(string); ok && s == "" {
				return
			}
			cell, _ := excelize.CoordinatesToCellName(col, row)
			err = f.SetCellValue(SheetName, cell, v)
		}

		write(1, res.Source)
		write(2, res.Status.String())
		write(3, string(res.Generator))
		write(4, string(res.Origin))

		if rec := res.Record; rec != nil {
			write(5, rec.Prompt)
			write(6, rec.NegativePrompt)
			for i, name := range options {
				if v, ok := rec.Options[name]; ok {
					write(7+i, formatter.FormatValue(v))
				}
			}
			if len(rec.Overflow) > 0 {
				b, jerr := json.Marshal(rec.Overflow)
				if jerr != nil {
					return fmt.Errorf("encode overflow of %s: %w", res.Source, jerr)
				}
				write(len(headers), string(b))
			}
		}
		if err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
		row++
	}

	_ = f.SetColWidth(SheetName, "A", "A", 40) // source
	_ = f.SetColWidth(SheetName, "E", "F", 60) // prompts

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}

	logger.Debug().
		Int("rows", row-2).
		Int64("elapsed_ms", time.Since(start).Milliseconds()).
		Msg("xlsx export written")
	return nil
}

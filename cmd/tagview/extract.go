package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alevsk/tagview/internal/export"
	"github.com/alevsk/tagview/internal/ingestor"
	"github.com/alevsk/tagview/internal/logger"
	"github.com/alevsk/tagview/internal/types"
)

var (
	extractOutput          string
	extractConcurrency     int
	extractFollowSymlinks  bool
	extractStealth         bool
	extractIncludeMetadata bool
	extractIncludeOverflow bool
	extractXLSX            string
	extractCache           string
)

var extractCmd = &cobra.Command{
	Use:   "extract [source]",
	Short: "Extract generation metadata from an image or a folder of images",
	Long: `Extract generation metadata from a single image or from every image found in a
directory. Metadata is read from PNG text chunks, JPEG and GIF comments and, unless
disabled, from payloads hidden in the least significant bits of the pixels. WebP
images only carry hidden payloads.

Examples:
  # Show the metadata of one image
  tagview extract image.png

  # Extract a whole folder as JSON
  tagview extract ./outputs -o json

  # Export a folder to a spreadsheet, caching results between runs
  tagview extract ./outputs --xlsx metadata.xlsx --cache tagview.db`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := extractOptions(cmd)

		cache, err := openCache(extractCache)
		if err != nil {
			return err
		}
		if cache != nil {
			defer cache.Close()
			opts.Cache = cache
		}

		report, err := ingestor.New(opts).Ingest(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("extraction failed: %w", err)
		}

		fmt.Fprint(cmd.OutOrStdout(), report.OutputFormatted)

		if extractXLSX != "" {
			if err := writeXLSX(extractXLSX, report.Results); err != nil {
				return err
			}
			logger.Info().Str("path", extractXLSX).Int("rows", len(report.Results)).Msg("spreadsheet written")
		}
		return nil
	},
}

// writeXLSX exports results to the spreadsheet at path. The file is closed before
// returning so a failed flush is reported.
func writeXLSX(path string, results []*types.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	werr := export.WriteXLSX(f, results)
	cerr := f.Close()
	if werr != nil {
		return fmt.Errorf("failed to export %s: %w", path, werr)
	}
	if cerr != nil {
		return fmt.Errorf("failed to close %s: %w", path, cerr)
	}
	return nil
}

// extractOptions merges the configuration with the flags set on the command line
func extractOptions(cmd *cobra.Command) *ingestor.Options {
	opts := &ingestor.Options{
		MaxConcurrency:  cfg.Extract.MaxConcurrency,
		FollowSymlinks:  cfg.Extract.FollowSymlinks,
		Stealth:         cfg.Extract.Stealth,
		OutputFormat:    cfg.Extract.Output,
		IncludeMetadata: extractIncludeMetadata,
		IncludeOverflow: extractIncludeOverflow,
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		opts.OutputFormat = extractOutput
	}
	if flags.Changed("concurrency") {
		opts.MaxConcurrency = extractConcurrency
	}
	if flags.Changed("follow-symlinks") {
		opts.FollowSymlinks = extractFollowSymlinks
	}
	if flags.Changed("stealth") {
		opts.Stealth = extractStealth
	}
	return opts
}

func init() {
	flags := extractCmd.Flags()
	flags.StringVarP(&extractOutput, "output", "o", "table", "output format (table, json, yaml, markdown)")
	flags.IntVar(&extractConcurrency, "concurrency", 4,
		"maximum number of images processed concurrently")
	flags.BoolVar(&extractFollowSymlinks, "follow-symlinks", false,
		"follow symbolic links during directory traversal")
	flags.BoolVar(&extractStealth, "stealth", true,
		"read metadata hidden in the pixel data")
	flags.BoolVar(&extractIncludeMetadata, "include-metadata", true,
		"include run metadata in the output")
	flags.BoolVar(&extractIncludeOverflow, "include-overflow", true,
		"include unrecognized keys in the output")
	flags.StringVar(&extractXLSX, "xlsx", "", "also write the results to this spreadsheet")
	flags.StringVar(&extractCache, "cache", "", "path of the result cache database")
}

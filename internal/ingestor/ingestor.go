// Package ingestor runs metadata extraction over every image of a file or folder source
package ingestor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alevsk/tagview/internal/extractor"
	"github.com/alevsk/tagview/internal/formatter"
	"github.com/alevsk/tagview/internal/logger"
	"github.com/alevsk/tagview/internal/rawinfo"
	"github.com/alevsk/tagview/internal/resolver"
	"github.com/alevsk/tagview/internal/store"
	"github.com/alevsk/tagview/internal/types"
)

// Options holds configuration for the ingestor
type Options struct {
	// MaxConcurrency defines the maximum number of images processed at once
	MaxConcurrency int
	// FollowSymlinks determines if symlinks should be followed during directory traversal
	FollowSymlinks bool
	// Stealth enables reading the pixel data for hidden payloads
	Stealth bool
	// OutputFormat is the formatter type used for Report.OutputFormatted
	OutputFormat string
	// IncludeMetadata adds run metadata to the formatted output
	IncludeMetadata bool
	// IncludeOverflow shows unrecognized keys in the formatted output
	IncludeOverflow bool
	// Cache memoizes extractions by image digest when set
	Cache *store.Store
}

// DefaultOptions returns the default ingestor options
func DefaultOptions() *Options {
	return &Options{
		MaxConcurrency:  4,
		FollowSymlinks:  false,
		Stealth:         true,
		OutputFormat:    string(formatter.TypeTable),
		IncludeMetadata: true,
		IncludeOverflow: true,
	}
}

// Ingestor manages the ingestion of images
type Ingestor struct {
	opts      *Options
	extractor *extractor.Extractor
	// variant scopes cached results to the extractor options
	variant string
}

// New creates a new Ingestor with the given options
func New(opts *Options) *Ingestor {
	if opts == nil {
		opts = DefaultOptions()
	}
	ext := extractor.New(&extractor.Options{Stealth: opts.Stealth})
	return &Ingestor{
		opts:      opts,
		extractor: ext,
		variant:   ext.GetOptions().Variant(),
	}
}

// Error types for ingestion operations
var (
	ErrInvalidSource = errors.New("invalid source")
	ErrNoImages      = resolver.ErrNoImages
)

// Ingest resolves source, extracts the metadata of every image and formats the report.
// Per-image failures are recorded on the result; the context cancels the whole batch.
func (i *Ingestor) Ingest(ctx context.Context, source string) (*types.Report, error) {
	if source == "" {
		return nil, ErrInvalidSource
	}

	outputFormat := i.opts.OutputFormat
	if outputFormat == "" {
		outputFormat = string(formatter.TypeTable)
	}
	formatterType, err := formatter.ParseType(outputFormat)
	if err != nil {
		return nil, err
	}

	// Get the appropriate resolver for this source
	r, err := resolver.ResolverFactory(source, &resolver.Options{FollowSymlinks: i.opts.FollowSymlinks})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSource, err)
	}

	artifacts, metadata, err := r.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("source", metadata.Path).Str("type", metadata.Type.String()).
		Int("images", len(artifacts)).Msg("source resolved")

	results, err := i.processAll(ctx, artifacts)
	if err != nil {
		return nil, err
	}

	report := &types.Report{
		Source:    metadata.Path,
		Timestamp: time.Now().Unix(),
		Results:   results,
	}

	f, err := formatter.NewFormatter(formatterType, &formatter.Options{
		IncludeMetadata: i.opts.IncludeMetadata,
		IncludeOverflow: i.opts.IncludeOverflow,
	})
	if err != nil {
		return nil, err
	}
	report.OutputFormatted, err = f.Format(*report)
	if err != nil {
		return nil, fmt.Errorf("failed to format report: %w", err)
	}

	return report, nil
}

// processAll extracts every artifact with bounded concurrency, keeping artifact order
func (i *Ingestor) processAll(ctx context.Context, artifacts []*resolver.Artifact) ([]*types.Result, error) {
	limit := i.opts.MaxConcurrency
	if limit < 1 {
		limit = 1
	}

	results := make([]*types.Result, len(artifacts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for idx, artifact := range artifacts {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := artifact.Read()
			if err != nil {
				results[idx] = &types.Result{
					Source:    artifact.Path,
					Size:      artifact.Size,
					Error:     err.Error(),
					Timestamp: time.Now().Unix(),
				}
				return nil
			}
			results[idx] = i.Process(gctx, artifact.Path, data)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Process extracts the metadata of one in-memory image. It never fails: decode errors are
// recorded in Result.Error with the NoMetadata status.
func (i *Ingestor) Process(ctx context.Context, name string, data []byte) *types.Result {
	res := &types.Result{
		Source:    name,
		Size:      int64(len(data)),
		Digest:    store.Digest(data),
		Timestamp: time.Now().Unix(),
	}
	if format, err := rawinfo.DetectFormat(data); err == nil {
		res.Format = format
	}

	if cache := i.opts.Cache; cache != nil {
		ext, err := cache.Get(ctx, res.Digest, i.variant)
		switch {
		case err == nil:
			res.Extraction = *ext
			res.Cached = true
			return res
		case !errors.Is(err, store.ErrNotFound):
			logger.Warn().Err(err).Str("source", name).Msg("cache lookup failed")
		}
	}

	img, err := rawinfo.Decode(data)
	if err != nil {
		logger.Debug().Err(err).Str("source", name).Msg("failed to decode image")
		res.Error = err.Error()
		res.Status = types.StatusNoMetadata
		return res
	}

	res.Extraction = *i.extractor.Extract(img)
	logger.Debug().Str("source", name).Str("status", res.Status.String()).Msg("image processed")

	if cache := i.opts.Cache; cache != nil {
		if err := cache.Put(ctx, res.Digest, i.variant, name, &res.Extraction); err != nil {
			logger.Warn().Err(err).Str("source", name).Msg("failed to cache extraction")
		}
	}
	return res
}

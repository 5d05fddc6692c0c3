package resolver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalImageResolver implements SourceResolver for a single local image file
type LocalImageResolver struct {
	source string
	opts   *Options
}

// NewLocalImageResolver creates a new LocalImageResolver
func NewLocalImageResolver(source string, opts *Options) *LocalImageResolver {
	return &LocalImageResolver{
		source: source,
		opts:   opts,
	}
}

// CanResolve checks if this resolver can handle the given source
func (r *LocalImageResolver) CanResolve(source string) bool {
	info, err := os.Stat(source)
	if err != nil || info.IsDir() {
		return false
	}
	return IsImage(source)
}

// Resolve returns the file as a single artifact
func (r *LocalImageResolver) Resolve(ctx context.Context) ([]*Artifact, *ResolverMetadata, error) {
	select {
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	default:
	}

	info, err := os.Stat(r.source)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, nil, fmt.Errorf("not a regular file: %s", r.source)
	}
	if !IsImage(r.source) {
		return nil, nil, fmt.Errorf("%w: %s", ErrNoImages, r.source)
	}

	artifact := &Artifact{
		Path:    r.source,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}

	return []*Artifact{artifact}, &ResolverMetadata{
		Name:    filepath.Base(r.source),
		Type:    SourceTypeFile,
		Path:    r.source,
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Extra: map[string]interface{}{
			"images": 1,
		},
	}, nil
}

// Package resolver turns a user supplied source into the list of image files to process
package resolver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Error types for the resolver package
var (
	ErrEmptySource       = errors.New("empty source")
	ErrUnsupportedSource = errors.New("no suitable resolver found for source")
	ErrNoImages          = errors.New("no images found")
)

// imageExtensions lists the file extensions treated as images
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// IsImage reports whether path has a supported image extension
func IsImage(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// Options configures the resolvers
type Options struct {
	// FollowSymlinks determines if symlinks should be followed during directory traversal
	FollowSymlinks bool
}

// Artifact is one image file found in a source
type Artifact struct {
	// Path is the path of the file as found in the source
	Path string
	// Size is the file size in bytes
	Size int64
	// ModTime is the last modification time
	ModTime time.Time
}

// Read returns the file contents
func (a *Artifact) Read() ([]byte, error) {
	return os.ReadFile(a.Path)
}

// SourceResolver defines the interface that all source resolvers must implement
type SourceResolver interface {
	// CanResolve checks if this resolver can handle the given source
	CanResolve(source string) bool
	// Resolve lists the image files of the source
	Resolve(ctx context.Context) ([]*Artifact, *ResolverMetadata, error)
}

// ResolverFactory creates the appropriate resolver for a given source
func ResolverFactory(source string, opts *Options) (SourceResolver, error) {
	if source == "" {
		return nil, ErrEmptySource
	}
	if opts == nil {
		opts = &Options{}
	}

	if folder := NewFolderResolver(source, opts); folder.CanResolve(source) {
		return folder, nil
	}
	if local := NewLocalImageResolver(source, opts); local.CanResolve(source) {
		return local, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, source)
}

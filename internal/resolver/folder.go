package resolver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FolderResolver implements SourceResolver for directories containing images
type FolderResolver struct {
	source string
	opts   *Options
}

// NewFolderResolver creates a new FolderResolver
func NewFolderResolver(source string, opts *Options) *FolderResolver {
	return &FolderResolver{
		source: source,
		opts:   opts,
	}
}

// CanResolve checks if this resolver can handle the given source
func (r *FolderResolver) CanResolve(source string) bool {
	info, err := os.Stat(source)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// imageFile is an image found while walking the directory
type imageFile struct {
	path string
	info fs.FileInfo
}

// walker holds the traversal state shared by nested symlink walks
type walker struct {
	ctx            context.Context
	followSymlinks bool
	files          chan<- imageFile
	// visited holds real directory paths already walked
	visited map[string]bool
	// seen holds real file paths already reported
	seen map[string]bool
}

// Resolve walks the directory recursively and returns its images sorted by path.
// Hidden files and directories are skipped.
func (r *FolderResolver) Resolve(ctx context.Context) ([]*Artifact, *ResolverMetadata, error) {
	info, err := os.Stat(r.source)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("not a directory: %s", r.source)
	}

	root, err := filepath.EvalSymlinks(r.source)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to evaluate %s: %w", r.source, err)
	}

	filesChan := make(chan imageFile)
	errorsChan := make(chan error, 1)

	go func() {
		defer close(filesChan)

		w := &walker{
			ctx:            ctx,
			followSymlinks: r.opts != nil && r.opts.FollowSymlinks,
			files:          filesChan,
			visited:        map[string]bool{root: true},
			seen:           make(map[string]bool),
		}
		if err := filepath.WalkDir(root, w.walkFunc(root, r.source)); err != nil {
			errorsChan <- fmt.Errorf("failed to walk directory: %w", err)
		}
	}()

	var artifacts []*Artifact
	var totalSize int64
	for file := range filesChan {
		artifacts = append(artifacts, &Artifact{
			Path:    file.path,
			Size:    file.info.Size(),
			ModTime: file.info.ModTime(),
		})
		totalSize += file.info.Size()
	}

	select {
	case err := <-errorsChan:
		return nil, nil, err
	default:
	}

	if len(artifacts) == 0 {
		return nil, nil, fmt.Errorf("%w in directory: %s", ErrNoImages, r.source)
	}

	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].Path < artifacts[j].Path
	})

	return artifacts, &ResolverMetadata{
		Name:    filepath.Base(r.source),
		Type:    SourceTypeFolder,
		Path:    r.source,
		Size:    totalSize,
		ModTime: time.Now(),
		Extra: map[string]interface{}{
			"images": len(artifacts),
		},
	}, nil
}

// walkFunc walks the real directory root and reports paths under display
func (w *walker) walkFunc(root, display string) fs.WalkDirFunc {
	return func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		default:
		}

		if path == root {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		shown := filepath.Join(display, rel)

		if d.Type()&os.ModeSymlink != 0 {
			if !w.followSymlinks {
				return nil
			}
			return w.followSymlink(path, shown)
		}

		if d.IsDir() {
			if w.visited[path] {
				return fs.SkipDir
			}
			w.visited[path] = true
			return nil
		}
		if !d.Type().IsRegular() || !IsImage(path) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		return w.emit(path, shown, info)
	}
}

func (w *walker) followSymlink(path, shown string) error {
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		// dangling link
		return nil
	}
	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("failed to stat symlink target %s: %w", target, err)
	}

	if info.IsDir() {
		if w.visited[target] {
			return nil
		}
		w.visited[target] = true
		return filepath.WalkDir(target, w.walkFunc(target, shown))
	}

	if !info.Mode().IsRegular() || !IsImage(target) {
		return nil
	}
	return w.emit(target, shown, info)
}

func (w *walker) emit(real, shown string, info fs.FileInfo) error {
	if w.seen[real] {
		return nil
	}
	w.seen[real] = true

	select {
	case w.files <- imageFile{path: shown, info: info}:
		return nil
	case <-w.ctx.Done():
		return w.ctx.Err()
	}
}

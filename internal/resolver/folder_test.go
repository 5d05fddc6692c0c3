package resolver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFolderResolver_CanResolve(t *testing.T) {
	h := newTestHelper(t)
	tmpDir := h.createTempDir(map[string]string{"test.png": "x"})

	tests := []struct {
		name   string
		source string
		want   bool
	}{
		{name: "valid directory", source: tmpDir, want: true},
		{name: "file instead of directory", source: filepath.Join(tmpDir, "test.png"), want: false},
		{name: "non-existent path", source: "/path/does/not/exist", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewFolderResolver(tt.source, nil)
			if got := r.CanResolve(tt.source); got != tt.want {
				t.Errorf("FolderResolver.CanResolve() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFolderResolver_Resolve(t *testing.T) {
	h := newTestHelper(t)

	tests := []struct {
		name      string
		files     map[string]string
		wantErr   bool
		wantPaths []string
	}{
		{
			name: "images in nested folders sorted",
			files: map[string]string{
				"b.png":           "1",
				"a.jpg":           "22",
				"sub/c.webp":      "333",
				"sub/deep/d.gif":  "4",
				"notes.txt":       "ignored",
				"sub/config.yaml": "ignored",
			},
			wantPaths: []string{"a.jpg", "b.png", "sub/c.webp", "sub/deep/d.gif"},
		},
		{
			name: "hidden entries skipped",
			files: map[string]string{
				"visible.png":       "1",
				".hidden.png":       "2",
				".cache/inside.png": "3",
				"sub/.thumbs/t.png": "4",
				"sub/visible2.jpeg": "5",
			},
			wantPaths: []string{"sub/visible2.jpeg", "visible.png"},
		},
		{
			name:    "no images",
			files:   map[string]string{"readme.md": "text"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := h.createTempDir(tt.files)
			got := h.verifyResolverOutput(NewFolderResolver(dir, nil), tt.wantErr, SourceTypeFolder, dir)
			if tt.wantErr {
				return
			}
			assert.Equal(t, tt.wantPaths, got)
		})
	}
}

func TestFolderResolver_NoImagesError(t *testing.T) {
	h := newTestHelper(t)
	dir := h.createTempDir(map[string]string{"a.txt": "x"})

	_, _, err := NewFolderResolver(dir, nil).Resolve(context.Background())
	assert.True(t, errors.Is(err, ErrNoImages))
}

func TestFolderResolver_Symlinks(t *testing.T) {
	h := newTestHelper(t)
	outside := h.createTempDir(map[string]string{
		"linked/x.png": "x",
		"single.png":   "s",
	})
	dir := h.createTempDir(map[string]string{"a.png": "a"})

	h.symlink(filepath.Join(outside, "linked"), filepath.Join(dir, "dirlink"))
	h.symlink(filepath.Join(outside, "single.png"), filepath.Join(dir, "filelink.png"))
	// cycle back to the root
	h.symlink(dir, filepath.Join(dir, "loop"))

	t.Run("not followed by default", func(t *testing.T) {
		got := h.verifyResolverOutput(NewFolderResolver(dir, nil), false, SourceTypeFolder, dir)
		assert.Equal(t, []string{"a.png"}, got)
	})

	t.Run("followed when enabled", func(t *testing.T) {
		r := NewFolderResolver(dir, &Options{FollowSymlinks: true})
		got := h.verifyResolverOutput(r, false, SourceTypeFolder, dir)
		assert.Equal(t, []string{"a.png", "dirlink/x.png", "filelink.png"}, got)
	})
}

func TestFolderResolver_DanglingSymlink(t *testing.T) {
	h := newTestHelper(t)
	dir := h.createTempDir(map[string]string{"a.png": "a"})
	h.symlink(filepath.Join(dir, "missing.png"), filepath.Join(dir, "dangling.png"))

	r := NewFolderResolver(dir, &Options{FollowSymlinks: true})
	got := h.verifyResolverOutput(r, false, SourceTypeFolder, dir)
	assert.Equal(t, []string{"a.png"}, got)
}

func TestFolderResolver_ContextCancelled(t *testing.T) {
	h := newTestHelper(t)
	dir := h.createTempDir(map[string]string{"a.png": "a", "b.png": "b"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewFolderResolver(dir, nil).Resolve(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFolderResolver_NotADirectory(t *testing.T) {
	h := newTestHelper(t)
	dir := h.createTempDir(map[string]string{"a.png": "a"})

	_, _, err := NewFolderResolver(filepath.Join(dir, "a.png"), nil).Resolve(context.Background())
	assert.Error(t, err)

	_, _, err = NewFolderResolver(filepath.Join(dir, "missing"), nil).Resolve(context.Background())
	assert.True(t, os.IsNotExist(errors.Unwrap(err)))
}

package resolver

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// testHelper provides common test utilities for resolvers
type testHelper struct {
	t *testing.T
}

// newTestHelper creates a new test helper
func newTestHelper(t *testing.T) *testHelper {
	return &testHelper{t: t}
}

// verifyResolverOutput resolves and checks the source type, returning the artifact paths
// relative to base
func (h *testHelper) verifyResolverOutput(resolver SourceResolver, wantErr bool, wantType SourceType, base string) []string {
	h.t.Helper()

	artifacts, metadata, err := resolver.Resolve(context.Background())
	if (err != nil) != wantErr {
		h.t.Errorf("Resolve() error = %v, wantErr %v", err, wantErr)
		return nil
	}
	if wantErr {
		return nil
	}

	if metadata == nil {
		h.t.Error("Resolve() metadata is nil")
		return nil
	}
	if metadata.Type != wantType {
		h.t.Errorf("Resolve() type = %v, want %v", metadata.Type, wantType)
	}

	var total int64
	paths := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		rel, err := filepath.Rel(base, a.Path)
		if err != nil {
			h.t.Fatalf("artifact %s outside %s", a.Path, base)
		}
		paths = append(paths, filepath.ToSlash(rel))
		total += a.Size
	}
	if metadata.Size != total {
		h.t.Errorf("Resolve() size = %d, want %d", metadata.Size, total)
	}
	return paths
}

// createTempDir creates a temporary directory with the given files
func (h *testHelper) createTempDir(files map[string]string) string {
	h.t.Helper()

	tmpDir := h.t.TempDir()
	for name, content := range files {
		path := filepath.Join(tmpDir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			h.t.Fatalf("Failed to create directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			h.t.Fatalf("Failed to write file %s: %v", name, err)
		}
	}

	return tmpDir
}

// symlink creates a symlink or skips the test when the platform refuses
func (h *testHelper) symlink(target, link string) {
	h.t.Helper()
	if err := os.Symlink(target, link); err != nil {
		h.t.Skipf("symlinks not supported: %v", err)
	}
}

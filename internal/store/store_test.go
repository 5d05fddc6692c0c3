package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alevsk/tagview/internal/types"
)

const testVariant = "stealth=true"

// setupTestStore creates an in-memory store for testing
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGet(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	rec := types.NewRecord()
	rec.Prompt = "cat"
	rec.NegativePrompt = "dog"
	rec.Options["steps"] = int64(28)
	rec.Options["scale"] = 5.5
	rec.Overflow["Software"] = "NovelAI"

	tests := []struct {
		name   string
		digest string
		ext    *types.Extraction
	}{
		{
			name:   "success",
			digest: Digest([]byte("image-1")),
			ext: &types.Extraction{
				Status:    types.StatusSuccess,
				Generator: types.GeneratorLegacy,
				Origin:    types.OriginStealth,
				Record:    rec,
			},
		},
		{
			name:   "unparseable",
			digest: Digest([]byte("image-2")),
			ext:    &types.Extraction{Status: types.StatusUnparseableMetadata, Raw: "junk"},
		},
		{
			name:   "no metadata",
			digest: Digest([]byte("image-3")),
			ext:    &types.Extraction{Status: types.StatusNoMetadata},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, s.Put(ctx, tt.digest, testVariant, tt.name+".png", tt.ext))

			got, err := s.Get(ctx, tt.digest, testVariant)
			require.NoError(t, err)
			assert.Equal(t, tt.ext, got)
		})
	}

	counts, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[types.Status]int{
		types.StatusSuccess:             1,
		types.StatusUnparseableMetadata: 1,
		types.StatusNoMetadata:          1,
	}, counts)
}

func TestGetMissing(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.Get(context.Background(), Digest([]byte("missing")), testVariant)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPutReplaces(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	digest := Digest([]byte("image"))

	require.NoError(t, s.Put(ctx, digest, testVariant, "a.png", &types.Extraction{Status: types.StatusNoMetadata}))
	require.NoError(t, s.Put(ctx, digest, testVariant, "b.png", &types.Extraction{Status: types.StatusUnparseableMetadata, Raw: "x"}))

	got, err := s.Get(ctx, digest, testVariant)
	require.NoError(t, err)
	assert.Equal(t, types.StatusUnparseableMetadata, got.Status)

	counts, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[types.Status]int{types.StatusUnparseableMetadata: 1}, counts)
}

func TestPutNil(t *testing.T) {
	s := setupTestStore(t)
	assert.Error(t, s.Put(context.Background(), "d", testVariant, "a.png", nil))
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, path, s.Path())
	require.NoError(t, s.Put(ctx, "abc", testVariant, "a.png", &types.Extraction{Status: types.StatusNoMetadata}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, "abc", testVariant)
	require.NoError(t, err)
	assert.Equal(t, types.StatusNoMetadata, got.Status)
}

func TestDigest(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Digest(nil))
	assert.NotEqual(t, Digest([]byte("a")), Digest([]byte("b")))
}

func TestGetCancelledContext(t *testing.T) {
	s := setupTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Get(ctx, "abc", testVariant)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestVariantsAreSeparate(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	digest := Digest([]byte("image"))

	rec := types.NewRecord()
	rec.Prompt = "hidden"
	require.NoError(t, s.Put(ctx, digest, "stealth=false", "a.png", &types.Extraction{Status: types.StatusNoMetadata}))

	_, err := s.Get(ctx, digest, "stealth=true")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, digest, "stealth=true", "a.png", &types.Extraction{
		Status: types.StatusSuccess, Generator: types.GeneratorLegacy, Origin: types.OriginStealth, Record: rec,
	}))

	off, err := s.Get(ctx, digest, "stealth=false")
	require.NoError(t, err)
	assert.Equal(t, types.StatusNoMetadata, off.Status)

	on, err := s.Get(ctx, digest, "stealth=true")
	require.NoError(t, err)
	assert.Equal(t, types.StatusSuccess, on.Status)
	assert.Equal(t, "hidden", on.Record.Prompt)
}

func TestOpenReplacesOutdatedSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE extractions (
		digest TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		status INTEGER NOT NULL,
		extraction TEXT NOT NULL
	)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO extractions VALUES ('abc', 'a.png', 0, '{"status":"no_metadata"}')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	_, err = s.Get(ctx, "abc", testVariant)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "abc", testVariant, "a.png", &types.Extraction{Status: types.StatusNoMetadata}))
	got, err := s.Get(ctx, "abc", testVariant)
	require.NoError(t, err)
	assert.Equal(t, types.StatusNoMetadata, got.Status)
}

package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/vocabulary"
)

func TestMissingFileIsEmpty(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "none.json"))
	records, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSaveWritesCompactKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "vocab.json")
	s := New(path)
	ctx := context.Background()

	in := []vocabulary.Record{
		{Tag: "long_hair", Category: "Hair", Subcategory: "Style", Translation: "长发"},
		{Tag: "solo"},
	}
	require.NoError(t, s.Save(ctx, in))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `{"t":"long_hair","c":"Hair","s":"Style","zh":"长发"}`)

	out, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestSaveEmptyWritesArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.json")
	require.NoError(t, New(path).Save(context.Background(), nil))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o644))
	_, err := New(path).Load(context.Background())
	assert.Error(t, err)
}

func TestStoreIntegration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.json")
	ctx := context.Background()

	vocab := vocabulary.NewStore(New(path))
	_, err := vocab.Upsert(ctx, "Blue_Eyes", "蓝眼", "Face", "Eyes")
	require.NoError(t, err)

	reloaded := vocabulary.NewStore(New(path))
	require.NoError(t, reloaded.Restore(ctx))
	rec, ok := reloaded.Lookup("blue eyes")
	require.True(t, ok)
	assert.Equal(t, "蓝眼", rec.Translation)
}

package boltstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/vocabulary"
)

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)

	records, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	in := []vocabulary.Record{{Tag: "a", Category: "C", Subcategory: "S", Translation: "甲"}}
	require.NoError(t, s.Save(ctx, in))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	out, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSaveReplaces(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "vocab.db"))
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, []vocabulary.Record{{Tag: "a"}, {Tag: "b"}}))
	require.NoError(t, s.Save(ctx, []vocabulary.Record{{Tag: "c"}}))

	out, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []vocabulary.Record{{Tag: "c"}}, out)
}

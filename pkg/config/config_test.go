package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, BackendFile, cfg.Vocabulary.Backend)
	assert.Equal(t, "misc", cfg.Categorize.DefaultCategory)
	assert.Equal(t, 50, cfg.Search.DefaultLimit)
	assert.Equal(t, 3000, cfg.Search.BrowseLimit)
	assert.False(t, cfg.Kafka.Enabled)
}

func TestLoadYAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "config.yaml")
	yml := `
server:
  port: 7000
  readTimeout: 3s
vocabulary:
  backend: bolt
  boltPath: /tmp/vocab.db
categorize:
  defaultCategory: unsorted
search:
  defaultLimit: 20
  maxResults: 100
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))
	t.Setenv("TC_SERVER_PORT", "7100")
	t.Setenv("TC_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("TC_REDIS_CACHE_NAMESPACE", "tagserver-a")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7100, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, BackendBolt, cfg.Vocabulary.Backend)
	assert.Equal(t, "unsorted", cfg.Categorize.DefaultCategory)
	assert.Equal(t, 20, cfg.Search.DefaultLimit)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "tagserver-a", cfg.Redis.CacheNamespace)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TC_VOCABULARY_BACKEND", "sqlite")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

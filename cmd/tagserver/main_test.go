package main

import (
	"context"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/metrics"
)

func TestCacheNamespaceIsStableAcrossRestarts(t *testing.T) {
	assert.Equal(t, "tagserver-a", cacheNamespace(config.RedisConfig{CacheNamespace: "tagserver-a"}))

	host, err := os.Hostname()
	require.NoError(t, err)
	first := cacheNamespace(config.RedisConfig{})
	assert.Equal(t, host, first)
	assert.Equal(t, first, cacheNamespace(config.RedisConfig{}))
}

func TestOpenSearchCacheFallsBackToLRU(t *testing.T) {
	cfg := &config.Config{Search: config.SearchConfig{LocalCache: 16}}
	cache, closeCache := openSearchCache(context.Background(), cfg,
		metrics.NewWithRegistry(prometheus.NewRegistry()), health.NewChecker())
	defer closeCache()
	require.NotNil(t, cache)

	cfg.Search.LocalCache = 0
	cache, closeCache = openSearchCache(context.Background(), cfg,
		metrics.NewWithRegistry(prometheus.NewRegistry()), health.NewChecker())
	defer closeCache()
	assert.Nil(t, cache)
}

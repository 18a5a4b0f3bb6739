package translate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/resilience"
)

func testConfig(url string) config.TranslatorConfig {
	return config.TranslatorConfig{
		Enabled:          true,
		BaseURL:          url,
		SourceLang:       "auto",
		TargetLang:       "zh-CN",
		Timeout:          time.Second,
		RetryCount:       0,
		FailureThreshold: 2,
		ResetTimeout:     time.Minute,
	}
}

func TestTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, translatePath, r.URL.Path)
		assert.Equal(t, "long hair", r.URL.Query().Get("q"))
		assert.Equal(t, "zh-CN", r.URL.Query().Get("tl"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[[["长","long",null,null,10],["发","hair",null,null,10]],null,"en"]`))
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), nil)
	out, err := c.Translate(context.Background(), "  long hair ")
	require.NoError(t, err)
	assert.Equal(t, "长发", out)
}

func TestTranslateDisabled(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.Enabled = false
	_, err := New(cfg, nil).Translate(context.Background(), "x")
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
}

func TestTranslateEmptySkipsProvider(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	out, err := New(testConfig(srv.URL), nil).Translate(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Zero(t, calls.Load())
}

func TestBreakerOpensOnFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	var opened atomic.Bool
	c := New(testConfig(srv.URL), func(_ string, s resilience.State) {
		if s == resilience.StateOpen {
			opened.Store(true)
		}
	})
	for range 3 {
		_, err := c.Translate(context.Background(), "x")
		assert.ErrorIs(t, err, apperrors.ErrUnavailable)
	}
	assert.True(t, opened.Load())
	assert.Equal(t, int32(2), calls.Load())
}

func TestParseResponseRejectsGarbage(t *testing.T) {
	_, err := parseResponse([]byte(`{"x":1}`))
	assert.Error(t, err)
	_, err = parseResponse([]byte(`[]`))
	assert.Error(t, err)
	_, err = parseResponse([]byte(`[[]]`))
	assert.Error(t, err)
}

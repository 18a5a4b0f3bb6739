// Package translate calls an external machine-translation endpoint for the
// tag editor. It is never used on the categorization path.
package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/resilience"
)

const translatePath = "/translate_a/single"

// Client translates short texts. All failures wrap apperrors.ErrUnavailable.
type Client struct {
	enabled bool
	http    *resty.Client
	breaker *resilience.CircuitBreaker
	source  string
	target  string
	logger  *slog.Logger
}

// New builds a client from cfg. onState receives circuit breaker
// transitions and may be nil.
func New(cfg config.TranslatorConfig, onState func(name string, state resilience.State)) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		}).
		SetHeader("Accept", "application/json")

	return &Client{
		enabled: cfg.Enabled,
		http:    httpClient,
		breaker: resilience.NewCircuitBreaker("translator", resilience.CircuitBreakerConfig{
			FailureThreshold: cfg.FailureThreshold,
			ResetTimeout:     cfg.ResetTimeout,
			OnStateChange:    onState,
		}),
		source: cfg.SourceLang,
		target: cfg.TargetLang,
		logger: slog.Default().With("component", "translator"),
	}
}

// Enabled reports whether the provider is configured.
func (c *Client) Enabled() bool {
	return c.enabled
}

// Translate returns the translation of text. Empty input translates to
// empty output without calling the provider.
func (c *Client) Translate(ctx context.Context, text string) (string, error) {
	if !c.enabled {
		return "", fmt.Errorf("translator disabled: %w", apperrors.ErrUnavailable)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}

	var out string
	err := c.breaker.Execute(func() error {
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"client": "gtx",
				"sl":     c.source,
				"tl":     c.target,
				"dt":     "t",
				"q":      text,
			}).
			Get(translatePath)
		if err != nil {
			return fmt.Errorf("calling translator: %w", err)
		}
		if resp.IsError() {
			return fmt.Errorf("translator returned status %d", resp.StatusCode())
		}
		out, err = parseResponse(resp.Body())
		return err
	})
	if err != nil {
		if !errors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.Warn("translation failed", "error", err)
		}
		return "", fmt.Errorf("%w: %v", apperrors.ErrUnavailable, err)
	}
	return out, nil
}

// parseResponse extracts the translated text from the nested-array reply:
// the first element lists segments whose first element is translated text.
func parseResponse(body []byte) (string, error) {
	var root []json.RawMessage
	if err := json.Unmarshal(body, &root); err != nil {
		return "", fmt.Errorf("decoding translator response: %w", err)
	}
	if len(root) == 0 {
		return "", fmt.Errorf("empty translator response")
	}
	var segments []json.RawMessage
	if err := json.Unmarshal(root[0], &segments); err != nil {
		return "", fmt.Errorf("decoding translator segments: %w", err)
	}
	var sb strings.Builder
	for _, raw := range segments {
		var seg []json.RawMessage
		if err := json.Unmarshal(raw, &seg); err != nil || len(seg) == 0 {
			continue
		}
		var part string
		if err := json.Unmarshal(seg[0], &part); err != nil {
			continue
		}
		sb.WriteString(part)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("translator response had no text")
	}
	return sb.String(), nil
}

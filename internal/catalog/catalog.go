// Package catalog is the service layer behind the HTTP and RPC surfaces.
// It runs each operation against the vocabulary and keeps the collaborators
// (search cache, change feed, settings, metrics, analytics) in step with
// every mutation.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/categorize"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/searchcache"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/settings"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/vocabulary"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/tracing"
)

// Translator is the optional translation provider.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// SettingsStore holds the persisted mapping rules and bucket order.
type SettingsStore interface {
	Current() settings.Document
	Save(doc settings.Document) error
	PruneCategory(category string) (bool, error)
}

// ChangePublisher forwards local mutations to other instances.
type ChangePublisher interface {
	Publish(ch vocabulary.Change)
}

// EventTracker receives analytics events.
type EventTracker interface {
	Track(event any)
}

// Delete kinds accepted by DeleteItem.
const (
	KindTag         = "tag"
	KindSubcategory = "subcategory"
	KindCategory    = "category"
)

// Options wires a Service. Store, Settings and Metrics are required.
type Options struct {
	Store    *vocabulary.Store
	Settings SettingsStore
	Metrics  *metrics.Metrics
	Search   config.SearchConfig

	DefaultCategory string

	// Optional collaborators.
	Cache      *searchcache.Cache
	Translator Translator
	Publisher  ChangePublisher
	Tracker    EventTracker
}

// Service is the entry point for vocabulary reads, categorization, edits
// and settings. A persisted edit also flushes the search cache and is
// published on the change feed. Safe for concurrent use.
type Service struct {
	store      *vocabulary.Store
	engine     *categorize.Engine
	settings   SettingsStore
	metrics    *metrics.Metrics
	search     config.SearchConfig
	cache      *searchcache.Cache
	translator Translator
	publisher  ChangePublisher
	tracker    EventTracker
	logger     *slog.Logger
}

// New builds a Service from opts. Nil optional collaborators disable the
// matching feature.
func New(opts Options) *Service {
	s := &Service{
		store:      opts.Store,
		engine:     categorize.NewEngine(opts.Store, opts.DefaultCategory),
		settings:   opts.Settings,
		metrics:    opts.Metrics,
		search:     opts.Search,
		cache:      opts.Cache,
		translator: opts.Translator,
		publisher:  opts.Publisher,
		tracker:    opts.Tracker,
		logger:     slog.Default().With("component", "catalog"),
	}
	s.metrics.VocabularySize.Set(float64(s.store.Len()))
	return s
}

// Structure returns category -> sorted subcategories; empty reports an
// empty vocabulary.
func (s *Service) Structure() (structure map[string][]string, empty bool) {
	return s.store.Structure(), s.store.Len() == 0
}

// TagsFor lists a subcategory's tags, capped at the browse limit.
func (s *Service) TagsFor(category, subcategory string, limit int) ([]vocabulary.Entry, bool) {
	if limit <= 0 || limit > s.search.BrowseLimit {
		limit = s.search.BrowseLimit
	}
	return s.store.TagsFor(category, subcategory, limit)
}

// Lookup resolves one term.
func (s *Service) Lookup(term string) (vocabulary.Record, bool) {
	return s.store.Lookup(term)
}

// Search runs a substring search. limit defaults to the configured default
// and is capped at the configured maximum.
func (s *Service) Search(ctx context.Context, query string, limit int) []vocabulary.Match {
	_, span := tracing.StartChildSpan(ctx, "search")
	defer span.End()

	if limit <= 0 {
		limit = s.search.DefaultLimit
	}
	if limit > s.search.MaxResults {
		limit = s.search.MaxResults
	}

	var (
		matches []vocabulary.Match
		cached  bool
	)
	compute := func() []vocabulary.Match { return s.store.Search(query, limit) }
	if s.cache != nil && strings.TrimSpace(query) != "" {
		matches, cached = s.cache.GetOrCompute(ctx, query, limit, s.store.Generation(), compute)
	} else {
		matches = compute()
	}

	resultType := "results"
	if len(matches) == 0 {
		resultType = "zero_result"
	}
	s.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	span.SetAttr("returned", len(matches))
	span.SetAttr("cache_hit", cached)
	s.track(analytics.SearchEvent{
		Type:      analytics.EventSearch,
		Query:     query,
		Returned:  len(matches),
		CacheHit:  cached,
		Timestamp: time.Now(),
		RequestID: logger.RequestID(ctx),
	})
	return matches
}

// Categorize buckets the request's terms. An empty default category falls
// back to the configured one.
func (s *Service) Categorize(ctx context.Context, req categorize.Request) *categorize.Result {
	_, span := tracing.StartChildSpan(ctx, "categorize")
	defer span.End()

	start := time.Now()
	res, stats := s.engine.Categorize(req)
	elapsed := time.Since(start)

	s.metrics.CategorizeTotal.Inc()
	s.metrics.CategorizeLatency.Observe(elapsed.Seconds())
	s.metrics.TermsCategorized.WithLabelValues("hit").Add(float64(stats.Hits))
	s.metrics.TermsCategorized.WithLabelValues("miss").Add(float64(stats.Misses))
	span.SetAttr("tokens", stats.Tokens)
	span.SetAttr("hits", stats.Hits)

	s.track(analytics.CategorizeEvent{
		Type:      analytics.EventCategorize,
		Tokens:    stats.Tokens,
		Hits:      stats.Hits,
		Misses:    stats.Misses,
		Unknown:   stats.Unknown,
		Buckets:   res.Len(),
		LatencyMs: float64(elapsed.Microseconds()) / 1000,
		Timestamp: time.Now(),
		RequestID: logger.RequestID(ctx),
	})
	return res
}

// SaveTag validates and upserts a record. On a PersistenceError the record
// is live in memory and is returned alongside the error.
func (s *Service) SaveTag(ctx context.Context, tag, translation, category, subcategory string) (vocabulary.Record, error) {
	ctx, span := tracing.StartChildSpan(ctx, "save_tag")
	defer span.End()

	rec, err := s.store.Upsert(ctx, tag, translation, category, subcategory)
	if errors.Is(err, apperrors.ErrValidation) {
		s.metrics.MutationsTotal.WithLabelValues("save", "invalid").Inc()
		return vocabulary.Record{}, err
	}
	s.afterMutation(ctx, "save", 1, err, vocabulary.Change{Kind: vocabulary.ChangeTagSaved, Record: rec})
	if err == nil {
		logger.FromContext(ctx).Info("tag saved", "tag", rec.Tag, "category", rec.Category, "subcategory", rec.Subcategory)
	}
	return rec, err
}

// DeleteItem removes records by tag, subcategory (within parent) or
// category and returns how many were removed. Zero matches is not an error.
// Deleting a category also prunes it from the saved bucket order; that
// step is best-effort and never fails the delete.
func (s *Service) DeleteItem(ctx context.Context, kind, target, parent string) (int, error) {
	ctx, span := tracing.StartChildSpan(ctx, "delete_"+kind)
	defer span.End()

	if strings.TrimSpace(target) == "" {
		s.metrics.MutationsTotal.WithLabelValues("delete", "invalid").Inc()
		return 0, &vocabulary.ValidationError{Fields: map[string]string{"target": "target is required"}}
	}

	var (
		n      int
		err    error
		change vocabulary.Change
	)
	switch kind {
	case KindTag:
		n, err = s.store.DeleteByTag(ctx, target)
		change = vocabulary.Change{Kind: vocabulary.ChangeTagDeleted, Target: strings.TrimSpace(target)}
	case KindSubcategory:
		n, err = s.store.DeleteBySubcategory(ctx, target, parent)
		change = vocabulary.Change{Kind: vocabulary.ChangeSubcategoryDeleted, Target: target, Parent: parent}
	case KindCategory:
		n, err = s.store.DeleteByCategory(ctx, target)
		change = vocabulary.Change{Kind: vocabulary.ChangeCategoryDeleted, Target: target}
	default:
		s.metrics.MutationsTotal.WithLabelValues("delete", "invalid").Inc()
		return 0, &vocabulary.ValidationError{Fields: map[string]string{
			"kind": fmt.Sprintf("unknown kind %q (want tag, subcategory or category)", kind),
		}}
	}
	span.SetAttr("removed", n)

	s.afterMutation(ctx, "delete_"+kind, n, err, change)
	if kind == KindCategory && n > 0 {
		s.pruneOrder(ctx, target)
	}
	logger.FromContext(ctx).Info("vocabulary delete", "kind", kind, "target", target, "parent", parent, "removed", n)
	return n, err
}

// ApplyRemote applies a change made and persisted by another instance.
func (s *Service) ApplyRemote(ctx context.Context, ch vocabulary.Change) error {
	n, err := s.store.Apply(ch)
	if err != nil {
		return err
	}
	if n > 0 {
		s.metrics.VocabularySize.Set(float64(s.store.Len()))
		s.invalidateCache(ctx)
	}
	return nil
}

// Settings returns the saved mapping rules and bucket order.
func (s *Service) Settings() settings.Document {
	return s.settings.Current()
}

func (s *Service) SaveSettings(doc settings.Document) error {
	return s.settings.Save(doc)
}

// Translate calls the translation provider if one is configured.
func (s *Service) Translate(ctx context.Context, text string) (string, error) {
	if s.translator == nil {
		return "", fmt.Errorf("no translator configured: %w", apperrors.ErrUnavailable)
	}
	return s.translator.Translate(ctx, text)
}

// afterMutation runs once the store has applied a mutation, whether or not
// the snapshot write succeeded: memory changed either way.
func (s *Service) afterMutation(ctx context.Context, op string, n int, err error, ch vocabulary.Change) {
	status := "ok"
	if err != nil {
		status = "persist_failed"
		s.metrics.PersistFailures.Inc()
		logger.FromContext(ctx).Error("vocabulary changed in memory but snapshot write failed", "op", op, "error", err)
	}
	s.metrics.MutationsTotal.WithLabelValues(op, status).Inc()
	if n == 0 {
		return
	}
	s.metrics.VocabularySize.Set(float64(s.store.Len()))
	s.invalidateCache(ctx)
	if s.publisher != nil {
		s.publisher.Publish(ch)
	}
}

func (s *Service) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(context.WithoutCancel(ctx)); err != nil {
		s.logger.Warn("search cache flush failed", "error", err)
	}
}

func (s *Service) pruneOrder(ctx context.Context, category string) {
	if s.settings == nil {
		return
	}
	if _, err := s.settings.PruneCategory(category); err != nil {
		logger.FromContext(ctx).Warn("could not prune deleted category from bucket order",
			"category", category, "error", err)
	}
}

func (s *Service) track(event any) {
	if s.tracker != nil {
		s.tracker.Track(event)
	}
}

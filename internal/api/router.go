package api

import (
	"net/http"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/ratelimit"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/metrics"
	pkgmw "github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/tracing"
)

// RouterConfig carries everything New needs besides the handler itself.
type RouterConfig struct {
	Metrics        *metrics.Metrics
	Limiter        *ratelimit.Limiter
	AllowOrigins   []string
	RequestTimeout time.Duration
	Tracing        bool

	Stats http.HandlerFunc
	Live  http.HandlerFunc
	Ready http.HandlerFunc
}

// NewRouter builds the HTTP handler with all routes and middleware.
//
// Route table:
//
//	GET    /api/v1/structure      → category tree
//	POST   /api/v1/tags/browse    → tags under one category/subcategory
//	POST   /api/v1/tags/search    → substring search
//	POST   /api/v1/categorize     → bucket a tag string
//	POST   /api/v1/tags           → save a tag           (rate limited)
//	POST   /api/v1/tags/delete    → delete tag/sub/cat   (rate limited)
//	GET    /api/v1/config         → mapping rules + order
//	PUT    /api/v1/config         → save mapping + order (rate limited)
//	POST   /api/v1/translate      → translate text       (rate limited)
//	GET    /api/v1/stats          → analytics
//	GET    /health/live, /health/ready
//
// Middleware chain (outermost first):
//
//	RequestID → Tracing → Metrics → CORS → Timeout → mux
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	limited := RateLimit(cfg.Limiter)

	mux.HandleFunc("GET /api/v1/structure", h.Structure)
	mux.HandleFunc("POST /api/v1/tags/browse", h.Browse)
	mux.HandleFunc("POST /api/v1/tags/search", h.Search)
	mux.HandleFunc("POST /api/v1/categorize", h.Categorize)
	mux.Handle("POST /api/v1/tags", limited(http.HandlerFunc(h.SaveTag)))
	mux.Handle("POST /api/v1/tags/delete", limited(http.HandlerFunc(h.DeleteItem)))
	mux.HandleFunc("GET /api/v1/config", h.GetConfig)
	mux.Handle("PUT /api/v1/config", limited(http.HandlerFunc(h.PutConfig)))
	mux.Handle("POST /api/v1/translate", limited(http.HandlerFunc(h.Translate)))

	if cfg.Stats != nil {
		mux.HandleFunc("GET /api/v1/stats", cfg.Stats)
	}
	if cfg.Live != nil {
		mux.HandleFunc("GET /health/live", cfg.Live)
	}
	if cfg.Ready != nil {
		mux.HandleFunc("GET /health/ready", cfg.Ready)
	}

	var chain http.Handler = mux
	if cfg.RequestTimeout > 0 {
		chain = pkgmw.Timeout(cfg.RequestTimeout)(chain)
	}
	chain = CORS(DefaultCORSConfig(cfg.AllowOrigins))(chain)
	if cfg.Metrics != nil {
		chain = pkgmw.Metrics(cfg.Metrics)(chain)
	}
	chain = tracing.Middleware(cfg.Tracing)(chain)
	chain = pkgmw.RequestID(chain)

	return chain
}

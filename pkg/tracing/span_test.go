package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChildSpansAttachToParent(t *testing.T) {
	ctx, root := StartSpan(context.Background(), "request", "trace-1")
	_, child := StartChildSpan(ctx, "categorize")
	child.SetAttr("tokens", 3)
	child.End()
	root.End()

	require.Len(t, root.Children, 1)
	assert.Equal(t, "trace-1", root.Children[0].TraceID)
	assert.Equal(t, 3, root.Children[0].Attrs["tokens"])
}

func TestChildSpanWithoutParentIsNil(t *testing.T) {
	ctx := context.Background()
	got, span := StartChildSpan(ctx, "orphan")
	assert.Nil(t, span)
	assert.Equal(t, ctx, got)
	span.SetAttr("k", "v")
	span.End()
}

func TestMiddlewareInstallsRootSpan(t *testing.T) {
	var seen *Span
	h := Middleware(true)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SpanFromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/structure", nil))
	require.NotNil(t, seen)
	assert.Equal(t, "GET /api/v1/structure", seen.Name)
	assert.False(t, seen.EndTime.IsZero())

	seen = nil
	Middleware(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SpanFromContext(r.Context())
	})).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Nil(t, seen)
}

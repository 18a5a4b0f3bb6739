// Package api exposes the catalog service over HTTP with JSON bodies.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/categorize"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/settings"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/vocabulary"
	apperrors "github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/proto"
)

const maxBodyBytes = 4 << 20

// Handler serves the JSON endpoints on top of a catalog.Service.
type Handler struct {
	svc    *catalog.Service
	logger *slog.Logger
}

// NewHandler creates a Handler for svc.
func NewHandler(svc *catalog.Service) *Handler {
	return &Handler{
		svc:    svc,
		logger: slog.Default().With("component", "api"),
	}
}

type browseRequest struct {
	Category    string `json:"cat"`
	Subcategory string `json:"sub"`
	Limit       int    `json:"limit"`
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type categorizeRequest struct {
	Tags            string             `json:"tags"`
	Deduplicate     bool               `json:"deduplicate"`
	Mapping         proto.MappingRules `json:"mapping"`
	Order           []string           `json:"order"`
	DefaultCategory string             `json:"default_category"`
}

type saveTagRequest struct {
	Tag         string `json:"tag"`
	Translation string `json:"trans"`
	Category    string `json:"cat"`
	Subcategory string `json:"sub"`
}

type deleteRequest struct {
	Kind   string `json:"kind"`
	Target string `json:"target"`
	Parent string `json:"parent"`
}

type translateRequest struct {
	Text string `json:"text"`
}

func (h *Handler) Structure(w http.ResponseWriter, r *http.Request) {
	structure, empty := h.svc.Structure()
	status := "success"
	if empty {
		status = "empty"
	}
	writeJSON(w, http.StatusOK, map[string]any{"structure": structure, "status": status})
}

func (h *Handler) Browse(w http.ResponseWriter, r *http.Request) {
	var req browseRequest
	if !h.decode(w, r, &req) {
		return
	}
	tags, truncated := h.svc.TagsFor(req.Category, req.Subcategory, req.Limit)
	writeJSON(w, http.StatusOK, map[string]any{"tags": tags, "truncated": truncated})
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Limit < 0 {
		h.writeError(w, r, fmt.Errorf("limit must not be negative: %w", apperrors.ErrInvalidInput))
		return
	}
	results := h.svc.Search(r.Context(), req.Query, req.Limit)
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (h *Handler) Categorize(w http.ResponseWriter, r *http.Request) {
	var req categorizeRequest
	if !h.decode(w, r, &req) {
		return
	}
	res := h.svc.Categorize(r.Context(), categorize.Request{
		Tags:            req.Tags,
		Deduplicate:     req.Deduplicate,
		Mapping:         req.Mapping,
		Order:           req.Order,
		DefaultCategory: req.DefaultCategory,
	})
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "result_struct": res})
}

func (h *Handler) SaveTag(w http.ResponseWriter, r *http.Request) {
	var req saveTagRequest
	if !h.decode(w, r, &req) {
		return
	}
	rec, err := h.svc.SaveTag(r.Context(), req.Tag, req.Translation, req.Category, req.Subcategory)
	if errors.Is(err, apperrors.ErrPersistence) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":     err.Error(),
			"persisted": false,
			"record":    rec,
		})
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "persisted": true, "record": rec})
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if !h.decode(w, r, &req) {
		return
	}
	n, err := h.svc.DeleteItem(r.Context(), req.Kind, req.Target, req.Parent)
	if errors.Is(err, apperrors.ErrPersistence) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":     err.Error(),
			"persisted": false,
			"deleted":   n,
		})
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "persisted": true, "deleted": n})
}

func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	doc := h.svc.Settings()
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "mapping": doc.Mapping, "order": doc.Order})
}

func (h *Handler) PutConfig(w http.ResponseWriter, r *http.Request) {
	var doc settings.Document
	if !h.decode(w, r, &doc) {
		return
	}
	if err := h.svc.SaveSettings(doc); err != nil {
		h.writeError(w, r, err)
		return
	}
	saved := h.svc.Settings()
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "mapping": saved.Mapping, "order": saved.Order})
}

func (h *Handler) Translate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if !h.decode(w, r, &req) {
		return
	}
	out, err := h.svc.Translate(r.Context(), req.Text)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"trans": out})
}

// decode reads a JSON body into v and answers 400 itself on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		msg := "invalid JSON body"
		if errors.Is(err, io.EOF) {
			msg = "request body is required"
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request body too large"})
			return false
		}
		logger.FromContext(r.Context()).Debug("rejected request body", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return false
	}
	return true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatusCode(err)
	body := map[string]any{"error": err.Error()}
	var verr *vocabulary.ValidationError
	if errors.As(err, &verr) {
		body["fields"] = verr.Fields
	}
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Default().Error("failed to write response", "error", err)
	}
}

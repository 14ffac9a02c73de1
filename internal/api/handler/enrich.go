package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iconidentify/vidcard/internal/domain"
)

// Enricher runs synchronous enrichment passes.
type Enricher interface {
	EnrichHTML(ctx context.Context, content string, settings domain.Settings, mode domain.EnrichMode) (string, domain.EnrichReport)
	EnrichDocument(ctx context.Context, content string, settings domain.Settings) (string, domain.EnrichReport, error)
}

// SettingsReader supplies the settings a pass runs with.
type SettingsReader interface {
	Load(ctx context.Context) (domain.Settings, error)
}

// EnrichHandler handles synchronous enrichment requests.
type EnrichHandler struct {
	enricher Enricher
	settings SettingsReader
	logger   *slog.Logger
}

// NewEnrichHandler creates a new enrichment handler.
func NewEnrichHandler(enricher Enricher, settings SettingsReader, logger *slog.Logger) *EnrichHandler {
	return &EnrichHandler{
		enricher: enricher,
		settings: settings,
		logger:   logger,
	}
}

// EnrichRequest is the JSON request body for an enrichment pass.
type EnrichRequest struct {
	HTML string `json:"html"`
	Mode string `json:"mode,omitempty"`
	// Document parses HTML as a full document and replaces anchors in the tree.
	// Document passes are structural; combining it with textual mode is rejected.
	Document bool `json:"document,omitempty"`
}

// EnrichResponse is the JSON response of an enrichment pass.
type EnrichResponse struct {
	HTML   string              `json:"html"`
	Report domain.EnrichReport `json:"report"`
}

// Enrich handles POST /api/v1/enrich
func (h *EnrichHandler) Enrich(w http.ResponseWriter, r *http.Request) {
	var req EnrichRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	mode, err := domain.ParseEnrichMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, "mode must be structural or textual")
		return
	}
	if req.Document && mode == domain.ModeTextual {
		writeError(w, http.StatusBadRequest, domain.ErrDocumentMode.Error())
		return
	}

	settings, err := h.settings.Load(r.Context())
	if err != nil {
		h.logger.Error("load settings for pass", "error", err)
		writeError(w, http.StatusServiceUnavailable, domain.ErrSettingsStore.Error())
		return
	}

	var (
		out    string
		report domain.EnrichReport
	)
	if req.Document {
		out, report, err = h.enricher.EnrichDocument(r.Context(), req.HTML, settings)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			writeError(w, http.StatusBadRequest, "invalid HTML document")
			return
		}
	} else {
		out, report = h.enricher.EnrichHTML(r.Context(), req.HTML, settings, mode)
	}

	writeJSON(w, http.StatusOK, EnrichResponse{HTML: out, Report: report})
}

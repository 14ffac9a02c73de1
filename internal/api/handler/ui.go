package handler

import (
	"net/http"

	"github.com/iconidentify/vidcard/pkg/ui"
)

// UIHandler serves the web UI.
type UIHandler struct{}

// NewUIHandler creates a new UI handler.
func NewUIHandler() *UIHandler {
	return &UIHandler{}
}

// Index serves the preview page.
func (h *UIHandler) Index(w http.ResponseWriter, r *http.Request) {
	servePage(w, ui.IndexHTML)
}

// Settings serves the settings page.
func (h *UIHandler) Settings(w http.ResponseWriter, r *http.Request) {
	servePage(w, ui.SettingsHTML)
}

func servePage(w http.ResponseWriter, page []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(page)
}

package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/certstudy/backend/internal/domain/history"
)

// ── Request / Response types ────────────────────────────────────────────────

type ExportData struct {
	Version    string            `json:"version"`
	ExportedAt string            `json:"exported_at"`
	History    *history.Document `json:"history"`
}

type ImportResult struct {
	QuestionsImported int `json:"questions_imported"`
	LeaderboardRows   int `json:"leaderboard_rows"`
}

// ── Handlers ────────────────────────────────────────────────────────────────

// GET /export
func (h *Handler) exportHistory(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	exportData := ExportData{
		Version:    "1.0",
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		History:    h.state.ExportHistory(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=certstudy-history.json")
	json.NewEncoder(w).Encode(exportData)
}

// POST /import
//
// Accepts either the wrapped export shape or a bare history document.
// The document is validated before it replaces anything; a rejected
// import leaves the current history untouched.
func (h *Handler) importHistory(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "could not read body")
		return
	}

	var importData ExportData
	if err := json.Unmarshal(body, &importData); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}

	doc := importData.History
	if doc == nil {
		doc = &history.Document{}
		if err := json.Unmarshal(body, doc); err != nil {
			respondError(w, http.StatusBadRequest, "invalid json")
			return
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.state.ImportHistory(r.Context(), doc); err != nil {
		h.logger.Error("history import rejected", "error", err)
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, ImportResult{
		QuestionsImported: len(doc.Questions),
		LeaderboardRows:   len(doc.Leaderboard),
	})
}

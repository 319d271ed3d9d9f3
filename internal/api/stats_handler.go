package api

import (
	"net/http"
)

// ── Request / Response types ────────────────────────────────────────────────

type CategoriesResponse struct {
	Categories     []string `json:"categories"`
	TotalQuestions int      `json:"total_questions"`
}

type RemoveReviewRequest struct {
	QuestionText string `json:"question_text"`
}

// ── Handlers ────────────────────────────────────────────────────────────────

// GET /categories
func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	respondJSON(w, http.StatusOK, CategoriesResponse{
		Categories:     h.state.Categories(),
		TotalQuestions: h.state.QuestionCount(""),
	})
}

// GET /leaderboard
func (h *Handler) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	respondJSON(w, http.StatusOK, map[string]any{
		"leaderboard": h.stats.Leaderboard(),
	})
}

// GET /statistics
func (h *Handler) getStatistics(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	respondJSON(w, http.StatusOK, h.stats.DetailedStatistics())
}

// GET /achievements
func (h *Handler) getAchievements(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	respondJSON(w, http.StatusOK, h.stats.Achievements())
}

// GET /review
func (h *Handler) listReviewQuestions(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	respondJSON(w, http.StatusOK, map[string]any{
		"questions": h.stats.ReviewQuestions(),
	})
}

// DELETE /review
func (h *Handler) removeReviewQuestion(w http.ResponseWriter, r *http.Request) {
	var req RemoveReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.QuestionText == "" {
		respondError(w, http.StatusBadRequest, "question_text is required")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	removed, err := h.stats.RemoveFromReview(r.Context(), req.QuestionText)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save history")
		return
	}
	if !removed {
		respondError(w, http.StatusNotFound, "question not in review list")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /statistics/clear
func (h *Handler) clearStatistics(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.stats.ClearStatistics(r.Context()); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to clear statistics")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"cleared": true})
}

// POST /reset
//
// Wipes history and achievements both. Irreversible.
func (h *Handler) resetAll(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.stats.ResetAll(r.Context()); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to reset data")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"reset": true})
}

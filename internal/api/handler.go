package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/certstudy/backend/internal/game"
	"github.com/certstudy/backend/internal/service"
)

// Handler holds all dependencies needed by HTTP handlers.
// Instead of relying on package-level globals, every handler method
// receives its dependencies through this struct.
//
// The application runs one quiz session at a time, so a single mutex
// serializes every request that touches the session or the underlying
// game state.
type Handler struct {
	mu     sync.Mutex
	state  *game.State
	quiz   *service.QuizService
	stats  *service.StatsService
	logger *slog.Logger
}

// NewHandler creates a Handler with the given dependencies.
func NewHandler(state *game.State, quiz *service.QuizService, stats *service.StatsService, logger *slog.Logger) *Handler {
	return &Handler{
		state:  state,
		quiz:   quiz,
		stats:  stats,
		logger: logger,
	}
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondError writes a JSON error body with the given status code.
func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON decodes the request body into v. Writes a 400 and returns
// false on malformed input (caller should return).
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

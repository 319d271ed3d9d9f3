package api

import (
	"net/http"
)

// RegisterRoutes wires every handler onto the mux using method-qualified
// patterns.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	// Quiz session
	mux.HandleFunc("POST /quiz/start", h.startQuiz)
	mux.HandleFunc("GET /quiz/question", h.getQuestion)
	mux.HandleFunc("POST /quiz/answer", h.submitAnswer)
	mux.HandleFunc("POST /quiz/skip", h.skipQuestion)
	mux.HandleFunc("POST /quiz/end", h.endQuiz)
	mux.HandleFunc("POST /quiz/force-end", h.forceEndQuiz)
	mux.HandleFunc("GET /quiz/status", h.quizStatus)
	mux.HandleFunc("GET /quiz/verify-results", h.verifyResults)
	mux.HandleFunc("GET /quiz/quick-fire", h.quickFireStatus)
	mux.HandleFunc("POST /quiz/break-acknowledged", h.acknowledgeBreak)

	// Daily challenge
	mux.HandleFunc("GET /daily-challenge", h.dailyChallengeStatus)

	// Questions and statistics
	mux.HandleFunc("GET /categories", h.listCategories)
	mux.HandleFunc("GET /leaderboard", h.getLeaderboard)
	mux.HandleFunc("GET /statistics", h.getStatistics)
	mux.HandleFunc("GET /achievements", h.getAchievements)
	mux.HandleFunc("GET /review", h.listReviewQuestions)
	mux.HandleFunc("DELETE /review", h.removeReviewQuestion)
	mux.HandleFunc("POST /statistics/clear", h.clearStatistics)
	mux.HandleFunc("POST /reset", h.resetAll)

	// History transfer
	mux.HandleFunc("GET /export", h.exportHistory)
	mux.HandleFunc("POST /import", h.importHistory)
}

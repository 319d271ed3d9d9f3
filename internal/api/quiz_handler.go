package api

import (
	"errors"
	"net/http"

	"github.com/certstudy/backend/internal/game"
	"github.com/certstudy/backend/internal/service"
)

// ── Request / Response types ────────────────────────────────────────────────

type StartQuizRequest struct {
	Mode     string `json:"mode"`
	Category string `json:"category,omitempty"`
}

// QuestionResponse carries a served question. QuestionData is the
// positional payload the front ends consume:
// [text, options, correctIndex, category, explanation].
type QuestionResponse struct {
	QuizComplete   bool                     `json:"quiz_complete"`
	QuestionData   []any                    `json:"question_data,omitempty"`
	OriginalIndex  int                      `json:"original_index"`
	QuestionNumber int                      `json:"question_number"`
	TotalQuestions int                      `json:"total_questions"`
	Streak         int                      `json:"streak"`
	DailyChallenge bool                     `json:"is_daily_challenge,omitempty"`
	BreakReminder  bool                     `json:"break_reminder"`
	QuickFire      *QuickFireStatusResponse `json:"quick_fire,omitempty"`
}

type SubmitAnswerRequest struct {
	AnswerIndex int `json:"answer_index"`
}

type QuickFireStatusResponse struct {
	Active             bool    `json:"active"`
	ShouldContinue     bool    `json:"should_continue"`
	ElapsedSeconds     float64 `json:"elapsed_seconds"`
	RemainingSeconds   float64 `json:"remaining_seconds"`
	QuestionsAnswered  int     `json:"questions_answered"`
	QuestionsRemaining int     `json:"questions_remaining"`
}

// ── Handlers ────────────────────────────────────────────────────────────────

// POST /quiz/start
func (h *Handler) startQuiz(w http.ResponseWriter, r *http.Request) {
	var req StartQuizRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	mode, err := service.ParseMode(req.Mode)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	info := h.quiz.StartSession(mode, req.Category)
	respondJSON(w, http.StatusCreated, info)
}

// GET /quiz/question
func (h *Handler) getQuestion(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	served, err := h.quiz.NextQuestion()
	if errors.Is(err, service.ErrNoActiveSession) {
		respondError(w, http.StatusConflict, "no active session")
		return
	}
	if served == nil {
		respondJSON(w, http.StatusOK, QuestionResponse{QuizComplete: true})
		return
	}

	resp := QuestionResponse{
		QuestionData:   served.Question.Legacy(),
		OriginalIndex:  served.OriginalIndex,
		QuestionNumber: served.Number,
		TotalQuestions: h.quiz.Status().TargetQuestions,
		Streak:         served.Streak,
		DailyChallenge: served.IsDailyChallenge,
		BreakReminder:  h.quiz.BreakDue(),
	}
	if status, _ := h.state.CheckQuickFireStatus(); status.Active {
		resp.QuickFire = quickFireResponse(status)
	}
	respondJSON(w, http.StatusOK, resp)
}

// POST /quiz/answer
func (h *Handler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	var req SubmitAnswerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	served, ok := h.quiz.CurrentQuestion()
	if !ok {
		respondError(w, http.StatusConflict, "no question to answer")
		return
	}

	result, err := h.quiz.SubmitAnswer(served.Question, req.AnswerIndex, served.OriginalIndex)
	switch {
	case errors.Is(err, service.ErrNoActiveSession):
		respondError(w, http.StatusConflict, "no active session")
		return
	case errors.Is(err, service.ErrInvalidAnswer):
		respondError(w, http.StatusBadRequest, "answer index out of range")
		return
	case err != nil:
		h.logger.Error("submit answer failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// POST /quiz/skip
func (h *Handler) skipQuestion(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	result, err := h.quiz.SkipQuestion()
	if errors.Is(err, service.ErrNoActiveSession) {
		respondError(w, http.StatusConflict, "no active session")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// POST /quiz/end
func (h *Handler) endQuiz(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	summary, err := h.quiz.EndSession(r.Context())
	if errors.Is(err, service.ErrNoActiveSession) {
		respondError(w, http.StatusConflict, "no active session")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// POST /quiz/force-end
//
// Always succeeds: recovers the front end from any wedged state.
func (h *Handler) forceEndQuiz(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	respondJSON(w, http.StatusOK, h.quiz.ForceEndSession())
}

// GET /quiz/status
func (h *Handler) quizStatus(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	respondJSON(w, http.StatusOK, h.quiz.Status())
}

// GET /quiz/verify-results
func (h *Handler) verifyResults(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	results, err := h.quiz.VerifyResults()
	if err != nil {
		respondError(w, http.StatusConflict, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, results)
}

// GET /quiz/quick-fire
func (h *Handler) quickFireStatus(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	status, result := h.state.CheckQuickFireStatus()
	resp := map[string]any{"status": quickFireResponse(status)}
	if result != nil {
		resp["result"] = map[string]any{
			"completed":          result.Completed,
			"time_up":            result.TimeUp,
			"questions_answered": result.QuestionsAnswered,
			"target_questions":   result.TargetQuestions,
			"badge_earned":       result.BadgeEarned,
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

// POST /quiz/break-acknowledged
func (h *Handler) acknowledgeBreak(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.quiz.ResetBreakCounter()
	respondJSON(w, http.StatusOK, map[string]bool{"acknowledged": true})
}

// GET /daily-challenge
func (h *Handler) dailyChallengeStatus(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	respondJSON(w, http.StatusOK, map[string]bool{
		"available": h.state.DailyChallengeAvailable(),
	})
}

func quickFireResponse(s game.QuickFireStatus) *QuickFireStatusResponse {
	return &QuickFireStatusResponse{
		Active:             s.Active,
		ShouldContinue:     s.ShouldContinue,
		ElapsedSeconds:     s.Elapsed.Seconds(),
		RemainingSeconds:   s.TimeRemaining.Seconds(),
		QuestionsAnswered:  s.QuestionsAnswered,
		QuestionsRemaining: s.QuestionsRemaining,
	}
}

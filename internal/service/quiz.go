package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/certstudy/backend/internal/domain/achievements"
	"github.com/certstudy/backend/internal/domain/question"
	"github.com/certstudy/backend/internal/game"
	"github.com/certstudy/backend/internal/infrastructure/config"
)

// QuizMode selects the session policy.
type QuizMode string

const (
	ModeStandard       QuizMode = "standard"
	ModeVerify         QuizMode = "verify"
	ModeQuickFire      QuizMode = "quick_fire"
	ModeMiniQuiz       QuizMode = "mini_quiz"
	ModeDailyChallenge QuizMode = "daily_challenge"
	ModePopQuiz        QuizMode = "pop_quiz"
)

// ParseMode validates a mode string from the outside.
func ParseMode(s string) (QuizMode, error) {
	switch m := QuizMode(s); m {
	case ModeStandard, ModeVerify, ModeQuickFire, ModeMiniQuiz, ModeDailyChallenge, ModePopQuiz:
		return m, nil
	case "":
		return ModeStandard, nil
	default:
		return "", fmt.Errorf("unknown quiz mode %q", s)
	}
}

var (
	// ErrNoActiveSession reports state misuse: answering or ending with no
	// session running.
	ErrNoActiveSession = errors.New("no active session")
	// ErrInvalidAnswer reports an answer index outside the option range.
	ErrInvalidAnswer = errors.New("invalid answer index")
)

// ServedQuestion is a question handed to the front end, cached until it
// is answered or skipped so a redisplay does not advance the session.
type ServedQuestion struct {
	Question         question.Question
	OriginalIndex    int
	Number           int
	Streak           int
	IsDailyChallenge bool
}

// VerifyAnswer is one recorded answer in verify mode.
type VerifyAnswer struct {
	Question      question.Question `json:"question"`
	QuestionIndex int               `json:"question_index"`
	AnswerIndex   int               `json:"answer_index"`
	Correct       bool              `json:"correct"`
}

type session struct {
	id            string
	mode          QuizMode
	category      string
	active        bool
	score         int
	total         int
	streak        int
	target        int
	sinceBreak    int
	current       *ServedQuestion // nil = no pending question
	verifyAnswers []VerifyAnswer
}

// QuizService drives one interactive study session at a time on top of
// the game state. It is the only state machine in the system:
// Idle -> Active -> Complete -> Idle.
type QuizService struct {
	state    *game.State
	settings config.Settings
	logger   *slog.Logger
	session  session
}

func NewQuizService(state *game.State, settings config.Settings, logger *slog.Logger) *QuizService {
	return &QuizService{
		state:    state,
		settings: settings,
		logger:   logger,
	}
}

// ── Session lifecycle ───────────────────────────────────────────────────────

// SessionInfo describes a freshly started session.
type SessionInfo struct {
	ID              string   `json:"id"`
	Mode            QuizMode `json:"mode"`
	Category        string   `json:"category,omitempty"`
	TotalQuestions  int      `json:"total_questions"`
	QuickFireActive bool     `json:"quick_fire_active"`
}

// StartSession resets all session state and begins a new session in the
// given mode. Starting over an active session discards it.
func (qs *QuizService) StartSession(mode QuizMode, category string) SessionInfo {
	qs.state.ResetSession()

	qs.session = session{
		id:       uuid.NewString(),
		mode:     mode,
		category: category,
		active:   true,
	}

	pool := qs.state.QuestionCount(category)
	switch mode {
	case ModeQuickFire:
		qs.state.StartQuickFireMode()
		qs.session.target = qs.settings.QuickFireQuestionTarget
	case ModeMiniQuiz:
		qs.session.target = qs.settings.MiniQuizQuestionTarget
		if pool < qs.session.target {
			qs.session.target = pool
		}
	case ModeDailyChallenge, ModePopQuiz:
		qs.session.target = 1
	default:
		qs.session.target = pool
	}

	qs.logger.Info("session started", "mode", mode, "category", category, "target", qs.session.target)

	return SessionInfo{
		ID:              qs.session.id,
		Mode:            mode,
		Category:        category,
		TotalQuestions:  qs.session.target,
		QuickFireActive: qs.state.QuickFireActive(),
	}
}

// Active reports whether a session is running.
func (qs *QuizService) Active() bool { return qs.session.active }

// CurrentQuestion returns the pending question, if any.
func (qs *QuizService) CurrentQuestion() (*ServedQuestion, bool) {
	return qs.session.current, qs.session.current != nil
}

// NextQuestion serves the next question for the session. A pending
// unanswered question is returned again without advancing. Returns
// (nil, nil) when the session is complete or the pool is exhausted — the
// caller treats that as session end, not as a failure.
func (qs *QuizService) NextQuestion() (*ServedQuestion, error) {
	if !qs.session.active {
		return nil, ErrNoActiveSession
	}

	if qs.session.current != nil {
		return qs.session.current, nil
	}

	if qs.isSessionComplete() {
		return nil, nil
	}

	// Lazily enforce the quick-fire ceilings. The session stays active so
	// EndSession can still finalize it.
	if qs.state.QuickFireActive() {
		if status, _ := qs.state.CheckQuickFireStatus(); !status.ShouldContinue {
			return nil, nil
		}
	}

	var (
		q   question.Question
		idx int
	)
	if qs.session.mode == ModeDailyChallenge {
		q, idx = qs.state.GetDailyChallengeQuestion()
	} else {
		q, idx = qs.state.SelectQuestion(qs.session.category)
	}
	if idx < 0 {
		// Pool exhausted (or daily challenge already taken today).
		return nil, nil
	}

	served := &ServedQuestion{
		Question:         q,
		OriginalIndex:    idx,
		Number:           qs.session.total + 1,
		Streak:           qs.session.streak,
		IsDailyChallenge: qs.session.mode == ModeDailyChallenge,
	}
	qs.session.current = served
	return served, nil
}

// AnswerResult reports one scored answer.
type AnswerResult struct {
	Correct           bool                       `json:"is_correct"`
	CorrectIndex      int                        `json:"correct_answer_index"`
	UserAnswer        int                        `json:"user_answer_index"`
	Explanation       string                     `json:"explanation,omitempty"`
	PointsEarned      int                        `json:"points_earned"`
	Streak            int                        `json:"streak"`
	NewBadges         []string                   `json:"new_badges"`
	SessionScore      int                        `json:"session_score"`
	SessionTotal      int                        `json:"session_total"`
	QuickFireAnswered int                        `json:"quick_fire_questions_answered,omitempty"`
	QuickFireComplete bool                       `json:"quick_fire_complete,omitempty"`
	SessionComplete   bool                       `json:"session_complete"`
	DailyChallenge    *game.DailyChallengeResult `json:"daily_challenge,omitempty"`
}

// SubmitAnswer scores the chosen option against the question's correct
// index, updates streak, points, history, and achievements, and reports
// completion flags for the caller to act on.
func (qs *QuizService) SubmitAnswer(q question.Question, userAnswer, originalIndex int) (*AnswerResult, error) {
	if !qs.session.active {
		return nil, ErrNoActiveSession
	}
	if userAnswer < 0 || userAnswer >= len(q.Options) {
		return nil, ErrInvalidAnswer
	}

	correct := userAnswer == q.Answer

	if correct {
		qs.session.streak++
		qs.session.score++
	} else {
		qs.session.streak = 0
	}
	qs.session.total++
	qs.session.sinceBreak++

	points := qs.calculatePoints(correct, qs.session.streak)

	qs.state.RecordSessionAnswer(correct, qs.session.streak)
	qs.state.UpdatePoints(points)
	qs.state.UpdateHistory(q.Text, q.Category, correct)

	newBadges := qs.state.CheckAchievements(correct, qs.session.streak)

	result := &AnswerResult{
		Correct:      correct,
		CorrectIndex: q.Answer,
		UserAnswer:   userAnswer,
		Explanation:  q.Explanation,
		PointsEarned: points,
		Streak:       qs.session.streak,
		NewBadges:    newBadges,
		SessionScore: qs.session.score,
		SessionTotal: qs.session.total,
	}
	if result.NewBadges == nil {
		result.NewBadges = []string{}
	}

	if qs.session.mode == ModeVerify {
		qs.session.verifyAnswers = append(qs.session.verifyAnswers, VerifyAnswer{
			Question:      q,
			QuestionIndex: originalIndex,
			AnswerIndex:   userAnswer,
			Correct:       correct,
		})
	}

	if qs.session.mode == ModeDailyChallenge {
		dc := qs.state.CompleteDailyChallenge(correct)
		result.DailyChallenge = &dc
		if dc.BadgeEarned {
			result.NewBadges = append(result.NewBadges, achievements.BadgeDailyWarrior)
		}
	}

	if qs.state.QuickFireActive() {
		result.QuickFireAnswered = qs.state.RecordQuickFireAnswer()
		if result.QuickFireAnswered >= qs.settings.QuickFireQuestionTarget {
			qfResult := qs.state.EndQuickFireMode(false)
			result.QuickFireComplete = true
			if qfResult.BadgeEarned {
				result.NewBadges = append(result.NewBadges, achievements.BadgeQuickFire)
			}
		}
	}

	// The answered question is no longer pending.
	qs.session.current = nil

	result.SessionComplete = qs.isSessionComplete()
	return result, nil
}

// SkipResult reports a skipped question.
type SkipResult struct {
	Skipped           bool `json:"skipped"`
	QuickFireAnswered int  `json:"quick_fire_questions_answered,omitempty"`
	SessionComplete   bool `json:"session_complete"`
}

// SkipQuestion counts toward the break interval and, in quick-fire mode,
// consumes a question slot. Score and streak are untouched, and the
// skipped question stays in the weighted pool's history unchanged.
func (qs *QuizService) SkipQuestion() (*SkipResult, error) {
	if !qs.session.active {
		return nil, ErrNoActiveSession
	}

	qs.session.sinceBreak++
	result := &SkipResult{Skipped: true}

	if qs.state.QuickFireActive() {
		result.QuickFireAnswered = qs.state.RecordQuickFireAnswer()
		if result.QuickFireAnswered >= qs.settings.QuickFireQuestionTarget {
			qs.state.EndQuickFireMode(false)
		}
	}

	// Allow the next call to serve a fresh question.
	qs.session.current = nil

	result.SessionComplete = qs.isSessionComplete()
	return result, nil
}

// SessionSummary is the final record of an ended session.
type SessionSummary struct {
	SessionID      string         `json:"session_id"`
	Mode           QuizMode       `json:"mode"`
	Score          int            `json:"session_score"`
	Total          int            `json:"session_total"`
	Accuracy       float64        `json:"accuracy"`
	SessionPoints  int            `json:"session_points"`
	TotalPoints    int            `json:"total_points"`
	PerfectSession bool           `json:"perfect_session"`
	VerifyAnswers  []VerifyAnswer `json:"verify_answers,omitempty"`
	Message        string         `json:"message,omitempty"`
}

// EndSession finalizes a session: leaderboard entry, perfect-session
// check, persistence of both documents, and reset back to idle.
func (qs *QuizService) EndSession(ctx context.Context) (*SessionSummary, error) {
	if !qs.session.active {
		return nil, ErrNoActiveSession
	}

	s := &qs.session
	s.active = false

	summary := &SessionSummary{
		SessionID:     s.id,
		Mode:          s.mode,
		Score:         s.score,
		Total:         s.total,
		Accuracy:      accuracy(s.score, s.total),
		SessionPoints: qs.state.Tracker().SessionPoints(),
	}

	if s.total > 0 {
		qs.state.UpdateLeaderboard(s.score, s.total, summary.SessionPoints)
	}
	summary.PerfectSession = qs.state.Tracker().CheckPerfectSession(s.score, s.total)

	if qs.state.QuickFireActive() {
		qs.state.EndQuickFireMode(false)
	}

	// Persistence failures leave the summary usable; the state logs them.
	if err := qs.state.SaveHistory(ctx); err != nil {
		qs.logger.Warn("session ended without saved history", "session_id", s.id)
	}
	if err := qs.state.SaveAchievements(ctx); err != nil {
		qs.logger.Warn("session ended without saved achievements", "session_id", s.id)
	}

	summary.TotalPoints = qs.state.Tracker().TotalPoints()
	if s.mode == ModeVerify {
		summary.VerifyAnswers = s.verifyAnswers
	}

	qs.session = session{}
	return summary, nil
}

// ForceEndSession ends whatever session state exists, including a
// half-initialized one. It never fails: with nothing to end it reports
// that instead. No leaderboard entry or persistence happens here.
func (qs *QuizService) ForceEndSession() *SessionSummary {
	if !qs.session.active {
		return &SessionSummary{Message: "no active session to end"}
	}

	s := &qs.session
	summary := &SessionSummary{
		SessionID:     s.id,
		Mode:          s.mode,
		Score:         s.score,
		Total:         s.total,
		Accuracy:      accuracy(s.score, s.total),
		SessionPoints: qs.state.Tracker().SessionPoints(),
	}

	if qs.state.QuickFireActive() {
		qs.state.EndQuickFireMode(false)
	}

	qs.session = session{}
	return summary
}

// ── Queries ─────────────────────────────────────────────────────────────────

// SessionStatus is a read-only snapshot of the running session.
type SessionStatus struct {
	QuizActive      bool     `json:"quiz_active"`
	Mode            QuizMode `json:"mode,omitempty"`
	Category        string   `json:"category,omitempty"`
	Score           int      `json:"session_score"`
	Total           int      `json:"session_total"`
	Streak          int      `json:"current_streak"`
	SinceBreak      int      `json:"questions_since_break"`
	TargetQuestions int      `json:"target_questions"`
}

func (qs *QuizService) Status() SessionStatus {
	return SessionStatus{
		QuizActive:      qs.session.active,
		Mode:            qs.session.mode,
		Category:        qs.session.category,
		Score:           qs.session.score,
		Total:           qs.session.total,
		Streak:          qs.session.streak,
		SinceBreak:      qs.session.sinceBreak,
		TargetQuestions: qs.session.target,
	}
}

// VerifyResults aggregates the recorded answers of a verify-mode session.
type VerifyResults struct {
	TotalAnswered int            `json:"total_answered"`
	NumCorrect    int            `json:"num_correct"`
	Accuracy      float64        `json:"accuracy"`
	Answers       []VerifyAnswer `json:"detailed_answers"`
}

func (qs *QuizService) VerifyResults() (*VerifyResults, error) {
	if qs.session.mode != ModeVerify {
		return nil, errors.New("not in verify mode")
	}
	answers := qs.session.verifyAnswers
	correct := 0
	for _, a := range answers {
		if a.Correct {
			correct++
		}
	}
	return &VerifyResults{
		TotalAnswered: len(answers),
		NumCorrect:    correct,
		Accuracy:      accuracy(correct, len(answers)),
		Answers:       answers,
	}, nil
}

// BreakDue reports whether the break-interval threshold was reached.
// Resetting is an explicit caller action.
func (qs *QuizService) BreakDue() bool {
	return qs.settings.BreakInterval > 0 && qs.session.sinceBreak >= qs.settings.BreakInterval
}

func (qs *QuizService) ResetBreakCounter() { qs.session.sinceBreak = 0 }

// ── Internals ───────────────────────────────────────────────────────────────

// calculatePoints applies the scoring rule: base points for a correct
// answer, multiplied (not added) by the bonus factor once the streak is
// at the threshold; a fixed penalty otherwise.
func (qs *QuizService) calculatePoints(correct bool, streak int) int {
	if !correct {
		return qs.settings.PointsPerIncorrect
	}
	points := qs.settings.PointsPerCorrect
	if streak >= qs.settings.StreakBonusThreshold {
		points = int(float64(points) * qs.settings.StreakBonusMultiplier)
	}
	return points
}

// isSessionComplete applies the per-mode completion policy.
func (qs *QuizService) isSessionComplete() bool {
	s := &qs.session
	switch s.mode {
	case ModeQuickFire:
		return qs.state.QuickFireAnswered() >= qs.settings.QuickFireQuestionTarget
	case ModeMiniQuiz:
		return s.total >= s.target
	case ModeDailyChallenge, ModePopQuiz:
		return s.total >= 1
	default:
		// Standard and verify run until every matching question was served.
		return s.total >= s.target
	}
}

func accuracy(score, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(score) / float64(total) * 100
}

package game

import (
	"context"
	"crypto/md5"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"github.com/certstudy/backend/internal/domain/achievements"
	"github.com/certstudy/backend/internal/domain/history"
	"github.com/certstudy/backend/internal/domain/question"
	"github.com/certstudy/backend/internal/infrastructure/config"
	"github.com/certstudy/backend/internal/store"
)

const dateLayout = "2006-01-02"

// State is the single source of truth for a running study application.
// It owns the question bank, the achievement tracker, and the persisted
// study-history document, plus the quick-fire and daily-challenge
// sub-state that has to survive across sessions.
//
// State is not safe for concurrent use; the caller serializes access
// (single-writer model).
type State struct {
	bank     *question.Bank
	tracker  *achievements.Tracker
	history  *history.Document
	store    store.Store
	settings config.Settings
	logger   *slog.Logger
	now      func() time.Time

	// degraded is set when the persisted documents could not be read for
	// a reason other than "not there yet"; the session still runs, it
	// just starts from defaults.
	degraded bool

	// Mirror of a few session counters, updated by the quiz controller.
	score        int
	totalSession int
	streak       int
	answered     map[int]bool

	// Quick-fire sub-state. The timer is a wall-clock comparison checked
	// on access, not a running timer.
	quickFireActive   bool
	quickFireStart    time.Time
	quickFireAnswered int

	// Daily challenge cross-session memory.
	dailyCompletedDate string
}

// NewState loads the persisted documents through the store. Missing or
// unreadable documents fall back to defaults so the session can proceed.
func NewState(ctx context.Context, bank *question.Bank, st store.Store, settings config.Settings, logger *slog.Logger) *State {
	s := &State{
		bank:     bank,
		store:    st,
		settings: settings,
		logger:   logger,
		now:      time.Now,
		answered: make(map[int]bool),
	}

	doc, err := st.LoadHistory(ctx)
	switch {
	case err == nil:
		if verr := doc.Validate(); verr != nil {
			logger.Warn("stored history is inconsistent, starting fresh", "error", verr)
			doc = history.DefaultDocument()
		}
	case errors.Is(err, store.ErrNotFound):
		doc = history.DefaultDocument()
	default:
		logger.Warn("could not load history, continuing without persistence", "error", err)
		doc = history.DefaultDocument()
		s.degraded = true
	}
	s.history = doc

	achDoc, err := st.LoadAchievements(ctx)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		achDoc = achievements.DefaultDocument()
	default:
		logger.Warn("could not load achievements, continuing without persistence", "error", err)
		achDoc = achievements.DefaultDocument()
		s.degraded = true
	}
	s.tracker = achievements.NewTracker(achDoc, achievements.Thresholds{
		StreakMaster:     settings.StreakMasterTarget,
		DedicatedLearner: settings.DedicatedLearnerTarget,
		CenturyClub:      settings.CenturyClubTarget,
		PointCollector:   settings.PointCollectorTarget,
		DailyWarrior:     settings.DailyWarriorTarget,
		PerfectSession:   settings.PerfectSessionMinimum,
	})

	return s
}

// Degraded reports whether the state is running without loaded
// persistence.
func (s *State) Degraded() bool { return s.degraded }

func (s *State) Bank() *question.Bank { return s.bank }
func (s *State) Tracker() *achievements.Tracker { return s.tracker }
func (s *State) History() *history.Document { return s.history }
func (s *State) Settings() config.Settings { return s.settings }

// ── Question selection ──────────────────────────────────────────────────────

// SelectQuestion picks the next question for the session: weighted by
// inverse historical accuracy, excluding questions already served this
// session. Returns (zero, -1) when the filtered pool is exhausted.
func (s *State) SelectQuestion(category string) (question.Question, int) {
	q, idx := s.bank.Select(category, s.answered, s.history.QuestionPerformance)
	if idx >= 0 {
		s.answered[idx] = true
	}
	return q, idx
}

func (s *State) QuestionCount(category string) int { return s.bank.Count(category) }
func (s *State) Categories() []string { return s.bank.Categories() }

// ── History and scoring bookkeeping ─────────────────────────────────────────

// UpdateHistory records one answered question in the persisted document.
func (s *State) UpdateHistory(text, category string, correct bool) {
	s.history.RecordAnswer(text, category, correct, s.now())
}

// UpdatePoints forwards a session point delta to the tracker.
func (s *State) UpdatePoints(delta int) {
	s.tracker.UpdatePoints(delta)
}

// CheckAchievements records the answered question with the tracker and
// returns newly earned badges.
func (s *State) CheckAchievements(correct bool, streak int) []string {
	return s.tracker.CheckAnswer(correct, streak, s.now().Format(dateLayout))
}

// RecordSessionAnswer updates the mirrored session counters.
func (s *State) RecordSessionAnswer(correct bool, streak int) {
	s.totalSession++
	if correct {
		s.score++
	}
	s.streak = streak
}

func (s *State) SessionScore() int { return s.score }
func (s *State) SessionTotal() int { return s.totalSession }
func (s *State) CurrentStreak() int { return s.streak }

// UpdateLeaderboard appends a session summary and keeps the board sorted
// and capped.
func (s *State) UpdateLeaderboard(score, total, points int) {
	if total == 0 {
		return
	}
	entry := history.NewLeaderboardEntry(s.now(), score, total, points)
	s.history.AddLeaderboardEntry(entry, s.settings.LeaderboardSize)
}

// ResetSession clears the per-session counters and the served-question
// set. Persisted documents are untouched.
func (s *State) ResetSession() {
	s.score = 0
	s.totalSession = 0
	s.streak = 0
	s.answered = make(map[int]bool)
	s.tracker.ResetSessionPoints()
}

// ── Quick-fire sub-state ────────────────────────────────────────────────────

// QuickFireStatus is the polled state of a quick-fire run.
type QuickFireStatus struct {
	Active             bool
	ShouldContinue     bool
	Elapsed            time.Duration
	TimeRemaining      time.Duration
	QuestionsAnswered  int
	QuestionsRemaining int
}

// QuickFireResult reports how a quick-fire run ended.
type QuickFireResult struct {
	Completed         bool
	TimeUp            bool
	QuestionsAnswered int
	TargetQuestions   int
	Elapsed           time.Duration
	BadgeEarned       bool
}

// StartQuickFireMode arms the quick-fire timer and counter.
func (s *State) StartQuickFireMode() {
	s.quickFireActive = true
	s.quickFireStart = s.now()
	s.quickFireAnswered = 0
}

func (s *State) QuickFireActive() bool { return s.quickFireActive }

// RecordQuickFireAnswer counts an answered (or skipped) quick-fire slot.
func (s *State) RecordQuickFireAnswer() int {
	s.quickFireAnswered++
	return s.quickFireAnswered
}

func (s *State) QuickFireAnswered() int { return s.quickFireAnswered }

// CheckQuickFireStatus evaluates the wall clock and the question counter.
// When either ceiling is hit the mode is ended in place and the returned
// status has ShouldContinue false; the result of that end is available
// through the returned pointer.
func (s *State) CheckQuickFireStatus() (QuickFireStatus, *QuickFireResult) {
	if !s.quickFireActive {
		return QuickFireStatus{}, nil
	}

	elapsed := s.now().Sub(s.quickFireStart)
	timeUp := elapsed > s.settings.QuickFireTimeLimit
	countReached := s.quickFireAnswered >= s.settings.QuickFireQuestionTarget

	if timeUp || countReached {
		result := s.EndQuickFireMode(timeUp)
		return QuickFireStatus{
			Active:            false,
			ShouldContinue:    false,
			Elapsed:           elapsed,
			QuestionsAnswered: result.QuestionsAnswered,
		}, &result
	}

	remaining := s.settings.QuickFireTimeLimit - elapsed
	return QuickFireStatus{
		Active:             true,
		ShouldContinue:     true,
		Elapsed:            elapsed,
		TimeRemaining:      remaining,
		QuestionsAnswered:  s.quickFireAnswered,
		QuestionsRemaining: s.settings.QuickFireQuestionTarget - s.quickFireAnswered,
	}, nil
}

// EndQuickFireMode stops quick-fire. Reaching the question target earns
// the badge; running out the clock does not.
func (s *State) EndQuickFireMode(timeUp bool) QuickFireResult {
	if !s.quickFireActive {
		return QuickFireResult{}
	}
	s.quickFireActive = false

	completed := !timeUp && s.quickFireAnswered >= s.settings.QuickFireQuestionTarget
	badge := false
	if completed {
		badge = s.tracker.CompleteQuickFire()
	}
	return QuickFireResult{
		Completed:         completed,
		TimeUp:            timeUp,
		QuestionsAnswered: s.quickFireAnswered,
		TargetQuestions:   s.settings.QuickFireQuestionTarget,
		Elapsed:           s.now().Sub(s.quickFireStart),
		BadgeEarned:       badge,
	}
}

// ── Daily challenge ─────────────────────────────────────────────────────────

// DailyQuestionIndex derives the deterministic question index for a
// calendar date: a pure function of the date string and pool size, so
// every run on the same day serves the same question.
func DailyQuestionIndex(date string, poolSize int) int {
	if poolSize <= 0 {
		return -1
	}
	sum := md5.Sum([]byte(date))
	return int(binary.BigEndian.Uint32(sum[:4]) % uint32(poolSize))
}

// GetDailyChallengeQuestion returns today's question, or (zero, -1) when
// the challenge was already completed today or the pool is empty. A
// repeat call on the same day is a no-op, not an error.
func (s *State) GetDailyChallengeQuestion() (question.Question, int) {
	today := s.now().Format(dateLayout)
	if s.dailyCompletedDate == today || s.tracker.CompletedDailyOn(today) {
		return question.Question{}, -1
	}
	idx := DailyQuestionIndex(today, s.bank.Count(""))
	if idx < 0 {
		return question.Question{}, -1
	}
	q, _ := s.bank.Get(idx)
	return q, idx
}

// DailyChallengeResult reports a completed daily challenge.
type DailyChallengeResult struct {
	Completed   bool   `json:"completed"`
	Correct     bool   `json:"correct"`
	BadgeEarned bool   `json:"achievement_earned"`
	Date        string `json:"date"`
}

// CompleteDailyChallenge marks today's challenge done. A correct answer
// records the date persistently and may earn the daily-warrior badge; the
// badge is awarded at most once ever.
func (s *State) CompleteDailyChallenge(correct bool) DailyChallengeResult {
	today := s.now().Format(dateLayout)
	s.dailyCompletedDate = today

	badge := false
	if correct {
		badge = s.tracker.CompleteDailyChallenge(today)
	}
	return DailyChallengeResult{
		Completed:   true,
		Correct:     correct,
		BadgeEarned: badge,
		Date:        today,
	}
}

// DailyChallengeAvailable reports whether today's challenge can still be
// taken.
func (s *State) DailyChallengeAvailable() bool {
	today := s.now().Format(dateLayout)
	return s.dailyCompletedDate != today && !s.tracker.CompletedDailyOn(today) && s.bank.Count("") > 0
}

// ── Persistence ─────────────────────────────────────────────────────────────

// SaveHistory writes the history document. Failures are logged and
// reported, never fatal.
func (s *State) SaveHistory(ctx context.Context) error {
	if err := s.store.SaveHistory(ctx, s.history); err != nil {
		s.logger.Error("failed to save history", "error", err)
		return err
	}
	return nil
}

// SaveAchievements writes the achievements document.
func (s *State) SaveAchievements(ctx context.Context) error {
	if err := s.store.SaveAchievements(ctx, s.tracker.Document()); err != nil {
		s.logger.Error("failed to save achievements", "error", err)
		return err
	}
	return nil
}

// ClearHistory resets the study history to defaults and persists the
// empty document. Achievements are untouched.
func (s *State) ClearHistory(ctx context.Context) error {
	s.history = history.DefaultDocument()
	return s.SaveHistory(ctx)
}

// ResetAllData wipes history, achievements, and session state back to
// defaults. Irreversible; only for an explicit user action.
func (s *State) ResetAllData(ctx context.Context) error {
	s.history = history.DefaultDocument()
	s.tracker.Reset()
	s.ResetSession()
	s.quickFireActive = false
	s.dailyCompletedDate = ""

	if err := s.SaveHistory(ctx); err != nil {
		return err
	}
	return s.SaveAchievements(ctx)
}

// ExportHistory returns the current history document for structural
// export.
func (s *State) ExportHistory() *history.Document {
	return s.history
}

// ImportHistory replaces the history document after validating its
// invariants, then persists it.
func (s *State) ImportHistory(ctx context.Context, doc *history.Document) error {
	doc.Normalize()
	if err := doc.Validate(); err != nil {
		return err
	}
	// Re-establish the leaderboard ordering and cap regardless of how the
	// imported document was sorted.
	entries := doc.Leaderboard
	doc.Leaderboard = []history.LeaderboardEntry{}
	for _, e := range entries {
		doc.AddLeaderboardEntry(e, s.settings.LeaderboardSize)
	}
	s.history = doc
	return s.SaveHistory(ctx)
}

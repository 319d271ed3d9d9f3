package game

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/certstudy/backend/internal/domain/achievements"
	"github.com/certstudy/backend/internal/domain/history"
	"github.com/certstudy/backend/internal/domain/question"
	"github.com/certstudy/backend/internal/infrastructure/config"
	"github.com/certstudy/backend/internal/store"
)

func testBank(t *testing.T, n int) *question.Bank {
	t.Helper()
	questions := make([]question.Question, n)
	for i := range questions {
		questions[i] = question.Question{
			Text:     "Question " + string(rune('A'+i)),
			Options:  []string{"yes", "no"},
			Answer:   0,
			Category: "Networking",
		}
	}
	bank, err := question.NewBank(questions, question.SelectionWeights{Scaling: 2, Floor: 0.5, Ceiling: 5})
	if err != nil {
		t.Fatal(err)
	}
	return bank
}

func testState(t *testing.T, n int) *State {
	t.Helper()
	dir := t.TempDir()
	st := store.NewJSONStore(
		filepath.Join(dir, "history.json"),
		filepath.Join(dir, "achievements.json"),
	)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewState(context.Background(), testBank(t, n), st, config.DefaultSettings(), logger)
}

func TestDailyQuestionIndex_Deterministic(t *testing.T) {
	first := DailyQuestionIndex("2026-08-27", 50)
	for i := 0; i < 10; i++ {
		if got := DailyQuestionIndex("2026-08-27", 50); got != first {
			t.Fatalf("expected stable index, got %d then %d", first, got)
		}
	}
	if first < 0 || first >= 50 {
		t.Errorf("index %d out of range [0,50)", first)
	}
}

func TestDailyQuestionIndex_EmptyPool(t *testing.T) {
	if got := DailyQuestionIndex("2026-08-27", 0); got != -1 {
		t.Errorf("expected -1 for empty pool, got %d", got)
	}
}

func TestSelectQuestion_ExcludesServed(t *testing.T) {
	s := testState(t, 3)

	seen := make(map[int]bool)
	for i := 0; i < 3; i++ {
		_, idx := s.SelectQuestion("")
		if idx < 0 {
			t.Fatalf("expected question on draw %d", i)
		}
		if seen[idx] {
			t.Fatalf("question %d served twice", idx)
		}
		seen[idx] = true
	}

	if _, idx := s.SelectQuestion(""); idx != -1 {
		t.Errorf("expected exhausted pool, got %d", idx)
	}
}

func TestResetSession_ClearsServedSet(t *testing.T) {
	s := testState(t, 2)

	s.SelectQuestion("")
	s.SelectQuestion("")
	s.RecordSessionAnswer(true, 1)
	s.ResetSession()

	if s.SessionScore() != 0 || s.SessionTotal() != 0 || s.CurrentStreak() != 0 {
		t.Error("expected counters reset")
	}
	if _, idx := s.SelectQuestion(""); idx < 0 {
		t.Error("expected pool available again after reset")
	}
}

func TestQuickFire_TimeUp(t *testing.T) {
	s := testState(t, 5)
	clock := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	s.StartQuickFireMode()
	s.RecordQuickFireAnswer()

	status, result := s.CheckQuickFireStatus()
	if !status.ShouldContinue || result != nil {
		t.Fatal("expected run to continue inside the time limit")
	}

	clock = clock.Add(181 * time.Second)
	status, result = s.CheckQuickFireStatus()
	if status.ShouldContinue {
		t.Fatal("expected run to stop after the time limit")
	}
	if result == nil || !result.TimeUp || result.Completed {
		t.Fatalf("expected time-up result, got %+v", result)
	}
	if result.BadgeEarned {
		t.Error("expected no badge when time runs out")
	}
	if s.QuickFireActive() {
		t.Error("expected quick-fire deactivated")
	}
}

func TestQuickFire_TargetReachedEarnsBadge(t *testing.T) {
	s := testState(t, 5)
	clock := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	s.StartQuickFireMode()
	for i := 0; i < 5; i++ {
		s.RecordQuickFireAnswer()
	}

	result := s.EndQuickFireMode(false)
	if !result.Completed || !result.BadgeEarned {
		t.Fatalf("expected completed run with badge, got %+v", result)
	}

	// A second run completes but the badge stays one-time.
	s.StartQuickFireMode()
	for i := 0; i < 5; i++ {
		s.RecordQuickFireAnswer()
	}
	if result := s.EndQuickFireMode(false); result.BadgeEarned {
		t.Error("expected badge to be one-time")
	}
}

func TestDailyChallenge_OncePerDay(t *testing.T) {
	s := testState(t, 10)
	clock := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	q, idx := s.GetDailyChallengeQuestion()
	if idx < 0 || q.Text == "" {
		t.Fatal("expected a daily question")
	}

	result := s.CompleteDailyChallenge(true)
	if !result.Completed || !result.Correct || result.Date != "2026-08-27" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if !result.BadgeEarned {
		t.Error("expected daily_warrior with target 1")
	}

	if _, idx := s.GetDailyChallengeQuestion(); idx != -1 {
		t.Error("expected no second challenge on the same day")
	}
	if s.DailyChallengeAvailable() {
		t.Error("expected challenge unavailable after completion")
	}

	// Next day it opens again.
	clock = clock.Add(24 * time.Hour)
	if !s.DailyChallengeAvailable() {
		t.Error("expected challenge available the next day")
	}
}

func TestDailyChallenge_IncorrectDoesNotRecordDate(t *testing.T) {
	s := testState(t, 10)
	clock := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	result := s.CompleteDailyChallenge(false)
	if result.BadgeEarned {
		t.Error("expected no badge for a wrong answer")
	}
	if s.tracker.CompletedDailyOn("2026-08-27") {
		t.Error("expected date recorded only for correct answers")
	}
	// Still consumed for today.
	if s.DailyChallengeAvailable() {
		t.Error("expected challenge consumed for the day")
	}
}

func TestImportHistory_RejectsInvalidDocument(t *testing.T) {
	s := testState(t, 2)

	doc := history.DefaultDocument()
	doc.TotalAttempts = 1
	doc.TotalCorrect = 5

	if err := s.ImportHistory(context.Background(), doc); err == nil {
		t.Error("expected validation error")
	}
	if s.History().TotalCorrect == 5 {
		t.Error("expected current history untouched after rejected import")
	}
}

func TestImportHistory_ReordersLeaderboard(t *testing.T) {
	s := testState(t, 2)
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)

	doc := history.DefaultDocument()
	low := history.NewLeaderboardEntry(now, 1, 10, 5)
	high := history.NewLeaderboardEntry(now, 9, 10, 90)
	doc.Leaderboard = []history.LeaderboardEntry{low, high}

	if err := s.ImportHistory(context.Background(), doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.History().Leaderboard[0].Accuracy != 90 {
		t.Errorf("expected board re-sorted, got %+v", s.History().Leaderboard)
	}
}

// failingStore always errors, for the degraded-start path.
type failingStore struct{}

func (failingStore) LoadHistory(context.Context) (*history.Document, error) {
	return nil, errors.New("disk on fire")
}
func (failingStore) SaveHistory(context.Context, *history.Document) error {
	return errors.New("disk on fire")
}
func (failingStore) LoadAchievements(context.Context) (achievements.Document, error) {
	return achievements.Document{}, errors.New("disk on fire")
}
func (failingStore) SaveAchievements(context.Context, achievements.Document) error {
	return errors.New("disk on fire")
}
func (failingStore) Close() error { return nil }

func TestNewState_DegradedOnStoreFailure(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewState(context.Background(), testBank(t, 2), failingStore{}, config.DefaultSettings(), logger)

	if !s.Degraded() {
		t.Error("expected degraded state when the store cannot be read")
	}
	// The session still works from defaults.
	if _, idx := s.SelectQuestion(""); idx < 0 {
		t.Error("expected selection to work in degraded mode")
	}
}

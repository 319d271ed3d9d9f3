package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/certstudy/backend/internal/domain/achievements"
	"github.com/certstudy/backend/internal/domain/question"
	"github.com/certstudy/backend/internal/game"
	"github.com/certstudy/backend/internal/infrastructure/config"
	"github.com/certstudy/backend/internal/service"
	"github.com/certstudy/backend/internal/store"
)

func newTestQuiz(t *testing.T, poolSize int) (*service.QuizService, *game.State) {
	t.Helper()

	questions := make([]question.Question, poolSize)
	for i := range questions {
		questions[i] = question.Question{
			Text:     "Question " + string(rune('A'+i)),
			Options:  []string{"right", "wrong", "also wrong"},
			Answer:   0,
			Category: "Networking",
		}
	}
	bank, err := question.NewBank(questions, question.SelectionWeights{Scaling: 2, Floor: 0.5, Ceiling: 5})
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	st := store.NewJSONStore(
		filepath.Join(dir, "history.json"),
		filepath.Join(dir, "achievements.json"),
	)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	settings := config.DefaultSettings()
	state := game.NewState(context.Background(), bank, st, settings, logger)
	return service.NewQuizService(state, settings, logger), state
}

// answerNext serves the next question and answers it, correctly or not.
func answerNext(t *testing.T, quiz *service.QuizService, correct bool) *service.AnswerResult {
	t.Helper()
	served, err := quiz.NextQuestion()
	if err != nil {
		t.Fatalf("unexpected error serving question: %v", err)
	}
	if served == nil {
		t.Fatal("expected a question, session reported complete")
	}
	answer := served.Question.Answer
	if !correct {
		answer = (served.Question.Answer + 1) % len(served.Question.Options)
	}
	result, err := quiz.SubmitAnswer(served.Question, answer, served.OriginalIndex)
	if err != nil {
		t.Fatalf("unexpected error submitting answer: %v", err)
	}
	return result
}

func TestStartSession_UnknownModeRejected(t *testing.T) {
	if _, err := service.ParseMode("speed_run"); err == nil {
		t.Error("expected error for unknown mode")
	}
	if mode, err := service.ParseMode(""); err != nil || mode != service.ModeStandard {
		t.Errorf("expected empty mode to default to standard, got %v %v", mode, err)
	}
}

func TestStandardSession_PoolExhaustion(t *testing.T) {
	quiz, _ := newTestQuiz(t, 2)

	info := quiz.StartSession(service.ModeStandard, "")
	if info.TotalQuestions != 2 {
		t.Fatalf("expected 2 questions, got %d", info.TotalQuestions)
	}

	first := answerNext(t, quiz, true)
	if first.SessionComplete {
		t.Error("expected session incomplete after first answer")
	}

	second := answerNext(t, quiz, true)
	if !second.SessionComplete {
		t.Error("expected session complete after the pool is exhausted")
	}

	served, err := quiz.NextQuestion()
	if err != nil || served != nil {
		t.Errorf("expected no further questions, got %v %v", served, err)
	}
}

func TestNextQuestion_ReturnsPendingQuestionAgain(t *testing.T) {
	quiz, _ := newTestQuiz(t, 3)
	quiz.StartSession(service.ModeStandard, "")

	first, err := quiz.NextQuestion()
	if err != nil {
		t.Fatal(err)
	}
	again, err := quiz.NextQuestion()
	if err != nil {
		t.Fatal(err)
	}
	if first != again {
		t.Error("expected the pending question to be served again, not a new draw")
	}
}

func TestSubmitAnswer_Scoring(t *testing.T) {
	quiz, _ := newTestQuiz(t, 10)
	quiz.StartSession(service.ModeStandard, "")

	// Streak below the bonus threshold: base points.
	r1 := answerNext(t, quiz, true)
	if r1.PointsEarned != 10 || r1.Streak != 1 {
		t.Errorf("expected 10 points at streak 1, got %d at streak %d", r1.PointsEarned, r1.Streak)
	}

	r2 := answerNext(t, quiz, true)
	if r2.PointsEarned != 10 {
		t.Errorf("expected 10 points at streak 2, got %d", r2.PointsEarned)
	}

	// Third consecutive correct answer reaches the threshold: multiplied.
	r3 := answerNext(t, quiz, true)
	if r3.PointsEarned != 15 || r3.Streak != 3 {
		t.Errorf("expected 15 points at streak 3, got %d at streak %d", r3.PointsEarned, r3.Streak)
	}

	// Wrong answer: penalty, streak reset.
	r4 := answerNext(t, quiz, false)
	if r4.PointsEarned != -2 || r4.Streak != 0 {
		t.Errorf("expected -2 points and streak 0, got %d and %d", r4.PointsEarned, r4.Streak)
	}
}

func TestSubmitAnswer_InvalidIndex(t *testing.T) {
	quiz, _ := newTestQuiz(t, 2)
	quiz.StartSession(service.ModeStandard, "")

	served, err := quiz.NextQuestion()
	if err != nil || served == nil {
		t.Fatal("expected a question")
	}

	if _, err := quiz.SubmitAnswer(served.Question, 99, served.OriginalIndex); !errors.Is(err, service.ErrInvalidAnswer) {
		t.Errorf("expected ErrInvalidAnswer, got %v", err)
	}
	if _, err := quiz.SubmitAnswer(served.Question, -1, served.OriginalIndex); !errors.Is(err, service.ErrInvalidAnswer) {
		t.Errorf("expected ErrInvalidAnswer, got %v", err)
	}
}

func TestSubmitAnswer_NoActiveSession(t *testing.T) {
	quiz, _ := newTestQuiz(t, 2)

	q := question.Question{Text: "q", Options: []string{"a", "b"}, Answer: 0}
	if _, err := quiz.SubmitAnswer(q, 0, 0); !errors.Is(err, service.ErrNoActiveSession) {
		t.Errorf("expected ErrNoActiveSession, got %v", err)
	}
	if _, err := quiz.NextQuestion(); !errors.Is(err, service.ErrNoActiveSession) {
		t.Errorf("expected ErrNoActiveSession, got %v", err)
	}
}

func TestStreakMaster_EarnedOnFifthAnswer(t *testing.T) {
	quiz, _ := newTestQuiz(t, 10)
	quiz.StartSession(service.ModeStandard, "")

	for i := 0; i < 4; i++ {
		r := answerNext(t, quiz, true)
		for _, b := range r.NewBadges {
			if b == achievements.BadgeStreakMaster {
				t.Fatalf("streak_master too early, on answer %d", i+1)
			}
		}
	}

	r := answerNext(t, quiz, true)
	found := 0
	for _, b := range r.NewBadges {
		if b == achievements.BadgeStreakMaster {
			found++
		}
	}
	if found != 1 {
		t.Errorf("expected streak_master exactly once on the fifth answer, got %v", r.NewBadges)
	}
}

func TestQuickFire_BadgeOnTargetAnswer(t *testing.T) {
	quiz, _ := newTestQuiz(t, 8)

	info := quiz.StartSession(service.ModeQuickFire, "")
	if !info.QuickFireActive || info.TotalQuestions != 5 {
		t.Fatalf("unexpected session info: %+v", info)
	}

	var last *service.AnswerResult
	for i := 0; i < 5; i++ {
		last = answerNext(t, quiz, false) // accuracy does not matter for the badge
	}

	if !last.QuickFireComplete || !last.SessionComplete {
		t.Errorf("expected quick-fire completion flags, got %+v", last)
	}
	found := 0
	for _, b := range last.NewBadges {
		if b == achievements.BadgeQuickFire {
			found++
		}
	}
	if found != 1 {
		t.Errorf("expected quick_fire_champion exactly once, got %v", last.NewBadges)
	}
}

func TestMiniQuiz_CompletesAtTarget(t *testing.T) {
	quiz, _ := newTestQuiz(t, 10)
	quiz.StartSession(service.ModeMiniQuiz, "")

	answerNext(t, quiz, true)
	answerNext(t, quiz, true)
	r := answerNext(t, quiz, true)
	if !r.SessionComplete {
		t.Error("expected mini quiz complete after 3 questions")
	}
}

func TestMiniQuiz_TargetClampedToPool(t *testing.T) {
	quiz, _ := newTestQuiz(t, 2)
	info := quiz.StartSession(service.ModeMiniQuiz, "")
	if info.TotalQuestions != 2 {
		t.Errorf("expected target clamped to pool size 2, got %d", info.TotalQuestions)
	}
}

func TestVerifyMode_RecordsAnswers(t *testing.T) {
	quiz, _ := newTestQuiz(t, 3)
	quiz.StartSession(service.ModeVerify, "")

	answerNext(t, quiz, true)
	answerNext(t, quiz, false)

	results, err := quiz.VerifyResults()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results.TotalAnswered != 2 || results.NumCorrect != 1 {
		t.Errorf("expected 2 answered / 1 correct, got %d / %d", results.TotalAnswered, results.NumCorrect)
	}
	if results.Accuracy != 50 {
		t.Errorf("expected 50%% accuracy, got %v", results.Accuracy)
	}
}

func TestVerifyResults_WrongMode(t *testing.T) {
	quiz, _ := newTestQuiz(t, 3)
	quiz.StartSession(service.ModeStandard, "")

	if _, err := quiz.VerifyResults(); err == nil {
		t.Error("expected error outside verify mode")
	}
}

func TestEndSession_UpdatesLeaderboardAndPersists(t *testing.T) {
	quiz, state := newTestQuiz(t, 3)
	quiz.StartSession(service.ModeStandard, "")

	answerNext(t, quiz, true)
	answerNext(t, quiz, false)

	summary, err := quiz.EndSession(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Score != 1 || summary.Total != 2 {
		t.Errorf("expected 1/2, got %d/%d", summary.Score, summary.Total)
	}
	if summary.SessionPoints != 8 {
		t.Errorf("expected 8 session points (10 - 2), got %d", summary.SessionPoints)
	}

	board := state.History().Leaderboard
	if len(board) != 1 || board[0].Score != 1 || board[0].Total != 2 {
		t.Errorf("expected one leaderboard entry for the session, got %+v", board)
	}

	// Session is gone afterwards.
	if _, err := quiz.EndSession(context.Background()); !errors.Is(err, service.ErrNoActiveSession) {
		t.Errorf("expected ErrNoActiveSession on double end, got %v", err)
	}
}

func TestEndSession_EmptySessionSkipsLeaderboard(t *testing.T) {
	quiz, state := newTestQuiz(t, 3)
	quiz.StartSession(service.ModeStandard, "")

	summary, err := quiz.EndSession(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Total != 0 {
		t.Errorf("expected empty summary, got %+v", summary)
	}
	if len(state.History().Leaderboard) != 0 {
		t.Error("expected no leaderboard entry for an empty session")
	}
}

func TestEndSession_PerfectSession(t *testing.T) {
	quiz, _ := newTestQuiz(t, 3)
	quiz.StartSession(service.ModeStandard, "")

	answerNext(t, quiz, true)
	answerNext(t, quiz, true)
	answerNext(t, quiz, true)

	summary, err := quiz.EndSession(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !summary.PerfectSession {
		t.Error("expected perfect session for 3/3")
	}
}

func TestForceEndSession_SafeWhenIdle(t *testing.T) {
	quiz, _ := newTestQuiz(t, 2)

	summary := quiz.ForceEndSession()
	if summary.Message == "" {
		t.Error("expected a nothing-to-end message")
	}
}

func TestForceEndSession_DiscardsWithoutLeaderboard(t *testing.T) {
	quiz, state := newTestQuiz(t, 3)
	quiz.StartSession(service.ModeStandard, "")
	answerNext(t, quiz, true)

	summary := quiz.ForceEndSession()
	if summary.Score != 1 || summary.Total != 1 {
		t.Errorf("expected 1/1 in summary, got %d/%d", summary.Score, summary.Total)
	}
	if len(state.History().Leaderboard) != 0 {
		t.Error("expected no leaderboard entry on force end")
	}
	if quiz.Active() {
		t.Error("expected session cleared")
	}
}

func TestSkipQuestion_AdvancesWithoutScoring(t *testing.T) {
	quiz, state := newTestQuiz(t, 3)
	quiz.StartSession(service.ModeStandard, "")

	first, err := quiz.NextQuestion()
	if err != nil || first == nil {
		t.Fatal("expected a question")
	}
	if _, err := quiz.SkipQuestion(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if state.SessionScore() != 0 || state.SessionTotal() != 0 {
		t.Error("expected skip to leave score and total untouched")
	}

	second, err := quiz.NextQuestion()
	if err != nil || second == nil {
		t.Fatal("expected another question after skip")
	}
	if second.Question.Text == first.Question.Text {
		t.Error("expected a fresh question after skip")
	}
}

func TestBreakReminder(t *testing.T) {
	quiz, _ := newTestQuiz(t, 15)
	quiz.StartSession(service.ModeStandard, "")

	for i := 0; i < 9; i++ {
		answerNext(t, quiz, true)
		if quiz.BreakDue() {
			t.Fatalf("break due too early, after %d answers", i+1)
		}
	}
	answerNext(t, quiz, true)
	if !quiz.BreakDue() {
		t.Error("expected break due after 10 answers")
	}

	quiz.ResetBreakCounter()
	if quiz.BreakDue() {
		t.Error("expected break counter reset")
	}
}

func TestDailyChallenge_SessionFlow(t *testing.T) {
	quiz, _ := newTestQuiz(t, 10)

	info := quiz.StartSession(service.ModeDailyChallenge, "")
	if info.TotalQuestions != 1 {
		t.Fatalf("expected single-question session, got %d", info.TotalQuestions)
	}

	r := answerNext(t, quiz, true)
	if !r.SessionComplete {
		t.Error("expected session complete after the daily question")
	}
	if r.DailyChallenge == nil || !r.DailyChallenge.Completed || !r.DailyChallenge.Correct {
		t.Fatalf("expected completed daily challenge, got %+v", r.DailyChallenge)
	}
	found := false
	for _, b := range r.NewBadges {
		if b == achievements.BadgeDailyWarrior {
			found = true
		}
	}
	if !found {
		t.Errorf("expected daily_warrior in new badges, got %v", r.NewBadges)
	}

	// Same day: no second challenge.
	quiz.StartSession(service.ModeDailyChallenge, "")
	served, err := quiz.NextQuestion()
	if err != nil || served != nil {
		t.Errorf("expected no question for a second attempt today, got %v %v", served, err)
	}
}

func TestPopQuiz_SingleQuestion(t *testing.T) {
	quiz, _ := newTestQuiz(t, 5)
	info := quiz.StartSession(service.ModePopQuiz, "")
	if info.TotalQuestions != 1 {
		t.Fatalf("expected single-question session, got %d", info.TotalQuestions)
	}

	r := answerNext(t, quiz, true)
	if !r.SessionComplete {
		t.Error("expected pop quiz complete after one answer")
	}
}

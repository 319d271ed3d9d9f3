package service

import (
	"context"
	"log/slog"
	"sort"

	"github.com/certstudy/backend/internal/domain/question"
	"github.com/certstudy/backend/internal/game"
)

// Accuracy tier cutoffs for display grouping.
const (
	tierGoodCutoff    = 75.0
	tierAverageCutoff = 50.0
)

func accuracyTier(accuracy float64) string {
	switch {
	case accuracy >= tierGoodCutoff:
		return "good"
	case accuracy >= tierAverageCutoff:
		return "average"
	default:
		return "poor"
	}
}

// StatsService derives read-only views from the accumulated history and
// achievements. It never mutates session state; only the explicit clear
// operations write anything.
type StatsService struct {
	state  *game.State
	logger *slog.Logger
}

func NewStatsService(state *game.State, logger *slog.Logger) *StatsService {
	return &StatsService{state: state, logger: logger}
}

// ── Leaderboard ─────────────────────────────────────────────────────────────

// LeaderboardRow is one display row, the stored entry plus its rank and
// accuracy tier.
type LeaderboardRow struct {
	Rank     int     `json:"rank"`
	Date     string  `json:"date"`
	Score    int     `json:"score"`
	Total    int     `json:"total"`
	Accuracy float64 `json:"accuracy"`
	Points   int     `json:"points"`
	Tier     string  `json:"tier"`
}

// Leaderboard returns the stored board (already sorted and capped) with
// ranks and tiers attached.
func (ss *StatsService) Leaderboard() []LeaderboardRow {
	entries := ss.state.History().Leaderboard
	rows := make([]LeaderboardRow, len(entries))
	for i, e := range entries {
		rows[i] = LeaderboardRow{
			Rank:     i + 1,
			Date:     e.Date,
			Score:    e.Score,
			Total:    e.Total,
			Accuracy: e.Accuracy,
			Points:   e.Points,
			Tier:     accuracyTier(e.Accuracy),
		}
	}
	return rows
}

// ── Detailed statistics ─────────────────────────────────────────────────────

// OverallStats is the aggregate across all recorded answers.
type OverallStats struct {
	TotalAttempts int     `json:"total_attempts"`
	TotalCorrect  int     `json:"total_correct"`
	Accuracy      float64 `json:"overall_accuracy"`
}

// CategoryBreakdown is one category's aggregate, ordered most-practiced
// first in the detailed view.
type CategoryBreakdown struct {
	Category string  `json:"category"`
	Attempts int     `json:"attempts"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
	Tier     string  `json:"tier"`
}

// QuestionBreakdown is one question's aggregate, ordered weakest first so
// problem areas top the list.
type QuestionBreakdown struct {
	Text               string  `json:"question_text"`
	Attempts           int     `json:"attempts"`
	Correct            int     `json:"correct"`
	Accuracy           float64 `json:"accuracy"`
	Tier               string  `json:"tier"`
	LastAttemptCorrect bool    `json:"last_attempt_correct"`
}

// DetailedStats is the full statistics view.
type DetailedStats struct {
	Overall    OverallStats        `json:"overall"`
	Categories []CategoryBreakdown `json:"categories"`
	Questions  []QuestionBreakdown `json:"questions"`
}

// DetailedStatistics aggregates the history document into the display
// shape: categories sorted by attempts descending, questions sorted by
// accuracy ascending with attempts descending as the tie-break.
func (ss *StatsService) DetailedStatistics() DetailedStats {
	doc := ss.state.History()

	stats := DetailedStats{
		Overall: OverallStats{
			TotalAttempts: doc.TotalAttempts,
			TotalCorrect:  doc.TotalCorrect,
			Accuracy:      accuracy(doc.TotalCorrect, doc.TotalAttempts),
		},
		Categories: []CategoryBreakdown{},
		Questions:  []QuestionBreakdown{},
	}

	for name, cs := range doc.Categories {
		if cs.Attempts == 0 {
			continue
		}
		acc := accuracy(cs.Correct, cs.Attempts)
		stats.Categories = append(stats.Categories, CategoryBreakdown{
			Category: name,
			Attempts: cs.Attempts,
			Correct:  cs.Correct,
			Accuracy: acc,
			Tier:     accuracyTier(acc),
		})
	}
	sort.Slice(stats.Categories, func(i, j int) bool {
		a, b := stats.Categories[i], stats.Categories[j]
		if a.Attempts != b.Attempts {
			return a.Attempts > b.Attempts
		}
		return a.Category < b.Category
	})

	for text, qs := range doc.Questions {
		if qs.Attempts == 0 {
			continue
		}
		acc := accuracy(qs.Correct, qs.Attempts)
		row := QuestionBreakdown{
			Text:     text,
			Attempts: qs.Attempts,
			Correct:  qs.Correct,
			Accuracy: acc,
			Tier:     accuracyTier(acc),
		}
		if n := len(qs.History); n > 0 {
			row.LastAttemptCorrect = qs.History[n-1].Correct
		}
		stats.Questions = append(stats.Questions, row)
	}
	sort.Slice(stats.Questions, func(i, j int) bool {
		a, b := stats.Questions[i], stats.Questions[j]
		if a.Accuracy != b.Accuracy {
			return a.Accuracy < b.Accuracy
		}
		if a.Attempts != b.Attempts {
			return a.Attempts > b.Attempts
		}
		return a.Text < b.Text
	})

	return stats
}

// ── Achievements view ───────────────────────────────────────────────────────

// EarnedBadge is a badge with its display description.
type EarnedBadge struct {
	Badge       string `json:"badge"`
	Description string `json:"description"`
}

// AvailableBadge is a not-yet-earned badge with its requirement text.
type AvailableBadge struct {
	Badge       string `json:"badge"`
	Requirement string `json:"requirement"`
}

// AchievementsSummary is the full achievements view.
type AchievementsSummary struct {
	Earned            []EarnedBadge                   `json:"unlocked"`
	Available         []AvailableBadge                `json:"available"`
	TotalPoints       int                             `json:"total_points"`
	QuestionsAnswered int                             `json:"questions_answered"`
	DaysStudied       int                             `json:"days_studied"`
	Progress          map[string]achievementsProgress `json:"progress"`
}

type achievementsProgress struct {
	Current    int     `json:"current"`
	Target     int     `json:"target"`
	Percentage float64 `json:"percentage"`
}

// Achievements lists earned badges with descriptions, remaining badges
// with their requirements, and progress toward the countable thresholds.
func (ss *StatsService) Achievements() AchievementsSummary {
	tracker := ss.state.Tracker()

	summary := AchievementsSummary{
		Earned:            []EarnedBadge{},
		Available:         []AvailableBadge{},
		TotalPoints:       tracker.TotalPoints(),
		QuestionsAnswered: tracker.QuestionsAnswered(),
		DaysStudied:       tracker.DaysStudied(),
		Progress:          make(map[string]achievementsProgress),
	}

	for _, badge := range tracker.Badges() {
		summary.Earned = append(summary.Earned, EarnedBadge{
			Badge:       badge,
			Description: tracker.Describe(badge),
		})
	}

	definitions := tracker.Definitions()
	names := make([]string, 0, len(definitions))
	for badge := range definitions {
		names = append(names, badge)
	}
	sort.Strings(names)
	for _, badge := range names {
		if !tracker.Has(badge) {
			summary.Available = append(summary.Available, AvailableBadge{
				Badge:       badge,
				Requirement: definitions[badge],
			})
		}
	}

	for badge, p := range tracker.ProgressSummary() {
		summary.Progress[badge] = achievementsProgress{
			Current:    p.Current,
			Target:     p.Target,
			Percentage: p.Percentage,
		}
	}

	return summary
}

// ── Review questions ────────────────────────────────────────────────────────

// ReviewQuestion pairs a flagged question text with the full record from
// the pool, when it still exists there.
type ReviewQuestion struct {
	Question question.Question `json:"question"`
	Index    int               `json:"index"`
}

// ReviewQuestions resolves the incorrect-review list against the current
// pool. Flagged texts that no longer exist in the pool are dropped from
// the list as a side effect, keeping it self-consistent across question
// bank updates.
func (ss *StatsService) ReviewQuestions() []ReviewQuestion {
	doc := ss.state.History()
	bank := ss.state.Bank()

	byText := make(map[string]int, len(bank.Questions()))
	for i, q := range bank.Questions() {
		byText[q.Text] = i
	}

	var (
		resolved []ReviewQuestion
		stale    []string
	)
	for _, text := range doc.IncorrectReview {
		idx, ok := byText[text]
		if !ok {
			stale = append(stale, text)
			continue
		}
		q, _ := bank.Get(idx)
		resolved = append(resolved, ReviewQuestion{Question: q, Index: idx})
	}

	for _, text := range stale {
		doc.RemoveFromReview(text)
	}
	if len(stale) > 0 {
		ss.logger.Info("dropped review questions missing from the pool", "count", len(stale))
	}

	if resolved == nil {
		resolved = []ReviewQuestion{}
	}
	return resolved
}

// RemoveFromReview clears one question text from the review list and
// persists the change. Reports whether the text was present.
func (ss *StatsService) RemoveFromReview(ctx context.Context, text string) (bool, error) {
	if !ss.state.History().RemoveFromReview(text) {
		return false, nil
	}
	return true, ss.state.SaveHistory(ctx)
}

// ── Clearing ────────────────────────────────────────────────────────────────

// ClearStatistics wipes the study history (achievements are kept) and
// persists the empty document.
func (ss *StatsService) ClearStatistics(ctx context.Context) error {
	ss.logger.Info("clearing study history")
	return ss.state.ClearHistory(ctx)
}

// ResetAll wipes history and achievements both. Irreversible.
func (ss *StatsService) ResetAll(ctx context.Context) error {
	ss.logger.Info("resetting all statistics and achievements")
	return ss.state.ResetAllData(ctx)
}

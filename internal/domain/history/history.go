package history

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Attempt is one logged answer for a question.
type Attempt struct {
	Timestamp string `json:"timestamp"`
	Correct   bool   `json:"correct"`
}

// QuestionStats accumulates per-question results. Attempts >= Correct
// always holds.
type QuestionStats struct {
	Attempts int       `json:"attempts"`
	Correct  int       `json:"correct"`
	History  []Attempt `json:"history"`
}

// CategoryStats accumulates per-category results.
type CategoryStats struct {
	Attempts int `json:"attempts"`
	Correct  int `json:"correct"`
}

// LeaderboardEntry is one finished session summary.
type LeaderboardEntry struct {
	ID       string  `json:"id"`
	Date     string  `json:"date"`
	Score    int     `json:"score"`
	Total    int     `json:"total"`
	Accuracy float64 `json:"accuracy"`
	Points   int     `json:"points"`
}

// NewLeaderboardEntry builds a session summary for the given results.
func NewLeaderboardEntry(now time.Time, score, total, points int) LeaderboardEntry {
	accuracy := 0.0
	if total > 0 {
		accuracy = float64(score) / float64(total) * 100
	}
	return LeaderboardEntry{
		ID:       uuid.NewString(),
		Date:     now.Format(time.RFC3339),
		Score:    score,
		Total:    total,
		Accuracy: accuracy,
		Points:   points,
	}
}

// Document is the persisted study-history shape. It is read and written
// wholesale; there is no partial update on disk.
type Document struct {
	TotalAttempts   int                       `json:"total_attempts"`
	TotalCorrect    int                       `json:"total_correct"`
	Questions       map[string]*QuestionStats `json:"questions"`
	Categories      map[string]*CategoryStats `json:"categories"`
	Leaderboard     []LeaderboardEntry        `json:"leaderboard"`
	IncorrectReview []string                  `json:"incorrect_review"`
}

// DefaultDocument returns the empty history structure used when no
// persisted document exists or the stored one cannot be read.
func DefaultDocument() *Document {
	return &Document{
		Questions:       make(map[string]*QuestionStats),
		Categories:      make(map[string]*CategoryStats),
		Leaderboard:     []LeaderboardEntry{},
		IncorrectReview: []string{},
	}
}

// Normalize fills in nil containers after decoding a persisted document.
func (d *Document) Normalize() {
	if d.Questions == nil {
		d.Questions = make(map[string]*QuestionStats)
	}
	if d.Categories == nil {
		d.Categories = make(map[string]*CategoryStats)
	}
	if d.Leaderboard == nil {
		d.Leaderboard = []LeaderboardEntry{}
	}
	if d.IncorrectReview == nil {
		d.IncorrectReview = []string{}
	}
}

// RecordAnswer updates the per-question and per-category counters, appends
// a timestamped attempt record, and maintains the incorrect-review list:
// a wrong answer adds the question (at most one entry per text), a correct
// answer removes it.
func (d *Document) RecordAnswer(text, category string, correct bool, now time.Time) {
	qs := d.Questions[text]
	if qs == nil {
		qs = &QuestionStats{}
		d.Questions[text] = qs
	}
	qs.Attempts++
	if correct {
		qs.Correct++
	}
	qs.History = append(qs.History, Attempt{
		Timestamp: now.Format(time.RFC3339),
		Correct:   correct,
	})

	cs := d.Categories[category]
	if cs == nil {
		cs = &CategoryStats{}
		d.Categories[category] = cs
	}
	cs.Attempts++
	if correct {
		cs.Correct++
	}

	d.TotalAttempts++
	if correct {
		d.TotalCorrect++
		d.RemoveFromReview(text)
	} else {
		d.AddToReview(text)
	}
}

// AddToReview flags a question text for re-study. Re-inserting an already
// flagged question is a no-op.
func (d *Document) AddToReview(text string) {
	for _, t := range d.IncorrectReview {
		if t == text {
			return
		}
	}
	d.IncorrectReview = append(d.IncorrectReview, text)
}

// RemoveFromReview clears a question text from the review list. Reports
// whether it was present.
func (d *Document) RemoveFromReview(text string) bool {
	for i, t := range d.IncorrectReview {
		if t == text {
			d.IncorrectReview = append(d.IncorrectReview[:i], d.IncorrectReview[i+1:]...)
			return true
		}
	}
	return false
}

// InReview reports whether a question text is flagged for re-study.
func (d *Document) InReview(text string) bool {
	for _, t := range d.IncorrectReview {
		if t == text {
			return true
		}
	}
	return false
}

// AddLeaderboardEntry appends a session summary, re-sorts by accuracy then
// points (both descending), and truncates to the given cap.
func (d *Document) AddLeaderboardEntry(entry LeaderboardEntry, cap int) {
	d.Leaderboard = append(d.Leaderboard, entry)
	sort.SliceStable(d.Leaderboard, func(i, j int) bool {
		a, b := d.Leaderboard[i], d.Leaderboard[j]
		if a.Accuracy != b.Accuracy {
			return a.Accuracy > b.Accuracy
		}
		return a.Points > b.Points
	})
	if cap > 0 && len(d.Leaderboard) > cap {
		d.Leaderboard = d.Leaderboard[:cap]
	}
}

// QuestionPerformance reports attempts and correct answers for a question
// text, for selection weighting.
func (d *Document) QuestionPerformance(text string) (attempts, correct int) {
	if qs := d.Questions[text]; qs != nil {
		return qs.Attempts, qs.Correct
	}
	return 0, 0
}

// Validate checks the invariants an imported document must satisfy.
func (d *Document) Validate() error {
	if d.TotalCorrect > d.TotalAttempts {
		return fmt.Errorf("history: total correct %d exceeds total attempts %d", d.TotalCorrect, d.TotalAttempts)
	}
	for text, qs := range d.Questions {
		if qs == nil {
			return fmt.Errorf("history: question %q has no stats", text)
		}
		if qs.Correct > qs.Attempts {
			return fmt.Errorf("history: question %q correct %d exceeds attempts %d", text, qs.Correct, qs.Attempts)
		}
	}
	for name, cs := range d.Categories {
		if cs == nil {
			return fmt.Errorf("history: category %q has no stats", name)
		}
		if cs.Correct > cs.Attempts {
			return fmt.Errorf("history: category %q correct %d exceeds attempts %d", name, cs.Correct, cs.Attempts)
		}
	}
	for _, e := range d.Leaderboard {
		if e.Score > e.Total {
			return fmt.Errorf("history: leaderboard entry %s score %d exceeds total %d", e.Date, e.Score, e.Total)
		}
	}
	return nil
}

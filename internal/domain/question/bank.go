package question

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"sort"

	"github.com/certstudy/backend/internal/id"
)

// SelectionWeights tunes the inverse-accuracy weighting used by Select.
// A question's weight is 1 + (1-accuracy)*Scaling, clamped to
// [Floor, Ceiling] so a perfect record never excludes a question and a
// single missed question cannot dominate the draw.
type SelectionWeights struct {
	Scaling float64
	Floor   float64
	Ceiling float64
}

// PerformanceFunc reports historical attempts and correct answers for a
// question text. attempts == 0 means the question was never attempted.
type PerformanceFunc func(text string) (attempts, correct int)

// Bank holds the fixed question pool loaded at startup.
type Bank struct {
	questions []Question
	weights   SelectionWeights
}

func NewBank(questions []Question, weights SelectionWeights) (*Bank, error) {
	for i := range questions {
		if err := questions[i].Validate(); err != nil {
			return nil, err
		}
		if questions[i].ID == "" {
			questions[i].ID = id.GenerateID()
		}
	}
	return &Bank{questions: questions, weights: weights}, nil
}

// Questions returns the full pool in load order.
func (b *Bank) Questions() []Question {
	return b.questions
}

// Get returns the question at the given load index.
func (b *Bank) Get(index int) (Question, bool) {
	if index < 0 || index >= len(b.questions) {
		return Question{}, false
	}
	return b.questions[index], true
}

// Count returns the number of questions in the given category, or the
// total pool size when category is empty.
func (b *Bank) Count(category string) int {
	if category == "" {
		return len(b.questions)
	}
	n := 0
	for _, q := range b.questions {
		if q.Category == category {
			n++
		}
	}
	return n
}

// Categories returns the sorted set of distinct category labels.
func (b *Bank) Categories() []string {
	seen := make(map[string]struct{})
	for _, q := range b.questions {
		seen[q.Category] = struct{}{}
	}
	categories := make([]string, 0, len(seen))
	for c := range seen {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories
}

// Select picks a question by weighted random draw, weighting inversely by
// historical accuracy so weak areas surface more often. Questions whose
// load index is in exclude are skipped. Returns the question and its load
// index, or a zero question and -1 when the filtered pool is empty.
func (b *Bank) Select(category string, exclude map[int]bool, perf PerformanceFunc) (Question, int) {
	type candidate struct {
		index  int
		weight float64
	}

	var pool []candidate
	total := 0.0
	for i, q := range b.questions {
		if exclude[i] {
			continue
		}
		if category != "" && q.Category != category {
			continue
		}
		w := b.weightFor(q, perf)
		pool = append(pool, candidate{index: i, weight: w})
		total += w
	}

	if len(pool) == 0 {
		return Question{}, -1
	}

	r := rand.Float64() * total
	for _, c := range pool {
		r -= c.weight
		if r <= 0 {
			return b.questions[c.index], c.index
		}
	}
	// Floating point slack: fall through to the last candidate.
	last := pool[len(pool)-1]
	return b.questions[last.index], last.index
}

func (b *Bank) weightFor(q Question, perf PerformanceFunc) float64 {
	accuracy := 0.5 // neutral default for never-attempted questions
	if perf != nil {
		if attempts, correct := perf(q.Text); attempts > 0 {
			accuracy = float64(correct) / float64(attempts)
		}
	}
	w := 1 + (1-accuracy)*b.weights.Scaling
	if w < b.weights.Floor {
		w = b.weights.Floor
	}
	if w > b.weights.Ceiling {
		w = b.weights.Ceiling
	}
	return w
}

// ── Question bank file loading ──────────────────────────────────────────────

type questionRecord struct {
	Text        string   `json:"question_text"`
	Options     []string `json:"options"`
	Answer      int      `json:"correct_answer_index"`
	Category    string   `json:"category"`
	Difficulty  string   `json:"difficulty,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
}

type bankFile struct {
	Questions []questionRecord `json:"questions"`
}

// LoadFile reads the question bank JSON document. Both a top-level array
// and a {"questions": [...]} wrapper are accepted.
func LoadFile(path string, weights SelectionWeights) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}

	var records []questionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		var wrapped bankFile
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("parse question bank %s: %w", path, err)
		}
		records = wrapped.Questions
	}

	questions := make([]Question, len(records))
	for i, r := range records {
		questions[i] = Question{
			Text:        r.Text,
			Options:     r.Options,
			Answer:      r.Answer,
			Category:    r.Category,
			Difficulty:  r.Difficulty,
			Explanation: r.Explanation,
		}
	}
	return NewBank(questions, weights)
}

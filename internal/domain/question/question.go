package question

import (
	"errors"
	"fmt"
)

// Question is an immutable multiple-choice question record. Questions are
// owned by the Bank and never mutated after load.
type Question struct {
	ID          string
	Text        string
	Options     []string
	Answer      int // index into Options
	Category    string
	Difficulty  string
	Explanation string
}

// Validate checks the structural invariants of a question record.
func (q Question) Validate() error {
	if q.Text == "" {
		return errors.New("question text cannot be empty")
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("question %q needs at least 2 options, has %d", q.Text, len(q.Options))
	}
	if q.Answer < 0 || q.Answer >= len(q.Options) {
		return fmt.Errorf("question %q has correct index %d out of range [0,%d)", q.Text, q.Answer, len(q.Options))
	}
	return nil
}

// Legacy converts the record to the positional payload the original front
// ends consume: [text, options, correctIndex, category, explanation].
// The canonical Question type is the only representation carried through
// the core; this conversion happens at the boundary.
func (q Question) Legacy() []any {
	return []any{q.Text, q.Options, q.Answer, q.Category, q.Explanation}
}

package store

import (
	"context"
	"errors"

	"github.com/certstudy/backend/internal/domain/achievements"
	"github.com/certstudy/backend/internal/domain/history"
)

var (
	// ErrNotFound reports that no persisted document exists yet. Callers
	// fall back to the default document structure.
	ErrNotFound = errors.New("not found")
)

// Store persists the study-history and achievements documents. Both are
// read and written wholesale; there is no partial update. Implementations
// assume a single writer.
type Store interface {
	LoadHistory(ctx context.Context) (*history.Document, error)
	SaveHistory(ctx context.Context, doc *history.Document) error
	LoadAchievements(ctx context.Context) (achievements.Document, error)
	SaveAchievements(ctx context.Context, doc achievements.Document) error
	Close() error
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/certstudy/backend/internal/domain/achievements"
	"github.com/certstudy/backend/internal/domain/history"
)

// JSONStore keeps the two documents in flat JSON files, rewritten
// completely on every save. Writes go through a temp file and rename so a
// crash mid-save never leaves a half-written document behind.
type JSONStore struct {
	historyPath      string
	achievementsPath string
	mu               sync.Mutex
}

func NewJSONStore(historyPath, achievementsPath string) *JSONStore {
	return &JSONStore{
		historyPath:      historyPath,
		achievementsPath: achievementsPath,
	}
}

func (s *JSONStore) LoadHistory(ctx context.Context) (*history.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var doc history.Document
	if err := readJSON(s.historyPath, &doc); err != nil {
		return nil, err
	}
	doc.Normalize()
	return &doc, nil
}

func (s *JSONStore) SaveHistory(ctx context.Context, doc *history.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSON(s.historyPath, doc)
}

func (s *JSONStore) LoadAchievements(ctx context.Context) (achievements.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := achievements.DefaultDocument()
	if err := readJSON(s.achievementsPath, &doc); err != nil {
		return achievements.Document{}, err
	}
	return doc, nil
}

func (s *JSONStore) SaveAchievements(ctx context.Context, doc achievements.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSON(s.achievementsPath, doc)
}

func (s *JSONStore) Close() error { return nil }

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

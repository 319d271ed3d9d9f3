package store

import (
	"fmt"

	"github.com/certstudy/backend/internal/infrastructure/config"
)

// New builds the Store selected by cfg.StoreBackend.
func New(cfg *config.Config) (Store, error) {
	switch cfg.StoreBackend {
	case "", "json":
		return NewJSONStore(cfg.HistoryFile, cfg.AchievementsFile), nil
	case "sqlite":
		return NewSQLite(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

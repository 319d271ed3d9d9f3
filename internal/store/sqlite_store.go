package store

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite"

	"github.com/certstudy/backend/internal/domain/achievements"
	"github.com/certstudy/backend/internal/domain/history"
)

const schema = `
CREATE TABLE IF NOT EXISTS question_stats (
    question_text TEXT PRIMARY KEY,
    attempts INTEGER NOT NULL,
    correct INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS question_attempts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    question_text TEXT NOT NULL,
    is_correct INTEGER NOT NULL,
    timestamp TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS category_stats (
    category TEXT PRIMARY KEY,
    attempts INTEGER NOT NULL,
    correct INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS leaderboard (
    id TEXT PRIMARY KEY,
    position INTEGER NOT NULL,
    date TEXT NOT NULL,
    score INTEGER NOT NULL,
    total INTEGER NOT NULL,
    accuracy REAL NOT NULL,
    points INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS review_questions (
    question_text TEXT PRIMARY KEY,
    position INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS history_totals (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    total_attempts INTEGER NOT NULL,
    total_correct INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS achievements (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    points_earned INTEGER NOT NULL,
    questions_answered INTEGER NOT NULL,
    streaks_achieved INTEGER NOT NULL,
    perfect_sessions INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS badges (
    name TEXT PRIMARY KEY,
    position INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS study_days (
    day TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS daily_challenge_dates (
    day TEXT PRIMARY KEY
);
`

// SQLiteStore keeps the documents in normalized tables. Loads reconstruct
// the document; saves replace the previous contents inside one
// transaction, matching the whole-document write model of the JSON store.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLite(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ── Study history ───────────────────────────────────────────────────────────

func (s *SQLiteStore) LoadHistory(ctx context.Context) (*history.Document, error) {
	doc := history.DefaultDocument()

	err := s.db.QueryRowContext(ctx,
		"SELECT total_attempts, total_correct FROM history_totals WHERE id = 1").
		Scan(&doc.TotalAttempts, &doc.TotalCorrect)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT question_text, attempts, correct FROM question_stats")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var text string
		qs := &history.QuestionStats{}
		if err := rows.Scan(&text, &qs.Attempts, &qs.Correct); err != nil {
			return nil, err
		}
		doc.Questions[text] = qs
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	attempts, err := s.db.QueryContext(ctx,
		"SELECT question_text, is_correct, timestamp FROM question_attempts ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer attempts.Close()
	for attempts.Next() {
		var text, ts string
		var correct bool
		if err := attempts.Scan(&text, &correct, &ts); err != nil {
			return nil, err
		}
		if qs := doc.Questions[text]; qs != nil {
			qs.History = append(qs.History, history.Attempt{Timestamp: ts, Correct: correct})
		}
	}
	if err := attempts.Err(); err != nil {
		return nil, err
	}

	cats, err := s.db.QueryContext(ctx, "SELECT category, attempts, correct FROM category_stats")
	if err != nil {
		return nil, err
	}
	defer cats.Close()
	for cats.Next() {
		var name string
		cs := &history.CategoryStats{}
		if err := cats.Scan(&name, &cs.Attempts, &cs.Correct); err != nil {
			return nil, err
		}
		doc.Categories[name] = cs
	}
	if err := cats.Err(); err != nil {
		return nil, err
	}

	board, err := s.db.QueryContext(ctx,
		"SELECT id, date, score, total, accuracy, points FROM leaderboard ORDER BY position")
	if err != nil {
		return nil, err
	}
	defer board.Close()
	for board.Next() {
		var e history.LeaderboardEntry
		if err := board.Scan(&e.ID, &e.Date, &e.Score, &e.Total, &e.Accuracy, &e.Points); err != nil {
			return nil, err
		}
		doc.Leaderboard = append(doc.Leaderboard, e)
	}
	if err := board.Err(); err != nil {
		return nil, err
	}

	review, err := s.db.QueryContext(ctx,
		"SELECT question_text FROM review_questions ORDER BY position")
	if err != nil {
		return nil, err
	}
	defer review.Close()
	for review.Next() {
		var text string
		if err := review.Scan(&text); err != nil {
			return nil, err
		}
		doc.IncorrectReview = append(doc.IncorrectReview, text)
	}
	if err := review.Err(); err != nil {
		return nil, err
	}

	return doc, nil
}

func (s *SQLiteStore) SaveHistory(ctx context.Context, doc *history.Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{
		"history_totals", "question_stats", "question_attempts",
		"category_stats", "leaderboard", "review_questions",
	} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO history_totals (id, total_attempts, total_correct) VALUES (1, ?, ?)",
		doc.TotalAttempts, doc.TotalCorrect); err != nil {
		return err
	}

	for text, qs := range doc.Questions {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO question_stats (question_text, attempts, correct) VALUES (?, ?, ?)",
			text, qs.Attempts, qs.Correct); err != nil {
			return err
		}
		for _, a := range qs.History {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO question_attempts (question_text, is_correct, timestamp) VALUES (?, ?, ?)",
				text, a.Correct, a.Timestamp); err != nil {
				return err
			}
		}
	}

	for name, cs := range doc.Categories {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO category_stats (category, attempts, correct) VALUES (?, ?, ?)",
			name, cs.Attempts, cs.Correct); err != nil {
			return err
		}
	}

	for i, e := range doc.Leaderboard {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO leaderboard (id, position, date, score, total, accuracy, points) VALUES (?, ?, ?, ?, ?, ?, ?)",
			e.ID, i, e.Date, e.Score, e.Total, e.Accuracy, e.Points); err != nil {
			return err
		}
	}

	for i, text := range doc.IncorrectReview {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO review_questions (question_text, position) VALUES (?, ?)",
			text, i); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ── Achievements ────────────────────────────────────────────────────────────

func (s *SQLiteStore) LoadAchievements(ctx context.Context) (achievements.Document, error) {
	doc := achievements.DefaultDocument()

	err := s.db.QueryRowContext(ctx,
		"SELECT points_earned, questions_answered, streaks_achieved, perfect_sessions FROM achievements WHERE id = 1").
		Scan(&doc.PointsEarned, &doc.QuestionsAnswered, &doc.StreaksAchieved, &doc.PerfectSessions)
	if err == sql.ErrNoRows {
		return achievements.Document{}, ErrNotFound
	}
	if err != nil {
		return achievements.Document{}, err
	}

	badges, err := s.db.QueryContext(ctx, "SELECT name FROM badges ORDER BY position")
	if err != nil {
		return achievements.Document{}, err
	}
	defer badges.Close()
	for badges.Next() {
		var name string
		if err := badges.Scan(&name); err != nil {
			return achievements.Document{}, err
		}
		doc.Badges = append(doc.Badges, name)
	}
	if err := badges.Err(); err != nil {
		return achievements.Document{}, err
	}

	days, err := s.db.QueryContext(ctx, "SELECT day FROM study_days ORDER BY day")
	if err != nil {
		return achievements.Document{}, err
	}
	defer days.Close()
	for days.Next() {
		var day string
		if err := days.Scan(&day); err != nil {
			return achievements.Document{}, err
		}
		doc.DaysStudied = append(doc.DaysStudied, day)
	}
	if err := days.Err(); err != nil {
		return achievements.Document{}, err
	}

	daily, err := s.db.QueryContext(ctx, "SELECT day FROM daily_challenge_dates ORDER BY day")
	if err != nil {
		return achievements.Document{}, err
	}
	defer daily.Close()
	for daily.Next() {
		var day string
		if err := daily.Scan(&day); err != nil {
			return achievements.Document{}, err
		}
		doc.DailyChallengeDates = append(doc.DailyChallengeDates, day)
	}
	if err := daily.Err(); err != nil {
		return achievements.Document{}, err
	}

	return doc, nil
}

func (s *SQLiteStore) SaveAchievements(ctx context.Context, doc achievements.Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"achievements", "badges", "study_days", "daily_challenge_dates"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO achievements (id, points_earned, questions_answered, streaks_achieved, perfect_sessions) VALUES (1, ?, ?, ?, ?)",
		doc.PointsEarned, doc.QuestionsAnswered, doc.StreaksAchieved, doc.PerfectSessions); err != nil {
		return err
	}

	for i, name := range doc.Badges {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO badges (name, position) VALUES (?, ?)", name, i); err != nil {
			return err
		}
	}
	for _, day := range doc.DaysStudied {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO study_days (day) VALUES (?)", day); err != nil {
			return err
		}
	}
	for _, day := range doc.DailyChallengeDates {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO daily_challenge_dates (day) VALUES (?)", day); err != nil {
			return err
		}
	}

	return tx.Commit()
}

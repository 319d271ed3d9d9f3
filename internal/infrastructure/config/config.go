package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddress   string
	ShutdownTimeout time.Duration

	// Persistence
	StoreBackend     string // "json" or "sqlite"
	HistoryFile      string
	AchievementsFile string
	SQLitePath       string
	QuestionsFile    string

	Quiz Settings
}

// Settings holds the gameplay constants. Every threshold the quiz engine
// compares against lives here so nothing is hard-coded in the controllers.
type Settings struct {
	PointsPerCorrect        int
	PointsPerIncorrect      int
	StreakBonusThreshold    int
	StreakBonusMultiplier   float64
	QuickFireTimeLimit      time.Duration
	QuickFireQuestionTarget int
	MiniQuizQuestionTarget  int
	BreakInterval           int

	// Weighted question selection: weight = 1 + (1-accuracy)*WeightScaling,
	// clamped to [WeightFloor, WeightCeiling].
	WeightScaling float64
	WeightFloor   float64
	WeightCeiling float64

	// Achievement thresholds
	StreakMasterTarget     int
	DedicatedLearnerTarget int
	CenturyClubTarget      int
	PointCollectorTarget   int
	DailyWarriorTarget     int
	PerfectSessionMinimum  int

	LeaderboardSize int
}

// DefaultSettings returns the documented gameplay defaults.
func DefaultSettings() Settings {
	return Settings{
		PointsPerCorrect:        10,
		PointsPerIncorrect:      -2,
		StreakBonusThreshold:    3,
		StreakBonusMultiplier:   1.5,
		QuickFireTimeLimit:      180 * time.Second,
		QuickFireQuestionTarget: 5,
		MiniQuizQuestionTarget:  3,
		BreakInterval:           10,
		WeightScaling:           2.0,
		WeightFloor:             0.5,
		WeightCeiling:           5.0,
		StreakMasterTarget:      5,
		DedicatedLearnerTarget:  3,
		CenturyClubTarget:       100,
		PointCollectorTarget:    500,
		DailyWarriorTarget:      1,
		PerfectSessionMinimum:   3,
		LeaderboardSize:         10,
	}
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	settings := DefaultSettings()
	settings.PointsPerCorrect = getenvInt("POINTS_PER_CORRECT", settings.PointsPerCorrect)
	settings.PointsPerIncorrect = getenvInt("POINTS_PER_INCORRECT", settings.PointsPerIncorrect)
	settings.StreakBonusThreshold = getenvInt("STREAK_BONUS_THRESHOLD", settings.StreakBonusThreshold)
	settings.QuickFireTimeLimit = getenvDuration("QUICK_FIRE_TIME_LIMIT", settings.QuickFireTimeLimit)
	settings.QuickFireQuestionTarget = getenvInt("QUICK_FIRE_QUESTIONS", settings.QuickFireQuestionTarget)
	settings.MiniQuizQuestionTarget = getenvInt("MINI_QUIZ_QUESTIONS", settings.MiniQuizQuestionTarget)
	settings.BreakInterval = getenvInt("BREAK_INTERVAL", settings.BreakInterval)
	settings.DailyWarriorTarget = getenvInt("DAILY_WARRIOR_TARGET", settings.DailyWarriorTarget)

	return &Config{
		ServerAddress:    getenvDefault("SERVER_ADDRESS", ":8080"),
		ShutdownTimeout:  getenvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		StoreBackend:     getenvDefault("STORE_BACKEND", "json"),
		HistoryFile:      getenvDefault("HISTORY_FILE", "study_history.json"),
		AchievementsFile: getenvDefault("ACHIEVEMENTS_FILE", "achievements.json"),
		SQLitePath:       getenvDefault("SQLITE_PATH", "certstudy.db"),
		QuestionsFile:    getenvDefault("QUESTIONS_FILE", "data/questions.json"),
		Quiz:             settings,
	}
}

func getenvDefault(k, fallback string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return fallback
}

func getenvInt(k string, fallback int) int {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("config: %s=%q is not a valid integer: %v", k, v, err)
	}
	return n
}

func getenvDuration(k string, fallback time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("config: %s=%q is not a valid duration: %v", k, v, err)
	}
	return d
}

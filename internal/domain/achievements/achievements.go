package achievements

import (
	"fmt"
	"sort"
)

// Badge identifiers. These are persisted, so the strings are stable.
const (
	BadgeStreakMaster     = "streak_master"
	BadgeDedicatedLearner = "dedicated_learner"
	BadgeCenturyClub      = "century_club"
	BadgePointCollector   = "point_collector"
	BadgeQuickFire        = "quick_fire_champion"
	BadgeDailyWarrior     = "daily_warrior"
	BadgePerfectSession   = "perfect_session"
)

// Document is the persisted achievements shape. DaysStudied and
// DailyChallengeDates are deduplicated, sorted date strings (YYYY-MM-DD).
type Document struct {
	Badges              []string `json:"badges"`
	PointsEarned        int      `json:"points_earned"`
	DaysStudied         []string `json:"days_studied"`
	QuestionsAnswered   int      `json:"questions_answered"`
	StreaksAchieved     int      `json:"streaks_achieved"`
	PerfectSessions     int      `json:"perfect_sessions"`
	DailyChallengeDates []string `json:"daily_warrior_dates"`
}

// DefaultDocument returns the empty achievements structure used when no
// persisted document exists or the stored one cannot be read.
func DefaultDocument() Document {
	return Document{
		Badges:              []string{},
		DaysStudied:         []string{},
		DailyChallengeDates: []string{},
	}
}

// Thresholds are the award criteria for the countable badges.
type Thresholds struct {
	StreakMaster     int // consecutive correct answers
	DedicatedLearner int // distinct study days
	CenturyClub      int // total questions answered
	PointCollector   int // cumulative points
	DailyWarrior     int // cumulative completed daily challenges
	PerfectSession   int // minimum session length for a perfect session
}

// Tracker awards badges and accumulates points and study-day metrics.
// Awarding is idempotent: a badge already earned is never re-added, and
// only positive point deltas reach the persisted total, so the aggregate
// stays non-negative even when session deltas are negative.
type Tracker struct {
	badges        map[string]bool
	badgeOrder    []string
	days          map[string]bool
	dailyDates    map[string]bool
	points        int
	answered      int
	streaks       int
	perfect       int
	sessionPoints int
	thresholds    Thresholds
}

func NewTracker(doc Document, thresholds Thresholds) *Tracker {
	t := &Tracker{
		badges:     make(map[string]bool),
		days:       make(map[string]bool),
		dailyDates: make(map[string]bool),
		points:     doc.PointsEarned,
		answered:   doc.QuestionsAnswered,
		streaks:    doc.StreaksAchieved,
		perfect:    doc.PerfectSessions,
		thresholds: thresholds,
	}
	for _, b := range doc.Badges {
		if !t.badges[b] {
			t.badges[b] = true
			t.badgeOrder = append(t.badgeOrder, b)
		}
	}
	for _, d := range doc.DaysStudied {
		t.days[d] = true
	}
	for _, d := range doc.DailyChallengeDates {
		t.dailyDates[d] = true
	}
	return t
}

// Document exports the current state in the persisted shape.
func (t *Tracker) Document() Document {
	return Document{
		Badges:              append([]string{}, t.badgeOrder...),
		PointsEarned:        t.points,
		DaysStudied:         sortedKeys(t.days),
		QuestionsAnswered:   t.answered,
		StreaksAchieved:     t.streaks,
		PerfectSessions:     t.perfect,
		DailyChallengeDates: sortedKeys(t.dailyDates),
	}
}

// UpdatePoints applies a session point delta. Negative deltas affect only
// the session counter, never the persisted total.
func (t *Tracker) UpdatePoints(delta int) {
	t.sessionPoints += delta
	if delta > 0 {
		t.points += delta
	}
}

func (t *Tracker) SessionPoints() int { return t.sessionPoints }
func (t *Tracker) ResetSessionPoints() { t.sessionPoints = 0 }
func (t *Tracker) TotalPoints() int { return t.points }
func (t *Tracker) QuestionsAnswered() int {
	return t.answered
}
func (t *Tracker) DaysStudied() int { return len(t.days) }
func (t *Tracker) DailyChallengesCompleted() int {
	return len(t.dailyDates)
}

// CompletedDailyOn reports whether the daily challenge was completed on
// the given date.
func (t *Tracker) CompletedDailyOn(date string) bool {
	return t.dailyDates[date]
}

// Award grants a badge once. Reports whether it was newly earned.
func (t *Tracker) Award(badge string) bool {
	if t.badges[badge] {
		return false
	}
	t.badges[badge] = true
	t.badgeOrder = append(t.badgeOrder, badge)
	return true
}

func (t *Tracker) Has(badge string) bool { return t.badges[badge] }

// Badges returns earned badges in award order.
func (t *Tracker) Badges() []string {
	return append([]string{}, t.badgeOrder...)
}

// CheckAnswer records one answered question on the given study day and
// returns any newly earned badges. Already-earned badges are filtered out
// before returning.
func (t *Tracker) CheckAnswer(isCorrect bool, streak int, today string) []string {
	t.days[today] = true
	t.answered++

	var earned []string
	if streak >= t.thresholds.StreakMaster && t.Award(BadgeStreakMaster) {
		t.streaks++
		earned = append(earned, BadgeStreakMaster)
	}
	if len(t.days) >= t.thresholds.DedicatedLearner && t.Award(BadgeDedicatedLearner) {
		earned = append(earned, BadgeDedicatedLearner)
	}
	if t.answered >= t.thresholds.CenturyClub && t.Award(BadgeCenturyClub) {
		earned = append(earned, BadgeCenturyClub)
	}
	if t.points >= t.thresholds.PointCollector && t.Award(BadgePointCollector) {
		earned = append(earned, BadgePointCollector)
	}
	return earned
}

// CheckPerfectSession awards the perfect-session badge for a 100% accurate
// session of at least the configured minimum length.
func (t *Tracker) CheckPerfectSession(score, total int) bool {
	if total < t.thresholds.PerfectSession || score != total {
		return false
	}
	if t.Award(BadgePerfectSession) {
		t.perfect++
		return true
	}
	return false
}

// CompleteDailyChallenge records a completed daily challenge for the given
// date (deduplicated) and awards the daily-warrior badge once the
// cumulative count reaches its target.
func (t *Tracker) CompleteDailyChallenge(today string) bool {
	t.dailyDates[today] = true
	if len(t.dailyDates) >= t.thresholds.DailyWarrior {
		return t.Award(BadgeDailyWarrior)
	}
	return false
}

// CompleteQuickFire awards the quick-fire badge once.
func (t *Tracker) CompleteQuickFire() bool {
	return t.Award(BadgeQuickFire)
}

// Reset wipes all achievement state back to defaults.
func (t *Tracker) Reset() {
	*t = *NewTracker(DefaultDocument(), t.thresholds)
}

// ── Descriptions and progress ───────────────────────────────────────────────

// Describe returns the display text for a badge. Unknown badges get a
// generic fallback rather than an error.
func (t *Tracker) Describe(badge string) string {
	switch badge {
	case BadgeStreakMaster:
		return fmt.Sprintf("Streak Master - Answered %d questions in a row correctly!", t.thresholds.StreakMaster)
	case BadgeDedicatedLearner:
		return fmt.Sprintf("Dedicated Learner - Studied on %d different days!", t.thresholds.DedicatedLearner)
	case BadgeCenturyClub:
		return fmt.Sprintf("Century Club - Answered %d questions!", t.thresholds.CenturyClub)
	case BadgePointCollector:
		return fmt.Sprintf("Point Collector - Earned %d points!", t.thresholds.PointCollector)
	case BadgeQuickFire:
		return "Quick Fire Champion - Completed Quick Fire mode!"
	case BadgeDailyWarrior:
		return "Daily Warrior - Completed the daily challenge!"
	case BadgePerfectSession:
		return "Perfect Session - 100% accuracy in a session!"
	default:
		return "Achievement: " + badge
	}
}

// Definitions maps every badge to its requirement text, for the
// not-yet-earned listing.
func (t *Tracker) Definitions() map[string]string {
	return map[string]string{
		BadgeStreakMaster:     fmt.Sprintf("Answer %d questions correctly in a row", t.thresholds.StreakMaster),
		BadgeDedicatedLearner: fmt.Sprintf("Study on %d different days", t.thresholds.DedicatedLearner),
		BadgeCenturyClub:      fmt.Sprintf("Answer %d questions total", t.thresholds.CenturyClub),
		BadgePointCollector:   fmt.Sprintf("Earn %d points", t.thresholds.PointCollector),
		BadgeQuickFire:        "Complete Quick Fire mode",
		BadgeDailyWarrior:     "Complete a daily challenge",
		BadgePerfectSession:   fmt.Sprintf("Get 100%% accuracy in a session (%d+ questions)", t.thresholds.PerfectSession),
	}
}

// Progress reports the completion ratio toward a countable badge, clipped
// at 100%.
type Progress struct {
	Current    int     `json:"current"`
	Target     int     `json:"target"`
	Percentage float64 `json:"percentage"`
}

func newProgress(current, target int) Progress {
	pct := 0.0
	if target > 0 {
		pct = float64(current) / float64(target) * 100
	}
	if pct > 100 {
		pct = 100
	}
	return Progress{Current: current, Target: target, Percentage: pct}
}

// ProgressSummary returns progress toward the three countable thresholds.
func (t *Tracker) ProgressSummary() map[string]Progress {
	return map[string]Progress{
		BadgeCenturyClub:      newProgress(t.answered, t.thresholds.CenturyClub),
		BadgePointCollector:   newProgress(t.points, t.thresholds.PointCollector),
		BadgeDedicatedLearner: newProgress(len(t.days), t.thresholds.DedicatedLearner),
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

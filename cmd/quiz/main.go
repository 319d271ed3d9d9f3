// Command quiz is the terminal front end: same engine as the server,
// driven interactively over stdin.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/certstudy/backend/internal/domain/question"
	"github.com/certstudy/backend/internal/game"
	"github.com/certstudy/backend/internal/infrastructure/config"
	"github.com/certstudy/backend/internal/service"
	"github.com/certstudy/backend/internal/store"
)

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	bank, err := question.LoadFile(cfg.QuestionsFile, question.SelectionWeights{
		Scaling: cfg.Quiz.WeightScaling,
		Floor:   cfg.Quiz.WeightFloor,
		Ceiling: cfg.Quiz.WeightCeiling,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not load questions:", err)
		os.Exit(1)
	}

	st, err := store.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not open store:", err)
		os.Exit(1)
	}
	defer st.Close()

	ctx := context.Background()
	state := game.NewState(ctx, bank, st, cfg.Quiz, logger)
	quiz := service.NewQuizService(state, cfg.Quiz, logger)
	stats := service.NewStatsService(state, logger)

	app := &cli{
		in:    bufio.NewScanner(os.Stdin),
		quiz:  quiz,
		stats: stats,
		state: state,
	}
	app.run(ctx)
}

type cli struct {
	in    *bufio.Scanner
	quiz  *service.QuizService
	stats *service.StatsService
	state *game.State
}

func (c *cli) run(ctx context.Context) {
	fmt.Println("=== CertStudy ===")
	for {
		fmt.Println()
		fmt.Println("1) Standard quiz")
		fmt.Println("2) Verify knowledge")
		fmt.Println("3) Quick fire")
		fmt.Println("4) Mini quiz")
		fmt.Println("5) Daily challenge")
		fmt.Println("6) Pop quiz")
		fmt.Println("7) Statistics")
		fmt.Println("8) Achievements")
		fmt.Println("9) Leaderboard")
		fmt.Println("0) Quit")

		switch c.prompt("Choice") {
		case "1":
			c.playSession(ctx, service.ModeStandard)
		case "2":
			c.playSession(ctx, service.ModeVerify)
		case "3":
			c.playSession(ctx, service.ModeQuickFire)
		case "4":
			c.playSession(ctx, service.ModeMiniQuiz)
		case "5":
			c.playSession(ctx, service.ModeDailyChallenge)
		case "6":
			c.playSession(ctx, service.ModePopQuiz)
		case "7":
			c.showStatistics()
		case "8":
			c.showAchievements()
		case "9":
			c.showLeaderboard()
		case "0", "q", "quit":
			return
		}
	}
}

func (c *cli) playSession(ctx context.Context, mode service.QuizMode) {
	category := ""
	if mode == service.ModeStandard || mode == service.ModeVerify {
		category = c.pickCategory()
	}

	info := c.quiz.StartSession(mode, category)
	if info.TotalQuestions == 0 {
		fmt.Println("No questions available for that selection.")
		c.quiz.ForceEndSession()
		return
	}
	fmt.Printf("\nStarting %s (%d questions)\n", mode, info.TotalQuestions)

	for {
		served, err := c.quiz.NextQuestion()
		if err != nil || served == nil {
			break
		}

		fmt.Printf("\nQ%d: %s\n", served.Number, served.Question.Text)
		for i, opt := range served.Question.Options {
			fmt.Printf("  %d) %s\n", i+1, opt)
		}

		answer := c.prompt("Answer (number, s to skip, q to quit)")
		if answer == "q" {
			break
		}
		if answer == "s" {
			if _, err := c.quiz.SkipQuestion(); err != nil {
				break
			}
			continue
		}

		idx, err := strconv.Atoi(answer)
		if err != nil || idx < 1 || idx > len(served.Question.Options) {
			fmt.Println("Pick one of the listed numbers.")
			continue
		}

		result, err := c.quiz.SubmitAnswer(served.Question, idx-1, served.OriginalIndex)
		if err != nil {
			fmt.Println("Could not record answer:", err)
			continue
		}

		if result.Correct {
			fmt.Printf("Correct! +%d points (streak %d)\n", result.PointsEarned, result.Streak)
		} else {
			fmt.Printf("Wrong. The answer was: %s\n", served.Question.Options[result.CorrectIndex])
			if result.Explanation != "" {
				fmt.Println("  ", result.Explanation)
			}
		}
		for _, badge := range result.NewBadges {
			fmt.Println("Achievement unlocked:", c.state.Tracker().Describe(badge))
		}
		if c.quiz.BreakDue() {
			fmt.Println("\nYou have been at it a while — take a short break.")
			c.quiz.ResetBreakCounter()
		}
		if result.SessionComplete {
			break
		}
	}

	summary, err := c.quiz.EndSession(ctx)
	if err != nil {
		return
	}
	fmt.Printf("\nSession over: %d/%d (%.1f%%), %d points\n",
		summary.Score, summary.Total, summary.Accuracy, summary.SessionPoints)
	if summary.PerfectSession {
		fmt.Println("Perfect session!")
	}
}

func (c *cli) pickCategory() string {
	categories := c.state.Categories()
	if len(categories) == 0 {
		return ""
	}
	fmt.Println("\n0) All categories")
	for i, cat := range categories {
		fmt.Printf("%d) %s\n", i+1, cat)
	}
	choice, err := strconv.Atoi(c.prompt("Category"))
	if err != nil || choice < 1 || choice > len(categories) {
		return ""
	}
	return categories[choice-1]
}

func (c *cli) showStatistics() {
	s := c.stats.DetailedStatistics()
	fmt.Printf("\nOverall: %d/%d (%.1f%%)\n", s.Overall.TotalCorrect, s.Overall.TotalAttempts, s.Overall.Accuracy)
	for _, cat := range s.Categories {
		fmt.Printf("  %-30s %d/%d (%.1f%%)\n", cat.Category, cat.Correct, cat.Attempts, cat.Accuracy)
	}
}

func (c *cli) showAchievements() {
	a := c.stats.Achievements()
	fmt.Printf("\nTotal points: %d\n", a.TotalPoints)
	for _, badge := range a.Earned {
		fmt.Println("  [x]", badge.Description)
	}
	for _, badge := range a.Available {
		fmt.Println("  [ ]", badge.Requirement)
	}
}

func (c *cli) showLeaderboard() {
	rows := c.stats.Leaderboard()
	if len(rows) == 0 {
		fmt.Println("\nNo sessions recorded yet.")
		return
	}
	fmt.Println()
	for _, row := range rows {
		fmt.Printf("%2d. %s  %d/%d (%.1f%%)  %d pts\n",
			row.Rank, row.Date, row.Score, row.Total, row.Accuracy, row.Points)
	}
}

func (c *cli) prompt(label string) string {
	fmt.Printf("%s> ", label)
	if !c.in.Scan() {
		return "q"
	}
	return strings.TrimSpace(strings.ToLower(c.in.Text()))
}

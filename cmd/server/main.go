package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/certstudy/backend/internal/api"
	"github.com/certstudy/backend/internal/domain/question"
	"github.com/certstudy/backend/internal/game"
	"github.com/certstudy/backend/internal/infrastructure/config"
	"github.com/certstudy/backend/internal/service"
	"github.com/certstudy/backend/internal/store"

	_ "github.com/certstudy/backend/docs" // generated swagger docs
)

// @title           CertStudy API
// @version         1.0
// @description     Certification study companion — weighted practice questions, timed modes, achievements, and a local leaderboard.

// @host      localhost:8080
// @BasePath  /

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// ── Dependencies ────────────────────────────────────────────────
	bank, err := question.LoadFile(cfg.QuestionsFile, question.SelectionWeights{
		Scaling: cfg.Quiz.WeightScaling,
		Floor:   cfg.Quiz.WeightFloor,
		Ceiling: cfg.Quiz.WeightCeiling,
	})
	if err != nil {
		logger.Error("failed to load question bank", "path", cfg.QuestionsFile, "error", err)
		os.Exit(1)
	}
	logger.Info("question bank loaded", "questions", bank.Count(""), "categories", len(bank.Categories()))

	st, err := store.New(cfg)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	state := game.NewState(context.Background(), bank, st, cfg.Quiz, logger)
	quizSvc := service.NewQuizService(state, cfg.Quiz, logger)
	statsSvc := service.NewStatsService(state, logger)
	handler := api.NewHandler(state, quizSvc, statsSvc, logger)

	// ── Routes ──────────────────────────────────────────────────────
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok"}`))
	})

	api.RegisterRoutes(mux, handler)

	// Swagger UI served at /swagger/
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// ── Middleware chain: Logging → CORS → mux ──────────────────────
	logged := api.Logging(logger)(api.CORS(mux))

	// ── Server ──────────────────────────────────────────────────────
	server := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           logged,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		logger.Info("shutting down server")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server forced to shutdown", "error", err)
		}
	}()

	logger.Info("starting server", "address", cfg.ServerAddress)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed to start", "error", err)
		os.Exit(1)
	}
}

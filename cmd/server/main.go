package main

import (
	"net/http"

	"github.com/RichardoC/athena/internal/api"
	"github.com/RichardoC/athena/internal/config"
	"github.com/RichardoC/athena/internal/db"
	"github.com/RichardoC/athena/internal/llm"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.LoadServer()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	database, err := db.New(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to initialize database",
			zap.Error(err),
			zap.String("dbPath", cfg.DBPath))
	}
	defer database.Close()

	llmService, err := llm.New(
		cfg.OpenAIBaseURL,
		cfg.OpenAIKey,
		cfg.Model,
		database,
		llm.Options{TokenBudget: cfg.HistoryTokens, Logger: logger},
	)
	if err != nil {
		logger.Fatal("failed to initialize LLM service", zap.Error(err))
	}

	handler := api.NewHandler(llmService, logger)

	mux := http.NewServeMux()
	handler.Routes(mux)

	if cfg.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	logger.Info("Starting server", zap.String("addr", cfg.Addr), zap.String("model", cfg.Model))
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}

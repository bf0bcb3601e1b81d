package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/RichardoC/athena/internal/chat"
	"github.com/RichardoC/athena/internal/client"
	"github.com/RichardoC/athena/internal/config"
	"github.com/RichardoC/athena/internal/conversation"
	"github.com/RichardoC/athena/internal/db"
	"github.com/RichardoC/athena/internal/ids"
	"github.com/RichardoC/athena/internal/logging"
	"github.com/RichardoC/athena/internal/models"
	"github.com/RichardoC/athena/internal/persist"
	"github.com/RichardoC/athena/internal/tui"
)

func main() {
	ephemeral := flag.Bool("ephemeral", false, "keep conversations in memory only")
	mode := flag.String("mode", "", "start in this mode (mean or nice)")
	theme := flag.String("theme", "", "start with this theme (dark or light)")
	flag.Parse()

	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, "athena:", err)
		os.Exit(1)
	}

	logger, err := logging.NewFile(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "athena: failed to open log file:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var kv db.KV = db.NewMemoryKV()
	if !*ephemeral {
		// Storage is optional: the session still works from memory.
		if database, err := openDatabase(cfg.DBPath); err != nil {
			logger.Error("failed to open database, running without persistence",
				zap.Error(err),
				zap.String("dbPath", cfg.DBPath))
		} else {
			defer database.Close()
			kv = database
		}
	}

	store := persist.New(kv, ids.New, logger)
	conversations := conversation.NewStore(store.Load(), store, ids.New)
	if *mode != "" {
		conversations.SetMode(models.Mode(*mode))
	}
	if *theme != "" {
		conversations.SetTheme(models.Theme(*theme))
	}

	replier := client.New(client.Config{
		BaseURL: cfg.ServerURL,
		Timeout: cfg.RequestTimeout,
	}, logger)

	indicator := tui.NewIndicator()
	controller := chat.NewController(conversations, replier, chat.Options{
		Indicator:     indicator,
		TypingTimeout: cfg.TypingTimeout,
		MarkFallback:  cfg.MarkFallback,
		Logger:        logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	model := tui.NewModel(ctx, conversations, controller, indicator, logger)
	program := tui.NewProgram(model, tea.WithAltScreen())

	logger.Info("Starting Athena", zap.String("server", cfg.ServerURL))
	final, err := program.Run()
	if err != nil {
		logger.Error("ui exited with error", zap.Error(err))
		fmt.Fprintln(os.Stderr, "athena:", err)
		os.Exit(1)
	}
	if m, ok := final.(tui.Model); ok && m.Farewell() != "" {
		fmt.Println(m.Farewell())
	}
}

func openDatabase(path string) (*db.Database, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return db.New(path)
}

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/bnema/shellhist/internal/adapters/boottime"
	"github.com/bnema/shellhist/internal/adapters/histfile"
	"github.com/bnema/shellhist/internal/adapters/recall"
	"github.com/bnema/shellhist/internal/application"
	"github.com/bnema/shellhist/internal/config"
)

const (
	sessionEnvKey  = "SHELLHIST_SESSION"
	recallFileName = "recall_history"
)

type app struct {
	cfg   *config.Config
	store *histfile.Store
	hist  *application.History
	log   *zap.Logger
}

// wireApp builds the history engine for one CLI invocation. Shells should
// export SHELLHIST_SESSION so every command in one shell lands in the same
// session file; without it each invocation is its own session.
func wireApp(logger *zap.Logger) (*app, error) {
	cfg, err := config.Load(viper.New())
	if err != nil {
		return nil, fmt.Errorf("wire config: %w", err)
	}

	store, err := histfile.New(cfg.DataDir, cfg.HistoryFile, logger)
	if err != nil {
		return nil, fmt.Errorf("wire history store: %w", err)
	}

	hist, err := application.New(cfg, store, application.Options{
		SessionID: sessionID(),
		Recaller:  recall.NewFileBuffer(filepath.Join(cfg.DataDir, recallFileName)),
		Boot:      boottime.Sysinfo{},
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("wire history: %w", err)
	}

	return &app{cfg: cfg, store: store, hist: hist, log: logger}, nil
}

func sessionID() string {
	if id := os.Getenv(sessionEnvKey); id != "" {
		return id
	}
	return uuid.NewString()
}

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/example/sptracker/internal/bot"
	"github.com/example/sptracker/internal/clock"
	"github.com/example/sptracker/internal/config"
	"github.com/example/sptracker/internal/database"
	"github.com/example/sptracker/internal/ledger"
	"github.com/example/sptracker/internal/logging"
	"github.com/example/sptracker/internal/progress"
	"github.com/example/sptracker/internal/scheduler"
	"github.com/jmoiron/sqlx"
)

// app wires the tracker components shared by the commands
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	db       *sqlx.DB
	lookup   *database.LookupRepository
	ledger   *ledger.Ledger
	progress *progress.Aggregator
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	db, err := database.Open(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, err
	}
	logger.Info("database ready", "driver", cfg.DBDriver)

	clk := clock.System(cfg.Location)
	return &app{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		lookup:   database.NewLookupRepository(db),
		ledger:   ledger.New(db, clk, logger),
		progress: progress.New(database.NewProgressRepository(db), clk, cfg.WeekStart),
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

// notifier returns the Telegram bot when configured, the log notifier otherwise
func (a *app) notifier() (scheduler.Notifier, error) {
	if a.cfg.TelegramToken == "" {
		return scheduler.LogNotifier{Logger: a.logger}, nil
	}
	bc := bot.DefaultConfig()
	bc.Token = a.cfg.TelegramToken
	bc.ChatID = a.cfg.TelegramChatID
	b, err := bot.New(bc, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to start telegram bot: %w", err)
	}
	return b, nil
}

func (a *app) digestScheduler() (*scheduler.Scheduler, error) {
	n, err := a.notifier()
	if err != nil {
		return nil, err
	}
	return scheduler.New(a.lookup, a.progress, n, a.cfg.Location, a.logger), nil
}

package main

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/mishasvintus/bugcake/internal/config"
	"github.com/mishasvintus/bugcake/internal/export"
	"github.com/mishasvintus/bugcake/internal/logger"
	"github.com/mishasvintus/bugcake/internal/metrics"
	"github.com/mishasvintus/bugcake/internal/notify"
	"github.com/mishasvintus/bugcake/internal/repository"
	"github.com/mishasvintus/bugcake/internal/service"
)

// app holds the dependencies shared by all commands.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	db      *sql.DB
	metrics *metrics.Metrics

	users          *service.UserService
	sheets         *service.SheetService
	testCases      *service.TestCaseService
	checklists     *service.ChecklistService
	members        *service.MemberService
	accessRequests *service.AccessRequestService
	exports        *service.ExportService
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	db, err := repository.NewPostgresDB(cfg.Database.DSN())
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	var notifier notify.Notifier = notify.Nop{}
	if cfg.Slack.Enabled() {
		notifier = notify.NewSlackNotifier(cfg.Slack.BotToken, cfg.Slack.ChannelID, cfg.Server.BaseURL)
		log.Info("slack notifications enabled", zap.String("channel", cfg.Slack.ChannelID))
	}

	var writer export.Writer
	if cfg.Export.Enabled() {
		gs, err := export.NewGoogleSheets(ctx, cfg.Export.GoogleCredentialsFile)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set up spreadsheet export: %w", err)
		}
		writer = gs
		log.Info("google sheets export enabled")
	}

	m := metrics.NewMetrics()

	return &app{
		cfg:     cfg,
		log:     log,
		db:      db,
		metrics: m,

		users:          service.NewUserService(db),
		sheets:         service.NewSheetService(db),
		testCases:      service.NewTestCaseService(db, notifier, m, log),
		checklists:     service.NewChecklistService(db, notifier, m, log),
		members:        service.NewMemberService(db),
		accessRequests: service.NewAccessRequestService(db, notifier, m, log),
		exports:        service.NewExportService(db, writer, log),
	}, nil
}

func (a *app) Close() {
	_ = a.db.Close()
	_ = a.log.Sync()
}

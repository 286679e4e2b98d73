package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mishasvintus/bugcake/internal/handler"
	"github.com/mishasvintus/bugcake/internal/repository"
	"github.com/mishasvintus/bugcake/internal/router"
)

const shutdownTimeout = 5 * time.Second

var skipMigrations bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "Do not apply database migrations on startup")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if !skipMigrations {
		if err := repository.Migrate(a.db); err != nil {
			return err
		}
	}

	if !a.cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	r := router.SetupRoutes(router.Handlers{
		User:          handler.NewUserHandler(a.users),
		Sheet:         handler.NewSheetHandler(a.sheets),
		TestCase:      handler.NewTestCaseHandler(a.testCases),
		Checklist:     handler.NewChecklistHandler(a.checklists),
		Member:        handler.NewMemberHandler(a.members),
		AccessRequest: handler.NewAccessRequestHandler(a.accessRequests),
		Export:        handler.NewExportHandler(a.exports),
	}, router.Options{
		Logger:      a.log,
		Metrics:     a.metrics,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		Users:       a.users,
		Ping:        a.db.PingContext,
	})

	srv := &http.Server{
		Addr:              a.cfg.Server.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		a.log.Error("server stopped with error", zap.Error(err))
		return err
	}

	a.log.Info("server exited")
	return nil
}

package app

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"pilemap/internal/httpx"
	"pilemap/internal/notify"
	"pilemap/internal/resolve"
	"pilemap/internal/schedule"
	"pilemap/internal/server"
	"pilemap/internal/storage/sqlite"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the marker page and JSON API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, err := buildBoard(cfg, httpx.Client())
	if err != nil {
		return err
	}

	job := &schedule.Job{Board: b, Title: cfg.SheetName}
	if cfg.HistoryEnabled() {
		db, err := sqlite.InitDB(cfg.HistoryDBPath)
		if err != nil {
			return err
		}
		defer db.Close()
		log.Printf("History database initialized at %s", cfg.HistoryDBPath)
		job.History = db
	}
	if cfg.SlackConfigured() {
		job.Notifier = notify.NewSlackNotifier(cfg.SlackBotToken, cfg.SlackChannelID)
		log.Printf("Slack summaries enabled for channel %s", cfg.SlackChannelID)
	}

	job.Run(ctx, schedule.SourceStartup)

	if path := strings.TrimSpace(cfg.PositionsPath); path != "" {
		w, err := resolve.NewWatcher(path, b.Registry(), func() {
			log.Debugf("registry now holds %d positions", b.Registry().Len())
		})
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer w.Stop()
	}

	if err := schedule.Start(ctx, cfg.RefreshSchedule, time.Local, job); err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	if dir := strings.TrimSpace(cfg.StaticDir); dir != "" {
		e.Static("/static", dir)
	}
	server.Register(e, b, job, server.Options{
		Title:   cfg.SheetName,
		Image:   cfg.DrawingImage,
		Width:   cfg.ContainerWidth,
		Height:  cfg.ContainerHeight,
		History: job.History,
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("Starting pilemap on %s", cfg.ListenAddr)
	if err := e.Start(cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

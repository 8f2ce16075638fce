package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"newsroom/internal/config"
	"newsroom/internal/db"
	"newsroom/internal/logging"
	"newsroom/internal/router"
	"newsroom/internal/services"
	"newsroom/internal/utils"
	"newsroom/web"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Database
	conn, err := db.Open(cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	if err := db.Migrate(conn); err != nil {
		return err
	}

	mail, err := services.NewMailService(services.NewTransport(cfg, logger), web.FS)
	if err != nil {
		return err
	}
	notifier := services.NewModerationNotifier(conn, mail, cfg.AppName, cfg.SiteURL, cfg.FallbackNotifyEmail, logger)

	r, err := router.Setup(router.Deps{
		Config:     cfg,
		DB:         conn,
		Notifier:   notifier,
		Moderation: services.NewCommentModeration(conn, cfg.SoftRejectComments),
		Captcha:    services.NewCaptchaService(uint64(time.Now().UnixNano())),
		Cache:      utils.NewPageCache(128),
	})
	if err != nil {
		return err
	}

	if cfg.DigestSchedule != "" {
		stats := services.NewDailyStatistics(conn, mail, cfg.ModeratorEmail, cfg.Location(), logger)
		scheduler := services.NewScheduler(cfg.Location(), logger)
		if err := scheduler.ScheduleDigest(cfg.DigestSchedule, stats); err != nil {
			return err
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "app", cfg.AppName, "addr", srv.Addr, "site_url", cfg.SiteURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

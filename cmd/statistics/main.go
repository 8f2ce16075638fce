package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"newsroom/internal/config"
	"newsroom/internal/db"
	"newsroom/internal/logging"
	"newsroom/internal/services"
	"newsroom/web"

	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.App{
		Name:  "statistics",
		Usage: "site statistics jobs, meant to be run by cron or a similar scheduler",
	}
	app.Commands = []*cli.Command{
		{
			Name:  "daily",
			Usage: "mail today's article views and new comments to MODERATOR_EMAIL",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "dry-run",
					Usage: "print the report instead of sending it",
				},
				&cli.DurationFlag{
					Name:  "timeout",
					Usage: "give up after this long",
					Value: 5 * time.Minute,
				},
			},
			Action: runDaily,
		},
	}
	app.RunAndExitOnError()
}

// runDaily never fails the process: problems are logged and the command
// exits 0 so the external scheduler does not retry or alert on its own.
func runDaily(cctx *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		return nil
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(cctx.Context, cctx.Duration("timeout"))
	defer cancel()

	conn, err := db.Open(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("database unavailable", "error", err)
		return nil
	}

	mail, err := services.NewMailService(services.NewTransport(cfg, logger), web.FS)
	if err != nil {
		logger.Error("mail setup failed", "error", err)
		return nil
	}
	stats := services.NewDailyStatistics(conn, mail, cfg.ModeratorEmail, cfg.Location(), logger)

	if cctx.Bool("dry-run") {
		report, err := stats.Collect(ctx, time.Now())
		if err != nil {
			logger.Error("collect statistics failed", "error", err)
			return nil
		}
		fmt.Fprintln(cctx.App.Writer, report.Body())
		return nil
	}

	report, err := stats.Run(ctx, time.Now())
	if err != nil {
		logger.Error("daily statistics failed", "error", err)
		return nil
	}
	logger.Info("daily statistics done", "views", report.Views, "comments", report.Comments)
	return nil
}

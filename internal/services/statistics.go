package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"newsroom/internal/models"

	"gorm.io/gorm"
)

const digestSubject = "Daily site statistics"

// DailyReport holds the counters mailed in the daily digest.
type DailyReport struct {
	Since    time.Time
	Views    int64
	Comments int64
}

func (r DailyReport) Body() string {
	return fmt.Sprintf("Site statistics for the day:\n\nArticle views: %d\nNew comments: %d", r.Views, r.Comments)
}

// DailyStatistics counts today's activity and mails it to one address.
type DailyStatistics struct {
	db       *gorm.DB
	mail     *MailService
	to       string
	location *time.Location
	logger   *slog.Logger
}

// NewDailyStatistics builds the digest job. An empty to disables sending.
func NewDailyStatistics(db *gorm.DB, mail *MailService, to string, location *time.Location, logger *slog.Logger) *DailyStatistics {
	if location == nil {
		location = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DailyStatistics{
		db:       db,
		mail:     mail,
		to:       to,
		location: location,
		logger:   logger.With("component", "daily_statistics"),
	}
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// Collect counts article views and comments created since the start of now's day.
func (s *DailyStatistics) Collect(ctx context.Context, now time.Time) (DailyReport, error) {
	report := DailyReport{Since: startOfDay(now, s.location)}
	conn := s.db.WithContext(ctx)
	since := report.Since.UTC()

	if err := conn.Model(&models.ArticleView{}).Where("created_at >= ?", since).Count(&report.Views).Error; err != nil {
		return report, fmt.Errorf("count article views: %w", err)
	}
	if err := conn.Model(&models.Comment{}).Where("created_at >= ?", since).Count(&report.Comments).Error; err != nil {
		return report, fmt.Errorf("count comments: %w", err)
	}
	return report, nil
}

// Run collects the report and mails it. Mail failures and a missing
// recipient are logged, not returned; only database errors are.
func (s *DailyStatistics) Run(ctx context.Context, now time.Time) (DailyReport, error) {
	s.logger.Info("sending daily statistics")

	report, err := s.Collect(ctx, now)
	if err != nil {
		digestRuns.WithLabelValues("failed").Inc()
		return report, err
	}

	if s.to == "" {
		s.logger.Warn("moderator email not configured, digest not sent",
			"views", report.Views, "comments", report.Comments)
		digestRuns.WithLabelValues("skipped").Inc()
		return report, nil
	}

	if err := s.mail.SendText(ctx, s.to, digestSubject, report.Body()); err != nil {
		s.logger.Error("daily statistics email failed", "to", s.to, "error", err)
		digestRuns.WithLabelValues("failed").Inc()
		return report, nil
	}

	s.logger.Info("daily statistics email sent", "to", s.to, "views", report.Views, "comments", report.Comments)
	digestRuns.WithLabelValues("sent").Inc()
	return report, nil
}

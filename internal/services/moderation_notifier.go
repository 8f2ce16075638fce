package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"newsroom/internal/models"

	"gorm.io/gorm"
)

const newCommentSubject = "New comment awaiting moderation"

// RecipientFailure is one moderator whose notification could not be delivered.
type RecipientFailure struct {
	UserID uint
	Email  string
	Err    error
}

// NotificationReport summarises one NotifyNewComment call.
type NotificationReport struct {
	Attempted    int
	Failures     []RecipientFailure
	UsedFallback bool
	// LookupErr is set when the moderator set could not be loaded; nothing is sent then.
	LookupErr error
}

func (r NotificationReport) Delivered() int {
	return r.Attempted - len(r.Failures)
}

// PartialFailure is true when some but not all attempts failed.
func (r NotificationReport) PartialFailure() bool {
	return len(r.Failures) > 0 && len(r.Failures) < r.Attempted
}

type newCommentMail struct {
	AppName       string
	ArticleTitle  string
	AuthorName    string
	AuthorEmail   string
	CreatedAt     time.Time
	Content       string
	ModerationURL string
}

// ModerationNotifier tells moderators about comments waiting for review.
type ModerationNotifier struct {
	db       *gorm.DB
	mail     *MailService
	appName  string
	siteURL  string
	fallback string
	logger   *slog.Logger
}

func NewModerationNotifier(db *gorm.DB, mail *MailService, appName, siteURL, fallback string, logger *slog.Logger) *ModerationNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &ModerationNotifier{
		db:       db,
		mail:     mail,
		appName:  appName,
		siteURL:  siteURL,
		fallback: fallback,
		logger:   logger.With("component", "moderation_notifier"),
	}
}

// Moderators returns every user whose role is the moderator role.
func (n *ModerationNotifier) Moderators(ctx context.Context) ([]models.User, error) {
	var moderators []models.User
	err := n.db.WithContext(ctx).
		Joins("JOIN roles ON roles.id = users.role_id").
		Where("roles.name = ?", models.RoleModerator).
		Order("users.id ASC").
		Find(&moderators).Error
	if err != nil {
		return nil, fmt.Errorf("load moderators: %w", err)
	}
	return moderators, nil
}

// NotifyNewComment sends one email per moderator, or a single email to the
// fallback address when there are none. Delivery errors are logged and
// reported, never returned: the comment is already stored.
func (n *ModerationNotifier) NotifyNewComment(ctx context.Context, comment *models.Comment) NotificationReport {
	var report NotificationReport

	if err := n.loadRelations(ctx, comment); err != nil {
		n.logger.Error("cannot load comment for notification", "comment_id", comment.ID, "error", err)
		report.LookupErr = err
		return report
	}

	moderators, err := n.Moderators(ctx)
	if err != nil {
		n.logger.Error("cannot notify moderators", "comment_id", comment.ID, "error", err)
		report.LookupErr = err
		return report
	}
	n.logger.Info("notifying moderators", "comment_id", comment.ID, "count", len(moderators))

	data := newCommentMail{
		AppName:       n.appName,
		ArticleTitle:  comment.Article.Title,
		AuthorName:    comment.User.Name,
		AuthorEmail:   comment.User.Email,
		CreatedAt:     comment.CreatedAt,
		Content:       comment.Content,
		ModerationURL: n.siteURL + "/comments/moderation",
	}

	if len(moderators) == 0 {
		n.logger.Warn("no moderators found, using fallback address", "comment_id", comment.ID, "to", n.fallback)
		moderationFallbacks.Inc()
		report.UsedFallback = true
		report.Attempted = 1
		if err := n.mail.SendHTML(ctx, n.fallback, newCommentSubject, "new_comment.html", data); err != nil {
			n.recordFailure(&report, comment, 0, n.fallback, err)
		} else {
			moderationNotifications.WithLabelValues("sent").Inc()
		}
		return report
	}

	for _, moderator := range moderators {
		report.Attempted++
		if err := n.mail.SendHTML(ctx, moderator.Email, newCommentSubject, "new_comment.html", data); err != nil {
			n.recordFailure(&report, comment, moderator.ID, moderator.Email, err)
			continue
		}
		moderationNotifications.WithLabelValues("sent").Inc()
		n.logger.Info("moderation email sent", "comment_id", comment.ID, "moderator_id", moderator.ID, "to", moderator.Email)
	}

	n.storeInApp(ctx, comment, moderators)

	if len(report.Failures) > 0 {
		n.logger.Warn("moderation notification incomplete",
			"comment_id", comment.ID,
			"attempted", report.Attempted,
			"failed", len(report.Failures),
			"partial", report.PartialFailure(),
		)
	}
	return report
}

func (n *ModerationNotifier) recordFailure(report *NotificationReport, comment *models.Comment, userID uint, email string, err error) {
	moderationNotifications.WithLabelValues("failed").Inc()
	report.Failures = append(report.Failures, RecipientFailure{UserID: userID, Email: email, Err: err})
	n.logger.Error("moderation email failed",
		"comment_id", comment.ID,
		"moderator_id", userID,
		"to", email,
		"error", err,
	)
}

func (n *ModerationNotifier) loadRelations(ctx context.Context, comment *models.Comment) error {
	if comment.Article.ID == 0 {
		if err := n.db.WithContext(ctx).First(&comment.Article, comment.ArticleID).Error; err != nil {
			return fmt.Errorf("load article %d: %w", comment.ArticleID, err)
		}
	}
	if comment.User.ID == 0 {
		if err := n.db.WithContext(ctx).First(&comment.User, comment.UserID).Error; err != nil {
			return fmt.Errorf("load author %d: %w", comment.UserID, err)
		}
	}
	return nil
}

// storeInApp mirrors the email as an in-app notification for each moderator.
func (n *ModerationNotifier) storeInApp(ctx context.Context, comment *models.Comment, moderators []models.User) {
	articleID := comment.ArticleID
	commentID := comment.ID
	for _, moderator := range moderators {
		notification := models.Notification{
			UserID:    moderator.ID,
			ArticleID: &articleID,
			CommentID: &commentID,
			Type:      models.NotificationTypeCommentPending,
			Message:   fmt.Sprintf("%s commented on \"%s\"", comment.User.Name, comment.Article.Title),
		}
		if err := n.db.WithContext(ctx).Omit("User", "Article", "Comment").Create(&notification).Error; err != nil {
			n.logger.Error("cannot store in-app notification", "moderator_id", moderator.ID, "error", err)
		}
	}
}

// Package dbtest provides a migrated in-memory database for tests.
package dbtest

import (
	"testing"
	"time"

	"newsroom/internal/db"
	"newsroom/internal/models"
	"newsroom/internal/utils"

	"gorm.io/gorm"
)

// New opens a fresh in-memory SQLite database with the full schema.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	conn, err := db.Open("sqlite://:memory:", nil)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if sqldb, err := conn.DB(); err == nil {
			sqldb.Close()
		}
	})
	return conn
}

// CreateUser inserts a user holding roleName with the given password.
func CreateUser(t testing.TB, conn *gorm.DB, name, email, password, roleName string) *models.User {
	t.Helper()

	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := models.User{Name: name, Email: email, Password: hash}
	if roleName != "" {
		role, err := db.FindRole(conn, roleName)
		if err != nil {
			t.Fatalf("find role %s: %v", roleName, err)
		}
		user.RoleID = &role.ID
		user.Role = role
	}
	if err := conn.Omit("Role").Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return &user
}

func CreateArticle(t testing.TB, conn *gorm.DB, title string) *models.Article {
	t.Helper()

	article := models.Article{Title: title, Content: "Body of " + title}
	if err := conn.Create(&article).Error; err != nil {
		t.Fatalf("create article: %v", err)
	}
	return &article
}

// CreateComment inserts a comment with an explicit creation time, stored in UTC
// like every other row.
func CreateComment(t testing.TB, conn *gorm.DB, article *models.Article, user *models.User, content string, status models.CommentStatus, at time.Time) *models.Comment {
	t.Helper()

	comment := models.Comment{
		ArticleID: article.ID,
		UserID:    user.ID,
		Content:   content,
		Status:    status,
		CreatedAt: at.UTC(),
		UpdatedAt: at.UTC(),
	}
	if err := conn.Omit("Article", "User").Create(&comment).Error; err != nil {
		t.Fatalf("create comment: %v", err)
	}
	return &comment
}

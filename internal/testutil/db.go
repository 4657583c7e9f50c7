// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/d60-Lab/blog-feed/internal/model"
	"github.com/d60-Lab/blog-feed/pkg/database"
)

// NewDB opens a migrated in-memory sqlite database that lives for the duration of t.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// every connection to :memory: is a fresh database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// SeedUsers inserts users with the given usernames and returns them in order.
func SeedUsers(t testing.TB, db *gorm.DB, usernames ...string) []model.User {
	t.Helper()
	users := make([]model.User, len(usernames))
	for i, name := range usernames {
		users[i] = model.User{Username: name}
	}
	if len(users) > 0 {
		if err := db.Create(&users).Error; err != nil {
			t.Fatalf("seed users: %v", err)
		}
	}
	return users
}

// SeedGroup inserts a group whose title is derived from slug.
func SeedGroup(t testing.TB, db *gorm.DB, slug string) model.Group {
	t.Helper()
	g := model.Group{Title: fmt.Sprintf("Group %s", slug), Slug: slug, Description: "test group"}
	if err := db.Create(&g).Error; err != nil {
		t.Fatalf("seed group: %v", err)
	}
	return g
}

// SeedPosts inserts n posts by author, one second apart, oldest first.
func SeedPosts(t testing.TB, db *gorm.DB, author model.User, group *model.Group, n int) []model.Post {
	t.Helper()
	base := time.Now().Add(-time.Duration(n) * time.Second)
	posts := make([]model.Post, n)
	for i := range posts {
		posts[i] = model.Post{
			Text:      fmt.Sprintf("post %d by %s", i, author.Username),
			AuthorID:  author.ID,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if group != nil {
			posts[i].GroupID = &group.ID
		}
	}
	if n > 0 {
		if err := db.Create(&posts).Error; err != nil {
			t.Fatalf("seed posts: %v", err)
		}
	}
	return posts
}

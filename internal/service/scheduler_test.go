package service

import (
	"testing"
	"time"

	"github.com/letopis/letopis/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSchedulerTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	return gdb, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func TestPublishDueFlipsOnlyDuePosts(t *testing.T) {
	gdb, cleanup := setupSchedulerTestDB(t)
	defer cleanup()

	now := time.Now()
	due := now.Add(-10 * time.Minute)
	later := now.Add(time.Hour)
	posts := []db.Post{
		{Title: "Доспео", Slug: "dospeo", Status: db.PostStatusScheduled, ScheduledAt: &due},
		{Title: "Чека", Slug: "ceka", Status: db.PostStatusScheduled, ScheduledAt: &later},
		{Title: "Нацрт", Slug: "nacrt", Status: db.PostStatusDraft},
	}
	if err := gdb.Create(&posts).Error; err != nil {
		t.Fatalf("failed to create posts: %v", err)
	}

	flipped, err := NewScheduler(gdb).PublishDue(now)
	if err != nil {
		t.Fatalf("publish due failed: %v", err)
	}
	if flipped != 1 {
		t.Fatalf("flipped %d posts, want 1", flipped)
	}

	var published db.Post
	if err := gdb.Where("slug = ?", "dospeo").First(&published).Error; err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if published.Status != db.PostStatusPublished {
		t.Fatalf("status = %s, want published", published.Status)
	}
	if published.PublishedAt == nil || published.PublishedAt.Sub(due).Abs() > time.Second {
		t.Fatalf("published_at = %v, want the scheduled time %v", published.PublishedAt, due)
	}
	if published.ScheduledAt != nil {
		t.Fatal("scheduled_at not cleared")
	}

	var waiting db.Post
	if err := gdb.Where("slug = ?", "ceka").First(&waiting).Error; err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if waiting.Status != db.PostStatusScheduled {
		t.Fatalf("future post flipped early: %s", waiting.Status)
	}
}

func TestPublishDueIsIdempotent(t *testing.T) {
	gdb, cleanup := setupSchedulerTestDB(t)
	defer cleanup()

	now := time.Now()
	due := now.Add(-time.Minute)
	post := db.Post{Title: "Једном", Slug: "jednom", Status: db.PostStatusScheduled, ScheduledAt: &due}
	if err := gdb.Create(&post).Error; err != nil {
		t.Fatalf("failed to create post: %v", err)
	}

	scheduler := NewScheduler(gdb)
	if _, err := scheduler.PublishDue(now); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	flipped, err := scheduler.PublishDue(now.Add(time.Minute))
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if flipped != 0 {
		t.Fatalf("second run flipped %d posts, want 0", flipped)
	}
}

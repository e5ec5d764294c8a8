package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/letopis/letopis/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupAnalyticsTestDB(t *testing.T) (*gorm.DB, func()) {
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

func TestRecordViewIncrementsAndAppends(t *testing.T) {
	gdb, cleanup := setupAnalyticsTestDB(t)
	defer cleanup()

	published := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	post := db.Post{Title: "Тест", Slug: "test", Status: db.PostStatusPublished, PublishedAt: &published}
	if err := gdb.Create(&post).Error; err != nil {
		t.Fatalf("failed to create post: %v", err)
	}

	svc := NewAnalyticsService(gdb)
	ua := "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

	if err := svc.RecordView(post.ID, "203.0.113.9", ua, "https://example.com/"); err != nil {
		t.Fatalf("record view failed: %v", err)
	}

	var reloaded db.Post
	if err := gdb.First(&reloaded, post.ID).Error; err != nil {
		t.Fatalf("failed to reload post: %v", err)
	}
	if reloaded.ViewCount != 1 {
		t.Fatalf("view_count = %d, want 1", reloaded.ViewCount)
	}

	var view db.PostView
	if err := gdb.Where("post_id = ?", post.ID).First(&view).Error; err != nil {
		t.Fatalf("failed to load view record: %v", err)
	}
	if view.IPAddress != "203.0.113.9" || view.Referrer != "https://example.com/" {
		t.Fatalf("unexpected view record: %+v", view)
	}
	if view.Browser != "Chrome" || view.Device != "desktop" {
		t.Fatalf("user agent not classified: browser=%s device=%s", view.Browser, view.Device)
	}
}

func TestRecordViewUnknownPost(t *testing.T) {
	gdb, cleanup := setupAnalyticsTestDB(t)
	defer cleanup()

	svc := NewAnalyticsService(gdb)
	if err := svc.RecordView(999, "", "", ""); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}

	var count int64
	if err := gdb.Model(&db.PostView{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("view record persisted for unknown post")
	}
}

func TestRecordViewConcurrentIncrements(t *testing.T) {
	gdb, cleanup := setupAnalyticsTestDB(t)
	defer cleanup()

	published := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	post := db.Post{Title: "Трка", Slug: "trka", Status: db.PostStatusPublished, PublishedAt: &published}
	if err := gdb.Create(&post).Error; err != nil {
		t.Fatalf("failed to create post: %v", err)
	}

	svc := NewAnalyticsService(gdb)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- svc.RecordView(post.ID, "", "", "")
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent record failed: %v", err)
		}
	}

	var reloaded db.Post
	if err := gdb.First(&reloaded, post.ID).Error; err != nil {
		t.Fatalf("failed to reload post: %v", err)
	}
	if reloaded.ViewCount != 2 {
		t.Fatalf("view_count = %d after two concurrent views, want 2", reloaded.ViewCount)
	}
}

func TestPostStatsMapAndOverview(t *testing.T) {
	gdb, cleanup := setupAnalyticsTestDB(t)
	defer cleanup()

	published := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	posts := []db.Post{
		{Title: "Први", Slug: "prvi", Status: db.PostStatusPublished, PublishedAt: &published, ViewCount: 12},
		{Title: "Други", Slug: "drugi", Status: db.PostStatusPublished, PublishedAt: &published, ViewCount: 40},
		{Title: "Трећи", Slug: "treci", Status: db.PostStatusDraft, ViewCount: 3},
	}
	if err := gdb.Create(&posts).Error; err != nil {
		t.Fatalf("failed to create posts: %v", err)
	}
	sub := db.NewsletterSubscription{Email: "citalac@example.com", Status: db.SubscriptionStatusActive, SubscribedAt: time.Now()}
	if err := gdb.Create(&sub).Error; err != nil {
		t.Fatalf("failed to create subscription: %v", err)
	}

	svc := NewAnalyticsService(gdb)

	stats, err := svc.PostStatsMap([]uint{posts[0].ID, posts[1].ID, 999})
	if err != nil {
		t.Fatalf("stats map failed: %v", err)
	}
	if len(stats) != 2 || stats[posts[0].ID] != 12 || stats[posts[1].ID] != 40 {
		t.Fatalf("unexpected stats map: %v", stats)
	}

	overview, err := svc.Overview(2)
	if err != nil {
		t.Fatalf("overview failed: %v", err)
	}
	if overview.TotalViews != 55 {
		t.Fatalf("total views = %d, want 55", overview.TotalViews)
	}
	if overview.PostCount != 3 {
		t.Fatalf("post count = %d, want 3", overview.PostCount)
	}
	if overview.SubscriberCount != 1 {
		t.Fatalf("subscriber count = %d, want 1", overview.SubscriberCount)
	}
	if len(overview.TopPosts) != 2 || overview.TopPosts[0].Slug != "drugi" {
		t.Fatalf("unexpected top posts: %+v", overview.TopPosts)
	}
}

package db

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Init opens the database and performs migrations. An empty databasePath
// falls back to letopis.db. The returned handle is the single store client;
// it is passed down explicitly rather than held in a package global so that
// tests can substitute their own instance.
func Init(databasePath string) (*gorm.DB, error) {
	path := strings.TrimSpace(databasePath)
	if path == "" {
		path = "letopis.db"
	}

	if err := ensureParentDir(path); err != nil {
		return nil, err
	}

	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(gdb); err != nil {
		return nil, err
	}

	return gdb, nil
}

// Migrate creates the schema and applies guarded follow-up migrations.
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(
		&Author{},
		&Post{},
		&Category{},
		&Comment{},
		&Series{},
		&SeriesPost{},
		&Bookmark{},
		&PostView{},
		&NewsletterSubscription{},
	); err != nil {
		return err
	}

	migrator := gdb.Migrator()

	// Earlier schemas indexed author emails uniquely; empty emails collide
	// under sqlite's unique-index semantics, so the index has to go.
	if migrator.HasIndex(&Author{}, "idx_authors_email") {
		if err := migrator.DropIndex(&Author{}, "idx_authors_email"); err != nil {
			return err
		}
	}

	// Legacy schema kept a boolean "active" column before the status enum.
	if migrator.HasColumn(&NewsletterSubscription{}, "active") {
		if err := gdb.Model(&NewsletterSubscription{}).
			Where("active = ? AND (status = '' OR status IS NULL)", true).
			Update("status", SubscriptionStatusActive).Error; err != nil {
			return err
		}
		if err := gdb.Model(&NewsletterSubscription{}).
			Where("active = ? AND (status = '' OR status IS NULL)", false).
			Update("status", SubscriptionStatusUnsubscribed).Error; err != nil {
			return err
		}
		if err := migrator.DropColumn(&NewsletterSubscription{}, "active"); err != nil {
			return err
		}
	}

	if err := gdb.Model(&Post{}).
		Where("status = '' OR status IS NULL").
		Update("status", PostStatusDraft).Error; err != nil {
		return err
	}
	if err := gdb.Model(&Post{}).
		Where("reading_time IS NULL OR reading_time < 1").
		Update("reading_time", 1).Error; err != nil {
		return err
	}

	return nil
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}

package db

import (
	"time"

	"gorm.io/gorm"
)

// Post lifecycle states.
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
	PostStatusArchived  = "archived"
	PostStatusScheduled = "scheduled"
)

// Post is the central content model.
type Post struct {
	gorm.Model
	Title           string `gorm:"not null"`
	Slug            string `gorm:"size:200;uniqueIndex;not null"`
	Excerpt         string `gorm:"type:text"`
	Content         string `gorm:"type:text"`
	CoverImage      string
	AuthorID        uint `gorm:"index"`
	Author          Author
	PublishedAt     *time.Time `gorm:"index"`
	ReadingTime     int        `gorm:"default:1"`
	Tags            []string   `gorm:"serializer:json;type:text"`
	Featured        bool       `gorm:"default:false;index"`
	ViewCount       uint64     `gorm:"default:0"`
	Status          string     `gorm:"size:20;default:draft;index"`
	ScheduledAt     *time.Time
	MetaDescription string
	MetaKeywords    string
	Categories      []Category `gorm:"many2many:post_categories;"`
}

// PubliclyVisible reports whether the post may appear on public surfaces:
// status must be published and published_at must be set and not in the future.
func (p Post) PubliclyVisible(now time.Time) bool {
	if p.Status != PostStatusPublished {
		return false
	}
	if p.PublishedAt == nil {
		return false
	}
	return !p.PublishedAt.After(now)
}

// SortTime is the timestamp used for chronological ordering,
// falling back to the creation time for posts without a publish time.
func (p Post) SortTime() time.Time {
	if p.PublishedAt != nil {
		return *p.PublishedAt
	}
	return p.CreatedAt
}

package db

import "time"

// Bookmark marks a post as saved by an account. One row per (user, post) pair.
type Bookmark struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"uniqueIndex:idx_user_post;not null"`
	PostID    uint `gorm:"uniqueIndex:idx_user_post;not null"`
	CreatedAt time.Time
	Post      Post
}

// TableName keeps the historical table name.
func (Bookmark) TableName() string {
	return "user_bookmarks"
}

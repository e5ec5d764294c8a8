package db

import "time"

// PostView is one append-only page-view record. Rows are never updated and
// only removed by cascade when the post itself is deleted.
type PostView struct {
	ID        uint   `gorm:"primaryKey"`
	PostID    uint   `gorm:"index;not null"`
	IPAddress string `gorm:"size:64"`
	UserAgent string `gorm:"size:512"`
	Referrer  string `gorm:"size:512"`
	Browser   string `gorm:"size:50"`
	OS        string `gorm:"size:50"`
	Device    string `gorm:"size:20"`
	CreatedAt time.Time
}

// TableName keeps the historical table name.
func (PostView) TableName() string {
	return "post_views"
}

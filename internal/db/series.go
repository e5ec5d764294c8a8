package db

import (
	"time"

	"gorm.io/gorm"
)

// Series is an ordered collection of posts curated by one author.
type Series struct {
	gorm.Model
	Title       string `gorm:"not null"`
	Slug        string `gorm:"size:200;uniqueIndex;not null"`
	Description string `gorm:"type:text"`
	CoverImage  string
	AuthorID    uint `gorm:"index"`
	Author      Author
	Entries     []SeriesPost `gorm:"foreignKey:SeriesID;constraint:OnDelete:CASCADE"`
}

// TableName keeps the historical table name.
func (Series) TableName() string {
	return "post_series"
}

// SeriesPost places one post at one position inside a series.
// Both (series, post) and (series, order_index) are unique.
type SeriesPost struct {
	ID         uint `gorm:"primaryKey"`
	SeriesID   uint `gorm:"uniqueIndex:idx_series_post;uniqueIndex:idx_series_order;not null"`
	PostID     uint `gorm:"uniqueIndex:idx_series_post;index;not null"`
	OrderIndex int  `gorm:"uniqueIndex:idx_series_order;not null"`
	CreatedAt  time.Time
	Post       Post
}

// TableName avoids ambiguous pluralization.
func (SeriesPost) TableName() string {
	return "series_posts"
}

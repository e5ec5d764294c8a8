package db

import "gorm.io/gorm"

// Category groups posts by theme. Membership lives in the post_categories
// join table.
type Category struct {
	gorm.Model
	Name        string `gorm:"size:100;uniqueIndex;not null"`
	Slug        string `gorm:"size:100;uniqueIndex;not null"`
	Description string `gorm:"type:text"`
	Color       string `gorm:"size:20"`
	Icon        string `gorm:"size:50"`
	Posts       []Post `gorm:"many2many:post_categories;"`
}

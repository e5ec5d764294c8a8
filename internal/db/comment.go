package db

import "gorm.io/gorm"

// Comment moderation states. Only approved comments are publicly visible.
const (
	CommentStatusPending  = "pending"
	CommentStatusApproved = "approved"
	CommentStatusRejected = "rejected"
)

// Comment is an unauthenticated reader comment. ParentID forms a reply tree;
// deleting a parent removes its subtree.
type Comment struct {
	gorm.Model
	PostID      uint   `gorm:"index;not null"`
	AuthorName  string `gorm:"size:100;not null"`
	AuthorEmail string `gorm:"size:200"`
	Content     string `gorm:"type:text;not null"`
	Status      string `gorm:"size:20;default:pending;index"`
	ParentID    *uint  `gorm:"index"`
	Replies     []Comment `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"`
}

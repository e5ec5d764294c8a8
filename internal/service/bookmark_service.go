package service

import (
	"errors"

	"github.com/letopis/letopis/internal/db"
	"gorm.io/gorm"
)

// BookmarkService wraps per-account bookmark operations. Bookmarks are the
// one owner-only surface of the site: every operation is scoped to the
// acting user id.
type BookmarkService struct {
	db *gorm.DB
}

// NewBookmarkService creates a BookmarkService instance.
func NewBookmarkService(gdb *gorm.DB) *BookmarkService {
	return &BookmarkService{db: gdb}
}

// Toggle bookmarks the post for the user, or removes the bookmark if it
// already exists. Returns true when the post ends up bookmarked.
func (s *BookmarkService) Toggle(userID, postID uint) (bool, error) {
	if userID == 0 || postID == 0 {
		return false, errors.New("invalid user or post id")
	}

	var post db.Post
	if err := s.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrPostNotFound
		}
		return false, err
	}

	var existing db.Bookmark
	err := s.db.Where("user_id = ? AND post_id = ?", userID, postID).First(&existing).Error
	switch {
	case err == nil:
		if err := s.db.Delete(&existing).Error; err != nil {
			return false, err
		}
		return false, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		bookmark := db.Bookmark{UserID: userID, PostID: postID}
		if err := s.db.Create(&bookmark).Error; err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, err
	}
}

// List returns the user's bookmarks, newest first, with posts preloaded.
func (s *BookmarkService) List(userID uint) ([]db.Bookmark, error) {
	var bookmarks []db.Bookmark
	if err := s.db.Preload("Post").Preload("Post.Author").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&bookmarks).Error; err != nil {
		return nil, err
	}
	return bookmarks, nil
}

// IsBookmarked reports whether the user has bookmarked the post.
func (s *BookmarkService) IsBookmarked(userID, postID uint) (bool, error) {
	var count int64
	if err := s.db.Model(&db.Bookmark{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

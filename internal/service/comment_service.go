package service

import (
	"errors"
	"strings"

	"github.com/letopis/letopis/internal/db"
	"gorm.io/gorm"
)

var (
	ErrCommentNotFound      = errors.New("comment not found")
	ErrCommentNameRequired  = errors.New("comment author name is required")
	ErrCommentBodyRequired  = errors.New("comment content is required")
	ErrCommentWrongPost     = errors.New("parent comment belongs to another post")
	ErrInvalidCommentStatus = errors.New("invalid comment status")
)

// CommentService wraps comment related database operations.
type CommentService struct {
	db *gorm.DB
}

// NewCommentService creates a CommentService instance.
func NewCommentService(gdb *gorm.DB) *CommentService {
	return &CommentService{db: gdb}
}

// CommentInput represents an unauthenticated comment submission.
type CommentInput struct {
	PostID      uint
	AuthorName  string
	AuthorEmail string
	Content     string
	ParentID    *uint
}

// CommentNode is one comment with its approved replies attached.
type CommentNode struct {
	db.Comment
	Replies []CommentNode
}

// Submit stores a new comment in pending state. Anyone may comment;
// moderation happens downstream.
func (s *CommentService) Submit(input CommentInput) (*db.Comment, error) {
	name := strings.TrimSpace(input.AuthorName)
	if name == "" {
		return nil, ErrCommentNameRequired
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrCommentBodyRequired
	}

	var post db.Post
	if err := s.db.First(&post, input.PostID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	if input.ParentID != nil {
		var parent db.Comment
		if err := s.db.First(&parent, *input.ParentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCommentNotFound
			}
			return nil, err
		}
		if parent.PostID != input.PostID {
			return nil, ErrCommentWrongPost
		}
	}

	comment := db.Comment{
		PostID:      input.PostID,
		AuthorName:  name,
		AuthorEmail: strings.TrimSpace(input.AuthorEmail),
		Content:     content,
		Status:      db.CommentStatusPending,
		ParentID:    input.ParentID,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// Moderate moves a comment to approved or rejected.
func (s *CommentService) Moderate(id uint, status string) (*db.Comment, error) {
	if status != db.CommentStatusApproved && status != db.CommentStatusRejected {
		return nil, ErrInvalidCommentStatus
	}

	var comment db.Comment
	if err := s.db.First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	comment.Status = status
	if err := s.db.Save(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListPending returns comments awaiting moderation, oldest first.
func (s *CommentService) ListPending() ([]db.Comment, error) {
	var comments []db.Comment
	if err := s.db.Where("status = ?", db.CommentStatusPending).
		Order("created_at asc").Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// ApprovedTree returns the approved comments of a post assembled into a
// reply tree, ordered oldest first on every level.
func (s *CommentService) ApprovedTree(postID uint) ([]CommentNode, error) {
	var comments []db.Comment
	if err := s.db.Where("post_id = ? AND status = ?", postID, db.CommentStatusApproved).
		Order("created_at asc").Find(&comments).Error; err != nil {
		return nil, err
	}

	byParent := make(map[uint][]db.Comment)
	var roots []db.Comment
	for _, comment := range comments {
		if comment.ParentID == nil {
			roots = append(roots, comment)
			continue
		}
		byParent[*comment.ParentID] = append(byParent[*comment.ParentID], comment)
	}

	var build func(parents []db.Comment) []CommentNode
	build = func(parents []db.Comment) []CommentNode {
		nodes := make([]CommentNode, 0, len(parents))
		for _, parent := range parents {
			nodes = append(nodes, CommentNode{
				Comment: parent,
				Replies: build(byParent[parent.ID]),
			})
		}
		return nodes
	}

	return build(roots), nil
}

// Delete removes a comment and, through the self-referential cascade,
// its whole reply subtree.
func (s *CommentService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var comment db.Comment
		if err := tx.First(&comment, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCommentNotFound
			}
			return err
		}
		return s.deleteSubtree(tx, comment.ID)
	})
}

func (s *CommentService) deleteSubtree(tx *gorm.DB, id uint) error {
	var children []db.Comment
	if err := tx.Where("parent_id = ?", id).Find(&children).Error; err != nil {
		return err
	}
	for _, child := range children {
		if err := s.deleteSubtree(tx, child.ID); err != nil {
			return err
		}
	}
	return tx.Delete(&db.Comment{}, id).Error
}

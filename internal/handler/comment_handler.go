package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/letopis/letopis/internal/service"
)

// SubmitComment accepts a public comment; it stays hidden until approved.
func (a *API) SubmitComment(c *gin.Context) {
	var payload struct {
		PostID      uint   `json:"post_id"`
		AuthorName  string `json:"author_name"`
		AuthorEmail string `json:"author_email"`
		Content     string `json:"content"`
		ParentID    *uint  `json:"parent_id"`
	}
	if !bindJSON(c, &payload, "invalid comment payload") {
		return
	}

	comment, err := a.comments.Submit(service.CommentInput{
		PostID:      payload.PostID,
		AuthorName:  payload.AuthorName,
		AuthorEmail: payload.AuthorEmail,
		Content:     payload.Content,
		ParentID:    payload.ParentID,
	})
	if err != nil {
		respondCommentError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"comment": gin.H{
			"id":          comment.ID,
			"post_id":     comment.PostID,
			"author_name": comment.AuthorName,
			"status":      comment.Status,
		},
	})
}

// ListPendingComments returns the moderation queue.
func (a *API) ListPendingComments(c *gin.Context) {
	comments, err := a.comments.ListPending()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load comments")
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// ModerateComment approves or rejects one comment.
func (a *API) ModerateComment(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var payload struct {
		Status string `json:"status"`
	}
	if !bindJSON(c, &payload, "invalid moderation payload") {
		return
	}

	comment, err := a.comments.Moderate(id, payload.Status)
	if err != nil {
		respondCommentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comment": comment})
}

// DeleteComment removes a comment together with its reply subtree.
func (a *API) DeleteComment(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.comments.Delete(id); err != nil {
		respondCommentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func respondCommentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCommentNotFound):
		respondError(c, http.StatusNotFound, "comment not found")
	case errors.Is(err, service.ErrPostNotFound):
		respondError(c, http.StatusNotFound, "post not found")
	case errors.Is(err, service.ErrCommentNameRequired),
		errors.Is(err, service.ErrCommentBodyRequired),
		errors.Is(err, service.ErrCommentWrongPost),
		errors.Is(err, service.ErrInvalidCommentStatus):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "comment operation failed")
	}
}

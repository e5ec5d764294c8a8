package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/letopis/letopis/internal/service"
)

// ToggleBookmark flips the bookmark for the logged in author and returns
// the final state.
func (a *API) ToggleBookmark(c *gin.Context) {
	postID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	bookmarked, err := a.bookmarks.Toggle(currentUserID(c), postID)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			respondError(c, http.StatusNotFound, "post not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "bookmark operation failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookmarked": bookmarked})
}

// ListBookmarks returns the logged in author's bookmarks, newest first.
func (a *API) ListBookmarks(c *gin.Context) {
	bookmarks, err := a.bookmarks.List(currentUserID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load bookmarks")
		return
	}

	payload := make([]gin.H, 0, len(bookmarks))
	for _, bookmark := range bookmarks {
		payload = append(payload, gin.H{
			"id":         bookmark.ID,
			"created_at": bookmark.CreatedAt,
			"post":       publicPostSummary(bookmark.Post),
		})
	}
	c.JSON(http.StatusOK, gin.H{"bookmarks": payload})
}

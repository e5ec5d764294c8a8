package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/letopis/letopis/internal/service"
)

// SiteOverview returns totals and the most viewed posts for the dashboard.
func (a *API) SiteOverview(c *gin.Context) {
	limit := parsePositiveInt(c.Query("limit"), 10)
	overview, err := a.analytics.Overview(limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load overview")
		return
	}
	c.JSON(http.StatusOK, gin.H{"overview": overview})
}

// PostViews returns the recent raw view records for one post.
func (a *API) PostViews(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	limit := parsePositiveInt(c.Query("limit"), 50)
	views, err := a.analytics.RecentViews(id, limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load views")
		return
	}
	c.JSON(http.StatusOK, gin.H{"views": views})
}

// GetProfile returns the logged in author's profile.
func (a *API) GetProfile(c *gin.Context) {
	author, err := a.authors.Get(currentUserID(c))
	if err != nil {
		respondAuthorError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"author": author})
}

// UpdateProfile edits the logged in author's profile fields.
func (a *API) UpdateProfile(c *gin.Context) {
	var payload struct {
		Name      string `json:"name"`
		Bio       string `json:"bio"`
		Avatar    string `json:"avatar"`
		Email     string `json:"email"`
		Website   string `json:"website"`
		Twitter   string `json:"twitter"`
		Instagram string `json:"instagram"`
		Verified  bool   `json:"verified"`
	}
	if !bindJSON(c, &payload, "invalid profile payload") {
		return
	}

	author, err := a.authors.UpdateProfile(currentUserID(c), service.AuthorInput{
		Name:      payload.Name,
		Bio:       payload.Bio,
		Avatar:    payload.Avatar,
		Email:     payload.Email,
		Website:   payload.Website,
		Twitter:   payload.Twitter,
		Instagram: payload.Instagram,
		Verified:  payload.Verified,
	})
	if err != nil {
		respondAuthorError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"author": author})
}

func respondAuthorError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAuthorNotFound):
		respondError(c, http.StatusNotFound, "author not found")
	case errors.Is(err, service.ErrAuthorNameTaken):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "author operation failed")
	}
}

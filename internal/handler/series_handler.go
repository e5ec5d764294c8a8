package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/letopis/letopis/internal/db"
	"github.com/letopis/letopis/internal/service"
)

type seriesPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CoverImage  string `json:"cover_image"`
}

// ListPublicSeries returns all series.
func (a *API) ListPublicSeries(c *gin.Context) {
	series, err := a.series.ListAll()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load series")
		return
	}

	payload := make([]gin.H, 0, len(series))
	for _, item := range series {
		payload = append(payload, gin.H{
			"id":          item.ID,
			"title":       item.Title,
			"slug":        item.Slug,
			"description": item.Description,
			"cover_image": item.CoverImage,
		})
	}
	c.JSON(http.StatusOK, gin.H{"series": payload})
}

// GetPublicSeries returns one series by slug with its publicly visible
// entries in reading order.
func (a *API) GetPublicSeries(c *gin.Context) {
	series, err := a.series.GetBySlug(c.Param("slug"))
	if err != nil {
		respondSeriesError(c, err)
		return
	}

	now := time.Now()
	entries := make([]gin.H, 0, len(series.Entries))
	for _, entry := range series.Entries {
		if !entry.Post.PubliclyVisible(now) {
			continue
		}
		entries = append(entries, gin.H{
			"order": entry.OrderIndex,
			"post":  publicPostSummary(entry.Post),
		})
	}

	c.JSON(http.StatusOK, gin.H{"series": gin.H{
		"id":          series.ID,
		"title":       series.Title,
		"slug":        series.Slug,
		"description": series.Description,
		"cover_image": series.CoverImage,
		"entries":     entries,
	}})
}

// CreateSeries adds an empty series owned by the logged in author.
func (a *API) CreateSeries(c *gin.Context) {
	var payload seriesPayload
	if !bindJSON(c, &payload, "invalid series payload") {
		return
	}

	series, err := a.series.Create(service.SeriesInput{
		Title:       payload.Title,
		Description: payload.Description,
		CoverImage:  payload.CoverImage,
		AuthorID:    currentUserID(c),
	})
	if err != nil {
		respondSeriesError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"series": series})
}

// UpdateSeries edits series metadata.
func (a *API) UpdateSeries(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var payload seriesPayload
	if !bindJSON(c, &payload, "invalid series payload") {
		return
	}

	series, err := a.series.Update(id, service.SeriesInput{
		Title:       payload.Title,
		Description: payload.Description,
		CoverImage:  payload.CoverImage,
	})
	if err != nil {
		respondSeriesError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"series": series})
}

// DeleteSeries removes a series; posts in it are untouched.
func (a *API) DeleteSeries(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.series.Delete(id); err != nil {
		respondSeriesError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// AddSeriesPost inserts a post into a series at the given position.
// Position 0 or past the end appends.
func (a *API) AddSeriesPost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var payload struct {
		PostID   uint `json:"post_id"`
		Position int  `json:"position"`
	}
	if !bindJSON(c, &payload, "invalid series entry payload") {
		return
	}

	if err := a.series.AddPost(id, payload.PostID, payload.Position); err != nil {
		respondSeriesError(c, err)
		return
	}
	a.respondSeriesEntries(c, id)
}

// RemoveSeriesPost takes a post out of a series and closes the gap.
func (a *API) RemoveSeriesPost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	postID, err := parseUintParam(c, "postId")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.series.RemovePost(id, postID); err != nil {
		respondSeriesError(c, err)
		return
	}
	a.respondSeriesEntries(c, id)
}

// ReorderSeries rewrites the reading order from a full list of post ids.
func (a *API) ReorderSeries(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var payload struct {
		PostIDs []uint `json:"post_ids"`
	}
	if !bindJSON(c, &payload, "invalid reorder payload") {
		return
	}

	if err := a.series.Reorder(id, payload.PostIDs); err != nil {
		respondSeriesError(c, err)
		return
	}
	a.respondSeriesEntries(c, id)
}

func (a *API) respondSeriesEntries(c *gin.Context, id uint) {
	series, err := a.series.Get(id)
	if err != nil {
		respondSeriesError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": seriesEntriesPayload(series.Entries)})
}

func seriesEntriesPayload(entries []db.SeriesPost) []gin.H {
	payload := make([]gin.H, 0, len(entries))
	for _, entry := range entries {
		payload = append(payload, gin.H{
			"order":   entry.OrderIndex,
			"post_id": entry.PostID,
			"title":   entry.Post.Title,
			"slug":    entry.Post.Slug,
		})
	}
	return payload
}

func respondSeriesError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSeriesNotFound):
		respondError(c, http.StatusNotFound, "series not found")
	case errors.Is(err, service.ErrPostNotFound):
		respondError(c, http.StatusNotFound, "post not found")
	case errors.Is(err, service.ErrSeriesTitleRequired),
		errors.Is(err, service.ErrPostAlreadyInSeries),
		errors.Is(err, service.ErrPostNotInSeries):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "series operation failed")
	}
}

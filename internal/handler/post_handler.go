package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/letopis/letopis/internal/db"
	"github.com/letopis/letopis/internal/service"
)

type postPayload struct {
	Title           *string   `json:"title"`
	Excerpt         *string   `json:"excerpt"`
	Content         *string   `json:"content"`
	CoverImage      *string   `json:"cover_image"`
	Tags            *[]string `json:"tags"`
	Featured        *bool     `json:"featured"`
	MetaDescription *string   `json:"meta_description"`
	MetaKeywords    *string   `json:"meta_keywords"`
	CategoryIDs     *[]uint   `json:"category_ids"`
}

// CreatePost creates a draft post owned by the logged in author.
func (a *API) CreatePost(c *gin.Context) {
	var payload postPayload
	if !bindJSON(c, &payload, "invalid post payload") {
		return
	}

	input := service.PostInput{AuthorID: currentUserID(c)}
	if payload.Title != nil {
		input.Title = *payload.Title
	}
	if payload.Excerpt != nil {
		input.Excerpt = *payload.Excerpt
	}
	if payload.Content != nil {
		input.Content = *payload.Content
	}
	if payload.CoverImage != nil {
		input.CoverImage = *payload.CoverImage
	}
	if payload.Tags != nil {
		input.Tags = *payload.Tags
	}
	if payload.Featured != nil {
		input.Featured = *payload.Featured
	}
	if payload.MetaDescription != nil {
		input.MetaDescription = *payload.MetaDescription
	}
	if payload.MetaKeywords != nil {
		input.MetaKeywords = *payload.MetaKeywords
	}
	if payload.CategoryIDs != nil {
		input.CategoryIDs = *payload.CategoryIDs
	}

	post, err := a.posts.Create(input)
	if err != nil {
		respondPostError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"post": post})
}

// UpdatePost applies a partial update; absent JSON fields stay untouched.
func (a *API) UpdatePost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var payload postPayload
	if !bindJSON(c, &payload, "invalid post payload") {
		return
	}

	post, err := a.posts.Update(id, service.PostUpdate{
		Title:           payload.Title,
		Excerpt:         payload.Excerpt,
		Content:         payload.Content,
		CoverImage:      payload.CoverImage,
		Tags:            payload.Tags,
		Featured:        payload.Featured,
		MetaDescription: payload.MetaDescription,
		MetaKeywords:    payload.MetaKeywords,
		CategoryIDs:     payload.CategoryIDs,
	})
	if err != nil {
		respondPostError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

// GetPost returns one post with author and categories, any status.
func (a *API) GetPost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	post, err := a.posts.Get(id)
	if err != nil {
		respondPostError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

// PublishPost makes a post publicly visible, optionally backdated.
func (a *API) PublishPost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var payload struct {
		PublishedAt *time.Time `json:"published_at"`
	}
	if c.Request.ContentLength > 0 && !bindJSON(c, &payload, "invalid publish payload") {
		return
	}

	post, err := a.posts.Publish(id, payload.PublishedAt)
	if err != nil {
		respondPostError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

// SchedulePost queues a post for publication at a future time.
func (a *API) SchedulePost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var payload struct {
		ScheduledAt time.Time `json:"scheduled_at"`
	}
	if !bindJSON(c, &payload, "invalid schedule payload") {
		return
	}

	post, err := a.posts.Schedule(id, payload.ScheduledAt)
	if err != nil {
		respondPostError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

// ArchivePost withdraws a post from the public site without deleting it.
func (a *API) ArchivePost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	post, err := a.posts.Archive(id)
	if err != nil {
		respondPostError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

// DeletePost removes a post and everything hanging off it.
func (a *API) DeletePost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.posts.Delete(id); err != nil {
		respondPostError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ListPosts is the paginated admin listing with filters and counters.
func (a *API) ListPosts(c *gin.Context) {
	filter := service.PostFilter{
		Search:  c.Query("search"),
		Status:  c.Query("status"),
		Page:    parsePositiveInt(c.Query("page"), 1),
		PerPage: parsePositiveInt(c.Query("per_page"), 20),
	}
	if raw := c.Query("category"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			filter.CategoryID = uint(id)
		}
	}
	if raw := c.Query("start_date"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			filter.StartDate = &t
		}
	}
	if raw := c.Query("end_date"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			end := t.Add(24*time.Hour - time.Second)
			filter.EndDate = &end
		}
	}

	result, err := a.posts.List(filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load posts")
		return
	}

	stats, err := a.analytics.PostStatsMap(postIDs(result.Posts))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load view stats")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":           result.Posts,
		"total":           result.Total,
		"published_count": result.PublishedCount,
		"draft_count":     result.DraftCount,
		"total_pages":     result.TotalPages,
		"page":            result.Page,
		"per_page":        result.PerPage,
		"view_stats":      stats,
	})
}

func postIDs(posts []db.Post) []uint {
	ids := make([]uint, 0, len(posts))
	for _, post := range posts {
		ids = append(ids, post.ID)
	}
	return ids
}

func respondPostError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		respondError(c, http.StatusNotFound, "post not found")
	case errors.Is(err, service.ErrTitleRequired),
		errors.Is(err, service.ErrContentRequired),
		errors.Is(err, service.ErrScheduleInPast),
		errors.Is(err, service.ErrCategoryNotFound):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "post operation failed")
	}
}

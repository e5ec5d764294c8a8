package handler

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/letopis/letopis/internal/db"
	"github.com/letopis/letopis/internal/service"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// renderMarkdown converts post content to sanitized HTML.
func renderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(content), &buf); err != nil {
		return ""
	}
	return sanitizer.Sanitize(buf.String())
}

// ListPublicPosts returns the filtered, sorted public listing.
// Query parameters: category (id, empty or "all" for every category),
// featured (true/false) and sort (newest|oldest|popular).
func (a *API) ListPublicPosts(c *gin.Context) {
	posts, err := a.posts.ListPublished()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load posts")
		return
	}

	filter := service.ListFilter{Sort: c.DefaultQuery("sort", service.SortNewest)}
	if raw := strings.TrimSpace(c.Query("category")); raw != "" && raw != "all" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid category")
			return
		}
		filter.CategoryID = uint(id)
	}
	filter.FeaturedOnly = c.Query("featured") == "true"

	visible := service.DeriveVisibleList(posts, filter, time.Now())

	payload := make([]gin.H, 0, len(visible))
	for _, post := range visible {
		payload = append(payload, publicPostSummary(post))
	}
	c.JSON(http.StatusOK, gin.H{"posts": payload, "total": len(payload)})
}

// GetPublicPost returns one post by slug, its rendered content and the
// approved comment tree, and arms the deferred view record for this visit.
func (a *API) GetPublicPost(c *gin.Context) {
	post, err := a.posts.GetBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			respondError(c, http.StatusNotFound, "post not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to load post")
		return
	}
	if !post.PubliclyVisible(time.Now()) {
		respondError(c, http.StatusNotFound, "post not found")
		return
	}

	comments, err := a.comments.ApprovedTree(post.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load comments")
		return
	}

	// Every page load is its own visit: the token is minted per render,
	// handed to the client and echoed by the cancel beacon. Revisiting
	// the same post later gets a fresh token and counts again.
	visitToken := uuid.New().String()
	a.tracker.Begin(
		visitToken,
		post.ID,
		c.ClientIP(),
		c.Request.UserAgent(),
		c.Request.Referer(),
	)

	body := publicPostSummary(*post)
	body["visit_token"] = visitToken
	body["content"] = post.Content
	body["content_html"] = renderMarkdown(post.Content)
	body["meta_description"] = post.MetaDescription
	body["meta_keywords"] = post.MetaKeywords
	body["comments"] = commentTreePayload(comments)

	if userID := currentUserID(c); userID != 0 {
		bookmarked, err := a.bookmarks.IsBookmarked(userID, post.ID)
		if err == nil {
			body["bookmarked"] = bookmarked
		}
	}

	c.JSON(http.StatusOK, gin.H{"post": body})
}

// CancelPostView tears the pending view record down; readers bouncing off
// the page before the delay elapses never count. The beacon echoes the
// visit token issued with the post detail response.
func (a *API) CancelPostView(c *gin.Context) {
	var payload struct {
		VisitToken string `json:"visit_token"`
	}
	if !bindJSON(c, &payload, "invalid view cancel payload") {
		return
	}
	a.tracker.Cancel(payload.VisitToken)
	c.Status(http.StatusNoContent)
}

// ListPublicCategories returns all categories with published post counts.
func (a *API) ListPublicCategories(c *gin.Context) {
	categories, err := a.categories.ListAll()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load categories")
		return
	}
	counts, err := a.categories.PostCountMap()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load category counts")
		return
	}

	payload := make([]gin.H, 0, len(categories))
	for _, category := range categories {
		payload = append(payload, gin.H{
			"id":          category.ID,
			"name":        category.Name,
			"slug":        category.Slug,
			"description": category.Description,
			"color":       category.Color,
			"icon":        category.Icon,
			"post_count":  counts[category.ID],
		})
	}
	c.JSON(http.StatusOK, gin.H{"categories": payload})
}

func publicPostSummary(post db.Post) gin.H {
	categories := make([]gin.H, 0, len(post.Categories))
	for _, category := range post.Categories {
		categories = append(categories, gin.H{
			"id":   category.ID,
			"name": category.Name,
			"slug": category.Slug,
		})
	}

	author := gin.H{}
	if post.Author.ID != 0 {
		author = gin.H{
			"id":       post.Author.ID,
			"name":     post.Author.Name,
			"avatar":   post.Author.Avatar,
			"verified": post.Author.Verified,
		}
	}

	return gin.H{
		"id":           post.ID,
		"slug":         post.Slug,
		"title":        post.Title,
		"excerpt":      post.Excerpt,
		"cover_image":  post.CoverImage,
		"author":       author,
		"published_at": post.PublishedAt,
		"reading_time": post.ReadingTime,
		"tags":         post.Tags,
		"featured":     post.Featured,
		"view_count":   post.ViewCount,
		"categories":   categories,
	}
}

func commentTreePayload(nodes []service.CommentNode) []gin.H {
	payload := make([]gin.H, 0, len(nodes))
	for _, node := range nodes {
		payload = append(payload, gin.H{
			"id":          node.ID,
			"author_name": node.AuthorName,
			"content":     node.Content,
			"created_at":  node.CreatedAt,
			"replies":     commentTreePayload(node.Replies),
		})
	}
	return payload
}

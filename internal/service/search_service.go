package service

import (
	"strings"
	"time"

	"github.com/letopis/letopis/internal/db"
	"gorm.io/gorm"
)

// SearchResult is one ranked row returned by the search procedure.
type SearchResult struct {
	db.Post
	Rank int `gorm:"column:rank"`
}

// SearchService runs ranked full-text search over publicly visible posts.
// Ranking is delegated to the SQL engine: title matches weigh 4, excerpt 2,
// content 1, with recency as the tie breaker. Callers must preserve the
// returned order.
type SearchService struct {
	db *gorm.DB
}

// NewSearchService creates a SearchService instance.
func NewSearchService(gdb *gorm.DB) *SearchService {
	return &SearchService{db: gdb}
}

// Search returns ranked matches for the query. A blank or whitespace-only
// query returns an empty result without touching the store.
func (s *SearchService) Search(query string) ([]SearchResult, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return []SearchResult{}, nil
	}

	pattern := "%" + trimmed + "%"
	now := time.Now()

	var results []SearchResult
	err := s.db.Raw(`
		SELECT posts.*,
			(CASE WHEN title LIKE @q THEN 4 ELSE 0 END +
			 CASE WHEN excerpt LIKE @q THEN 2 ELSE 0 END +
			 CASE WHEN content LIKE @q THEN 1 ELSE 0 END) AS rank
		FROM posts
		WHERE deleted_at IS NULL
		  AND status = @status
		  AND published_at IS NOT NULL
		  AND published_at <= @now
		  AND (title LIKE @q OR excerpt LIKE @q OR content LIKE @q)
		ORDER BY rank DESC, published_at DESC`,
		map[string]interface{}{"q": pattern, "status": db.PostStatusPublished, "now": now},
	).Scan(&results).Error
	if err != nil {
		return nil, err
	}

	if results == nil {
		results = []SearchResult{}
	}
	return results, nil
}

package service

import (
	"cmp"
	"slices"
	"time"

	"github.com/letopis/letopis/internal/db"
)

// Sort keys accepted by the public listing.
const (
	SortNewest  = "newest"
	SortOldest  = "oldest"
	SortPopular = "popular"
)

// ListFilter is the reader-facing filter state of the post listing.
// A zero CategoryID means "all categories".
type ListFilter struct {
	CategoryID   uint
	FeaturedOnly bool
	Sort         string
}

// DeriveVisibleList derives the ordered subset of posts to render for the
// given filter. It is a pure function: the input slice is not mutated and
// identical inputs always yield an identical ordering.
//
// Only publicly visible posts survive. Category filtering is an exact
// membership test against the post's category set. Sorting is stable, so
// ties under the popular key keep their insertion order.
func DeriveVisibleList(posts []db.Post, filter ListFilter, now time.Time) []db.Post {
	visible := make([]db.Post, 0, len(posts))
	for _, post := range posts {
		if !post.PubliclyVisible(now) {
			continue
		}
		if filter.CategoryID != 0 && !inCategory(post, filter.CategoryID) {
			continue
		}
		if filter.FeaturedOnly && !post.Featured {
			continue
		}
		visible = append(visible, post)
	}

	switch filter.Sort {
	case SortOldest:
		slices.SortStableFunc(visible, func(a, b db.Post) int {
			return a.SortTime().Compare(b.SortTime())
		})
	case SortPopular:
		slices.SortStableFunc(visible, func(a, b db.Post) int {
			return cmp.Compare(b.ViewCount, a.ViewCount)
		})
	default: // SortNewest
		slices.SortStableFunc(visible, func(a, b db.Post) int {
			return b.SortTime().Compare(a.SortTime())
		})
	}

	return visible
}

func inCategory(post db.Post, categoryID uint) bool {
	for _, category := range post.Categories {
		if category.ID == categoryID {
			return true
		}
	}
	return false
}

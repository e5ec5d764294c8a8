package service

import (
	"slices"
	"testing"
	"time"

	"github.com/letopis/letopis/internal/db"
	"gorm.io/gorm"
)

func timePtr(t time.Time) *time.Time {
	return &t
}

func visiblePost(id uint, publishedAt time.Time) db.Post {
	return db.Post{
		Model:       gorm.Model{ID: id, CreatedAt: publishedAt},
		Status:      db.PostStatusPublished,
		PublishedAt: timePtr(publishedAt),
	}
}

func idsOf(posts []db.Post) []uint {
	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestDeriveVisibleListExcludesIneligiblePosts(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	posts := []db.Post{
		visiblePost(1, now.AddDate(0, -1, 0)),
		{Model: gorm.Model{ID: 2}, Status: db.PostStatusDraft},
		{Model: gorm.Model{ID: 3}, Status: db.PostStatusPublished, PublishedAt: nil},
		{Model: gorm.Model{ID: 4}, Status: db.PostStatusArchived, PublishedAt: timePtr(now.AddDate(0, -2, 0))},
		{Model: gorm.Model{ID: 5}, Status: db.PostStatusScheduled, ScheduledAt: timePtr(now.AddDate(0, 1, 0))},
		// Published but dated in the future: not yet visible.
		{Model: gorm.Model{ID: 6}, Status: db.PostStatusPublished, PublishedAt: timePtr(now.AddDate(0, 0, 1))},
	}

	filters := []ListFilter{
		{},
		{Sort: SortOldest},
		{Sort: SortPopular},
		{FeaturedOnly: true},
		{CategoryID: 7},
	}

	for _, filter := range filters {
		for _, got := range DeriveVisibleList(posts, filter, now) {
			if got.ID != 1 {
				t.Errorf("filter %+v let ineligible post %d through", filter, got.ID)
			}
		}
	}
}

func TestDeriveVisibleListWorkedExample(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	posts := []db.Post{
		{
			Model:       gorm.Model{ID: 1},
			Status:      db.PostStatusPublished,
			PublishedAt: timePtr(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
			ViewCount:   5,
			Tags:        []string{"Историја"},
		},
		{Model: gorm.Model{ID: 2}, Status: db.PostStatusDraft},
		{
			Model:       gorm.Model{ID: 3},
			Status:      db.PostStatusPublished,
			PublishedAt: timePtr(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
			Featured:    true,
			ViewCount:   20,
			Tags:        []string{"Култура"},
		},
	}

	got := DeriveVisibleList(posts, ListFilter{Sort: SortNewest}, now)
	if want := []uint{3, 1}; !slices.Equal(idsOf(got), want) {
		t.Fatalf("newest over all categories = %v, want %v", idsOf(got), want)
	}

	got = DeriveVisibleList(posts, ListFilter{Sort: SortNewest, FeaturedOnly: true}, now)
	if want := []uint{3}; !slices.Equal(idsOf(got), want) {
		t.Fatalf("featured only = %v, want %v", idsOf(got), want)
	}
}

func TestDeriveVisibleListCategoryMembership(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	history := db.Category{Model: gorm.Model{ID: 10}, Name: "Историја"}
	culture := db.Category{Model: gorm.Model{ID: 11}, Name: "Култура"}

	a := visiblePost(1, now.AddDate(0, -3, 0))
	a.Categories = []db.Category{history}
	b := visiblePost(2, now.AddDate(0, -2, 0))
	b.Categories = []db.Category{culture, history}
	c := visiblePost(3, now.AddDate(0, -1, 0))

	posts := []db.Post{a, b, c}

	got := DeriveVisibleList(posts, ListFilter{CategoryID: history.ID, Sort: SortOldest}, now)
	if want := []uint{1, 2}; !slices.Equal(idsOf(got), want) {
		t.Fatalf("history category = %v, want %v", idsOf(got), want)
	}

	got = DeriveVisibleList(posts, ListFilter{CategoryID: culture.ID}, now)
	if want := []uint{2}; !slices.Equal(idsOf(got), want) {
		t.Fatalf("culture category = %v, want %v", idsOf(got), want)
	}

	if got = DeriveVisibleList(posts, ListFilter{CategoryID: 99}, now); len(got) != 0 {
		t.Fatalf("unknown category returned %v, want empty", idsOf(got))
	}
}

func TestDeriveVisibleListSortOrders(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	posts := []db.Post{
		visiblePost(1, now.AddDate(0, -1, 0)),
		visiblePost(2, now.AddDate(0, -4, 0)),
		visiblePost(3, now.AddDate(0, -2, 0)),
		visiblePost(4, now.AddDate(0, -3, 0)),
	}
	posts[0].ViewCount = 7
	posts[1].ViewCount = 30
	posts[2].ViewCount = 7
	posts[3].ViewCount = 1

	newest := DeriveVisibleList(posts, ListFilter{Sort: SortNewest}, now)
	oldest := DeriveVisibleList(posts, ListFilter{Sort: SortOldest}, now)

	reversed := slices.Clone(idsOf(oldest))
	slices.Reverse(reversed)
	if !slices.Equal(idsOf(newest), reversed) {
		t.Fatalf("newest %v is not the reverse of oldest %v", idsOf(newest), idsOf(oldest))
	}

	popular := DeriveVisibleList(posts, ListFilter{Sort: SortPopular}, now)
	for i := 1; i < len(popular); i++ {
		if popular[i-1].ViewCount < popular[i].ViewCount {
			t.Fatalf("popular order violated at %d: %v", i, idsOf(popular))
		}
	}
	// Stable sort keeps insertion order for the tied view counts.
	if want := []uint{2, 1, 3, 4}; !slices.Equal(idsOf(popular), want) {
		t.Fatalf("popular = %v, want %v", idsOf(popular), want)
	}
}

func TestDeriveVisibleListIsIdempotentAndPure(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	posts := []db.Post{
		visiblePost(3, now.AddDate(0, -2, 0)),
		visiblePost(1, now.AddDate(0, -1, 0)),
		{Model: gorm.Model{ID: 9}, Status: db.PostStatusDraft},
		visiblePost(2, now.AddDate(0, -3, 0)),
	}
	originalOrder := idsOf(posts)

	filter := ListFilter{Sort: SortNewest}
	once := DeriveVisibleList(posts, filter, now)
	twice := DeriveVisibleList(once, filter, now)

	if !slices.Equal(idsOf(once), idsOf(twice)) {
		t.Fatalf("not idempotent: %v then %v", idsOf(once), idsOf(twice))
	}
	if !slices.Equal(idsOf(posts), originalOrder) {
		t.Fatalf("input mutated: %v, want %v", idsOf(posts), originalOrder)
	}
}

package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/letopis/letopis/internal/db"
	"github.com/letopis/letopis/internal/slug"
	"gorm.io/gorm"
)

var (
	ErrTitleRequired    = errors.New("post title is required")
	ErrContentRequired  = errors.New("post content is required")
	ErrCategoryNotFound = errors.New("category not found")
	ErrScheduleInPast   = errors.New("scheduled time is in the past")
)

const readingWordsPerMinute = 200

// PostService wraps post related database operations.
type PostService struct {
	db *gorm.DB
}

// NewPostService creates a PostService instance.
func NewPostService(gdb *gorm.DB) *PostService {
	return &PostService{db: gdb}
}

// PostInput represents fields accepted when creating a post.
type PostInput struct {
	Title           string
	Slug            string
	Excerpt         string
	Content         string
	CoverImage      string
	AuthorID        uint
	Tags            []string
	Featured        bool
	MetaDescription string
	MetaKeywords    string
	CategoryIDs     []uint
}

// PostUpdate carries a partial update; only non-nil fields change.
type PostUpdate struct {
	Title           *string
	Excerpt         *string
	Content         *string
	CoverImage      *string
	Tags            *[]string
	Featured        *bool
	MetaDescription *string
	MetaKeywords    *string
	CategoryIDs     *[]uint
}

// PostFilter describes filters for the admin post list.
type PostFilter struct {
	Search     string
	Status     string
	CategoryID uint
	StartDate  *time.Time
	EndDate    *time.Time
	Page       int
	PerPage    int
}

// PostListResult aggregates paginated list data and counters.
type PostListResult struct {
	Posts          []db.Post
	Total          int64
	PublishedCount int64
	DraftCount     int64
	TotalPages     int
	Page           int
	PerPage        int
}

// Create persists a draft post and associates categories in a transaction.
func (s *PostService) Create(input PostInput) (*db.Post, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, ErrContentRequired
	}

	post := db.Post{
		Title:           title,
		Excerpt:         strings.TrimSpace(input.Excerpt),
		Content:         input.Content,
		CoverImage:      strings.TrimSpace(input.CoverImage),
		AuthorID:        input.AuthorID,
		Tags:            input.Tags,
		Featured:        input.Featured,
		Status:          db.PostStatusDraft,
		MetaDescription: input.MetaDescription,
		MetaKeywords:    input.MetaKeywords,
		ReadingTime:     calculateReadingTime(input.Content),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		post.Slug, err = s.uniqueSlug(tx, input.Slug, title, 0)
		if err != nil {
			return err
		}
		if err := tx.Create(&post).Error; err != nil {
			return err
		}
		return s.replaceCategories(tx, &post, input.CategoryIDs)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(post.ID)
}

// Update applies a partial update to an existing post.
func (s *PostService) Update(id uint, update PostUpdate) (*db.Post, error) {
	var existing db.Post
	if err := s.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if update.Title != nil {
			title := strings.TrimSpace(*update.Title)
			if title == "" {
				return ErrTitleRequired
			}
			if title != existing.Title {
				newSlug, err := s.uniqueSlug(tx, "", title, existing.ID)
				if err != nil {
					return err
				}
				existing.Slug = newSlug
			}
			existing.Title = title
		}
		if update.Excerpt != nil {
			existing.Excerpt = strings.TrimSpace(*update.Excerpt)
		}
		if update.Content != nil {
			if strings.TrimSpace(*update.Content) == "" {
				return ErrContentRequired
			}
			existing.Content = *update.Content
			existing.ReadingTime = calculateReadingTime(*update.Content)
		}
		if update.CoverImage != nil {
			existing.CoverImage = strings.TrimSpace(*update.CoverImage)
		}
		if update.Tags != nil {
			existing.Tags = *update.Tags
		}
		if update.Featured != nil {
			existing.Featured = *update.Featured
		}
		if update.MetaDescription != nil {
			existing.MetaDescription = *update.MetaDescription
		}
		if update.MetaKeywords != nil {
			existing.MetaKeywords = *update.MetaKeywords
		}

		if err := tx.Save(&existing).Error; err != nil {
			return err
		}
		if update.CategoryIDs != nil {
			return s.replaceCategories(tx, &existing, *update.CategoryIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(id)
}

// Get fetches a post by id with author and categories preloaded.
func (s *PostService) Get(id uint) (*db.Post, error) {
	var post db.Post
	if err := s.db.Preload("Author").Preload("Categories").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetBySlug fetches a post by its slug.
func (s *PostService) GetBySlug(postSlug string) (*db.Post, error) {
	var post db.Post
	if err := s.db.Preload("Author").Preload("Categories").
		Where("slug = ?", postSlug).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// Publish makes a post publicly visible. A nil publishedAt publishes now.
func (s *PostService) Publish(id uint, publishedAt *time.Time) (*db.Post, error) {
	post, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(post.Title) == "" {
		return nil, ErrTitleRequired
	}
	if strings.TrimSpace(post.Content) == "" {
		return nil, ErrContentRequired
	}

	publishTime := time.Now()
	if publishedAt != nil && !publishedAt.IsZero() {
		publishTime = *publishedAt
	}

	updates := map[string]interface{}{
		"status":       db.PostStatusPublished,
		"published_at": publishTime,
		"scheduled_at": nil,
	}
	if err := s.db.Model(&db.Post{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}

	return s.Get(id)
}

// Schedule queues a post for automatic publication at a future time.
func (s *PostService) Schedule(id uint, at time.Time) (*db.Post, error) {
	if !at.After(time.Now()) {
		return nil, ErrScheduleInPast
	}
	post, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(post.Content) == "" {
		return nil, ErrContentRequired
	}

	updates := map[string]interface{}{
		"status":       db.PostStatusScheduled,
		"scheduled_at": at,
	}
	if err := s.db.Model(&db.Post{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Archive removes a post from public surfaces without deleting it.
func (s *PostService) Archive(id uint) (*db.Post, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}
	if err := s.db.Model(&db.Post{}).Where("id = ?", id).
		Update("status", db.PostStatusArchived).Error; err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Delete removes a post and everything hanging off it: comments, view
// records, series memberships, bookmarks and category associations.
func (s *PostService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var post db.Post
		if err := tx.First(&post, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}

		if err := tx.Where("post_id = ?", id).Delete(&db.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&db.PostView{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&db.SeriesPost{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&db.Bookmark{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&post).Association("Categories").Clear(); err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
}

// ListPublished returns every publicly visible post, newest first, with
// author and categories preloaded. The result feeds DeriveVisibleList.
func (s *PostService) ListPublished() ([]db.Post, error) {
	var posts []db.Post
	if err := s.db.Preload("Author").Preload("Categories").
		Where("status = ? AND published_at IS NOT NULL AND published_at <= ?", db.PostStatusPublished, time.Now()).
		Order("published_at desc, id desc").
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// List provides paginated posts with aggregated counters based on filters.
func (s *PostService) List(filter PostFilter) (*PostListResult, error) {
	result := &PostListResult{Page: filter.Page, PerPage: filter.PerPage}
	if result.Page <= 0 {
		result.Page = 1
	}
	if result.PerPage <= 0 {
		result.PerPage = 10
	}

	modelQuery := s.applyFilters(s.db.Model(&db.Post{}), filter, true)
	if err := modelQuery.Count(&result.Total).Error; err != nil {
		return nil, err
	}

	offset := (result.Page - 1) * result.PerPage

	var posts []db.Post
	dataQuery := s.applyFilters(s.db.Model(&db.Post{}).Preload("Author").Preload("Categories"), filter, true)

	orderBy := "posts.created_at desc"
	if strings.EqualFold(filter.Status, db.PostStatusPublished) {
		orderBy = "posts.published_at desc, posts.id desc"
	}

	if err := dataQuery.Order(orderBy).Limit(result.PerPage).Offset(offset).Find(&posts).Error; err != nil {
		return nil, err
	}

	filterWithoutStatus := filter
	filterWithoutStatus.Status = ""
	baseCounter := s.applyFilters(s.db.Model(&db.Post{}), filterWithoutStatus, false)

	if err := baseCounter.Session(&gorm.Session{}).Where("posts.status = ?", db.PostStatusPublished).Count(&result.PublishedCount).Error; err != nil {
		return nil, err
	}
	if err := baseCounter.Session(&gorm.Session{}).Where("posts.status = ?", db.PostStatusDraft).Count(&result.DraftCount).Error; err != nil {
		return nil, err
	}

	if result.Total == 0 {
		result.TotalPages = 1
	} else {
		result.TotalPages = int((result.Total + int64(result.PerPage) - 1) / int64(result.PerPage))
	}

	result.Posts = posts
	return result, nil
}

func (s *PostService) applyFilters(query *gorm.DB, filter PostFilter, includeStatus bool) *gorm.DB {
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Where("(posts.title LIKE ? OR posts.excerpt LIKE ? OR posts.content LIKE ?)", search, search, search)
	}

	if includeStatus && filter.Status != "" {
		query = query.Where("posts.status = ?", filter.Status)
	}

	if filter.CategoryID != 0 {
		subQuery := s.db.Table("post_categories").
			Select("post_categories.post_id").
			Where("post_categories.category_id = ?", filter.CategoryID)
		query = query.Where("posts.id IN (?)", subQuery)
	}

	if filter.StartDate != nil {
		query = query.Where("posts.created_at >= ?", filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("posts.created_at <= ?", filter.EndDate)
	}

	return query
}

func (s *PostService) replaceCategories(tx *gorm.DB, post *db.Post, categoryIDs []uint) error {
	var categories []db.Category
	if len(categoryIDs) > 0 {
		if err := tx.Where("id IN ?", categoryIDs).Find(&categories).Error; err != nil {
			return err
		}
		if len(categories) != len(categoryIDs) {
			return ErrCategoryNotFound
		}
	}
	return tx.Model(post).Association("Categories").Replace(categories)
}

// uniqueSlug derives a slug from the explicit value or the title and
// suffixes it with a counter until no other post holds it.
func (s *PostService) uniqueSlug(tx *gorm.DB, explicit, title string, selfID uint) (string, error) {
	base := strings.TrimSpace(explicit)
	if base == "" || !slug.IsValid(base) {
		base = slug.Make(title)
	}
	if base == "" {
		base = "post"
	}

	candidate := base
	for attempt := 2; ; attempt++ {
		var count int64
		query := tx.Model(&db.Post{}).Where("slug = ?", candidate)
		if selfID != 0 {
			query = query.Where("id <> ?", selfID)
		}
		if err := query.Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, attempt)
	}
}

func calculateReadingTime(content string) int {
	words := len(strings.Fields(content))
	minutes := words / readingWordsPerMinute
	if words%readingWordsPerMinute != 0 {
		minutes++
	}
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

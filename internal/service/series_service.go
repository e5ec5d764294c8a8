package service

import (
	"errors"
	"strings"

	"github.com/letopis/letopis/internal/db"
	"github.com/letopis/letopis/internal/slug"
	"gorm.io/gorm"
)

var (
	ErrSeriesNotFound      = errors.New("series not found")
	ErrSeriesTitleRequired = errors.New("series title is required")
	ErrPostAlreadyInSeries = errors.New("post is already part of the series")
	ErrPostNotInSeries     = errors.New("post is not part of the series")
)

// SeriesService wraps series related database operations.
type SeriesService struct {
	db *gorm.DB
}

// NewSeriesService creates a SeriesService instance.
func NewSeriesService(gdb *gorm.DB) *SeriesService {
	return &SeriesService{db: gdb}
}

// SeriesInput represents fields accepted when creating or updating a series.
type SeriesInput struct {
	Title       string
	Description string
	CoverImage  string
	AuthorID    uint
}

// ListAll returns all series ordered by creation time descending.
func (s *SeriesService) ListAll() ([]db.Series, error) {
	var series []db.Series
	if err := s.db.Preload("Author").Order("created_at desc").Find(&series).Error; err != nil {
		return nil, err
	}
	return series, nil
}

// Get fetches a series with its entries ordered by position.
func (s *SeriesService) Get(id uint) (*db.Series, error) {
	var series db.Series
	if err := s.db.Preload("Author").
		Preload("Entries", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("series_posts.order_index asc")
		}).
		Preload("Entries.Post").
		First(&series, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSeriesNotFound
		}
		return nil, err
	}
	return &series, nil
}

// GetBySlug fetches a series by its slug, entries ordered by position.
func (s *SeriesService) GetBySlug(seriesSlug string) (*db.Series, error) {
	var series db.Series
	if err := s.db.Preload("Author").
		Preload("Entries", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("series_posts.order_index asc")
		}).
		Preload("Entries.Post").
		Where("slug = ?", seriesSlug).
		First(&series).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSeriesNotFound
		}
		return nil, err
	}
	return &series, nil
}

// Create persists a series.
func (s *SeriesService) Create(input SeriesInput) (*db.Series, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrSeriesTitleRequired
	}

	series := db.Series{
		Title:       title,
		Slug:        slug.Make(title),
		Description: strings.TrimSpace(input.Description),
		CoverImage:  strings.TrimSpace(input.CoverImage),
		AuthorID:    input.AuthorID,
	}
	if err := s.db.Create(&series).Error; err != nil {
		return nil, err
	}
	return &series, nil
}

// Update applies new metadata to a series.
func (s *SeriesService) Update(id uint, input SeriesInput) (*db.Series, error) {
	var series db.Series
	if err := s.db.First(&series, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSeriesNotFound
		}
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrSeriesTitleRequired
	}

	series.Title = title
	series.Slug = slug.Make(title)
	series.Description = strings.TrimSpace(input.Description)
	series.CoverImage = strings.TrimSpace(input.CoverImage)

	if err := s.db.Save(&series).Error; err != nil {
		return nil, err
	}
	return &series, nil
}

// Delete removes a series and its entries; the posts themselves stay.
func (s *SeriesService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var series db.Series
		if err := tx.First(&series, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSeriesNotFound
			}
			return err
		}
		if err := tx.Where("series_id = ?", id).Delete(&db.SeriesPost{}).Error; err != nil {
			return err
		}
		return tx.Delete(&series).Error
	})
}

// AddPost places a post at the given 1-based position, shifting later
// entries down. Position 0 or past the end appends.
func (s *SeriesService) AddPost(seriesID, postID uint, position int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var series db.Series
		if err := tx.First(&series, seriesID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSeriesNotFound
			}
			return err
		}
		var post db.Post
		if err := tx.First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}

		var existing int64
		if err := tx.Model(&db.SeriesPost{}).
			Where("series_id = ? AND post_id = ?", seriesID, postID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrPostAlreadyInSeries
		}

		var entries []db.SeriesPost
		if err := tx.Where("series_id = ?", seriesID).
			Order("order_index asc").Find(&entries).Error; err != nil {
			return err
		}

		if position < 1 || position > len(entries)+1 {
			position = len(entries) + 1
		}

		// Shift from the tail so the (series, order_index) uniqueness
		// constraint never sees a duplicate mid-flight.
		for i := len(entries) - 1; i >= position-1; i-- {
			if err := tx.Model(&db.SeriesPost{}).
				Where("id = ?", entries[i].ID).
				Update("order_index", entries[i].OrderIndex+1).Error; err != nil {
				return err
			}
		}

		entry := db.SeriesPost{SeriesID: seriesID, PostID: postID, OrderIndex: position}
		return tx.Create(&entry).Error
	})
}

// RemovePost takes a post out of a series and closes the position gap.
func (s *SeriesService) RemovePost(seriesID, postID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var entry db.SeriesPost
		if err := tx.Where("series_id = ? AND post_id = ?", seriesID, postID).
			First(&entry).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotInSeries
			}
			return err
		}
		if err := tx.Delete(&entry).Error; err != nil {
			return err
		}

		var later []db.SeriesPost
		if err := tx.Where("series_id = ? AND order_index > ?", seriesID, entry.OrderIndex).
			Order("order_index asc").Find(&later).Error; err != nil {
			return err
		}
		for _, e := range later {
			if err := tx.Model(&db.SeriesPost{}).
				Where("id = ?", e.ID).
				Update("order_index", e.OrderIndex-1).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Reorder rewrites the series to the given post order.
func (s *SeriesService) Reorder(seriesID uint, postIDs []uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var entries []db.SeriesPost
		if err := tx.Where("series_id = ?", seriesID).Find(&entries).Error; err != nil {
			return err
		}
		if len(entries) != len(postIDs) {
			return ErrPostNotInSeries
		}

		byPost := make(map[uint]db.SeriesPost, len(entries))
		for _, entry := range entries {
			byPost[entry.PostID] = entry
		}

		// Park every entry on a negative index first to stay clear of the
		// (series, order_index) uniqueness constraint while shuffling.
		for i, postID := range postIDs {
			entry, ok := byPost[postID]
			if !ok {
				return ErrPostNotInSeries
			}
			if err := tx.Model(&db.SeriesPost{}).
				Where("id = ?", entry.ID).
				Update("order_index", -(i + 1)).Error; err != nil {
				return err
			}
		}
		for i, postID := range postIDs {
			if err := tx.Model(&db.SeriesPost{}).
				Where("id = ?", byPost[postID].ID).
				Update("order_index", i+1).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

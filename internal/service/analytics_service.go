package service

import (
	"errors"

	"github.com/letopis/letopis/internal/db"
	"github.com/mileusna/useragent"
	"gorm.io/gorm"
)

// ErrPostNotFound is shared by post lookups across services.
var ErrPostNotFound = errors.New("post not found")

// AnalyticsService records page views and aggregates view statistics.
type AnalyticsService struct {
	db *gorm.DB
}

// NewAnalyticsService creates an AnalyticsService instance.
func NewAnalyticsService(gdb *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: gdb}
}

// RecordView appends one view record and increments the post's view counter
// by exactly one, as a single transaction. The counter update runs inside
// the SQL engine, so concurrent calls never lose an increment.
func (s *AnalyticsService) RecordView(postID uint, ip, userAgent, referrer string) error {
	if postID == 0 {
		return errors.New("invalid post id")
	}

	browser, osName, device := classifyUserAgent(userAgent)

	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&db.Post{}).
			Where("id = ?", postID).
			UpdateColumn("view_count", gorm.Expr("view_count + 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrPostNotFound
		}

		view := db.PostView{
			PostID:    postID,
			IPAddress: ip,
			UserAgent: userAgent,
			Referrer:  referrer,
			Browser:   browser,
			OS:        osName,
			Device:    device,
		}
		return tx.Create(&view).Error
	})
}

// PostStatsMap returns the view counters for the given posts. Posts without
// a counter simply do not appear in the result.
func (s *AnalyticsService) PostStatsMap(postIDs []uint) (map[uint]uint64, error) {
	result := make(map[uint]uint64, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		ID        uint
		ViewCount uint64
	}
	if err := s.db.Model(&db.Post{}).
		Select("id, view_count").
		Where("id IN ?", postIDs).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.ID] = row.ViewCount
	}
	return result, nil
}

// SiteOverview aggregates site level view data and the most read posts.
type SiteOverview struct {
	TotalViews      uint64
	PostCount       int64
	SubscriberCount int64
	TopPosts        []TopPostStat
}

// TopPostStat describes one entry of the most-read list.
type TopPostStat struct {
	PostID    uint
	Title     string
	Slug      string
	ViewCount uint64
}

// Overview sums site wide view counts and lists the top posts.
func (s *AnalyticsService) Overview(limit int) (SiteOverview, error) {
	if limit <= 0 {
		limit = 5
	}

	var overview SiteOverview

	var total struct {
		Views uint64
	}
	if err := s.db.Model(&db.Post{}).
		Select("COALESCE(SUM(view_count), 0) AS views").
		Scan(&total).Error; err != nil {
		return overview, err
	}
	overview.TotalViews = total.Views

	if err := s.db.Model(&db.Post{}).Count(&overview.PostCount).Error; err != nil {
		return overview, err
	}

	if err := s.db.Model(&db.NewsletterSubscription{}).
		Where("status = ?", db.SubscriptionStatusActive).
		Count(&overview.SubscriberCount).Error; err != nil {
		return overview, err
	}

	if err := s.db.Model(&db.Post{}).
		Select("id AS post_id, title, slug, view_count").
		Order("view_count DESC").
		Limit(limit).
		Scan(&overview.TopPosts).Error; err != nil {
		return overview, err
	}

	return overview, nil
}

// RecentViews returns the latest raw view records for a post, newest first.
func (s *AnalyticsService) RecentViews(postID uint, limit int) ([]db.PostView, error) {
	if limit <= 0 {
		limit = 50
	}

	var views []db.PostView
	if err := s.db.Where("post_id = ?", postID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&views).Error; err != nil {
		return nil, err
	}
	return views, nil
}

func classifyUserAgent(uaString string) (browser, osName, device string) {
	ua := useragent.Parse(uaString)

	browser = ua.Name
	osName = ua.OS
	if browser == "" {
		browser = "Unknown"
	}
	if osName == "" {
		osName = "Unknown"
	}

	switch {
	case ua.Bot:
		device = "bot"
	case ua.Mobile:
		device = "mobile"
	case ua.Tablet:
		device = "tablet"
	default:
		device = "desktop"
	}

	return browser, osName, device
}

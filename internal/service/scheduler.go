package service

import (
	"log"
	"time"

	"github.com/letopis/letopis/internal/db"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Scheduler publishes scheduled posts once their time arrives. It runs a
// minutely cron job; each tick flips every due post to published in one
// statement, using the scheduled time as the publication time.
type Scheduler struct {
	db   *gorm.DB
	cron *cron.Cron
}

// NewScheduler creates a stopped Scheduler instance.
func NewScheduler(gdb *gorm.DB) *Scheduler {
	return &Scheduler{db: gdb, cron: cron.New()}
}

// Start begins the minutely publication ticks.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("* * * * *", func() {
		published, err := s.PublishDue(time.Now())
		if err != nil {
			log.Printf("scheduled publish failed: %v", err)
			return
		}
		if published > 0 {
			log.Printf("published %d scheduled post(s)", published)
		}
	}); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the cron loop, waiting for a running tick to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// PublishDue publishes every scheduled post whose time has come and
// returns how many were flipped.
func (s *Scheduler) PublishDue(now time.Time) (int64, error) {
	result := s.db.Model(&db.Post{}).
		Where("status = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?", db.PostStatusScheduled, now).
		Updates(map[string]interface{}{
			"status":       db.PostStatusPublished,
			"published_at": gorm.Expr("scheduled_at"),
			"scheduled_at": nil,
		})
	return result.RowsAffected, result.Error
}

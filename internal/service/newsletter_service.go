package service

import (
	"errors"
	"strings"
	"time"

	"github.com/letopis/letopis/internal/db"
	"gorm.io/gorm"
)

var (
	ErrEmailRequired        = errors.New("email is required")
	ErrEmailInvalid         = errors.New("email is invalid")
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

// NewsletterService wraps newsletter subscription operations.
type NewsletterService struct {
	db *gorm.DB
}

// NewNewsletterService creates a NewsletterService instance.
func NewNewsletterService(gdb *gorm.DB) *NewsletterService {
	return &NewsletterService{db: gdb}
}

// Subscribe signs an email up, or re-activates a previous unsubscriber.
// Subscribing an already active email is a no-op rather than an error.
func (s *NewsletterService) Subscribe(email, name string) (*db.NewsletterSubscription, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	now := time.Now()

	var existing db.NewsletterSubscription
	err = s.db.Where("email = ?", normalized).First(&existing).Error
	switch {
	case err == nil:
		if existing.Status == db.SubscriptionStatusActive {
			return &existing, nil
		}
		existing.Status = db.SubscriptionStatusActive
		existing.SubscribedAt = now
		existing.UnsubscribedAt = nil
		if name != "" {
			existing.Name = name
		}
		if err := s.db.Save(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		subscription := db.NewsletterSubscription{
			Email:        normalized,
			Name:         name,
			Status:       db.SubscriptionStatusActive,
			SubscribedAt: now,
		}
		if err := s.db.Create(&subscription).Error; err != nil {
			return nil, err
		}
		return &subscription, nil
	default:
		return nil, err
	}
}

// Unsubscribe marks an email as unsubscribed, keeping the row for audit.
func (s *NewsletterService) Unsubscribe(email string) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	var existing db.NewsletterSubscription
	if err := s.db.Where("email = ?", normalized).First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubscriptionNotFound
		}
		return err
	}

	if existing.Status == db.SubscriptionStatusUnsubscribed {
		return nil
	}

	now := time.Now()
	existing.Status = db.SubscriptionStatusUnsubscribed
	existing.UnsubscribedAt = &now
	return s.db.Save(&existing).Error
}

// ListActive returns the active subscriber list, oldest first.
func (s *NewsletterService) ListActive() ([]db.NewsletterSubscription, error) {
	var subscriptions []db.NewsletterSubscription
	if err := s.db.Where("status = ?", db.SubscriptionStatusActive).
		Order("subscribed_at asc").
		Find(&subscriptions).Error; err != nil {
		return nil, err
	}
	return subscriptions, nil
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrEmailRequired
	}
	at := strings.Index(normalized, "@")
	if at < 1 || at == len(normalized)-1 || !strings.Contains(normalized[at+1:], ".") {
		return "", ErrEmailInvalid
	}
	return normalized, nil
}

package db

import (
	"time"

	"gorm.io/gorm"
)

// Newsletter subscription states.
const (
	SubscriptionStatusActive       = "active"
	SubscriptionStatusUnsubscribed = "unsubscribed"
)

// NewsletterSubscription tracks one email address on the mailing list.
type NewsletterSubscription struct {
	gorm.Model
	Email          string `gorm:"size:200;uniqueIndex;not null"`
	Name           string `gorm:"size:100"`
	Status         string `gorm:"size:20;default:active"`
	SubscribedAt   time.Time
	UnsubscribedAt *time.Time
}

// TableName avoids ambiguous pluralization.
func (NewsletterSubscription) TableName() string {
	return "newsletter_subscriptions"
}

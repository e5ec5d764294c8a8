package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/letopis/letopis/internal/service"
)

// SubscribeNewsletter signs an email up; re-subscribing is harmless.
func (a *API) SubscribeNewsletter(c *gin.Context) {
	var payload struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if !bindJSON(c, &payload, "invalid subscription payload") {
		return
	}

	subscription, err := a.newsletter.Subscribe(payload.Email, payload.Name)
	if err != nil {
		respondNewsletterError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscription": gin.H{
		"email":  subscription.Email,
		"status": subscription.Status,
	}})
}

// UnsubscribeNewsletter deactivates a subscription, keeping the record.
func (a *API) UnsubscribeNewsletter(c *gin.Context) {
	var payload struct {
		Email string `json:"email"`
	}
	if !bindJSON(c, &payload, "invalid unsubscribe payload") {
		return
	}

	if err := a.newsletter.Unsubscribe(payload.Email); err != nil {
		respondNewsletterError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ListSubscribers returns active subscriptions for the admin panel.
func (a *API) ListSubscribers(c *gin.Context) {
	subscriptions, err := a.newsletter.ListActive()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load subscribers")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"subscribers": subscriptions,
		"total":       len(subscriptions),
	})
}

func respondNewsletterError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmailRequired),
		errors.Is(err, service.ErrEmailInvalid):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrSubscriptionNotFound):
		respondError(c, http.StatusNotFound, "subscription not found")
	default:
		respondError(c, http.StatusInternalServerError, "newsletter operation failed")
	}
}

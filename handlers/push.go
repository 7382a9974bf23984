package handlers

import (
	"errors"
	"net/http"

	"puckline/database"
	"puckline/models"
	"puckline/services/subscription"
	"puckline/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PushHandler serves the client side of the subscription lifecycle.
type PushHandler struct {
	Subscriptions subscription.SubscriptionService
	PublicKey     string
}

func NewPushHandler(svc subscription.SubscriptionService, publicKey string) *PushHandler {
	return &PushHandler{Subscriptions: svc, PublicKey: publicKey}
}

// GetVAPIDPublicKeyHandler returns the application server key clients subscribe with.
func (h *PushHandler) GetVAPIDPublicKeyHandler(c *gin.Context) {
	if h.PublicKey == "" {
		utils.JSONError(c, http.StatusServiceUnavailable, "Push notifications are not configured", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"publicKey": h.PublicKey})
}

// SaveSubscriptionHandler upserts the caller's push subscription.
func (h *PushHandler) SaveSubscriptionHandler(c *gin.Context) {
	userID := c.GetString("userID")

	var req models.SaveSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	stored, err := h.Subscriptions.Save(c.Request.Context(), userID, req.Subscription)
	if err != nil {
		h.writeStoreError(c, "Failed to save subscription", err)
		return
	}

	getLogger(c).Info("Push subscription saved", zap.String("userID", userID))
	c.JSON(http.StatusCreated, gin.H{
		"id":         stored.ID,
		"created_at": stored.CreatedAt,
	})
}

// DeleteSubscriptionHandler removes one of the caller's subscriptions by endpoint.
func (h *PushHandler) DeleteSubscriptionHandler(c *gin.Context) {
	var req models.DeleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if err := h.Subscriptions.Remove(c.Request.Context(), c.GetString("userID"), req.Endpoint); err != nil {
		h.writeStoreError(c, "Failed to remove subscription", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListSubscriptionsHandler lists the caller's stored subscriptions.
func (h *PushHandler) ListSubscriptionsHandler(c *gin.Context) {
	tokens, err := h.Subscriptions.ListForUser(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		h.writeStoreError(c, "Failed to list subscriptions", err)
		return
	}
	if tokens == nil {
		tokens = []models.StoredToken{}
	}
	c.JSON(http.StatusOK, gin.H{"subscriptions": tokens})
}

func (h *PushHandler) writeStoreError(c *gin.Context, message string, err error) {
	switch {
	case errors.Is(err, subscription.ErrInvalidSubscription):
		utils.JSONError(c, http.StatusBadRequest, message, err.Error())
	case errors.Is(err, database.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, message, "subscription not found")
	case errors.Is(err, database.ErrAccessDenied):
		utils.JSONError(c, http.StatusForbidden, message, "access denied")
	default:
		getLogger(c).Error(message, zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, message, "")
	}
}

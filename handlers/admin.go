package handlers

import (
	"context"
	"net/http"

	"puckline/models"
	"puckline/services/admin"
	"puckline/services/push"
	"puckline/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BroadcastEnqueuer schedules a fan-out for the background worker.
type BroadcastEnqueuer interface {
	EnqueueBroadcast(ctx context.Context, req models.BroadcastRequest) (string, error)
}

// AdminHandler encapsulates operator-only push operations.
type AdminHandler struct {
	Subscribers admin.SubscriberService
	Broadcasts  BroadcastEnqueuer
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(subscribers admin.SubscriberService, broadcasts BroadcastEnqueuer) *AdminHandler {
	return &AdminHandler{Subscribers: subscribers, Broadcasts: broadcasts}
}

// ListSubscribersHandler reports every subscribed user with their token count.
func (ah *AdminHandler) ListSubscribersHandler(c *gin.Context) {
	users, err := ah.Subscribers.ListSubscribers(c.Request.Context())
	if err != nil {
		getLogger(c).Error("Failed to list subscribers", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.SubscribersResponse{
			Success: false,
			Error:   err.Error(),
			Users:   []models.SubscriberSummary{},
		})
		return
	}

	if len(users) == 0 {
		c.JSON(http.StatusOK, models.SubscribersResponse{
			Success: true,
			Users:   []models.SubscriberSummary{},
			Message: "No subscribers found",
		})
		return
	}

	total := len(users)
	c.JSON(http.StatusOK, models.SubscribersResponse{
		Success: true,
		Users:   users,
		Total:   &total,
	})
}

// PreflightHandler answers CORS preflight requests.
func (ah *AdminHandler) PreflightHandler(c *gin.Context) {
	c.Status(http.StatusOK)
}

// BroadcastHandler enqueues a fan-out to all subscribers or the listed users.
func (ah *AdminHandler) BroadcastHandler(c *gin.Context) {
	var req models.BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	taskID, err := ah.Broadcasts.EnqueueBroadcast(c.Request.Context(), req)
	if err != nil {
		getLogger(c).Error("Failed to enqueue broadcast", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to enqueue broadcast", "")
		return
	}

	getLogger(c).Info("Broadcast enqueued", zap.String("taskID", taskID), zap.Int("userIDs", len(req.UserIDs)))
	c.JSON(http.StatusAccepted, gin.H{"taskId": taskID})
}

// PreviewHandler shows a payload the way the worker will display it.
func (ah *AdminHandler) PreviewHandler(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	c.JSON(http.StatusOK, push.DecodePayload(raw))
}

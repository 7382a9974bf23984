package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	JWTSecret    string
	AdminPin     string
	AdminPinHash string

	// Push subscription endpoints
	GetVAPIDPublicKeyHandler  gin.HandlerFunc
	SaveSubscriptionHandler   gin.HandlerFunc
	DeleteSubscriptionHandler gin.HandlerFunc
	ListSubscriptionsHandler  gin.HandlerFunc

	// Admin endpoints
	ListSubscribersHandler     gin.HandlerFunc
	SubscribersPreflight       gin.HandlerFunc
	BroadcastHandler           gin.HandlerFunc
	PreviewNotificationHandler gin.HandlerFunc

	HealthHandler gin.HandlerFunc
}

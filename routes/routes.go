package routes

import (
	"net/http"
	"time"

	"puckline/handlers"
	"puckline/middleware"
	"puckline/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterPushRoutes registers the subscription endpoints used by the app shell.
func RegisterPushRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/push")
	{
		api.GET("/vapid-public-key", hb.GetVAPIDPublicKeyHandler)

		// Protected routes (Require Authentication)
		subs := api.Group("/subscriptions")
		subs.Use(middleware.JWTAuthUserMiddleware(hb.JWTSecret))
		subs.POST("", hb.SaveSubscriptionHandler)
		subs.GET("", hb.ListSubscriptionsHandler)
		subs.DELETE("", hb.DeleteSubscriptionHandler)
	}
}

// RegisterAdminRoutes sets up endpoints for admin operations.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.Use(middleware.AdminPinMiddleware(hb.AdminPin, hb.AdminPinHash))
		adminGroup.GET("/subscribers", hb.ListSubscribersHandler)
		adminGroup.OPTIONS("/subscribers", hb.SubscribersPreflight)
		adminGroup.POST("/push/broadcast", hb.BroadcastHandler)
		adminGroup.POST("/push/preview", hb.PreviewNotificationHandler)
	}
}

// RegisterHealthRoute registers health and metrics endpoints.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	health := hb.HealthHandler
	if health == nil {
		health = func(c *gin.Context) {
			status := utils.GetHealthStatus()
			code := http.StatusOK
			if !status.Store || !status.Redis {
				code = http.StatusServiceUnavailable
			}
			c.JSON(code, gin.H{"status": status, "message": "Puckline push service"})
		}
	}
	r.GET("/health", health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:              []string{"*"},
		AllowMethods:              []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:              []string{"Origin", "Authorization", "Content-Type", middleware.AdminPinHeader},
		ExposeHeaders:             []string{"Content-Length"},
		MaxAge:                    12 * time.Hour,
		OptionsResponseStatusCode: http.StatusOK,
	}))

	RegisterPushRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
	RegisterHealthRoute(r, hb)
}

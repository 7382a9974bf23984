package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"puckline/config"
	"puckline/cron"
	"puckline/database"
	"puckline/database/repository"
	"puckline/handlers"
	"puckline/middleware"
	"puckline/routes"
	"puckline/services/admin"
	"puckline/services/push"
	"puckline/services/subscription"
	"puckline/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// The admin listing needs service-level credentials; fail before any query.
	if err := config.AppConfig.RequireServiceStore(); err != nil {
		logger.Fatal("main: store precondition failed", zap.Error(err))
	}
	database.InitDB()
	utils.InitCache()

	stores, err := repository.NewStores(config.AppConfig)
	if err != nil {
		logger.Fatal("main: failed to build repositories", zap.Error(err))
	}

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()
	utils.StartHealthMonitor(rootCtx, utils.GetCacheClient(), database.Ping, time.Minute)

	transport, publicKey := buildTransport(rootCtx, logger)
	sender := push.NewFanoutSender(stores.Tokens, transport, logger, config.AppConfig.FanoutConcurrency)

	listingCache := admin.NewRedisListingCache(utils.GetCacheClient(), 30*time.Second)
	subscriptionService, err := subscription.NewDefaultSubscriptionService(stores.Tokens, listingCache)
	if err != nil {
		logger.Fatal("main: failed to initialize subscription service", zap.Error(err))
	}
	subscriberService, err := admin.NewDefaultSubscriberService(stores.Tokens, stores.Profiles, listingCache)
	if err != nil {
		logger.Fatal("main: failed to initialize subscriber service", zap.Error(err))
	}

	queueOpt := utils.QueueRedisOpt()
	broadcastQueue := cron.NewBroadcastQueue(queueOpt)
	defer broadcastQueue.Close()
	worker := cron.InitBroadcastWorker(queueOpt, sender)

	pushHandler := handlers.NewPushHandler(subscriptionService, publicKey)
	adminHandler := handlers.NewAdminHandler(subscriberService, broadcastQueue)

	handlerBundle := &handlers.HandlerBundle{
		JWTSecret:    config.AppConfig.JWTSecret,
		AdminPin:     config.AppConfig.AdminPin,
		AdminPinHash: config.AppConfig.AdminPinHash,

		GetVAPIDPublicKeyHandler:  pushHandler.GetVAPIDPublicKeyHandler,
		SaveSubscriptionHandler:   pushHandler.SaveSubscriptionHandler,
		DeleteSubscriptionHandler: pushHandler.DeleteSubscriptionHandler,
		ListSubscriptionsHandler:  pushHandler.ListSubscriptionsHandler,

		ListSubscribersHandler:     adminHandler.ListSubscribersHandler,
		SubscribersPreflight:       adminHandler.PreflightHandler,
		BroadcastHandler:           adminHandler.BroadcastHandler,
		PreviewNotificationHandler: adminHandler.PreviewHandler,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))
	routes.RegisterRoutes(router, handlerBundle)

	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}
	worker.Shutdown()
	stop()

	logger.Sugar().Info("main: server stopped gracefully")
}

// buildTransport wires Web Push and, when configured, FCM. Without VAPID
// keys the fan-out reports missing credentials instead of sending.
func buildTransport(ctx context.Context, logger *zap.Logger) (push.Transport, string) {
	router := &push.Router{}

	webPush, err := push.NewWebPushTransport(push.WebPushConfig{
		PublicKey:  config.AppConfig.VAPIDPublicKey,
		PrivateKey: config.AppConfig.VAPIDPrivateKey,
		Subscriber: config.AppConfig.VAPIDSubject,
		TTL:        config.AppConfig.PushTTL,
	})
	if err != nil {
		logger.Warn("Web Push disabled", zap.Error(err))
		return nil, ""
	}
	router.WebPush = webPush

	if file := config.AppConfig.FirebaseCredentialsFile; file != "" {
		client, err := utils.NewMessagingClient(ctx, file)
		if err != nil {
			logger.Warn("FCM disabled", zap.Error(err))
		} else {
			router.FCM = push.NewFCMTransport(client)
		}
	}
	return router, webPush.PublicKey()
}

// Command sendpush delivers one notification to every stored subscription,
// or to the users named with -user.
package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"puckline/config"
	"puckline/database"
	tokenRepo "puckline/database/repository/token"
	"puckline/models"
	"puckline/services/push"
	"puckline/utils"

	"go.uber.org/zap"
)

func main() {
	title := flag.String("title", "", "notification title (default: demo payload)")
	body := flag.String("body", "", "notification body")
	url := flag.String("url", "", "path opened when the notification is clicked")
	users := flag.String("user", "", "comma-separated user ids to target (default: everyone)")
	prune := flag.Bool("prune", false, "delete tokens the push service reports as gone")
	anon := flag.Bool("anon", false, "read tokens with anon-level credentials (DATABASE_ANON_URL)")
	flag.Parse()

	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()
	cfg := config.AppConfig

	// Preconditions, checked before any read or send.
	if err := cfg.RequireVAPID(); err != nil {
		logger.Fatal("Missing push credentials", zap.Error(err))
	}
	dsn := cfg.DatabaseURL
	if *anon {
		dsn = cfg.DatabaseAnonURL
	}
	if cfg.StoreDriver != "mongo" && dsn == "" {
		logger.Fatal("Missing store credentials", zap.Error(config.ErrMissingServiceStore))
	}

	transport, err := push.NewWebPushTransport(push.WebPushConfig{
		PublicKey:  cfg.VAPIDPublicKey,
		PrivateKey: cfg.VAPIDPrivateKey,
		Subscriber: cfg.VAPIDSubject,
		TTL:        cfg.PushTTL,
	})
	if err != nil {
		logger.Fatal("Failed to configure Web Push", zap.Error(err))
	}
	router := &push.Router{WebPush: transport}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if cfg.FirebaseCredentialsFile != "" {
		client, err := utils.NewMessagingClient(ctx, cfg.FirebaseCredentialsFile)
		if err != nil {
			logger.Warn("FCM disabled", zap.Error(err))
		} else {
			router.FCM = push.NewFCMTransport(client)
		}
	}

	tokens, closeStore := openTokens(ctx, cfg, dsn, logger)
	defer closeStore()

	payload := models.NotificationPayload{Title: *title, Body: *body, URL: *url}
	if payload == (models.NotificationPayload{}) {
		payload = push.DemoPayload()
	}

	sender := push.NewFanoutSender(tokens, router, logger, cfg.FanoutConcurrency)
	report, err := sender.Send(ctx, push.Request{
		Payload:   payload,
		UserIDs:   splitIDs(*users),
		PruneGone: *prune,
	})
	if err != nil {
		logger.Fatal("Fan-out aborted", zap.Error(err))
	}

	if *anon && report.Total == 0 {
		// Row-level policies hide other users' rows instead of failing the read.
		logger.Warn("No tokens visible to anon credentials", zap.String("hint", push.AnonAccessHint))
	}
	fmt.Printf("Sent to %d of %d recipients (%d failed)\n", report.Succeeded, report.Total, report.Failed)
}

func openTokens(ctx context.Context, cfg config.Config, dsn string, logger *zap.Logger) (tokenRepo.TokenRepository, func()) {
	if cfg.StoreDriver == "mongo" {
		client, err := database.ConnectMongo(ctx, cfg.MongoURL)
		if err != nil {
			logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
		}
		return tokenRepo.NewMongoTokenRepo(client.Database(cfg.MongoDatabase)), func() {
			_ = client.Disconnect(context.Background())
		}
	}

	pool, err := database.ConnectPostgres(ctx, dsn)
	if err != nil {
		logger.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	return tokenRepo.NewPgTokenRepo(pool), pool.Close
}

func splitIDs(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

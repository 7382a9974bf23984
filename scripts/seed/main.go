// Command seed fills the store with demo profiles and subscriptions for
// local testing of the admin listing and the sender.
package main

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"log"
	"time"

	"puckline/config"
	"puckline/database"
	"puckline/database/repository"
	"puckline/models"

	gojson "github.com/goccy/go-json"
	"github.com/google/uuid"
)

var (
	nicknames = []string{"Gretzky99", "PuckHound", "Zamboni", "IcyMike", "BlueLiner", "FiveHole"}
	languages = []string{"en", "fi", "sv", "de"}
	teams     = []string{"hawks", "wolves", "pike", "lynx", "otters"}
)

func main() {
	users := flag.Int("users", 6, "number of demo users")
	devices := flag.Int("devices", 2, "maximum subscriptions per user")
	flag.Parse()
	if *devices < 1 {
		*devices = 1
	}

	config.LoadConfig()
	database.InitDB()
	stores, err := repository.NewStores(config.AppConfig)
	if err != nil {
		log.Fatalf("Failed to build repositories: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tokens := 0
	for i := 0; i < *users; i++ {
		id := uuid.NewString()
		nickname := nicknames[i%len(nicknames)]
		email := fmt.Sprintf("%s@example.com", uuid.NewString()[:8])
		lang := languages[i%len(languages)]

		profile := models.Profile{
			ID:                id,
			Nickname:          &nickname,
			Email:             &email,
			PreferredLanguage: &lang,
			FavoriteTeamIDs:   []string{teams[i%len(teams)], teams[(i+2)%len(teams)]},
		}
		if err := stores.Profiles.Upsert(ctx, profile); err != nil {
			log.Fatalf("Failed to upsert profile %s: %v", id, err)
		}

		for d := 0; d < 1+i%*devices; d++ {
			token, err := demoSubscription(id, d)
			if err != nil {
				log.Fatalf("Failed to build subscription: %v", err)
			}
			if _, err := stores.Tokens.Upsert(ctx, id, token); err != nil {
				log.Fatalf("Failed to store subscription for %s: %v", id, err)
			}
			tokens++
		}
	}

	log.Printf("Seeded %d profiles and %d subscriptions", *users, tokens)
}

// demoSubscription builds a subscription with real client keys and an
// endpoint no push service will accept.
func demoSubscription(userID string, device int) ([]byte, error) {
	key, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	auth := make([]byte, 16)
	if _, err := rand.Read(auth); err != nil {
		return nil, err
	}
	return gojson.Marshal(models.PushSubscription{
		Endpoint: fmt.Sprintf("https://push.invalid/demo/%s/%d", userID, device),
		Keys: models.PushKeys{
			P256dh: base64.RawURLEncoding.EncodeToString(key.PublicKey().Bytes()),
			Auth:   base64.RawURLEncoding.EncodeToString(auth),
		},
	})
}

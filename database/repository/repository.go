package repository

import (
	"puckline/config"
	"puckline/database"
	profileRepo "puckline/database/repository/profile"
	tokenRepo "puckline/database/repository/token"
)

// Re-export the repository interfaces.
type TokenRepository = tokenRepo.TokenRepository

type ProfileRepository = profileRepo.ProfileRepository

// Stores bundles the repositories built on the shared client.
type Stores struct {
	Tokens   TokenRepository
	Profiles ProfileRepository
}

// NewStores builds repositories on the client InitDB connected.
func NewStores(cfg config.Config) (*Stores, error) {
	if err := cfg.RequireServiceStore(); err != nil {
		return nil, err
	}
	if cfg.StoreDriver == "mongo" {
		db := database.MongoClient.Database(cfg.MongoDatabase)
		return &Stores{
			Tokens:   tokenRepo.NewMongoTokenRepo(db),
			Profiles: profileRepo.NewMongoProfileRepo(db),
		}, nil
	}
	return &Stores{
		Tokens:   tokenRepo.NewPgTokenRepo(database.PgPool),
		Profiles: profileRepo.NewPgProfileRepo(database.PgPool),
	}, nil
}

package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"puckline/config"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// MongoClient is the process-wide MongoDB client (STORE_DRIVER=mongo).
	MongoClient *mongo.Client
	// PgPool is the process-wide Postgres pool (STORE_DRIVER=postgres).
	PgPool *pgxpool.Pool
)

var (
	// ErrAccessDenied is returned when a row-level policy rejects the caller's credentials.
	ErrAccessDenied = errors.New("access denied by row-level policy")
	ErrNotFound     = errors.New("record not found")
)

// pgInsufficientPrivilege is SQLSTATE 42501.
const pgInsufficientPrivilege = "42501"

// InitDB connects the configured store once for the lifetime of the process.
func InitDB() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch config.AppConfig.StoreDriver {
	case "mongo":
		client, err := ConnectMongo(ctx, config.AppConfig.MongoURL)
		if err != nil {
			log.Fatalf("failed to connect to MongoDB: %v", err)
		}
		MongoClient = client
		log.Println("Connected to MongoDB successfully!")
	default:
		pool, err := ConnectPostgres(ctx, config.AppConfig.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to Postgres: %v", err)
		}
		PgPool = pool
		log.Println("Connected to Postgres successfully!")
	}
}

// ConnectPostgres opens and pings a pgx pool.
func ConnectPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, config.ErrMissingServiceStore
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("ConnectPostgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ConnectPostgres: ping: %w", err)
	}
	return pool, nil
}

// ConnectMongo opens and pings a MongoDB client.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("ConnectMongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ConnectMongo: ping: %w", err)
	}
	return client, nil
}

// MapPgError translates driver errors into the package sentinels.
func MapPgError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgInsufficientPrivilege {
		return fmt.Errorf("%s: %w: %s", op, ErrAccessDenied, pgErr.Message)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Ping checks whichever store InitDB connected.
func Ping(ctx context.Context) error {
	switch {
	case PgPool != nil:
		return PgPool.Ping(ctx)
	case MongoClient != nil:
		return MongoClient.Ping(ctx, nil)
	default:
		return errors.New("no store connected")
	}
}

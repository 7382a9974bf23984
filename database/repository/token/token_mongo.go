package tokenRepo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"puckline/database"
	"puckline/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// tokenDocument stores the token as a string so its bytes survive a round trip.
type tokenDocument struct {
	ID        string    `bson:"id"`
	UserID    string    `bson:"userId"`
	Endpoint  string    `bson:"endpoint"`
	Token     string    `bson:"token"`
	CreatedAt time.Time `bson:"createdAt"`
}

func (d tokenDocument) model() models.StoredToken {
	return models.StoredToken{
		ID:        d.ID,
		UserID:    d.UserID,
		Token:     json.RawMessage(d.Token),
		CreatedAt: d.CreatedAt,
	}
}

// MongoTokenRepo implements TokenRepository using MongoDB.
type MongoTokenRepo struct {
	coll *mongo.Collection
}

// NewMongoTokenRepo creates the repository and its indexes.
func NewMongoTokenRepo(db *mongo.Database) TokenRepository {
	repo := &MongoTokenRepo{coll: db.Collection("notification_tokens")}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}

func (r *MongoTokenRepo) ensureIndexes() error {
	ctx, cancel := newContext(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "endpoint", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoTokenRepo) Upsert(ctx context.Context, userID string, token json.RawMessage) (*models.StoredToken, error) {
	endpoint, err := Endpoint(token)
	if err != nil {
		return nil, err
	}
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"userId": userID, "endpoint": endpoint}
	update := bson.M{
		"$set":         bson.M{"token": string(token), "createdAt": time.Now().UTC()},
		"$setOnInsert": bson.M{"id": uuid.NewString()},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc tokenDocument
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return nil, fmt.Errorf("Upsert: failed to upsert token for user %s: %w", userID, err)
	}
	t := doc.model()
	return &t, nil
}

func (r *MongoTokenRepo) ListAll(ctx context.Context) ([]models.StoredToken, error) {
	return r.find(ctx, "ListAll", bson.M{})
}

func (r *MongoTokenRepo) ListByUsers(ctx context.Context, userIDs []string) ([]models.StoredToken, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	return r.find(ctx, "ListByUsers", bson.M{"userId": bson.M{"$in": userIDs}})
}

func (r *MongoTokenRepo) find(ctx context.Context, op string, filter bson.M) ([]models.StoredToken, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to retrieve tokens: %w", op, err)
	}
	defer cursor.Close(ctx)

	var tokens []models.StoredToken
	for cursor.Next(ctx) {
		var doc tokenDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%s: failed to decode token: %w", op, err)
		}
		tokens = append(tokens, doc.model())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return tokens, nil
}

func (r *MongoTokenRepo) DeleteByEndpoint(ctx context.Context, userID, endpoint string) error {
	return r.deleteOne(ctx, "DeleteByEndpoint", bson.M{"userId": userID, "endpoint": endpoint})
}

func (r *MongoTokenRepo) DeleteByID(ctx context.Context, id string) error {
	return r.deleteOne(ctx, "DeleteByID", bson.M{"id": id})
}

func (r *MongoTokenRepo) deleteOne(ctx context.Context, op string, filter bson.M) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, database.ErrNotFound)
	}
	return nil
}

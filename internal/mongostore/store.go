// Package mongostore implements repository.Store on MongoDB. MongoDB offers
// single-document atomicity here, so Transactional reports false and callers
// drive multi-document writes as idempotent, retried steps.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Pratik1374/API-GraphQL/internal/models"
	"github.com/Pratik1374/API-GraphQL/internal/observability"
	"github.com/Pratik1374/API-GraphQL/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const backendName = "mongo"

// Collection names.
const (
	UsersCollection         = "users"
	UserIDClaimsCollection  = "user_id_claims"
	PostsCollection         = "posts"
	CommentsCollection      = "comments"
	LikesCollection         = "likes"
	FollowEntriesCollection = "follow_entries"
)

// Store is a repository.Store over one MongoDB database.
type Store struct {
	client  *mongo.Client
	db      *mongo.Database
	metrics *observability.StoreMetrics
}

// Connect dials MongoDB, verifies the connection and ensures indexes.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	s := New(client, database)
	if err := s.EnsureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	observability.Logger.Info("MongoDB connected successfully", slog.String("database", database))
	return s, nil
}

// New wraps an existing client.
func New(client *mongo.Client, database string) *Store {
	return &Store{
		client:  client,
		db:      client.Database(database),
		metrics: observability.NewStoreMetrics(backendName),
	}
}

// EnsureIndexes creates the secondary indexes used by list queries.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
		PostsCollection: {
			{Keys: bson.D{{Key: "creator_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		CommentsCollection: {
			{Keys: bson.D{{Key: "post_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		LikesCollection: {
			{Keys: bson.D{{Key: "post_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		FollowEntriesCollection: {
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "kind", Value: 1}, {Key: "following_from", Value: -1}}},
		},
	}
	for coll, idx := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

func (s *Store) Users() repository.UserRepository {
	return &userRepository{
		users:   s.db.Collection(UsersCollection),
		claims:  s.db.Collection(UserIDClaimsCollection),
		metrics: s.metrics,
		log:     observability.NewStoreLogger(backendName, UsersCollection),
	}
}

func (s *Store) Posts() repository.PostRepository {
	return &postRepository{
		coll:    s.db.Collection(PostsCollection),
		metrics: s.metrics,
		log:     observability.NewStoreLogger(backendName, PostsCollection),
	}
}

func (s *Store) Comments() repository.CommentRepository {
	return &commentRepository{
		coll:    s.db.Collection(CommentsCollection),
		metrics: s.metrics,
		log:     observability.NewStoreLogger(backendName, CommentsCollection),
	}
}

func (s *Store) Likes() repository.LikeRepository {
	return &likeRepository{
		coll:    s.db.Collection(LikesCollection),
		metrics: s.metrics,
		log:     observability.NewStoreLogger(backendName, LikesCollection),
	}
}

func (s *Store) Follows() repository.FollowRepository {
	return &followRepository{
		coll:    s.db.Collection(FollowEntriesCollection),
		metrics: s.metrics,
		log:     observability.NewStoreLogger(backendName, FollowEntriesCollection),
	}
}

// Atomic runs fn directly against the store.
func (s *Store) Atomic(_ context.Context, fn func(tx repository.Store) error) error {
	return fn(s)
}

func (s *Store) Transactional() bool { return false }

func (s *Store) Name() string { return backendName }

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Drop removes the whole database. Used by tests and the seeder.
func (s *Store) Drop(ctx context.Context) error {
	return s.db.Drop(ctx)
}

func storeErr(ctx context.Context, log *observability.StoreLogger, err error, op string) error {
	log.LogError(ctx, err, op)
	return models.NewInternalError(err)
}

func isNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

func newestFirst(field string) *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: field, Value: -1}})
}

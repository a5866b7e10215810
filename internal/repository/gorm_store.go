package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/Pratik1374/API-GraphQL/internal/models"
	"github.com/Pratik1374/API-GraphQL/internal/observability"

	"gorm.io/gorm"
)

type gormStore struct {
	db      *gorm.DB
	read    *gorm.DB
	name    string
	metrics *observability.StoreMetrics
}

// NewGormStore returns a Store backed by a SQL database. read may be nil;
// when set, list queries outside a unit of work go to the replica.
func NewGormStore(db *gorm.DB, read *gorm.DB) Store {
	name := db.Dialector.Name()
	return &gormStore{
		db:      db,
		read:    read,
		name:    name,
		metrics: observability.NewStoreMetrics(name),
	}
}

func (s *gormStore) Users() UserRepository {
	return &userRepository{db: s.db, metrics: s.metrics, log: observability.NewStoreLogger(s.name, "users")}
}

func (s *gormStore) Posts() PostRepository {
	return &postRepository{db: s.db, read: s.readDB(), metrics: s.metrics, log: observability.NewStoreLogger(s.name, "posts")}
}

func (s *gormStore) Comments() CommentRepository {
	return &commentRepository{db: s.db, read: s.readDB(), metrics: s.metrics, log: observability.NewStoreLogger(s.name, "comments")}
}

func (s *gormStore) Likes() LikeRepository {
	return &likeRepository{db: s.db, read: s.readDB(), metrics: s.metrics, log: observability.NewStoreLogger(s.name, "likes")}
}

func (s *gormStore) Follows() FollowRepository {
	return &followRepository{db: s.db, read: s.readDB(), metrics: s.metrics, log: observability.NewStoreLogger(s.name, "follow_entries")}
}

// Atomic runs fn inside a database transaction.
func (s *gormStore) Atomic(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx, name: s.name, metrics: s.metrics})
	})
}

func (s *gormStore) Transactional() bool { return true }

func (s *gormStore) Name() string { return s.name }

func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *gormStore) Close() error {
	if s.read != nil {
		if sqlDB, err := s.read.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *gormStore) readDB() *gorm.DB {
	if s.read != nil {
		return s.read
	}
	return s.db
}

// isDuplicateKey reports whether err is a primary key or unique violation.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "sqlstate 23505")
}

// wrapErr passes AppErrors through and wraps anything else as INTERNAL.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return models.NewInternalError(err)
}

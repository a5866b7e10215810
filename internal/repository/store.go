// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"

	"github.com/Pratik1374/API-GraphQL/internal/models"
)

// UserRepository defines profile and handle-claim operations.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	ExistsByUserID(ctx context.Context, userID string) (bool, error)
	// Create claims user.UserID and stores the profile. A taken handle or an
	// existing profile for the subject fails with CONFLICT.
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error)
}

// PostRepository defines post operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	ListByCreator(ctx context.Context, creatorID string) ([]*models.Post, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Post, error)
	Delete(ctx context.Context, id string) error
}

// CommentRepository defines comment operations. Comments are addressed
// through their post.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, postID, id string) (*models.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]*models.Comment, error)
	Delete(ctx context.Context, postID, id string) error
	CountByPost(ctx context.Context, postID string) (int64, error)
}

// LikeRepository defines like operations keyed by (post, liker).
type LikeRepository interface {
	// Create fails with CONFLICT when the liker already liked the post.
	Create(ctx context.Context, like *models.Like) error
	Get(ctx context.Context, postID, likerID string) (*models.Like, error)
	ListByPost(ctx context.Context, postID string) ([]*models.Like, error)
	Delete(ctx context.Context, postID, likerID string) error
	CountByPost(ctx context.Context, postID string) (int64, error)
}

// FollowRepository stores the two index entries of follow edges. PutEntry
// and DeleteEntry are idempotent.
type FollowRepository interface {
	PutEntry(ctx context.Context, entry *models.FollowEntry) error
	GetEntry(ctx context.Context, ownerID string, kind models.FollowKind, otherID string) (*models.FollowEntry, error)
	DeleteEntry(ctx context.Context, ownerID string, kind models.FollowKind, otherID string) error
	List(ctx context.Context, ownerID string, kind models.FollowKind) ([]*models.FollowEntry, error)
}

// Store is the document store used by the domain layer.
type Store interface {
	Users() UserRepository
	Posts() PostRepository
	Comments() CommentRepository
	Likes() LikeRepository
	Follows() FollowRepository

	// Atomic runs fn against a store scoped to one unit of work. Backends
	// that report Transactional() commit or roll back fn as a whole; others
	// run fn directly and callers must make each step idempotent.
	Atomic(ctx context.Context, fn func(tx Store) error) error
	Transactional() bool

	Name() string
	Ping(ctx context.Context) error
	Close() error
}

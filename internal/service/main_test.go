package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Pratik1374/API-GraphQL/internal/database"
	"github.com/Pratik1374/API-GraphQL/internal/identity"
	"github.com/Pratik1374/API-GraphQL/internal/models"
	"github.com/Pratik1374/API-GraphQL/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore returns a transactional Store over a private in-memory sqlite database.
func newTestStore(t *testing.T) repository.Store {
	t.Helper()
	db, err := database.OpenSQLiteMemory(uuid.NewString())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return repository.NewGormStore(db, nil)
}

// testClock returns strictly increasing timestamps so ordering is deterministic.
func testClock() func() time.Time {
	var mu sync.Mutex
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

func testOptions() Options {
	return Options{
		Now:   testClock(),
		Retry: RetryPolicy{MaxTries: 3, InitialInterval: time.Millisecond, MaxElapsed: time.Second},
	}
}

func seedUser(t *testing.T, store repository.Store, subject, handle string) *models.User {
	t.Helper()
	u := &models.User{
		ID:           subject,
		UserID:       handle,
		Email:        handle + "@example.com",
		Name:         "User " + handle,
		Mobile:       "5550100",
		ProfileImage: "https://img.example.com/" + handle + ".png",
		Gender:       "other",
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, store.Users().Create(context.Background(), u))
	return u
}

func seedPost(t *testing.T, svc *PostService, owner string) *models.Post {
	t.Helper()
	p, err := svc.CreatePost(context.Background(), CreatePostInput{
		CallerID:    owner,
		Prompt:      "a lighthouse at dusk",
		Category:    "landscape",
		OutputURL:   "https://cdn.example.com/out.png",
		Public:      true,
		AIModelTags: []string{"sdxl"},
	})
	require.NoError(t, err)
	return p
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code, appErr.Message)
}

// identityStub is a stub for identity.Provider.
type identityStub struct {
	verifyFn         func(context.Context, string) (*identity.Identity, error)
	getUserByEmailFn func(context.Context, string) (*identity.Identity, error)
	deleteUserFn     func(context.Context, string) error

	mu      sync.Mutex
	deleted []string
}

func (s *identityStub) Verify(ctx context.Context, token string) (*identity.Identity, error) {
	return s.verifyFn(ctx, token)
}
func (s *identityStub) GetUserByEmail(ctx context.Context, email string) (*identity.Identity, error) {
	return s.getUserByEmailFn(ctx, email)
}
func (s *identityStub) DeleteUser(ctx context.Context, subject string) error {
	s.mu.Lock()
	s.deleted = append(s.deleted, subject)
	s.mu.Unlock()
	return s.deleteUserFn(ctx, subject)
}
func (s *identityStub) Name() string { return "stub" }

func (s *identityStub) deleteCalls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}

// accountsIdentity resolves emails from a fixed email -> subject table.
func accountsIdentity(accounts map[string]string) *identityStub {
	return &identityStub{
		verifyFn: func(_ context.Context, token string) (*identity.Identity, error) {
			return &identity.Identity{Subject: token}, nil
		},
		getUserByEmailFn: func(_ context.Context, email string) (*identity.Identity, error) {
			subject, ok := accounts[email]
			if !ok {
				return nil, models.NewNotFoundError("Identity account", email)
			}
			return &identity.Identity{Subject: subject, Email: email}, nil
		},
		deleteUserFn: func(_ context.Context, _ string) error { return nil },
	}
}

// storeStub wraps repositories of a real store. With stepwise set it
// behaves like a backend without multi-document transactions.
type storeStub struct {
	repository.Store
	stepwise bool
	users    func(repository.UserRepository) repository.UserRepository
	posts    func(repository.PostRepository) repository.PostRepository
	likes    func(repository.LikeRepository) repository.LikeRepository
	follows  func(repository.FollowRepository) repository.FollowRepository
}

func (s *storeStub) Users() repository.UserRepository {
	if s.users != nil {
		return s.users(s.Store.Users())
	}
	return s.Store.Users()
}
func (s *storeStub) Posts() repository.PostRepository {
	if s.posts != nil {
		return s.posts(s.Store.Posts())
	}
	return s.Store.Posts()
}
func (s *storeStub) Likes() repository.LikeRepository {
	if s.likes != nil {
		return s.likes(s.Store.Likes())
	}
	return s.Store.Likes()
}
func (s *storeStub) Follows() repository.FollowRepository {
	if s.follows != nil {
		return s.follows(s.Store.Follows())
	}
	return s.Store.Follows()
}
func (s *storeStub) Transactional() bool { return !s.stepwise && s.Store.Transactional() }
func (s *storeStub) Atomic(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.stepwise {
		return fn(s)
	}
	return s.Store.Atomic(ctx, func(tx repository.Store) error {
		return fn(&storeStub{Store: tx, users: s.users, posts: s.posts, likes: s.likes, follows: s.follows})
	})
}

// userRepoStub overrides Create on a real user repository.
type userRepoStub struct {
	repository.UserRepository
	createFn func(context.Context, *models.User) error
}

func (s *userRepoStub) Create(ctx context.Context, u *models.User) error {
	return s.createFn(ctx, u)
}

// likeRepoStub overrides Delete on a real like repository.
type likeRepoStub struct {
	repository.LikeRepository
	deleteFn func(context.Context, string, string) error
}

func (s *likeRepoStub) Delete(ctx context.Context, postID, likerID string) error {
	return s.deleteFn(ctx, postID, likerID)
}

// followRepoStub overrides PutEntry on a real follow repository.
type followRepoStub struct {
	repository.FollowRepository
	putEntryFn func(context.Context, *models.FollowEntry) error
}

func (s *followRepoStub) PutEntry(ctx context.Context, e *models.FollowEntry) error {
	return s.putEntryFn(ctx, e)
}

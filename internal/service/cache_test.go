package service

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/Pratik1374/API-GraphQL/internal/cache"
	"github.com/Pratik1374/API-GraphQL/internal/models"
	"github.com/Pratik1374/API-GraphQL/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cachedOptions(t *testing.T) (Options, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := cache.NewClient(mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	opts := testOptions()
	opts.Cache = cache.New(client)
	return opts, mr
}

// countingUserRepo counts GetByID calls that reach the store.
type countingUserRepo struct {
	repository.UserRepository
	gets *atomic.Int32
}

func (r *countingUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.gets.Add(1)
	return r.UserRepository.GetByID(ctx, id)
}

// hookedPostRepo runs afterGet once, after the first GetByID has read the post.
type hookedPostRepo struct {
	repository.PostRepository
	afterGet func()
}

func (r *hookedPostRepo) GetByID(ctx context.Context, id string) (*models.Post, error) {
	p, err := r.PostRepository.GetByID(ctx, id)
	if r.afterGet != nil {
		r.afterGet()
	}
	return p, err
}

func TestReadCache_HitSkipsStore(t *testing.T) {
	t.Parallel()
	opts, mr := cachedOptions(t)
	gets := &atomic.Int32{}
	store := &storeStub{
		Store: newTestStore(t),
		users: func(r repository.UserRepository) repository.UserRepository {
			return &countingUserRepo{UserRepository: r, gets: gets}
		},
	}
	seedUser(t, store.Store, "a", "alice")
	svc := NewUserService(store, accountsIdentity(nil), opts)
	ctx := context.Background()

	first, err := svc.GetUser(ctx, "a")
	require.NoError(t, err)
	second, err := svc.GetUser(ctx, "a")
	require.NoError(t, err)

	assert.Equal(t, int32(1), gets.Load())
	assert.Equal(t, first.UserID, second.UserID)
	assert.True(t, mr.Exists(cache.UserKey("a")))
}

func TestReadCache_UpdateUserInvalidates(t *testing.T) {
	t.Parallel()
	opts, mr := cachedOptions(t)
	store := newTestStore(t)
	seedUser(t, store, "a", "alice")
	svc := NewUserService(store, accountsIdentity(nil), opts)
	ctx := context.Background()

	before, err := svc.GetUser(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "User alice", before.Name)

	name, bio := "Alice Liddell", "down the rabbit hole"
	_, err = svc.UpdateUser(ctx, "a", models.UserUpdate{Name: &name, Bio: &bio})
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.UserKey("a")))

	after, err := svc.GetUser(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, name, after.Name)
	assert.Equal(t, bio, after.Bio)
}

func TestReadCache_RegisterAfterMiss(t *testing.T) {
	t.Parallel()
	opts, _ := cachedOptions(t)
	svc := NewUserService(newTestStore(t), accountsIdentity(map[string]string{"alice@example.com": "a"}), opts)
	ctx := context.Background()

	_, err := svc.GetUser(ctx, "a")
	assertCode(t, err, models.CodeNotFound)

	_, _, err = svc.Register(ctx, RegisterInput{
		CallerID: "a", Email: "alice@example.com", Name: "Alice", UserID: "alice",
		Mobile: "5550100", ProfileImage: "https://img.example.com/a.png", Gender: "other",
	})
	require.NoError(t, err)

	got, err := svc.GetUser(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.UserID)
}

func TestReadCache_DeletedPostStaysGone(t *testing.T) {
	t.Parallel()
	opts, mr := cachedOptions(t)
	svc := NewPostService(newTestStore(t), FeedLimits{}, opts)
	ctx := context.Background()
	post := seedPost(t, svc, "u1")

	_, err := svc.GetPost(ctx, "u2", post.ID)
	require.NoError(t, err)
	require.True(t, mr.Exists(cache.PostKey(post.ID)))

	require.NoError(t, svc.DeletePost(ctx, DeletePostInput{CallerID: "u1", PostOwnerID: "u1", PostID: post.ID}))

	_, err = svc.GetPost(ctx, "u2", post.ID)
	assertCode(t, err, models.CodeNotFound)
}

func TestReadCache_DeleteDuringReadIsNotResurrected(t *testing.T) {
	t.Parallel()
	opts, mr := cachedOptions(t)
	base := newTestStore(t)
	writer := NewPostService(base, FeedLimits{}, opts)
	ctx := context.Background()
	post := seedPost(t, writer, "u1")

	var fired bool
	reader := NewPostService(&storeStub{
		Store: base,
		posts: func(r repository.PostRepository) repository.PostRepository {
			return &hookedPostRepo{PostRepository: r, afterGet: func() {
				if fired {
					return
				}
				fired = true
				require.NoError(t, writer.DeletePost(ctx, DeletePostInput{CallerID: "u1", PostOwnerID: "u1", PostID: post.ID}))
			}}
		},
	}, FeedLimits{}, opts)

	got, err := reader.GetPost(ctx, "u2", post.ID)
	require.NoError(t, err, "the read started before the delete")
	assert.Equal(t, post.ID, got.ID)
	assert.False(t, mr.Exists(cache.PostKey(post.ID)))

	_, err = reader.GetPost(ctx, "u2", post.ID)
	assertCode(t, err, models.CodeNotFound)
}

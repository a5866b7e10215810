package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Pratik1374/API-GraphQL/internal/database"
	"github.com/Pratik1374/API-GraphQL/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newTestStore returns a Store over a private in-memory sqlite database.
func newTestStore(t *testing.T) (Store, *gorm.DB) {
	t.Helper()
	db, err := database.OpenSQLiteMemory(uuid.NewString())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return NewGormStore(db, nil), db
}

// setupMockDB creates a GORM *gorm.DB backed by sqlmock for unit tests.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func newUser(id, handle string) *models.User {
	return &models.User{
		ID:           id,
		UserID:       handle,
		Email:        handle + "@example.com",
		Name:         "User " + handle,
		Mobile:       "5550100",
		ProfileImage: "https://img.example.com/" + handle + ".png",
		Gender:       "other",
		CreatedAt:    time.Now().UTC(),
	}
}

func newPost(creatorID string, createdAt time.Time) *models.Post {
	return &models.Post{
		ID:          uuid.NewString(),
		CreatorID:   creatorID,
		Prompt:      "a lighthouse at dusk",
		Category:    "landscape",
		OutputURL:   "https://cdn.example.com/" + uuid.NewString() + ".png",
		Public:      true,
		AIModelTags: []string{"sdxl", "v1"},
		CreatedAt:   createdAt,
	}
}

func TestGormStore_AtomicRollsBackOnError(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	post := newPost("u1", time.Now())

	sentinel := errors.New("abort")
	err := store.Atomic(ctx, func(tx Store) error {
		require.NoError(t, tx.Posts().Create(ctx, post))
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	_, err = store.Posts().GetByID(ctx, post.ID)
	assertCode(t, err, models.CodeNotFound)
	assert.True(t, store.Transactional())
	assert.Equal(t, "sqlite", store.Name())
	assert.NoError(t, store.Ping(ctx))
}

func TestPostRepository_DatabaseErrorIsInternal(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery(`SELECT .* FROM "posts"`).WillReturnError(errors.New("connection reset"))

	_, err := repo.GetByID(context.Background(), "p1")
	assertCode(t, err, models.CodeInternal)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikeRepository_DeleteErrorIsInternal(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLikeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "likes"`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), "p1", "u1")
	assertCode(t, err, models.CodeInternal)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ExistsErrorIsInternal(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM`).WillReturnError(errors.New("connection reset"))

	_, err := repo.ExistsByUserID(context.Background(), "alice")
	assertCode(t, err, models.CodeInternal)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_ListErrorIsInternal(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)

	mock.ExpectQuery(`SELECT .* FROM "comments"`).WillReturnError(errors.New("timeout"))

	_, err := repo.ListByPost(context.Background(), "p1")
	assertCode(t, err, models.CodeInternal)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowRepository_ListOrdersNewestFirst(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFollowRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"owner_id", "kind", "other_id", "user_id", "following_from"}).
		AddRow("b", "followers", "c", "carol", now).
		AddRow("b", "followers", "a", "alice", now.Add(-time.Minute))
	mock.ExpectQuery(`SELECT .* FROM "follow_entries" WHERE .* ORDER BY following_from desc`).
		WithArgs("b", "followers").
		WillReturnRows(rows)

	entries, err := repo.List(context.Background(), "b", models.FollowKindFollowers)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "carol", entries[0].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

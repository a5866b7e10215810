package repository

import (
	"context"
	"errors"

	"github.com/Pratik1374/API-GraphQL/internal/models"
	"github.com/Pratik1374/API-GraphQL/internal/observability"

	"gorm.io/gorm"
)

type postRepository struct {
	db      *gorm.DB
	read    *gorm.DB
	metrics *observability.StoreMetrics
	log     *observability.StoreLogger
}

// NewPostRepository creates a PostRepository over db.
func NewPostRepository(db *gorm.DB) PostRepository {
	name := db.Dialector.Name()
	return &postRepository{
		db:      db,
		read:    db,
		metrics: observability.NewStoreMetrics(name),
		log:     observability.NewStoreLogger(name, "posts"),
	}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer r.metrics.TrackQuery(ctx, "create", "posts")()

	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		if isDuplicateKey(err) {
			return models.NewConflictError("Post already exists")
		}
		return models.NewInternalError(err)
	}
	r.log.LogWrite(ctx, "create", map[string]interface{}{"id": post.ID, "creator_id": post.CreatorID})
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	defer r.metrics.TrackQuery(ctx, "get", "posts")()

	var post models.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		r.log.LogError(ctx, err, "get")
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) ListByCreator(ctx context.Context, creatorID string) ([]*models.Post, error) {
	defer r.metrics.TrackQuery(ctx, "list_by_creator", "posts")()

	var posts []*models.Post
	if err := r.read.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("created_at desc").
		Find(&posts).Error; err != nil {
		r.log.LogError(ctx, err, "list_by_creator")
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ListRecent(ctx context.Context, limit int) ([]*models.Post, error) {
	defer r.metrics.TrackQuery(ctx, "list_recent", "posts")()

	var posts []*models.Post
	if err := r.read.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Find(&posts).Error; err != nil {
		r.log.LogError(ctx, err, "list_recent")
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	defer r.metrics.TrackQuery(ctx, "delete", "posts")()

	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Post{})
	if result.Error != nil {
		r.log.LogError(ctx, result.Error, "delete")
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	r.log.LogWrite(ctx, "delete", map[string]interface{}{"id": id})
	return nil
}

package repository

import (
	"context"
	"errors"

	"github.com/Pratik1374/API-GraphQL/internal/models"
	"github.com/Pratik1374/API-GraphQL/internal/observability"

	"gorm.io/gorm"
)

type likeRepository struct {
	db      *gorm.DB
	read    *gorm.DB
	metrics *observability.StoreMetrics
	log     *observability.StoreLogger
}

// NewLikeRepository creates a LikeRepository over db.
func NewLikeRepository(db *gorm.DB) LikeRepository {
	name := db.Dialector.Name()
	return &likeRepository{
		db:      db,
		read:    db,
		metrics: observability.NewStoreMetrics(name),
		log:     observability.NewStoreLogger(name, "likes"),
	}
}

// Create inserts the like; the (post_id, liker_id) primary key rejects a
// second like from the same user even when two requests race.
func (r *likeRepository) Create(ctx context.Context, like *models.Like) error {
	defer r.metrics.TrackQuery(ctx, "create", "likes")()

	if err := r.db.WithContext(ctx).Create(like).Error; err != nil {
		if isDuplicateKey(err) {
			return models.NewConflictError("User has already liked this post.")
		}
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogWrite(ctx, "create", map[string]interface{}{"post_id": like.PostID, "liker_id": like.LikerID})
	return nil
}

func (r *likeRepository) Get(ctx context.Context, postID, likerID string) (*models.Like, error) {
	defer r.metrics.TrackQuery(ctx, "get", "likes")()

	var like models.Like
	if err := r.db.WithContext(ctx).Where("post_id = ? AND liker_id = ?", postID, likerID).First(&like).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Like", postID+"/"+likerID)
		}
		r.log.LogError(ctx, err, "get")
		return nil, models.NewInternalError(err)
	}
	return &like, nil
}

func (r *likeRepository) ListByPost(ctx context.Context, postID string) ([]*models.Like, error) {
	defer r.metrics.TrackQuery(ctx, "list_by_post", "likes")()

	var likes []*models.Like
	if err := r.read.WithContext(ctx).Where("post_id = ?", postID).Order("created_at desc").Find(&likes).Error; err != nil {
		r.log.LogError(ctx, err, "list_by_post")
		return nil, models.NewInternalError(err)
	}
	return likes, nil
}

func (r *likeRepository) Delete(ctx context.Context, postID, likerID string) error {
	defer r.metrics.TrackQuery(ctx, "delete", "likes")()

	result := r.db.WithContext(ctx).Where("post_id = ? AND liker_id = ?", postID, likerID).Delete(&models.Like{})
	if result.Error != nil {
		r.log.LogError(ctx, result.Error, "delete")
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Like", postID+"/"+likerID)
	}
	return nil
}

func (r *likeRepository) CountByPost(ctx context.Context, postID string) (int64, error) {
	defer r.metrics.TrackQuery(ctx, "count_by_post", "likes")()

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		r.log.LogError(ctx, err, "count_by_post")
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

package repository

import (
	"context"
	"errors"

	"github.com/Pratik1374/API-GraphQL/internal/models"
	"github.com/Pratik1374/API-GraphQL/internal/observability"

	"gorm.io/gorm"
)

type commentRepository struct {
	db      *gorm.DB
	read    *gorm.DB
	metrics *observability.StoreMetrics
	log     *observability.StoreLogger
}

// NewCommentRepository creates a CommentRepository over db.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	name := db.Dialector.Name()
	return &commentRepository{
		db:      db,
		read:    db,
		metrics: observability.NewStoreMetrics(name),
		log:     observability.NewStoreLogger(name, "comments"),
	}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	defer r.metrics.TrackQuery(ctx, "create", "comments")()

	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogWrite(ctx, "create", map[string]interface{}{"id": comment.ID, "post_id": comment.PostID})
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, postID, id string) (*models.Comment, error) {
	defer r.metrics.TrackQuery(ctx, "get", "comments")()

	var comment models.Comment
	if err := r.db.WithContext(ctx).Where("post_id = ? AND id = ?", postID, id).First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		r.log.LogError(ctx, err, "get")
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	defer r.metrics.TrackQuery(ctx, "list_by_post", "comments")()

	var comments []*models.Comment
	if err := r.read.WithContext(ctx).Where("post_id = ?", postID).Order("created_at desc").Find(&comments).Error; err != nil {
		r.log.LogError(ctx, err, "list_by_post")
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *commentRepository) Delete(ctx context.Context, postID, id string) error {
	defer r.metrics.TrackQuery(ctx, "delete", "comments")()

	result := r.db.WithContext(ctx).Where("post_id = ? AND id = ?", postID, id).Delete(&models.Comment{})
	if result.Error != nil {
		r.log.LogError(ctx, result.Error, "delete")
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	return nil
}

func (r *commentRepository) CountByPost(ctx context.Context, postID string) (int64, error) {
	defer r.metrics.TrackQuery(ctx, "count_by_post", "comments")()

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		r.log.LogError(ctx, err, "count_by_post")
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

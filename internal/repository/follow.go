package repository

import (
	"context"
	"errors"

	"github.com/Pratik1374/API-GraphQL/internal/models"
	"github.com/Pratik1374/API-GraphQL/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type followRepository struct {
	db      *gorm.DB
	read    *gorm.DB
	metrics *observability.StoreMetrics
	log     *observability.StoreLogger
}

// NewFollowRepository creates a FollowRepository over db.
func NewFollowRepository(db *gorm.DB) FollowRepository {
	name := db.Dialector.Name()
	return &followRepository{
		db:      db,
		read:    db,
		metrics: observability.NewStoreMetrics(name),
		log:     observability.NewStoreLogger(name, "follow_entries"),
	}
}

// PutEntry upserts the entry keyed by (owner, kind, other).
func (r *followRepository) PutEntry(ctx context.Context, entry *models.FollowEntry) error {
	defer r.metrics.TrackQuery(ctx, "put", "follow_entries")()

	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(entry).Error; err != nil {
		r.log.LogError(ctx, err, "put")
		return models.NewInternalError(err)
	}
	return nil
}

func (r *followRepository) GetEntry(ctx context.Context, ownerID string, kind models.FollowKind, otherID string) (*models.FollowEntry, error) {
	defer r.metrics.TrackQuery(ctx, "get", "follow_entries")()

	var entry models.FollowEntry
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND kind = ? AND other_id = ?", ownerID, kind, otherID).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("FollowEntry", ownerID+"/"+string(kind)+"/"+otherID)
		}
		r.log.LogError(ctx, err, "get")
		return nil, models.NewInternalError(err)
	}
	return &entry, nil
}

// DeleteEntry removes the entry; a missing entry is not an error.
func (r *followRepository) DeleteEntry(ctx context.Context, ownerID string, kind models.FollowKind, otherID string) error {
	defer r.metrics.TrackQuery(ctx, "delete", "follow_entries")()

	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND kind = ? AND other_id = ?", ownerID, kind, otherID).
		Delete(&models.FollowEntry{}).Error; err != nil {
		r.log.LogError(ctx, err, "delete")
		return models.NewInternalError(err)
	}
	return nil
}

func (r *followRepository) List(ctx context.Context, ownerID string, kind models.FollowKind) ([]*models.FollowEntry, error) {
	defer r.metrics.TrackQuery(ctx, "list", "follow_entries")()

	var entries []*models.FollowEntry
	if err := r.read.WithContext(ctx).
		Where("owner_id = ? AND kind = ?", ownerID, kind).
		Order("following_from desc").
		Find(&entries).Error; err != nil {
		r.log.LogError(ctx, err, "list")
		return nil, models.NewInternalError(err)
	}
	return entries, nil
}

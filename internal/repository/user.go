package repository

import (
	"context"
	"errors"

	"github.com/Pratik1374/API-GraphQL/internal/models"
	"github.com/Pratik1374/API-GraphQL/internal/observability"

	"gorm.io/gorm"
)

type userRepository struct {
	db      *gorm.DB
	metrics *observability.StoreMetrics
	log     *observability.StoreLogger
}

// NewUserRepository creates a UserRepository over db.
func NewUserRepository(db *gorm.DB) UserRepository {
	name := db.Dialector.Name()
	return &userRepository{
		db:      db,
		metrics: observability.NewStoreMetrics(name),
		log:     observability.NewStoreLogger(name, "users"),
	}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	defer r.metrics.TrackQuery(ctx, "get", "users")()

	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		r.log.LogError(ctx, err, "get")
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) ExistsByUserID(ctx context.Context, userID string) (bool, error) {
	defer r.metrics.TrackQuery(ctx, "exists", "user_id_claims")()

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.UserIDClaim{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		r.log.LogError(ctx, err, "exists")
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// Create inserts the handle claim and the profile in one transaction.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	defer r.metrics.TrackQuery(ctx, "create", "users")()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		claim := models.UserIDClaim{UserID: user.UserID, Subject: user.ID, CreatedAt: user.CreatedAt}
		if err := tx.Create(&claim).Error; err != nil {
			if isDuplicateKey(err) {
				return models.NewConflictError("User with the same user_id already exists. Choose another user_id.")
			}
			return err
		}
		if err := tx.Create(user).Error; err != nil {
			if isDuplicateKey(err) {
				return models.NewConflictError("A profile already exists for this account")
			}
			return err
		}
		return nil
	})
	if err != nil {
		if models.CodeOf(err) != models.CodeConflict {
			r.log.LogError(ctx, err, "create")
		}
		return wrapErr(err)
	}

	r.log.LogWrite(ctx, "create", map[string]interface{}{"id": user.ID, "user_id": user.UserID})
	return nil
}

func (r *userRepository) Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	defer r.metrics.TrackQuery(ctx, "update", "users")()

	var updated models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&updated).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return err
		}
		fields := upd.Fields()
		if len(fields) == 0 {
			return nil
		}
		if err := tx.Model(&models.User{}).Where("id = ?", id).Updates(fields).Error; err != nil {
			return err
		}
		upd.Apply(&updated)
		return nil
	})
	if err != nil {
		if models.CodeOf(err) == models.CodeInternal {
			r.log.LogError(ctx, err, "update")
		}
		return nil, wrapErr(err)
	}

	r.log.LogWrite(ctx, "update", map[string]interface{}{"id": id})
	return &updated, nil
}

package mongostore

import (
	"context"

	"github.com/Pratik1374/API-GraphQL/internal/models"
	"github.com/Pratik1374/API-GraphQL/internal/observability"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userRepository struct {
	users   *mongo.Collection
	claims  *mongo.Collection
	metrics *observability.StoreMetrics
	log     *observability.StoreLogger
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	defer r.metrics.TrackQuery(ctx, "get", UsersCollection)()

	var user models.User
	if err := r.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		if isNotFound(err) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, storeErr(ctx, r.log, err, "get")
	}
	return &user, nil
}

func (r *userRepository) ExistsByUserID(ctx context.Context, userID string) (bool, error) {
	defer r.metrics.TrackQuery(ctx, "exists", UserIDClaimsCollection)()

	n, err := r.claims.CountDocuments(ctx, bson.M{"_id": userID}, options.Count().SetLimit(1))
	if err != nil {
		return false, storeErr(ctx, r.log, err, "exists")
	}
	return n > 0, nil
}

// Create inserts the handle claim first; the claim's _id is the handle, so a
// concurrent registration for the same handle hits a duplicate key. If the
// profile insert then fails the claim is released again.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	defer r.metrics.TrackQuery(ctx, "create", UsersCollection)()

	claim := models.UserIDClaim{UserID: user.UserID, Subject: user.ID, CreatedAt: user.CreatedAt}
	if _, err := r.claims.InsertOne(ctx, claim); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.NewConflictError("User with the same user_id already exists. Choose another user_id.")
		}
		return storeErr(ctx, r.log, err, "claim_user_id")
	}

	if _, err := r.users.InsertOne(ctx, user); err != nil {
		if _, relErr := r.claims.DeleteOne(ctx, bson.M{"_id": user.UserID, "subject": user.ID}); relErr != nil {
			r.log.LogError(ctx, relErr, "release_user_id")
		}
		if mongo.IsDuplicateKeyError(err) {
			return models.NewConflictError("A profile already exists for this account")
		}
		return storeErr(ctx, r.log, err, "create")
	}

	r.log.LogWrite(ctx, "create", map[string]interface{}{"id": user.ID, "user_id": user.UserID})
	return nil
}

func (r *userRepository) Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	defer r.metrics.TrackQuery(ctx, "update", UsersCollection)()

	fields := upd.Fields()
	if len(fields) == 0 {
		return r.GetByID(ctx, id)
	}

	var user models.User
	err := r.users.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M(fields)},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err != nil {
		if isNotFound(err) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, storeErr(ctx, r.log, err, "update")
	}
	return &user, nil
}

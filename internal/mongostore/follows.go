package mongostore

import (
	"context"

	"github.com/Pratik1374/API-GraphQL/internal/models"
	"github.com/Pratik1374/API-GraphQL/internal/observability"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type followDocument struct {
	ID                 string `bson:"_id"`
	models.FollowEntry `bson:",inline"`
}

func followKey(ownerID string, kind models.FollowKind, otherID string) string {
	return ownerID + ":" + string(kind) + ":" + otherID
}

type followRepository struct {
	coll    *mongo.Collection
	metrics *observability.StoreMetrics
	log     *observability.StoreLogger
}

func (r *followRepository) PutEntry(ctx context.Context, entry *models.FollowEntry) error {
	defer r.metrics.TrackQuery(ctx, "put", FollowEntriesCollection)()

	key := followKey(entry.OwnerID, entry.Kind, entry.OtherID)
	doc := followDocument{ID: key, FollowEntry: *entry}
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return storeErr(ctx, r.log, err, "put")
	}
	return nil
}

func (r *followRepository) GetEntry(ctx context.Context, ownerID string, kind models.FollowKind, otherID string) (*models.FollowEntry, error) {
	defer r.metrics.TrackQuery(ctx, "get", FollowEntriesCollection)()

	var doc followDocument
	key := followKey(ownerID, kind, otherID)
	if err := r.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc); err != nil {
		if isNotFound(err) {
			return nil, models.NewNotFoundError("FollowEntry", key)
		}
		return nil, storeErr(ctx, r.log, err, "get")
	}
	return &doc.FollowEntry, nil
}

func (r *followRepository) DeleteEntry(ctx context.Context, ownerID string, kind models.FollowKind, otherID string) error {
	defer r.metrics.TrackQuery(ctx, "delete", FollowEntriesCollection)()

	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": followKey(ownerID, kind, otherID)}); err != nil {
		return storeErr(ctx, r.log, err, "delete")
	}
	return nil
}

func (r *followRepository) List(ctx context.Context, ownerID string, kind models.FollowKind) ([]*models.FollowEntry, error) {
	defer r.metrics.TrackQuery(ctx, "list", FollowEntriesCollection)()

	cur, err := r.coll.Find(ctx, bson.M{"owner_id": ownerID, "kind": kind}, newestFirst("following_from"))
	if err != nil {
		return nil, storeErr(ctx, r.log, err, "list")
	}
	var docs []followDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storeErr(ctx, r.log, err, "list")
	}
	entries := make([]*models.FollowEntry, 0, len(docs))
	for i := range docs {
		entries = append(entries, &docs[i].FollowEntry)
	}
	return entries, nil
}

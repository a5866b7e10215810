package mongostore

import (
	"context"

	"github.com/Pratik1374/API-GraphQL/internal/models"
	"github.com/Pratik1374/API-GraphQL/internal/observability"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type postRepository struct {
	coll    *mongo.Collection
	metrics *observability.StoreMetrics
	log     *observability.StoreLogger
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer r.metrics.TrackQuery(ctx, "create", PostsCollection)()

	if _, err := r.coll.InsertOne(ctx, post); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.NewConflictError("Post already exists")
		}
		return storeErr(ctx, r.log, err, "create")
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	defer r.metrics.TrackQuery(ctx, "get", PostsCollection)()

	var post models.Post
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		if isNotFound(err) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, storeErr(ctx, r.log, err, "get")
	}
	return &post, nil
}

func (r *postRepository) ListByCreator(ctx context.Context, creatorID string) ([]*models.Post, error) {
	defer r.metrics.TrackQuery(ctx, "list_by_creator", PostsCollection)()

	cur, err := r.coll.Find(ctx, bson.M{"creator_id": creatorID}, newestFirst("created_at"))
	if err != nil {
		return nil, storeErr(ctx, r.log, err, "list_by_creator")
	}
	posts := []*models.Post{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, storeErr(ctx, r.log, err, "list_by_creator")
	}
	return posts, nil
}

func (r *postRepository) ListRecent(ctx context.Context, limit int) ([]*models.Post, error) {
	defer r.metrics.TrackQuery(ctx, "list_recent", PostsCollection)()

	cur, err := r.coll.Find(ctx, bson.M{}, newestFirst("created_at").SetLimit(int64(limit)))
	if err != nil {
		return nil, storeErr(ctx, r.log, err, "list_recent")
	}
	posts := []*models.Post{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, storeErr(ctx, r.log, err, "list_recent")
	}
	return posts, nil
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	defer r.metrics.TrackQuery(ctx, "delete", PostsCollection)()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storeErr(ctx, r.log, err, "delete")
	}
	if res.DeletedCount == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}

type commentRepository struct {
	coll    *mongo.Collection
	metrics *observability.StoreMetrics
	log     *observability.StoreLogger
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	defer r.metrics.TrackQuery(ctx, "create", CommentsCollection)()

	if _, err := r.coll.InsertOne(ctx, comment); err != nil {
		return storeErr(ctx, r.log, err, "create")
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, postID, id string) (*models.Comment, error) {
	defer r.metrics.TrackQuery(ctx, "get", CommentsCollection)()

	var comment models.Comment
	if err := r.coll.FindOne(ctx, bson.M{"_id": id, "post_id": postID}).Decode(&comment); err != nil {
		if isNotFound(err) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, storeErr(ctx, r.log, err, "get")
	}
	return &comment, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	defer r.metrics.TrackQuery(ctx, "list_by_post", CommentsCollection)()

	cur, err := r.coll.Find(ctx, bson.M{"post_id": postID}, newestFirst("created_at"))
	if err != nil {
		return nil, storeErr(ctx, r.log, err, "list_by_post")
	}
	comments := []*models.Comment{}
	if err := cur.All(ctx, &comments); err != nil {
		return nil, storeErr(ctx, r.log, err, "list_by_post")
	}
	return comments, nil
}

func (r *commentRepository) Delete(ctx context.Context, postID, id string) error {
	defer r.metrics.TrackQuery(ctx, "delete", CommentsCollection)()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "post_id": postID})
	if err != nil {
		return storeErr(ctx, r.log, err, "delete")
	}
	if res.DeletedCount == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	return nil
}

func (r *commentRepository) CountByPost(ctx context.Context, postID string) (int64, error) {
	defer r.metrics.TrackQuery(ctx, "count_by_post", CommentsCollection)()

	n, err := r.coll.CountDocuments(ctx, bson.M{"post_id": postID})
	if err != nil {
		return 0, storeErr(ctx, r.log, err, "count_by_post")
	}
	return n, nil
}

// likeDocument stores a like under the natural key "<post>:<liker>".
type likeDocument struct {
	ID          string `bson:"_id"`
	models.Like `bson:",inline"`
}

func likeKey(postID, likerID string) string {
	return postID + ":" + likerID
}

type likeRepository struct {
	coll    *mongo.Collection
	metrics *observability.StoreMetrics
	log     *observability.StoreLogger
}

func (r *likeRepository) Create(ctx context.Context, like *models.Like) error {
	defer r.metrics.TrackQuery(ctx, "create", LikesCollection)()

	doc := likeDocument{ID: likeKey(like.PostID, like.LikerID), Like: *like}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.NewConflictError("User has already liked this post.")
		}
		return storeErr(ctx, r.log, err, "create")
	}
	return nil
}

func (r *likeRepository) Get(ctx context.Context, postID, likerID string) (*models.Like, error) {
	defer r.metrics.TrackQuery(ctx, "get", LikesCollection)()

	var doc likeDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": likeKey(postID, likerID)}).Decode(&doc); err != nil {
		if isNotFound(err) {
			return nil, models.NewNotFoundError("Like", likeKey(postID, likerID))
		}
		return nil, storeErr(ctx, r.log, err, "get")
	}
	return &doc.Like, nil
}

func (r *likeRepository) ListByPost(ctx context.Context, postID string) ([]*models.Like, error) {
	defer r.metrics.TrackQuery(ctx, "list_by_post", LikesCollection)()

	cur, err := r.coll.Find(ctx, bson.M{"post_id": postID}, newestFirst("created_at"))
	if err != nil {
		return nil, storeErr(ctx, r.log, err, "list_by_post")
	}
	var docs []likeDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storeErr(ctx, r.log, err, "list_by_post")
	}
	likes := make([]*models.Like, 0, len(docs))
	for i := range docs {
		likes = append(likes, &docs[i].Like)
	}
	return likes, nil
}

func (r *likeRepository) Delete(ctx context.Context, postID, likerID string) error {
	defer r.metrics.TrackQuery(ctx, "delete", LikesCollection)()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": likeKey(postID, likerID)})
	if err != nil {
		return storeErr(ctx, r.log, err, "delete")
	}
	if res.DeletedCount == 0 {
		return models.NewNotFoundError("Like", likeKey(postID, likerID))
	}
	return nil
}

func (r *likeRepository) CountByPost(ctx context.Context, postID string) (int64, error) {
	defer r.metrics.TrackQuery(ctx, "count_by_post", LikesCollection)()

	n, err := r.coll.CountDocuments(ctx, bson.M{"post_id": postID})
	if err != nil {
		return 0, storeErr(ctx, r.log, err, "count_by_post")
	}
	return n, nil
}

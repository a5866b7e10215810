package service

import (
	"context"

	"github.com/Pratik1374/API-GraphQL/internal/models"
	"github.com/Pratik1374/API-GraphQL/internal/repository"
)

type LikeService struct {
	store repository.Store
	opts  Options
}

type LikeInput struct {
	CallerID    string
	PostOwnerID string
	PostID      string
}

func NewLikeService(store repository.Store, opts Options) *LikeService {
	return &LikeService{store: store, opts: opts.withDefaults()}
}

// CreateLike records the caller's like. The (post, caller) pair is the
// storage key, so a concurrent duplicate fails with Conflict.
func (s *LikeService) CreateLike(ctx context.Context, in LikeInput) (like *models.Like, err error) {
	ctx, done := begin(ctx, "create_like", in.CallerID)
	defer done(&err)

	if err = requireCaller(in.CallerID); err != nil {
		return nil, err
	}
	if in.PostOwnerID == in.CallerID {
		return nil, models.NewInvalidOperationError("User can't like their own post")
	}
	if err = requireFields(in.PostOwnerID, in.PostID); err != nil {
		return nil, err
	}
	if _, err = ownedPost(ctx, s.store, in.PostID, in.PostOwnerID, in.CallerID, "User can't like their own post"); err != nil {
		return nil, err
	}

	liker, err := s.store.Users().GetByID(ctx, in.CallerID)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, models.NewNotFoundMessage(msgCallerNotFound)
		}
		return nil, err
	}

	like = &models.Like{
		PostID:    in.PostID,
		LikerID:   in.CallerID,
		UserID:    liker.UserID,
		CreatedAt: s.opts.Now(),
	}
	if err = s.store.Likes().Create(ctx, like); err != nil {
		return nil, err
	}
	return like, nil
}

// RemoveLike deletes the caller's like on a post.
func (s *LikeService) RemoveLike(ctx context.Context, in LikeInput) (err error) {
	ctx, done := begin(ctx, "remove_like", in.CallerID)
	defer done(&err)

	if err = requireCaller(in.CallerID); err != nil {
		return err
	}
	if err = requireFields(in.PostID); err != nil {
		return err
	}

	err = s.store.Likes().Delete(ctx, in.PostID, in.CallerID)
	if models.IsCode(err, models.CodeNotFound) {
		return models.NewNotFoundMessage("User has not liked this post.")
	}
	return err
}

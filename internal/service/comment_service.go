package service

import (
	"context"

	"github.com/Pratik1374/API-GraphQL/internal/models"
	"github.com/Pratik1374/API-GraphQL/internal/repository"
)

type CommentService struct {
	store repository.Store
	opts  Options
}

type CreateCommentInput struct {
	CallerID    string
	PostOwnerID string
	PostID      string
	Text        string
}

type DeleteCommentInput struct {
	CallerID  string
	PostID    string
	CommentID string
}

func NewCommentService(store repository.Store, opts Options) *CommentService {
	return &CommentService{store: store, opts: opts.withDefaults()}
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (comment *models.Comment, err error) {
	ctx, done := begin(ctx, "create_comment", in.CallerID)
	defer done(&err)

	if err = requireCaller(in.CallerID); err != nil {
		return nil, err
	}
	if in.PostOwnerID == in.CallerID {
		return nil, models.NewInvalidOperationError("User can't comment on their own post")
	}
	if err = requireFields(in.PostOwnerID, in.PostID, in.Text); err != nil {
		return nil, err
	}
	if _, err = ownedPost(ctx, s.store, in.PostID, in.PostOwnerID, in.CallerID, "User can't comment on their own post"); err != nil {
		return nil, err
	}

	comment = &models.Comment{
		ID:          s.opts.NewID(),
		PostID:      in.PostID,
		CommenterID: in.CallerID,
		Text:        in.Text,
		CreatedAt:   s.opts.Now(),
	}
	if err = s.store.Comments().Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes a comment written by the caller.
func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) (err error) {
	ctx, done := begin(ctx, "delete_comment", in.CallerID)
	defer done(&err)

	if err = requireCaller(in.CallerID); err != nil {
		return err
	}
	if err = requireFields(in.PostID, in.CommentID); err != nil {
		return err
	}

	comment, err := s.store.Comments().GetByID(ctx, in.PostID, in.CommentID)
	if err != nil {
		return err
	}
	if comment.CommenterID != in.CallerID {
		return models.NewForbiddenError("You can only delete your own comments")
	}
	return s.store.Comments().Delete(ctx, in.PostID, in.CommentID)
}

// ownedPost loads postID and checks that ownerID really created it and that
// the creator is not the caller.
func ownedPost(ctx context.Context, store repository.Store, postID, ownerID, callerID, selfMsg string) (*models.Post, error) {
	post, err := store.Posts().GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.CreatorID != ownerID {
		return nil, models.NewNotFoundError("Post", postID)
	}
	if post.CreatorID == callerID {
		return nil, models.NewInvalidOperationError(selfMsg)
	}
	return post, nil
}

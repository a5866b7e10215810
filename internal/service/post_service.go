package service

import (
	"context"
	"fmt"

	"github.com/Pratik1374/API-GraphQL/internal/cache"
	"github.com/Pratik1374/API-GraphQL/internal/models"
	"github.com/Pratik1374/API-GraphQL/internal/observability"
	"github.com/Pratik1374/API-GraphQL/internal/repository"
)

type PostService struct {
	store       repository.Store
	opts        Options
	recentLimit int
	recentMax   int
}

type CreatePostInput struct {
	CallerID    string
	Prompt      string
	Category    string
	Description string
	OutputURL   string
	Public      bool
	AIModelTags []string
}

type DeletePostInput struct {
	CallerID    string
	PostOwnerID string
	PostID      string
}

// FeedLimits bounds getPostsByCreation.
type FeedLimits struct {
	Default int
	Max     int
}

func NewPostService(store repository.Store, limits FeedLimits, opts Options) *PostService {
	if limits.Default <= 0 {
		limits.Default = 20
	}
	if limits.Max < limits.Default {
		limits.Max = limits.Default
	}
	return &PostService{
		store:       store,
		opts:        opts.withDefaults(),
		recentLimit: limits.Default,
		recentMax:   limits.Max,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (post *models.Post, err error) {
	ctx, done := begin(ctx, "create_post", in.CallerID)
	defer done(&err)

	if err = requireCaller(in.CallerID); err != nil {
		return nil, err
	}
	if err = requireFields(in.Prompt, in.Category, in.OutputURL); err != nil {
		return nil, err
	}

	tags := in.AIModelTags
	if tags == nil {
		tags = []string{}
	}
	post = &models.Post{
		ID:          s.opts.NewID(),
		CreatorID:   in.CallerID,
		Prompt:      in.Prompt,
		Category:    in.Category,
		Description: in.Description,
		OutputURL:   in.OutputURL,
		Public:      in.Public,
		AIModelTags: tags,
		CreatedAt:   s.opts.Now(),
	}
	if err = s.store.Posts().Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// GetPost returns any post to any authenticated caller.
func (s *PostService) GetPost(ctx context.Context, callerID, postID string) (post *models.Post, err error) {
	ctx, done := begin(ctx, "get_post", callerID)
	defer done(&err)

	if err = requireCaller(callerID); err != nil {
		return nil, err
	}
	if err = requireFields(postID); err != nil {
		return nil, err
	}
	return s.loadPost(ctx, postID)
}

func (s *PostService) loadPost(ctx context.Context, postID string) (*models.Post, error) {
	var cached models.Post
	err := s.opts.Cache.Aside(ctx, "post", cache.PostKey(postID), &cached, cache.PostTTL, func() error {
		p, err := s.store.Posts().GetByID(ctx, postID)
		if err != nil {
			return err
		}
		cached = *p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &cached, nil
}

// GetMyPosts lists the caller's posts, newest first.
func (s *PostService) GetMyPosts(ctx context.Context, callerID string) (posts []*models.Post, err error) {
	ctx, done := begin(ctx, "get_my_posts", callerID)
	defer done(&err)

	if err = requireCaller(callerID); err != nil {
		return nil, err
	}
	return s.store.Posts().ListByCreator(ctx, callerID)
}

// GetRecentPosts lists the newest posts. A nil limit uses the configured
// default; larger limits are capped.
func (s *PostService) GetRecentPosts(ctx context.Context, callerID string, limit *int) (posts []*models.Post, err error) {
	ctx, done := begin(ctx, "get_recent_posts", callerID)
	defer done(&err)

	if err = requireCaller(callerID); err != nil {
		return nil, err
	}
	n := s.recentLimit
	if limit != nil {
		if *limit < 1 {
			return nil, models.NewValidationError("limit must be positive")
		}
		n = min(*limit, s.recentMax)
	}
	return s.store.Posts().ListRecent(ctx, n)
}

func (s *PostService) GetPostComments(ctx context.Context, callerID, postID string) (comments []*models.Comment, err error) {
	ctx, done := begin(ctx, "get_post_comments", callerID)
	defer done(&err)

	if err = requireCaller(callerID); err != nil {
		return nil, err
	}
	if err = requireFields(postID); err != nil {
		return nil, err
	}
	if _, err = s.store.Posts().GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.store.Comments().ListByPost(ctx, postID)
}

func (s *PostService) GetPostLikes(ctx context.Context, callerID, postID string) (likes []*models.Like, err error) {
	ctx, done := begin(ctx, "get_post_likes", callerID)
	defer done(&err)

	if err = requireCaller(callerID); err != nil {
		return nil, err
	}
	if err = requireFields(postID); err != nil {
		return nil, err
	}
	if _, err = s.store.Posts().GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.store.Likes().ListByPost(ctx, postID)
}

// DeletePost removes a post with all of its comments and likes. The post is
// deleted last, so a failed child deletion leaves it in place.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) (err error) {
	ctx, done := begin(ctx, "delete_post", in.CallerID)
	defer done(&err)

	if err = requireCaller(in.CallerID); err != nil {
		return err
	}
	if err = requireFields(in.PostOwnerID, in.PostID); err != nil {
		return err
	}
	if in.PostOwnerID != in.CallerID {
		return models.NewForbiddenError("You can only delete your own posts")
	}

	post, err := s.store.Posts().GetByID(ctx, in.PostID)
	if err != nil {
		return err
	}
	if post.CreatorID != in.CallerID {
		return models.NewForbiddenError("You can only delete your own posts")
	}

	if s.store.Transactional() {
		err = s.store.Atomic(ctx, func(tx repository.Store) error {
			if err := deleteChildren(ctx, tx, in.PostID); err != nil {
				return err
			}
			return tx.Posts().Delete(ctx, in.PostID)
		})
	} else {
		err = s.deleteStepwise(ctx, in.PostID)
	}
	if err != nil {
		return err
	}

	s.opts.Cache.Invalidate(ctx, cache.PostKey(in.PostID))
	return nil
}

// deleteStepwise runs the cascade as retried idempotent steps: clear the
// children until both counts read zero, then delete the post.
func (s *PostService) deleteStepwise(ctx context.Context, postID string) error {
	err := s.opts.Retry.do(ctx, func() error {
		if err := deleteChildren(ctx, s.store, postID); err != nil {
			return err
		}
		return confirmNoChildren(ctx, s.store, postID)
	})
	if err != nil {
		return models.NewInternalError(fmt.Errorf("cascade delete of post %s incomplete: %w", postID, err))
	}

	return s.opts.Retry.do(ctx, func() error {
		return ignoreNotFound(s.store.Posts().Delete(ctx, postID))
	})
}

func deleteChildren(ctx context.Context, store repository.Store, postID string) error {
	comments, err := store.Comments().ListByPost(ctx, postID)
	if err != nil {
		return err
	}
	for _, c := range comments {
		if err := ignoreNotFound(store.Comments().Delete(ctx, postID, c.ID)); err != nil {
			return err
		}
	}
	observability.CascadeChildrenDeleted.WithLabelValues("comment").Add(float64(len(comments)))

	likes, err := store.Likes().ListByPost(ctx, postID)
	if err != nil {
		return err
	}
	for _, l := range likes {
		if err := ignoreNotFound(store.Likes().Delete(ctx, postID, l.LikerID)); err != nil {
			return err
		}
	}
	observability.CascadeChildrenDeleted.WithLabelValues("like").Add(float64(len(likes)))
	return nil
}

// confirmNoChildren fails with an internal (retryable) error while children
// remain, e.g. a comment written concurrently with the cascade.
func confirmNoChildren(ctx context.Context, store repository.Store, postID string) error {
	comments, err := store.Comments().CountByPost(ctx, postID)
	if err != nil {
		return err
	}
	likes, err := store.Likes().CountByPost(ctx, postID)
	if err != nil {
		return err
	}
	if comments > 0 || likes > 0 {
		return models.NewInternalError(fmt.Errorf("post %s still has %d comments and %d likes", postID, comments, likes))
	}
	return nil
}

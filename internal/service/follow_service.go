package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Pratik1374/API-GraphQL/internal/models"
	"github.com/Pratik1374/API-GraphQL/internal/observability"
	"github.com/Pratik1374/API-GraphQL/internal/repository"
)

type FollowService struct {
	store repository.Store
	opts  Options
}

func NewFollowService(store repository.Store, opts Options) *FollowService {
	return &FollowService{store: store, opts: opts.withDefaults()}
}

// Follow makes the caller follow followeeID. Both index entries carry the
// same following_from; following someone twice refreshes the pair.
func (s *FollowService) Follow(ctx context.Context, callerID, followeeID string) (edge *models.FollowEdge, err error) {
	ctx, done := begin(ctx, "follow", callerID)
	defer done(&err)

	if err = requireCaller(callerID); err != nil {
		return nil, err
	}
	if err = requireFields(followeeID); err != nil {
		return nil, err
	}
	if followeeID == callerID {
		return nil, models.NewInvalidOperationError("User can't follow themselves")
	}

	follower, err := s.store.Users().GetByID(ctx, callerID)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, models.NewNotFoundMessage(msgCallerNotFound)
		}
		return nil, err
	}
	followee, err := s.store.Users().GetByID(ctx, followeeID)
	if err != nil {
		return nil, err
	}

	edge = &models.FollowEdge{
		FollowerID:     callerID,
		FolloweeID:     followeeID,
		FollowerUserID: follower.UserID,
		FolloweeUserID: followee.UserID,
		FollowingFrom:  s.opts.Now(),
	}
	followers, following := edge.Entries()

	if s.store.Transactional() {
		err = s.store.Atomic(ctx, func(tx repository.Store) error {
			if err := tx.Follows().PutEntry(ctx, &followers); err != nil {
				return err
			}
			return tx.Follows().PutEntry(ctx, &following)
		})
		if err != nil {
			return nil, err
		}
		return edge, nil
	}

	if err = s.opts.Retry.do(ctx, func() error { return s.store.Follows().PutEntry(ctx, &followers) }); err != nil {
		return nil, err
	}
	if err = s.opts.Retry.do(ctx, func() error { return s.store.Follows().PutEntry(ctx, &following) }); err != nil {
		s.undo(ctx, followers)
		return nil, err
	}
	return edge, nil
}

// undo removes an entry written by a follow whose second half failed.
func (s *FollowService) undo(ctx context.Context, entry models.FollowEntry) {
	err := s.opts.Retry.do(ctx, func() error {
		return s.store.Follows().DeleteEntry(ctx, entry.OwnerID, entry.Kind, entry.OtherID)
	})
	if err != nil {
		observability.Logger.ErrorContext(ctx, "one-sided follow entry left behind",
			slog.String("owner_id", entry.OwnerID),
			slog.String("kind", string(entry.Kind)),
			slog.String("other_id", entry.OtherID),
			slog.String("error", err.Error()),
		)
	}
}

// Unfollow removes both index entries. Missing entries count as removed.
func (s *FollowService) Unfollow(ctx context.Context, callerID, followeeID string) (message string, err error) {
	ctx, done := begin(ctx, "unfollow", callerID)
	defer done(&err)

	if err = requireCaller(callerID); err != nil {
		return "", err
	}
	if err = requireFields(followeeID); err != nil {
		return "", err
	}

	remove := func(store repository.Store) error {
		if err := store.Follows().DeleteEntry(ctx, callerID, models.FollowKindFollowing, followeeID); err != nil {
			return err
		}
		return store.Follows().DeleteEntry(ctx, followeeID, models.FollowKindFollowers, callerID)
	}
	if s.store.Transactional() {
		err = s.store.Atomic(ctx, remove)
	} else {
		err = s.opts.Retry.do(ctx, func() error { return remove(s.store) })
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("You have unfollowed user with user_id: %s", followeeID), nil
}

// GetFollowers lists who follows subject, most recent first. An empty
// subject means the caller.
func (s *FollowService) GetFollowers(ctx context.Context, callerID, subject string) (entries []*models.FollowEntry, err error) {
	return s.list(ctx, "get_followers", callerID, subject, models.FollowKindFollowers)
}

// GetFollowing lists who subject follows, most recent first.
func (s *FollowService) GetFollowing(ctx context.Context, callerID, subject string) (entries []*models.FollowEntry, err error) {
	return s.list(ctx, "get_following", callerID, subject, models.FollowKindFollowing)
}

func (s *FollowService) list(ctx context.Context, operation, callerID, subject string, kind models.FollowKind) (entries []*models.FollowEntry, err error) {
	ctx, done := begin(ctx, operation, callerID)
	defer done(&err)

	if err = requireCaller(callerID); err != nil {
		return nil, err
	}
	if subject == "" {
		subject = callerID
	}
	return s.store.Follows().List(ctx, subject, kind)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Pratik1374/API-GraphQL/internal/cache"
	"github.com/Pratik1374/API-GraphQL/internal/identity"
	"github.com/Pratik1374/API-GraphQL/internal/models"
	"github.com/Pratik1374/API-GraphQL/internal/observability"
	"github.com/Pratik1374/API-GraphQL/internal/repository"
)

type UserService struct {
	store repository.Store
	idp   identity.Provider
	opts  Options
}

type RegisterInput struct {
	CallerID     string
	Email        string
	Name         string
	UserID       string
	Mobile       string
	ProfileImage string
	Gender       string
	Bio          string
}

// RegistrationOutcome records how far a registration got. It is returned
// alongside the error so callers can tell a clean rejection from a rolled
// back or half-finished one.
type RegistrationOutcome struct {
	Subject           string
	IdentityResolved  bool
	ProfilePersisted  bool
	Compensated       bool
	CompensationError error
}

// RegistrationError is a failed registration that got past the identity
// lookup. It unwraps to the error that stopped it.
type RegistrationError struct {
	Outcome RegistrationOutcome
	Err     error
}

func (e *RegistrationError) Error() string {
	if e.Outcome.CompensationError != nil {
		return fmt.Sprintf("registration failed: %v (identity rollback failed: %v)", e.Err, e.Outcome.CompensationError)
	}
	return fmt.Sprintf("registration failed: %v", e.Err)
}

func (e *RegistrationError) Unwrap() error { return e.Err }

func NewUserService(store repository.Store, idp identity.Provider, opts Options) *UserService {
	return &UserService{store: store, idp: idp, opts: opts.withDefaults()}
}

// Register creates the caller's profile. Once the identity account has been
// resolved, any persistence failure deletes that account again before the
// error is returned.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (user *models.User, outcome RegistrationOutcome, err error) {
	ctx, done := begin(ctx, "register", in.CallerID)
	defer done(&err)

	if err = requireCaller(in.CallerID); err != nil {
		return nil, outcome, err
	}
	if err = requireFields(in.Email, in.Name, in.UserID, in.Mobile, in.Gender, in.ProfileImage); err != nil {
		return nil, outcome, err
	}

	taken, err := s.store.Users().ExistsByUserID(ctx, in.UserID)
	if err != nil {
		return nil, outcome, err
	}
	if taken {
		return nil, outcome, models.NewConflictError("User with the same user_id already exists. Choose another user_id.")
	}
	if _, err = s.store.Users().GetByID(ctx, in.CallerID); err == nil {
		return nil, outcome, models.NewConflictError("A profile already exists for this account")
	} else if !models.IsCode(err, models.CodeNotFound) {
		return nil, outcome, err
	}

	account, err := s.idp.GetUserByEmail(ctx, in.Email)
	if err != nil {
		return nil, outcome, err
	}
	if account.Subject != in.CallerID {
		return nil, outcome, models.NewForbiddenError("The identity account for this email does not belong to the caller")
	}
	outcome.Subject = account.Subject
	outcome.IdentityResolved = true

	user = &models.User{
		ID:           account.Subject,
		UserID:       in.UserID,
		Email:        in.Email,
		Name:         in.Name,
		Mobile:       in.Mobile,
		ProfileImage: in.ProfileImage,
		Gender:       in.Gender,
		Bio:          in.Bio,
		CreatedAt:    s.opts.Now(),
	}
	if createErr := s.store.Users().Create(ctx, user); createErr != nil {
		s.compensate(ctx, &outcome)
		return nil, outcome, &RegistrationError{Outcome: outcome, Err: createErr}
	}
	outcome.ProfilePersisted = true

	s.opts.Cache.Invalidate(ctx, cache.UserKey(user.ID))
	return user, outcome, nil
}

func (s *UserService) compensate(ctx context.Context, outcome *RegistrationOutcome) {
	err := s.opts.Retry.do(ctx, func() error {
		return s.idp.DeleteUser(ctx, outcome.Subject)
	})
	if err != nil {
		outcome.CompensationError = err
		observability.RegistrationCompensations.WithLabelValues("failed").Inc()
		observability.Logger.ErrorContext(ctx, "identity rollback failed",
			slog.String("subject", outcome.Subject),
			slog.String("error", err.Error()),
		)
		return
	}
	outcome.Compensated = true
	observability.RegistrationCompensations.WithLabelValues("ok").Inc()
	observability.Logger.WarnContext(ctx, "identity account rolled back after failed registration",
		slog.String("subject", outcome.Subject),
	)
}

// GetUser returns the caller's own profile.
func (s *UserService) GetUser(ctx context.Context, callerID string) (user *models.User, err error) {
	ctx, done := begin(ctx, "get_user", callerID)
	defer done(&err)

	if err = requireCaller(callerID); err != nil {
		return nil, err
	}

	var cached models.User
	err = s.opts.Cache.Aside(ctx, "user", cache.UserKey(callerID), &cached, cache.UserTTL, func() error {
		u, loadErr := s.store.Users().GetByID(ctx, callerID)
		if loadErr != nil {
			return loadErr
		}
		cached = *u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &cached, nil
}

// UpdateUser merges the present fields into the caller's profile. Applying
// the same update twice leaves the profile unchanged.
func (s *UserService) UpdateUser(ctx context.Context, callerID string, upd models.UserUpdate) (user *models.User, err error) {
	ctx, done := begin(ctx, "update_user", callerID)
	defer done(&err)

	if err = requireCaller(callerID); err != nil {
		return nil, err
	}

	user, err = s.store.Users().Update(ctx, callerID, upd)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, models.NewNotFoundError("User", callerID)
		}
		return nil, err
	}
	s.opts.Cache.Invalidate(ctx, cache.UserKey(callerID))
	return user, nil
}

// AsRegistrationError extracts the saga outcome from err, if present.
func AsRegistrationError(err error) (*RegistrationError, bool) {
	var regErr *RegistrationError
	ok := errors.As(err, &regErr)
	return regErr, ok
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Pratik1374/API-GraphQL/internal/models"
	"github.com/Pratik1374/API-GraphQL/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerInput(caller, handle string) RegisterInput {
	return RegisterInput{
		CallerID:     caller,
		Email:        handle + "@example.com",
		Name:         "User " + handle,
		UserID:       handle,
		Mobile:       "5550100",
		ProfileImage: "https://img.example.com/" + handle + ".png",
		Gender:       "female",
	}
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()
	svc := NewUserService(newTestStore(t), accountsIdentity(nil), testOptions())
	ctx := context.Background()

	t.Run("no caller", func(t *testing.T) {
		_, _, err := svc.Register(ctx, registerInput("", "alice"))
		assertCode(t, err, models.CodeUnauthenticated)
	})

	t.Run("missing field", func(t *testing.T) {
		in := registerInput("sub-1", "alice")
		in.Mobile = ""
		_, _, err := svc.Register(ctx, in)
		assertCode(t, err, models.CodeInvalidArgument)
	})

	t.Run("bio is optional but gender is not", func(t *testing.T) {
		in := registerInput("sub-1", "alice")
		in.Gender = "  "
		_, _, err := svc.Register(ctx, in)
		assertCode(t, err, models.CodeInvalidArgument)
	})
}

func TestRegister_Success(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	idp := accountsIdentity(map[string]string{"alice@example.com": "sub-1"})
	svc := NewUserService(store, idp, testOptions())
	ctx := context.Background()

	in := registerInput("sub-1", "alice")
	in.Bio = "hi"
	user, outcome, err := svc.Register(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, "sub-1", user.ID)
	assert.True(t, outcome.IdentityResolved)
	assert.True(t, outcome.ProfilePersisted)
	assert.False(t, outcome.Compensated)

	got, err := svc.GetUser(ctx, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.UserID)
	assert.Equal(t, "hi", got.Bio)
	assert.Empty(t, idp.deleteCalls())
}

func TestRegister_DuplicateHandleIsConflict(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	seedUser(t, store, "sub-1", "alice")
	idp := accountsIdentity(map[string]string{"alice@example.com": "sub-2"})
	svc := NewUserService(store, idp, testOptions())

	_, outcome, err := svc.Register(context.Background(), registerInput("sub-2", "alice"))
	assertCode(t, err, models.CodeConflict)
	assert.False(t, outcome.IdentityResolved)
	assert.Empty(t, idp.deleteCalls(), "rejected before the identity lookup, nothing to roll back")
}

func TestRegister_ExistingProfileIsConflict(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	seedUser(t, store, "sub-1", "alice")
	idp := accountsIdentity(map[string]string{"alice2@example.com": "sub-1"})
	svc := NewUserService(store, idp, testOptions())

	_, _, err := svc.Register(context.Background(), registerInput("sub-1", "alice2"))
	assertCode(t, err, models.CodeConflict)
	assert.Empty(t, idp.deleteCalls())
}

func TestRegister_EmailOfAnotherAccountIsForbidden(t *testing.T) {
	t.Parallel()
	idp := accountsIdentity(map[string]string{"alice@example.com": "someone-else"})
	svc := NewUserService(newTestStore(t), idp, testOptions())

	_, outcome, err := svc.Register(context.Background(), registerInput("sub-1", "alice"))
	assertCode(t, err, models.CodeForbidden)
	assert.False(t, outcome.IdentityResolved)
	assert.Empty(t, idp.deleteCalls())
}

func TestRegister_UnknownEmail(t *testing.T) {
	t.Parallel()
	svc := NewUserService(newTestStore(t), accountsIdentity(nil), testOptions())

	_, _, err := svc.Register(context.Background(), registerInput("sub-1", "alice"))
	assertCode(t, err, models.CodeNotFound)
}

func TestRegister_PersistenceFailureCompensates(t *testing.T) {
	t.Parallel()
	base := newTestStore(t)
	store := &storeStub{Store: base, users: func(r repository.UserRepository) repository.UserRepository {
		return &userRepoStub{UserRepository: r, createFn: func(context.Context, *models.User) error {
			return models.NewInternalError(errors.New("disk full"))
		}}
	}}
	idp := accountsIdentity(map[string]string{"alice@example.com": "sub-1"})
	svc := NewUserService(store, idp, testOptions())

	_, outcome, err := svc.Register(context.Background(), registerInput("sub-1", "alice"))
	assertCode(t, err, models.CodeInternal)

	assert.True(t, outcome.IdentityResolved)
	assert.False(t, outcome.ProfilePersisted)
	assert.True(t, outcome.Compensated)
	assert.NoError(t, outcome.CompensationError)
	assert.Equal(t, []string{"sub-1"}, idp.deleteCalls())

	regErr, ok := AsRegistrationError(err)
	require.True(t, ok)
	assert.Equal(t, "sub-1", regErr.Outcome.Subject)
}

func TestRegister_RacingHandleCompensates(t *testing.T) {
	t.Parallel()
	base := newTestStore(t)
	store := &storeStub{Store: base, users: func(r repository.UserRepository) repository.UserRepository {
		return &userRepoStub{UserRepository: r, createFn: func(context.Context, *models.User) error {
			return models.NewConflictError("User with the same user_id already exists. Choose another user_id.")
		}}
	}}
	idp := accountsIdentity(map[string]string{"alice@example.com": "sub-1"})
	svc := NewUserService(store, idp, testOptions())

	_, outcome, err := svc.Register(context.Background(), registerInput("sub-1", "alice"))
	assertCode(t, err, models.CodeConflict)
	assert.True(t, outcome.Compensated)
	assert.Equal(t, []string{"sub-1"}, idp.deleteCalls())
}

func TestRegister_CompensationFailureIsReported(t *testing.T) {
	t.Parallel()
	base := newTestStore(t)
	store := &storeStub{Store: base, users: func(r repository.UserRepository) repository.UserRepository {
		return &userRepoStub{UserRepository: r, createFn: func(context.Context, *models.User) error {
			return models.NewInternalError(errors.New("disk full"))
		}}
	}}
	idp := accountsIdentity(map[string]string{"alice@example.com": "sub-1"})
	idp.deleteUserFn = func(context.Context, string) error {
		return models.NewInternalError(errors.New("identity service down"))
	}
	opts := testOptions()
	svc := NewUserService(store, idp, opts)

	_, outcome, err := svc.Register(context.Background(), registerInput("sub-1", "alice"))
	assertCode(t, err, models.CodeInternal)
	assert.False(t, outcome.Compensated)
	assert.Error(t, outcome.CompensationError)
	assert.Len(t, idp.deleteCalls(), int(opts.Retry.MaxTries))
	assert.Contains(t, err.Error(), "identity rollback failed")
}

func TestUpdateUser(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	seedUser(t, store, "sub-1", "alice")
	svc := NewUserService(store, accountsIdentity(nil), testOptions())
	ctx := context.Background()

	t.Run("idempotent partial merge", func(t *testing.T) {
		name, bio := "Alice L.", "painter"
		upd := models.UserUpdate{Name: &name, Bio: &bio}

		first, err := svc.UpdateUser(ctx, "sub-1", upd)
		require.NoError(t, err)
		second, err := svc.UpdateUser(ctx, "sub-1", upd)
		require.NoError(t, err)

		assert.Equal(t, *first, *second)
		assert.Equal(t, "Alice L.", second.Name)
		assert.Equal(t, "5550100", second.Mobile)
	})

	t.Run("no profile", func(t *testing.T) {
		name := "x"
		_, err := svc.UpdateUser(ctx, "sub-404", models.UserUpdate{Name: &name})
		assertCode(t, err, models.CodeNotFound)
	})

	t.Run("no caller", func(t *testing.T) {
		_, err := svc.UpdateUser(ctx, "", models.UserUpdate{})
		assertCode(t, err, models.CodeUnauthenticated)
	})
}

func TestGetUser_NotFound(t *testing.T) {
	t.Parallel()
	svc := NewUserService(newTestStore(t), accountsIdentity(nil), testOptions())
	_, err := svc.GetUser(context.Background(), "sub-404")
	assertCode(t, err, models.CodeNotFound)
}

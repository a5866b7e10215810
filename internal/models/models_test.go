package models

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain error", errors.New("boom"), CodeInternal},
		{"conflict", NewConflictError("taken"), CodeConflict},
		{"wrapped not found", fmt.Errorf("lookup: %w", NewNotFoundError("Post", "p1")), CodeNotFound},
		{"validation", NewValidationError("missing"), CodeInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestAppError_HTTPStatusAndExtensions(t *testing.T) {
	assert.Equal(t, fiber.StatusForbidden, NewForbiddenError("no").HTTPStatus())
	assert.Equal(t, fiber.StatusBadRequest, NewInvalidOperationError("self").HTTPStatus())
	assert.Equal(t, fiber.StatusInternalServerError, NewInternalError(errors.New("x")).HTTPStatus())
	assert.Equal(t, map[string]interface{}{"code": CodeNotFound}, NewNotFoundError("User", "u1").Extensions())
}

func TestUserUpdate_ApplyOnlyPresentFields(t *testing.T) {
	name := "New Name"
	bio := ""
	user := &User{ID: "s1", Name: "Old", Mobile: "123", Bio: "hello"}

	upd := UserUpdate{Name: &name, Bio: &bio}
	upd.Apply(user)

	assert.Equal(t, "New Name", user.Name)
	assert.Equal(t, "123", user.Mobile)
	assert.Equal(t, "", user.Bio)
	assert.Equal(t, map[string]any{"name": "New Name", "bio": ""}, upd.Fields())
}

func TestFollowEdge_EntriesShareTimestamp(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	edge := FollowEdge{FollowerID: "a", FolloweeID: "b", FollowerUserID: "alice", FolloweeUserID: "bob", FollowingFrom: now}

	followers, following := edge.Entries()

	assert.Equal(t, "b", followers.OwnerID)
	assert.Equal(t, FollowKindFollowers, followers.Kind)
	assert.Equal(t, "a", followers.OtherID)
	assert.Equal(t, "a", following.OwnerID)
	assert.Equal(t, FollowKindFollowing, following.Kind)
	assert.Equal(t, "b", following.OtherID)
	assert.Equal(t, "alice", followers.UserID)
	assert.Equal(t, "bob", following.UserID)
	assert.Equal(t, followers.FollowingFrom, following.FollowingFrom)
}

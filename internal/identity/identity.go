// Package identity verifies bearer tokens and manages the identity accounts
// that back user registration. Two providers exist: LocalProvider (HS256
// tokens, accounts in Redis) and FirebaseProvider (Firebase Authentication).
package identity

import (
	"context"
)

// Identity is a verified caller or an identity account looked up by email.
type Identity struct {
	Subject string `json:"subject"`
	Email   string `json:"email"`
}

// Provider is the external identity service.
type Provider interface {
	// Verify checks a bearer token and returns the caller it was issued to.
	Verify(ctx context.Context, token string) (*Identity, error)
	// GetUserByEmail resolves the identity account registered under email.
	GetUserByEmail(ctx context.Context, email string) (*Identity, error)
	// DeleteUser removes an identity account. Deleting a missing account succeeds.
	DeleteUser(ctx context.Context, subject string) error
	Name() string
}

type ctxKey struct{}

// WithIdentity returns a context carrying the verified caller.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the verified caller, if any.
func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(*Identity)
	return id, ok && id != nil && id.Subject != ""
}

package identity

import (
	"context"
	"fmt"

	"github.com/Pratik1374/API-GraphQL/internal/models"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// FirebaseProvider delegates to Firebase Authentication.
type FirebaseProvider struct {
	client *auth.Client
}

// NewFirebaseProvider initialises the Firebase app. With no credentials file
// the SDK falls back to application default credentials.
func NewFirebaseProvider(ctx context.Context, projectID, credentialsFile string) (*FirebaseProvider, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise firebase auth: %w", err)
	}
	return &FirebaseProvider{client: client}, nil
}

func (p *FirebaseProvider) Name() string { return "firebase" }

func (p *FirebaseProvider) Verify(ctx context.Context, token string) (*Identity, error) {
	tok, err := p.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, models.NewUnauthenticatedError("Invalid or expired token")
	}
	email, _ := tok.Claims["email"].(string)
	return &Identity{Subject: tok.UID, Email: email}, nil
}

func (p *FirebaseProvider) GetUserByEmail(ctx context.Context, email string) (*Identity, error) {
	u, err := p.client.GetUserByEmail(ctx, email)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return nil, models.NewNotFoundError("Identity account", email)
		}
		return nil, models.NewInternalError(err)
	}
	return &Identity{Subject: u.UID, Email: u.Email}, nil
}

func (p *FirebaseProvider) DeleteUser(ctx context.Context, subject string) error {
	if err := p.client.DeleteUser(ctx, subject); err != nil && !auth.IsUserNotFound(err) {
		return models.NewInternalError(err)
	}
	return nil
}

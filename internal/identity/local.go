package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/Pratik1374/API-GraphQL/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const (
	accountKeyPrefix = "identity:account:"
	emailKeyPrefix   = "identity:email:"
	minPasswordLen   = 8
)

// LocalConfig configures LocalProvider.
type LocalConfig struct {
	Secret   string
	Issuer   string
	Audience string
	TokenTTL time.Duration
}

// LocalProvider issues and verifies HS256 tokens for accounts kept in Redis.
type LocalProvider struct {
	client *redis.Client
	cfg    LocalConfig
	now    func() time.Time
}

func NewLocalProvider(client *redis.Client, cfg LocalConfig) (*LocalProvider, error) {
	if client == nil {
		return nil, errors.New("local identity provider requires redis")
	}
	if cfg.Secret == "" {
		return nil, errors.New("JWT secret not configured")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	return &LocalProvider{client: client, cfg: cfg, now: time.Now}, nil
}

func (p *LocalProvider) Name() string { return "local" }

func accountKey(subject string) string { return accountKeyPrefix + subject }

func emailKey(email string) string { return emailKeyPrefix + normalizeEmail(email) }

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// CreateAccount registers email with password and returns the new identity.
func (p *LocalProvider) CreateAccount(ctx context.Context, email, password string) (*Identity, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, models.NewValidationError("A valid email is required")
	}
	if len(password) < minPasswordLen {
		return nil, models.NewValidationError(fmt.Sprintf("Password must be at least %d characters", minPasswordLen))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	subject := uuid.NewString()
	reserved, err := p.client.SetNX(ctx, emailKey(email), subject, 0).Result()
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if !reserved {
		return nil, models.NewConflictError("An account already exists for this email")
	}

	err = p.client.HSet(ctx, accountKey(subject),
		"email", email,
		"password_hash", string(hash),
		"created_at", p.now().UTC().Format(time.RFC3339),
	).Err()
	if err != nil {
		p.client.Del(ctx, emailKey(email))
		return nil, models.NewInternalError(err)
	}
	return &Identity{Subject: subject, Email: email}, nil
}

// Authenticate checks email and password.
func (p *LocalProvider) Authenticate(ctx context.Context, email, password string) (*Identity, error) {
	id, err := p.GetUserByEmail(ctx, email)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, models.NewUnauthenticatedError("Invalid credentials")
		}
		return nil, err
	}
	hash, err := p.client.HGet(ctx, accountKey(id.Subject), "password_hash").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, models.NewUnauthenticatedError("Invalid credentials")
		}
		return nil, models.NewInternalError(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, models.NewUnauthenticatedError("Invalid credentials")
	}
	return id, nil
}

// IssueToken signs a token for id.
func (p *LocalProvider) IssueToken(id *Identity) (string, error) {
	now := p.now()
	claims := jwt.MapClaims{
		"sub":   id.Subject,
		"email": id.Email,
		"iss":   p.cfg.Issuer,
		"aud":   p.cfg.Audience,
		"exp":   now.Add(p.cfg.TokenTTL).Unix(),
		"iat":   now.Unix(),
		"nbf":   now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(p.cfg.Secret))
}

// Verify validates signature, issuer, audience and expiry, then checks the
// account still exists so deleted accounts stop authenticating at once.
func (p *LocalProvider) Verify(ctx context.Context, tokenString string) (*Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	}
	if p.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.cfg.Issuer))
	}
	if p.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(p.cfg.Audience))
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(p.cfg.Secret), nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, models.NewUnauthenticatedError("Invalid or expired token")
	}

	subject, _ := claims.GetSubject()
	if subject == "" {
		return nil, models.NewUnauthenticatedError("Invalid token structure - missing subject")
	}
	email, _ := claims["email"].(string)

	exists, err := p.client.Exists(ctx, accountKey(subject)).Result()
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if exists == 0 {
		return nil, models.NewUnauthenticatedError("Account no longer exists")
	}
	return &Identity{Subject: subject, Email: email}, nil
}

func (p *LocalProvider) GetUserByEmail(ctx context.Context, email string) (*Identity, error) {
	subject, err := p.client.Get(ctx, emailKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, models.NewNotFoundError("Identity account", normalizeEmail(email))
		}
		return nil, models.NewInternalError(err)
	}
	return &Identity{Subject: subject, Email: normalizeEmail(email)}, nil
}

func (p *LocalProvider) DeleteUser(ctx context.Context, subject string) error {
	email, err := p.client.HGet(ctx, accountKey(subject), "email").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return models.NewInternalError(err)
	}
	_, err = p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, accountKey(subject))
		pipe.Del(ctx, emailKey(email))
		return nil
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

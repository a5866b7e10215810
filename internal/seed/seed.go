package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Pratik1374/API-GraphQL/internal/bootstrap"
	"github.com/Pratik1374/API-GraphQL/internal/identity"
	"github.com/Pratik1374/API-GraphQL/internal/models"
	"github.com/Pratik1374/API-GraphQL/internal/observability"
	"github.com/Pratik1374/API-GraphQL/internal/service"
)

// DefaultPassword is the password of every seeded identity account.
const DefaultPassword = "password123"

// Options configures the seeder.
type Options struct {
	NumUsers        int
	PostsPerUser    int
	CommentsPerPost int
	LikesPerPost    int
	FollowsPerUser  int
	// Seed makes the generated data reproducible. Zero picks a random seed.
	Seed int64
}

// AccountCreator creates identity accounts. The local identity provider
// implements it.
type AccountCreator interface {
	CreateAccount(ctx context.Context, email, password string) (*identity.Identity, error)
}

// Report counts what a run created.
type Report struct {
	Users    []*models.User
	Posts    []*models.Post
	Comments int
	Likes    int
	Follows  int
}

// Seeder drives the domain services to populate the store.
type Seeder struct {
	accounts AccountCreator
	svc      *bootstrap.Services
}

func NewSeeder(accounts AccountCreator, svc *bootstrap.Services) *Seeder {
	return &Seeder{accounts: accounts, svc: svc}
}

// Run creates users, then posts, then comments, likes and follows between
// them. Every write goes through the same validation as the API.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Report, error) {
	f := NewFactory(opts.Seed)
	report := &Report{}

	observability.Logger.InfoContext(ctx, "🌱 seeding",
		slog.Int("users", opts.NumUsers),
		slog.Int("posts_per_user", opts.PostsPerUser),
	)

	for i := 0; i < opts.NumUsers; i++ {
		user, err := s.createUser(ctx, f)
		if err != nil {
			return report, fmt.Errorf("failed to create user %d: %w", i, err)
		}
		report.Users = append(report.Users, user)
	}
	observability.Logger.InfoContext(ctx, "✓ users created", slog.Int("count", len(report.Users)))

	for _, user := range report.Users {
		for j := 0; j < opts.PostsPerUser; j++ {
			post, err := s.svc.Posts.CreatePost(ctx, f.PostInput(user.ID))
			if err != nil {
				return report, fmt.Errorf("failed to create post for %s: %w", user.UserID, err)
			}
			report.Posts = append(report.Posts, post)
		}
	}
	observability.Logger.InfoContext(ctx, "✓ posts created", slog.Int("count", len(report.Posts)))

	index := make(map[string]int, len(report.Users))
	for i, u := range report.Users {
		index[u.ID] = i
	}

	for _, post := range report.Posts {
		owner := index[post.CreatorID]

		for _, i := range f.Pick(len(report.Users), opts.CommentsPerPost, owner) {
			_, err := s.svc.Comments.CreateComment(ctx, service.CreateCommentInput{
				CallerID:    report.Users[i].ID,
				PostOwnerID: post.CreatorID,
				PostID:      post.ID,
				Text:        f.CommentText(),
			})
			if err != nil {
				return report, fmt.Errorf("failed to comment on %s: %w", post.ID, err)
			}
			report.Comments++
		}

		for _, i := range f.Pick(len(report.Users), opts.LikesPerPost, owner) {
			_, err := s.svc.Likes.CreateLike(ctx, service.LikeInput{
				CallerID:    report.Users[i].ID,
				PostOwnerID: post.CreatorID,
				PostID:      post.ID,
			})
			if err != nil {
				return report, fmt.Errorf("failed to like %s: %w", post.ID, err)
			}
			report.Likes++
		}
	}
	observability.Logger.InfoContext(ctx, "✓ engagement created",
		slog.Int("comments", report.Comments),
		slog.Int("likes", report.Likes),
	)

	for i, user := range report.Users {
		for _, j := range f.Pick(len(report.Users), opts.FollowsPerUser, i) {
			if _, err := s.svc.Follows.Follow(ctx, user.ID, report.Users[j].ID); err != nil {
				return report, fmt.Errorf("failed to follow %s: %w", report.Users[j].UserID, err)
			}
			report.Follows++
		}
	}
	observability.Logger.InfoContext(ctx, "✓ follows created", slog.Int("count", report.Follows))

	return report, nil
}

func (s *Seeder) createUser(ctx context.Context, f *Factory) (*models.User, error) {
	email, handle := f.Account()
	id, err := s.accounts.CreateAccount(ctx, email, DefaultPassword)
	if err != nil {
		return nil, err
	}
	user, _, err := s.svc.Users.Register(ctx, f.RegisterInput(id.Subject, email, handle))
	return user, err
}

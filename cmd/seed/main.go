// Command seed populates the configured store with demo data through the
// domain services. It needs the local identity provider.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/Pratik1374/API-GraphQL/internal/bootstrap"
	"github.com/Pratik1374/API-GraphQL/internal/config"
	"github.com/Pratik1374/API-GraphQL/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	postsPerUser := flag.Int("posts", 3, "Posts per user")
	commentsPerPost := flag.Int("comments", 2, "Comments per post")
	likesPerPost := flag.Int("likes", 4, "Likes per post")
	followsPerUser := flag.Int("follows", 5, "Accounts each user follows")
	seedValue := flag.Int64("seed", 0, "Random seed (0 picks one)")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users, %d posts each\n", *numUsers, *postsPerUser)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("❌ Refusing to seed a production environment")
	}

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{SkipTracing: true})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	defer rt.Close(ctx)

	if rt.Local == nil {
		log.Fatalf("❌ Seeding needs IDENTITY_PROVIDER=local (got %s)", rt.Identity.Name())
	}

	report, err := seed.NewSeeder(rt.Local, rt.Services).Run(ctx, seed.Options{
		NumUsers:        *numUsers,
		PostsPerUser:    *postsPerUser,
		CommentsPerPost: *commentsPerPost,
		LikesPerPost:    *likesPerPost,
		FollowsPerUser:  *followsPerUser,
		Seed:            *seedValue,
	})
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✨ All done! %d users, %d posts, %d comments, %d likes, %d follows.",
		len(report.Users), len(report.Posts), report.Comments, report.Likes, report.Follows)
	log.Printf("📧 All seeded accounts have the password: %s", seed.DefaultPassword)
}

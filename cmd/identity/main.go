// Command identity administers local identity accounts.
//
//	identity create -email a@example.com -password secret123
//	identity token  -email a@example.com -password secret123
//	identity delete -subject <subject>
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Pratik1374/API-GraphQL/internal/bootstrap"
	"github.com/Pratik1374/API-GraphQL/internal/cache"
	"github.com/Pratik1374/API-GraphQL/internal/config"
	"github.com/Pratik1374/API-GraphQL/internal/identity"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: identity <create|token|delete> [flags]")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	cmd := os.Args[1]

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	email := fs.String("email", "", "Account email")
	password := fs.String("password", "", "Account password")
	subject := fs.String("subject", "", "Account subject (delete)")
	_ = fs.Parse(os.Args[2:])

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IdentityProvider != config.IdentityProviderLocal {
		log.Fatalf("IDENTITY_PROVIDER is %q; this tool manages local accounts only", cfg.IdentityProvider)
	}

	rdb := cache.InitRedis(cfg.RedisURL)
	if rdb == nil {
		log.Fatal("Redis is unreachable")
	}
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, local, err := bootstrap.NewIdentityProvider(ctx, cfg, rdb)
	if err != nil {
		log.Fatalf("Failed to initialize identity provider: %v", err)
	}

	switch cmd {
	case "create":
		id, err := local.CreateAccount(ctx, *email, *password)
		if err != nil {
			log.Fatalf("create failed: %v", err)
		}
		printToken(local, id)
	case "token":
		id, err := local.Authenticate(ctx, *email, *password)
		if err != nil {
			log.Fatalf("authentication failed: %v", err)
		}
		printToken(local, id)
	case "delete":
		if *subject == "" {
			log.Fatal("-subject is required")
		}
		if err := local.DeleteUser(ctx, *subject); err != nil {
			log.Fatalf("delete failed: %v", err)
		}
		fmt.Printf("deleted %s\n", *subject)
	default:
		usage()
	}
}

func printToken(local *identity.LocalProvider, id *identity.Identity) {
	token, err := local.IssueToken(id)
	if err != nil {
		log.Fatalf("failed to issue token: %v", err)
	}
	fmt.Printf("subject: %s\ntoken:   %s\n", id.Subject, token)
}

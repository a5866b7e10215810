// Package bootstrap connects the configured store, Redis and identity
// provider and builds the domain services on top of them.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Pratik1374/API-GraphQL/internal/cache"
	"github.com/Pratik1374/API-GraphQL/internal/config"
	"github.com/Pratik1374/API-GraphQL/internal/database"
	"github.com/Pratik1374/API-GraphQL/internal/featureflags"
	"github.com/Pratik1374/API-GraphQL/internal/identity"
	"github.com/Pratik1374/API-GraphQL/internal/mongostore"
	"github.com/Pratik1374/API-GraphQL/internal/observability"
	"github.com/Pratik1374/API-GraphQL/internal/repository"
	"github.com/Pratik1374/API-GraphQL/internal/service"

	"github.com/redis/go-redis/v9"
)

const serviceVersion = "1.0.0"

// Options control runtime initialization behavior.
type Options struct {
	// ServiceName labels traces. Defaults to "graphql-api".
	ServiceName string
	// SkipTracing leaves the global tracer untouched (CLI tools).
	SkipTracing bool
}

// Services groups the domain services.
type Services struct {
	Users    *service.UserService
	Posts    *service.PostService
	Comments *service.CommentService
	Likes    *service.LikeService
	Follows  *service.FollowService
}

// Runtime holds every long-lived dependency of the process.
type Runtime struct {
	Config   *config.Config
	Store    repository.Store
	Redis    *redis.Client
	Identity identity.Provider
	// Local is set when IDENTITY_PROVIDER=local; it also backs the signup and
	// token endpoints.
	Local    *identity.LocalProvider
	Flags    *featureflags.Manager
	Services *Services

	shutdownTracing func(context.Context) error
}

// InitRuntime connects everything selected by cfg. On error, whatever was
// already opened is closed again.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (_ *Runtime, err error) {
	if opts.ServiceName == "" {
		opts.ServiceName = "graphql-api"
	}
	rt := &Runtime{
		Config: cfg,
		Flags:  featureflags.NewManager(cfg.FeatureFlags),
	}
	defer func() {
		if err != nil {
			_ = rt.Close(context.Background())
		}
	}()

	if !opts.SkipTracing {
		rt.shutdownTracing, err = observability.InitTracing(observability.TracingConfig{
			ServiceName:    opts.ServiceName,
			ServiceVersion: serviceVersion,
			Environment:    cfg.Env,
			Enabled:        cfg.TracingEnabled,
			Exporter:       cfg.TracingExporter,
			OTLPEndpoint:   cfg.OTLPEndpoint,
			SamplerRatio:   cfg.TracingSampleRatio,
		})
		if err != nil {
			return nil, fmt.Errorf("tracing init failed: %w", err)
		}
	}

	rt.Store, err = OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// Redis may be nil if unreachable; only the local identity provider needs it.
	rt.Redis = cache.InitRedis(cfg.RedisURL)

	rt.Identity, rt.Local, err = NewIdentityProvider(ctx, cfg, rt.Redis)
	if err != nil {
		return nil, err
	}

	var readCache *cache.Cache
	if rt.Flags.On(featureflags.ReadCache) && rt.Redis != nil {
		readCache = cache.New(rt.Redis)
	}
	rt.Services = NewServices(cfg, rt.Store, rt.Identity, readCache)

	observability.Logger.Info("runtime ready",
		slog.String("store", rt.Store.Name()),
		slog.String("identity", rt.Identity.Name()),
		slog.Bool("read_cache", readCache != nil),
	)
	return rt, nil
}

// OpenStore opens the backend named by STORE_DRIVER.
func OpenStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres, config.StoreDriverSQLite:
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		replica, err := database.ConnectReadReplica(cfg)
		if err != nil {
			// The primary serves reads when the replica is down.
			observability.Logger.Warn("read replica unavailable, using primary for reads", slog.String("error", err.Error()))
		}
		return repository.NewGormStore(db, replica), nil
	case config.StoreDriverMongo:
		s, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("mongo connection failed: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}
}

// NewIdentityProvider builds the provider named by IDENTITY_PROVIDER. The
// second return value is non-nil only for the local provider.
func NewIdentityProvider(ctx context.Context, cfg *config.Config, rdb *redis.Client) (identity.Provider, *identity.LocalProvider, error) {
	switch cfg.IdentityProvider {
	case config.IdentityProviderLocal:
		if rdb == nil {
			return nil, nil, errors.New("IDENTITY_PROVIDER=local requires a reachable Redis")
		}
		local, err := identity.NewLocalProvider(rdb, identity.LocalConfig{
			Secret:   cfg.JWTSecret,
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
			TokenTTL: time.Duration(cfg.TokenTTLMinutes) * time.Minute,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("local identity provider: %w", err)
		}
		return local, local, nil
	case config.IdentityProviderFirebase:
		fb, err := identity.NewFirebaseProvider(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsFile)
		if err != nil {
			return nil, nil, err
		}
		return fb, nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported IDENTITY_PROVIDER %q", cfg.IdentityProvider)
	}
}

// NewServices builds the domain services. readCache may be nil.
func NewServices(cfg *config.Config, store repository.Store, idp identity.Provider, readCache *cache.Cache) *Services {
	opts := service.Options{Cache: readCache}
	return &Services{
		Users:    service.NewUserService(store, idp, opts),
		Posts:    service.NewPostService(store, service.FeedLimits{Default: cfg.RecentPostsLimit, Max: cfg.RecentPostsMax}, opts),
		Comments: service.NewCommentService(store, opts),
		Likes:    service.NewLikeService(store, opts),
		Follows:  service.NewFollowService(store, opts),
	}
}

// Close releases the store, Redis and the tracer. Safe on a partially
// initialized Runtime.
func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	if rt.Store != nil {
		if err := rt.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	if rt.Redis != nil {
		if err := rt.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if rt.shutdownTracing != nil {
		if err := rt.shutdownTracing(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracing: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Package server exposes the GraphQL API over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Pratik1374/API-GraphQL/internal/bootstrap"
	"github.com/Pratik1374/API-GraphQL/internal/config"
	"github.com/Pratik1374/API-GraphQL/internal/featureflags"
	"github.com/Pratik1374/API-GraphQL/internal/graph"
	"github.com/Pratik1374/API-GraphQL/internal/middleware"
	"github.com/Pratik1374/API-GraphQL/internal/models"
	"github.com/Pratik1374/API-GraphQL/internal/observability"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	graphql "github.com/graph-gophers/graphql-go"
)

const serviceName = "graphql-api"

// Server holds the runtime dependencies and the fiber app.
type Server struct {
	config         *config.Config
	rt             *bootstrap.Runtime
	schema         *graphql.Schema
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
}

// NewServer connects every dependency selected by cfg and builds the server.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{ServiceName: serviceName})
	if err != nil {
		return nil, err
	}
	s, err := NewServerWithDeps(cfg, rt)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}
	return s, nil
}

// NewServerWithDeps builds a Server on an already initialized runtime. Tests
// use it with an in-memory store.
func NewServerWithDeps(cfg *config.Config, rt *bootstrap.Runtime) (*Server, error) {
	svc := rt.Services
	resolver := graph.NewResolver(svc.Users, svc.Posts, svc.Comments, svc.Likes, svc.Follows)
	schema, err := graph.NewSchema(resolver, graph.SchemaConfig{
		Introspection:  rt.Flags.On(featureflags.Introspection),
		MaxDepth:       12,
		MaxParallelism: 10,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build graphql schema: %w", err)
	}

	return &Server{
		config:         cfg,
		rt:             rt,
		schema:         schema,
		promMiddleware: middleware.InitMetrics(serviceName),
	}, nil
}

// App returns the fiber app, building it on first use.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}

	bodyLimit := s.config.BodyLimitMB
	if bodyLimit <= 0 {
		bodyLimit = 10
	}
	app := fiber.New(fiber.Config{
		AppName:   "GraphQL API",
		BodyLimit: bodyLimit * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return models.RespondWithError(c, fe.Code, err)
			}
			observability.Logger.ErrorContext(c.UserContext(), "unhandled request error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		},
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())

	// Copies request and trace IDs into the request context for logging.
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so browsers still see CORS headers on 429s.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	// Global per-IP limit; the GraphQL route adds a per-caller limit in Redis.
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "GraphQL API Metrics Dashboard",
	}))

	if s.rt.Flags.On(featureflags.GraphiQL) {
		app.Get("/graphiql", s.GraphiQL)
	}

	limit := s.config.RateLimitPerMinute
	if limit <= 0 {
		limit = 120
	}
	gql := []fiber.Handler{
		middleware.AuthRequired(s.rt.Identity),
		middleware.RateLimit(s.rt.Redis, limit, time.Minute, "graphql"),
		s.GraphQL,
	}
	app.Post("/graphql", gql...)
	app.Get("/graphql", gql...)

	if s.rt.Local != nil {
		auth := app.Group("/auth/local")
		auth.Post("/signup", middleware.RateLimitWithPolicy(s.rt.Redis, 10, time.Minute, middleware.FailClosed, "signup"), s.LocalSignup)
		auth.Post("/token", middleware.RateLimitWithPolicy(s.rt.Redis, 20, time.Minute, middleware.FailClosed, "token"), s.LocalToken)
	}
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports the store and Redis status. A missing Redis is
// reported but only a failing one makes the service unready.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	storeStatus := "healthy"
	if err := s.rt.Store.Ping(ctx); err != nil {
		storeStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.rt.Redis != nil {
		if err := s.rt.Redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if storeStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"store":    storeStatus,
			"redis":    redisStatus,
			"identity": s.rt.Identity.Name(),
		},
		"time": time.Now(),
	})
}

// Start builds the app and listens on the configured port.
func (s *Server) Start() error {
	app := s.App()
	observability.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown stops accepting requests and releases the runtime.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			observability.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}
	if err := s.rt.Close(ctx); err != nil {
		return err
	}
	observability.Logger.Info("Server shutdown complete")
	return nil
}

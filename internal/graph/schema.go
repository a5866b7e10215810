// Package graph exposes the domain services as a GraphQL schema.
package graph

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Pratik1374/API-GraphQL/internal/identity"
	"github.com/Pratik1374/API-GraphQL/internal/models"
	"github.com/Pratik1374/API-GraphQL/internal/observability"

	graphql "github.com/graph-gophers/graphql-go"
)

//go:embed schema.graphql
var schemaSDL string

// SchemaConfig controls query limits and introspection.
type SchemaConfig struct {
	Introspection  bool
	MaxDepth       int
	MaxParallelism int
}

// NewSchema parses the SDL and binds it to r.
func NewSchema(r *Resolver, cfg SchemaConfig) (*graphql.Schema, error) {
	opts := []graphql.SchemaOpt{graphql.Logger(panicLogger{})}
	if cfg.MaxDepth > 0 {
		opts = append(opts, graphql.MaxDepth(cfg.MaxDepth))
	}
	if cfg.MaxParallelism > 0 {
		opts = append(opts, graphql.MaxParallelism(cfg.MaxParallelism))
	}
	if !cfg.Introspection {
		opts = append(opts, graphql.DisableIntrospection())
	}

	schema, err := graphql.ParseSchema(schemaSDL, r, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse graphql schema: %w", err)
	}
	return schema, nil
}

// panicLogger routes resolver panics to the structured logger.
type panicLogger struct{}

func (panicLogger) LogPanic(ctx context.Context, value interface{}) {
	observability.Logger.ErrorContext(ctx, "graphql resolver panic", slog.Any("panic", value))
}

// callerID returns the verified subject, or "" for anonymous requests. The
// services reject anonymous callers themselves.
func callerID(ctx context.Context) string {
	if id, ok := identity.FromContext(ctx); ok {
		return id.Subject
	}
	return ""
}

// resolverError returns the *models.AppError behind err so graphql-go can
// publish its code under "extensions". Anything else is reported as INTERNAL.
func resolverError(err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return models.NewInternalError(err)
}

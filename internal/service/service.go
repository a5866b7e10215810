// Package service implements the domain operations behind the GraphQL API.
// Every operation takes the verified caller's subject explicitly and fails
// with a *models.AppError.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Pratik1374/API-GraphQL/internal/cache"
	"github.com/Pratik1374/API-GraphQL/internal/models"
	"github.com/Pratik1374/API-GraphQL/internal/observability"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

const (
	msgAuthRequired   = "Authentication required to access this resource"
	msgMissingFields  = "All required fields must be provided."
	msgCallerNotFound = "User not found in the Users collection."
)

// RetryPolicy bounds the retries of idempotent steps on backends without
// multi-document transactions and of registration compensation.
type RetryPolicy struct {
	MaxTries        uint
	InitialInterval time.Duration
	MaxElapsed      time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxTries: 5, InitialInterval: 50 * time.Millisecond, MaxElapsed: 5 * time.Second}
}

// Options are shared by all services. Zero values fall back to defaults.
type Options struct {
	Now   func() time.Time
	NewID func() string
	Retry RetryPolicy
	Cache *cache.Cache
}

func (o Options) withDefaults() Options {
	if o.Now == nil {
		o.Now = func() time.Time { return time.Now().UTC() }
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	if o.Retry.MaxTries == 0 {
		o.Retry = DefaultRetryPolicy()
	}
	return o
}

// do runs fn until it succeeds, returns a non-internal error, or the policy
// is exhausted. Domain outcomes such as NotFound are not retried.
func (p RetryPolicy) do(ctx context.Context, fn func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := fn()
		if err != nil && models.CodeOf(err) != models.CodeInternal {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(p.MaxTries),
		backoff.WithMaxElapsedTime(p.MaxElapsed),
	)

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		return permanent.Err
	}
	return err
}

// begin starts the span for one operation. The returned func must be
// deferred with a pointer to the named error result; it normalises the error
// into the taxonomy, logs failures and records the outcome.
func begin(ctx context.Context, operation, caller string) (context.Context, func(*error)) {
	span, ctx := observability.StartOperation(ctx, operation, attribute.String("caller.subject", caller))
	if caller != "" {
		ctx = observability.WithSubject(ctx, caller)
	}
	return ctx, func(errp *error) {
		if err := *errp; err != nil {
			var appErr *models.AppError
			if !errors.As(err, &appErr) {
				*errp = models.NewInternalError(err)
			}
			span.SetError(*errp)
			observability.LogOperationFailure(ctx, operation, models.CodeOf(*errp), *errp)
		}
		observability.RecordOperation(operation, models.CodeOf(*errp))
		span.End()
	}
}

func requireCaller(caller string) error {
	if caller == "" {
		return models.NewUnauthenticatedError(msgAuthRequired)
	}
	return nil
}

// requireFields fails with InvalidArgument when any value is blank.
func requireFields(values ...string) error {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return models.NewValidationError(msgMissingFields)
		}
	}
	return nil
}

func ignoreNotFound(err error) error {
	if models.IsCode(err, models.CodeNotFound) {
		return nil
	}
	return err
}

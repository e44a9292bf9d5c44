// Package service holds the domain operations behind the HTTP handlers. Every
// mutating call takes the acting authz.Principal and returns *models.AppError
// values the server maps straight onto status codes.
package service

import (
	"context"
	"log/slog"

	"devcircle/internal/middleware"
	"devcircle/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Pagination is an optional window over an ordered list. Zero Limit means all.
type Pagination struct {
	Limit  int
	Offset int
}

func startSpan(ctx context.Context, name string, actorID uint, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if actorID != 0 {
		attrs = append(attrs, observability.UserAttr(actorID))
	}
	return observability.StartSpan(ctx, name, attrs...)
}

func logNoop(ctx context.Context, msg string, attrs ...any) {
	middleware.Logger.InfoContext(ctx, msg, attrs...)
}

func uintAttr(key string, v uint) slog.Attr {
	return slog.Uint64(key, uint64(v))
}

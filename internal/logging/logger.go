// Package logging wraps slog behind a small context-aware interface so that
// services and handlers do not depend on a concrete logger.
package logging

import "context"

// Logger is a structured logger. Args are key/value pairs:
//
//	log.Info(ctx, "todo created", "todo_id", id, "owner_id", ownerID)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given pairs.
	With(args ...any) Logger
}

// Package observability provides logging, metrics, and tracing helpers shared
// by the store and service layers.
package observability

import (
	"context"
	"log/slog"
)

// RepoLogger provides structured logging for repository operations.
type RepoLogger struct {
	tableName string
}

// NewRepoLogger creates a new RepoLogger for the given table.
func NewRepoLogger(tableName string) *RepoLogger {
	return &RepoLogger{tableName: tableName}
}

// LogWrite logs a create, update or delete against the table.
func (l *RepoLogger) LogWrite(ctx context.Context, operation string, id uint) {
	slog.Default().DebugContext(ctx, "repository write",
		slog.String("table", l.tableName),
		slog.String("operation", operation),
		slog.Uint64("id", uint64(id)),
	)
}

// LogError logs a repository error.
func (l *RepoLogger) LogError(ctx context.Context, err error, operation string) {
	slog.Default().ErrorContext(ctx, "repository error",
		slog.String("table", l.tableName),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

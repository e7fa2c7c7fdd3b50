package utils

import (
	"context"
	"time"
)

var dbTimeout = 5 * time.Second

// SetDBTimeout installs the configured per-query deadline. Called once
// from main before any repository runs; non-positive values keep the
// default.
func SetDBTimeout(d time.Duration) {
	if d > 0 {
		dbTimeout = d
	}
}

// WithDBTimeout bounds a repository query with the configured deadline.
func WithDBTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, dbTimeout)
}

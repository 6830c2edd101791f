// Package hooks contains bun query hooks.
package hooks

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/rise-and-shine/tabletop/observability/logger"
)

var _ bun.QueryHook = (*DebugHook)(nil)

// DebugHook logs executed queries through the global logger, flagging failures
// and queries slower than a threshold.
type DebugHook struct {
	enabled            bool
	verbose            bool
	slowQueryThreshold time.Duration
}

// DebugHookOption configures a DebugHook.
type DebugHookOption func(*DebugHook)

// NewDebugHook creates an enabled, verbose hook with a 100ms slow query threshold.
func NewDebugHook(opts ...DebugHookOption) *DebugHook {
	hook := &DebugHook{
		enabled:            true,
		verbose:            true,
		slowQueryThreshold: 100 * time.Millisecond, //nolint:mnd // sensible default
	}

	for _, opt := range opts {
		opt(hook)
	}

	return hook
}

// WithEnabled turns the hook on or off.
func WithEnabled(enabled bool) DebugHookOption {
	return func(h *DebugHook) {
		h.enabled = enabled
	}
}

// WithVerbose logs every query at debug level when set; otherwise only
// failures, empty results and slow queries are logged.
func WithVerbose(verbose bool) DebugHookOption {
	return func(h *DebugHook) {
		h.verbose = verbose
	}
}

// WithSlowQueryThreshold sets the warn threshold. Zero disables slow query detection.
func WithSlowQueryThreshold(threshold time.Duration) DebugHookOption {
	return func(h *DebugHook) {
		h.slowQueryThreshold = threshold
	}
}

// BeforeQuery implements bun.QueryHook.
func (h *DebugHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

// AfterQuery implements bun.QueryHook.
func (h *DebugHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	if !h.enabled {
		return
	}

	duration := time.Since(event.StartTime)
	noRows := errors.Is(event.Err, sql.ErrNoRows)
	failed := event.Err != nil && !noRows && !errors.Is(event.Err, sql.ErrTxDone)
	slow := h.slowQueryThreshold > 0 && duration >= h.slowQueryThreshold

	if !h.verbose && !failed && !noRows && !slow {
		return
	}

	log := logger.Named("bun").
		WithContext(ctx).
		With("query", strings.ReplaceAll(event.Query, `"`, "")).
		With("duration", duration.Round(time.Microsecond))

	msg := "[bun] " + event.Operation()
	switch {
	case failed:
		log.With("error", event.Err).Error(msg)
	case noRows:
		log.With("error", event.Err).Warn(msg)
	case slow:
		log.Warn(msg + " (slow)")
	default:
		log.Debug(msg)
	}
}

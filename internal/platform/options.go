package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/seoagent/pkg/core"
)

// options holds the internal configuration for the article service.
type options struct {
	repository   core.Repository
	logger       *slog.Logger
	adapter      string
	format       string
	mustExist    bool
	readOnly     bool
	parseCache   bool
	eventBuffer  int
	clock        func() time.Time
	errorHandler func(error)
}

// Option defines a functional option for configuring the article service.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		adapter:    "fs",
		parseCache: true,
	}
}

// WithMustExist ensures the articles directory must already exist.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithLogger sets the logger for the service and its adapter.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRepository allows injecting a custom storage adapter (e.g. a mock).
// If provided, the default filesystem adapter will be skipped.
func WithRepository(repo core.Repository) Option {
	return func(o *options) {
		o.repository = repo
	}
}

// WithAdapter allows specifying the storage adapter to use by name.
// Defaults to "fs".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithFormat selects the record encoding: "json" (default) or "yaml".
func WithFormat(format string) Option {
	return func(o *options) {
		o.format = format
	}
}

// WithEventBuffer allows specifying the size of the event broker buffer.
// Zero means default (100).
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.eventBuffer = size
	}
}

// WithClock replaces the clock used for ids and timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.clock = now
	}
}

// WithParseCache toggles the in-memory cache of decoded records. Enabled by default.
func WithParseCache(enabled bool) Option {
	return func(o *options) {
		o.parseCache = enabled
	}
}

// WithWatcherErrorHandler registers a callback for errors raised inside the Watch loop,
// which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}

// WithReadOnly enables read-only mode.
// In this mode:
// 1. Create, status updates and Delete return ErrReadOnly.
// 2. Initialization does not create the directory.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.readOnly = enabled
	}
}

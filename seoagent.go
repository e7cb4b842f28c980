package seoagent

import (
	"log/slog"
	"time"

	"github.com/aretw0/seoagent/internal/platform"
	"github.com/aretw0/seoagent/pkg/core"
)

// Version is the release of the library and CLI.
const Version = "0.1.0"

// --- Types ---

// Article is a public alias for the stored record.
type Article = core.Article

// Service is a public alias for the article service.
type Service = core.Service

// CreateInput is a public alias for the fields accepted on creation.
type CreateInput = core.CreateInput

// --- Configuration ---

// Option defines a functional option for configuring the article service.
type Option = platform.Option

// WithMustExist ensures the articles directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithRepository allows injecting a custom storage adapter.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// WithAdapter allows specifying the storage adapter to use by name.
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithFormat selects the record encoding ("json" or "yaml").
func WithFormat(format string) Option {
	return platform.WithFormat(format)
}

// WithEventBuffer allows specifying the size of the event broker buffer.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// WithClock replaces the clock used for ids and timestamps.
func WithClock(now func() time.Time) Option {
	return platform.WithClock(now)
}

// WithParseCache toggles the decoded record cache.
func WithParseCache(enabled bool) Option {
	return platform.WithParseCache(enabled)
}

// WithReadOnly enables read-only mode.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithWatcherErrorHandler registers a callback for watcher errors.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Factory ---

// New creates the article service over the directory at path.
func New(path string, opts ...Option) (*core.Service, error) {
	return platform.New(path, opts...)
}

// Init initializes a repository explicitly.
func Init(path string, opts ...Option) (core.Repository, error) {
	return platform.Init(path, opts...)
}

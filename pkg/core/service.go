package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/go-playground/validator/v10"

	"github.com/aretw0/seoagent/pkg/slug"
)

// DefaultListLimit is used when a listing asks for zero or fewer records.
const DefaultListLimit = 10

// DefaultEventBuffer is the size of the watch broker buffer.
const DefaultEventBuffer = 100

// CreateInput carries the caller-supplied fields of a new article.
// Everything else (id, slug, alt text, timestamps) is assigned by the service.
type CreateInput struct {
	Title             string `validate:"required"`
	Content           string
	MetaDescription   string
	PrimaryKeyword    string
	SecondaryKeywords []string
	ImageURL          string
	SchemaMarkup      map[string]any
	// Status overrides the creation status. Empty means published.
	Status Status `validate:"omitempty,oneof=draft published"`
}

// Service handles the business rules for articles.
type Service struct {
	repo            Repository
	logger          *slog.Logger
	now             func() time.Time
	validate        *validator.Validate
	eventBufferSize int
	mu              sync.RWMutex
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithClock replaces the wall clock used for ids and timestamps.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithServiceLogger sets the service logger.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithEventBuffer sets the size of the watch broker buffer. Zero keeps the default.
func WithEventBuffer(size int) ServiceOption {
	return func(s *Service) {
		if size > 0 {
			s.eventBufferSize = size
		}
	}
}

// NewService creates a new Service.
func NewService(repo Repository, opts ...ServiceOption) *Service {
	s := &Service{
		repo:            repo,
		logger:          slog.New(slog.DiscardHandler),
		now:             time.Now,
		validate:        validator.New(),
		eventBufferSize: DefaultEventBuffer,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Repository exposes the underlying storage adapter.
func (s *Service) Repository() Repository {
	return s.repo
}

// CreateArticle builds the full record from in and persists it.
//
// Workflow:
//  1. Validate input and derive the slug (an empty slug is rejected).
//  2. Assign id, alt text, default schema markup, status and timestamps.
//  3. Delegate to the repository, which may disambiguate the id on collision.
func (s *Service) CreateArticle(ctx context.Context, in CreateInput) (Receipt, error) {
	if err := s.validate.Struct(in); err != nil {
		return Receipt{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	sl := slug.Slugify(in.Title)
	if sl == "" {
		return Receipt{}, fmt.Errorf("%w: %q", ErrEmptySlug, in.Title)
	}

	now := s.now()
	stamp := FormatTimestamp(now)

	status := in.Status
	if status == "" {
		status = StatusPublished
	}

	schema := in.SchemaMarkup
	if len(schema) == 0 {
		schema = DefaultSchemaMarkup(in.Title, in.MetaDescription)
	}

	keywords := in.SecondaryKeywords
	if keywords == nil {
		keywords = []string{}
	}

	article := Article{
		ID:                slug.NewID(sl, now),
		Slug:              sl,
		Title:             in.Title,
		MetaDescription:   in.MetaDescription,
		Content:           in.Content,
		PrimaryKeyword:    in.PrimaryKeyword,
		SecondaryKeywords: keywords,
		ImageURL:          in.ImageURL,
		ImageAlt:          in.Title + ImageAltSuffix,
		SchemaMarkup:      schema,
		Status:            status,
		CreatedAt:         stamp,
	}
	if status == StatusPublished {
		article.PublishedAt = stamp
	}

	receipt, err := s.repo.Create(ctx, article)
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to save article %s: %w", article.ID, err)
	}

	s.logger.Info("article saved", "id", receipt.ID, "slug", receipt.Slug, "path", receipt.Path)
	return receipt, nil
}

// ListArticles returns up to limit articles passing filter, newest first.
func (s *Service) ListArticles(ctx context.Context, filter StatusFilter, limit int) ([]Article, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if filter == "" {
		filter = FilterAll
	}
	return s.repo.List(ctx, filter, limit)
}

// GetArticle retrieves an article by slug. A miss yields ErrNotFound.
func (s *Service) GetArticle(ctx context.Context, slugValue string) (Article, error) {
	if slugValue == "" {
		return Article{}, fmt.Errorf("%w: empty slug", ErrNotFound)
	}
	return s.repo.Get(ctx, slugValue)
}

// UpdateStatus moves an article through the draft/published workflow.
// publishedAt is stamped only on the first transition to published and never overwritten.
func (s *Service) UpdateStatus(ctx context.Context, slugValue string, status Status) (Article, error) {
	if _, err := ParseStatus(string(status)); err != nil {
		return Article{}, err
	}

	updated, err := s.repo.Update(ctx, slugValue, func(a *Article) error {
		a.Status = status
		if status == StatusPublished && a.PublishedAt == "" {
			a.PublishedAt = FormatTimestamp(s.now())
		}
		return nil
	})
	if err != nil {
		return Article{}, err
	}

	s.logger.Info("article status updated", "slug", slugValue, "status", status)
	return updated, nil
}

// DeleteArticle removes an article permanently. A miss yields ErrNotFound.
func (s *Service) DeleteArticle(ctx context.Context, slugValue string) error {
	if err := s.repo.Delete(ctx, slugValue); err != nil {
		return err
	}
	s.logger.Info("article deleted", "slug", slugValue)
	return nil
}

// Watch observes changes in the repository if supported.
// Events are relayed through a buffered broker so a slow consumer does not stall the watcher.
func (s *Service) Watch(ctx context.Context, pattern string) (<-chan Event, error) {
	w, ok := s.repo.(Watchable)
	if !ok {
		return nil, ErrWatchUnsupported
	}

	upstream, err := w.Watch(ctx, pattern)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	size := s.eventBufferSize
	s.mu.RUnlock()

	out := make(chan Event, size)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-upstream:
				if !ok {
					return nil
				}
				select {
				case out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})

	return out, nil
}

// IsNotFound reports whether err is the not-found outcome.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

package fs

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"

	"github.com/aretw0/seoagent/pkg/core"
	"github.com/aretw0/seoagent/pkg/slug"
)

// DefaultPath is the storage directory used when none is configured.
const DefaultPath = "./articles_data"

// maxCreateAttempts bounds the search for a free id when the natural one is taken.
const maxCreateAttempts = 5

// Repository implements core.Repository with one file per article in a directory.
type Repository struct {
	Path   string
	config Config
	codec  Codec
	cache  *cache
	locks  *keyedMutex
	logger *slog.Logger

	// createMu serializes the exists-check and write of new records.
	createMu sync.Mutex

	mu            sync.RWMutex
	readOnly      bool
	watcherActive bool
	lastScan      *time.Time
}

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path         string
	MustExist    bool
	ReadOnly     bool
	Logger       *slog.Logger
	Format       string // "json" (default) or "yaml"
	DisableCache bool
	ErrorHandler func(error) // Receives watcher errors; optional.
}

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) (*Repository, error) {
	if config.Path == "" {
		config.Path = DefaultPath
	}
	codec, err := CodecFor(config.Format)
	if err != nil {
		return nil, err
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Repository{
		Path:     config.Path,
		config:   config,
		codec:    codec,
		cache:    newCache(!config.DisableCache),
		locks:    newKeyedMutex(),
		logger:   logger,
		readOnly: config.ReadOnly,
	}, nil
}

// Initialize ensures the storage directory exists, creating it unless the
// repository must find it already in place.
func (r *Repository) Initialize(ctx context.Context) error {
	if r.config.MustExist || r.readOnly {
		info, err := os.Stat(r.Path)
		if err != nil {
			if r.readOnly && os.IsNotExist(err) {
				return nil
			}
			return fmt.Errorf("articles directory is not accessible: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("articles path is not a directory: %s", r.Path)
		}
		return nil
	}

	if err := os.MkdirAll(r.Path, 0755); err != nil {
		return fmt.Errorf("failed to create articles directory: %w", err)
	}
	return nil
}

func (r *Repository) filename(id string) string {
	return id + r.codec.Ext()
}

// Create persists a new article as {id}{ext}.
//
// Workflow:
//  1. Serialize creators in this process so the exists-check and write cannot interleave.
//  2. If {id}{ext} is taken (same slug, same second), append a short random suffix.
//  3. Write the record atomically (temp file + rename).
func (r *Repository) Create(ctx context.Context, a core.Article) (core.Receipt, error) {
	if r.readOnly {
		return core.Receipt{}, core.ErrReadOnly
	}
	if a.ID == "" || a.Slug == "" {
		return core.Receipt{}, fmt.Errorf("article has no id or slug")
	}
	if err := ctx.Err(); err != nil {
		return core.Receipt{}, err
	}

	r.createMu.Lock()
	defer r.createMu.Unlock()

	baseID := a.ID
	var fullPath string
	for attempt := 0; ; attempt++ {
		if attempt == maxCreateAttempts {
			return core.Receipt{}, fmt.Errorf("no free id for %s after %d attempts", baseID, attempt)
		}
		if attempt > 0 {
			a.ID = slug.WithSuffix(baseID, uuid.NewString()[:8])
		}
		fullPath = filepath.Join(r.Path, r.filename(a.ID))
		_, err := os.Stat(fullPath)
		if os.IsNotExist(err) {
			break
		}
		if err != nil {
			return core.Receipt{}, fmt.Errorf("failed to check %s: %w", fullPath, err)
		}
		r.logger.Warn("article id collision", "id", a.ID)
	}

	if err := r.write(fullPath, a); err != nil {
		return core.Receipt{}, err
	}

	return core.Receipt{ID: a.ID, Slug: a.Slug, Path: fullPath}, nil
}

// write serializes a and replaces fullPath atomically, refreshing the cache.
func (r *Repository) write(fullPath string, a core.Article) error {
	data, err := r.codec.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to serialize article: %w", err)
	}
	return r.store(fullPath, data, a)
}

// store replaces fullPath with data, the encoded form of a.
func (r *Repository) store(fullPath string, data []byte, a core.Article) error {
	if err := writeFileAtomic(fullPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write article: %w", err)
	}

	name := filepath.Base(fullPath)
	if info, err := os.Stat(fullPath); err == nil {
		r.cache.Set(name, a, info.ModTime(), info.Size())
	} else {
		r.cache.Delete(name)
	}
	return nil
}

// scanEntry is the outcome of reading one file during a scan.
type scanEntry struct {
	Name    string
	Path    string
	Article core.Article
	// Err is set when the record was skipped as unreadable; Article is then empty.
	Err error
}

// Valid reports whether the entry holds a usable record.
func (e scanEntry) Valid() bool {
	return e.Err == nil
}

// names enumerates record files in ascending filename order.
// An error here is a fatal I/O failure: the directory itself cannot be read.
func (r *Repository) names() ([]string, error) {
	info, err := os.Stat(r.Path)
	if err != nil {
		return nil, fmt.Errorf("articles directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("articles path is not a directory: %s", r.Path)
	}

	names, err := doublestar.Glob(os.DirFS(r.Path), "*"+r.codec.Ext(), doublestar.WithFailOnIOErrors())
	if err != nil {
		return nil, fmt.Errorf("failed to list articles directory: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// read loads one record, from the cache when the file is unchanged.
func (r *Repository) read(name string) scanEntry {
	fullPath := filepath.Join(r.Path, name)
	entry := scanEntry{Name: name, Path: fullPath}

	info, err := os.Stat(fullPath)
	if err != nil {
		entry.Err = err
		return entry
	}
	if info.IsDir() {
		entry.Err = fmt.Errorf("%s is a directory", name)
		return entry
	}

	if a, hit := r.cache.Get(name, info.ModTime(), info.Size()); hit {
		entry.Article = a
		return entry
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		entry.Err = err
		return entry
	}
	a, err := r.codec.Unmarshal(data)
	if err != nil {
		entry.Err = err
		return entry
	}

	r.cache.Set(name, a, info.ModTime(), info.Size())
	entry.Article = a
	return entry
}

// scan visits every record file in ascending filename order until visit returns false.
// Unreadable records are logged and skipped; only directory failures are returned.
func (r *Repository) scan(ctx context.Context, visit func(scanEntry) bool) error {
	names, err := r.names()
	if err != nil {
		return err
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		entry := r.read(name)
		if !entry.Valid() {
			if errors.Is(entry.Err, iofs.ErrNotExist) {
				// Removed between enumeration and read.
				continue
			}
			r.logger.Warn("skipping unreadable article", "file", name, "error", entry.Err)
			continue
		}
		if !visit(entry) {
			break
		}
	}
	return nil
}

// find returns the first record whose slug matches.
func (r *Repository) find(ctx context.Context, slugValue string) (scanEntry, error) {
	var found *scanEntry
	err := r.scan(ctx, func(e scanEntry) bool {
		if e.Article.Slug == slugValue {
			found = &e
			return false
		}
		return true
	})
	if err != nil {
		return scanEntry{}, err
	}
	if found == nil {
		return scanEntry{}, fmt.Errorf("%w: %s", core.ErrNotFound, slugValue)
	}
	return *found, nil
}

// Get retrieves the first article (in filename order) whose slug equals slugValue.
func (r *Repository) Get(ctx context.Context, slugValue string) (core.Article, error) {
	e, err := r.find(ctx, slugValue)
	if err != nil {
		return core.Article{}, err
	}
	return e.Article, nil
}

// List scans the directory and returns at most limit records passing filter.
//
// Strategy:
//  1. Enumerate and parse every record (corrupt files are skipped).
//  2. Keep the records the filter accepts.
//  3. Sort by createdAt, newest first; filename descending breaks ties and
//     orders records whose createdAt cannot be parsed.
//  4. Truncate to limit and drop cache entries for files that disappeared.
func (r *Repository) List(ctx context.Context, filter core.StatusFilter, limit int) ([]core.Article, error) {
	type listed struct {
		name    string
		created time.Time
		ok      bool
		article core.Article
	}

	var matches []listed
	seen := make(map[string]bool)

	err := r.scan(ctx, func(e scanEntry) bool {
		seen[e.Name] = true
		if !filter.Matches(e.Article.Status) {
			return true
		}
		created, ok := e.Article.Created()
		matches = append(matches, listed{name: e.Name, created: created, ok: ok, article: e.Article})
		return true
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.ok && b.ok && !a.created.Equal(b.created) {
			return a.created.After(b.created)
		}
		if a.ok != b.ok {
			return a.ok
		}
		return a.name > b.name
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	r.cache.Prune(seen)
	r.recordScan()

	articles := make([]core.Article, 0, len(matches))
	for _, m := range matches {
		articles = append(articles, m.article)
	}
	return articles, nil
}

// Update applies mutate to the first article matching slugValue and rewrites the file.
// The read-modify-write runs under a per-slug lock and re-reads the file from disk.
// Only the fields mutate changed are rewritten; unknown keys stay in the record.
func (r *Repository) Update(ctx context.Context, slugValue string, mutate func(*core.Article) error) (core.Article, error) {
	if r.readOnly {
		return core.Article{}, core.ErrReadOnly
	}

	unlock := r.locks.Lock(slugValue)
	defer unlock()

	e, err := r.find(ctx, slugValue)
	if err != nil {
		return core.Article{}, err
	}

	data, err := os.ReadFile(e.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return core.Article{}, fmt.Errorf("%w: %s", core.ErrNotFound, slugValue)
		}
		return core.Article{}, fmt.Errorf("failed to read %s: %w", e.Path, err)
	}
	a, err := r.codec.Unmarshal(data)
	if err != nil || a.Slug != slugValue {
		r.logger.Warn("article changed during update", "file", e.Name, "error", err)
		return core.Article{}, fmt.Errorf("%w: %s", core.ErrNotFound, slugValue)
	}

	before := a.Clone()
	if err := mutate(&a); err != nil {
		return core.Article{}, err
	}

	out, err := r.codec.Rewrite(data, before, a)
	if err != nil {
		return core.Article{}, fmt.Errorf("failed to serialize article: %w", err)
	}
	if err := r.store(e.Path, out, a); err != nil {
		return core.Article{}, err
	}
	return a, nil
}

// Delete permanently removes the first article matching slugValue.
func (r *Repository) Delete(ctx context.Context, slugValue string) error {
	if r.readOnly {
		return core.ErrReadOnly
	}

	unlock := r.locks.Lock(slugValue)
	defer unlock()

	e, err := r.find(ctx, slugValue)
	if err != nil {
		return err
	}

	if err := os.Remove(e.Path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", core.ErrNotFound, slugValue)
		}
		return fmt.Errorf("failed to remove article: %w", err)
	}
	r.cache.Delete(e.Name)
	return nil
}

// idFromName strips the record extension from a file name.
func (r *Repository) idFromName(name string) (string, bool) {
	ext := r.codec.Ext()
	if !strings.HasSuffix(name, ext) || strings.HasPrefix(name, TempFilePrefix) {
		return "", false
	}
	return strings.TrimSuffix(name, ext), true
}

package fs

import (
	"time"

	"github.com/aretw0/introspection"
)

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Path          string     `json:"path"`
	Format        string     `json:"format"`
	Extension     string     `json:"extension"`
	CacheEnabled  bool       `json:"cache_enabled"`
	CacheSize     int        `json:"cache_size"`
	HeldLocks     int        `json:"held_locks"`
	ReadOnly      bool       `json:"read_only"`
	MustExist     bool       `json:"must_exist"`
	WatcherActive bool       `json:"watcher_active"`
	LastScan      *time.Time `json:"last_scan,omitempty"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	format := r.config.Format
	if format == "" {
		format = FormatJSON
	}

	return RepositoryState{
		Path:          r.Path,
		Format:        format,
		Extension:     r.codec.Ext(),
		CacheEnabled:  !r.config.DisableCache,
		CacheSize:     r.cache.Len(),
		HeldLocks:     r.locks.Len(),
		ReadOnly:      r.readOnly,
		MustExist:     r.config.MustExist,
		WatcherActive: r.watcherActive,
		LastScan:      r.lastScan,
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "repository"
}

var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)

func (r *Repository) setWatcherActive(active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watcherActive = active
}

func (r *Repository) recordScan() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.lastScan = &now
}

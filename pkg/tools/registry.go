package tools

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Registry holds the available tools. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]*Tool
	logger *slog.Logger
}

// NewRegistry creates an empty registry. A nil logger discards output.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		tools:  make(map[string]*Tool),
		logger: logger,
	}
}

// Register adds tools. A duplicate name is an error and leaves earlier tools registered.
func (r *Registry) Register(tools ...*Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, tool := range tools {
		if err := tool.Validate(); err != nil {
			return fmt.Errorf("invalid tool: %w", err)
		}
		if _, exists := r.tools[tool.Name]; exists {
			return fmt.Errorf("%w: %s", ErrToolAlreadyRegistered, tool.Name)
		}
		r.tools[tool.Name] = tool
		r.logger.Debug("registered tool", "name", tool.Name, "category", tool.Category)
	}
	return nil
}

// MustRegister registers tools and panics on error.
func (r *Registry) MustRegister(tools ...*Tool) {
	if err := r.Register(tools...); err != nil {
		panic(err)
	}
}

// Get returns a tool by name, or nil.
func (r *Registry) Get(name string) *Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns the registered tools sorted by name.
func (r *Registry) All() []*Tool {
	names := r.Names()
	out := make([]*Tool, 0, len(names))
	for _, name := range names {
		if t := r.Get(name); t != nil {
			out = append(out, t)
		}
	}
	return out
}

// Call runs the named tool with JSON-encoded arguments.
// Unknown tools, malformed arguments and missing required parameters are errors.
func (r *Registry) Call(ctx context.Context, name, argsJSON string) (string, error) {
	args, err := ParseArgs(argsJSON)
	if err != nil {
		return "", err
	}
	return r.Execute(ctx, name, args)
}

// Execute runs the named tool with decoded arguments.
func (r *Registry) Execute(ctx context.Context, name string, args Args) (string, error) {
	tool := r.Get(name)
	if tool == nil {
		return "", fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	if args == nil {
		args = Args{}
	}
	for _, req := range tool.Schema.Required {
		if _, ok := args[req]; !ok {
			return "", fmt.Errorf("%w: %s requires %q", ErrInvalidArgs, name, req)
		}
	}

	start := time.Now()
	out, err := tool.Handler(ctx, args)
	if err != nil {
		r.logger.Warn("tool failed", "name", name, "error", err, "duration", time.Since(start))
		return "", fmt.Errorf("%s: %w", name, err)
	}
	r.logger.Debug("tool finished", "name", name, "duration", time.Since(start))
	return out, nil
}

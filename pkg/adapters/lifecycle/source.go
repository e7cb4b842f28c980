// Package lifecycle relays article change events into the aretw0/lifecycle event model.
package lifecycle

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"

	"github.com/aretw0/introspection"
	"github.com/aretw0/lifecycle"

	"github.com/aretw0/seoagent/pkg/core"
)

// ErrAlreadyStarted is returned when Start is called on a running source.
var ErrAlreadyStarted = errors.New("article source already started")

// Source relays store events as lifecycle events.
// Events whose type is not selected are counted and dropped.
type Source struct {
	upstream <-chan core.Event
	out      chan lifecycle.Event
	types    map[core.EventType]bool

	started  atomic.Bool
	relayed  atomic.Int64
	filtered atomic.Int64
}

// Option configures a Source.
type Option func(*Source)

// WithTypes keeps only events of the given types. Without it every event is relayed.
func WithTypes(types ...core.EventType) Option {
	return func(s *Source) {
		if len(types) == 0 {
			return
		}
		s.types = make(map[core.EventType]bool, len(types))
		for _, t := range types {
			s.types[t] = true
		}
	}
}

// NewSource wraps a store event channel, usually the one returned by core.Service.Watch.
// Events() is closed once upstream closes or the Start context ends.
func NewSource(upstream <-chan core.Event, opts ...Option) *Source {
	s := &Source{
		upstream: upstream,
		out:      make(chan lifecycle.Event),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Events implements lifecycle.Source.
func (s *Source) Events() <-chan lifecycle.Event {
	return s.out
}

// Start launches the relay. It may be called once.
func (s *Source) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	lifecycle.Go(ctx, s.relay)
	return nil
}

func (s *Source) relay(ctx context.Context) error {
	defer close(s.out)
	for {
		var e core.Event
		var ok bool
		select {
		case <-ctx.Done():
			return nil
		case e, ok = <-s.upstream:
			if !ok {
				return nil
			}
		}

		if s.types != nil && !s.types[e.Type] {
			s.filtered.Add(1)
			continue
		}

		select {
		case s.out <- e:
			s.relayed.Add(1)
		case <-ctx.Done():
			return nil
		}
	}
}

// SourceState exposes relay counters for observability.
type SourceState struct {
	Started  bool     `json:"started"`
	Types    []string `json:"types,omitempty"`
	Relayed  int64    `json:"relayed"`
	Filtered int64    `json:"filtered"`
}

// State implements introspection.Introspectable.
func (s *Source) State() any {
	var types []string
	for t := range s.types {
		types = append(types, string(t))
	}
	sort.Strings(types)
	return SourceState{
		Started:  s.started.Load(),
		Types:    types,
		Relayed:  s.relayed.Load(),
		Filtered: s.filtered.Load(),
	}
}

// ComponentType implements introspection.Component.
func (s *Source) ComponentType() string {
	return "article-source"
}

var (
	_ lifecycle.Source             = (*Source)(nil)
	_ introspection.Introspectable = (*Source)(nil)
	_ introspection.Component      = (*Source)(nil)
)

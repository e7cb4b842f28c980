// Package tools exposes the article store and its collaborators as named tools
// with named parameters and plain-text results, the surface an agent calls.
package tools

import (
	"context"
	"errors"
)

// Category groups tools by the collaborator they front.
type Category string

const (
	CategoryArticles Category = "articles"
	CategoryResearch Category = "research"
	CategoryImages   Category = "images"
)

// Property describes a single parameter.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Default     any    `json:"default,omitempty"`
	Enum        []any  `json:"enum,omitempty"`
}

// Schema defines the expected arguments of a tool.
type Schema struct {
	Required   []string            `json:"required"`
	Properties map[string]Property `json:"properties"`
}

// Handler runs a tool with decoded arguments.
// Expected misses (an unknown slug) are reported in the result text, not as errors.
type Handler func(ctx context.Context, args Args) (string, error)

// Tool is one named operation in the registry.
type Tool struct {
	Name        string
	Description string
	Category    Category
	Schema      Schema
	Handler     Handler
}

// Validate checks that the tool can be registered.
func (t *Tool) Validate() error {
	if t.Name == "" {
		return ErrToolNameEmpty
	}
	if t.Handler == nil {
		return ErrToolHandlerNil
	}
	return nil
}

var (
	ErrToolNameEmpty         = errors.New("tool name is empty")
	ErrToolHandlerNil        = errors.New("tool handler is nil")
	ErrToolAlreadyRegistered = errors.New("tool already registered")
	ErrToolNotFound          = errors.New("tool not found")
	ErrInvalidArgs           = errors.New("invalid tool arguments")
)

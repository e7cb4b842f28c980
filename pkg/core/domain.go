// Package core holds the article domain: the record, its status workflow and the
// storage port the adapters implement.
package core

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

// Status is the publication state of an article.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// ParseStatus validates a raw status string.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.TrimSpace(s)); st {
	case StatusDraft, StatusPublished:
		return st, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// StatusFilter selects articles by status. FilterAll matches every record.
type StatusFilter string

// FilterAll matches articles of any status.
const FilterAll StatusFilter = "all"

// ParseFilter accepts "all" or a valid status. An empty string means "all".
func ParseFilter(s string) (StatusFilter, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == string(FilterAll) {
		return FilterAll, nil
	}
	st, err := ParseStatus(s)
	if err != nil {
		return "", err
	}
	return StatusFilter(st), nil
}

// Matches reports whether an article with status st passes the filter.
func (f StatusFilter) Matches(st Status) bool {
	return f == FilterAll || f == "" || Status(f) == st
}

// ImageAltSuffix is appended to the title to build the featured image alt text.
const ImageAltSuffix = " - Premium Gin and Tonic Guide"

// Article is the sole persisted entity: one piece of content plus its SEO metadata.
// Field names are the on-disk format and must stay stable.
type Article struct {
	ID                string         `json:"id" yaml:"id"`
	Slug              string         `json:"slug" yaml:"slug"`
	Title             string         `json:"title" yaml:"title"`
	MetaDescription   string         `json:"metaDescription" yaml:"metaDescription"`
	Content           string         `json:"content" yaml:"content"`
	PrimaryKeyword    string         `json:"primaryKeyword" yaml:"primaryKeyword"`
	SecondaryKeywords []string       `json:"secondaryKeywords" yaml:"secondaryKeywords"`
	ImageURL          string         `json:"imageUrl" yaml:"imageUrl"`
	ImageAlt          string         `json:"imageAlt" yaml:"imageAlt"`
	SchemaMarkup      map[string]any `json:"schemaMarkup" yaml:"schemaMarkup"`
	Status            Status         `json:"status" yaml:"status"`
	CreatedAt         string         `json:"createdAt" yaml:"createdAt"`
	PublishedAt       string         `json:"publishedAt" yaml:"publishedAt"`
}

// Created returns the parsed creation time, if well-formed.
func (a Article) Created() (time.Time, bool) {
	return ParseTimestamp(a.CreatedAt)
}

// Clone returns a copy of a that shares no maps or slices with it.
func (a Article) Clone() Article {
	a.SecondaryKeywords = slices.Clone(a.SecondaryKeywords)
	if a.SchemaMarkup != nil {
		a.SchemaMarkup = cloneValue(a.SchemaMarkup).(map[string]any)
	}
	return a
}

// cloneValue copies the nested maps and slices of decoded schema markup.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := maps.Clone(t)
		for k, child := range out {
			out[k] = cloneValue(child)
		}
		return out
	case []any:
		out := slices.Clone(t)
		for i, child := range out {
			out[i] = cloneValue(child)
		}
		return out
	default:
		return v
	}
}

// DefaultSchemaMarkup is the minimal schema.org Article record used when none is supplied.
func DefaultSchemaMarkup(title, description string) map[string]any {
	return map[string]any{
		"@context":    "https://schema.org",
		"@type":       "Article",
		"headline":    title,
		"description": description,
	}
}

// TimestampLayout is the ISO-8601 shape written for createdAt and publishedAt:
// local wall-clock time with microseconds and no zone.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// FormatTimestamp renders t for storage.
func FormatTimestamp(t time.Time) string {
	return t.Local().Format(TimestampLayout)
}

// ParseTimestamp reads a stored timestamp. RFC 3339 values (with zone) and
// zone-less ISO-8601 values with or without fractional seconds are accepted.
func ParseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.Local); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// Receipt confirms a persisted article.
type Receipt struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
	Path string `json:"path"`
}

// EventType represents the type of change in the store directory.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// ParseEventType validates an event type name, case-insensitively.
func ParseEventType(s string) (EventType, error) {
	t := EventType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case EventCreate, EventModify, EventDelete:
		return t, nil
	}
	return "", fmt.Errorf("unknown event type %q", s)
}

// Event represents a change to one article file.
type Event struct {
	Type      EventType
	ID        string
	Timestamp int64 // Unix timestamp
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Type, e.ID)
}

// Package slug derives URL-safe identifiers from article titles.
package slug

import (
	"regexp"
	"strings"
	"time"
)

// IDTimeLayout is the creation timestamp suffix of an article id (second resolution).
const IDTimeLayout = "20060102150405"

var (
	// nonWord matches anything that is not a letter, digit, underscore, whitespace or hyphen.
	nonWord = regexp.MustCompile(`[^\p{L}\p{N}_\s\v\x{1c}-\x{1f}\x{85}\p{Z}-]`)
	// whitespace runs become a single hyphen. RE2's \s is ASCII-only and lacks \v,
	// so the remaining Unicode separators are listed explicitly.
	whitespace = regexp.MustCompile(`[\s\v\x{1c}-\x{1f}\x{85}\p{Z}]+`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Slugify converts text to a URL-friendly slug.
// Example: "Best Gin & Tonic!!" → "best-gin-tonic"
//
// The result is empty when text holds no retainable characters.
func Slugify(text string) string {
	result := strings.ToLower(text)
	result = nonWord.ReplaceAllString(result, "")
	result = whitespace.ReplaceAllString(result, "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// NewID builds the article id "{slug}-{YYYYMMDDHHMMSS}" from the creation time.
func NewID(slug string, createdAt time.Time) string {
	return slug + "-" + createdAt.Format(IDTimeLayout)
}

// WithSuffix appends collision entropy to an id.
func WithSuffix(id, suffix string) string {
	if suffix == "" {
		return id
	}
	return id + "-" + suffix
}

package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/seoagent/pkg/core"
)

// Tool names of the article store.
const (
	SaveArticle         = "save_article"
	GetArticles         = "get_articles"
	GetArticle          = "get_article"
	UpdateArticleStatus = "update_article_status"
	DeleteArticle       = "delete_article"
)

// ArticleTools wraps the article service as tools.
func ArticleTools(svc *core.Service) []*Tool {
	return []*Tool{
		{
			Name:        SaveArticle,
			Description: "Save a new article with full SEO metadata.",
			Category:    CategoryArticles,
			Schema: Schema{
				Required: []string{"title", "content", "meta_description", "primary_keyword", "secondary_keywords", "image_url"},
				Properties: map[string]Property{
					"title":              {Type: "string", Description: "Article title"},
					"content":            {Type: "string", Description: "Full markdown content"},
					"meta_description":   {Type: "string", Description: "SEO meta description (150-160 chars)"},
					"primary_keyword":    {Type: "string", Description: "Main target keyword"},
					"secondary_keywords": {Type: "array", Description: "List of secondary keywords"},
					"image_url":          {Type: "string", Description: "URL or data URI of featured image"},
					"schema_markup":      {Type: "object", Description: "Optional JSON-LD schema markup"},
					"status":             {Type: "string", Description: "Initial status", Default: "published", Enum: []any{"draft", "published"}},
				},
			},
			Handler: func(ctx context.Context, args Args) (string, error) {
				in, err := createInput(args)
				if err != nil {
					return "", err
				}
				receipt, err := svc.CreateArticle(ctx, in)
				if err != nil {
					return "", err
				}
				return SaveResult(receipt), nil
			},
		},
		{
			Name:        GetArticles,
			Description: "List articles from storage, newest first.",
			Category:    CategoryArticles,
			Schema: Schema{
				Properties: map[string]Property{
					"status": {Type: "string", Description: "Filter by status ('published', 'draft', or 'all')", Default: "all"},
					"limit":  {Type: "integer", Description: "Maximum number of articles to return", Default: core.DefaultListLimit},
				},
			},
			Handler: func(ctx context.Context, args Args) (string, error) {
				raw, err := args.String("status", string(core.FilterAll))
				if err != nil {
					return "", err
				}
				filter, err := core.ParseFilter(raw)
				if err != nil {
					return "", err
				}
				limit, err := args.Int("limit", core.DefaultListLimit)
				if err != nil {
					return "", err
				}
				articles, err := svc.ListArticles(ctx, filter, limit)
				if err != nil {
					return "", err
				}
				return ListResult(articles), nil
			},
		},
		{
			Name:        GetArticle,
			Description: "Get a specific article by slug.",
			Category:    CategoryArticles,
			Schema: Schema{
				Required:   []string{"slug"},
				Properties: map[string]Property{"slug": {Type: "string", Description: "The article slug"}},
			},
			Handler: func(ctx context.Context, args Args) (string, error) {
				slugValue, err := args.String("slug", "")
				if err != nil {
					return "", err
				}
				a, err := svc.GetArticle(ctx, slugValue)
				if core.IsNotFound(err) {
					return NotFound(slugValue), nil
				}
				if err != nil {
					return "", err
				}
				return ArticleJSON(a)
			},
		},
		{
			Name:        UpdateArticleStatus,
			Description: "Update an article's status (draft/published).",
			Category:    CategoryArticles,
			Schema: Schema{
				Required: []string{"slug", "status"},
				Properties: map[string]Property{
					"slug":   {Type: "string", Description: "The article slug"},
					"status": {Type: "string", Description: "New status", Enum: []any{"draft", "published"}},
				},
			},
			Handler: func(ctx context.Context, args Args) (string, error) {
				slugValue, err := args.String("slug", "")
				if err != nil {
					return "", err
				}
				raw, err := args.String("status", "")
				if err != nil {
					return "", err
				}
				status, err := core.ParseStatus(raw)
				if err != nil {
					return "", err
				}
				if _, err := svc.UpdateStatus(ctx, slugValue, status); err != nil {
					if core.IsNotFound(err) {
						return NotFound(slugValue), nil
					}
					return "", err
				}
				return fmt.Sprintf("Article '%s' status updated to: %s", slugValue, status), nil
			},
		},
		{
			Name:        DeleteArticle,
			Description: "Delete an article by slug.",
			Category:    CategoryArticles,
			Schema: Schema{
				Required:   []string{"slug"},
				Properties: map[string]Property{"slug": {Type: "string", Description: "The article slug"}},
			},
			Handler: func(ctx context.Context, args Args) (string, error) {
				slugValue, err := args.String("slug", "")
				if err != nil {
					return "", err
				}
				if err := svc.DeleteArticle(ctx, slugValue); err != nil {
					if core.IsNotFound(err) {
						return NotFound(slugValue), nil
					}
					return "", err
				}
				return fmt.Sprintf("Article deleted: %s", slugValue), nil
			},
		},
	}
}

func createInput(args Args) (core.CreateInput, error) {
	var in core.CreateInput
	var err error
	if in.Title, err = args.String("title", ""); err != nil {
		return in, err
	}
	if in.Content, err = args.String("content", ""); err != nil {
		return in, err
	}
	if in.MetaDescription, err = args.String("meta_description", ""); err != nil {
		return in, err
	}
	if in.PrimaryKeyword, err = args.String("primary_keyword", ""); err != nil {
		return in, err
	}
	if in.SecondaryKeywords, err = args.Strings("secondary_keywords"); err != nil {
		return in, err
	}
	if in.ImageURL, err = args.String("image_url", ""); err != nil {
		return in, err
	}
	if in.SchemaMarkup, err = args.Object("schema_markup"); err != nil {
		return in, err
	}
	status, err := args.String("status", "")
	if err != nil {
		return in, err
	}
	in.Status = core.Status(status)
	return in, nil
}

// SaveResult renders the confirmation of a saved article.
func SaveResult(r core.Receipt) string {
	return fmt.Sprintf("Article saved successfully!\nID: %s\nSlug: %s\nPath: %s", r.ID, r.Slug, r.Path)
}

// NotFound renders a slug lookup miss.
func NotFound(slugValue string) string {
	return "Article not found: " + slugValue
}

// ListResult renders a listing, one block per article.
func ListResult(articles []core.Article) string {
	if len(articles) == 0 {
		return "No articles found."
	}
	lines := make([]string, 0, len(articles)+1)
	lines = append(lines, fmt.Sprintf("Found %d articles:\n", len(articles)))
	for _, a := range articles {
		lines = append(lines, fmt.Sprintf("- [%s] %s\n  Slug: %s | Keyword: %s\n  Created: %s",
			orDefault(string(a.Status), "unknown"),
			orDefault(a.Title, "Untitled"),
			orDefault(a.Slug, "N/A"),
			orDefault(a.PrimaryKeyword, "N/A"),
			datePart(orDefault(a.CreatedAt, "N/A"))))
	}
	return strings.Join(lines, "\n")
}

// ArticleJSON renders the full record as indented JSON.
func ArticleJSON(a core.Article) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a); err != nil {
		return "", fmt.Errorf("failed to encode article: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// datePart keeps the first ten characters of a timestamp, the date.
func datePart(ts string) string {
	if r := []rune(ts); len(r) > 10 {
		return string(r[:10])
	}
	return ts
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

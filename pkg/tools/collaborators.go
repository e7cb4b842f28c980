package tools

import (
	"context"
	"log/slog"

	"github.com/aretw0/seoagent/pkg/core"
	"github.com/aretw0/seoagent/pkg/imagen"
	"github.com/aretw0/seoagent/pkg/research"
)

// Tool names of the collaborators.
const (
	SearchKeywords     = "search_keywords"
	GetRelatedKeywords = "get_related_keywords"
	GetTrendingTopics  = "get_trending_topics"
	GenerateImage      = "generate_image"
	CreateImagePrompt  = "create_image_prompt"
)

// KeywordResearcher answers keyword questions with display text.
// *research.Client implements it.
type KeywordResearcher interface {
	SearchKeywords(ctx context.Context, keyword string, locationCode int) string
	RelatedKeywords(ctx context.Context, keyword string, limit int) string
	TrendingTopics(ctx context.Context) string
}

// ImageGenerator renders a featured image as a data URI or fallback reference.
// *imagen.Generator implements it.
type ImageGenerator interface {
	Generate(ctx context.Context, title, keyword string) string
}

var (
	_ KeywordResearcher = (*research.Client)(nil)
	_ ImageGenerator    = (*imagen.Generator)(nil)
)

// ResearchTools wraps a keyword researcher as tools.
func ResearchTools(r KeywordResearcher) []*Tool {
	return []*Tool{
		{
			Name:        SearchKeywords,
			Description: "Search for keyword metrics including search volume, competition, and CPC.",
			Category:    CategoryResearch,
			Schema: Schema{
				Required: []string{"keyword"},
				Properties: map[string]Property{
					"keyword":       {Type: "string", Description: "The keyword to research"},
					"location_code": {Type: "integer", Description: "Geographic location code (2840 = USA)", Default: research.DefaultLocationCode},
				},
			},
			Handler: func(ctx context.Context, args Args) (string, error) {
				keyword, err := args.String("keyword", "")
				if err != nil {
					return "", err
				}
				loc, err := args.Int("location_code", research.DefaultLocationCode)
				if err != nil {
					return "", err
				}
				return r.SearchKeywords(ctx, keyword, loc), nil
			},
		},
		{
			Name:        GetRelatedKeywords,
			Description: "Get related keywords and variations for a given seed keyword.",
			Category:    CategoryResearch,
			Schema: Schema{
				Required: []string{"keyword"},
				Properties: map[string]Property{
					"keyword": {Type: "string", Description: "The seed keyword"},
					"limit":   {Type: "integer", Description: "Maximum number of related keywords to return", Default: research.DefaultRelatedLimit},
				},
			},
			Handler: func(ctx context.Context, args Args) (string, error) {
				keyword, err := args.String("keyword", "")
				if err != nil {
					return "", err
				}
				limit, err := args.Int("limit", research.DefaultRelatedLimit)
				if err != nil {
					return "", err
				}
				return r.RelatedKeywords(ctx, keyword, limit), nil
			},
		},
		{
			Name:        GetTrendingTopics,
			Description: "Get trending gin and tonic related topics based on search volume.",
			Category:    CategoryResearch,
			Schema:      Schema{Properties: map[string]Property{}},
			Handler: func(ctx context.Context, args Args) (string, error) {
				return r.TrendingTopics(ctx), nil
			},
		},
	}
}

// ImageTools wraps an image generator as tools.
func ImageTools(g ImageGenerator) []*Tool {
	return []*Tool{
		{
			Name:        GenerateImage,
			Description: "Generate a professional featured image for a gin and tonic article.",
			Category:    CategoryImages,
			Schema: Schema{
				Required: []string{"title", "keyword"},
				Properties: map[string]Property{
					"title":   {Type: "string", Description: "The article title"},
					"keyword": {Type: "string", Description: "The primary keyword for context"},
				},
			},
			Handler: func(ctx context.Context, args Args) (string, error) {
				title, err := args.String("title", "")
				if err != nil {
					return "", err
				}
				keyword, err := args.String("keyword", "")
				if err != nil {
					return "", err
				}
				return g.Generate(ctx, title, keyword), nil
			},
		},
		{
			Name:        CreateImagePrompt,
			Description: "Generate an optimized image prompt for article featured images.",
			Category:    CategoryImages,
			Schema: Schema{
				Required: []string{"article_title", "topic"},
				Properties: map[string]Property{
					"article_title": {Type: "string", Description: "The title of the article"},
					"topic":         {Type: "string", Description: "The main topic/keyword"},
				},
			},
			Handler: func(ctx context.Context, args Args) (string, error) {
				title, err := args.String("article_title", "")
				if err != nil {
					return "", err
				}
				topic, err := args.String("topic", "")
				if err != nil {
					return "", err
				}
				return imagen.Prompt(title, topic), nil
			},
		},
	}
}

// New builds a registry with the article tools and, when given, the collaborator tools.
func New(svc *core.Service, researcher KeywordResearcher, images ImageGenerator, logger *slog.Logger) (*Registry, error) {
	r := NewRegistry(logger)
	if err := r.Register(ArticleTools(svc)...); err != nil {
		return nil, err
	}
	if researcher != nil {
		if err := r.Register(ResearchTools(researcher)...); err != nil {
			return nil, err
		}
	}
	if images != nil {
		if err := r.Register(ImageTools(images)...); err != nil {
			return nil, err
		}
	}
	return r, nil
}

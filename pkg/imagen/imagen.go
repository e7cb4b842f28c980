// Package imagen renders featured images for articles with Google Imagen through the Gemini API.
package imagen

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"
)

const (
	// DefaultModel is the Imagen model used when none is configured.
	DefaultModel = "imagen-3.0-generate-002"
	// FallbackImage is returned whenever no image can be produced.
	FallbackImage = "fallback:/images/default-gin-tonic.jpg"
	// DefaultTimeout bounds one generation call.
	DefaultTimeout = 60 * time.Second

	aspectRatio     = "16:9"
	defaultMIMEType = "image/png"
)

// ImageModel is the slice of the genai Models service the generator needs.
// *genai.Models satisfies it.
type ImageModel interface {
	GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// Config configures the generator.
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	Logger  *slog.Logger
	// Images replaces the Gemini client, mainly for tests. When set, APIKey is not required.
	Images ImageModel
}

// Generator produces featured images as data URIs.
type Generator struct {
	images  ImageModel
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// New builds a generator. Without an API key (and no Images override) the
// generator is still usable and always answers with FallbackImage.
func New(ctx context.Context, cfg Config) (*Generator, error) {
	g := &Generator{
		images:  cfg.Images,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
	}
	if g.model == "" {
		g.model = DefaultModel
	}
	if g.timeout <= 0 {
		g.timeout = DefaultTimeout
	}
	if g.logger == nil {
		g.logger = slog.New(slog.DiscardHandler)
	}

	if g.images == nil && cfg.APIKey != "" {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create GenAI client: %w", err)
		}
		g.images = client.Models
	}
	return g, nil
}

// Enabled reports whether the generator can reach an image model.
func (g *Generator) Enabled() bool {
	return g.images != nil
}

// Model returns the configured Imagen model name.
func (g *Generator) Model() string {
	return g.model
}

// Generate renders one 16:9 image for an article and returns it as
// "data:{mime};base64,{bytes}". Failures yield FallbackImage, decorated with the cause.
func (g *Generator) Generate(ctx context.Context, title, keyword string) string {
	if g.images == nil {
		return FallbackImage
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	g.logger.Debug("generating image", "model", g.model, "title", title, "keyword", keyword)
	resp, err := g.images.GenerateImages(ctx, g.model, featuredPrompt(title), &genai.GenerateImagesConfig{
		NumberOfImages:   1,
		AspectRatio:      aspectRatio,
		PersonGeneration: genai.PersonGenerationDontAllow,
	})
	if err != nil {
		g.logger.Warn("image generation failed", "title", title, "error", err)
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return fmt.Sprintf("%s (API error: %d)", FallbackImage, apiErr.Code)
		}
		return fmt.Sprintf("%s (error: %v)", FallbackImage, err)
	}

	if resp == nil {
		return FallbackImage
	}
	for _, img := range resp.GeneratedImages {
		if img == nil || img.Image == nil || len(img.Image.ImageBytes) == 0 {
			continue
		}
		mime := img.Image.MIMEType
		if mime == "" {
			mime = defaultMIMEType
		}
		return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(img.Image.ImageBytes))
	}
	return FallbackImage
}

func featuredPrompt(title string) string {
	return fmt.Sprintf(`A beautiful, professional photograph of a gin and tonic cocktail for an article titled "%s".

The image should feature:
- An elegant crystal or highball glass with a perfectly mixed gin and tonic
- Visible ice cubes and bubbles from the tonic
- Appropriate botanical garnishes (citrus, herbs, berries) based on the gin style
- Soft, natural lighting with a sophisticated bar or home setting
- Shallow depth of field for professional look
- Color palette that evokes freshness and premium quality

Style: Editorial food photography, magazine quality, warm ambient lighting`, title)
}

// Prompt builds an image prompt tuned for an article's featured image.
func Prompt(articleTitle, topic string) string {
	return fmt.Sprintf(`Professional food photography of a gin and tonic cocktail.

Context: Featured image for "%s"
Topic: %s

Requirements:
- High-end crystal or copa glass with gin and tonic
- Premium quality ice cubes with visible bubbles
- Elegant botanical garnishes matching the topic
- Soft natural lighting, shallow depth of field
- Sophisticated bar or home setting background
- Color palette: cool greens, citrus yellows, crystal clear
- Style: Editorial food photography, magazine cover quality
- Aspect ratio: 16:9 for blog headers`, articleTitle, topic)
}

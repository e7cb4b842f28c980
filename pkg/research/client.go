// Package research queries DataForSEO for keyword metrics and topic ideas.
// Every operation returns display text; failures degrade to a message instead of an error.
package research

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the DataForSEO v3 API root.
	DefaultBaseURL = "https://api.dataforseo.com/v3"
	// DefaultLocationCode targets the United States.
	DefaultLocationCode = 2840
	// DefaultRelatedLimit bounds related keyword listings.
	DefaultRelatedLimit = 10
	// DefaultTimeout applies to every request.
	DefaultTimeout = 30 * time.Second

	languageCode   = "en"
	trendingSeed   = "gin and tonic"
	trendingFetch  = 20
	trendingShown  = 15
	trendingMinVol = 100
)

// Messages returned instead of API results.
const (
	MsgNoCredentials        = "DataForSEO credentials not configured. Skipping keyword research."
	MsgNoCredentialsRelated = "DataForSEO credentials not configured."
	MsgNoTrending           = "No trending topics found."
)

// DefaultTrendingTopics is offered when no credentials are configured.
var DefaultTrendingTopics = []string{
	"best gin for gin and tonic",
	"fever tree tonic water review",
	"hendricks gin cocktails",
	"summer gin cocktails",
	"botanical gin guide",
	"gin and tonic garnishes",
	"premium tonic water comparison",
	"gin tasting notes",
	"craft gin brands",
	"gin cocktail recipes",
}

// Config holds DataForSEO credentials and transport settings.
type Config struct {
	Login      string
	Password   string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to the DataForSEO REST API with basic auth.
type Client struct {
	config Config
	client *http.Client
	logger *slog.Logger
}

// New creates a research client. Missing credentials are allowed; calls then fall back.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{config: cfg, client: httpClient, logger: logger}
}

// Configured reports whether both login and password are set.
func (c *Client) Configured() bool {
	return c.config.Login != "" && c.config.Password != ""
}

// SearchKeywords reports search volume, competition and CPC for keyword.
func (c *Client) SearchKeywords(ctx context.Context, keyword string, locationCode int) string {
	if !c.Configured() {
		return MsgNoCredentials
	}
	if locationCode == 0 {
		locationCode = DefaultLocationCode
	}

	body := []map[string]any{{
		"keywords":      []string{keyword},
		"location_code": locationCode,
		"language_code": languageCode,
	}}
	result, err := c.post(ctx, "/keywords_data/google_ads/search_volume/live", body)
	if err != nil {
		return c.failure("search_keywords", err)
	}
	if len(result) == 0 {
		return fmt.Sprintf("No data found for keyword: %s", keyword)
	}

	return fmt.Sprintf("Keyword: %s\nSearch Volume: %s\nCompetition: %s\nCPC: $%s",
		keyword,
		display(result["search_volume"], "N/A"),
		display(result["competition"], "N/A"),
		display(result["cpc"], "N/A"),
	)
}

// RelatedKeywords lists up to limit keywords related to the seed with their volumes.
func (c *Client) RelatedKeywords(ctx context.Context, keyword string, limit int) string {
	if !c.Configured() {
		return MsgNoCredentialsRelated
	}
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}

	body := []map[string]any{{
		"keyword":       keyword,
		"location_code": DefaultLocationCode,
		"language_code": languageCode,
		"limit":         limit,
	}}
	result, err := c.post(ctx, "/dataforseo_labs/google/related_keywords/live", body)
	if err != nil {
		return c.failure("get_related_keywords", err)
	}

	items := itemsOf(result)
	if len(items) == 0 {
		return fmt.Sprintf("No related keywords found for: %s", keyword)
	}
	if len(items) > limit {
		items = items[:limit]
	}

	lines := make([]string, 0, len(items))
	for _, item := range items {
		data := object(item["keyword_data"])
		lines = append(lines, fmt.Sprintf("- %s: %s searches",
			display(data["keyword"], "N/A"),
			display(object(data["keyword_info"])["search_volume"], "N/A"),
		))
	}
	return fmt.Sprintf("Related keywords for '%s':\n", keyword) + strings.Join(lines, "\n")
}

// TrendingTopics lists popular gin and tonic searches, or a default list without credentials.
func (c *Client) TrendingTopics(ctx context.Context) string {
	if !c.Configured() {
		lines := make([]string, 0, len(DefaultTrendingTopics))
		for _, topic := range DefaultTrendingTopics {
			lines = append(lines, "- "+topic)
		}
		return "Trending topics (default list):\n" + strings.Join(lines, "\n")
	}

	body := []map[string]any{{
		"keyword":       trendingSeed,
		"location_code": DefaultLocationCode,
		"language_code": languageCode,
		"limit":         trendingFetch,
		"filters":       []any{[]any{"keyword_info.search_volume", ">", trendingMinVol}},
		"order_by":      []string{"keyword_info.search_volume,desc"},
	}}
	result, err := c.post(ctx, "/dataforseo_labs/google/keyword_suggestions/live", body)
	if err != nil {
		return c.failure("get_trending_topics", err)
	}

	items := itemsOf(result)
	if len(items) == 0 {
		return MsgNoTrending
	}
	if len(items) > trendingShown {
		items = items[:trendingShown]
	}

	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("- %s: %s monthly searches",
			display(item["keyword"], ""),
			display(object(item["keyword_info"])["search_volume"], "0"),
		))
	}
	return "Trending gin & tonic topics:\n" + strings.Join(lines, "\n")
}

func (c *Client) failure(op string, err error) string {
	c.logger.Warn("dataforseo request failed", "op", op, "error", err)
	return fmt.Sprintf("DataForSEO error: %v", err)
}

// post sends one task and returns the first result object of the first task.
// A response without tasks or results yields an empty map.
func (c *Client) post(ctx context.Context, path string, body any) (map[string]any, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.config.Login, c.config.Password)

	c.logger.Debug("dataforseo request", "path", path)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var env envelope
	dec := json.NewDecoder(bytes.NewReader(respBody))
	dec.UseNumber()
	if err := dec.Decode(&env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(env.Tasks) == 0 || len(env.Tasks[0].Result) == 0 {
		return map[string]any{}, nil
	}
	return object(env.Tasks[0].Result[0]), nil
}

// --- DataForSEO response types ---

type envelope struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Tasks         []task `json:"tasks"`
}

type task struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Result        []any  `json:"result"`
}

func object(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func itemsOf(result map[string]any) []map[string]any {
	raw, _ := result["items"].([]any)
	items := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		items = append(items, object(item))
	}
	return items
}

// display renders a JSON scalar, or fallback when it is absent or null.
func display(v any, fallback string) string {
	switch val := v.(type) {
	case nil:
		return fallback
	case string:
		return val
	case json.Number:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

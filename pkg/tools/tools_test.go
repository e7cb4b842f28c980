package tools_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/seoagent/pkg/adapters/fs"
	"github.com/aretw0/seoagent/pkg/core"
	"github.com/aretw0/seoagent/pkg/tools"
)

type fakeResearcher struct {
	lastKeyword  string
	lastLocation int
	lastLimit    int
}

func (f *fakeResearcher) SearchKeywords(ctx context.Context, keyword string, locationCode int) string {
	f.lastKeyword, f.lastLocation = keyword, locationCode
	return "metrics for " + keyword
}

func (f *fakeResearcher) RelatedKeywords(ctx context.Context, keyword string, limit int) string {
	f.lastKeyword, f.lastLimit = keyword, limit
	return "related to " + keyword
}

func (f *fakeResearcher) TrendingTopics(ctx context.Context) string {
	return "trending"
}

type fakeImages struct{}

func (fakeImages) Generate(ctx context.Context, title, keyword string) string {
	return "data:image/png;base64," + title + "|" + keyword
}

func setup(t *testing.T) (*tools.Registry, *fakeResearcher, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "articles_data")
	repo, err := fs.NewRepository(fs.Config{Path: dir})
	require.NoError(t, err)
	require.NoError(t, repo.Initialize(context.Background()))

	current := time.Date(2026, 10, 15, 9, 0, 0, 0, time.Local)
	clock := func() time.Time {
		current = current.Add(time.Second)
		return current
	}
	svc := core.NewService(repo, core.WithClock(clock))

	researcher := &fakeResearcher{}
	reg, err := tools.New(svc, researcher, fakeImages{}, nil)
	require.NoError(t, err)
	return reg, researcher, dir
}

func save(t *testing.T, reg *tools.Registry, title, keyword string) string {
	t.Helper()
	args, err := json.Marshal(map[string]any{
		"title":              title,
		"content":            "# " + title,
		"meta_description":   "About " + title,
		"primary_keyword":    keyword,
		"secondary_keywords": []string{"gin", "tonic"},
		"image_url":          "fallback:/images/default-gin-tonic.jpg",
	})
	require.NoError(t, err)
	out, err := reg.Call(context.Background(), tools.SaveArticle, string(args))
	require.NoError(t, err)
	return out
}

func TestNames(t *testing.T) {
	reg, _, _ := setup(t)
	assert.Equal(t, []string{
		"create_image_prompt", "delete_article", "generate_image", "get_article",
		"get_articles", "get_related_keywords", "get_trending_topics",
		"save_article", "search_keywords", "update_article_status",
	}, reg.Names())
}

func TestSaveArticle(t *testing.T) {
	reg, _, dir := setup(t)

	out := save(t, reg, "Best Gin for Tonic", "best gin")
	want := "Article saved successfully!\nID: best-gin-for-tonic-20261015090001\nSlug: best-gin-for-tonic\nPath: " +
		filepath.Join(dir, "best-gin-for-tonic-20261015090001.json")
	assert.Equal(t, want, out)
}

func TestSaveArticle_MissingRequired(t *testing.T) {
	reg, _, _ := setup(t)
	_, err := reg.Call(context.Background(), tools.SaveArticle, `{"title": "Only Title"}`)
	assert.ErrorIs(t, err, tools.ErrInvalidArgs)
}

func TestGetArticles(t *testing.T) {
	reg, _, _ := setup(t)
	ctx := context.Background()

	out, err := reg.Call(ctx, tools.GetArticles, "")
	require.NoError(t, err)
	assert.Equal(t, "No articles found.", out)

	save(t, reg, "First Gin", "gin one")
	save(t, reg, "Second Gin", "gin two")

	out, err = reg.Call(ctx, tools.GetArticles, `{"status": "all", "limit": 10}`)
	require.NoError(t, err)
	assert.Equal(t, "Found 2 articles:\n\n"+
		"- [published] Second Gin\n  Slug: second-gin | Keyword: gin two\n  Created: 2026-10-15\n"+
		"- [published] First Gin\n  Slug: first-gin | Keyword: gin one\n  Created: 2026-10-15", out)

	out, err = reg.Call(ctx, tools.GetArticles, `{"limit": "1"}`)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Found 1 articles:\n"))

	out, err = reg.Call(ctx, tools.GetArticles, `{"status": "draft"}`)
	require.NoError(t, err)
	assert.Equal(t, "No articles found.", out)

	_, err = reg.Call(ctx, tools.GetArticles, `{"status": "archived"}`)
	assert.ErrorIs(t, err, core.ErrInvalidStatus)
}

func TestGetArticle(t *testing.T) {
	reg, _, _ := setup(t)
	ctx := context.Background()
	save(t, reg, "Gin & Tonic <Classic>", "gin")

	out, err := reg.Call(ctx, tools.GetArticle, `{"slug": "gin-tonic-classic"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "\n  \"title\": \"Gin & Tonic <Classic>\",\n")

	var a core.Article
	require.NoError(t, json.Unmarshal([]byte(out), &a))
	assert.Equal(t, "gin-tonic-classic", a.Slug)
	assert.Equal(t, "Gin & Tonic <Classic> - Premium Gin and Tonic Guide", a.ImageAlt)

	out, err = reg.Call(ctx, tools.GetArticle, `{"slug": "missing"}`)
	require.NoError(t, err)
	assert.Equal(t, "Article not found: missing", out)
}

func TestUpdateArticleStatus(t *testing.T) {
	reg, _, _ := setup(t)
	ctx := context.Background()
	save(t, reg, "Status Gin", "gin")

	out, err := reg.Call(ctx, tools.UpdateArticleStatus, `{"slug": "status-gin", "status": "draft"}`)
	require.NoError(t, err)
	assert.Equal(t, "Article 'status-gin' status updated to: draft", out)

	out, err = reg.Call(ctx, tools.GetArticles, `{"status": "draft"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "- [draft] Status Gin")

	out, err = reg.Call(ctx, tools.UpdateArticleStatus, `{"slug": "nope", "status": "draft"}`)
	require.NoError(t, err)
	assert.Equal(t, "Article not found: nope", out)

	_, err = reg.Call(ctx, tools.UpdateArticleStatus, `{"slug": "status-gin", "status": "archived"}`)
	assert.ErrorIs(t, err, core.ErrInvalidStatus)
}

func TestDeleteArticle(t *testing.T) {
	reg, _, _ := setup(t)
	ctx := context.Background()
	save(t, reg, "Doomed Gin", "gin")

	out, err := reg.Call(ctx, tools.DeleteArticle, `{"slug": "doomed-gin"}`)
	require.NoError(t, err)
	assert.Equal(t, "Article deleted: doomed-gin", out)

	out, err = reg.Call(ctx, tools.DeleteArticle, `{"slug": "doomed-gin"}`)
	require.NoError(t, err)
	assert.Equal(t, "Article not found: doomed-gin", out)
}

func TestCollaboratorTools(t *testing.T) {
	reg, researcher, _ := setup(t)
	ctx := context.Background()

	out, err := reg.Call(ctx, tools.SearchKeywords, `{"keyword": "gin"}`)
	require.NoError(t, err)
	assert.Equal(t, "metrics for gin", out)
	assert.Equal(t, 2840, researcher.lastLocation)

	out, err = reg.Call(ctx, tools.GetRelatedKeywords, `{"keyword": "tonic", "limit": 3}`)
	require.NoError(t, err)
	assert.Equal(t, "related to tonic", out)
	assert.Equal(t, 3, researcher.lastLimit)

	out, err = reg.Call(ctx, tools.GetTrendingTopics, "{}")
	require.NoError(t, err)
	assert.Equal(t, "trending", out)

	out, err = reg.Call(ctx, tools.GenerateImage, `{"title": "T", "keyword": "k"}`)
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,T|k", out)

	out, err = reg.Call(ctx, tools.CreateImagePrompt, `{"article_title": "T", "topic": "k"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "Context: Featured image for \"T\"\nTopic: k")
}

func TestCallErrors(t *testing.T) {
	reg, _, _ := setup(t)
	ctx := context.Background()

	_, err := reg.Call(ctx, "unknown_tool", "{}")
	assert.ErrorIs(t, err, tools.ErrToolNotFound)

	_, err = reg.Call(ctx, tools.GetArticle, "{broken")
	assert.ErrorIs(t, err, tools.ErrInvalidArgs)

	_, err = reg.Call(ctx, tools.GetArticle, `{"slug": 42}`)
	assert.ErrorIs(t, err, tools.ErrInvalidArgs)

	_, err = reg.Call(ctx, tools.GetArticles, `{"limit": "many"}`)
	assert.ErrorIs(t, err, tools.ErrInvalidArgs)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	reg := tools.NewRegistry(nil)
	tool := &tools.Tool{Name: "echo", Handler: func(ctx context.Context, args tools.Args) (string, error) {
		return args.String("text", "")
	}}
	require.NoError(t, reg.Register(tool))
	assert.ErrorIs(t, reg.Register(tool), tools.ErrToolAlreadyRegistered)
	assert.ErrorIs(t, reg.Register(&tools.Tool{Name: "nil"}), tools.ErrToolHandlerNil)

	out, err := reg.Call(context.Background(), "echo", `{"text": "hi"}`)
	require.NoError(t, err)
	assert.Equal(t, "hi", out)
}

func TestListResult_FallsBackOnMissingFields(t *testing.T) {
	out := tools.ListResult([]core.Article{
		{Slug: "bare"},
		{Slug: "tónica", Title: "Tónica", Status: core.StatusDraft, PrimaryKeyword: "tónica", CreatedAt: "ÉÉÉÉÉÉÉÉÉÉÉÉ"},
	})
	assert.Equal(t, "Found 2 articles:\n\n"+
		"- [unknown] Untitled\n  Slug: bare | Keyword: N/A\n  Created: N/A\n"+
		"- [draft] Tónica\n  Slug: tónica | Keyword: tónica\n  Created: ÉÉÉÉÉÉÉÉÉÉ", out)
}

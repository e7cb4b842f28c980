package fs_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/seoagent/pkg/adapters/fs"
	"github.com/aretw0/seoagent/pkg/core"
)

// setupRepo creates an initialized repository in a fresh temp directory.
// It returns the repository and the articles directory.
func setupRepo(t *testing.T, opts ...func(*fs.Config)) (*fs.Repository, string) {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "articles_data")
	cfg := fs.Config{Path: dir}
	for _, opt := range opts {
		opt(&cfg)
	}

	repo, err := fs.NewRepository(cfg)
	require.NoError(t, err)
	require.NoError(t, repo.Initialize(context.Background()))
	return repo, dir
}

func newArticle(slugValue string, created time.Time, status core.Status) core.Article {
	stamp := core.FormatTimestamp(created)
	a := core.Article{
		ID:                slugValue + "-" + created.Format("20060102150405"),
		Slug:              slugValue,
		Title:             slugValue,
		MetaDescription:   "about " + slugValue,
		Content:           "body of " + slugValue,
		PrimaryKeyword:    slugValue,
		SecondaryKeywords: []string{"gin", "tonic"},
		ImageURL:          "fallback:/images/default-gin-tonic.jpg",
		ImageAlt:          slugValue + core.ImageAltSuffix,
		SchemaMarkup:      core.DefaultSchemaMarkup(slugValue, "about "+slugValue),
		Status:            status,
		CreatedAt:         stamp,
	}
	if status == core.StatusPublished {
		a.PublishedAt = stamp
	}
	return a
}

var base = time.Date(2026, 10, 15, 9, 0, 0, 0, time.Local)

func TestInitialize(t *testing.T) {
	t.Run("Creates Directory if Missing", func(t *testing.T) {
		_, dir := setupRepo(t)
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("Fails if MustExist and Missing", func(t *testing.T) {
		repo, err := fs.NewRepository(fs.Config{
			Path:      filepath.Join(t.TempDir(), "missing"),
			MustExist: true,
		})
		require.NoError(t, err)
		assert.Error(t, repo.Initialize(context.Background()))
	})

	t.Run("Rejects Unknown Format", func(t *testing.T) {
		_, err := fs.NewRepository(fs.Config{Path: t.TempDir(), Format: "xml"})
		assert.Error(t, err)
	})
}

func TestCreate(t *testing.T) {
	t.Run("Writes One JSON File Named By ID", func(t *testing.T) {
		repo, dir := setupRepo(t)
		a := newArticle("best-gin", base, core.StatusPublished)

		receipt, err := repo.Create(context.Background(), a)
		require.NoError(t, err)
		assert.Equal(t, "best-gin-20261015090000", receipt.ID)
		assert.Equal(t, "best-gin", receipt.Slug)
		assert.Equal(t, filepath.Join(dir, "best-gin-20261015090000.json"), receipt.Path)

		raw, err := os.ReadFile(receipt.Path)
		require.NoError(t, err)

		var payload map[string]any
		require.NoError(t, json.Unmarshal(raw, &payload))
		for _, field := range []string{
			"id", "slug", "title", "metaDescription", "content", "primaryKeyword",
			"secondaryKeywords", "imageUrl", "imageAlt", "schemaMarkup", "status",
			"createdAt", "publishedAt",
		} {
			assert.Contains(t, payload, field)
		}
		assert.Len(t, payload, 13)
	})

	t.Run("Same ID Gets A Suffix Instead Of Overwriting", func(t *testing.T) {
		repo, dir := setupRepo(t)
		a := newArticle("best-gin", base, core.StatusPublished)

		first, err := repo.Create(context.Background(), a)
		require.NoError(t, err)
		a.Content = "second body"
		second, err := repo.Create(context.Background(), a)
		require.NoError(t, err)

		assert.NotEqual(t, first.ID, second.ID)
		assert.Contains(t, second.ID, first.ID+"-")

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("Concurrent Creates Never Lose A Record", func(t *testing.T) {
		repo, dir := setupRepo(t)
		a := newArticle("race", base, core.StatusPublished)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.Create(context.Background(), a)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 8)
	})

	t.Run("Fails When Directory Is Gone", func(t *testing.T) {
		repo, dir := setupRepo(t)
		require.NoError(t, os.RemoveAll(dir))

		_, err := repo.Create(context.Background(), newArticle("x", base, core.StatusPublished))
		assert.Error(t, err)
	})
}

func TestGet(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	a := newArticle("best-gin", base, core.StatusPublished)
	_, err := repo.Create(ctx, a)
	require.NoError(t, err)

	got, err := repo.Get(ctx, "best-gin")
	require.NoError(t, err)
	assert.Equal(t, a.Title, got.Title)
	assert.Equal(t, a.SecondaryKeywords, got.SecondaryKeywords)
	assert.Equal(t, a.CreatedAt, got.CreatedAt)

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestGet_FirstMatchInFilenameOrder(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	older := newArticle("dup", base, core.StatusPublished)
	older.Content = "older"
	newer := newArticle("dup", base.Add(time.Hour), core.StatusPublished)
	newer.Content = "newer"

	_, err := repo.Create(ctx, newer)
	require.NoError(t, err)
	_, err = repo.Create(ctx, older)
	require.NoError(t, err)

	got, err := repo.Get(ctx, "dup")
	require.NoError(t, err)
	assert.Equal(t, "older", got.Content, "ascending filename order puts the earlier timestamp first")

	// Updates and deletes touch the same record.
	require.NoError(t, repo.Delete(ctx, "dup"))
	got, err = repo.Get(ctx, "dup")
	require.NoError(t, err)
	assert.Equal(t, "newer", got.Content)
}

func TestList(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	// Slugs of different length would break a pure filename sort.
	records := []core.Article{
		newArticle("a", base.Add(1*time.Minute), core.StatusPublished),
		newArticle("zzzz-long-slug", base.Add(2*time.Minute), core.StatusDraft),
		newArticle("m", base.Add(3*time.Minute), core.StatusPublished),
		newArticle("b", base.Add(4*time.Minute), core.StatusDraft),
	}
	for _, a := range records {
		_, err := repo.Create(ctx, a)
		require.NoError(t, err)
	}

	t.Run("Newest First", func(t *testing.T) {
		all, err := repo.List(ctx, core.FilterAll, 10)
		require.NoError(t, err)
		require.Len(t, all, 4)
		assert.Equal(t, []string{"b", "m", "zzzz-long-slug", "a"}, slugs(all))
	})

	t.Run("Respects Limit", func(t *testing.T) {
		two, err := repo.List(ctx, core.FilterAll, 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "m"}, slugs(two))
	})

	t.Run("Filters By Status", func(t *testing.T) {
		drafts, err := repo.List(ctx, core.StatusFilter(core.StatusDraft), 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "zzzz-long-slug"}, slugs(drafts))
		for _, a := range drafts {
			assert.Equal(t, core.StatusDraft, a.Status)
		}
	})
}

func TestList_SkipsCorruptRecords(t *testing.T) {
	repo, dir := setupRepo(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := repo.Create(ctx, newArticle(fmt.Sprintf("valid-%02d", i), base.Add(time.Duration(i)*time.Minute), core.StatusPublished))
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "corrupt-20261015090000.json"), []byte("{not json"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty-20261015090000.json"), []byte("{}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	all, err := repo.List(ctx, core.FilterAll, 10)
	require.NoError(t, err)
	assert.Len(t, all, 10)

	got, err := repo.Get(ctx, "valid-09")
	require.NoError(t, err)
	assert.Equal(t, "valid-09", got.Slug)
}

func TestList_FailsWhenDirectoryUnavailable(t *testing.T) {
	repo, dir := setupRepo(t)
	require.NoError(t, os.RemoveAll(dir))

	_, err := repo.List(context.Background(), core.FilterAll, 10)
	assert.Error(t, err)
}

func TestUpdate(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	_, err := repo.Create(ctx, newArticle("best-gin", base, core.StatusPublished))
	require.NoError(t, err)

	updated, err := repo.Update(ctx, "best-gin", func(a *core.Article) error {
		a.Status = core.StatusDraft
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, core.StatusDraft, updated.Status)

	got, err := repo.Get(ctx, "best-gin")
	require.NoError(t, err)
	assert.Equal(t, core.StatusDraft, got.Status)

	_, err = repo.Update(ctx, "missing", func(a *core.Article) error { return nil })
	assert.ErrorIs(t, err, core.ErrNotFound)

	boom := fmt.Errorf("boom")
	_, err = repo.Update(ctx, "best-gin", func(a *core.Article) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestUpdate_ConcurrentWritersKeepFileValid(t *testing.T) {
	repo, dir := setupRepo(t)
	ctx := context.Background()
	receipt, err := repo.Create(ctx, newArticle("busy", base, core.StatusPublished))
	require.NoError(t, err)

	var g errgroup.Group
	for i := 0; i < 20; i++ {
		g.Go(func() error {
			status := core.StatusDraft
			if i%2 == 0 {
				status = core.StatusPublished
			}
			_, err := repo.Update(ctx, "busy", func(a *core.Article) error {
				a.Status = status
				a.Content = fmt.Sprintf("writer %d", i)
				return nil
			})
			return err
		})
	}
	require.NoError(t, g.Wait())

	raw, err := os.ReadFile(receipt.Path)
	require.NoError(t, err)
	var a core.Article
	require.NoError(t, json.Unmarshal(raw, &a))
	assert.Equal(t, "busy", a.Slug)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files or duplicates left behind")
}

func TestDelete(t *testing.T) {
	repo, dir := setupRepo(t)
	ctx := context.Background()
	_, err := repo.Create(ctx, newArticle("best-gin", base, core.StatusPublished))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, "best-gin"))

	_, err = repo.Get(ctx, "best-gin")
	assert.ErrorIs(t, err, core.ErrNotFound)
	all, err := repo.List(ctx, core.FilterAll, 10)
	require.NoError(t, err)
	assert.Empty(t, all)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.ErrorIs(t, repo.Delete(ctx, "best-gin"), core.ErrNotFound)
}

func TestReadOnly(t *testing.T) {
	_, dir := setupRepo(t)
	writable, err := fs.NewRepository(fs.Config{Path: dir})
	require.NoError(t, err)
	_, err = writable.Create(context.Background(), newArticle("kept", base, core.StatusPublished))
	require.NoError(t, err)

	repo, err := fs.NewRepository(fs.Config{Path: dir, ReadOnly: true})
	require.NoError(t, err)
	require.NoError(t, repo.Initialize(context.Background()))
	ctx := context.Background()

	_, err = repo.Create(ctx, newArticle("new", base, core.StatusPublished))
	assert.ErrorIs(t, err, core.ErrReadOnly)
	_, err = repo.Update(ctx, "kept", func(a *core.Article) error { return nil })
	assert.ErrorIs(t, err, core.ErrReadOnly)
	assert.ErrorIs(t, repo.Delete(ctx, "kept"), core.ErrReadOnly)

	got, err := repo.Get(ctx, "kept")
	require.NoError(t, err)
	assert.Equal(t, "kept", got.Slug)
}

func TestYAMLFormat(t *testing.T) {
	repo, dir := setupRepo(t, func(c *fs.Config) { c.Format = fs.FormatYAML })
	ctx := context.Background()
	a := newArticle("yaml-gin", base, core.StatusPublished)

	receipt, err := repo.Create(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, a.ID+".yaml"), receipt.Path)

	got, err := repo.Get(ctx, "yaml-gin")
	require.NoError(t, err)
	if diff := cmp.Diff(a, got); diff != "" {
		t.Errorf("yaml round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestReadsRecordsWrittenElsewhere(t *testing.T) {
	repo, dir := setupRepo(t)
	legacy := `{
  "id": "summer-gin-cocktails-20250601120000",
  "slug": "summer-gin-cocktails",
  "title": "Summer Gin Cocktails",
  "metaDescription": "Refreshing ideas.",
  "content": "# Summer",
  "primaryKeyword": "summer gin cocktails",
  "secondaryKeywords": ["gin", "summer"],
  "imageUrl": "data:image/png;base64,AAAA",
  "imageAlt": "Summer Gin Cocktails - Premium Gin and Tonic Guide",
  "schemaMarkup": {"@context": "https://schema.org", "@type": "Article", "wordCount": 1800},
  "status": "draft",
  "createdAt": "2025-06-01T12:00:00.123456",
  "publishedAt": null
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "summer-gin-cocktails-20250601120000.json"), []byte(legacy), 0644))

	got, err := repo.Get(context.Background(), "summer-gin-cocktails")
	require.NoError(t, err)
	assert.Equal(t, core.StatusDraft, got.Status)
	assert.Empty(t, got.PublishedAt)
	assert.Equal(t, json.Number("1800"), got.SchemaMarkup["wordCount"])
	_, ok := got.Created()
	assert.True(t, ok)
}

func TestCacheSeesExternalEdits(t *testing.T) {
	repo, dir := setupRepo(t)
	ctx := context.Background()
	receipt, err := repo.Create(ctx, newArticle("edited", base, core.StatusPublished))
	require.NoError(t, err)

	_, err = repo.Get(ctx, "edited")
	require.NoError(t, err)

	a := newArticle("edited", base, core.StatusDraft)
	a.Content = "rewritten by hand with a much longer body than before"
	raw, err := json.Marshal(a)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(receipt.Path, raw, 0644))
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(receipt.Path, future, future))

	got, err := repo.Get(ctx, "edited")
	require.NoError(t, err)
	assert.Equal(t, core.StatusDraft, got.Status)
	assert.Equal(t, a.Content, got.Content)

	state := repo.State().(fs.RepositoryState)
	assert.Equal(t, dir, state.Path)
	assert.Equal(t, 1, state.CacheSize)
	assert.Equal(t, "repository", repo.ComponentType())
}

func TestRecordsAreIsolatedFromCallers(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	a := newArticle("isolated", base, core.StatusPublished)
	_, err := repo.Create(ctx, a)
	require.NoError(t, err)

	a.SchemaMarkup["headline"] = "changed after create"
	a.SecondaryKeywords[0] = "vodka"

	got, err := repo.Get(ctx, "isolated")
	require.NoError(t, err)
	assert.Equal(t, "isolated", got.SchemaMarkup["headline"])
	assert.Equal(t, []string{"gin", "tonic"}, got.SecondaryKeywords)

	got.SchemaMarkup["injected"] = "from a returned record"
	got.SecondaryKeywords[1] = "soda"

	again, err := repo.Get(ctx, "isolated")
	require.NoError(t, err)
	assert.NotContains(t, again.SchemaMarkup, "injected")
	assert.Equal(t, []string{"gin", "tonic"}, again.SecondaryKeywords)

	listed, err := repo.List(ctx, core.FilterAll, 10)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.NotContains(t, listed[0].SchemaMarkup, "injected")
}

func TestUpdate_KeepsUnknownFields(t *testing.T) {
	repo, dir := setupRepo(t)
	ctx := context.Background()
	path := filepath.Join(dir, "negroni-20250601120000.json")
	record := `{
  "id": "negroni-20250601120000",
  "slug": "negroni",
  "title": "Negroni",
  "author": "jane",
  "wordCount": 1800,
  "status": "draft",
  "createdAt": "2025-06-01T12:00:00.123456",
  "publishedAt": null,
  "review": {"score": 4.5, "tags": ["bitter", "classic"]}
}`
	require.NoError(t, os.WriteFile(path, []byte(record), 0644))

	readRecord := func() map[string]any {
		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		var m map[string]any
		require.NoError(t, json.Unmarshal(raw, &m))
		return m
	}

	t.Run("Unchanged Fields Stay As Written", func(t *testing.T) {
		_, err := repo.Update(ctx, "negroni", func(a *core.Article) error {
			a.Status = core.StatusDraft
			return nil
		})
		require.NoError(t, err)

		m := readRecord()
		assert.Equal(t, "jane", m["author"])
		assert.Equal(t, float64(1800), m["wordCount"])
		assert.Contains(t, m, "publishedAt")
		assert.Nil(t, m["publishedAt"])
		assert.Equal(t, map[string]any{"score": 4.5, "tags": []any{"bitter", "classic"}}, m["review"])
	})

	t.Run("Status Change Touches Only Status Fields", func(t *testing.T) {
		_, err := repo.Update(ctx, "negroni", func(a *core.Article) error {
			a.Status = core.StatusPublished
			a.PublishedAt = "2026-10-15T09:00:00.000000"
			return nil
		})
		require.NoError(t, err)

		m := readRecord()
		assert.Equal(t, "published", m["status"])
		assert.Equal(t, "2026-10-15T09:00:00.000000", m["publishedAt"])
		assert.Equal(t, "jane", m["author"])
		assert.Equal(t, float64(1800), m["wordCount"])
		assert.NotContains(t, m, "content")
		assert.NotContains(t, m, "schemaMarkup")

		got, err := repo.Get(ctx, "negroni")
		require.NoError(t, err)
		assert.Equal(t, core.StatusPublished, got.Status)
	})
}

func TestUpdate_KeepsUnknownFieldsInYAML(t *testing.T) {
	repo, dir := setupRepo(t, func(c *fs.Config) { c.Format = fs.FormatYAML })
	ctx := context.Background()
	path := filepath.Join(dir, "martini-20250601120000.yaml")
	record := "id: martini-20250601120000\nslug: martini\ntitle: Martini\nauthor: jane\nstatus: published\ncreatedAt: \"2025-06-01T12:00:00.123456\"\npublishedAt: \"2025-06-01T12:00:00.123456\"\n"
	require.NoError(t, os.WriteFile(path, []byte(record), 0644))

	_, err := repo.Update(ctx, "martini", func(a *core.Article) error {
		a.Status = core.StatusDraft
		return nil
	})
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, yaml.Unmarshal(raw, &m))
	assert.Equal(t, "draft", m["status"])
	assert.Equal(t, "jane", m["author"])
	assert.Equal(t, "2025-06-01T12:00:00.123456", m["publishedAt"])
	assert.NotContains(t, m, "content")
}

func slugs(articles []core.Article) []string {
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		out = append(out, a.Slug)
	}
	return out
}

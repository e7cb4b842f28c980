package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	lifecyclesrc "github.com/aretw0/seoagent/pkg/adapters/lifecycle"
	"github.com/aretw0/seoagent/pkg/core"
	"github.com/aretw0/seoagent/pkg/tools"
)

func newSaveCmd(a *app) *cobra.Command {
	var (
		in            core.CreateInput
		contentFile   string
		schemaJSON    string
		draft         bool
		generateImage bool
	)

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save a new article",
		Long: `Save creates {slug}-{timestamp}.json in the articles directory.
Content is read from --content, --content-file, or stdin when --content-file is "-".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := contextOf(cmd)

			if contentFile != "" {
				var data []byte
				var err error
				if contentFile == "-" {
					data, err = readAll(cmd.InOrStdin())
				} else {
					data, err = os.ReadFile(contentFile)
				}
				if err != nil {
					return fmt.Errorf("failed to read content: %w", err)
				}
				in.Content = string(data)
			}
			if schemaJSON != "" {
				if err := json.Unmarshal([]byte(schemaJSON), &in.SchemaMarkup); err != nil {
					return fmt.Errorf("invalid --schema JSON: %w", err)
				}
			}
			if draft {
				in.Status = core.StatusDraft
			}

			if generateImage && in.ImageURL == "" {
				images, err := a.images(ctx)
				if err != nil {
					return err
				}
				in.ImageURL = images.Generate(ctx, in.Title, in.PrimaryKeyword)
			}

			svc, err := a.service()
			if err != nil {
				return err
			}
			receipt, err := svc.CreateArticle(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tools.SaveResult(receipt))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&in.Title, "title", "t", "", "Article title")
	f.StringVarP(&in.Content, "content", "c", "", "Markdown content")
	f.StringVar(&contentFile, "content-file", "", "Read content from a file (- for stdin)")
	f.StringVarP(&in.MetaDescription, "meta", "m", "", "SEO meta description")
	f.StringVarP(&in.PrimaryKeyword, "keyword", "k", "", "Primary keyword")
	f.StringSliceVarP(&in.SecondaryKeywords, "secondary", "s", nil, "Secondary keywords (repeatable or comma separated)")
	f.StringVar(&in.ImageURL, "image", "", "Featured image URL or data URI")
	f.StringVar(&schemaJSON, "schema", "", "JSON-LD schema markup as a JSON object")
	f.BoolVar(&draft, "draft", false, "Save as draft instead of published")
	f.BoolVar(&generateImage, "generate-image", false, "Generate the featured image with Imagen when --image is empty")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var (
		status string
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List articles, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := core.ParseFilter(status)
			if err != nil {
				return err
			}
			svc, err := a.service()
			if err != nil {
				return err
			}
			articles, err := svc.ListArticles(contextOf(cmd), filter, limit)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetEscapeHTML(false)
				enc.SetIndent("", "  ")
				return enc.Encode(articles)
			}
			fmt.Fprintln(cmd.OutOrStdout(), tools.ListResult(articles))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "all", "Filter by status: all, draft or published")
	cmd.Flags().IntVarP(&limit, "limit", "n", core.DefaultListLimit, "Maximum number of articles")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get [slug]",
		Short: "Print an article as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			article, err := svc.GetArticle(contextOf(cmd), args[0])
			if core.IsNotFound(err) {
				fmt.Fprintln(cmd.OutOrStdout(), tools.NotFound(args[0]))
				return nil
			}
			if err != nil {
				return err
			}
			out, err := tools.ArticleJSON(article)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status [slug] [draft|published]",
		Short: "Move an article between draft and published",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTool(cmd, tools.UpdateArticleStatus, map[string]any{"slug": args[0], "status": args[1]})
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [slug]",
		Short: "Delete an article permanently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTool(cmd, tools.DeleteArticle, map[string]any{"slug": args[0]})
		},
	}
}

func newWatchCmd(a *app) *cobra.Command {
	var pattern string
	var typeNames []string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream article file changes until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt)
			defer stop()

			types := make([]core.EventType, 0, len(typeNames))
			for _, name := range typeNames {
				t, err := core.ParseEventType(name)
				if err != nil {
					return err
				}
				types = append(types, t)
			}

			svc, err := a.service()
			if err != nil {
				return err
			}
			events, err := svc.Watch(ctx, pattern)
			if err != nil {
				return err
			}

			src := lifecyclesrc.NewSource(events, lifecyclesrc.WithTypes(types...))
			if err := src.Start(ctx); err != nil {
				return err
			}

			a.logger.Info("watching articles", "dir", a.cfg.ArticlesDir, "pattern", pattern)
			for e := range src.Events() {
				fmt.Fprintln(cmd.OutOrStdout(), e.String())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&pattern, "pattern", "*", "File name glob (doublestar syntax)")
	cmd.Flags().StringSliceVar(&typeNames, "type", nil, "Event types to show: create, modify, delete (default all)")
	return cmd
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

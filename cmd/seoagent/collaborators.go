package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/aretw0/seoagent/pkg/imagen"
	"github.com/aretw0/seoagent/pkg/research"
)

func newResearchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "research",
		Short: "Keyword research through DataForSEO",
	}

	var location int
	keywords := &cobra.Command{
		Use:   "keywords [keyword]",
		Short: "Search volume, competition and CPC for a keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), a.researcher().SearchKeywords(contextOf(cmd), args[0], location))
			return nil
		},
	}
	keywords.Flags().IntVar(&location, "location", research.DefaultLocationCode, "DataForSEO location code")

	var limit int
	related := &cobra.Command{
		Use:   "related [keyword]",
		Short: "Keywords related to a seed keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), a.researcher().RelatedKeywords(contextOf(cmd), args[0], limit))
			return nil
		},
	}
	related.Flags().IntVarP(&limit, "limit", "n", research.DefaultRelatedLimit, "Maximum number of keywords")

	trending := &cobra.Command{
		Use:   "trending",
		Short: "Trending gin and tonic topics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), a.researcher().TrendingTopics(contextOf(cmd)))
			return nil
		},
	}

	cmd.AddCommand(keywords, related, trending)
	return cmd
}

func newImageCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image",
		Short: "Featured images through Imagen",
	}

	generate := &cobra.Command{
		Use:   "generate [title] [keyword]",
		Short: "Generate a featured image and print it as a data URI",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := contextOf(cmd)
			g, err := a.images(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), g.Generate(ctx, args[0], args[1]))
			return nil
		},
	}

	prompt := &cobra.Command{
		Use:   "prompt [article-title] [topic]",
		Short: "Print the image prompt for an article",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), imagen.Prompt(args[0], args[1]))
			return nil
		},
	}

	cmd.AddCommand(generate, prompt)
	return cmd
}

func sortStrings(s []string) []string {
	sort.Strings(s)
	return s
}

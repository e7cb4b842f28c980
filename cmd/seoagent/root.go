package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aretw0/seoagent/internal/config"
)

// app carries the flags and resolved configuration shared by every command.
type app struct {
	verbose bool
	dir     string
	format  string
	envFile string

	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "seoagent",
		Short: "Article store and SEO tools for the gin & tonic content agent",
		Long: `seoagent keeps SEO articles as one JSON (or YAML) file each and exposes
the store, DataForSEO keyword research and Imagen featured images as named tools.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")
	flags.StringVarP(&a.dir, "dir", "d", "", "Articles directory (overrides ARTICLES_DIR)")
	flags.StringVar(&a.format, "format", "", "Record format: json or yaml (overrides ARTICLES_FORMAT)")
	flags.StringVar(&a.envFile, "env-file", ".env", "Optional .env file to load")

	rootCmd.AddCommand(
		newSaveCmd(a),
		newListCmd(a),
		newGetCmd(a),
		newStatusCmd(a),
		newDeleteCmd(a),
		newWatchCmd(a),
		newResearchCmd(a),
		newImageCmd(a),
		newToolCmd(a),
		newToolsCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// setup resolves configuration and installs the logger.
func (a *app) setup(stderr io.Writer) error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}
	if a.dir != "" {
		cfg.ArticlesDir = a.dir
	}
	if a.format != "" {
		cfg.ArticlesFormat = a.format
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	level := cfg.Level()
	if a.verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(stderr, opts)
	} else {
		handler = slog.NewTextHandler(stderr, opts)
	}
	a.logger = slog.New(handler)
	slog.SetDefault(a.logger)
	return nil
}


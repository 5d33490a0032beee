package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/aretw0/blox"
	"github.com/aretw0/blox/internal/adapters/file"
	"github.com/aretw0/blox/internal/config"
	"github.com/aretw0/blox/internal/logging"
	"github.com/aretw0/blox/pkg/domain"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "blox",
	Short: "Blox is a block-based email template builder",
	Long: `Blox edits email templates stored as a flat map of blocks.
Documents can be validated, rendered to HTML, exported for campaign tools,
edited from the command line, or served over HTTP and MCP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", config.FileName, "Path to the configuration file")
	rootCmd.PersistentFlags().StringP("document", "d", "", "Document file (.json or .yaml), overrides the config")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
}

// loadConfig reads the config file and applies the persistent flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if doc, _ := cmd.Flags().GetString("document"); doc != "" {
		cfg.Document = doc
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}

// workspace bundles what most commands need.
type workspace struct {
	cfg    *config.Config
	logger *slog.Logger
	source *file.Source
	editor *blox.Editor
}

// openWorkspace loads the configured document into a new editor.
func openWorkspace(cmd *cobra.Command, opts ...blox.Option) (*workspace, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	src := file.New(cfg.Document, file.WithLogger(logger))
	doc, err := src.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s not found, create it with 'blox new'", cfg.Document)
	}
	if err != nil {
		return nil, err
	}

	base := []blox.Option{
		blox.WithLogger(logger),
		blox.WithDocument(doc),
		blox.WithMaxDepth(cfg.Render.GetMaxDepth()),
		blox.WithCampaign(cfg.Campaign),
	}
	ed, err := blox.New(append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	return &workspace{cfg: cfg, logger: logger, source: src, editor: ed}, nil
}

// persistChanges writes the document back to its file after every edit.
// Selection changes are not persisted.
func (ws *workspace) persistChanges() func() {
	return ws.editor.Subscribe(func(ev domain.Event) {
		if ev.Type == domain.EventSelectionChanged {
			return
		}
		if err := ws.source.Save(ws.editor.Document()); err != nil {
			ws.logger.Error("failed to save document", "path", ws.source.Path, "error", err)
		}
	})
}

// output returns the -o target or the command's stdout.
func output(cmd *cobra.Command) (io.Writer, func() error, error) {
	path, _ := cmd.Flags().GetString("output")
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

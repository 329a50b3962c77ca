package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sanonone/kektorgraph/pkg/config"
	"github.com/sanonone/kektorgraph/pkg/engine"
)

// app carries the state shared by every subcommand.
type app struct {
	configPath string
	logLevel   string
	logFormat  string
	workers    int
	compress   string
	h2, h3, hs int

	cfg  config.Config
	opts engine.Options
}

// Execute runs the root command with signal handling.
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "kektorgraph",
		Short: "Subgraph candidate filtering with monotone graph features",
		Long: `kektorgraph narrows the graphs of a labeled graph database down to
the ones that may contain a query graph. Every graph is turned into a bit
vector over a feature dictionary; a database graph is a candidate when its
vector sets every bit the query sets. The filter never drops a true match.

Batch workflow:
  kektorgraph identify db.txt features.txt
  kektorgraph convert  db.txt features.txt db.kgm
  kektorgraph convert  queries.txt features.txt queries.kgm
  kektorgraph match    db.kgm queries.kgm results.txt`,
		PersistentPreRunE: a.setup,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&a.logFormat, "log-format", "", "log format: text, json")
	pf.IntVarP(&a.workers, "workers", "w", 0, "parallel workers (0 = one per physical core)")
	pf.StringVar(&a.compress, "compression", "", "matrix file compression: none, zstd")
	pf.IntVar(&a.h2, "h2", 0, "wedge hash buckets")
	pf.IntVar(&a.h3, "h3", 0, "path-3 hash buckets")
	pf.IntVar(&a.hs, "hs", 0, "star hash buckets")

	cmd.AddCommand(
		a.identifyCmd(),
		a.convertCmd(),
		a.matchCmd(),
		a.dedupCmd(),
		a.serveCmd(),
		a.mcpCmd(),
	)
	return cmd
}

// setup loads the configuration, applies flag overrides and installs the
// default logger.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = a.logFormat
	}
	if flags.Changed("workers") {
		cfg.Workers = a.workers
	}
	if flags.Changed("compression") {
		cfg.Compression = a.compress
	}
	if flags.Changed("h2") {
		cfg.Buckets.H2 = a.h2
	}
	if flags.Changed("h3") {
		cfg.Buckets.H3 = a.h3
	}
	if flags.Changed("hs") {
		cfg.Buckets.HS = a.hs
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	slog.SetDefault(newLogger(cfg.Log))

	opts, err := engine.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.opts = opts
	return nil
}

// newLogger writes to stderr so stdout stays free for the MCP transport.
func newLogger(c config.LogConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	hopts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, hopts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, hopts))
}

// loadIndex opens the persisted index when both files exist, and otherwise
// builds one from the database file, saving it when paths are configured.
func (a *app) loadIndex(ctx context.Context) (*engine.Index, error) {
	sc := a.cfg.Server
	if sc.DictionaryPath != "" && sc.MatrixPath != "" && exists(sc.DictionaryPath) && exists(sc.MatrixPath) {
		slog.Info("Opening persisted index", "dictionary", sc.DictionaryPath, "matrix", sc.MatrixPath)
		return engine.OpenIndex(sc.DictionaryPath, sc.MatrixPath, a.opts)
	}
	if sc.DatabasePath == "" {
		return nil, engine.ErrNoIndexSource
	}

	slog.Info("Building index", "database", sc.DatabasePath)
	idx, err := engine.NewIndexFromFile(ctx, sc.DatabasePath, a.opts)
	if err != nil {
		return nil, err
	}
	if sc.DictionaryPath != "" && sc.MatrixPath != "" {
		if err := idx.Save(sc.DictionaryPath, sc.MatrixPath); err != nil {
			return nil, fmt.Errorf("failed to save index: %w", err)
		}
	}
	return idx, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

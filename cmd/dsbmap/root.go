package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dshills/dsbmap/internal/annotation"
	"github.com/dshills/dsbmap/internal/config"
	"github.com/dshills/dsbmap/internal/logging"
	"github.com/dshills/dsbmap/internal/lookup"
	"github.com/dshills/dsbmap/internal/mcp"
	"github.com/dshills/dsbmap/internal/storage"
)

// globalFlags are shared by every subcommand
type globalFlags struct {
	configPath string
	dbPath     string
	logLevel   string
	offline    bool
}

// app holds what a subcommand needs after configuration is resolved
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	a := &app{}

	root := &cobra.Command{
		Use:   "dsbmap",
		Short: "Disulfide bond and membrane topology maps for protein records",
		Long: `dsbmap decodes membrane topology codes, classifies disulfide bonds by
domain, ranks nested bonds and lays out protein maps. It keeps a local
catalog of raw records, completes topology-only entries from UniProt and
serves everything over MCP on stdio.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(flags, cmd.ErrOrStderr())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "path to YAML config file (default $"+config.EnvConfigPath+")")
	pf.StringVar(&flags.dbPath, "db", "", "catalog database path (overrides config)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVar(&flags.offline, "offline", false, "disable UniProt lookups")

	root.AddCommand(
		newServeCmd(a),
		newImportCmd(a),
		newShowCmd(a),
		newLayoutCmd(a),
		newDecodeCmd(a),
		newSearchCmd(a),
		newListCmd(a),
		newDeleteCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) init(flags *globalFlags, stderr io.Writer) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	if flags.dbPath != "" {
		cfg.Database.Path = flags.dbPath
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.offline {
		cfg.UniProt.Enabled = false
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, stderr)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

// openStorage opens the catalog, creating its directory on first use
func (a *app) openStorage() (*storage.SQLiteStorage, error) {
	if err := os.MkdirAll(filepath.Dir(a.cfg.Database.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	store, err := storage.NewSQLiteStorage(a.cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	return store, nil
}

func (a *app) buildOptions() annotation.Options {
	return annotation.Options{StrictPartition: a.cfg.Decoder.StrictPartition}
}

func (a *app) lookupService(store storage.Storage) *lookup.Service {
	return lookup.NewService(store, mcp.NewFetcher(a.cfg, a.logger), a.buildOptions(), a.logger)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

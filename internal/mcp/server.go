package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/dsbmap/internal/annotation"
	"github.com/dshills/dsbmap/internal/config"
	"github.com/dshills/dsbmap/internal/importer"
	"github.com/dshills/dsbmap/internal/layout"
	"github.com/dshills/dsbmap/internal/logging"
	"github.com/dshills/dsbmap/internal/lookup"
	"github.com/dshills/dsbmap/internal/storage"
	"github.com/dshills/dsbmap/internal/uniprot"
)

const (
	// ServerName is the MCP server name
	ServerName = "dsbmap"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	storage  storage.Storage
	importer *importer.Importer
	lookup   *lookup.Service
	cfg      *config.Config
	logger   *slog.Logger
}

// NewServer opens the catalog named in cfg and creates a new MCP server
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	store, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	return newServer(store, NewFetcher(cfg, logger), cfg, logger), nil
}

// NewFetcher returns the UniProt client configured by cfg, or nil when
// remote lookups are disabled
func NewFetcher(cfg *config.Config, logger *slog.Logger) uniprot.Fetcher {
	if !cfg.UniProt.Enabled {
		return nil
	}
	retry := uniprot.DefaultRetryConfig()
	if cfg.UniProt.MaxRetries > 0 {
		retry.MaxRetries = cfg.UniProt.MaxRetries
	}
	return uniprot.NewClient(uniprot.Config{
		BaseURL:   cfg.UniProt.BaseURL,
		Timeout:   cfg.UniProt.Timeout,
		CacheSize: cfg.UniProt.CacheSize,
		Retry:     retry,
		Logger:    logger,
	})
}

func newServer(store storage.Storage, fetcher uniprot.Fetcher, cfg *config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}

	s := &Server{
		mcp:      server.NewMCPServer(ServerName, ServerVersion),
		storage:  store,
		importer: importer.New(store, logger),
		lookup:   lookup.NewService(store, fetcher, buildOptions(cfg), logger),
		cfg:      cfg,
		logger:   logger,
	}
	s.registerTools()
	return s
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.storage.Close() }()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(importRecordsTool(), s.handleImportRecords)
	s.mcp.AddTool(getAnnotationTool(), s.handleGetAnnotation)
	s.mcp.AddTool(decodeTopologyTool(), s.handleDecodeTopology)
	s.mcp.AddTool(rankBondsTool(), s.handleRankBonds)
	s.mcp.AddTool(layoutRecordTool(), s.handleLayoutRecord)
	s.mcp.AddTool(searchRecordsTool(), s.handleSearchRecords)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}

func buildOptions(cfg *config.Config) annotation.Options {
	return annotation.Options{StrictPartition: cfg.Decoder.StrictPartition}
}

// layoutOptions returns the scene defaults from the layout config
func (s *Server) layoutOptions() layout.Options {
	opts := layout.DefaultOptions()
	opts.Width = s.cfg.Layout.Width
	opts.Height = s.cfg.Layout.Height
	opts.Scale = s.cfg.Layout.Scale
	opts.BondLength = s.cfg.Layout.BondLength
	return opts
}

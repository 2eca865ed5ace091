package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/dsbmap/internal/bonds"
	"github.com/dshills/dsbmap/internal/catalog"
	"github.com/dshills/dsbmap/internal/importer"
	"github.com/dshills/dsbmap/internal/layout"
	"github.com/dshills/dsbmap/internal/storage"
	"github.com/dshills/dsbmap/internal/topology"
	"github.com/dshills/dsbmap/internal/viewport"
	"github.com/dshills/dsbmap/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams    = -32602 // Invalid method parameters
	ErrorCodeInternalError    = -32603 // Internal JSON-RPC error
	ErrorCodeLookup           = -32001 // Record could not be obtained
	ErrorCodeImportInProgress = -32002 // Another import is already running
	ErrorCodeEmptyQuery       = -32004 // Query parameter is empty
	ErrorCodeFormat           = -32010 // Raw record or topology code is malformed
	ErrorCodeRange            = -32011 // Degenerate window
)

// handleImportRecords handles the import_records tool invocation
func (s *Server) handleImportRecords(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}
	if err := validatePath(path); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	layoutName := getStringDefault(args, "layout", string(catalog.LayoutAuto))
	switch catalog.Layout(layoutName) {
	case catalog.LayoutAuto, catalog.LayoutDataset, catalog.LayoutTopology:
	default:
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid layout", map[string]interface{}{
			"param":   "layout",
			"value":   layoutName,
			"allowed": []string{"auto", "dataset", "topology"},
		})
	}

	stats, err := s.importer.Import(ctx, path, &importer.Config{
		Workers:   s.cfg.Import.Workers,
		BatchSize: s.cfg.Import.BatchSize,
		Layout:    catalog.Layout(layoutName),
		Force:     getBoolDefault(args, "force", false),
		Build:     buildOptions(s.cfg),
	})
	if errors.Is(err, importer.ErrImportInProgress) {
		return nil, newMCPError(ErrorCodeImportInProgress, err.Error(), nil)
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "import failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"run_id":       stats.RunID,
		"layout":       stats.Layout,
		"rows_read":    stats.RowsRead,
		"rows_stored":  stats.RowsStored,
		"rows_skipped": stats.RowsSkipped,
		"rows_invalid": stats.RowsInvalid,
		"duration_ms":  stats.Duration.Milliseconds(),
	}
	if len(stats.ErrorMessages) > 0 {
		// Include first few errors
		errorCount := len(stats.ErrorMessages)
		if errorCount > 5 {
			response["errors"] = stats.ErrorMessages[:5]
			response["error_count"] = errorCount
		} else {
			response["errors"] = stats.ErrorMessages
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetAnnotation handles the get_annotation tool invocation
func (s *Server) handleGetAnnotation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	id, err := requireString(args, "id")
	if err != nil {
		return nil, err
	}

	res, err := s.lookup.Get(ctx, id)
	if err != nil {
		return nil, toMCPError(err)
	}

	response := map[string]interface{}{
		"annotation": res.Annotation,
		"source":     res.Record.Source,
	}
	if res.Record.OldLength > 0 || res.Record.OldTopology != "" {
		response["previous"] = map[string]interface{}{
			"length":        res.Record.OldLength,
			"topology_code": res.Record.OldTopology,
		}
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleDecodeTopology handles the decode_topology tool invocation
func (s *Server) handleDecodeTopology(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	code, err := requireString(args, "code")
	if err != nil {
		return nil, err
	}
	length := getIntDefault(args, "length", 0)
	strict := getBoolDefault(args, "strict", s.cfg.Decoder.StrictPartition)

	outside, inside, err := topology.Decode(code, length)
	if err != nil {
		return nil, toMCPError(err)
	}

	response := map[string]interface{}{
		"length":       length,
		"outside":      outside,
		"inside":       inside,
		"partition_ok": true,
	}
	if perr := topology.CheckPartition(outside, inside, length); perr != nil {
		if strict {
			return nil, toMCPError(perr)
		}
		response["partition_ok"] = false
		response["partition_error"] = perr.Error()
	}
	if normalized, err := topology.Encode(topology.Merge(outside, inside), length); err == nil {
		response["normalized"] = normalized
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleRankBonds handles the rank_bonds tool invocation
func (s *Server) handleRankBonds(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	var all []types.Bond
	if id := getStringDefault(args, "id", ""); id != "" {
		res, err := s.lookup.Get(ctx, id)
		if err != nil {
			return nil, toMCPError(err)
		}
		all = res.Annotation.Bonds()
	} else {
		raw, err := getStringSlice(args, "bonds")
		if err != nil {
			return nil, err
		}
		if all, err = bonds.ParseBonds(raw); err != nil {
			return nil, toMCPError(err)
		}
	}

	ranks, err := bonds.Rank(all)
	if err != nil {
		return nil, toMCPError(err)
	}

	ranked := make([]map[string]interface{}, len(all))
	for i, b := range all {
		ranked[i] = map[string]interface{}{
			"low":  b.Low,
			"high": b.High,
			"rank": ranks[i],
		}
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{"bonds": ranked})), nil
}

// handleLayoutRecord handles the layout_record tool invocation
func (s *Server) handleLayoutRecord(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	id, err := requireString(args, "id")
	if err != nil {
		return nil, err
	}

	opts := s.layoutOptions()
	opts.Width = getFloatDefault(args, "width", opts.Width)
	opts.Scale = getFloatDefault(args, "scale", opts.Scale)
	opts.FullScale = getBoolDefault(args, "full_scale", false)

	_, hasStart := args["window_start"]
	_, hasEnd := args["window_end"]
	if hasStart != hasEnd {
		return nil, newMCPError(ErrorCodeInvalidParams, "window_start and window_end must be given together", nil)
	}
	if hasStart {
		opts.Window = &viewport.Window{
			Start: types.Position(getIntDefault(args, "window_start", 0)),
			End:   types.Position(getIntDefault(args, "window_end", 0)),
		}
	}

	hide, err := getStringSlice(args, "hide")
	if err != nil {
		return nil, err
	}
	if len(hide) > 0 {
		opts.Hidden = make(map[layout.Category]bool, len(hide))
		for _, name := range hide {
			c, err := layout.ParseCategory(name)
			if err != nil {
				return nil, newMCPError(ErrorCodeInvalidParams, err.Error(), map[string]interface{}{
					"param": "hide",
					"value": name,
				})
			}
			opts.Hidden[c] = true
		}
	}

	res, err := s.lookup.Get(ctx, id)
	if err != nil {
		return nil, toMCPError(err)
	}

	scene, err := layout.Compose(res.Annotation, opts)
	if errors.Is(err, viewport.ErrInvalidGeometry) {
		return nil, newMCPError(ErrorCodeInvalidParams, err.Error(), nil)
	}
	if err != nil {
		return nil, toMCPError(err)
	}

	return mcp.NewToolResultText(formatJSON(scene)), nil
}

// handleSearchRecords handles the search_records tool invocation
func (s *Server) handleSearchRecords(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || strings.TrimSpace(query) == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", 10)
	if limit < 1 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	hits, err := s.lookup.Search(ctx, query, limit)
	if errors.Is(err, storage.ErrEmptyQuery) {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query contains no searchable terms", map[string]interface{}{
			"param": "query",
			"value": query,
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	results := make([]map[string]interface{}, len(hits))
	for i, h := range hits {
		results[i] = map[string]interface{}{
			"accession":   h.Accession,
			"entry_name":  h.EntryName,
			"description": h.Description,
			"length":      h.Length,
			"source":      h.Source,
			"relevance":   storage.Relevance(h.Score),
		}
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"query":   query,
		"count":   len(results),
		"results": results,
	})), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := s.storage.GetStatus(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"statistics": map[string]interface{}{
			"records_count":       status.RecordsCount,
			"complete_count":      status.CompleteCount,
			"topology_only_count": status.TopologyOnlyCount,
			"uniprot_count":       status.UniProtCount,
			"database_size_mb":    fmt.Sprintf("%.2f", status.DatabaseSizeMB),
		},
		"schema_version": status.SchemaVersion,
		"build_mode":     status.BuildMode,
		"import_running": s.importer.Running(),
		"health": map[string]interface{}{
			"database_accessible": status.Health.DatabaseAccessible,
			"fts_index_built":     status.Health.FTSIndexBuilt,
		},
	}
	if run := status.LastImport; run != nil {
		last := map[string]interface{}{
			"run_id":       run.ID,
			"source_path":  run.SourcePath,
			"layout":       run.Layout,
			"status":       run.Status,
			"rows_read":    run.RowsRead,
			"rows_stored":  run.RowsStored,
			"rows_skipped": run.RowsSkipped,
			"rows_invalid": run.RowsInvalid,
			"started_at":   run.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if run.CompletedAt != nil {
			last["completed_at"] = run.CompletedAt.Format("2006-01-02T15:04:05Z07:00")
		}
		response["last_import"] = last
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// toMCPError maps domain errors onto MCP error codes
func toMCPError(err error) error {
	var formatErr *types.FormatError
	if errors.As(err, &formatErr) {
		data := map[string]interface{}{"field": formatErr.Field}
		if formatErr.Index >= 0 {
			data["index"] = formatErr.Index
		}
		if formatErr.Offset >= 0 {
			data["offset"] = formatErr.Offset
		}
		return newMCPError(ErrorCodeFormat, err.Error(), data)
	}

	var rangeErr *types.RangeError
	if errors.As(err, &rangeErr) {
		return newMCPError(ErrorCodeRange, err.Error(), map[string]interface{}{
			"start":  rangeErr.Start,
			"end":    rangeErr.End,
			"length": rangeErr.Length,
		})
	}

	var lookupErr *types.LookupError
	if errors.As(err, &lookupErr) {
		return newMCPError(ErrorCodeLookup, err.Error(), map[string]interface{}{
			"id":        lookupErr.ID,
			"not_found": errors.Is(err, types.ErrNotFound),
		})
	}

	return newMCPError(ErrorCodeInternalError, "internal error", map[string]interface{}{
		"error": err.Error(),
	})
}

// validatePath checks that path is an absolute, readable regular file
func validatePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}

	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}
	if info.IsDir() {
		return ErrIsDirectory
	}

	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()

	return nil
}

// formatJSON formats a value as indented JSON
func formatJSON(data interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// requireString extracts a non-empty string parameter
func requireString(args map[string]interface{}, key string) (string, error) {
	val, ok := args[key].(string)
	if !ok || strings.TrimSpace(val) == "" {
		return "", newMCPError(ErrorCodeInvalidParams, key+" parameter is required", map[string]interface{}{
			"param":  key,
			"reason": "missing or empty",
		})
	}
	return val, nil
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getFloatDefault extracts a number parameter with a default value
func getFloatDefault(args map[string]interface{}, key string, defaultValue float64) float64 {
	if val, ok := args[key].(float64); ok {
		return val
	}
	if val, ok := args[key].(int); ok {
		return float64(val)
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// getStringSlice extracts an optional array of strings
func getStringSlice(args map[string]interface{}, key string) ([]string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}

	var items []interface{}
	switch v := raw.(type) {
	case []interface{}:
		items = v
	case []string:
		return v, nil
	default:
		return nil, newMCPError(ErrorCodeInvalidParams, key+" must be an array of strings", map[string]interface{}{
			"param": key,
		})
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		str, ok := item.(string)
		if !ok {
			return nil, newMCPError(ErrorCodeInvalidParams, key+" must be an array of strings", map[string]interface{}{
				"param": key,
				"value": item,
			})
		}
		out = append(out, str)
	}
	return out, nil
}

// Validation helpers

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrIsDirectory     = errors.New("path is a directory")
)

// Package mcp implements the Model Context Protocol (MCP) server for dsbmap.
//
// The server exposes seven tools over stdio:
//   - import_records: Load a catalog CSV into the record store
//   - get_annotation: Build the annotation of one protein
//   - decode_topology: Decode a topology code into domain intervals
//   - rank_bonds: Compute bond stacking ranks
//   - layout_record: Compose drawing coordinates for a protein
//   - search_records: Full-text search over the catalog
//   - get_status: Catalog statistics and health
//
// # Basic Usage
//
// The server is started via the serve command and speaks JSON-RPC 2.0 on
// stdin and stdout:
//
//	dsbmap serve
//
// Logs go to stderr; stdout is reserved for the protocol.
//
// # Tool: get_annotation
//
//	Request:
//	{
//	  "name": "get_annotation",
//	  "arguments": {"id": "P06213"}
//	}
//
//	Response:
//	{
//	  "annotation": {
//	    "id": "P06213",
//	    "length": 1382,
//	    "outside_domains": [{"start": 0, "end": 956, "side": "outside"}],
//	    "disulfide_bonds": [{"low": 35, "high": 53}],
//	    ...
//	  },
//	  "source": "dataset"
//	}
//
// Topology-only records are completed from UniProt on first request when
// remote lookups are enabled; the completed record is stored so later calls
// stay local.
//
// # Tool: layout_record
//
// Coordinates are returned for the full spine and, when window_start and
// window_end are given, for the window spine. Hidden legend categories are
// left out of both views; their legend rows keep their counts.
//
// # MCP Client Configuration
//
//	{
//	  "mcpServers": {
//	    "dsbmap": {
//	      "command": "/usr/local/bin/dsbmap",
//	      "args": ["serve"],
//	      "env": {"DSBMAP_DB_PATH": "/data/catalog.db"}
//	    }
//	  }
//	}
//
// # Error Handling
//
// Failures are returned as tool errors carrying a JSON body:
//
//	{"code": -32010, "message": "invalid topology code", "data": {"field": "topologyCode", "offset": 4}}
//
// Error codes:
//   - -32602: Invalid params
//   - -32603: Internal error
//   - -32001: Record not found
//   - -32002: Import in progress
//   - -32004: Empty search query
//   - -32010: Malformed record or topology code
//   - -32011: Degenerate or out of range window
package mcp

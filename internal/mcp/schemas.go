package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// importRecordsTool returns the tool definition for import_records
func importRecordsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "import_records",
		Description: "Import a protein catalog CSV (dataset or topology-only layout) into the record store",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the catalog CSV file",
				},
				"layout": map[string]interface{}{
					"type":        "string",
					"description": "Catalog layout; auto detects it from the header",
					"enum":        []string{"auto", "dataset", "topology"},
					"default":     "auto",
				},
				"force": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, rewrite rows even when their content is unchanged",
					"default":     false,
				},
			},
			Required: []string{"path"},
		},
	}
}

// getAnnotationTool returns the tool definition for get_annotation
func getAnnotationTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_annotation",
		Description: "Build the annotation of a protein: domains, disulfide bonds and their domain class, glycosylation, free sequons and free cysteines",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "UniProt accession, e.g. P06213",
				},
			},
			Required: []string{"id"},
		},
	}
}

// decodeTopologyTool returns the tool definition for decode_topology
func decodeTopologyTool() mcp.Tool {
	return mcp.Tool{
		Name:        "decode_topology",
		Description: "Decode a linear topology code such as 0o10-10i into inside and outside domain intervals",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"code": map[string]interface{}{
					"type":        "string",
					"description": "Topology code",
				},
				"length": map[string]interface{}{
					"type":        "integer",
					"description": "Sequence length",
					"minimum":     1,
				},
				"strict": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, fail unless the domains tile the whole sequence",
					"default":     false,
				},
			},
			Required: []string{"code", "length"},
		},
	}
}

// rankBondsTool returns the tool definition for rank_bonds
func rankBondsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "rank_bonds",
		Description: "Compute the vertical stacking rank of disulfide bonds, either for a stored protein or for an explicit bond list",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "UniProt accession whose bonds are ranked",
				},
				"bonds": map[string]interface{}{
					"type":        "array",
					"description": "Bonds as \"low high\" strings; used when id is not given",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
			},
		},
	}
}

// layoutRecordTool returns the tool definition for layout_record
func layoutRecordTool() mcp.Tool {
	return mcp.Tool{
		Name:        "layout_record",
		Description: "Compose drawing coordinates for a protein on the full spine and an optional window",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "UniProt accession",
				},
				"width": map[string]interface{}{
					"type":        "number",
					"description": "Viewport width",
					"minimum":     1,
				},
				"scale": map[string]interface{}{
					"type":        "number",
					"description": "Full spine stretch factor",
					"minimum":     0.1,
				},
				"full_scale": map[string]interface{}{
					"type":        "boolean",
					"description": "Draw one unit per residue; only applied to sequences of 3000 residues or more",
					"default":     false,
				},
				"window_start": map[string]interface{}{
					"type":        "integer",
					"description": "Window start position; requires window_end",
				},
				"window_end": map[string]interface{}{
					"type":        "integer",
					"description": "Window end position",
				},
				"hide": map[string]interface{}{
					"type":        "array",
					"description": "Legend categories to hide",
					"items": map[string]interface{}{
						"type": "string",
						"enum": []string{"outside", "inside", "glycosylation", "disulfide", "free_sequons", "free_cysteines"},
					},
				},
			},
			Required: []string{"id"},
		},
	}
}

// searchRecordsTool returns the tool definition for search_records
func searchRecordsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_records",
		Description: "Full-text search over accession, entry name and protein name",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search terms; each term matches as a prefix",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
			},
			Required: []string{"query"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report catalog statistics, the last import run and database health",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

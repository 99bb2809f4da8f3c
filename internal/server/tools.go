package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file (PNG, JPEG or GIF)",
	}
}

func reloadProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "boolean",
		"description": "Decode the file again instead of using the cached image (default: false)",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name: "plate_recognize",
			Description: "Find and read the Brazilian license plate in a photograph. " +
				"Returns the accepted plate (text, format, confidence, bounding box, detection method), " +
				"the validated candidates and the progress log of the run.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty(),
					"reload": reloadProperty(),
					"debug_dir": map[string]interface{}{
						"type":        "string",
						"description": "Optional directory receiving every intermediate image as PNG",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name: "plate_candidates",
			Description: "List the plate-shaped regions of a photograph without running OCR. " +
				"Candidates are deduplicated and ordered by ascending area.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty(),
					"reload": reloadProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name: "plate_normalize",
			Description: "Clean raw OCR text into a plate string. Strips BRASIL/MERCOSUL/BR, " +
				"fixes letter/digit confusions by position, and reports the format and pattern confidence.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Raw text as read by an OCR engine",
					},
				},
				"required": []string{"text"},
			},
		},
		{
			Name: "plate_annotate",
			Description: "Recognize the plate and return the photograph with candidates drawn in orange " +
				"and the accepted plate in green, as base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty(),
					"reload": reloadProperty(),
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional file to also write the annotated PNG to",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "plate_backends",
			Description: "Report which OCR backends are available and their versions.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}

package mcp

import "github.com/ironsheep/note-extract/internal/imaging"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name: "image_extract_text",
			Description: "Extract all readable text from one or more images and return it as structured Markdown. " +
				"Images are processed in order, one at a time; a file that fails is reported and skipped. " +
				"Supported extensions: " + extensionList() + ".",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"paths": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"minItems":    1,
						"description": "Absolute paths to the image files, in the order results should appear",
					},
				},
				"required": []string{"paths"},
			},
		},
		{
			Name:        "image_normalize",
			Description: "Normalize an image the way it is prepared for extraction (RGB, at most 2000px per side, JPEG) and report the result. No network call is made.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_inspect",
			Description: "Get the width, height, format and alpha channel of an image file without decoding the pixels.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
	}
}

func extensionList() string {
	s := ""
	for i, ext := range imaging.SupportedExtensions {
		if i > 0 {
			s += ", "
		}
		s += "." + ext
	}
	return s
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

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ironsheep/note-extract/internal/batch"
	"github.com/ironsheep/note-extract/internal/imaging"
	"github.com/ironsheep/note-extract/internal/render"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_extract_text").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`

	// Meta carries the optional progress token.
	Meta *RequestMeta `json:"_meta,omitempty"`
}

// RequestMeta is the _meta object of a request.
type RequestMeta struct {
	ProgressToken interface{} `json:"progressToken,omitempty"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	var token interface{}
	if params.Meta != nil {
		token = params.Meta.ProgressToken
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments, token)
	if err != nil {
		var argErr *argumentError
		if errors.As(err, &argErr) {
			return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage, token interface{}) (interface{}, error) {
	switch name {
	case "image_extract_text":
		return s.handleExtractText(ctx, args, token)
	case "image_normalize":
		return s.handleNormalize(args)
	case "image_inspect":
		return s.handleInspect(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// argumentError marks tool arguments that are missing or malformed.
type argumentError struct {
	msg string
}

func (e *argumentError) Error() string { return e.msg }

func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return &argumentError{msg: "missing arguments"}
	}
	if err := json.Unmarshal(args, v); err != nil {
		return &argumentError{msg: "invalid arguments: " + err.Error()}
	}
	return nil
}

// === Extraction ===

type extractTextArgs struct {
	Paths []string `json:"paths"`
}

// FileError describes a file that produced no text.
type FileError struct {
	Path    string `json:"path"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ExtractTextResult is the result of image_extract_text.
type ExtractTextResult struct {
	Markdown  string      `json:"markdown"`
	Files     int         `json:"files"`
	Extracted int         `json:"extracted"`
	Errors    []FileError `json:"errors,omitempty"`
}

func (s *Server) handleExtractText(ctx context.Context, args json.RawMessage, token interface{}) (interface{}, error) {
	var a extractTextArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if len(a.Paths) == 0 {
		return nil, &argumentError{msg: "paths must contain at least one file"}
	}

	result := &ExtractTextResult{Files: len(a.Paths)}

	// Files that cannot be read never reach the runner.
	var uploads []batch.Upload
	var paths []string
	for _, p := range a.Paths {
		if !imaging.SupportedExtension(p) {
			result.Errors = append(result.Errors, FileError{Path: p, Kind: "unsupported", Message: "unsupported file type"})
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			result.Errors = append(result.Errors, FileError{Path: p, Kind: "read", Message: err.Error()})
			continue
		}
		uploads = append(uploads, batch.Upload{
			Filename:  filepath.Base(p),
			MediaType: imaging.MediaTypeFor(p),
			Data:      data,
		})
		paths = append(paths, p)
	}

	var rep batch.Reporter = batch.NopReporter{}
	if token != nil {
		rep = &progressNotifier{server: s, token: token}
	}

	out := s.runner.Run(ctx, uploads, rep)
	for _, f := range out.Failures {
		result.Errors = append(result.Errors, FileError{Path: paths[f.Index], Kind: f.Kind(), Message: f.Message()})
	}

	result.Extracted = len(out.Results)
	result.Markdown = render.Markdown(out.Results)
	return result, nil
}

// progressNotifier forwards batch progress as notifications/progress.
type progressNotifier struct {
	batch.NopReporter
	server *Server
	token  interface{}
}

func (p *progressNotifier) Progress(pr batch.Progress) {
	p.server.notify("notifications/progress", map[string]interface{}{
		"progressToken": p.token,
		"progress":      pr.Done,
		"total":         pr.Total,
	})
}

// === Normalization and Inspection ===

type pathArgs struct {
	Path string `json:"path"`
}

// NormalizeResult is the result of image_normalize.
type NormalizeResult struct {
	Path         string `json:"path"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Bytes        int    `json:"bytes"`
	MediaType    string `json:"media_type"`
	SourceFormat string `json:"source_format"`
}

func (s *Server) handleNormalize(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(a.Path)
	if err != nil {
		return nil, err
	}
	p, err := imaging.Normalize(data)
	if err != nil {
		return nil, err
	}
	return &NormalizeResult{
		Path:         a.Path,
		Width:        p.Width,
		Height:       p.Height,
		Bytes:        len(p.Data),
		MediaType:    p.MediaType,
		SourceFormat: p.SourceFormat,
	}, nil
}

func (s *Server) handleInspect(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.Inspect(data)
}

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"

	"github.com/ironsheep/plate-tools-mcp/internal/detection"
	"github.com/ironsheep/plate-tools-mcp/internal/imaging"
	"github.com/ironsheep/plate-tools-mcp/internal/ocr"
	"github.com/ironsheep/plate-tools-mcp/internal/pipeline"
	"github.com/ironsheep/plate-tools-mcp/internal/plate"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "plate_recognize").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
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

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
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
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "plate_recognize":
		return s.handlePlateRecognize(ctx, args)
	case "plate_candidates":
		return s.handlePlateCandidates(args)
	case "plate_normalize":
		return s.handlePlateNormalize(args)
	case "plate_annotate":
		return s.handlePlateAnnotate(ctx, args)
	case "plate_backends":
		return s.handlePlateBackends()
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
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

type pathArgs struct {
	Path   string `json:"path"`
	Reload bool   `json:"reload"`
}

func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// loadImage returns the cached image at path. With reload set the file is
// decoded again, picking up changes made since the first call.
func (s *Server) loadImage(path string, reload bool) (image.Image, error) {
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if reload {
		s.cache.Evict(path)
	}
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, &pipeline.LoadError{Path: path, Err: err}
	}
	return img, nil
}

// recognize runs the pipeline on the image at path and collects the
// progress log.
func (s *Server) recognize(ctx context.Context, path string, reload bool) (*pipeline.Result, []string, error) {
	img, err := s.loadImage(path, reload)
	if err != nil {
		return nil, nil, err
	}

	var progress []string
	p := s.pipeline.WithProgress(func(msg string) { progress = append(progress, msg) })
	res, err := p.ProcessImage(ctx, img)
	if err != nil {
		return nil, progress, err
	}
	res.Path = path
	return res, progress, nil
}

// === Recognition Handlers ===

type plateRecognizeArgs struct {
	pathArgs
	DebugDir string `json:"debug_dir"`
}

type plateRecognizeResult struct {
	Plate       string           `json:"plate"`
	Summary     string           `json:"summary"`
	Result      *pipeline.Result `json:"result"`
	Progress    []string         `json:"progress"`
	DebugImages []string         `json:"debug_images,omitempty"`
}

func (s *Server) handlePlateRecognize(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a plateRecognizeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	res, progress, err := s.recognize(ctx, a.Path, a.Reload)
	if err != nil {
		return nil, err
	}

	out := &plateRecognizeResult{
		Plate:    res.Plate(),
		Summary:  res.Summary(),
		Result:   res,
		Progress: progress,
	}
	if a.DebugDir != "" {
		written, err := res.WriteDebugImages(a.DebugDir)
		if err != nil {
			return nil, err
		}
		out.DebugImages = written
	}
	return out, nil
}

type plateCandidatesResult struct {
	Path string `json:"path"`
	*pipeline.Detection
}

func (s *Server) handlePlateCandidates(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.loadImage(a.Path, a.Reload)
	if err != nil {
		return nil, err
	}
	det, err := s.pipeline.Detect(img)
	if err != nil {
		return nil, err
	}
	if det.Candidates == nil {
		det.Candidates = []detection.Candidate{}
	}
	return &plateCandidatesResult{Path: a.Path, Detection: det}, nil
}

// === Text Handlers ===

type plateNormalizeArgs struct {
	Text string `json:"text"`
}

type plateNormalizeResult struct {
	Input             string       `json:"input"`
	Extracted         string       `json:"extracted"`
	Normalized        string       `json:"normalized"`
	Format            plate.Format `json:"format"`
	PatternConfidence float64      `json:"pattern_confidence"`
}

func (s *Server) handlePlateNormalize(args json.RawMessage) (interface{}, error) {
	var a plateNormalizeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	normalized := plate.Normalize(a.Text)
	return &plateNormalizeResult{
		Input:             a.Text,
		Extracted:         plate.ExtractPlate(a.Text),
		Normalized:        normalized,
		Format:            plate.Classify(normalized),
		PatternConfidence: plate.PatternConfidence(normalized),
	}, nil
}

// === Output Handlers ===

type plateAnnotateArgs struct {
	pathArgs
	OutputPath string `json:"output_path"`
}

type plateAnnotateResult struct {
	Plate      string                `json:"plate"`
	OutputPath string                `json:"output_path,omitempty"`
	Image      *imaging.EncodedImage `json:"image"`
}

func (s *Server) handlePlateAnnotate(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a plateAnnotateArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	res, _, err := s.recognize(ctx, a.Path, a.Reload)
	if err != nil {
		return nil, err
	}
	annotated, err := res.Annotate()
	if err != nil {
		return nil, err
	}
	if a.OutputPath != "" {
		if err := imaging.Save(annotated, a.OutputPath); err != nil {
			return nil, err
		}
	}
	encoded, err := imaging.EncodePNG(annotated)
	if err != nil {
		return nil, err
	}
	return &plateAnnotateResult{Plate: res.Plate(), OutputPath: a.OutputPath, Image: encoded}, nil
}

type plateBackendsResult struct {
	Primary   ocr.Info `json:"primary"`
	Secondary ocr.Info `json:"secondary"`
}

func (s *Server) handlePlateBackends() (interface{}, error) {
	r := s.pipeline.Recognizer()
	return &plateBackendsResult{
		Primary:   ocr.Describe(r.Primary),
		Secondary: ocr.Describe(r.Secondary),
	}, nil
}

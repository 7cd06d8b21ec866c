package docpipe

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/perfector/docmodel"
	"github.com/hazyhaar/perfector/kit"
)

// RegisterMCP registers the import/export tools on an MCP server so agent
// tooling can drive the pipeline directly.
func (p *Pipeline) RegisterMCP(srv *mcp.Server) {
	p.registerImportTool(srv)
	p.registerDetectTool(srv)
	p.registerExportTool(srv)
	p.registerFormatsTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// --- import ---

type importReq struct {
	Path string `json:"path"`
}

func (p *Pipeline) registerImportTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "perfector_import",
		Description: "Import a document file (txt, md, html, pdf, docx, doc, ppdoc) into the structured paper model.",
		InputSchema: inputSchema(map[string]any{
			"path": map[string]any{"type": "string", "description": "File path to import"},
		}, []string{"path"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*importReq)
		return p.Import(ctx, r.Path)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r importReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- detect ---

type detectReq struct {
	Path string `json:"path"`
}

func (p *Pipeline) registerDetectTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "perfector_detect",
		Description: "Detect the format of a document file from its extension.",
		InputSchema: inputSchema(map[string]any{
			"path": map[string]any{"type": "string", "description": "File path to detect"},
		}, []string{"path"}),
	}

	endpoint := func(_ context.Context, req any) (any, error) {
		r := req.(*detectReq)
		format, err := p.Detect(r.Path)
		if err != nil {
			return nil, err
		}
		return map[string]any{"format": string(format)}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r detectReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- export markdown ---

type exportReq struct {
	Document *docmodel.Document `json:"document"`
}

func (p *Pipeline) registerExportTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "perfector_export_markdown",
		Description: "Serialise a structured paper document to Markdown text.",
		InputSchema: inputSchema(map[string]any{
			"document": map[string]any{"type": "object", "description": "Structured document to serialise"},
		}, []string{"document"}),
	}

	endpoint := func(_ context.Context, req any) (any, error) {
		r := req.(*exportReq)
		return map[string]any{"markdown": p.ExportMarkdown(r.Document)}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r exportReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		if r.Document == nil {
			return nil, errMissingDocument
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- formats ---

func (p *Pipeline) registerFormatsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "perfector_formats",
		Description: "List all supported document formats.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(_ context.Context, _ any) (any, error) {
		return map[string]any{"formats": SupportedFormats()}, nil
	}

	decode := func(_ *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

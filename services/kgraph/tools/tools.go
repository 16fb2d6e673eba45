// Package tools implements the three query tools described in the external
// interfaces (get_item, get_uses, get_used_by), sharing the
// TypedParams/Tool/Result shape this codebase's CLI tool layer already
// uses for its graph-query tools, narrowed to the three this subsystem
// exposes.
package tools

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/h7lu/modkg/services/kgraph/graph"
	"github.com/h7lu/modkg/services/kgraph/query"
)

var tracer = otel.Tracer("github.com/h7lu/modkg/services/kgraph/tools")

// TypedParams is implemented by each tool's parameter struct.
type TypedParams interface {
	ToolName() string
}

// Result is the uniform tool response envelope. An unresolved-but-valid
// reference is not an error (§7): Success stays true and Message carries
// an explanatory hint, while Data still carries an empty-result payload.
type Result struct {
	ToolName string `json:"tool_name"`
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	Data     any    `json:"data"`
}

// Tool is implemented by each of the three query tools.
type Tool interface {
	Name() string
	Execute(ctx context.Context, params TypedParams) (*Result, error)
}

// GetItemParams resolves a single symbol reference to its identity and
// PageRank score. Full source retrieval is delegated to an external lexical
// store this repo does not implement, so TextStub is a one-line placeholder
// that names the symbol and the requested line count (MaxLines, at least 1).
type GetItemParams struct {
	Ref      string
	MaxLines int
}

func (p GetItemParams) ToolName() string { return "get_item" }

// GetItemOutput is get_item's response payload.
type GetItemOutput struct {
	SymbolID string  `json:"symbol_id"`
	IsXML    bool    `json:"is_xml"`
	Score    float64 `json:"pagerank_score"`
	Found    bool    `json:"found"`
	TextStub string  `json:"text_stub,omitempty"`
}

type getItemTool struct{ g *graph.Graph }

// NewGetItemTool constructs the get_item tool bound to g.
func NewGetItemTool(g *graph.Graph) Tool { return &getItemTool{g: g} }

func (t *getItemTool) Name() string { return "get_item" }

func (t *getItemTool) Execute(ctx context.Context, params TypedParams) (*Result, error) {
	p, ok := params.(GetItemParams)
	if !ok {
		return nil, fmt.Errorf("tools: get_item: unexpected params type %T", params)
	}
	_, span := tracer.Start(ctx, "get_item", trace.WithAttributes(attribute.String("ref", p.Ref)))
	defer span.End()

	id, ok := query.Resolve(t.g, p.Ref)
	if !ok {
		return &Result{
			ToolName: "get_item",
			Success:  true,
			Message:  fmt.Sprintf("no symbol resolves to %q; it may be misspelled, absent from this build, or not yet indexed", p.Ref),
			Data:     GetItemOutput{Found: false},
		}, nil
	}
	score := t.g.PageRank[id]
	return &Result{ToolName: "get_item", Success: true, Data: GetItemOutput{
		SymbolID: id,
		IsXML:    isXMLID(id),
		Score:    score,
		Found:    true,
		TextStub: sourceTextStub(id, p.MaxLines),
	}}, nil
}

// sourceTextStub stands in for the full source text a real lexical store
// would serve; this repo only ever indexes symbol identity and edges, never
// the underlying file bytes, so the stub says as much rather than guessing.
func sourceTextStub(id string, maxLines int) string {
	if maxLines <= 0 {
		maxLines = 1
	}
	return fmt.Sprintf("source text for %s is not stored by this index; fetch it from the lexical store (first %d lines requested)", id, maxLines)
}

// GetUsesParams asks what a symbol depends on.
type GetUsesParams struct {
	Ref        string
	KindFilter query.KindFilter
	Page       int
	PageSize   int
}

func (p GetUsesParams) ToolName() string { return "get_uses" }

// GetUsedByParams asks what depends on a symbol.
type GetUsedByParams struct {
	Ref        string
	KindFilter query.KindFilter
	Page       int
	PageSize   int
}

func (p GetUsedByParams) ToolName() string { return "get_used_by" }

// QueryOutput is the shared response shape for get_uses/get_used_by.
type QueryOutput struct {
	Results []query.Result `json:"results"`
	Total   int            `json:"total"`
	Page    int            `json:"page"`
}

type usesTool struct {
	g         *graph.Graph
	direction query.Direction
	name      string
}

// NewGetUsesTool constructs the get_uses tool bound to g.
func NewGetUsesTool(g *graph.Graph) Tool {
	return &usesTool{g: g, direction: query.Uses, name: "get_uses"}
}

// NewGetUsedByTool constructs the get_used_by tool bound to g.
func NewGetUsedByTool(g *graph.Graph) Tool {
	return &usesTool{g: g, direction: query.UsedBy, name: "get_used_by"}
}

func (t *usesTool) Name() string { return t.name }

func (t *usesTool) Execute(ctx context.Context, params TypedParams) (*Result, error) {
	ref, kindFilter, page, pageSize, err := unpackQueryParams(t.name, params)
	if err != nil {
		return nil, err
	}
	_, span := tracer.Start(ctx, t.name, trace.WithAttributes(attribute.String("ref", ref)))
	defer span.End()

	if _, ok := query.Resolve(t.g, ref); !ok {
		return &Result{
			ToolName: t.name,
			Success:  true,
			Message:  fmt.Sprintf("no symbol resolves to %q; it may be misspelled, absent from this build, or not yet indexed", ref),
			Data:     QueryOutput{Results: nil, Total: 0, Page: page},
		}, nil
	}

	results, total := query.Query(t.g, ref, t.direction, kindFilter, page, pageSize)
	return &Result{ToolName: t.name, Success: true, Data: QueryOutput{Results: results, Total: total, Page: page}}, nil
}

func unpackQueryParams(toolName string, params TypedParams) (ref string, kindFilter query.KindFilter, page, pageSize int, err error) {
	switch p := params.(type) {
	case GetUsesParams:
		ref, kindFilter, page, pageSize = p.Ref, p.KindFilter, p.Page, p.PageSize
	case GetUsedByParams:
		ref, kindFilter, page, pageSize = p.Ref, p.KindFilter, p.Page, p.PageSize
	default:
		return "", 0, 0, 0, fmt.Errorf("tools: %s: unexpected params type %T", toolName, params)
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	return ref, kindFilter, page, pageSize, nil
}

func isXMLID(id string) bool {
	return len(id) >= 4 && id[:4] == "xml:"
}

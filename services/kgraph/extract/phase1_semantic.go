package extract

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/h7lu/modkg/services/kgraph/chunk"
	"github.com/h7lu/modkg/services/kgraph/graph"
)

// extractSemantic is the tree-sitter-backed counterpart to extractSyntactic
// (§4.1 "Semantic mode"): it walks a real C# parse tree instead of
// regex-matching tokens, so it resolves base lists, object creation,
// invocations and member access without the syntactic mode's span-overlap
// bookkeeping (a tree visits every node exactly once).
func extractSemantic(c chunk.Record, idx *shortNameIndex, cache *resolutionCache) []graph.Edge {
	if c.Text == "" {
		return nil
	}
	source := []byte(c.Text)
	tree, err := parseCSharp(context.Background(), source)
	if err != nil || tree == nil {
		return nil
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil
	}

	w := &semanticWalker{src: c.ID, source: source, idx: idx, cache: cache}
	w.walk(root)
	return w.edges
}

type semanticWalker struct {
	src    string
	source []byte
	idx    *shortNameIndex
	cache  *resolutionCache
	edges  []graph.Edge
}

func (w *semanticWalker) emit(target string, kind graph.Kind) {
	for _, dst := range w.cache.resolve(w.idx, target) {
		if dst == w.src {
			continue
		}
		w.edges = append(w.edges, graph.Edge{Src: w.src, Dst: dst, Kind: kind})
	}
}

func (w *semanticWalker) walk(n *sitter.Node) {
	switch n.Type() {
	case "base_list":
		w.visitBaseList(n)
	case "object_creation_expression":
		w.visitObjectCreation(n)
	case "invocation_expression":
		w.visitInvocation(n)
		return // arguments are walked explicitly below; skip the generic recursion
	case "member_access_expression":
		w.visitMemberAccess(n)
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		w.walk(n.Child(i))
	}
}

func (w *semanticWalker) visitBaseList(n *sitter.Node) {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		name := baseTypeName(child, w.source)
		if name == "" {
			continue
		}
		kind := graph.Inherits
		if looksLikeInterfaceName(name) {
			kind = graph.Implements
		}
		w.emit(stripGenericArgs(name), kind)
	}
}

func (w *semanticWalker) visitObjectCreation(n *sitter.Node) {
	typeNode := n.ChildByFieldName("type")
	if typeNode == nil {
		typeNode = childByType(n, "identifier")
	}
	if typeNode == nil {
		return
	}
	w.emit(stripGenericArgs(nodeText(typeNode, w.source)), graph.References)
}

func (w *semanticWalker) visitInvocation(n *sitter.Node) {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		fn = n.Child(0)
	}
	name := ""
	switch {
	case fn == nil:
	case fn.Type() == "identifier":
		name = nodeText(fn, w.source)
	case fn.Type() == "member_access_expression":
		if nameNode := fn.ChildByFieldName("name"); nameNode != nil {
			name = nodeText(nameNode, w.source)
		}
	}
	if name != "" {
		w.emit(name, graph.Calls)
	}

	if args := n.ChildByFieldName("arguments"); args != nil {
		w.walk(args)
	}
}

func (w *semanticWalker) visitMemberAccess(n *sitter.Node) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	w.emit(nodeText(nameNode, w.source), graph.References)
}

// baseTypeName extracts a usable identifier from a base_list child, which
// may be a bare identifier or a generic_name (Foo<T>).
func baseTypeName(n *sitter.Node, source []byte) string {
	switch n.Type() {
	case "identifier", "generic_name", "qualified_name":
		return nodeText(n, source)
	default:
		return ""
	}
}

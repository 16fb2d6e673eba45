package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h7lu/modkg/services/kgraph/chunk"
	"github.com/h7lu/modkg/services/kgraph/graph"
)

func TestExtractSyntactic_BaseListInheritance(t *testing.T) {
	chunks := []chunk.Record{
		{ID: "A.Base", Language: chunk.Code, SymbolName: "Base"},
		{ID: "A.Derived", Language: chunk.Code, SymbolName: "Derived", Text: "public class Derived : Base {\n}\n"},
	}
	idx := buildShortNameIndex(chunks)
	cache := newResolutionCache()

	edges := extractSyntactic(chunks[1], idx, cache)
	require.NotEmpty(t, edges)
	assert.Contains(t, edges, graph.Edge{Src: "A.Derived", Dst: "A.Base", Kind: graph.Inherits})
}

func TestExtractSyntactic_InterfaceBaseIsImplements(t *testing.T) {
	chunks := []chunk.Record{
		{ID: "A.IThing", Language: chunk.Code, SymbolName: "IThing"},
		{ID: "A.Thing", Language: chunk.Code, SymbolName: "Thing", Text: "public class Thing : IThing {\n}\n"},
	}
	idx := buildShortNameIndex(chunks)
	cache := newResolutionCache()

	edges := extractSyntactic(chunks[1], idx, cache)
	assert.Contains(t, edges, graph.Edge{Src: "A.Thing", Dst: "A.IThing", Kind: graph.Implements})
}

func TestExtractSyntactic_ObjectCreationIsReferences(t *testing.T) {
	chunks := []chunk.Record{
		{ID: "A.Helper", Language: chunk.Code, SymbolName: "Helper"},
		{ID: "A.Caller", Language: chunk.Code, SymbolName: "Caller", Text: "void Run() { var h = new Helper(); }\n"},
	}
	idx := buildShortNameIndex(chunks)
	cache := newResolutionCache()

	edges := extractSyntactic(chunks[1], idx, cache)
	assert.Contains(t, edges, graph.Edge{Src: "A.Caller", Dst: "A.Helper", Kind: graph.References})
}

func TestExtractSyntactic_InvocationIsCalls(t *testing.T) {
	chunks := []chunk.Record{
		{ID: "A.DoWork", Language: chunk.Code, SymbolName: "DoWork"},
		{ID: "A.Caller", Language: chunk.Code, SymbolName: "Caller", Text: "void Run() { DoWork(); }\n"},
	}
	idx := buildShortNameIndex(chunks)
	cache := newResolutionCache()

	edges := extractSyntactic(chunks[1], idx, cache)
	assert.Contains(t, edges, graph.Edge{Src: "A.Caller", Dst: "A.DoWork", Kind: graph.Calls})
}

func TestExtractSyntactic_SelfReferenceIsDropped(t *testing.T) {
	chunks := []chunk.Record{
		{ID: "A.Caller", Language: chunk.Code, SymbolName: "Caller", Text: "void Caller() { Caller(); }\n"},
	}
	idx := buildShortNameIndex(chunks)
	cache := newResolutionCache()

	edges := extractSyntactic(chunks[0], idx, cache)
	for _, e := range edges {
		assert.NotEqual(t, "A.Caller", e.Dst)
	}
}

func TestExtractSyntactic_UnresolvableReferenceEmitsNoEdge(t *testing.T) {
	chunks := []chunk.Record{
		{ID: "A.Caller", Language: chunk.Code, SymbolName: "Caller", Text: "void Run() { SomeExternalLibraryCall(); }\n"},
	}
	idx := buildShortNameIndex(chunks)
	cache := newResolutionCache()

	edges := extractSyntactic(chunks[0], idx, cache)
	assert.Empty(t, edges)
}

func TestResolutionCache_CachesAcrossCalls(t *testing.T) {
	idx := newShortNameIndex()
	idx.add("A.Foo", "Foo")
	cache := newResolutionCache()

	first := cache.resolve(idx, "Foo")
	idx.add("A.Foo2", "Foo") // mutate after first lookup
	second := cache.resolve(idx, "Foo")

	assert.Equal(t, first, second)
}

func TestDedupeEdges(t *testing.T) {
	edges := []graph.Edge{
		{Src: "A", Dst: "B", Kind: graph.Calls},
		{Src: "A", Dst: "B", Kind: graph.Calls},
		{Src: "A", Dst: "C", Kind: graph.Calls},
	}
	assert.Len(t, dedupeEdges(edges), 2)
}

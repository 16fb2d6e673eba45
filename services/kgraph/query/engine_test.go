package query_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h7lu/modkg/services/kgraph/chunk"
	"github.com/h7lu/modkg/services/kgraph/graph"
	"github.com/h7lu/modkg/services/kgraph/query"
	"github.com/h7lu/modkg/services/kgraph/rank"
)

func buildTestGraph(t *testing.T, chunks []chunk.Record, edges []graph.Edge) *graph.Graph {
	t.Helper()
	base := filepath.Join(t.TempDir(), "graph")
	_, nodes, csr, csc, err := graph.Build(chunks, edges, base)
	require.NoError(t, err)

	scores := rank.Compute(csr, csc, nodes.Len())
	_, _, _, pagerankPath := graph.ArtefactPaths(base)
	require.NoError(t, rank.Write(pagerankPath, nodes, scores))

	loaded, err := graph.Load(base)
	require.NoError(t, err)
	return loaded
}

func TestQuery_UsesDirection(t *testing.T) {
	chunks := []chunk.Record{
		{ID: "A.Foo", Language: chunk.Code},
		{ID: "A.Bar", Language: chunk.Code},
	}
	g := buildTestGraph(t, chunks, []graph.Edge{{Src: "A.Foo", Dst: "A.Bar", Kind: graph.Calls}})

	results, total := query.Query(g, "A.Foo", query.Uses, query.KindAny, 1, 10)
	require.Equal(t, 1, total)
	assert.Equal(t, "A.Bar", results[0].SymbolID)
	assert.Equal(t, graph.Calls, results[0].Kind)
}

func TestQuery_UsedByDirection(t *testing.T) {
	chunks := []chunk.Record{
		{ID: "A.Foo", Language: chunk.Code},
		{ID: "A.Bar", Language: chunk.Code},
	}
	g := buildTestGraph(t, chunks, []graph.Edge{{Src: "A.Foo", Dst: "A.Bar", Kind: graph.Calls}})

	results, total := query.Query(g, "A.Bar", query.UsedBy, query.KindAny, 1, 10)
	require.Equal(t, 1, total)
	assert.Equal(t, "A.Foo", results[0].SymbolID)
}

func TestQuery_CodeUsedByDefGatedOutOfUsesDirection(t *testing.T) {
	chunks := []chunk.Record{
		{ID: "A.Foo", Language: chunk.Code},
		{ID: "xml:ThingDef:Wall", Language: chunk.XML},
	}
	g := buildTestGraph(t, chunks, []graph.Edge{
		{Src: "xml:ThingDef:Wall", Dst: "A.Foo", Kind: graph.XmlBindsClass},
		{Src: "A.Foo", Dst: "xml:ThingDef:Wall", Kind: graph.CodeUsedByDef},
	})

	// The reverse edge (CodeUsedByDef, A.Foo -> xml:ThingDef:Wall) that
	// phase 4 adds is stored as an outgoing edge of A.Foo; Uses-direction
	// queries must not surface it.
	uses, usesTotal := query.Query(g, "A.Foo", query.Uses, query.KindAny, 1, 10)
	assert.Equal(t, 0, usesTotal)
	assert.Empty(t, uses)

	usedBy, usedByTotal := query.Query(g, "A.Foo", query.UsedBy, query.KindAny, 1, 10)
	require.Equal(t, 1, usedByTotal)
	assert.Equal(t, "xml:ThingDef:Wall", usedBy[0].SymbolID)
}

func TestQuery_KindFilterRestrictsToCounterpartUniverse(t *testing.T) {
	chunks := []chunk.Record{
		{ID: "A.Foo", Language: chunk.Code},
		{ID: "A.Bar", Language: chunk.Code},
		{ID: "xml:ThingDef:Wall", Language: chunk.XML},
	}
	g := buildTestGraph(t, chunks, []graph.Edge{
		{Src: "A.Foo", Dst: "A.Bar", Kind: graph.Calls},
		{Src: "xml:ThingDef:Wall", Dst: "A.Foo", Kind: graph.XmlBindsClass},
	})

	codeOnly, total := query.Query(g, "A.Foo", query.UsedBy, query.KindXML, 1, 10)
	require.Equal(t, 1, total)
	assert.Equal(t, "xml:ThingDef:Wall", codeOnly[0].SymbolID)
}

func TestQuery_PaginatesAndSortsByScoreThenID(t *testing.T) {
	chunks := []chunk.Record{
		{ID: "Root", Language: chunk.Code},
		{ID: "A", Language: chunk.Code},
		{ID: "B", Language: chunk.Code},
		{ID: "C", Language: chunk.Code},
	}
	g := buildTestGraph(t, chunks, []graph.Edge{
		{Src: "Root", Dst: "A", Kind: graph.Calls},
		{Src: "Root", Dst: "B", Kind: graph.Calls},
		{Src: "Root", Dst: "C", Kind: graph.Calls},
	})

	// No counterpart shares a character with "Root", so every Jaro-Winkler
	// bonus, and with it every score, is 0: the ID tiebreak sets the order.
	page1, total := query.Query(g, "Root", query.Uses, query.KindAny, 1, 2)
	require.Equal(t, 3, total)
	require.Len(t, page1, 2)
	assert.Equal(t, "A", page1[0].SymbolID)
	assert.Equal(t, "B", page1[1].SymbolID)

	page2, _ := query.Query(g, "Root", query.Uses, query.KindAny, 2, 2)
	require.Len(t, page2, 1)
	assert.Equal(t, "C", page2[0].SymbolID)
}

func TestQuery_UnresolvedReferenceReturnsEmptyNotError(t *testing.T) {
	g := buildTestGraph(t, []chunk.Record{{ID: "A", Language: chunk.Code}}, nil)
	results, total := query.Query(g, "DoesNotExist", query.Uses, query.KindAny, 1, 10)
	assert.Zero(t, total)
	assert.Empty(t, results)
}

func TestQuery_DuplicateEdgesAreGroupedWithCount(t *testing.T) {
	chunks := []chunk.Record{
		{ID: "A.Foo", Language: chunk.Code},
		{ID: "A.Bar", Language: chunk.Code},
	}
	// Two distinct call sites producing the same (src, dst, kind) edge
	// collapse to one grouped result with duplicate_count 2 (§4.6).
	g := buildTestGraph(t, chunks, []graph.Edge{
		{Src: "A.Foo", Dst: "A.Bar", Kind: graph.Calls},
		{Src: "A.Foo", Dst: "A.Bar", Kind: graph.Calls},
	})

	results, total := query.Query(g, "A.Foo", query.Uses, query.KindAny, 1, 10)
	require.Equal(t, 1, total)
	assert.Equal(t, 2, results[0].DuplicateCount)
}

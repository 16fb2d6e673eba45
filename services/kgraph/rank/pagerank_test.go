package rank_test

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h7lu/modkg/services/kgraph/chunk"
	"github.com/h7lu/modkg/services/kgraph/graph"
	"github.com/h7lu/modkg/services/kgraph/rank"
)

func buildGraph(t *testing.T, chunks []chunk.Record, edges []graph.Edge) (*graph.NodeTable, *graph.CSR, *graph.CSC) {
	t.Helper()
	base := filepath.Join(t.TempDir(), "graph")
	_, nodes, csr, csc, err := graph.Build(chunks, edges, base)
	require.NoError(t, err)
	return nodes, csr, csc
}

func TestCompute_ScoresSumToOne(t *testing.T) {
	chunks := []chunk.Record{
		{ID: "A", Language: chunk.Code},
		{ID: "B", Language: chunk.Code},
		{ID: "C", Language: chunk.Code},
	}
	edges := []graph.Edge{
		{Src: "A", Dst: "B", Kind: graph.Calls},
		{Src: "B", Dst: "C", Kind: graph.Calls},
		{Src: "C", Dst: "A", Kind: graph.Calls},
	}
	nodes, csr, csc := buildGraph(t, chunks, edges)

	scores := rank.Compute(csr, csc, nodes.Len())
	require.Len(t, scores, 3)

	var sum float64
	for _, s := range scores {
		sum += s
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
}

func TestCompute_DanglingNodeMassIsRedistributed(t *testing.T) {
	// A -> B, B has no outgoing edges (dangling). Without redistribution
	// the total score would leak below 1.0.
	chunks := []chunk.Record{
		{ID: "A", Language: chunk.Code},
		{ID: "B", Language: chunk.Code},
	}
	edges := []graph.Edge{{Src: "A", Dst: "B", Kind: graph.Calls}}
	nodes, csr, csc := buildGraph(t, chunks, edges)

	scores := rank.Compute(csr, csc, nodes.Len())

	var sum float64
	for _, s := range scores {
		sum += s
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
}

func TestCompute_EmptyGraphReturnsNil(t *testing.T) {
	assert.Nil(t, rank.Compute(&graph.CSR{RowPointers: []int32{0}}, &graph.CSC{ColPointers: []int32{0}}, 0))
}

func TestCompute_HigherInDegreeScoresHigher(t *testing.T) {
	chunks := []chunk.Record{
		{ID: "Hub", Language: chunk.Code},
		{ID: "A", Language: chunk.Code},
		{ID: "B", Language: chunk.Code},
		{ID: "C", Language: chunk.Code},
	}
	edges := []graph.Edge{
		{Src: "A", Dst: "Hub", Kind: graph.Calls},
		{Src: "B", Dst: "Hub", Kind: graph.Calls},
		{Src: "C", Dst: "Hub", Kind: graph.Calls},
	}
	nodes, csr, csc := buildGraph(t, chunks, edges)
	scores := rank.Compute(csr, csc, nodes.Len())

	hubIdx, _ := nodes.Index("Hub")
	aIdx, _ := nodes.Index("A")
	assert.Greater(t, scores[hubIdx], scores[aIdx])
}

func TestWrite_SortsByScoreDescendingThenIDAscending(t *testing.T) {
	chunks := []chunk.Record{
		{ID: "B", Language: chunk.Code},
		{ID: "A", Language: chunk.Code},
	}
	nodes, csr, csc := buildGraph(t, chunks, nil)
	scores := rank.Compute(csr, csc, nodes.Len())
	// Force a tie so the secondary ID-ascending sort key is exercised.
	for i := range scores {
		scores[i] = 0.5
	}

	path := filepath.Join(t.TempDir(), "pagerank.tsv")
	require.NoError(t, rank.Write(path, nodes, scores))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "A\t"))
	assert.True(t, strings.HasPrefix(lines[1], "B\t"))
}

func TestL1ConvergenceAssumption(t *testing.T) {
	// Sanity check on the convergence threshold itself: two identical
	// score vectors have zero L1 distance regardless of magnitude.
	a := []float64{0.1, 0.2, 0.7}
	b := []float64{0.1, 0.2, 0.7}
	var sum float64
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}
	assert.Zero(t, sum)
}

// Package rank computes PageRank over a graph.Graph's CSR/CSC views and
// persists the result as the fourth on-disk artefact.
package rank

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/h7lu/modkg/services/kgraph/graph"
)

const (
	damping        = 0.85
	maxIterations  = 100
	convergenceTol = 1e-6
)

// Compute runs the classic power method over csr/csc. Edge kinds are
// ignored at this stage — only topology matters. The inner loop is a
// single pass over the edge arrays per iteration and is not parallelised;
// PageRank is specified as single-threaded (§5).
func Compute(csr *graph.CSR, csc *graph.CSC, nodeCount int) []float64 {
	if nodeCount == 0 {
		return nil
	}

	outDegree := make([]int32, nodeCount)
	var dangling []int32
	for i := 0; i < nodeCount; i++ {
		d := csr.OutDegree(int32(i))
		outDegree[i] = d
		if d == 0 {
			dangling = append(dangling, int32(i))
		}
	}

	n := float64(nodeCount)
	scores := make([]float64, nodeCount)
	for i := range scores {
		scores[i] = 1.0 / n
	}

	next := make([]float64, nodeCount)
	for iter := 0; iter < maxIterations; iter++ {
		var danglingMass float64
		for _, d := range dangling {
			danglingMass += scores[d]
		}
		danglingShare := damping * danglingMass / n
		base := (1-damping)/n + danglingShare

		for i := 0; i < nodeCount; i++ {
			var contribution float64
			for src, _ := range csc.In(int32(i)) {
				if od := outDegree[src]; od > 0 {
					contribution += scores[src] / float64(od)
				}
			}
			next[i] = base + damping*contribution
		}

		diff := l1Distance(scores, next)
		scores, next = next, scores
		if diff < convergenceTol {
			break
		}
	}

	return scores
}

func l1Distance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}
	return sum
}

// Write persists scores (indexed the same as nodes) as
// `<base>.pagerank.tsv`: symbol_id<TAB>score, six fractional digits,
// sorted by score descending, written atomically.
func Write(path string, nodes *graph.NodeTable, scores []float64) error {
	type row struct {
		id    string
		score float64
	}
	rows := make([]row, 0, len(scores))
	for i, s := range scores {
		id, ok := nodes.ID(int32(i))
		if !ok {
			continue
		}
		rows = append(rows, row{id, s})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].score != rows[j].score {
			return rows[i].score > rows[j].score
		}
		return rows[i].id < rows[j].id
	})

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-pagerank-*")
	if err != nil {
		return fmt.Errorf("rank: creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	writeErr := func() error {
		for _, r := range rows {
			if _, err := fmt.Fprintf(tmp, "%s\t%.6f\n", r.id, r.score); err != nil {
				return err
			}
		}
		return nil
	}()
	if writeErr == nil {
		writeErr = tmp.Sync()
	}
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rank: writing %s: %w", path, writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rank: closing temp file: %w", closeErr)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rank: renaming into place %s: %w", path, err)
	}
	return nil
}

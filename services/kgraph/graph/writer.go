package graph

import (
	"fmt"
	"os"
	"sort"

	"github.com/h7lu/modkg/services/kgraph/chunk"
)

// triple is an edge translated to index form, the unit the CSR/CSC builders
// group and sort.
type triple struct {
	src, dst int32
	kind     Kind
}

// Artefacts holds the paths written by Build, ready to hand to Load.
type Artefacts struct {
	NodesPath string
	CSRPath   string
	CSCPath   string
}

// ArtefactPaths returns the four canonical artefact paths for a given base
// path (without extension), matching §6's naming.
func ArtefactPaths(base string) (nodes, csr, csc, pagerank string) {
	return base + ".nodes.tsv", base + ".csr.bin", base + ".csc.bin", base + ".pagerank.tsv"
}

// Build assigns node indices, builds the CSR and CSC views, and writes the
// nodes table and both binary matrices to base + {.nodes.tsv,.csr.bin,.csc.bin}.
// It does not write the PageRank file; that is produced by the rank package
// once it has loaded (or been handed) the matrices this function writes.
//
// Node indices are assigned first in the order chunks appear in chunks,
// then — for any edge endpoint not already a chunk ID — in the order edges
// appear once sorted by (Src, Dst, Kind). Both orderings are fully
// determined by the input, so two builds over the same chunks and edges
// produce byte-identical artefacts (§5's determinism requirement).
func Build(chunks []chunk.Record, edges []Edge, base string) (*Artefacts, *NodeTable, *CSR, *CSC, error) {
	nodes := NewNodeTable()
	for _, c := range chunks {
		nodes.Intern(c.ID)
	}

	sorted := make([]Edge, len(edges))
	copy(sorted, edges)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Src != sorted[j].Src {
			return sorted[i].Src < sorted[j].Src
		}
		if sorted[i].Dst != sorted[j].Dst {
			return sorted[i].Dst < sorted[j].Dst
		}
		return sorted[i].Kind < sorted[j].Kind
	})
	for _, e := range sorted {
		if e.Src == e.Dst {
			continue // no self-loops (§3 invariant); defensive, extractors already drop these
		}
		nodes.Intern(e.Src)
		nodes.Intern(e.Dst)
	}

	triples := make([]triple, 0, len(sorted))
	for _, e := range sorted {
		if e.Src == e.Dst {
			continue
		}
		srcIdx, _ := nodes.Index(e.Src)
		dstIdx, _ := nodes.Index(e.Dst)
		triples = append(triples, triple{srcIdx, dstIdx, e.Kind})
	}

	csr := buildCSR(nodes.Len(), triples)
	csc := buildCSC(nodes.Len(), triples)

	nodesPath, csrPath, cscPath, _ := ArtefactPaths(base)
	if err := writeNodesTSV(nodesPath, nodes); err != nil {
		return nil, nil, nil, nil, err
	}
	if err := atomicWriteFile(csrPath, func(f *os.File) error { return writeCSR(f, nodes.Len(), csr) }); err != nil {
		return nil, nil, nil, nil, err
	}
	if err := atomicWriteFile(cscPath, func(f *os.File) error { return writeCSC(f, nodes.Len(), csc) }); err != nil {
		return nil, nil, nil, nil, err
	}

	return &Artefacts{NodesPath: nodesPath, CSRPath: csrPath, CSCPath: cscPath}, nodes, csr, csc, nil
}

// buildCSR groups triples by src, ordering each group by (dst, kind), per
// §4.3 step 3.
func buildCSR(nodeCount int, triples []triple) *CSR {
	ordered := make([]triple, len(triples))
	copy(ordered, triples)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].src != ordered[j].src {
			return ordered[i].src < ordered[j].src
		}
		if ordered[i].dst != ordered[j].dst {
			return ordered[i].dst < ordered[j].dst
		}
		return ordered[i].kind < ordered[j].kind
	})

	rowPointers := make([]int32, nodeCount+1)
	colIndices := make([]int32, len(ordered))
	kinds := make([]byte, len(ordered))
	for i, t := range ordered {
		colIndices[i] = t.dst
		kinds[i] = byte(t.kind)
		rowPointers[t.src+1]++
	}
	for i := 1; i <= nodeCount; i++ {
		rowPointers[i] += rowPointers[i-1]
	}
	return &CSR{RowPointers: rowPointers, ColIndices: colIndices, Kinds: kinds}
}

// buildCSC groups triples by dst, ordering each group by (src, kind) — the
// symmetric counterpart of buildCSR's ordering.
func buildCSC(nodeCount int, triples []triple) *CSC {
	ordered := make([]triple, len(triples))
	copy(ordered, triples)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].dst != ordered[j].dst {
			return ordered[i].dst < ordered[j].dst
		}
		if ordered[i].src != ordered[j].src {
			return ordered[i].src < ordered[j].src
		}
		return ordered[i].kind < ordered[j].kind
	})

	colPointers := make([]int32, nodeCount+1)
	rowIndices := make([]int32, len(ordered))
	kinds := make([]byte, len(ordered))
	for i, t := range ordered {
		rowIndices[i] = t.src
		kinds[i] = byte(t.kind)
		colPointers[t.dst+1]++
	}
	for i := 1; i <= nodeCount; i++ {
		colPointers[i] += colPointers[i-1]
	}
	return &CSC{ColPointers: colPointers, RowIndices: rowIndices, Kinds: kinds}
}

func writeNodesTSV(path string, nodes *NodeTable) error {
	return atomicWriteFile(path, func(f *os.File) error {
		for i, id := range nodes.IDs() {
			if _, err := fmt.Fprintf(f, "%d\t%s\n", i, id); err != nil {
				return err
			}
		}
		return nil
	})
}

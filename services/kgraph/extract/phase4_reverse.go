package extract

import "github.com/h7lu/modkg/services/kgraph/graph"

// reversibleKinds lists the edge kinds Phase 4 (§4.1 "reverse edges")
// transposes into CodeUsedByDef: code side is no longer "blind" to which
// Defs bind or use it, without the forward query direction ever returning
// these synthetic edges (engine.go gates CodeUsedByDef out of Uses-
// direction queries).
var reversibleKinds = map[graph.Kind]bool{
	graph.XmlBindsClass: true,
	graph.XmlUsesComp:   true,
}

// generateReverseEdges produces one CodeUsedByDef edge for every edge in
// forward whose kind is reversible, with Src/Dst swapped. The count of
// kind 30 edges must equal the count of kinds 20+21 combined (§8.2), so
// this never deduplicates: it is a 1:1 transposition, not a set union.
func generateReverseEdges(forward []graph.Edge) []graph.Edge {
	var reverse []graph.Edge
	for _, e := range forward {
		if !reversibleKinds[e.Kind] {
			continue
		}
		reverse = append(reverse, graph.Edge{Src: e.Dst, Dst: e.Src, Kind: graph.CodeUsedByDef})
	}
	return reverse
}

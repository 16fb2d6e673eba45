// Package query implements the symbol resolver (C2), the fuzzy resolver
// (C7), and the ranked query engine (C6) described in SPEC_FULL.md §4.2,
// §4.6, §4.7.
package query

import (
	"strconv"
	"strings"

	"github.com/h7lu/modkg/services/kgraph/graph"
)

// Resolve maps a textual reference to a canonical symbol ID, or reports
// failure. It tries, in order: node-index shorthand ("#n"), exact key
// lookup, then the fuzzy resolver.
func Resolve(g *graph.Graph, ref string) (string, bool) {
	if id, ok := resolveNodeIndex(g, ref); ok {
		return id, true
	}
	if _, ok := g.Nodes.Index(ref); ok {
		return ref, true
	}
	return ResolveFuzzy(g, ref)
}

func resolveNodeIndex(g *graph.Graph, ref string) (string, bool) {
	suffix, ok := strings.CutPrefix(ref, "#")
	if !ok {
		return "", false
	}
	n, err := strconv.Atoi(suffix)
	if err != nil || n < 0 {
		return "", false
	}
	return g.Nodes.ID(int32(n))
}

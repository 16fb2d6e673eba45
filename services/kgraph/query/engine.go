package query

import (
	"math"
	"sort"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/h7lu/modkg/services/kgraph/graph"
)

// Direction selects which side of an edge the query walks.
type Direction int

const (
	Uses Direction = iota
	UsedBy
)

// KindFilter restricts results to one counterpart universe.
type KindFilter int

const (
	KindAny KindFilter = iota
	KindCode
	KindXML
)

// Result is one scored, counterpart-grouped edge in a query response.
type Result struct {
	SymbolID       string
	Kind           graph.Kind
	DuplicateCount int
	Score          float64
}

const pageRankScale = 1e7

// Query implements C6: resolve the input reference, walk edges in the
// requested direction, filter, group, score, sort, and paginate.
//
// On resolution failure it returns (nil, 0) — an empty result, not an
// error; reference-resolution failures are non-fatal (§7).
func Query(g *graph.Graph, ref string, direction Direction, kindFilter KindFilter, page, pageSize int) ([]Result, int) {
	resolved, ok := Resolve(g, ref)
	if !ok {
		return nil, 0
	}
	idx, ok := g.Nodes.Index(resolved)
	if !ok {
		return nil, 0
	}

	type group struct {
		kind  graph.Kind
		count int
	}
	counterparts := make(map[string][]group)

	addEdge := func(other int32, kind graph.Kind) {
		if direction == Uses && kind == graph.CodeUsedByDef {
			// Direction validity gate (§4.6 step 2): CodeUsedByDef is a
			// synthetic reverse edge, meaningful only walking inbound.
			return
		}
		otherID, ok := g.Nodes.ID(other)
		if !ok || otherID == resolved {
			return
		}
		if !passesKindFilter(otherID, kindFilter) {
			return
		}
		groups := counterparts[otherID]
		for i := range groups {
			if groups[i].kind == kind {
				groups[i].count++
				counterparts[otherID] = groups
				return
			}
		}
		counterparts[otherID] = append(groups, group{kind: kind, count: 1})
	}

	switch direction {
	case Uses:
		for other, kind := range g.CSR.Out(idx) {
			addEdge(other, kind)
		}
	case UsedBy:
		for other, kind := range g.CSC.In(idx) {
			addEdge(other, kind)
		}
	}

	var results []Result
	for otherID, groups := range counterparts {
		for _, grp := range groups {
			results = append(results, score(g, resolved, otherID, grp.kind, grp.count))
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].SymbolID < results[j].SymbolID
	})

	total := len(results)
	start := (page - 1) * pageSize
	if start < 0 {
		start = 0
	}
	if start >= total {
		return nil, total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return results[start:end], total
}

func score(g *graph.Graph, ref, counterpart string, kind graph.Kind, duplicateCount int) Result {
	scaledPR := g.PageRank[counterpart] * pageRankScale
	edgeWeight := kind.Weight()
	lexicalBonus := matchr.JaroWinkler(ref, counterpart)
	s := scaledPR * edgeWeight * math.Sqrt(float64(duplicateCount)) * lexicalBonus
	return Result{SymbolID: counterpart, Kind: kind, DuplicateCount: duplicateCount, Score: s}
}

func passesKindFilter(symbolID string, kf KindFilter) bool {
	switch kf {
	case KindCode:
		return !strings.HasPrefix(symbolID, "xml:")
	case KindXML:
		return strings.HasPrefix(symbolID, "xml:")
	default:
		return true
	}
}

package extract

import (
	"regexp"
	"strings"
	"sync"

	"github.com/h7lu/modkg/services/kgraph/chunk"
	"github.com/h7lu/modkg/services/kgraph/graph"
)

// Syntactic-fallback Phase 1 (§4.1): parses each chunk in isolation with a
// lightweight tokenizer instead of a full grammar, resolving every
// reference by name against a prebuilt short-name index. This is
// deliberately approximate — the spec calls resolution "best-effort
// heuristic" and explicitly scopes out soundness guarantees.

var (
	baseListRe  = regexp.MustCompile(`(?m)^\s*(?:public|internal|private|protected|abstract|sealed|static|partial|\s)*\b(?:class|struct|interface)\s+([A-Za-z_][A-Za-z0-9_]*)(?:<[^>]*>)?\s*:\s*([^{;]+)\{`)
	newExprRe   = regexp.MustCompile(`\bnew\s+([A-Za-z_][A-Za-z0-9_.]*)(?:<[^>]*>)?\s*\(`)
	callExprRe  = regexp.MustCompile(`(?:([A-Za-z_][A-Za-z0-9_.]*)\.)?([A-Za-z_][A-Za-z0-9_]*)\s*\(`)
	memberRe    = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]*)\.([A-Za-z_][A-Za-z0-9_]*)`)
	identifierRe = regexp.MustCompile(`\b([A-Z][A-Za-z0-9_]*(?:` + "`" + `\d+)?)\b`)
	csKeywords  = map[string]bool{
		"if": true, "else": true, "for": true, "foreach": true, "while": true,
		"switch": true, "case": true, "return": true, "break": true, "continue": true,
		"new": true, "using": true, "namespace": true, "class": true, "struct": true,
		"interface": true, "public": true, "private": true, "protected": true,
		"internal": true, "static": true, "void": true, "var": true, "this": true,
		"base": true, "null": true, "true": true, "false": true, "try": true,
		"catch": true, "finally": true, "throw": true, "in": true, "is": true,
		"as": true, "out": true, "ref": true, "get": true, "set": true,
	}
)

// resolutionCache amortises repeat references across chunks (§4.1: "Cache
// resolutions to amortise repeat references").
type resolutionCache struct {
	mu    sync.Mutex
	cache map[string][]string
}

func newResolutionCache() *resolutionCache {
	return &resolutionCache{cache: make(map[string][]string)}
}

func (c *resolutionCache) resolve(idx *shortNameIndex, ref string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if hit, ok := c.cache[ref]; ok {
		return hit
	}
	result := idx.resolve(ref)
	c.cache[ref] = result
	return result
}

// extractSyntactic emits Inherits/Implements/Calls/References edges for a
// single code chunk, resolving every bare reference through idx.
func extractSyntactic(c chunk.Record, idx *shortNameIndex, cache *resolutionCache) []graph.Edge {
	var edges []graph.Edge
	text := c.Text

	if m := baseListRe.FindStringSubmatch(text); m != nil {
		declName := m[1]
		baseList := m[2]
		for _, base := range strings.Split(baseList, ",") {
			base = strings.TrimSpace(base)
			base = stripGenericArgs(base)
			if base == "" || base == declName {
				continue
			}
			for _, target := range cache.resolve(idx, base) {
				if target == c.ID {
					continue
				}
				kind := graph.Inherits
				if looksLikeInterfaceName(base) {
					kind = graph.Implements
				}
				edges = append(edges, graph.Edge{Src: c.ID, Dst: target, Kind: kind})
			}
		}
	}

	callSpans := make([]span, 0)
	for _, m := range newExprRe.FindAllStringSubmatchIndex(text, -1) {
		typeName := stripGenericArgs(text[m[2]:m[3]])
		callSpans = append(callSpans, span{m[0], m[1]})
		for _, target := range cache.resolve(idx, lastSegment(typeName)) {
			if target == c.ID {
				continue
			}
			edges = append(edges, graph.Edge{Src: c.ID, Dst: target, Kind: graph.References})
		}
	}

	for _, m := range callExprRe.FindAllStringSubmatchIndex(text, -1) {
		if overlaps(callSpans, m[0], m[1]) {
			continue
		}
		name := text[m[4]:m[5]]
		if csKeywords[name] {
			continue
		}
		callSpans = append(callSpans, span{m[0], m[1]})
		for _, target := range cache.resolve(idx, name) {
			if target == c.ID {
				continue
			}
			edges = append(edges, graph.Edge{Src: c.ID, Dst: target, Kind: graph.Calls})
		}
	}

	for _, m := range memberRe.FindAllStringSubmatchIndex(text, -1) {
		if overlaps(callSpans, m[0], m[1]) {
			continue
		}
		name := text[m[4]:m[5]]
		if csKeywords[name] {
			continue
		}
		for _, target := range cache.resolve(idx, name) {
			if target == c.ID {
				continue
			}
			edges = append(edges, graph.Edge{Src: c.ID, Dst: target, Kind: graph.References})
		}
	}

	for _, m := range identifierRe.FindAllStringSubmatchIndex(text, -1) {
		if overlaps(callSpans, m[0], m[1]) {
			continue
		}
		name := text[m[2]:m[3]]
		if csKeywords[name] {
			continue
		}
		for _, target := range cache.resolve(idx, name) {
			if target == c.ID {
				continue
			}
			edges = append(edges, graph.Edge{Src: c.ID, Dst: target, Kind: graph.References})
		}
	}

	return edges
}

type span struct{ start, end int }

func overlaps(spans []span, start, end int) bool {
	for _, s := range spans {
		if start < s.end && end > s.start {
			return true
		}
	}
	return false
}

func stripGenericArgs(s string) string {
	if i := strings.IndexByte(s, '<'); i >= 0 {
		return s[:i]
	}
	return s
}

// looksLikeInterfaceName applies the common C# convention (leading "I"
// followed by an uppercase letter) as the heuristic for "is this base an
// interface". Both Phase 1 modes use it; neither has symbol-kind
// information to consult.
func looksLikeInterfaceName(name string) bool {
	if len(name) < 2 {
		return false
	}
	return name[0] == 'I' && name[1] >= 'A' && name[1] <= 'Z'
}

func dedupeEdges(edges []graph.Edge) []graph.Edge {
	seen := make(map[graph.Edge]bool, len(edges))
	out := edges[:0]
	for _, e := range edges {
		if seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}

// buildShortNameIndex indexes every code chunk by its declared short name
// (the last dotted segment of its ID) and its recorded symbol_name.
func buildShortNameIndex(chunks []chunk.Record) *shortNameIndex {
	idx := newShortNameIndex()
	for _, c := range chunks {
		if c.IsXML() {
			continue
		}
		idx.add(c.ID, lastSegment(c.ID))
		idx.add(c.ID, c.SymbolName)
	}
	return idx
}

package extract

import (
	"encoding/xml"
	"strings"

	"github.com/h7lu/modkg/services/kgraph/chunk"
	"github.com/h7lu/modkg/services/kgraph/config"
	"github.com/h7lu/modkg/services/kgraph/graph"
)

// Phase 2 (§4.1 "xml -> code"): scans every XML Def chunk for fields whose
// text content names a code class, plus the comps/li[@Class=...] pattern,
// and emits XmlBindsClass / XmlUsesComp edges resolved against the code
// short-name index. Every linkable-field hit is a binding ("this Def IS
// this class"), never a mere reference.
//
// encoding/xml is used here rather than a regex scan (unlike Phase 1's code
// tokenizer): XML's attribute and nesting syntax is irregular enough that a
// token-stream walk is both simpler and more reliable than hand-rolled
// pattern matching, and no example in this codebase's dependency set offers
// an XML parser beyond the standard library's.
type linkableFieldSet struct {
	names map[string]bool
}

func newLinkableFieldSet(cfg *config.Config) *linkableFieldSet {
	set := &linkableFieldSet{names: make(map[string]bool)}
	for _, name := range cfg.LinkableFields.Seed {
		set.names[strings.ToLower(name)] = true
	}
	return set
}

func (s *linkableFieldSet) has(name string) bool {
	return s.names[strings.ToLower(name)]
}

func (s *linkableFieldSet) discover(name string) {
	s.names[strings.ToLower(name)] = true
}

func extractXMLToCode(c chunk.Record, fields *linkableFieldSet, codeIdx *shortNameIndex, cache *resolutionCache, cfg *config.Config) []graph.Edge {
	var edges []graph.Edge
	dec := xml.NewDecoder(strings.NewReader(c.Text))

	var stack []string
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			stack = append(stack, t.Name.Local)
			localName := t.Name.Local

			if localName == "li" && isWithinComps(stack) {
				for _, attr := range t.Attr {
					if attr.Name.Local != "Class" {
						continue
					}
					value := normalizeClassName(attr.Value, cfg.Namespaces)
					for _, target := range cache.resolve(codeIdx, lastSegment(value)) {
						edges = append(edges, graph.Edge{Src: c.ID, Dst: target, Kind: graph.XmlUsesComp})
					}
				}
			}

			if fields.has(localName) {
				text := readElementText(dec)
				stack = stack[:len(stack)-1]
				text = strings.TrimSpace(text)
				if looksLikeClassName(text, cfg.ClassNameHeuristics) {
					value := normalizeClassName(text, cfg.Namespaces)
					for _, target := range cache.resolve(codeIdx, lastSegment(value)) {
						edges = append(edges, graph.Edge{Src: c.ID, Dst: target, Kind: graph.XmlBindsClass})
					}
				}
				continue
			}

		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	return dedupeEdges(edges)
}

// isWithinComps reports whether the element stack currently sits inside a
// <comps> block, the RimWorld convention for attaching component classes.
func isWithinComps(stack []string) bool {
	for _, name := range stack {
		if name == "comps" {
			return true
		}
	}
	return false
}

// readElementText consumes tokens up to and including the current
// element's EndElement, returning its concatenated character data. It
// assumes it is called immediately after the element's StartElement.
func readElementText(dec *xml.Decoder) string {
	depth := 0
	var sb strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return sb.String()
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if depth == 0 {
				return sb.String()
			}
			depth--
		}
	}
}

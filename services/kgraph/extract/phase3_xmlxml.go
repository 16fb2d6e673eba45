package extract

import (
	"encoding/xml"
	"strings"

	"github.com/h7lu/modkg/services/kgraph/chunk"
	"github.com/h7lu/modkg/services/kgraph/config"
	"github.com/h7lu/modkg/services/kgraph/graph"
)

// defIndex resolves a bare Def name (optionally typed as "xml:<DefType>:
// <DefName>") to its symbol ID, mirroring shortNameIndex's role for code.
type defIndex struct {
	byName map[string][]string
}

func newDefIndex() *defIndex {
	return &defIndex{byName: make(map[string][]string)}
}

func (idx *defIndex) add(id, defName string) {
	if defName == "" {
		return
	}
	idx.byName[defName] = append(idx.byName[defName], id)
}

func (idx *defIndex) resolve(name string) []string {
	return idx.byName[name]
}

func buildDefIndex(chunks []chunk.Record) *defIndex {
	idx := newDefIndex()
	for _, c := range chunks {
		if !c.IsXML() {
			continue
		}
		idx.add(c.ID, c.SymbolName)
	}
	return idx
}

// extractXMLToXML emits Phase 3 (§4.1 "xml -> xml") edges: ParentName
// (attribute or child element) -> XmlInherits, plus per-DefType structural
// references driven by cfg.DefReferences paths (e.g. "ingredients/*/thingDefs").
func extractXMLToXML(c chunk.Record, defs *defIndex, cfg *config.Config) []graph.Edge {
	var edges []graph.Edge

	root, err := parseXMLTree(c.Text)
	if err != nil || root == nil {
		return edges
	}

	if parent := root.parentName(); parent != "" {
		for _, target := range defs.resolve(parent) {
			if target == c.ID {
				continue
			}
			edges = append(edges, graph.Edge{Src: c.ID, Dst: target, Kind: graph.XmlInherits})
		}
	}

	paths := cfg.DefReferences[c.DefType]
	for _, path := range paths {
		for _, value := range root.collect(strings.Split(path, "/")) {
			value = strings.TrimSpace(value)
			for _, target := range defs.resolve(value) {
				if target == c.ID {
					continue
				}
				edges = append(edges, graph.Edge{Src: c.ID, Dst: target, Kind: graph.XmlReferences})
			}
		}
	}

	return dedupeEdges(edges)
}

// xmlNode is a minimal in-memory parse tree; Phase 3 only ever needs
// element names, attributes, character data and children, so it avoids
// pulling in the children-as-map complexity a full DOM layer would add.
type xmlNode struct {
	name     string
	attr     []xml.Attr
	text     string
	children []*xmlNode
}

// attrList returns the node's attributes as encoding/xml parsed them.
func (n *xmlNode) attrList() []xml.Attr { return n.attr }

func parseXMLTree(text string) (*rootAttrs, error) {
	dec := xml.NewDecoder(strings.NewReader(text))
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			node, err := buildNode(dec, start)
			if err != nil {
				return nil, err
			}
			return &rootAttrs{Attr: node.attr, node: node}, nil
		}
	}
}

func buildNode(dec *xml.Decoder, start xml.StartElement) (*xmlNode, error) {
	node := &xmlNode{name: start.Name.Local, attr: start.Attr}
	var text strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return node, err
		}
		switch t := tok.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.StartElement:
			child, err := buildNode(dec, t)
			node.children = append(node.children, child)
			if err != nil {
				node.text = text.String()
				return node, err
			}
		case xml.EndElement:
			node.text = text.String()
			return node, nil
		}
	}
}

// rootAttrs adapts the parsed tree to the call sites above, which only
// need the root's attributes plus the recursive collect() walk.
type rootAttrs struct {
	Attr []xml.Attr
	node *xmlNode
}

// collect walks path segments against the tree, where "*" matches any
// element name at that level. Below the last segment, <li> items yield the
// text of their leaves and any other child element yields its tag name
// (keyed entries such as <costList><Steel>5</Steel></costList>).
func (r *rootAttrs) collect(path []string) []string {
	return r.node.collect(path)
}

// parentName resolves ParentName from either form spec §4.1 Phase 3
// allows: an attribute on the root element, or a <ParentName> child
// element.
func (r *rootAttrs) parentName() string {
	for _, attr := range r.Attr {
		if attr.Name.Local == "ParentName" {
			return attr.Value
		}
	}
	for _, child := range r.node.children {
		if child.name == "ParentName" {
			return strings.TrimSpace(child.text)
		}
	}
	return ""
}

func (n *xmlNode) collect(path []string) []string {
	if len(path) == 0 {
		if len(n.children) == 0 {
			if strings.TrimSpace(n.text) == "" {
				return nil
			}
			return []string{n.text}
		}
		var out []string
		for _, child := range n.children {
			if child.name != "li" {
				out = append(out, child.name)
				continue
			}
			out = append(out, child.collect(nil)...)
		}
		return out
	}
	segment := path[0]
	rest := path[1:]
	var out []string
	for _, child := range n.children {
		if segment != "*" && child.name != segment {
			continue
		}
		out = append(out, child.collect(rest)...)
	}
	return out
}

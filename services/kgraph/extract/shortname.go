package extract

import "strings"

// shortNameIndex is the `short_name -> [symbol_id]` lookup the syntactic
// fallback extractor resolves bare references against (§4.1 Phase 1).
type shortNameIndex struct {
	byName map[string][]string
}

func newShortNameIndex() *shortNameIndex {
	return &shortNameIndex{byName: make(map[string][]string)}
}

func (idx *shortNameIndex) add(id, shortName string) {
	if shortName == "" {
		return
	}
	for _, existing := range idx.byName[shortName] {
		if existing == id {
			return
		}
	}
	idx.byName[shortName] = append(idx.byName[shortName], id)
}

// resolve implements the three-step syntactic fallback lookup: exact short
// name, then dotted-suffix match, then give up.
func (idx *shortNameIndex) resolve(ref string) []string {
	if matches := idx.byName[ref]; len(matches) > 0 {
		return matches
	}
	if !strings.Contains(ref, ".") {
		return nil
	}
	suffix := "." + ref
	var out []string
	for id := range idx.allIDs() {
		if strings.HasSuffix(id, suffix) {
			out = append(out, id)
		}
	}
	return out
}

func (idx *shortNameIndex) allIDs() map[string]struct{} {
	seen := make(map[string]struct{})
	for _, ids := range idx.byName {
		for _, id := range ids {
			seen[id] = struct{}{}
		}
	}
	return seen
}

// lastSegment returns the short name used to index a symbol ID: the member
// name if the ID has a parameter list or a trailing `.Member`, else the
// type name, trimming generic-arity suffixes.
func lastSegment(id string) string {
	s := id
	if i := strings.IndexByte(s, '('); i >= 0 {
		s = s[:i]
	}
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.IndexByte(s, '`'); i >= 0 {
		s = s[:i]
	}
	return s
}

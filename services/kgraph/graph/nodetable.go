package graph

// NodeTable is the arena that owns all symbol-ID string storage for a
// build: a single flat table of distinct symbol IDs, indexed by first
// insertion order. Edges elsewhere in the package are pairs of integer
// indices into this table, not string pairs — the graph is cyclic by
// nature (mutual recursion, Def inheritance chains) but there are no
// reference cycles in object memory, only integer cross-references.
type NodeTable struct {
	ids     []string
	indices map[string]int32
}

// NewNodeTable returns an empty table.
func NewNodeTable() *NodeTable {
	return &NodeTable{indices: make(map[string]int32)}
}

// Intern returns the index for id, assigning it the next contiguous index
// if this is the first time id has been seen. Safe only for single-writer
// use; callers that need concurrent interning must serialize around it
// (the builder does this by interning strictly after the concurrent
// extraction phases have completed, per §5's "join barrier" model).
func (t *NodeTable) Intern(id string) int32 {
	if idx, ok := t.indices[id]; ok {
		return idx
	}
	idx := int32(len(t.ids))
	t.ids = append(t.ids, id)
	t.indices[id] = idx
	return idx
}

// Index returns the index assigned to id, if any.
func (t *NodeTable) Index(id string) (int32, bool) {
	idx, ok := t.indices[id]
	return idx, ok
}

// ID returns the symbol ID at idx, if in range.
func (t *NodeTable) ID(idx int32) (string, bool) {
	if idx < 0 || int(idx) >= len(t.ids) {
		return "", false
	}
	return t.ids[idx], true
}

// Len returns the number of distinct symbol IDs interned.
func (t *NodeTable) Len() int { return len(t.ids) }

// IDs returns the symbol IDs in index order. The returned slice must not
// be mutated by the caller.
func (t *NodeTable) IDs() []string { return t.ids }

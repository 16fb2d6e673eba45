package graph

// Edge is an extractor's output: a typed directed relationship between two
// symbol IDs. Edges are produced in symbol-ID form; the sparse graph writer
// (Builder) is the only place that translates them to index form.
type Edge struct {
	Src  string
	Dst  string
	Kind Kind
}

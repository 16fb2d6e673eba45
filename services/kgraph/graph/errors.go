package graph

import "errors"

// Artefact-format errors (§7): fatal, surfaced by Load, never recovered
// from mid-query.
var (
	ErrBadMagic        = errors.New("graph: bad magic header")
	ErrVersionMismatch = errors.New("graph: unsupported version")
	ErrTruncated       = errors.New("graph: truncated artefact")
	ErrKindsLength     = errors.New("graph: kinds_length does not match edge_count")
)

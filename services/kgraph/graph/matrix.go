package graph

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// csrMagic and cscMagic are the 4-byte ASCII headers that open each binary
// artefact. They are distinct so a loader handed the wrong file fails fast
// with ErrBadMagic instead of misinterpreting bytes as valid offsets.
var (
	csrMagic = [4]byte{'C', 'S', 'R', '1'}
	cscMagic = [4]byte{'C', 'S', 'C', '1'}
)

const formatVersion int32 = 1

// CSR is the compressed-sparse-row view of the graph: adjacency grouped by
// source node. RowPointers has NodeCount+1 entries; the out-edges of node i
// are ColIndices[RowPointers[i]:RowPointers[i+1]] with parallel Kinds.
type CSR struct {
	RowPointers []int32
	ColIndices  []int32
	Kinds       []byte
}

// CSC is the transposed view: adjacency grouped by destination node.
type CSC struct {
	ColPointers []int32
	RowIndices  []int32
	Kinds       []byte
}

// OutDegree returns the number of outgoing edges of node i.
func (m *CSR) OutDegree(i int32) int32 {
	if int(i) < 0 || int(i)+1 >= len(m.RowPointers) {
		return 0
	}
	return m.RowPointers[i+1] - m.RowPointers[i]
}

// Out iterates the (neighbour, kind) pairs for the outgoing edges of node i.
func (m *CSR) Out(i int32) func(yield func(other int32, kind Kind) bool) {
	return func(yield func(other int32, kind Kind) bool) {
		if int(i) < 0 || int(i)+1 >= len(m.RowPointers) {
			return
		}
		start, end := m.RowPointers[i], m.RowPointers[i+1]
		for j := start; j < end; j++ {
			if !yield(m.ColIndices[j], Kind(m.Kinds[j])) {
				return
			}
		}
	}
}

// In iterates the (neighbour, kind) pairs for the incoming edges of node i.
func (m *CSC) In(i int32) func(yield func(other int32, kind Kind) bool) {
	return func(yield func(other int32, kind Kind) bool) {
		if int(i) < 0 || int(i)+1 >= len(m.ColPointers) {
			return
		}
		start, end := m.ColPointers[i], m.ColPointers[i+1]
		for j := start; j < end; j++ {
			if !yield(m.RowIndices[j], Kind(m.Kinds[j])) {
				return
			}
		}
	}
}

func writeCSR(w io.Writer, nodeCount int, m *CSR) error {
	return writeSparse(w, csrMagic, nodeCount, m.RowPointers, m.ColIndices, m.Kinds)
}

func writeCSC(w io.Writer, nodeCount int, m *CSC) error {
	return writeSparse(w, cscMagic, nodeCount, m.ColPointers, m.RowIndices, m.Kinds)
}

// writeSparse implements the shared binary layout described in §6 of
// SPEC_FULL.md: magic, version, node_count, edge_count, pointers, indices,
// kinds_length, kinds. CSR and CSC differ only in which arrays (row/col vs.
// col/row) fill the "pointers"/"indices" slots and in their magic.
func writeSparse(w io.Writer, magic [4]byte, nodeCount int, pointers, indices []int32, kinds []byte) error {
	edgeCount := len(indices)
	if len(pointers) != nodeCount+1 {
		return fmt.Errorf("graph: writeSparse: pointers length %d != node_count+1 (%d)", len(pointers), nodeCount+1)
	}
	if len(kinds) != edgeCount {
		return fmt.Errorf("graph: writeSparse: %w: have %d kinds, %d edges", ErrKindsLength, len(kinds), edgeCount)
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(magic[:]); err != nil {
		return err
	}
	if err := writeI32(bw, formatVersion); err != nil {
		return err
	}
	if err := writeI32(bw, int32(nodeCount)); err != nil {
		return err
	}
	if err := writeI32(bw, int32(edgeCount)); err != nil {
		return err
	}
	for _, p := range pointers {
		if err := writeI32(bw, p); err != nil {
			return err
		}
	}
	for _, idx := range indices {
		if err := writeI32(bw, idx); err != nil {
			return err
		}
	}
	if err := writeI32(bw, int32(edgeCount)); err != nil { // kinds_length
		return err
	}
	if _, err := bw.Write(kinds); err != nil {
		return err
	}
	return bw.Flush()
}

func writeI32(w io.Writer, v int32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v))
	_, err := w.Write(buf[:])
	return err
}

func readCSR(r io.Reader) (*CSR, int, error) {
	nodeCount, _, pointers, indices, kinds, err := readSparse(r, csrMagic)
	if err != nil {
		return nil, 0, err
	}
	return &CSR{RowPointers: pointers, ColIndices: indices, Kinds: kinds}, nodeCount, nil
}

func readCSC(r io.Reader) (*CSC, int, error) {
	nodeCount, _, pointers, indices, kinds, err := readSparse(r, cscMagic)
	if err != nil {
		return nil, 0, err
	}
	return &CSC{ColPointers: pointers, RowIndices: indices, Kinds: kinds}, nodeCount, nil
}

func readSparse(r io.Reader, wantMagic [4]byte) (nodeCount, edgeCount int, pointers, indices []int32, kinds []byte, err error) {
	br := bufio.NewReader(r)

	var magic [4]byte
	if _, err = io.ReadFull(br, magic[:]); err != nil {
		err = fmt.Errorf("graph: reading magic: %w", errJoinTruncated(err))
		return
	}
	if magic != wantMagic {
		err = fmt.Errorf("%w: got %q want %q", ErrBadMagic, magic, wantMagic)
		return
	}

	version, err := readI32(br)
	if err != nil {
		return
	}
	if version != formatVersion {
		err = fmt.Errorf("%w: got %d want %d", ErrVersionMismatch, version, formatVersion)
		return
	}

	nc, err := readI32(br)
	if err != nil {
		return
	}
	ec, err := readI32(br)
	if err != nil {
		return
	}
	nodeCount, edgeCount = int(nc), int(ec)

	pointers = make([]int32, nodeCount+1)
	for i := range pointers {
		if pointers[i], err = readI32(br); err != nil {
			return
		}
	}
	indices = make([]int32, edgeCount)
	for i := range indices {
		if indices[i], err = readI32(br); err != nil {
			return
		}
	}
	kindsLength, err := readI32(br)
	if err != nil {
		return
	}
	if int(kindsLength) != edgeCount {
		err = fmt.Errorf("%w: header says %d, kinds_length says %d", ErrKindsLength, edgeCount, kindsLength)
		return
	}
	kinds = make([]byte, edgeCount)
	if _, err = io.ReadFull(br, kinds); err != nil {
		err = fmt.Errorf("graph: reading kinds: %w", errJoinTruncated(err))
		return
	}
	return
}

func readI32(r io.Reader) (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("graph: reading int32: %w", errJoinTruncated(err))
	}
	return int32(binary.LittleEndian.Uint32(buf[:])), nil
}

func errJoinTruncated(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	return err
}

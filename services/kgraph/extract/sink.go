package extract

import "github.com/h7lu/modkg/services/kgraph/graph"

// sink is the lock-free concurrent edge collector described in §5: each
// worker owns one shard and appends to it without contention; shards are
// only read once every worker assigned to the current phase has returned
// (the errgroup.Wait() barrier in runPhase). Emitting edges never takes a
// shared mutex.
type sink struct {
	shards [][]graph.Edge
}

func newSink(shardCount int) *sink {
	if shardCount < 1 {
		shardCount = 1
	}
	return &sink{shards: make([][]graph.Edge, shardCount)}
}

func (s *sink) emit(shard int, edges ...graph.Edge) {
	s.shards[shard] = append(s.shards[shard], edges...)
}

// drain returns every edge collected across all shards. Called only after
// the phase barrier; safe because no worker is still writing.
func (s *sink) drain() []graph.Edge {
	var total int
	for _, shard := range s.shards {
		total += len(shard)
	}
	all := make([]graph.Edge, 0, total)
	for _, shard := range s.shards {
		all = append(all, shard...)
	}
	return all
}

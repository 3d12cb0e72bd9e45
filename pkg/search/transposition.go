package search

import (
	"context"

	"github.com/seekerror/seer/pkg/board"
	"github.com/seekerror/seer/pkg/nnue"
	"github.com/seekerror/seer/pkg/tt"
	"github.com/seekerror/logw"
)

// TranspositionTable is the subset of *tt.Table's surface the search core depends on.
// Defined here rather than consumed directly from pkg/tt so a worker only depends on the
// narrow probe/store/age contract, matching how the teacher's pkg/search isolates its own
// TranspositionTable interface from pkg/eval's table implementation.
type TranspositionTable interface {
	Probe(hash board.ZobristHash) (tt.Entry, bool)
	Store(hash board.ZobristHash, m board.Move, score, eval nnue.Score, depth int, bound tt.Bound)
	Prefetch(hash board.ZobristHash)
	Clear()
	AdvanceAge()
	Occupancy() float64
	String() string
}

// TranspositionTableFactory constructs a TranspositionTable sized to sizeBytes. Engines
// plug in a different factory in tests to avoid allocating a full-size table.
type TranspositionTableFactory func(ctx context.Context, sizeBytes uint64) TranspositionTable

// NewTranspositionTable is the default TranspositionTableFactory, backed by pkg/tt's
// lock-free clustered table.
func NewTranspositionTable(ctx context.Context, sizeBytes uint64) TranspositionTable {
	logw.Infof(ctx, "Allocating transposition table: %v MB", sizeBytes>>20)
	return tt.NewTable(sizeBytes)
}

// NoTranspositionTable is a TranspositionTable that stores nothing, used when the engine
// is configured with Hash=0.
type NoTranspositionTable = tt.NoTable

package search_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/seekerror/seer/pkg/board"
	"github.com/seekerror/seer/pkg/nnue"
	"github.com/seekerror/seer/pkg/search"
	"github.com/seekerror/seer/pkg/tt"
	"github.com/stretchr/testify/assert"
)

func TestTranspositionTableReadWrite(t *testing.T) {
	table := search.NewTranspositionTable(context.Background(), 1<<20)

	hash := board.ZobristHash(rand.Uint64())
	_, ok := table.Probe(hash)
	assert.False(t, ok)

	m := board.Move{From: board.G4, To: board.G8, Promotion: board.Queen}
	table.Store(hash, m, nnue.HeuristicScore(25), nnue.HeuristicScore(25), 4, tt.BoundExact)

	entry, ok := table.Probe(hash)
	assert.True(t, ok)
	assert.Equal(t, m, entry.Move)
	assert.Equal(t, tt.BoundExact, entry.Bound)
	assert.Equal(t, 4, entry.Depth)
}

func TestTranspositionTableOccupancyGrows(t *testing.T) {
	table := search.NewTranspositionTable(context.Background(), 1<<12)
	assert.Equal(t, float64(0), table.Occupancy())

	for i := 0; i < 200; i++ {
		hash := board.ZobristHash(rand.Uint64())
		table.Store(hash, board.Move{}, nnue.ZeroScore, nnue.ZeroScore, 1, tt.BoundExact)
	}
	assert.Greater(t, table.Occupancy(), float64(0))
}

func TestTranspositionTableAdvanceAgeResetsOccupancy(t *testing.T) {
	table := search.NewTranspositionTable(context.Background(), 1<<12)
	for i := 0; i < 200; i++ {
		hash := board.ZobristHash(rand.Uint64())
		table.Store(hash, board.Move{}, nnue.ZeroScore, nnue.ZeroScore, 1, tt.BoundExact)
	}
	table.AdvanceAge()
	assert.Equal(t, float64(0), table.Occupancy())
}

func TestNoTranspositionTableStoresNothing(t *testing.T) {
	var table search.TranspositionTable = search.NoTranspositionTable{}
	table.Store(board.ZobristHash(1), board.Move{}, nnue.ZeroScore, nnue.ZeroScore, 4, tt.BoundExact)

	_, ok := table.Probe(board.ZobristHash(1))
	assert.False(t, ok)
	assert.Equal(t, float64(0), table.Occupancy())
}

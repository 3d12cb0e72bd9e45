package search_test

import (
	"context"
	"testing"
	"time"

	"github.com/seekerror/seer/pkg/board"
	"github.com/seekerror/seer/pkg/board/fen"
	"github.com/seekerror/seer/pkg/nnue"
	"github.com/seekerror/seer/pkg/search"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolGoCompletesAtDepthLimit(t *testing.T) {
	zt := board.NewZobristTable(0)
	b := newTestBoard(t, fen.Initial)
	tbl := search.NewTranspositionTable(context.Background(), 1<<20)
	pool := search.NewPool(tbl, nnue.NewZeroWeights(), zt, 2, nnue.Random{})

	_, out := pool.Go(context.Background(), b, search.Limits{Depth: lang.Some(uint(3))})

	var last search.PV
	for pv := range out {
		last = pv
	}

	require.NotEmpty(t, last.Moves)
	assert.LessOrEqual(t, last.Depth, 3)
	assert.False(t, last.Score.IsInvalid())
}

func TestPoolHaltStopsSearchEarly(t *testing.T) {
	zt := board.NewZobristTable(0)
	b := newTestBoard(t, fen.Initial)
	tbl := search.NewTranspositionTable(context.Background(), 1<<20)
	pool := search.NewPool(tbl, nnue.NewZeroWeights(), zt, 1, nnue.Random{})

	handle, out := pool.Go(context.Background(), b, search.Limits{Infinite: true})

	// Let at least one depth complete before halting.
	select {
	case <-out:
	case <-time.After(2 * time.Second):
		t.Fatal("no PV reported before timeout")
	}

	pv := handle.Halt()
	require.NotEmpty(t, pv.Moves)

	for range out {
		// Drain until the pool's goroutines finish closing it.
	}
}

func TestPoolGoCompletesAfterResize(t *testing.T) {
	zt := board.NewZobristTable(0)
	tbl := search.NewTranspositionTable(context.Background(), 1<<20)
	pool := search.NewPool(tbl, nnue.NewZeroWeights(), zt, 1, nnue.Random{})
	pool.Resize(4)

	b := newTestBoard(t, fen.Initial)
	_, out := pool.Go(context.Background(), b, search.Limits{Depth: lang.Some(uint(2))})
	for range out {
	}
}

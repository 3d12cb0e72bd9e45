package nnue

import (
	"testing"

	"github.com/seekerror/seer/pkg/board"
	"github.com/seekerror/seer/pkg/board/fen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testWeights returns a deterministic, non-degenerate set of weights: every feature row is
// distinct, so an incremental update that touches the wrong row or perspective shows up as
// a mismatch against a fresh rebuild, unlike an all-zero network.
func testWeights() *Weights {
	w := &Weights{ftWeights: make([]int16, InputDim*HiddenDim)}
	for idx := 0; idx < InputDim; idx++ {
		row := w.ftWeights[idx*HiddenDim : (idx+1)*HiddenDim]
		for i := range row {
			row[i] = int16((idx*7+i*3)%997 - 498)
		}
	}
	for i := range w.ftBiases {
		w.ftBiases[i] = int16(i%11 - 5)
	}
	return w
}

func TestAccumulatorIncrementalMatchesRebuild(t *testing.T) {
	const kiwipete = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"

	w := testWeights()
	zt := board.NewZobristTable(1)

	pos, turn, np, fm, err := fen.Decode(kiwipete)
	require.NoError(t, err)

	b := board.NewBoard(zt, pos, turn, np, fm)
	ev := NewEvaluator(w, zt, pos, 16, Random{})

	// Exercises a king-side castle for each side, a capture and the recapture: the cases
	// that drive a full rebuild (castle, king move) as well as a plain incremental update.
	sequence := []string{"e1g1", "e8g8", "d5e6", "f7e6"}

	for _, uci := range sequence {
		parsed, err := board.ParseMove(uci)
		require.NoError(t, err)

		var full board.Move
		found := false
		for _, cand := range b.Position().PseudoLegalMoves(b.Turn()) {
			if cand.SameFromTo(parsed) {
				full, found = cand, true
				break
			}
		}
		require.True(t, found, uci)

		prev := b.Position()
		require.True(t, b.PushMove(full), uci)
		ev.Push(prev, b.Position(), full)

		var want Accumulator
		want.Init(w, b.Position())

		assert.Equal(t, want, *ev.stack.Current(), "after %v", uci)
	}

	for range sequence {
		ev.Pop()
		b.PopMove()
	}

	var want Accumulator
	want.Init(w, b.Position())
	assert.Equal(t, want, *ev.stack.Current(), "after full unwind")
}

func TestAccumulatorKingCaptureMatchesRebuild(t *testing.T) {
	// A king move that is also a capture exercises the branch where the mover's
	// perspective is rebuilt but the opponent's perspective must still have the
	// captured piece's feature row explicitly removed.
	const position = "8/8/8/3k4/8/4p3/4K3/8 w - - 0 1"

	w := testWeights()
	zt := board.NewZobristTable(1)

	pos, turn, np, fm, err := fen.Decode(position)
	require.NoError(t, err)

	b := board.NewBoard(zt, pos, turn, np, fm)
	ev := NewEvaluator(w, zt, pos, 4, Random{})

	parsed, err := board.ParseMove("e2e3")
	require.NoError(t, err)

	var full board.Move
	found := false
	for _, cand := range b.Position().PseudoLegalMoves(b.Turn()) {
		if cand.SameFromTo(parsed) {
			full, found = cand, true
			break
		}
	}
	require.True(t, found)
	require.True(t, full.IsCapture())

	prev := b.Position()
	require.True(t, b.PushMove(full))
	ev.Push(prev, b.Position(), full)

	var want Accumulator
	want.Init(w, b.Position())

	assert.Equal(t, want, *ev.stack.Current())
}

func TestAccumulatorCacheBootstrap(t *testing.T) {
	w := testWeights()

	pos, _, _, _, err := fen.Decode(fen.Initial)
	require.NoError(t, err)

	var direct Accumulator
	direct.RebuildSide(w, pos, board.White)

	cache := NewPawnKingCache()
	var cached Accumulator
	cached.RebuildSideWithCache(w, pos, board.White, cache, board.ZobristHash(42))

	assert.Equal(t, direct.v[board.White], cached.v[board.White])

	// Second call for the same sub-hash must hit the cache and still agree.
	var cachedAgain Accumulator
	cachedAgain.RebuildSideWithCache(w, pos, board.White, cache, board.ZobristHash(42))
	assert.Equal(t, direct.v[board.White], cachedAgain.v[board.White])
}

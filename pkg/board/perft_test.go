package board_test

import (
	"testing"

	"github.com/seekerror/seer/pkg/board"
	"github.com/seekerror/seer/pkg/board/fen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// perft counts the leaves of the legal-move tree to the given depth: the standard
// move-generator correctness check, cross-checked against well-known reference values.
func perft(pos *board.Position, turn board.Color, depth int) int64 {
	if depth == 0 {
		return 1
	}

	var nodes int64
	for _, m := range pos.PseudoLegalMoves(turn) {
		if next, ok := pos.Move(m); ok {
			nodes += perft(next, turn.Opponent(), depth-1)
		}
	}
	return nodes
}

func TestPerft(t *testing.T) {
	const kiwipete = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"

	tests := []struct {
		name     string
		fen      string
		depth    int
		expected int64
	}{
		{"startpos/1", fen.Initial, 1, 20},
		{"startpos/2", fen.Initial, 2, 400},
		{"startpos/3", fen.Initial, 3, 8902},
		{"startpos/4", fen.Initial, 4, 197281},
		{"startpos/5", fen.Initial, 5, 4865609},
		{"kiwipete/1", kiwipete, 1, 48},
		{"kiwipete/2", kiwipete, 2, 2039},
		{"kiwipete/3", kiwipete, 3, 97862},
		{"kiwipete/4", kiwipete, 4, 4085603},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, turn, _, _, err := fen.Decode(tt.fen)
			require.NoError(t, err)

			assert.Equal(t, tt.expected, perft(pos, turn, tt.depth))
		})
	}
}

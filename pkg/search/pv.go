// Package search implements principal variation search over board.Board positions,
// scored by a pkg/nnue evaluator and accelerated by a pkg/tt transposition table.
package search

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/seekerror/seer/pkg/board"
	"github.com/seekerror/seer/pkg/nnue"
)

// ErrHalted indicates the search was stopped before completing the requested depth.
var ErrHalted = errors.New("search halted")

// PV represents the principal variation found at some completed search depth.
type PV struct {
	Depth   int
	SelDepth int
	Moves   []board.Move
	Score   nnue.Score
	Nodes   uint64
	Time    time.Duration
	Hash    float64 // transposition table occupancy [0;1]
}

func (p PV) String() string {
	return fmt.Sprintf("depth=%v seldepth=%v score=%v nodes=%v time=%v hash=%v%% pv=%v", p.Depth, p.SelDepth, p.Score, p.Nodes, p.Time, int(100*p.Hash), formatMoves(p.Moves))
}

func formatMoves(moves []board.Move) string {
	strs := make([]string, len(moves))
	for i, m := range moves {
		strs[i] = m.String()
	}
	return strings.Join(strs, " ")
}

func (p PV) BestMove() (board.Move, bool) {
	if len(p.Moves) == 0 {
		return board.Move{}, false
	}
	return p.Moves[0], true
}

func (p PV) PonderMove() (board.Move, bool) {
	if len(p.Moves) < 2 {
		return board.Move{}, false
	}
	return p.Moves[1], true
}

package search

import (
	"context"

	"github.com/seekerror/seer/pkg/board"
	"github.com/seekerror/seer/pkg/nnue"
	"github.com/seekerror/stdlib/pkg/util/contextx"
)

// nullMoveMinDepth is the shallowest depth at which null-move pruning is attempted.
const nullMoveMinDepth = 3

// futilityMaxDepth bounds how deep futility pruning is allowed to skip a move outright.
const futilityMaxDepth = 6

// Worker runs principal variation search over one Board, with its own NNUE accumulator
// stack, history table and search stack. Lazy SMP runs one Worker per goroutine, all
// sharing a single transposition table as the only cross-worker communication.
type Worker struct {
	id    int
	ctx   context.Context
	board *board.Board
	eval  *nnue.Evaluator
	tt    TranspositionTable
	hist  *History
	stack *Stack

	nodes    uint64
	selDepth int
	maxPly   int
}

// NewWorker returns a worker ready to search from b, sharing tt with any sibling workers.
func NewWorker(id int, b *board.Board, ev *nnue.Evaluator, tt TranspositionTable, maxPly int) *Worker {
	return &Worker{
		id:     id,
		board:  b,
		eval:   ev,
		tt:     tt,
		hist:   NewHistory(),
		stack:  NewStack(maxPly),
		maxPly: maxPly,
	}
}

func (w *Worker) halted() bool {
	return contextx.IsCancelled(w.ctx)
}

// Nodes returns the number of nodes visited since the last Reset.
func (w *Worker) Nodes() uint64 {
	return w.nodes
}

// SelDepth returns the deepest ply reached since the last Reset (includes quiescence).
func (w *Worker) SelDepth() int {
	return w.selDepth
}

// Reset zeroes the node/seldepth counters ahead of a new iterative-deepening depth.
func (w *Worker) Reset() {
	w.nodes = 0
	w.selDepth = 0
}

// SearchRoot runs a full-width search from the root to depth plies, within [alpha, beta],
// and returns the score and principal variation. ctx governs cancellation for this call.
func (w *Worker) SearchRoot(ctx context.Context, depth int, alpha, beta nnue.Score) (nnue.Score, []board.Move) {
	w.ctx = ctx
	score, pv := w.pvs(depth, alpha, beta, 0, true)
	return score, pv
}

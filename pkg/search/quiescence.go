package search

import (
	"sort"

	"github.com/seekerror/seer/pkg/board"
	"github.com/seekerror/seer/pkg/nnue"
)

// quiesce resolves captures (and, when in check, all evasions) until the position is
// quiet, so the static evaluation at the search frontier is not corrupted by a pending
// recapture. Returns the score from the side-to-move's perspective.
func (w *Worker) quiesce(alpha, beta nnue.Score, ply int) nnue.Score {
	if w.halted() {
		return nnue.InvalidScore
	}
	w.nodes++
	if ply > w.selDepth {
		w.selDepth = ply
	}

	turn := w.board.Turn()
	inCheck := w.board.Position().IsChecked(turn)

	var standPat nnue.Score
	if !inCheck {
		standPat = w.eval.Evaluate(turn)
		if standPat >= beta {
			return standPat
		}
		if standPat > alpha {
			alpha = standPat
		}
	}

	var moves []board.Move
	if inCheck {
		moves = w.board.Position().PseudoLegalMoves(turn)
	} else {
		moves = w.board.Position().NoisyMoves(turn)
		sort.SliceStable(moves, func(i, j int) bool {
			return w.board.Position().See(moves[i]) > w.board.Position().See(moves[j])
		})
	}

	best := standPat
	if inCheck {
		// No stand-pat when in check: the side to move may have no move that avoids
		// losing material, and 0 is not a safe floor for a forced-losing position.
		best = nnue.NegInfScore
	}
	hasLegalMove := false
	for _, m := range moves {
		if !inCheck && m.IsCapture() && w.board.Position().See(m) < 0 {
			continue // losing capture: never worth resolving in qsearch
		}

		prev := w.board.Position()
		if !w.board.PushMove(m) {
			continue
		}
		hasLegalMove = true

		w.eval.Push(prev, w.board.Position(), m)
		score := w.quiesce(beta.Negate(), alpha.Negate(), ply+1)
		w.eval.Pop()
		w.board.PopMove()

		if score.IsInvalid() {
			return score // propagate abort: never treated as a real leaf score
		}
		score = nnue.IncrementMateDistance(score).Negate()

		if score > best {
			best = score
			if score > alpha {
				alpha = score
			}
		}
		if alpha >= beta {
			break
		}
	}

	if inCheck && !hasLegalMove {
		return nnue.Mate(0).Negate()
	}
	return best
}

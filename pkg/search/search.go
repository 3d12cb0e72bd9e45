package search

import (
	"github.com/seekerror/seer/pkg/board"
	"github.com/seekerror/seer/pkg/nnue"
	"github.com/seekerror/seer/pkg/tt"
)

// Tuning constants. Per spec, these are compile-time parameters chosen to produce a
// reasonable engine rather than fixed values derived from any particular source.
const (
	// maxCheckExtensionPly caps how many plies of check extensions can stack up, so a
	// long sequence of checks cannot run a worker's recursion away unboundedly.
	maxCheckExtensionPly = 64

	razorMaxDepth    = 3
	lmrMinDepth      = 3
	lmrMinMoveIndex  = 3
	seePruneMaxDepth = 8

	// iirMinDepth is the shallowest depth at which a missing hash move triggers an
	// internal iterative reduction instead of a full-depth blind search.
	iirMinDepth = 4
)

func razorMargin(depth int) nnue.Score {
	return nnue.Score(175 + 150*depth)
}

func futilityMargin(depth int) nnue.Score {
	return nnue.Score(90 + 70*depth)
}

// lmrReduction returns how many plies to shave off a late quiet move's search, scaling
// with both how deep the remaining search is and how late the move was ordered.
func lmrReduction(depth, moveIndex int) int {
	if depth < lmrMinDepth || moveIndex < lmrMinMoveIndex {
		return 0
	}
	r := 1 + (depth-lmrMinDepth)/3 + (moveIndex-lmrMinMoveIndex)/6
	if r > depth-1 {
		r = depth - 1
	}
	if r < 0 {
		r = 0
	}
	return r
}

func storedEval(e nnue.Score) nnue.Score {
	if e.IsInvalid() {
		return nnue.ZeroScore
	}
	return e
}

// child runs the search one ply deeper for the move just made, translating the parent's
// (alpha, beta) window into the child's negated perspective and folding the child's
// result back: mate distance is stepped and the score is negated. The halted sentinel is
// passed through untouched so callers can abort without touching the PV or the table.
func (w *Worker) child(depth int, parentAlpha, parentBeta nnue.Score, ply int, isPV bool) (nnue.Score, []board.Move) {
	score, line := w.pvs(depth, parentBeta.Negate(), parentAlpha.Negate(), ply, isPV)
	if score.IsInvalid() {
		return score, nil
	}
	return nnue.IncrementMateDistance(score).Negate(), line
}

// pvs is the alpha-beta search core: principal variation search with null-move pruning,
// razoring, futility and SEE pruning, late move reductions, and a transposition table at
// every node. Returns the score from ply's side-to-move perspective and, for nodes worth
// reporting, the principal variation from this node down. A nnue.InvalidScore return is
// the cooperative-cancellation sentinel: the caller must propagate it immediately without
// writing to the table or touching move ordering state.
func (w *Worker) pvs(depth int, alpha, beta nnue.Score, ply int, isPV bool) (nnue.Score, []board.Move) {
	if w.halted() {
		return nnue.InvalidScore, nil
	}
	if ply > w.selDepth {
		w.selDepth = ply
	}

	if ply > 0 {
		if w.board.Result().Outcome == board.Draw {
			return nnue.ZeroScore, nil
		}
		// Mate-distance pruning: no line through this node can matter if a shorter mate
		// is already guaranteed elsewhere in the tree.
		if m := nnue.Mate(ply).Negate(); alpha < m {
			alpha = m
		}
		if m := nnue.Mate(ply); beta > m {
			beta = m
		}
		if alpha >= beta {
			return alpha, nil
		}
	}

	if depth <= 0 {
		return w.quiesce(alpha, beta, ply), nil
	}

	w.nodes++

	turn := w.board.Turn()
	frame := w.stack.At(ply)
	frame.PVNode = isPV
	frame.InCheck = w.board.Position().IsChecked(turn)
	if frame.InCheck && ply < maxCheckExtensionPly {
		depth++
	}

	var prev, prev2 board.Move
	if ply >= 1 {
		prev = frame.Move
	}
	if ply >= 2 {
		prev2 = w.stack.At(ply - 1).Move
	}

	hash := w.board.Hash()
	w.tt.Prefetch(hash)

	hashMove := board.NullMove
	if entry, ok := w.tt.Probe(hash); ok {
		hashMove = entry.Move
		if !isPV && entry.Depth >= depth {
			score := tt.ScoreFromTable(entry.Score, ply)
			switch {
			case entry.Bound == tt.BoundExact:
				return score, nil
			case entry.Bound == tt.BoundLower && score >= beta:
				return score, nil
			case entry.Bound == tt.BoundUpper && score <= alpha:
				return score, nil
			}
		}
	}

	if frame.InCheck {
		frame.Eval = nnue.InvalidScore
	} else {
		frame.Eval = w.eval.Evaluate(turn)
	}
	improving := w.stack.Improving(ply)

	// Razoring: the position looks so bad that only resolving captures is worth the time.
	if !isPV && !frame.InCheck && depth <= razorMaxDepth && !frame.Eval.IsInvalid() && frame.Eval+razorMargin(depth) <= alpha {
		score := w.quiesce(alpha, beta, ply)
		if score.IsInvalid() || score <= alpha {
			return score, nil
		}
	}

	// Null-move pruning: if passing the move entirely still leaves the opponent unable to
	// beat beta, the real position is at least as good and can be pruned outright.
	if !isPV && ply > 0 && !frame.InCheck && depth >= nullMoveMinDepth && !frame.Eval.IsInvalid() &&
		frame.Eval >= beta && !prev.IsNull() && w.board.Position().HasNonPawnMaterial(turn) {

		r := 3 + depth/6
		w.stack.At(ply + 1).Move = board.NullMove
		w.board.PushNullMove()
		score, _ := w.child(depth-1-r, beta-1, beta, ply+1, false)
		w.board.PopNullMove()

		if score.IsInvalid() {
			return score, nil
		}
		if score >= beta {
			return beta, nil
		}
	}

	// Internal iterative reduction: no hash move to trust at this depth, so shave a ply
	// off rather than doing a full-depth search blind.
	if depth >= iirMinDepth && hashMove.IsNull() && !frame.InCheck {
		depth--
	}
	if depth <= 0 {
		return w.quiesce(alpha, beta, ply), nil
	}

	var counter board.Move
	if !prev.IsNull() {
		counter, _ = w.hist.Counter(prev)
	}
	order := NewMoveOrder(w.board.Position(), turn, hashMove, frame.Killers, w.hist, counter)

	origAlpha := alpha
	bestScore := nnue.NegInfScore
	var bestMove board.Move
	var pv []board.Move
	var triedQuiets []board.Move
	hasLegalMove := false
	moveIndex := 0

	for {
		m, ok := order.Next()
		if !ok {
			break
		}

		quiet := !m.IsCapture() && !m.IsPromotion()

		if quiet && !isPV && !frame.InCheck && moveIndex > 0 {
			if depth <= futilityMaxDepth && !frame.Eval.IsInvalid() && frame.Eval+futilityMargin(depth) <= alpha {
				continue // futility: static eval plus margin can't reach alpha
			}
			// See scores every non-capture as 0, so this check does not prune any quiet move.
			if depth <= seePruneMaxDepth && w.board.Position().See(m) < -20*depth {
				continue
			}
		}

		prevPos := w.board.Position()
		if !w.board.PushMove(m) {
			continue
		}
		hasLegalMove = true
		moveIndex++

		w.stack.At(ply + 1).Move = m
		w.eval.Push(prevPos, w.board.Position(), m)

		r := 0
		if quiet && !frame.InCheck {
			r = lmrReduction(depth, moveIndex)
			if isPV && r > 0 {
				r--
			}
			if improving && r > 0 {
				r--
			}
		}

		var score nnue.Score
		var line []board.Move
		switch {
		case moveIndex == 1:
			score, line = w.child(depth-1, alpha, beta, ply+1, isPV)
		default:
			score, line = w.child(depth-1-r, alpha, alpha+1, ply+1, false)
			if !score.IsInvalid() && score > alpha && r > 0 {
				score, line = w.child(depth-1, alpha, alpha+1, ply+1, false)
			}
			if !score.IsInvalid() && score > alpha && score < beta {
				score, line = w.child(depth-1, alpha, beta, ply+1, true)
			}
		}

		w.eval.Pop()
		w.board.PopMove()

		if score.IsInvalid() {
			return score, nil
		}

		if quiet {
			triedQuiets = append(triedQuiets, m)
		}

		if score > bestScore {
			bestScore = score
			bestMove = m
			if score > alpha {
				alpha = score
				pv = append([]board.Move{m}, line...)
			}
		}

		if alpha >= beta {
			if quiet {
				w.stack.AddKiller(ply, m)
				w.hist.Update(turn, m, triedQuiets, depth, prev, prev2)
			}
			w.tt.Store(hash, bestMove, tt.ScoreToTable(beta, ply), storedEval(frame.Eval), depth, tt.BoundLower)
			return beta, pv
		}
	}

	if !hasLegalMove {
		result := w.board.AdjudicateNoLegalMoves()
		if result.Reason == board.Checkmate {
			return nnue.Mate(0).Negate(), nil
		}
		return nnue.ZeroScore, nil
	}

	bound := tt.BoundExact
	if bestScore <= origAlpha {
		bound = tt.BoundUpper
	}
	w.tt.Store(hash, bestMove, tt.ScoreToTable(bestScore, ply), storedEval(frame.Eval), depth, bound)

	return bestScore, pv
}

package nnue

import "github.com/seekerror/seer/pkg/board"

// Evaluator ties together the weights, an accumulator stack parallel to the search stack,
// and a per-worker pawn/king cache. Each search worker owns one: weights are shared by
// pointer, but the accumulator stack and cache are worker-local mutable state.
type Evaluator struct {
	w     *Weights
	zt    *board.ZobristTable
	stack *AccumulatorStack
	cache *PawnKingCache
	noise Random
}

// NewEvaluator returns an evaluator initialized at root, ready to track search makes/unmakes.
func NewEvaluator(w *Weights, zt *board.ZobristTable, root *board.Position, maxPly int, noise Random) *Evaluator {
	return &Evaluator{
		w:     w,
		zt:    zt,
		stack: NewAccumulatorStack(w, root, maxPly),
		cache: NewPawnKingCache(),
		noise: noise,
	}
}

// Push updates the accumulator for the child position reached by applying m to prev,
// incrementally when possible and with a full (cache-assisted) rebuild when the moved
// piece is a king, per the standard NNUE refresh rule.
func (e *Evaluator) Push(prev, next *board.Position, m board.Move) {
	acc := e.stack.Push()

	if m.Piece == board.King {
		mover, _, _ := prev.Square(m.From)
		e.rebuildSide(acc, next, mover)
		if m.Type == board.Capture {
			// The rebuild above only refreshes the mover's own perspective; the
			// opponent's perspective is inherited from the parent and still carries
			// the captured piece's feature row, since a king move never touches it.
			opp := mover.Opponent()
			acc.removeFor(e.w, opp, next.KingSquare(opp), opp, m.Capture, m.To)
		}
		if rookFrom, rookTo, ok := m.CastlingRookMove(); ok {
			// The castling rook moves too, which the opponent's perspective must also see.
			opp := mover.Opponent()
			acc.removeFor(e.w, opp, next.KingSquare(opp), mover, board.Rook, rookFrom)
			acc.addFor(e.w, opp, next.KingSquare(opp), mover, board.Rook, rookTo)
		}
		return
	}

	whiteKing, blackKing := next.KingSquare(board.White), next.KingSquare(board.Black)
	mover, _, _ := prev.Square(m.From)

	acc.Remove(e.w, whiteKing, blackKing, mover, m.Piece, m.From)

	switch {
	case m.IsEnPassant():
		epc, _ := m.EnPassantCapture()
		acc.Remove(e.w, whiteKing, blackKing, mover.Opponent(), board.Pawn, epc)
		acc.Add(e.w, whiteKing, blackKing, mover, m.Piece, m.To)
	case m.Type == board.Capture:
		acc.Remove(e.w, whiteKing, blackKing, mover.Opponent(), m.Capture, m.To)
		acc.Add(e.w, whiteKing, blackKing, mover, m.Piece, m.To)
	case m.IsPromotion():
		if m.Type == board.CapturePromotion {
			acc.Remove(e.w, whiteKing, blackKing, mover.Opponent(), m.Capture, m.To)
		}
		acc.Add(e.w, whiteKing, blackKing, mover, m.Promotion, m.To)
	case m.IsCastle():
		acc.Add(e.w, whiteKing, blackKing, mover, m.Piece, m.To)
		from, to, _ := m.CastlingRookMove()
		acc.Remove(e.w, whiteKing, blackKing, mover, board.Rook, from)
		acc.Add(e.w, whiteKing, blackKing, mover, board.Rook, to)
	default:
		acc.Add(e.w, whiteKing, blackKing, mover, m.Piece, m.To)
	}
}

func (e *Evaluator) rebuildSide(acc *Accumulator, pos *board.Position, perspective board.Color) {
	pkHash := e.zt.PawnKingHash(pos, perspective)
	acc.RebuildSideWithCache(e.w, pos, perspective, e.cache, pkHash)
}

// Pop discards the accumulator for the current ply, returning to the parent position.
func (e *Evaluator) Pop() {
	e.stack.Pop()
}

// Evaluate scores the current top-of-stack position from turn's perspective, including
// configured noise.
func (e *Evaluator) Evaluate(turn board.Color) Score {
	return e.w.Evaluate(e.stack.Current(), turn) + e.noise.Noise()
}

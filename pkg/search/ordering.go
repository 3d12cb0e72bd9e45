package search

import (
	"sort"

	"github.com/seekerror/seer/pkg/board"
)

// MoveOrder generates the pseudo-legal moves of a position in staged priority order:
// the transposition table move first, then winning/equal captures and promotions by
// MVV-LVA, then killer quiets, then the counter-move reply, then the remaining quiets by
// history score, and finally
// losing captures (negative SEE) last so they are only tried if nothing else works out.
type MoveOrder struct {
	moves []board.Move
	idx   int
}

// NewMoveOrder generates and orders all pseudo-legal moves for turn in pos.
func NewMoveOrder(pos *board.Position, turn board.Color, hashMove board.Move, killers [2]board.Move, hist *History, counter board.Move) *MoveOrder {
	all := pos.PseudoLegalMoves(turn)

	rank := func(m board.Move) int {
		switch {
		case !hashMove.IsNull() && m.SameFromTo(hashMove):
			return 6
		case m.IsCapture() || m.IsPromotion():
			if see := pos.See(m); see >= 0 {
				return 5
			}
			return 1
		case killers[0].Equals(m) || killers[1].Equals(m):
			return 4
		case !counter.IsNull() && m.Equals(counter):
			return 3
		default:
			return 2
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		ri, rj := rank(all[i]), rank(all[j])
		if ri != rj {
			return ri > rj
		}
		switch ri {
		case 5:
			return mvvLva(all[i]) > mvvLva(all[j])
		case 1:
			return pos.See(all[i]) > pos.See(all[j])
		case 2:
			return hist.Score(turn, all[i]) > hist.Score(turn, all[j])
		default:
			return false
		}
	})

	return &MoveOrder{moves: all}
}

// mvvLva ranks a capture by most valuable victim first, then least valuable attacker.
func mvvLva(m board.Move) int {
	return 100*board.NominalValue(m.Capture) - board.NominalValue(m.Piece)
}

// Next returns the next move in priority order.
func (o *MoveOrder) Next() (board.Move, bool) {
	if o.idx >= len(o.moves) {
		return board.Move{}, false
	}
	m := o.moves[o.idx]
	o.idx++
	return m, true
}

// Remaining returns the number of moves not yet yielded.
func (o *MoveOrder) Remaining() int {
	return len(o.moves) - o.idx
}

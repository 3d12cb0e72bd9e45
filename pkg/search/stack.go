package search

import "github.com/seekerror/seer/pkg/board"
import "github.com/seekerror/seer/pkg/nnue"

// Frame carries per-ply search state that must survive recursion without being
// recomputed: the static evaluation used by pruning heuristics, the move played to reach
// this node (for counter-move lookups), killer quiets, and whether the side to move is
// in check.
type Frame struct {
	Eval    nnue.Score
	Move    board.Move
	Killers [2]board.Move
	InCheck bool
	PVNode  bool
}

// Stack is a ply-indexed array of Frames, sized once for the maximum search depth so
// recursive search never allocates on the hot path.
type Stack struct {
	frames []Frame
}

// stackHeadroom is spare capacity reserved beyond maxPly so that growing the stack during
// check extensions extends the existing backing array (via append within capacity) rather
// than reallocating it, which would invalidate *Frame pointers callers are still holding
// from an enclosing search.pvs call.
const stackHeadroom = 64

// NewStack returns a stack with room for maxPly plies beyond the root.
func NewStack(maxPly int) *Stack {
	frames := make([]Frame, maxPly+1, maxPly+1+stackHeadroom)
	return &Stack{frames: frames}
}

// At returns the frame for the given ply, growing the stack if necessary (search can
// exceed the nominal max ply during check extensions). Callers that hold a *Frame across
// a recursive call relying on At not reallocating must stay within maxPly+stackHeadroom.
func (s *Stack) At(ply int) *Frame {
	for ply >= len(s.frames) {
		s.frames = append(s.frames, Frame{})
	}
	return &s.frames[ply]
}

// Improving reports whether the static evaluation has improved since two plies ago,
// the standard signal used to scale back pruning when a side seems to be doing
// increasingly well despite having just moved into check or traded down.
func (s *Stack) Improving(ply int) bool {
	if ply < 2 {
		return true
	}
	cur, prev2 := s.At(ply), s.At(ply-2)
	if cur.InCheck {
		return false
	}
	return cur.Eval > prev2.Eval
}

// ClearKillers resets the killer moves for ply, used when a new search begins.
func (s *Stack) ClearKillers(ply int) {
	s.At(ply).Killers = [2]board.Move{}
}

// AddKiller records m as a killer at ply, displacing the older killer. Duplicate inserts
// are ignored so the two slots stay distinct.
func (s *Stack) AddKiller(ply int, m board.Move) {
	f := s.At(ply)
	if f.Killers[0].Equals(m) {
		return
	}
	f.Killers[1] = f.Killers[0]
	f.Killers[0] = m
}

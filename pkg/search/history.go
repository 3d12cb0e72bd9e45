package search

import "github.com/seekerror/seer/pkg/board"

// historyMax bounds the saturating history score so that one heuristic can never
// completely dominate move ordering regardless of how long the search has run.
const historyMax = 1 << 14

// History tracks how often a quiet move has caused a beta cutoff, indexed by the moving
// side and the move's from/to squares. It also tracks counter-move and follow-up
// responses, indexed by the move that preceded the quiet move one and two plies back
// respectively, which predict good replies without needing the full history context.
type History struct {
	butterfly [board.NumColors][board.NumSquares][board.NumSquares]int32
	counter   map[board.Move]board.Move
	followUp  map[board.Move]board.Move
}

// NewHistory returns an empty history table.
func NewHistory() *History {
	return &History{
		counter:  map[board.Move]board.Move{},
		followUp: map[board.Move]board.Move{},
	}
}

// Score returns the butterfly history score for a quiet move.
func (h *History) Score(c board.Color, m board.Move) int32 {
	return h.butterfly[c][m.From][m.To]
}

// Counter returns the recorded reply to the given move, if any.
func (h *History) Counter(prev board.Move) (board.Move, bool) {
	m, ok := h.counter[prev]
	return m, ok
}

// FollowUp returns the recorded reply to a move made two plies earlier, if any.
func (h *History) FollowUp(prev2 board.Move) (board.Move, bool) {
	m, ok := h.followUp[prev2]
	return m, ok
}

// Update rewards best (the move that caused the cutoff or improved alpha) and penalizes
// the other quiets tried before it at this node, using a gravity formula that saturates
// at historyMax instead of growing without bound.
func (h *History) Update(c board.Color, best board.Move, tried []board.Move, depth int, prev, prev2 board.Move) {
	bonus := int32(depth * depth)
	if bonus > historyMax {
		bonus = historyMax
	}

	for _, m := range tried {
		delta := -bonus
		if m.Equals(best) {
			delta = bonus
		}
		h.apply(c, m, delta)
	}

	if !prev.IsNull() {
		h.counter[prev] = best
	}
	if !prev2.IsNull() {
		h.followUp[prev2] = best
	}
}

// Decay halves every butterfly score, used between searches so heuristics built up on a
// prior position fade out gradually rather than being wiped or kept at full strength for
// an unrelated new position.
func (h *History) Decay() {
	for c := range h.butterfly {
		for from := range h.butterfly[c] {
			for to := range h.butterfly[c][from] {
				h.butterfly[c][from][to] /= 2
			}
		}
	}
}

func (h *History) apply(c board.Color, m board.Move, delta int32) {
	cur := &h.butterfly[c][m.From][m.To]
	*cur += delta - int32(int64(*cur)*int64(abs32(delta))/historyMax)
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

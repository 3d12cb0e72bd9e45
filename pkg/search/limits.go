package search

import (
	"fmt"
	"time"

	"github.com/seekerror/seer/pkg/board"
	"github.com/seekerror/stdlib/pkg/lang"
)

// Limits carries the UCI "go" parameters a search is bounded by. The zero value means
// "search forever", exactly as an "go infinite" command would.
type Limits struct {
	// WhiteTime/BlackTime/WhiteInc/BlackInc are the UCI wtime/btime/winc/binc clock
	// readings, zero if not sent.
	WhiteTime, BlackTime time.Duration
	WhiteInc, BlackInc   time.Duration
	// MovesToGo is the UCI movestogo value; zero means "rest of the game".
	MovesToGo int

	// Depth limits the search to this many plies of iterative deepening, if set.
	Depth lang.Optional[uint]
	// Nodes, if set, ends the search after the first completed depth in which the reporting
	// worker visited at least this many nodes. It is checked only between depths, and
	// helper workers' nodes are not counted.
	Nodes lang.Optional[uint64]
	// MoveTime fixes the search to exactly this duration, if set, overriding clock-based
	// budgeting.
	MoveTime lang.Optional[time.Duration]
	// Infinite disables all stopping conditions except an explicit "stop"/Halt.
	Infinite bool
}

func (l Limits) String() string {
	var extra string
	if d, ok := l.Depth.V(); ok {
		extra += fmt.Sprintf(" depth=%v", d)
	}
	if n, ok := l.Nodes.V(); ok {
		extra += fmt.Sprintf(" nodes=%v", n)
	}
	if mt, ok := l.MoveTime.V(); ok {
		extra += fmt.Sprintf(" movetime=%v", mt)
	}
	if l.Infinite {
		extra += " infinite"
	}
	return fmt.Sprintf("{wtime=%v btime=%v winc=%v binc=%v movestogo=%v%v}",
		l.WhiteTime, l.BlackTime, l.WhiteInc, l.BlackInc, l.MovesToGo, extra)
}

// Budget computes the soft and hard time allotment for the side to move: after the soft
// limit, the main worker should not begin a new iterative-deepening depth; at the hard
// limit, the time manager force-stops mid-iteration. ok is false when nothing bounds the
// search by time (no clock reading and no explicit move time), which is the case for
// "go infinite" and "go depth N" without a clock.
func (l Limits) Budget(turn board.Color) (soft, hard time.Duration, ok bool) {
	if l.Infinite {
		return 0, 0, false
	}
	if mt, has := l.MoveTime.V(); has {
		return mt, mt, true
	}

	remaining, inc := l.WhiteTime, l.WhiteInc
	if turn == board.Black {
		remaining, inc = l.BlackTime, l.BlackInc
	}
	if remaining <= 0 && inc <= 0 {
		return 0, 0, false
	}

	// Assume 40 moves to go if the GUI didn't say, as per common practice: soft budget is
	// a fraction of the remainder, hard budget a multiple of that so a position that needs
	// more time can still take it, bounded by not flagging on the clock.
	moves := time.Duration(40)
	if l.MovesToGo > 0 {
		moves = time.Duration(l.MovesToGo) + 1
	}

	soft = remaining/(2*moves) + inc/2
	hard = 3 * soft

	const safety = 50 * time.Millisecond
	if cap := remaining - safety; cap > 0 && hard > cap {
		hard = cap
	}
	if hard < 0 {
		hard = 0
	}
	if soft > hard {
		soft = hard
	}
	return soft, hard, true
}

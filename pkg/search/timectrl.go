package search

import (
	"context"
	"time"

	"github.com/seekerror/seer/pkg/board"
	"github.com/seekerror/logw"
)

// enforceTimeControl arms a hard deadline that halts h once the limits' hard time budget
// elapses. Returns the soft budget and whether one applies at all; the main worker
// compares elapsed time against the soft budget itself to decide whether to begin another
// iterative-deepening depth, while the hard budget fires unconditionally here so a worker
// stuck deep in one iteration still yields control back to the GUI.
func enforceTimeControl(ctx context.Context, h Handle, limits Limits, turn board.Color) (soft time.Duration, ok bool) {
	soft, hard, ok := limits.Budget(turn)
	if !ok {
		return 0, false
	}

	time.AfterFunc(hard, func() {
		h.Halt()
	})

	logw.Debugf(ctx, "Time budget for %v: [%v; %v]", turn, soft, hard)
	return soft, true
}

package search

import (
	"context"
	"sync"
	"time"

	"github.com/seekerror/seer/pkg/board"
	"github.com/seekerror/seer/pkg/nnue"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/util/contextx"
	"github.com/seekerror/stdlib/pkg/util/iox"
	"go.uber.org/atomic"
)

// maxSearchPly bounds how deep the search stack and NNUE accumulator stack are
// pre-allocated for, independent of any per-call depth limit.
const maxSearchPly = 128

// aspirationMinDepth is the shallowest iterative-deepening depth at which an aspiration
// window narrower than the full [-inf, inf] range is tried; at shallow depths the score
// is too volatile for a tight window to pay for the re-searches it costs.
const aspirationMinDepth = 5

// aspirationWindow is the initial half-width of the aspiration window around the
// previous iteration's score.
const aspirationWindow = nnue.Score(25)

// Pool runs lazy SMP: a fixed set of workers all search the same root position to
// increasing depth, independently, sharing one transposition table as the only channel
// of communication between them. Only the first worker reports principal variations;
// the rest exist purely to populate the shared table with positions the reporting
// worker has not reached yet.
type Pool struct {
	tt      TranspositionTable
	weights *nnue.Weights
	zt      *board.ZobristTable
	noise   nnue.Random

	mu   sync.Mutex
	hist []*History // retained across searches per worker slot; see historyFor.
	n    int
}

// NewPool returns a pool of n workers (minimum 1) sharing tt and weights.
func NewPool(tt TranspositionTable, weights *nnue.Weights, zt *board.ZobristTable, n int, noise nnue.Random) *Pool {
	p := &Pool{tt: tt, weights: weights, zt: zt, noise: noise}
	p.Resize(n)
	return p
}

// Resize changes the worker count used by future searches. Safe to call between
// searches; it does not affect one already in flight.
func (p *Pool) Resize(n int) {
	if n < 1 {
		n = 1
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.n = n
}

func (p *Pool) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.n
}

// historyFor returns the persistent history table for worker slot i, decaying it first:
// heuristics built on a previous position fade rather than being wiped clean or kept at
// full strength for an unrelated new one.
func (p *Pool) historyFor(i int) *History {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.hist) <= i {
		p.hist = append(p.hist, NewHistory())
	}
	p.hist[i].Decay()
	return p.hist[i]
}

// Handle lets the engine manage an in-flight search: stopping it early and retrieving
// the deepest principal variation completed so far. Halt is idempotent.
type Handle interface {
	Halt() PV
}

type handle struct {
	stop *atomic.Bool
	init iox.AsyncCloser
	quit iox.AsyncCloser

	mu sync.Mutex
	pv PV
}

func (h *handle) Halt() PV {
	<-h.init.Closed()
	h.stop.Store(true)
	h.quit.Close()

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pv
}

// Go launches a new search from b, which the caller must not mutate until the search is
// halted or exhausted, and returns a handle plus a channel of increasingly deep
// principal variations. The channel closes once the search is exhausted or halted.
func (p *Pool) Go(ctx context.Context, b *board.Board, limits Limits) (Handle, <-chan PV) {
	p.tt.AdvanceAge()

	stop := atomic.NewBool(false)
	h := &handle{stop: stop, init: iox.NewAsyncCloser(), quit: iox.NewAsyncCloser()}
	out := make(chan PV, 1)

	wctx, cancel := contextx.WithQuitCancel(ctx, h.quit.Closed())

	soft, useSoft := enforceTimeControl(ctx, h, limits, b.Turn())

	n := p.size()
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		root := b.Fork()
		ev := nnue.NewEvaluator(p.weights, p.zt, root.Position(), maxSearchPly, p.noise)
		w := NewWorker(i, root, ev, p.tt, maxSearchPly)
		w.hist = p.historyFor(i)

		go func(i int, w *Worker) {
			defer wg.Done()
			if i == 0 {
				p.mainLoop(wctx, w, h, limits, soft, useSoft, out)
			} else {
				p.helperLoop(wctx, w, limits)
			}
		}(i, w)
	}

	go func() {
		wg.Wait()
		cancel()
	}()

	return h, out
}

func depthLimit(limits Limits) int {
	if d, ok := limits.Depth.V(); ok && d > 0 {
		return int(d)
	}
	return maxSearchPly
}

// mainLoop drives iterative deepening for the reporting worker, widening an aspiration
// window around the previous score until the search falls inside it, and publishes one
// PV per completed depth.
func (p *Pool) mainLoop(ctx context.Context, w *Worker, h *handle, limits Limits, soft time.Duration, useSoft bool, out chan<- PV) {
	defer h.init.Close()
	defer close(out)

	w.ctx = ctx
	maxDepth := depthLimit(limits)
	maxNodes, hasNodeLimit := limits.Nodes.V()

	searchStart := time.Now()
	var score nnue.Score

	for depth := 1; depth <= maxDepth; depth++ {
		if contextx.IsCancelled(ctx) {
			return
		}

		w.Reset()
		alpha, beta := nnue.NegInfScore, nnue.InfScore
		window := aspirationWindow
		if depth >= aspirationMinDepth && depth > 1 && !score.IsMate() {
			alpha, beta = score-window, score+window
		}

		var s nnue.Score
		var pv []board.Move
		for {
			var line []board.Move
			s, line = w.pvs(depth, alpha, beta, 0, true)
			if s.IsInvalid() {
				return
			}

			if s <= alpha && alpha > nnue.NegInfScore {
				window *= 2
				alpha = s - window
				if alpha < nnue.NegInfScore {
					alpha = nnue.NegInfScore
				}
				continue
			}
			if s >= beta && beta < nnue.InfScore {
				window *= 2
				beta = s + window
				if beta > nnue.InfScore {
					beta = nnue.InfScore
				}
				continue
			}
			pv = line
			break
		}
		score = s

		result := PV{
			Depth:    depth,
			SelDepth: w.SelDepth(),
			Moves:    pv,
			Score:    score,
			Nodes:    w.Nodes(),
			Time:     time.Since(searchStart),
			Hash:     p.tt.Occupancy(),
		}

		logw.Debugf(ctx, "Searched %v: %v", w.board.Position(), result)

		h.mu.Lock()
		h.pv = result
		h.mu.Unlock()

		select {
		case <-out:
		default:
		}
		out <- result

		h.init.Close()

		if md, ok := score.MateDistance(); ok && md > 0 && md <= depth {
			return // forced mate found within full-width search: exact, no deeper line matters
		}
		if hasNodeLimit && w.Nodes() >= maxNodes {
			return
		}
		if useSoft && soft > 0 && time.Since(searchStart) > soft {
			return
		}
	}
}

// helperLoop runs plain iterative deepening with no aspiration windows and no reporting:
// its only effect on the search is the transposition table entries it leaves behind for
// the reporting worker to probe.
func (p *Pool) helperLoop(ctx context.Context, w *Worker, limits Limits) {
	w.ctx = ctx
	maxDepth := depthLimit(limits)

	for depth := 1; depth <= maxDepth; depth++ {
		if contextx.IsCancelled(ctx) {
			return
		}
		w.Reset()
		if score, _ := w.pvs(depth, nnue.NegInfScore, nnue.InfScore, 0, true); score.IsInvalid() {
			return
		}
	}
}

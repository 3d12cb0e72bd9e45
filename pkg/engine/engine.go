// Package engine ties board state, the NNUE evaluator and the search pool together into
// the game-playing object a protocol driver talks to.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/seekerror/seer/pkg/board"
	"github.com/seekerror/seer/pkg/board/fen"
	"github.com/seekerror/seer/pkg/nnue"
	"github.com/seekerror/seer/pkg/search"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
)

var version = build.NewVersion(0, 89, 3)

// Options are search creation options.
type Options struct {
	// Depth is the default search depth limit, used if a search's Limits do not specify
	// one. Zero means no default limit.
	Depth uint
	// Hash is the transposition table size in MB. If zero, the engine will not use a
	// transposition table.
	Hash uint
	// Threads is the number of lazy-SMP search workers. Zero is treated as one.
	Threads uint
	// Noise adds some millipawn randomness to the leaf evaluations.
	Noise uint
}

func (o Options) String() string {
	return fmt.Sprintf("{depth=%v, hash=%v, threads=%v, noise=%v}", o.Depth, o.Hash, o.Threads, o.Noise)
}

// Engine encapsulates game-playing logic: board state, and a search pool over a shared
// transposition table and NNUE evaluator weights.
type Engine struct {
	name, author string

	weights *nnue.Weights
	factory search.TranspositionTableFactory
	zt      *board.ZobristTable
	seed    int64
	opts    Options

	b      *board.Board
	tt     search.TranspositionTable
	pool   *search.Pool
	active search.Handle
	mu     sync.Mutex
}

// Option is an engine creation option.
type Option func(*Engine)

// WithTable configures the engine to use the given transposition table factory.
func WithTable(factory search.TranspositionTableFactory) Option {
	return func(e *Engine) {
		e.factory = factory
	}
}

// WithOptions sets default runtime options.
func WithOptions(opts Options) Option {
	return func(e *Engine) {
		e.opts = opts
	}
}

// WithZobrist configures the engine to use the given random seed instead of the default
// seed of zero.
func WithZobrist(seed int64) Option {
	return func(e *Engine) {
		e.seed = seed
	}
}

// New constructs an engine for the given NNUE weights. weights is shared, read-only,
// across every search worker.
func New(ctx context.Context, name, author string, weights *nnue.Weights, opts ...Option) *Engine {
	e := &Engine{
		name:    name,
		author:  author,
		weights: weights,
		factory: search.NewTranspositionTable,
	}
	for _, fn := range opts {
		fn(e)
	}
	e.zt = board.NewZobristTable(e.seed)

	_ = e.Reset(ctx, fen.Initial)

	logw.Infof(ctx, "Initialized engine: %v, options=%v", e.Name(), e.opts)
	return e
}

// Name returns the engine name and version.
func (e *Engine) Name() string {
	return fmt.Sprintf("%v %v", e.name, version)
}

// Author returns the author.
func (e *Engine) Author() string {
	return e.author
}

func (e *Engine) Options() Options {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.opts
}

// SetDepth changes the default search depth limit used when a search's Limits don't
// specify one.
func (e *Engine) SetDepth(depth uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Depth = depth
}

// SetHash resizes the transposition table, discarding its contents. sizeMB of zero
// disables the table entirely.
func (e *Engine) SetHash(ctx context.Context, sizeMB uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Hash = sizeMB
	e.tt = search.NoTranspositionTable{}
	if sizeMB > 0 {
		e.tt = e.factory(ctx, uint64(sizeMB)<<20)
	}
	e.pool = search.NewPool(e.tt, e.weights, e.zt, e.threads(), e.noise())
}

// SetThreads resizes the lazy-SMP worker pool.
func (e *Engine) SetThreads(n uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Threads = n
	e.pool.Resize(e.threads())
}

// SetNoise sets the leaf evaluation noise, in millipawns.
func (e *Engine) SetNoise(millipawns uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Noise = millipawns
	e.pool = search.NewPool(e.tt, e.weights, e.zt, e.threads(), e.noise())
}

// ClearHash discards all transposition table entries without resizing.
func (e *Engine) ClearHash() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.tt.Clear()
}

func (e *Engine) threads() int {
	if e.opts.Threads == 0 {
		return 1
	}
	return int(e.opts.Threads)
}

func (e *Engine) noise() nnue.Random {
	if e.opts.Noise == 0 {
		return nnue.Random{}
	}
	return nnue.NewRandom(int(e.opts.Noise)/10, e.seed) // millipawns to centipawns
}

// Board returns a forked board, safe for the caller to inspect or search independently.
func (e *Engine) Board() *board.Board {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.b.Fork()
}

// Position returns the current position in FEN format. Convenience function.
func (e *Engine) Position() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return fen.Encode(e.b.Position(), e.b.Turn(), e.b.NoProgress(), e.b.FullMoves())
}

// Reset resets the engine to a new starting position in FEN format.
func (e *Engine) Reset(ctx context.Context, position string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	logw.Infof(ctx, "Reset %v, opts=%v", position, e.opts)

	_, _ = e.haltSearchIfActive(ctx)

	pos, turn, noprogress, fullmoves, err := fen.Decode(position)
	if err != nil {
		return err
	}
	e.b = board.NewBoard(e.zt, pos, turn, noprogress, fullmoves)

	if e.tt == nil {
		e.tt = search.NoTranspositionTable{}
		if e.opts.Hash > 0 {
			e.tt = e.factory(ctx, uint64(e.opts.Hash)<<20)
		}
	}
	if e.pool == nil {
		e.pool = search.NewPool(e.tt, e.weights, e.zt, e.threads(), e.noise())
	}

	logw.Infof(ctx, "New board: %v", e.b)
	return nil
}

// Move selects the given move, usually an opponent move.
func (e *Engine) Move(ctx context.Context, move string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	logw.Infof(ctx, "Move %v", move)

	candidate, err := board.ParseMove(move)
	if err != nil {
		return fmt.Errorf("invalid move: %v", err)
	}

	_, _ = e.haltSearchIfActive(ctx)

	moves := e.b.Position().PseudoLegalMoves(e.b.Turn())
	for _, m := range moves {
		if !candidate.SameFromTo(m) {
			continue
		}

		// Candidate is at least pseudo-legal.

		if !e.b.PushMove(m) {
			return fmt.Errorf("illegal move: %v", m)
		}

		logw.Infof(ctx, "Move %v: %v", m, e.b)
		return nil
	}
	return fmt.Errorf("invalid move: %v", candidate)
}

// TakeBack undoes the latest move.
func (e *Engine) TakeBack(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, _ = e.haltSearchIfActive(ctx)

	m, ok := e.b.PopMove()
	if !ok {
		return fmt.Errorf("no move to take back")
	}

	logw.Infof(ctx, "Takeback %v", m)
	return nil
}

// Analyze starts a search of the current position. If limits does not specify a depth,
// the engine's default depth option, if any, is used.
func (e *Engine) Analyze(ctx context.Context, limits search.Limits) (<-chan search.PV, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := limits.Depth.V(); !ok && e.opts.Depth > 0 {
		limits.Depth = lang.Some(e.opts.Depth)
	}

	logw.Infof(ctx, "Analyze %v, limits=%v", e.b, limits)

	if e.active != nil {
		return nil, fmt.Errorf("search already active")
	}

	handle, out := e.pool.Go(ctx, e.b.Fork(), limits)
	e.active = handle
	return out, nil
}

// Halt halts the active search and returns the principal variation, if any.
func (e *Engine) Halt(ctx context.Context) (search.PV, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	logw.Infof(ctx, "Halt")

	pv, ok := e.haltSearchIfActive(ctx)
	if !ok {
		return search.PV{}, fmt.Errorf("no active search")
	}
	return pv, nil
}

func (e *Engine) haltSearchIfActive(ctx context.Context) (search.PV, bool) {
	if e.active != nil {
		pv := e.active.Halt()
		logw.Infof(ctx, "Search %v halted: %v", e.b, pv)

		e.active = nil
		return pv, true
	}
	return search.PV{}, false
}

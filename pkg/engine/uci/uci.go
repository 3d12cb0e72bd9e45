// Package uci contains a driver for using the engine under the UCI protocol.
//
// See: http://wbec-ridderkerk.nl/html/UCIProtocol.html
// See: https://en.wikipedia.org/wiki/Universal_Chess_Interface
package uci

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/seekerror/seer/pkg/board/fen"
	"github.com/seekerror/seer/pkg/engine"
	"github.com/seekerror/seer/pkg/search"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
	"go.uber.org/atomic"
)

const ProtocolName = "uci"

const (
	defaultHashMB    = 16
	maxHashMB        = 1 << 16
	defaultThreads   = 1
	maxThreads       = 256
)

// Driver implements a UCI driver for an engine. It is activated if sent "uci".
type Driver struct {
	e *engine.Engine

	out chan<- string

	active       atomic.Bool    // user is waiting for engine to move
	ponder       chan search.PV // chan for intermediate search information
	lastPosition string         // last position line (empty if no last position)

	quit   chan struct{}
	closed atomic.Bool
}

func NewDriver(ctx context.Context, e *engine.Engine, in <-chan string) (*Driver, <-chan string) {
	out := make(chan string, 100)
	d := &Driver{
		e:      e,
		out:    out,
		ponder: make(chan search.PV, 400),
		quit:   make(chan struct{}),
	}
	go d.process(ctx, in)

	return d, out
}

func (d *Driver) Close() {
	if d.closed.CAS(false, true) {
		close(d.quit)
	}
}

func (d *Driver) Closed() <-chan struct{} {
	return d.quit
}

func (d *Driver) process(ctx context.Context, in <-chan string) {
	defer d.Close()
	defer close(d.out)

	// * uci
	//
	//	tell engine to use the uci (universal chess interface),
	//	this will be send once as a first command after program boot
	//	to tell the engine to switch to uci mode.
	//	After receiving the uci command the engine must identify itself with the "id" command
	//	and sent the "option" commands to tell the GUI which engine settings the engine supports if any.
	//	After that the engine should sent "uciok" to acknowledge the uci mode.
	//	If no uciok is sent within a certain time period, the engine task will be killed by the GUI.

	logw.Infof(ctx, "UCI protocol initialized")

	d.out <- fmt.Sprintf("id name %v", d.e.Name())
	d.out <- fmt.Sprintf("id author %v", d.e.Author())

	// * option
	//
	//	Hash, Threads and Clear Hash are the only tunables this engine exposes: memory
	//	budget for the transposition table, the lazy-SMP worker count, and a way to
	//	discard stale entries without restarting the engine.

	opts := d.e.Options()
	d.out <- fmt.Sprintf("option name Hash type spin default %v min 0 max %v", nonZero(opts.Hash, defaultHashMB), maxHashMB)
	d.out <- fmt.Sprintf("option name Threads type spin default %v min 1 max %v", nonZero(opts.Threads, defaultThreads), maxThreads)
	d.out <- "option name Clear Hash type button"

	// * uciok
	//
	//	Must be sent after the id and optional options to tell the GUI that the engine
	//	has sent all infos and is ready in uci mode.

	d.out <- "uciok"

	for {
		select {
		case line, ok := <-in:
			if !ok {
				logw.Infof(ctx, "Input stream broken. Exiting")
				return
			}

			parts := strings.Split(strings.TrimSpace(line), " ")
			if len(parts) == 0 {
				break
			}

			cmd := parts[0]
			args := parts[1:]

			switch strings.ToLower(cmd) {
			case "isready":
				// * isready / readyok
				//
				//	Used to synchronize the engine with the GUI; must always be answered with
				//	readyok, even mid-search.

				d.out <- "readyok"

			case "debug":
				// * debug [ on | off ]: no additional diagnostics implemented.

			case "setoption":
				// * setoption name <id> [value <x>]

				name, value := parseSetOption(args)
				d.setOption(ctx, name, value)

			case "register":
				// * register: no registration scheme. Ignored.

			case "ucinewgame":
				// * ucinewgame
				//
				//	Sent when the next search will be from a different game. The GUI should
				//	always follow with "isready".

				d.ensureInactive(ctx)
				d.lastPosition = ""
				d.e.ClearHash()

			case "position":
				// * position [fen <fenstring> | startpos ] moves <move1> .... <movei>

				d.ensureInactive(ctx)
				d.handlePosition(ctx, line, args)

			case "go":
				// * go [searchmoves ...] [ponder] [wtime x] [btime x] [winc x] [binc x]
				//       [movestogo x] [depth x] [nodes x] [mate x] [movetime x] [infinite]

				d.ensureInactive(ctx)
				d.handleGo(ctx, args)

			case "stop":
				// * stop: stop calculating as soon as possible, still emitting bestmove.

				pv, err := d.e.Halt(ctx)
				if err == nil {
					d.searchCompleted(ctx, pv)
				}

			case "ponderhit":
				// * ponderhit: not implemented; this engine never pre-searches a ponder move.

			case "quit":
				// * quit: quit the program as soon as possible.
				return

			default:
				logw.Warningf(ctx, "Unknown command '%v': %v", cmd, args)
			}

		case pv := <-d.ponder:
			// * info ... pv ...: forwarded to the GUI while a search is active.

			if d.active.Load() {
				d.out <- printPV(pv)
			}

		case <-d.quit:
			d.ensureInactive(ctx)

			logw.Infof(ctx, "Driver closed")
			return
		}
	}
}

func (d *Driver) handlePosition(ctx context.Context, line string, args []string) {
	if d.lastPosition != "" && strings.HasPrefix(line, d.lastPosition) {
		// Continuation of game.

		moves := strings.TrimSpace(strings.TrimPrefix(line, d.lastPosition))
		for _, arg := range strings.Split(moves, " ") {
			if arg == "" || arg == "moves" {
				continue
			}
			if err := d.e.Move(ctx, arg); err != nil {
				logw.Errorf(ctx, "Invalid position move '%v': %v: %v", arg, line, err)
				return
			}
		}

		d.lastPosition = line
		return
	}

	// New position.

	position := fen.Initial
	if len(args) >= 7 && args[0] == "fen" {
		position = strings.Join(args[1:7], " ")
	}

	if err := d.e.Reset(ctx, position); err != nil {
		logw.Errorf(ctx, "Invalid position: %v", line)
		return
	}

	move := false
	for _, arg := range args {
		if arg == "moves" {
			move = true
			continue
		}
		if !move {
			continue
		}

		if err := d.e.Move(ctx, arg); err != nil {
			logw.Errorf(ctx, "Invalid position move '%v': %v: %v", arg, line, err)
			return
		}
	}
	d.lastPosition = line
}

func (d *Driver) handleGo(ctx context.Context, args []string) {
	var limits search.Limits

	for i := 0; i < len(args); i++ {
		cmd := args[i]
		switch cmd {
		case "wtime", "btime", "winc", "binc", "movestogo", "depth", "nodes", "movetime":
			i++
			if i == len(args) {
				logw.Errorf(ctx, "No argument for %v", cmd)
				return
			}
			n, err := strconv.Atoi(args[i])
			if err != nil {
				logw.Errorf(ctx, "Invalid argument for %v: %v", cmd, err)
				return
			}

			switch cmd {
			case "wtime":
				limits.WhiteTime = time.Millisecond * time.Duration(n)
			case "btime":
				limits.BlackTime = time.Millisecond * time.Duration(n)
			case "winc":
				limits.WhiteInc = time.Millisecond * time.Duration(n)
			case "binc":
				limits.BlackInc = time.Millisecond * time.Duration(n)
			case "movestogo":
				limits.MovesToGo = n
			case "depth":
				limits.Depth = lang.Some(uint(n))
			case "nodes":
				limits.Nodes = lang.Some(uint64(n))
			case "movetime":
				limits.MoveTime = lang.Some(time.Millisecond * time.Duration(n))
			}

		case "infinite":
			limits.Infinite = true

		default:
			// searchmoves, ponder, mate: not supported. Silently ignored.
		}
	}

	out, err := d.e.Analyze(ctx, limits)
	if err != nil {
		logw.Errorf(ctx, "Analyze failed: %v", err)
		return
	}
	d.active.Store(true)

	go func() {
		var last search.PV
		for pv := range out {
			last = pv
			d.ponder <- pv
		}
		if !limits.Infinite {
			d.searchCompleted(ctx, last)
		}
	}()
}

func (d *Driver) setOption(ctx context.Context, name, value string) {
	switch name {
	case "Hash":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			logw.Errorf(ctx, "Invalid Hash value: %v", value)
			return
		}
		d.e.SetHash(ctx, uint(n))

	case "Threads":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			logw.Errorf(ctx, "Invalid Threads value: %v", value)
			return
		}
		d.e.SetThreads(uint(n))

	case "Clear Hash":
		d.e.ClearHash()

	default:
		logw.Warningf(ctx, "Unknown option '%v'", name)
	}
}

// parseSetOption extracts name and value from a "setoption name <id> [value <x>]" args
// list. Both name and value may contain spaces, e.g. "Clear Hash".
func parseSetOption(args []string) (name, value string) {
	var inValue bool
	var nameParts, valueParts []string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "name":
			inValue = false
		case "value":
			inValue = true
		default:
			if inValue {
				valueParts = append(valueParts, args[i])
			} else {
				nameParts = append(nameParts, args[i])
			}
		}
	}
	return strings.Join(nameParts, " "), strings.Join(valueParts, " ")
}

func (d *Driver) ensureInactive(ctx context.Context) {
	d.active.Store(false)
	_, _ = d.e.Halt(ctx)
}

func (d *Driver) searchCompleted(ctx context.Context, pv search.PV) {
	if d.active.CAS(true, false) {
		if m, ok := pv.BestMove(); ok {
			// * bestmove <move1> [ ponder <move2> ]
			//
			//	Must be sent whenever the engine stops searching, once per "go" command.
			//	A final "info" line with the completed search statistics precedes it.

			d.out <- printPV(pv)
			if ponder, ok := pv.PonderMove(); ok {
				d.out <- fmt.Sprintf("bestmove %v ponder %v", m, ponder)
			} else {
				d.out <- fmt.Sprintf("bestmove %v", m)
			}
		} else {
			// No PV: position is checkmate or stalemate.

			d.out <- "bestmove 0000"
		}
	} // else: stale or duplicate result
}

func printPV(pv search.PV) string {
	// "info depth 2 seldepth 4 score cp 214 hashfull 3 nodes 2124 time 1242 nps 1710 pv e2e4 e7e5 g1f3"

	parts := []string{"info"}
	parts = append(parts, fmt.Sprintf("depth %v", pv.Depth))
	if pv.SelDepth > 0 {
		parts = append(parts, fmt.Sprintf("seldepth %v", pv.SelDepth))
	}
	if md, ok := pv.Score.MateDistance(); ok {
		parts = append(parts, fmt.Sprintf("score mate %v", mateMoves(md)))
	} else {
		parts = append(parts, fmt.Sprintf("score cp %v", int(pv.Score)))
	}
	parts = append(parts, fmt.Sprintf("hashfull %v", int(pv.Hash*1000)))
	if pv.Nodes > 0 {
		parts = append(parts, fmt.Sprintf("nodes %v", pv.Nodes))
	}
	if pv.Time > 0 {
		parts = append(parts, fmt.Sprintf("time %v", pv.Time.Milliseconds()))
	}
	if pv.Nodes > 0 && pv.Time > 0 {
		parts = append(parts, fmt.Sprintf("nps %v", uint64(time.Second)*pv.Nodes/uint64(pv.Time)))
	}
	if len(pv.Moves) > 0 {
		parts = append(parts, "pv")
		strs := make([]string, len(pv.Moves))
		for i, m := range pv.Moves {
			strs[i] = m.String()
		}
		parts = append(parts, strings.Join(strs, " "))
	}

	return strings.Join(parts, " ")
}

// mateMoves converts a MateDistance ply count (positive: side to move mates; negative:
// side to move is mated) into the full-move count UCI reports "score mate" in, preserving
// sign.
func mateMoves(plies int) int {
	if plies >= 0 {
		return (plies + 1) / 2
	}
	return -((-plies + 1) / 2)
}

func nonZero(v, fallback uint) uint {
	if v == 0 {
		return fallback
	}
	return v
}

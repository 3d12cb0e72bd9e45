// seer is a UCI chess engine driven by a quantized NNUE-style evaluator.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/seekerror/seer/pkg/engine"
	"github.com/seekerror/seer/pkg/engine/uci"
	"github.com/seekerror/seer/pkg/nnue"
	"github.com/seekerror/logw"
)

var (
	weightsPath = flag.String("weights", "", "Path to the NNUE weights file (required)")
	hash        = flag.Uint("hash", 16, "Transposition table size in MB")
	threads     = flag.Uint("threads", 1, "Number of lazy-SMP search workers")
	noise       = flag.Uint("noise", 0, "Evaluation noise in millipawns (zero if deterministic)")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: seer -weights <path> [options]

Seer is a UCI chess engine.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	if *weightsPath == "" {
		flag.Usage()
		logw.Exitf(ctx, "Missing required -weights flag")
	}

	f, err := os.Open(*weightsPath)
	if err != nil {
		logw.Exitf(ctx, "Failed to open weights file %v: %v", *weightsPath, err)
	}
	weights, err := nnue.LoadWeights(*weightsPath, f)
	_ = f.Close()
	if err != nil {
		// WeightsLoadError: there is no sensible way to run with a partially loaded
		// network, so this is always fatal at startup.
		logw.Exitf(ctx, "%v", err)
	}

	e := engine.New(ctx, "seer", "seekerror", weights,
		engine.WithOptions(engine.Options{Hash: *hash, Threads: *threads, Noise: *noise}))

	in := engine.ReadStdinLines(ctx)
	switch <-in {
	case uci.ProtocolName:
		driver, out := uci.NewDriver(ctx, e, in)
		go engine.WriteStdoutLines(ctx, out)

		<-driver.Closed()

	default:
		flag.Usage()
		logw.Exitf(ctx, "Protocol not supported")
	}
}

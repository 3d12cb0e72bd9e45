package nnue

import (
	"encoding/binary"
	"fmt"
	"io"
)

// magic identifies a Seer weights file. Distinct from the NNUE formats of other engines:
// this is a small, purpose-built quantized format for this evaluator's layer sizes.
const magic = uint32(0x53454552) // "SEER"

// WeightsLoadError reports a failure to parse a weights file. It is always fatal at
// startup: there is no sensible way to run the engine with a partially-loaded network.
type WeightsLoadError struct {
	Path string
	Err  error
}

func (e *WeightsLoadError) Error() string {
	return fmt.Sprintf("load weights %v: %v", e.Path, e.Err)
}

func (e *WeightsLoadError) Unwrap() error {
	return e.Err
}

// LoadWeights reads a quantized network from r. The format is a fixed-order little-endian
// dump of the feature transformer rows, biases, and three fully-connected layers, preceded
// by a magic number and the input dimension so a mismatched build fails fast and loudly.
func LoadWeights(path string, r io.Reader) (*Weights, error) {
	var header struct {
		Magic    uint32
		Input    uint32
		Hidden   uint32
		L2       uint32
		L3       uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, &WeightsLoadError{Path: path, Err: fmt.Errorf("read header: %w", err)}
	}
	if header.Magic != magic {
		return nil, &WeightsLoadError{Path: path, Err: fmt.Errorf("bad magic %#x", header.Magic)}
	}
	if int(header.Input) != InputDim || int(header.Hidden) != HiddenDim || int(header.L2) != L2Dim || int(header.L3) != L3Dim {
		return nil, &WeightsLoadError{Path: path, Err: fmt.Errorf("dimension mismatch: file has input=%v hidden=%v l2=%v l3=%v, binary wants %v/%v/%v/%v",
			header.Input, header.Hidden, header.L2, header.L3, InputDim, HiddenDim, L2Dim, L3Dim)}
	}

	w := &Weights{ftWeights: make([]int16, InputDim*HiddenDim)}

	fields := []any{
		w.ftWeights,
		&w.ftBiases,
		&w.l1Weights,
		&w.l1Biases,
		&w.l2Weights,
		&w.l2Biases,
		&w.outWeights,
		&w.outBias,
	}
	for _, f := range fields {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return nil, &WeightsLoadError{Path: path, Err: fmt.Errorf("read layer: %w", err)}
		}
	}
	return w, nil
}

// NewZeroWeights returns a network with all weights and biases zeroed. Useful for tests
// and as a harmless placeholder evaluator (every position scores 0) when no weights file
// is configured.
func NewZeroWeights() *Weights {
	return &Weights{ftWeights: make([]int16, InputDim*HiddenDim)}
}

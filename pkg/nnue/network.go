package nnue

import "github.com/seekerror/seer/pkg/board"

// Weights holds an immutable, quantized network: a feature transformer row per input
// feature, followed by three small fully-connected layers. A *Weights is shared by
// pointer across all workers; only per-worker accumulators and caches are mutable.
type Weights struct {
	ftWeights []int16 // InputDim rows of HiddenDim int16 each, row-major.
	ftBiases  [HiddenDim]int16

	l1Weights [L2Dim][2 * HiddenDim]int8
	l1Biases  [L2Dim]int32

	l2Weights [L3Dim][L2Dim]int8
	l2Biases  [L3Dim]int32

	outWeights [L3Dim]int8
	outBias    int32
}

// FeatureRow returns the weight row for the given feature index.
func (w *Weights) FeatureRow(idx int) []int16 {
	return w.ftWeights[idx*HiddenDim : (idx+1)*HiddenDim]
}

// Evaluate runs the forward pass for the side to move and returns a centipawn score.
// The accumulator's own-perspective half is concatenated before the opponent's half, so
// the network always sees "us" first regardless of color, matching how FeatureIndex
// labels relations.
func (w *Weights) Evaluate(acc *Accumulator, stm board.Color) Score {
	var input [2 * HiddenDim]int8
	clipRelu(input[:HiddenDim], acc.v[stm][:])
	clipRelu(input[HiddenDim:], acc.v[stm.Opponent()][:])

	var l1 [L2Dim]int8
	for i := 0; i < L2Dim; i++ {
		sum := w.l1Biases[i]
		for j, x := range input {
			sum += int32(x) * int32(w.l1Weights[i][j])
		}
		l1[i] = clipReluScalar(sum >> 6)
	}

	var l2 [L3Dim]int8
	for i := 0; i < L3Dim; i++ {
		sum := w.l2Biases[i]
		for j, x := range l1 {
			sum += int32(x) * int32(w.l2Weights[i][j])
		}
		l2[i] = clipReluScalar(sum >> 6)
	}

	out := w.outBias
	for j, x := range l2 {
		out += int32(x) * int32(w.outWeights[j])
	}
	return Score(out >> 6)
}

// clipRelu quantizes accumulator values (post feature-transformer) down to the [0,127]
// clipped-ReLU range consumed by the int8 fully-connected layers.
func clipRelu(dst []int8, src []int16) {
	for i, v := range src {
		dst[i] = clipReluScalar(int32(v))
	}
}

func clipReluScalar(v int32) int8 {
	switch {
	case v < 0:
		return 0
	case v > 127:
		return 127
	default:
		return int8(v)
	}
}

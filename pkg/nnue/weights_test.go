package nnue

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWeightsBadMagic(t *testing.T) {
	var buf bytes.Buffer
	header := struct {
		Magic, Input, Hidden, L2, L3 uint32
	}{Magic: 0xdeadbeef, Input: uint32(InputDim), Hidden: uint32(HiddenDim), L2: uint32(L2Dim), L3: uint32(L3Dim)}
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, header))

	_, err := LoadWeights("bad-magic.bin", &buf)
	require.Error(t, err)

	var wle *WeightsLoadError
	assert.ErrorAs(t, err, &wle)
}

func TestLoadWeightsDimensionMismatch(t *testing.T) {
	var buf bytes.Buffer
	header := struct {
		Magic, Input, Hidden, L2, L3 uint32
	}{Magic: magic, Input: uint32(InputDim) + 1, Hidden: uint32(HiddenDim), L2: uint32(L2Dim), L3: uint32(L3Dim)}
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, header))

	_, err := LoadWeights("bad-dim.bin", &buf)
	require.Error(t, err)

	var wle *WeightsLoadError
	assert.ErrorAs(t, err, &wle)
}

func TestLoadWeightsTruncated(t *testing.T) {
	var buf bytes.Buffer
	header := struct {
		Magic, Input, Hidden, L2, L3 uint32
	}{Magic: magic, Input: uint32(InputDim), Hidden: uint32(HiddenDim), L2: uint32(L2Dim), L3: uint32(L3Dim)}
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, header))
	// No layer data follows: reading the feature transformer rows must fail.

	_, err := LoadWeights("truncated.bin", &buf)
	require.Error(t, err)
}

func TestNewZeroWeightsEvaluatesToZero(t *testing.T) {
	w := NewZeroWeights()

	var acc Accumulator
	acc.v[0] = w.ftBiases
	acc.v[1] = w.ftBiases

	assert.Equal(t, Score(0), w.Evaluate(&acc, 0))
}

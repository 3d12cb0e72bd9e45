package tt

import (
	"github.com/seekerror/seer/pkg/board"
	"github.com/seekerror/seer/pkg/nnue"
)

// Packed data word layout (64 bits), MSB to LSB:
//
//	age(6) | bound(2) | depth(8) | eval(16) | score(16) | promotion(3) | to(6) | from(6) | hasMove(1)
//
// A move is stored as From/To/Promotion only: enough to recognize it among the pseudo-legal
// moves generated at the probing node, where Type/Piece/Capture get refilled by the caller.
const (
	hasMoveBits  = 1
	fromBits     = 6
	toBits       = 6
	promoBits    = 3
	scoreBits    = 16
	evalBits     = 16
	depthBits    = 8
	boundBits    = 2
	ageBitsWidth = 6

	hasMoveShift = 0
	fromShift    = hasMoveShift + hasMoveBits
	toShift      = fromShift + fromBits
	promoShift   = toShift + toBits
	scoreShift   = promoShift + promoBits
	evalShift    = scoreShift + scoreBits
	depthShift   = evalShift + evalBits
	boundShift   = depthShift + depthBits
	ageShift     = boundShift + boundBits
)

func mask(bits uint) uint64 {
	return (uint64(1) << bits) - 1
}

func pack(m board.Move, score, eval nnue.Score, depth int, bound Bound, age uint8) uint64 {
	var data uint64

	if !m.IsNull() {
		data |= uint64(1) << hasMoveShift
		data |= (uint64(m.From) & mask(fromBits)) << fromShift
		data |= (uint64(m.To) & mask(toBits)) << toShift
		// board.Piece tops out at NumPieces-1 (King = 6), so 3 bits never truncates.
		data |= (uint64(m.Promotion) & mask(promoBits)) << promoShift
	}

	data |= (uint64(uint16(score)) & mask(scoreBits)) << scoreShift
	data |= (uint64(uint16(eval)) & mask(evalBits)) << evalShift
	data |= (uint64(depth) & mask(depthBits)) << depthShift
	data |= (uint64(bound) & mask(boundBits)) << boundShift
	data |= (uint64(age) & mask(ageBitsWidth)) << ageShift

	return data
}

func unpack(data uint64) Entry {
	var m board.Move
	if (data>>hasMoveShift)&1 != 0 {
		m.From = board.Square((data >> fromShift) & mask(fromBits))
		m.To = board.Square((data >> toShift) & mask(toBits))
		m.Promotion = board.Piece((data >> promoShift) & mask(promoBits))
	} else {
		m = board.NullMove
	}

	score := nnue.Score(int16(uint16((data >> scoreShift) & mask(scoreBits))))
	eval := nnue.Score(int16(uint16((data >> evalShift) & mask(evalBits))))
	depth := int((data >> depthShift) & mask(depthBits))
	bound := Bound((data >> boundShift) & mask(boundBits))
	age := uint8((data >> ageShift) & mask(ageBitsWidth))

	return Entry{Move: m, Score: score, Eval: eval, Depth: depth, Bound: bound, Age: age}
}

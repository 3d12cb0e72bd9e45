package nnue

import (
	"math/rand"
)

// Random is a noise generator added to leaf evaluations, to avoid deterministic play
// against a fixed opponent. The limit specifies how many centipawns to add/remove in the
// range [-limit/2; limit-1-limit/2], with integer division. The zero value always
// returns zero.
type Random struct {
	rand  *rand.Rand
	limit int
}

// NewRandom returns a generator bounded to +/-limit/2 centipawns, seeded deterministically
// so a given seed always reproduces the same game.
func NewRandom(limit int, seed int64) Random {
	return Random{
		limit: limit,
		rand:  rand.New(rand.NewSource(seed)),
	}
}

// Noise returns a random centipawn offset, independent of the position being evaluated.
func (n Random) Noise() Score {
	if n.limit <= 0 {
		return 0
	}
	return Score(n.rand.Intn(n.limit) - n.limit/2)
}

package nnue

import "github.com/seekerror/seer/pkg/board"

// cacheBuckets is the number of direct-mapped slots in the pawn/king cache. Keyed by the
// pawn/king Zobrist sub-hash, collisions simply evict the stale entry (no tag check beyond
// the hash match below), which is safe because a miss just costs a rebuild.
const cacheBuckets = 1024

// PawnKingCache is a small, per-worker, direct-mapped cache of king-bucketed accumulator
// contributions from pawns and kings: the "Finny table" idiom. A king move invalidates only
// its own side's accumulator half; rather than replaying every pawn move since the last
// rebuild, the cache lets that rebuild start from a recently-seen pawn/king configuration.
type PawnKingCache struct {
	slots [cacheBuckets]pawnKingEntry
}

type pawnKingEntry struct {
	valid bool
	hash  board.ZobristHash
	acc   [board.NumColors][HiddenDim]int16
}

// NewPawnKingCache returns an empty cache.
func NewPawnKingCache() *PawnKingCache {
	return &PawnKingCache{}
}

// Probe returns the cached pawn/king contribution for the given sub-hash, if present.
func (c *PawnKingCache) Probe(hash board.ZobristHash) ([board.NumColors][HiddenDim]int16, bool) {
	e := &c.slots[uint64(hash)%cacheBuckets]
	if e.valid && e.hash == hash {
		return e.acc, true
	}
	return [board.NumColors][HiddenDim]int16{}, false
}

// Store records the pawn/king contribution for the given sub-hash, evicting whatever
// previously occupied the slot.
func (c *PawnKingCache) Store(hash board.ZobristHash, acc [board.NumColors][HiddenDim]int16) {
	c.slots[uint64(hash)%cacheBuckets] = pawnKingEntry{valid: true, hash: hash, acc: acc}
}

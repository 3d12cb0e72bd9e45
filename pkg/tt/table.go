// Package tt implements a lock-free transposition table: entries are written as two
// 64-bit words under the classic Hyatt "lockless XOR" scheme, so probes never block a
// concurrent store and a torn read is detected rather than returned as a hit.
package tt

import (
	"fmt"
	"sync/atomic"

	"github.com/seekerror/seer/pkg/board"
	"github.com/seekerror/seer/pkg/nnue"
)

// Bound records which side of the true score a stored score represents, from an
// alpha-beta search that failed high, failed low, or completed exactly.
type Bound uint8

const (
	BoundNone Bound = iota
	BoundExact
	BoundLower
	BoundUpper
)

func (b Bound) String() string {
	switch b {
	case BoundExact:
		return "exact"
	case BoundLower:
		return "lower"
	case BoundUpper:
		return "upper"
	default:
		return "none"
	}
}

// ClusterSize is the number of entries probed/replaced together per bucket.
const ClusterSize = 4

// entry is one lock-free slot: word1 holds the packed data, word0 holds the hash key
// XOR'd with that data. A reader recovers the key as word0^word1 and compares it to the
// hash being probed for; any torn read (a store landing between the reader's two atomic
// loads) almost certainly fails that comparison and is treated as a miss, never as
// corrupted data, without either side ever taking a lock.
type entry struct {
	xor  atomic.Uint64
	data atomic.Uint64
}

func (e *entry) load() (key board.ZobristHash, data uint64) {
	d := e.data.Load()
	x := e.xor.Load()
	return board.ZobristHash(x ^ d), d
}

func (e *entry) store(key board.ZobristHash, data uint64) {
	e.data.Store(data)
	e.xor.Store(uint64(key) ^ data)
}

// Entry is a decoded transposition table hit.
type Entry struct {
	Move  board.Move
	Score nnue.Score
	Eval  nnue.Score
	Depth int
	Bound Bound
	Age   uint8
}

// Table is a lock-free, fixed-size, cluster-associative transposition table.
type Table struct {
	entries    []entry
	numBuckets uint64
	age        atomic.Uint32
}

// NewTable returns a table sized to occupy approximately sizeBytes, rounded down to a
// whole number of clusters.
func NewTable(sizeBytes uint64) *Table {
	t := &Table{}
	t.Resize(sizeBytes)
	return t
}

// Resize reallocates the table for the given byte budget, discarding all entries.
func (t *Table) Resize(sizeBytes uint64) {
	const bytesPerEntry = 16 // two uint64 words
	numEntries := sizeBytes / bytesPerEntry
	numBuckets := numEntries / ClusterSize
	if numBuckets == 0 {
		numBuckets = 1
	}
	t.numBuckets = numBuckets
	t.entries = make([]entry, numBuckets*ClusterSize)
	t.age.Store(0)
}

// Clear discards all entries without reallocating.
func (t *Table) Clear() {
	for i := range t.entries {
		t.entries[i].xor.Store(0)
		t.entries[i].data.Store(0)
	}
	t.age.Store(0)
}

// AdvanceAge marks entries from prior searches as progressively stalier, so the
// replacement policy prefers overwriting them over entries from the current search.
func (t *Table) AdvanceAge() {
	t.age.Add(1)
}

func (t *Table) bucket(hash board.ZobristHash) []entry {
	idx := uint64(hash) % t.numBuckets
	start := idx * ClusterSize
	return t.entries[start : start+ClusterSize]
}

// Prefetch is a no-op hint in pure Go (no portable cache-prefetch intrinsic), kept so
// search code can call it unconditionally, matching engines that issue a real prefetch
// instruction here.
func (t *Table) Prefetch(hash board.ZobristHash) {}

// Probe looks up hash in its cluster. Returns ok=false on a miss or a detected torn read.
func (t *Table) Probe(hash board.ZobristHash) (Entry, bool) {
	cluster := t.bucket(hash)
	for i := range cluster {
		e := &cluster[i]
		key, data := e.load()
		if data == 0 {
			continue
		}
		if key == hash {
			return unpack(data), true
		}
	}
	return Entry{}, false
}

// Store records a search result, replacing the cluster entry that minimizes
// depth - agePenalty(age), so deep, fresh entries survive longest. An entry already
// holding the same hash is always overwritten in place.
func (t *Table) Store(hash board.ZobristHash, m board.Move, score, eval nnue.Score, depth int, bound Bound) {
	cluster := t.bucket(hash)
	age := uint8(t.age.Load() % 64)

	victim := 0
	victimScore := 1 << 30
	for i := range cluster {
		key, data := cluster[i].load()
		if data == 0 {
			victim = i
			break
		}
		if key == hash {
			victim = i
			break
		}
		existing := unpack(data)
		s := existing.Depth - agePenalty(age, existing.Age)
		if s < victimScore {
			victim, victimScore = i, s
		}
	}

	cluster[victim].store(hash, pack(m, score, eval, depth, bound, age))
}

func agePenalty(now, entryAge uint8) int {
	return int((now - entryAge) % 64)
}

func (t *Table) String() string {
	return fmt.Sprintf("tt{buckets=%v, clusterSize=%v}", t.numBuckets, ClusterSize)
}

// Occupancy estimates the fraction of entries holding data from the current search age,
// sampling a prefix of the table rather than scanning it all, matching how UCI engines
// report the "hashfull" permill without it costing a full pass every iteration.
func (t *Table) Occupancy() float64 {
	const sampleSize = 1000

	n := len(t.entries)
	if n == 0 {
		return 0
	}
	if n > sampleSize {
		n = sampleSize
	}

	age := uint8(t.age.Load() % 64)
	used := 0
	for i := 0; i < n; i++ {
		_, data := t.entries[i].load()
		if data == 0 {
			continue
		}
		if unpack(data).Age == age {
			used++
		}
	}
	return float64(used) / float64(n)
}

// NoTable is a TranspositionTable that never stores anything: used when the engine is
// configured with zero hash size.
type NoTable struct{}

func (NoTable) Probe(board.ZobristHash) (Entry, bool) { return Entry{}, false }
func (NoTable) Store(board.ZobristHash, board.Move, nnue.Score, nnue.Score, int, Bound) {}
func (NoTable) Prefetch(board.ZobristHash)                                             {}
func (NoTable) Clear()                                                                {}
func (NoTable) AdvanceAge()                                                            {}
func (NoTable) Occupancy() float64                                                     { return 0 }
func (NoTable) String() string                                                        { return "tt{none}" }

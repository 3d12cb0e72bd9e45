package tt

import "github.com/seekerror/seer/pkg/nnue"

// ScoreToTable converts a score computed at the given ply into a ply-independent score
// suitable for storage: mate scores are rebased to be relative to the root rather than to
// ply, so the same entry remains valid however deep in the tree it is later probed from.
func ScoreToTable(s nnue.Score, ply int) nnue.Score {
	if !s.IsMate() {
		return s
	}
	if s > 0 {
		return s + nnue.Score(ply)
	}
	return s - nnue.Score(ply)
}

// ScoreFromTable converts a stored ply-independent score back into one relative to ply,
// the inverse of ScoreToTable.
func ScoreFromTable(s nnue.Score, ply int) nnue.Score {
	if !s.IsMate() {
		return s
	}
	if s > 0 {
		return s - nnue.Score(ply)
	}
	return s + nnue.Score(ply)
}

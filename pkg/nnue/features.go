package nnue

import "github.com/seekerror/seer/pkg/board"

// Dimensions of the feature transformer. Each perspective (the side to move's own view,
// and the opponent's) indexes the same weight table with its own king square and with
// piece colors relabeled relative to itself ("us" vs "them"), so weights are shared
// between colors and only one accumulator half needs rebuilding when a king moves.
const (
	NumPieceTypes = 5 // pawn, knight, bishop, rook, queen -- king has no feature plane
	NumRelations  = 2 // us, them

	InputDim  = int(board.NumSquares) * NumRelations * NumPieceTypes * int(board.NumSquares)
	HiddenDim = 256
	L2Dim     = 32
	L3Dim     = 32
)

// FeatureIndex returns the feature-transformer row for a (king square, piece) tuple as
// seen from perspective. Black's perspective is mirrored onto White's half of the board
// so that the same weight rows serve both colors.
func FeatureIndex(perspective Color, kingSq board.Square, pieceColor Color, piece board.Piece, sq board.Square) int {
	if perspective == board.Black {
		kingSq = kingSq.Mirror()
		sq = sq.Mirror()
	}

	rel := 0
	if pieceColor != perspective {
		rel = 1
	}

	return ((int(kingSq)*NumRelations+rel)*NumPieceTypes+pieceOrder(piece))*int(board.NumSquares) + int(sq)
}

// Color is an alias kept local to the package so callers don't need to import board just
// to name a perspective.
type Color = board.Color

func pieceOrder(p board.Piece) int {
	switch p {
	case board.Pawn:
		return 0
	case board.Knight:
		return 1
	case board.Bishop:
		return 2
	case board.Rook:
		return 3
	case board.Queen:
		return 4
	default:
		panic("nnue: king has no feature plane")
	}
}

// IsFeaturePiece reports whether the piece contributes a feature-transformer row. Kings
// are excluded: their square instead selects which weight rows (king bucket) are used.
func IsFeaturePiece(p board.Piece) bool {
	return p == board.Pawn || p == board.Knight || p == board.Bishop || p == board.Rook || p == board.Queen
}

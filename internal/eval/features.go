package eval

// HalfKP feature dimensions.
const (
	NumKingSquares  = 64
	NumPieceTypes   = 10 // Q, R, B, N, P for both colors (kings excluded)
	NumPieceSquares = 64

	// Total input features per perspective
	HalfKPSize = NumKingSquares * NumPieceTypes * NumPieceSquares // 40960
)

// featureBase maps a piece-list code to its 0-9 HalfKP slot as seen
// from the white perspective. Kings and the terminator map to -1.
var featureBase = [13]int{
	-1, // terminator
	-1, // white king
	0,  // white queen
	1,  // white rook
	2,  // white bishop
	3,  // white knight
	4,  // white pawn
	-1, // black king
	5,  // black queen
	6,  // black rook
	7,  // black bishop
	8,  // black knight
	9,  // black pawn
}

// halfKPIndex computes the feature index of a non-king piece from one
// perspective (white=0, black=1). For the black perspective the board
// is mirrored vertically and piece colors swap.
func halfKPIndex(perspective, kingSq, code, sq int) int {
	pi := featureBase[code]
	if pi < 0 {
		return -1
	}

	if perspective == 1 {
		kingSq ^= 56
		sq ^= 56
		if pi >= 5 {
			pi -= 5
		} else {
			pi += 5
		}
	}

	return kingSq*(NumPieceTypes*NumPieceSquares) + pi*NumPieceSquares + sq
}

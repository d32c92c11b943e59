package board

import "testing"

func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		StartFEN,
		"5k2/r3nb2/1p2pN1p/pP1pPp2/P2P1P2/8/4BK2/2R5 w - - 97 1",
		"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
		"5kr1/q4n2/2ppb3/4P3/1QP5/pP1BN3/P1K4R/8 b - - 2 42",
	}

	for _, fen := range fens {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%s): %v", fen, err)
		}
		if got := pos.ToFEN(); got != fen {
			t.Errorf("round trip: got %s, want %s", got, fen)
		}
	}
}

func TestCheckmate(t *testing.T) {
	// Back rank mate: black king boxed in by its own pawns
	pos, err := ParseFEN("R6k/6pp/8/8/8/8/8/K7 b - - 0 1")
	if err != nil {
		t.Fatal("Error parsing FEN:", err)
	}

	if !pos.InCheck() {
		t.Error("Expected black to be in check")
	}
	if !pos.IsCheckmate() {
		t.Error("Expected checkmate but got false")
	}
	if pos.GenerateLegalMoves().Len() != 0 {
		t.Error("Expected no legal moves in checkmate")
	}
}

func TestStalemate(t *testing.T) {
	// Classic king+queen stalemate
	pos, err := ParseFEN("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if err != nil {
		t.Fatal("Error parsing FEN:", err)
	}

	if pos.InCheck() {
		t.Error("Stalemated king must not be in check")
	}
	if !pos.IsStalemate() {
		t.Error("Expected stalemate but got false")
	}
}

func TestPassTurn(t *testing.T) {
	pos, err := ParseFEN("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
	if err != nil {
		t.Fatal("Error parsing FEN:", err)
	}

	passed := pos.PassTurn()

	if passed.SideToMove != White {
		t.Errorf("PassTurn side = %v, want White", passed.SideToMove)
	}
	if passed.EnPassant != NoSquare {
		t.Errorf("PassTurn must clear the en passant square, got %v", passed.EnPassant)
	}

	// The receiver is untouched
	if pos.SideToMove != Black || pos.EnPassant == NoSquare {
		t.Error("PassTurn mutated its receiver")
	}

	// Board contents are unchanged
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			if pos.Pieces[c][pt] != passed.Pieces[c][pt] {
				t.Errorf("PassTurn changed %v %v bitboard", c, pt)
			}
		}
	}
}

func TestParseMove(t *testing.T) {
	pos := NewPosition()

	m, err := ParseMove("e2e4", pos)
	if err != nil {
		t.Fatalf("ParseMove(e2e4): %v", err)
	}
	if m.From() != E2 || m.To() != E4 {
		t.Errorf("ParseMove(e2e4) = %v", m)
	}
	if m.String() != "e2e4" {
		t.Errorf("String() = %s, want e2e4", m.String())
	}

	promoPos, err := ParseFEN("8/4P3/8/8/8/8/2k5/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	promo, err := ParseMove("e7e8q", promoPos)
	if err != nil {
		t.Fatalf("ParseMove(e7e8q): %v", err)
	}
	if !promo.IsPromotion() || promo.Promotion() != Queen {
		t.Errorf("expected queen promotion, got %v", promo)
	}
}

func TestEnPassantCapture(t *testing.T) {
	// White just played e2e4; black pawn on f4 can take en passant
	pos, err := ParseFEN("4k3/8/8/8/4Pp2/8/8/4K3 b - e3 0 1")
	if err != nil {
		t.Fatal(err)
	}

	moves := pos.GenerateLegalMoves()
	var ep Move
	for i := 0; i < moves.Len(); i++ {
		if moves.Get(i).IsEnPassant() {
			ep = moves.Get(i)
		}
	}
	if ep == NoMove {
		t.Fatal("expected an en passant capture to be generated")
	}
	if ep.From() != F4 || ep.To() != E3 {
		t.Errorf("en passant move = %v, want f4e3", ep)
	}

	child, ok := pos.Apply(ep)
	if !ok {
		t.Fatal("Apply rejected the en passant capture")
	}
	if child.PieceAt(E4) != NoPiece {
		t.Error("captured pawn still on e4 after en passant")
	}
	if child.PieceAt(E3) != BlackPawn {
		t.Error("capturing pawn did not land on e3")
	}
}

// TestGenerateCaptures checks the capture generator against the full
// legal move list: it emits exactly the captures and promotions.
func TestGenerateCaptures(t *testing.T) {
	fens := []string{
		"r4r2/pp1q1B2/1n1N1Qpk/2p1pb2/8/3P4/PPP2PPP/R4RK1 w - - 20 1",
		"4k3/8/8/8/4Pp2/8/8/4K3 b - e3 0 1",
		"8/4P3/8/8/8/8/2k5/4K3 w - - 0 1",
		StartFEN,
	}

	for _, fen := range fens {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%s): %v", fen, err)
		}

		captures := pos.GenerateCaptures()
		legal := pos.GenerateLegalMoves()

		for i := 0; i < captures.Len(); i++ {
			m := captures.Get(i)
			if !legal.Contains(m) {
				t.Errorf("%s: capture list move %v is not legal", fen, m)
			}
			if !m.IsCapture(pos) && !m.IsPromotion() {
				t.Errorf("%s: capture list move %v is neither capture nor promotion", fen, m)
			}
		}

		for i := 0; i < legal.Len(); i++ {
			m := legal.Get(i)
			if (m.IsCapture(pos) || m.IsPromotion()) && !captures.Contains(m) {
				t.Errorf("%s: legal capture %v missing from capture list", fen, m)
			}
		}
	}
}

func TestInsufficientMaterial(t *testing.T) {
	tests := []struct {
		fen  string
		want bool
	}{
		{"4k3/8/8/8/8/8/8/4K3 w - - 0 1", true},       // K vs K
		{"4k3/8/8/8/8/8/8/2B1K3 w - - 0 1", true},     // KB vs K
		{"4k3/8/8/8/8/8/8/2N1K3 w - - 0 1", true},     // KN vs K
		{"4k3/8/8/8/8/8/4P3/4K3 w - - 0 1", false},    // pawn
		{"4k3/8/8/8/8/8/8/2R1K3 w - - 0 1", false},    // rook
	}

	for _, tc := range tests {
		pos, err := ParseFEN(tc.fen)
		if err != nil {
			t.Fatal(err)
		}
		if got := pos.IsInsufficientMaterial(); got != tc.want {
			t.Errorf("IsInsufficientMaterial(%s) = %v, want %v", tc.fen, got, tc.want)
		}
	}
}

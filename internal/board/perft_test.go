package board

import "testing"

// perft counts the number of leaf nodes at the given depth. This is
// the standard way to verify move generation correctness.
func perft(p *Position, depth int) int64 {
	if depth == 0 {
		return 1
	}

	moves := p.GenerateLegalMoves()
	if depth == 1 {
		return int64(moves.Len())
	}

	var nodes int64
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		undo := p.MakeMove(m)
		nodes += perft(p, depth-1)
		p.UnmakeMove(m, undo)
	}
	return nodes
}

func TestPerftStartingPosition(t *testing.T) {
	pos := NewPosition()

	tests := []struct {
		depth    int
		expected int64
	}{
		{1, 20},
		{2, 400},
		{3, 8902},
		{4, 197281},
	}

	for _, tc := range tests {
		got := perft(pos, tc.depth)
		if got != tc.expected {
			t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
		}
	}
}

// TestPerftKiwipete exercises castling, en passant, promotion, and
// pin edge cases all at once.
func TestPerftKiwipete(t *testing.T) {
	pos, err := ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -")
	if err != nil {
		t.Fatalf("Failed to parse FEN: %v", err)
	}

	tests := []struct {
		depth    int
		expected int64
	}{
		{1, 48},
		{2, 2039},
		{3, 97862},
	}

	for _, tc := range tests {
		got := perft(pos, tc.depth)
		if got != tc.expected {
			t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
		}
	}
}

// TestPerftPosition3 covers en passant discovered checks.
func TestPerftPosition3(t *testing.T) {
	pos, err := ParseFEN("8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - -")
	if err != nil {
		t.Fatalf("Failed to parse FEN: %v", err)
	}

	tests := []struct {
		depth    int
		expected int64
	}{
		{1, 14},
		{2, 191},
		{3, 2812},
		{4, 43238},
	}

	for _, tc := range tests {
		got := perft(pos, tc.depth)
		if got != tc.expected {
			t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
		}
	}
}

// TestApplyMatchesMakeMove checks the copy-make constructor against
// make/unmake on every move of a busy middlegame position.
func TestApplyMatchesMakeMove(t *testing.T) {
	pos, err := ParseFEN("r4r2/pp1q1B2/1n1N1Qpk/2p1pb2/8/3P4/PPP2PPP/R4RK1 w - - 20 1")
	if err != nil {
		t.Fatalf("Failed to parse FEN: %v", err)
	}

	moves := pos.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)

		child, ok := pos.Apply(m)
		if !ok {
			t.Fatalf("Apply rejected legal move %v", m)
		}

		mutable := pos.Copy()
		undo := mutable.MakeMove(m)
		if !undo.Valid {
			t.Fatalf("MakeMove rejected legal move %v", m)
		}

		if child.ToFEN() != mutable.ToFEN() {
			t.Errorf("Apply(%v) = %s, MakeMove gives %s", m, child.ToFEN(), mutable.ToFEN())
		}

		mutable.UnmakeMove(m, undo)
		if mutable.ToFEN() != pos.ToFEN() {
			t.Errorf("UnmakeMove(%v) did not restore the position", m)
		}
	}
}

package engine

import (
	"testing"

	"github.com/hailam/abhelper/internal/board"
	"github.com/hailam/abhelper/internal/eval"
	"github.com/hailam/abhelper/internal/hash"
)

func newTestSearcher(t *testing.T) *Searcher {
	t.Helper()
	evaluator, err := eval.NewNNUE("")
	if err != nil {
		t.Fatalf("NewNNUE: %v", err)
	}
	return NewSearcher(hash.NewKeyer(), hash.NewTable(1<<16), evaluator)
}

// TestSearchMiddlegame runs the reference middlegame position to
// depth 2: the search completes, the PV is at most two moves long,
// and every PV move is legal in the position it is played from.
func TestSearchMiddlegame(t *testing.T) {
	pos := mustParse(t, "5kr1/q4n2/2ppb3/4P3/1QP5/pP1BN3/P1K4R/8 b - - 2 42")
	s := newTestSearcher(t)

	score, pv := s.Search(pos, 2)

	if len(pv) == 0 || len(pv) > 2 {
		t.Fatalf("PV length = %d, want 1..2", len(pv))
	}

	walk := pos.Copy()
	for _, m := range pv {
		if !walk.GenerateLegalMoves().Contains(m) {
			t.Fatalf("PV move %v not legal in %s", m, walk.ToFEN())
		}
		child, ok := walk.Apply(m)
		if !ok {
			t.Fatalf("PV move %v rejected", m)
		}
		walk = child
	}

	if score <= MinEval || score >= MaxEval {
		t.Errorf("score %d outside the numeric contract", score)
	}
	if s.Nodes() == 0 {
		t.Error("no nodes counted")
	}

	t.Logf("depth 2: score %d, pv %v, %d nodes", score, pv, s.Nodes())
}

// TestQuiesceStandPat: with no captures available, quiescence returns
// exactly the leaf evaluation.
func TestQuiesceStandPat(t *testing.T) {
	pos := board.NewPosition()
	s := newTestSearcher(t)
	s.sd.Reset(pos.Copy(), s.keyer.KeyOf(pos))

	want := s.evaluate(pos)
	got := s.quiesce(MinEval, MaxEval, 0)

	if got != want {
		t.Errorf("quiesce = %d, evaluate = %d", got, want)
	}
}

// TestQuiesceBounds: the quiescence result never drops below the
// stand-pat-adjusted alpha (fail-soft only above beta).
func TestQuiesceBounds(t *testing.T) {
	pos := mustParse(t, "r4r2/pp1q1B2/1n1N1Qpk/2p1pb2/8/3P4/PPP2PPP/R4RK1 w - - 20 1")
	s := newTestSearcher(t)
	s.sd.Reset(pos.Copy(), s.keyer.KeyOf(pos))

	alpha := int32(-500)
	beta := int32(500)
	got := s.quiesce(alpha, beta, 0)

	standPat := s.evaluate(pos)
	if standPat < beta && got < alpha {
		t.Errorf("quiesce = %d dropped below alpha %d", got, alpha)
	}
	if s.sd.Depth() != 1 {
		t.Errorf("stack depth = %d after quiesce, want 1", s.sd.Depth())
	}
}

// TestStackBalance: after any complete alphaBeta call the stack depth
// equals its depth on entry.
func TestStackBalance(t *testing.T) {
	fens := []string{
		board.StartFEN,
		"5kr1/q4n2/2ppb3/4P3/1QP5/pP1BN3/P1K4R/8 b - - 2 42",
		"r4r2/pp1q1B2/1n1N1Qpk/2p1pb2/8/3P4/PPP2PPP/R4RK1 w - - 20 1",
	}

	for _, fen := range fens {
		pos := mustParse(t, fen)
		s := newTestSearcher(t)
		s.sd.Reset(pos.Copy(), s.keyer.KeyOf(pos))

		s.alphaBeta(3, MinEval, MaxEval, 0)

		if s.sd.Depth() != 1 {
			t.Errorf("%s: stack depth = %d after search, want 1", fen, s.sd.Depth())
		}
	}
}

// TestMateInOne: the back-rank mate is found with the mate score
// referenced to the root.
func TestMateInOne(t *testing.T) {
	pos := mustParse(t, "6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1")
	s := newTestSearcher(t)

	score, pv := s.Search(pos, 2)

	if score != MaxEval-1 {
		t.Errorf("score = %d, want %d (mate in one)", score, MaxEval-1)
	}
	if len(pv) == 0 || pv[0].String() != "a1a8" {
		t.Errorf("pv = %v, want a1a8 first", pv)
	}
}

// TestMatedScore: a side that is checkmated scores MinEval plus the
// mating ply.
func TestMatedScore(t *testing.T) {
	// Black to move, already mated
	pos := mustParse(t, "R6k/6pp/8/8/8/8/8/K7 b - - 0 1")
	s := newTestSearcher(t)
	s.sd.Reset(pos.Copy(), s.keyer.KeyOf(pos))

	got := s.alphaBeta(1, MinEval, MaxEval, 0)
	if got != MinEval {
		t.Errorf("mated-at-root score = %d, want %d", got, MinEval)
	}
}

// TestStalemateScore: no moves and no check scores zero.
func TestStalemateScore(t *testing.T) {
	pos := mustParse(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	s := newTestSearcher(t)
	s.sd.Reset(pos.Copy(), s.keyer.KeyOf(pos))

	if got := s.alphaBeta(3, MinEval, MaxEval, 0); got != 0 {
		t.Errorf("stalemate score = %d, want 0", got)
	}
}

// TestLeafStoresExact: a depth-0 node stores its quiescence result as
// an exact entry.
func TestLeafStoresExact(t *testing.T) {
	pos := board.NewPosition()
	s := newTestSearcher(t)
	key := s.keyer.KeyOf(pos)
	s.sd.Reset(pos.Copy(), key)

	score := s.alphaBeta(0, MinEval, MaxEval, 0)

	resp := s.tt.Get(key, 0, MinEval, MaxEval)
	if !resp.Known {
		t.Fatal("no entry stored for the leaf")
	}
	if resp.Value != score {
		t.Errorf("stored %d, returned %d", resp.Value, score)
	}
}

// plainNegamax is the reference for the window-equivalence property:
// same tree walk as alphaBeta with no window, no table, no null move.
func plainNegamax(s *Searcher, depth, ply int) int32 {
	pos, key := s.sd.Top()

	if depth <= 0 {
		return s.quiesce(MinEval, MaxEval, ply)
	}

	if ply >= MaxPly {
		return s.evaluate(pos)
	}

	if ply > 0 && s.sd.IsDraw() {
		return 0
	}

	moves := pos.GenerateLegalMoves()
	if moves.Len() == 0 {
		if pos.InCheck() {
			return MinEval + int32(ply)
		}
		return 0
	}

	best := MinEval
	for i := 0; i < moves.Len(); i++ {
		child, ok := pos.Apply(moves.Get(i))
		if !ok {
			continue
		}
		s.sd.Push(child, s.keyer.UpdateKey(key, pos, child))
		score := -plainNegamax(s, depth-1, ply+1)
		s.sd.Pop()

		if score > best {
			best = score
		}
	}
	return best
}

// TestAlphaBetaMatchesNegamax: with the infinite window and a fresh
// table, alpha-beta returns the plain negamax score. Null-move
// pruning is disabled on both sides so the trees agree.
func TestAlphaBetaMatchesNegamax(t *testing.T) {
	fens := []string{
		"k7/7R/8/8/8/8/8/K7 w - - 0 1",
		"4k3/pppp4/8/8/8/8/PPPP4/4K3 w - - 0 1",
	}

	evaluator, err := eval.NewNNUE("")
	if err != nil {
		t.Fatalf("NewNNUE: %v", err)
	}

	for _, fen := range fens {
		pos := mustParse(t, fen)

		ref := NewSearcher(hash.NewKeyer(), hash.NewTable(1), evaluator)
		ref.sd.Reset(pos.Copy(), ref.keyer.KeyOf(pos))
		ref.sd.nullMoveAllowed = false
		want := plainNegamax(ref, 3, 0)

		// A single-slot table cannot retain entries between nodes, so
		// the comparison isolates the windowing itself
		s := NewSearcher(hash.NewKeyer(), hash.NewTable(1), evaluator)
		s.sd.Reset(pos.Copy(), s.keyer.KeyOf(pos))
		s.sd.nullMoveAllowed = false
		got := s.alphaBeta(3, MinEval, MaxEval, 0)

		if got != want {
			t.Errorf("%s: alphaBeta = %d, negamax = %d", fen, got, want)
		}
	}
}

// TestRepetitionDraw: revisiting a position already on the stack or
// in the seeded history scores zero.
func TestRepetitionDraw(t *testing.T) {
	pos := board.NewPosition()
	s := newTestSearcher(t)
	key := s.keyer.KeyOf(pos)

	s.sd.Reset(pos.Copy(), key)
	if s.sd.IsDraw() {
		t.Fatal("fresh root reported a draw")
	}

	// The same fingerprint seeded as game history makes the root
	// position a repetition
	s.SetRootHistory([]uint64{key})
	if !s.sd.IsDraw() {
		t.Error("repetition of a seeded fingerprint not detected")
	}
}

func TestFiftyMoveDraw(t *testing.T) {
	pos := mustParse(t, "5k2/r3nb2/1p2pN1p/pP1pPp2/P2P1P2/8/4BK2/2R5 w - - 100 1")
	s := newTestSearcher(t)
	s.sd.Reset(pos.Copy(), s.keyer.KeyOf(pos))

	if !s.sd.IsDraw() {
		t.Error("half-move clock at 100 not scored as a draw")
	}
}

// TestStopKeepsLastIteration: a stop during iteration N keeps the
// result of iteration N-1.
func TestStopKeepsLastIteration(t *testing.T) {
	pos := board.NewPosition()
	s := newTestSearcher(t)

	var depth1PV []board.Move
	s.OnInfo = func(info SearchInfo) {
		if info.Depth == 1 {
			depth1PV = info.PV
			s.Stop()
		}
	}

	_, pv := s.Search(pos, 30)

	if len(pv) == 0 {
		t.Fatal("stopped search returned no PV")
	}
	if len(depth1PV) == 0 || pv[0] != depth1PV[0] {
		t.Errorf("retained pv %v does not match depth-1 pv %v", pv, depth1PV)
	}
}

// TestSearchDeterministic: identical searches from fresh state return
// identical results.
func TestSearchDeterministic(t *testing.T) {
	pos := mustParse(t, "5kr1/q4n2/2ppb3/4P3/1QP5/pP1BN3/P1K4R/8 b - - 2 42")

	s1 := newTestSearcher(t)
	score1, pv1 := s1.Search(pos, 3)

	s2 := newTestSearcher(t)
	score2, pv2 := s2.Search(pos, 3)

	if score1 != score2 {
		t.Errorf("scores differ: %d vs %d", score1, score2)
	}
	if len(pv1) != len(pv2) {
		t.Fatalf("pv lengths differ: %v vs %v", pv1, pv2)
	}
	for i := range pv1 {
		if pv1[i] != pv2[i] {
			t.Errorf("pv diverges at %d: %v vs %v", i, pv1, pv2)
		}
	}
}

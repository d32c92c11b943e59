// Package engine implements the search core: iterative-deepening
// negamax alpha-beta with principal-variation search, null-move
// pruning, quiescence at the horizon, and a Zobrist-keyed
// transposition table.
package engine

import (
	"sync/atomic"
	"time"

	"github.com/hailam/abhelper/internal/board"
	"github.com/hailam/abhelper/internal/eval"
	"github.com/hailam/abhelper/internal/hash"
)

// Score bounds. Mate scores are referenced to the root by the ply
// term so shorter mates are preferred.
const (
	MinEval int32 = -100000
	MaxEval int32 = 100000

	// MaxPly bounds the selective search depth.
	MaxPly = 50
)

// Search tuning constants.
const (
	// nullMoveReduction is the depth reduction R of null-move pruning.
	nullMoveReduction = 2

	// probeWindow is the width of the zero-window probes used by PV
	// search and the null-move search, in centipawns.
	probeWindow int32 = 100
)

// SearchInfo reports one completed iteration of the deepening loop.
type SearchInfo struct {
	Depth int
	Score int32
	Nodes uint64
	Time  time.Duration
	PV    []board.Move
}

// Searcher performs the alpha-beta search. The transposition table,
// keyer, and evaluator are injected collaborators; the searcher owns
// the stack, the ordering state, and the PV table.
type Searcher struct {
	keyer     *hash.Keyer
	tt        *hash.Table
	orderer   *MoveOrderer
	evaluator eval.Evaluator

	sd    SearchData
	pv    PVTable
	nodes uint64

	stopFlag atomic.Bool

	// Evaluator scratch: 32 pieces plus terminator, reused across
	// calls so the hot path does not allocate.
	pieceBuf  [eval.MaxPieces]int
	squareBuf [eval.MaxPieces]int

	// OnInfo, when set, receives one report per completed iteration.
	OnInfo func(SearchInfo)
}

// NewSearcher creates a searcher around the given collaborators.
func NewSearcher(keyer *hash.Keyer, tt *hash.Table, evaluator eval.Evaluator) *Searcher {
	return &Searcher{
		keyer:     keyer,
		tt:        tt,
		orderer:   NewMoveOrderer(),
		evaluator: evaluator,
	}
}

// Stop signals the search to stop. The in-flight iteration is
// discarded in favour of the last completed one.
func (s *Searcher) Stop() {
	s.stopFlag.Store(true)
}

// Nodes returns the number of nodes visited by the last search.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// SetRootHistory seeds the fingerprints of the game played before the
// root position, for repetition detection.
func (s *Searcher) SetRootHistory(keys []uint64) {
	s.sd.SetRootHistory(keys)
}

// stopped returns true if the search should unwind.
func (s *Searcher) stopped() bool {
	return s.stopFlag.Load()
}

// Search runs the iterative-deepening loop from depth 1 to maxDepth
// and returns the score and principal variation of the deepest
// completed iteration.
func (s *Searcher) Search(pos *board.Position, maxDepth int) (int32, []board.Move) {
	s.stopFlag.Store(false)
	s.nodes = 0
	s.orderer.NewSearch()

	root := pos.Copy()
	s.sd.Reset(root, s.keyer.KeyOf(root))

	start := time.Now()

	var bestScore int32
	var bestPV []board.Move

	for depth := 1; depth <= maxDepth; depth++ {
		score := s.alphaBeta(depth, MinEval, MaxEval, 0)
		if s.stopped() {
			break
		}

		bestScore = score
		bestPV = s.pv.line(0)

		if s.OnInfo != nil {
			s.OnInfo(SearchInfo{
				Depth: depth,
				Score: bestScore,
				Nodes: s.nodes,
				Time:  time.Since(start),
				PV:    bestPV,
			})
		}

		// A forced mate does not get better with more depth
		if bestScore >= MaxEval-MaxPly || bestScore <= MinEval+MaxPly {
			break
		}
	}

	return bestScore, bestPV
}

// alphaBeta searches the top of the stack to the given depth inside
// the (alpha, beta) window.
func (s *Searcher) alphaBeta(depth int, alpha, beta int32, ply int) int32 {
	if s.stopped() {
		return 0
	}

	s.pv.reset(ply)

	pos, key := s.sd.Top()

	// Transposition table probe: a usable score ends the node, the
	// stored move seeds the ordering either way.
	resp := s.tt.Get(key, depth, alpha, beta)
	if resp.Known {
		s.nodes++
		// A root hit still needs a move to report
		if ply == 0 && resp.Move != board.NoMove {
			s.pv.reset(1)
			s.pv.update(0, resp.Move)
		}
		return resp.Value
	}

	// Horizon: resolve tactics with quiescence and store the result
	if depth <= 0 {
		score := s.quiesce(alpha, beta, ply)
		s.tt.PutScore(key, 0, score, hash.BoundExact, 0)
		return score
	}

	s.nodes++

	if ply >= MaxPly {
		return s.evaluate(pos)
	}

	if ply > 0 && s.sd.IsDraw() {
		return 0
	}

	inCheck := pos.InCheck()

	// Null-move pruning: give the opponent a free move at reduced
	// depth; if the score still clears beta the node is pruned.
	// Skipped at the root, in check, recursively, and without
	// non-pawn material (zugzwang).
	if ply > 0 && s.sd.nullMoveAllowed && depth >= nullMoveReduction+1 &&
		!inCheck && pos.HasNonPawnMaterial() {
		null := pos.PassTurn()
		nullKey := s.keyer.UpdateKey(key, pos, null)

		s.sd.Push(null, nullKey)
		s.sd.nullMoveAllowed = false
		score := -s.alphaBeta(depth-1-nullMoveReduction, -beta, -beta+probeWindow, ply+1)
		s.sd.nullMoveAllowed = true
		s.sd.Pop()

		// The null sub-search's variation is meaningless
		s.pv.reset(ply + 1)

		if score > beta {
			return beta
		}
	}

	moves := pos.GenerateLegalMoves()

	if moves.Len() == 0 {
		if inCheck {
			return MinEval + int32(ply)
		}
		return 0
	}

	scores := s.orderer.ScoreMoves(pos, moves, ply, resp.Move)

	bestEval := alpha
	bestMove := board.NoMove
	bound := hash.BoundUpper
	pvFound := false

	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		move := moves.Get(i)
		quiet := s.orderer.CapturePriority(pos, move) == 0

		child, ok := pos.Apply(move)
		if !ok {
			continue
		}
		childKey := s.keyer.UpdateKey(key, pos, child)
		s.sd.Push(child, childKey)

		var score int32
		if pvFound {
			// Zero-window probe around alpha; re-search with the
			// full window when the probe lands inside it
			score = -s.alphaBeta(depth-1, -alpha-probeWindow, -alpha, ply+1)
			if score > alpha && score < beta {
				score = -s.alphaBeta(depth-1, -beta, -alpha, ply+1)
			}
		} else {
			score = -s.alphaBeta(depth-1, -beta, -alpha, ply+1)
		}

		s.sd.Pop()

		if s.stopped() {
			return 0
		}

		if score > bestEval {
			bestEval = score
			bestMove = move
			s.pv.update(ply, move)
		}

		if score >= beta {
			bound = hash.BoundLower
			if quiet {
				s.orderer.UpdateKillers(move, ply)
				s.orderer.UpdateHistory(move, depth)
			}
			break
		}

		if score > alpha {
			bound = hash.BoundExact
			pvFound = true
			alpha = score
		}

		s.pv.reset(ply + 1)
	}

	s.tt.PutMove(key, depth, bestMove, bestEval, bound, 0)

	return bestEval
}

// quiesce resolves tactical instability at the horizon by searching
// only captures (and promotions, which the capture generator emits).
// Fail-soft on the stand-pat cutoff; no table probes, no killer
// updates.
func (s *Searcher) quiesce(alpha, beta int32, ply int) int32 {
	if s.stopped() {
		return 0
	}

	pos, key := s.sd.Top()

	standPat := s.evaluate(pos)

	if standPat >= beta {
		return standPat
	}
	if standPat > alpha {
		alpha = standPat
	}

	moves := pos.GenerateCaptures()
	scores := s.orderer.ScoreMoves(pos, moves, ply, board.NoMove)

	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		move := moves.Get(i)

		child, ok := pos.Apply(move)
		if !ok {
			continue
		}
		childKey := s.keyer.UpdateKey(key, pos, child)
		s.sd.Push(child, childKey)

		score := -s.quiesce(-beta, -alpha, ply+1)

		s.sd.Pop()

		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}

	return alpha
}

// evaluate builds the piece list for the top position into the scratch
// buffers and hands it to the leaf evaluator. The first two entries
// are the white and black kings; a trailing zero terminates the list.
func (s *Searcher) evaluate(pos *board.Position) int32 {
	// White codes: K=1 Q=2 R=3 B=4 N=5 P=6; black adds 6
	codeOf := [6]int{6, 5, 4, 3, 2, 1} // indexed by board.PieceType

	s.pieceBuf[0] = eval.WhiteKing
	s.squareBuf[0] = int(pos.KingSquare[board.White])
	s.pieceBuf[1] = eval.BlackKing
	s.squareBuf[1] = int(pos.KingSquare[board.Black])
	n := 2

	for c := board.White; c <= board.Black; c++ {
		colorOffset := 0
		if c == board.Black {
			colorOffset = 6
		}
		for pt := board.Pawn; pt < board.King; pt++ {
			bb := pos.Pieces[c][pt]
			for bb != 0 {
				sq := bb.PopLSB()
				s.pieceBuf[n] = codeOf[pt] + colorOffset
				s.squareBuf[n] = int(sq)
				n++
			}
		}
	}

	s.pieceBuf[n] = 0

	player := 0
	if pos.SideToMove == board.Black {
		player = 1
	}

	return s.evaluator.Evaluate(player, s.pieceBuf[:n+1], s.squareBuf[:n+1])
}

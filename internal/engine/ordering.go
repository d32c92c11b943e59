package engine

import "github.com/hailam/abhelper/internal/board"

// Move ordering priorities. Higher is tried earlier.
const (
	HashMovePriority int32 = 100
	KillerPriority   int32 = 5
)

// mvvLva is the capture priority table: rows are the victim
// (P, N, B, R, Q — the king is never a victim), columns the attacker
// (P, N, B, R, Q, K).
var mvvLva = [5][6]int32{
	{15, 14, 13, 12, 11, 10}, // Pawn victim
	{25, 24, 23, 22, 21, 20}, // Knight victim
	{35, 34, 33, 32, 31, 30}, // Bishop victim
	{45, 44, 43, 42, 41, 40}, // Rook victim
	{55, 54, 53, 52, 51, 50}, // Queen victim
}

// priorityScale separates the priority (major key) from the quiet
// history tie-break (minor key) in a single sort score.
const priorityScale int32 = 1 << 20

// MoveOrderer assigns sort scores to legal moves using the hash move,
// MVV-LVA for captures, per-ply killers, and a history table that
// breaks ties among quiet moves. Killers hold up to two quiet cutoff
// moves per ply; duplicates are ignored.
type MoveOrderer struct {
	killers [MaxPly + 1][2]board.Move
	history [64][64]int32
}

// NewMoveOrderer creates an empty orderer.
func NewMoveOrderer() *MoveOrderer {
	return &MoveOrderer{}
}

// NewSearch clears the killers and ages the history scores.
func (mo *MoveOrderer) NewSearch() {
	for i := range mo.killers {
		mo.killers[i][0] = board.NoMove
		mo.killers[i][1] = board.NoMove
	}

	for i := range mo.history {
		for j := range mo.history[i] {
			mo.history[i][j] /= 2
		}
	}
}

// CapturePriority returns the MVV-LVA priority of a move, or 0 for a
// quiet move. A capture is any move whose destination is occupied by
// the opponent; en passant has the fixed priority 10.
func (mo *MoveOrderer) CapturePriority(pos *board.Position, m board.Move) int32 {
	if m.IsEnPassant() {
		return 10
	}

	victim := pos.PieceAt(m.To())
	if victim == board.NoPiece {
		return 0
	}

	attacker := pos.PieceAt(m.From())
	if attacker == board.NoPiece || victim.Type() >= board.King {
		return 0
	}

	return mvvLva[victim.Type()][attacker.Type()]
}

// Priority returns the ordering priority of a move: hash move 100,
// killer 5, captures by MVV-LVA, quiet moves 0.
func (mo *MoveOrderer) Priority(pos *board.Position, m board.Move, ply int, hashMove board.Move) int32 {
	if m == hashMove {
		return HashMovePriority
	}

	if ply < len(mo.killers) && (m == mo.killers[ply][0] || m == mo.killers[ply][1]) {
		return KillerPriority
	}

	return mo.CapturePriority(pos, m)
}

// ScoreMoves assigns sort scores to every move in the list. The
// priority is the major key; quiet moves carry their history score as
// a tie-break. With a fresh orderer the history is zero and equal
// priorities keep the generator's insertion order.
func (mo *MoveOrderer) ScoreMoves(pos *board.Position, moves *board.MoveList, ply int, hashMove board.Move) []int32 {
	scores := make([]int32, moves.Len())

	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		priority := mo.Priority(pos, m, ply, hashMove)
		score := priority * priorityScale
		if priority == 0 {
			score += mo.historyTiebreak(m)
		}
		scores[i] = score
	}

	return scores
}

// historyTiebreak clamps a history score below one priority step.
func (mo *MoveOrderer) historyTiebreak(m board.Move) int32 {
	h := mo.history[m.From()][m.To()]
	if h >= priorityScale {
		return priorityScale - 1
	}
	if h < 0 {
		return 0
	}
	return h
}

// PickMove moves the best remaining move to position index. Sorting
// stays lazy: only as much ordering work happens as moves actually
// searched.
func PickMove(moves *board.MoveList, scores []int32, index int) {
	best := index
	for j := index + 1; j < moves.Len(); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	if best != index {
		moves.Swap(index, best)
		scores[index], scores[best] = scores[best], scores[index]
	}
}

// UpdateKillers records a quiet cutoff move at the given ply.
func (mo *MoveOrderer) UpdateKillers(m board.Move, ply int) {
	if ply >= MaxPly {
		return
	}

	if mo.killers[ply][0] == m {
		return
	}

	mo.killers[ply][1] = mo.killers[ply][0]
	mo.killers[ply][0] = m
}

// Killers returns the killer set for a ply.
func (mo *MoveOrderer) Killers(ply int) [2]board.Move {
	return mo.killers[ply]
}

// UpdateHistory rewards a quiet cutoff move with a depth-squared bonus.
func (mo *MoveOrderer) UpdateHistory(m board.Move, depth int) {
	from := m.From()
	to := m.To()

	mo.history[from][to] += int32(depth * depth)
	if mo.history[from][to] >= priorityScale {
		for i := range mo.history {
			for j := range mo.history[i] {
				mo.history[i][j] /= 2
			}
		}
	}
}

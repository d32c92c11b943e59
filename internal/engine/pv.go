package engine

import "github.com/hailam/abhelper/internal/board"

// PVTable stores the principal variation as a triangular table indexed
// by ply. Each node prepends its chosen move to the child row, so no
// per-node allocation happens while searching.
type PVTable struct {
	length [MaxPly + 1]int
	moves  [MaxPly + 1][MaxPly + 1]board.Move
}

// reset clears the row for a ply. Called on node entry so returns that
// bypass the move loop leave an empty child variation.
func (pv *PVTable) reset(ply int) {
	pv.length[ply] = ply
}

// update records move as the choice at ply and pulls up the child row.
func (pv *PVTable) update(ply int, move board.Move) {
	pv.moves[ply][ply] = move
	for i := ply + 1; i < pv.length[ply+1]; i++ {
		pv.moves[ply][i] = pv.moves[ply+1][i]
	}
	pv.length[ply] = pv.length[ply+1]
}

// line returns a copy of the variation rooted at the given ply.
func (pv *PVTable) line(ply int) []board.Move {
	n := pv.length[ply] - ply
	if n <= 0 {
		return nil
	}
	out := make([]board.Move, n)
	copy(out, pv.moves[ply][ply:pv.length[ply]])
	return out
}

package engine

import "github.com/hailam/abhelper/internal/board"

// frame is one search stack entry: a position and its fingerprint.
type frame struct {
	pos *board.Position
	key uint64
}

// SearchData carries the per-search stack of (position, fingerprint)
// frames: one push per make-move, one pop per unmake. It also holds
// the game history seeded before the search for repetition detection
// and the flag guarding recursive null moves.
type SearchData struct {
	frames      []frame
	rootHistory []uint64

	nullMoveAllowed bool
}

// Reset seeds the stack with the root position and its fingerprint.
func (sd *SearchData) Reset(root *board.Position, key uint64) {
	if sd.frames == nil {
		sd.frames = make([]frame, 0, MaxPly+8)
	}
	sd.frames = sd.frames[:0]
	sd.frames = append(sd.frames, frame{pos: root, key: key})
	sd.nullMoveAllowed = true
}

// SetRootHistory installs the fingerprints of positions played before
// the root, used by the repetition check.
func (sd *SearchData) SetRootHistory(keys []uint64) {
	sd.rootHistory = append(sd.rootHistory[:0], keys...)
}

// Push adds a child frame.
func (sd *SearchData) Push(pos *board.Position, key uint64) {
	sd.frames = append(sd.frames, frame{pos: pos, key: key})
}

// Pop removes the top frame.
func (sd *SearchData) Pop() {
	sd.frames = sd.frames[:len(sd.frames)-1]
}

// Top returns the current position and its fingerprint.
func (sd *SearchData) Top() (*board.Position, uint64) {
	f := &sd.frames[len(sd.frames)-1]
	return f.pos, f.key
}

// Depth returns the number of frames on the stack.
func (sd *SearchData) Depth() int {
	return len(sd.frames)
}

// IsDraw reports whether the current position is drawn by the
// fifty-move rule, insufficient material, or repetition of its
// fingerprint anywhere in the search stack or the seeded history.
func (sd *SearchData) IsDraw() bool {
	pos, key := sd.Top()

	if pos.HalfMoveClock >= 100 {
		return true
	}

	if pos.IsInsufficientMaterial() {
		return true
	}

	count := 0
	for _, k := range sd.rootHistory {
		if k == key {
			count++
		}
	}
	for i := range sd.frames {
		if sd.frames[i].key == key {
			count++
		}
	}
	return count >= 2
}

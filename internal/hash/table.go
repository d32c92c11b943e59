package hash

import "github.com/hailam/abhelper/internal/board"

// Bound classifies the score stored in a table entry relative to the
// window it was searched with.
type Bound uint8

const (
	BoundExact Bound = iota // Score is the searched value
	BoundLower              // Score failed high (beta cutoff)
	BoundUpper              // Score failed low
)

// Entry is a fixed-size transposition table record. An empty slot has
// a zero key and zero move.
type Entry struct {
	Key   uint64
	Eval  int32
	Depth int16
	Age   uint16
	Move  board.Move
	Bound Bound
}

// Response is the result of probing the table.
// On a key match, Move is the stored move, usable for ordering even
// when the score itself cannot be trusted for this window.
type Response struct {
	Known bool
	Value int32
	Move  board.Move
}

// Table is a fixed-capacity, direct-mapped transposition table with
// an always-replace policy. It is owned and mutated by a single
// searcher; callers needing sharing must arrange exclusive access.
type Table struct {
	entries []Entry
	size    uint64
}

// NewTable creates a table with the given number of entries.
func NewTable(entries int) *Table {
	if entries < 1 {
		entries = 1
	}
	return &Table{
		entries: make([]Entry, entries),
		size:    uint64(entries),
	}
}

// entrySize is the approximate memory footprint of one Entry.
const entrySize = 24

// NewTableMB creates a table sized to roughly the given number of megabytes.
func NewTableMB(sizeMB int) *Table {
	if sizeMB < 1 {
		sizeMB = 1
	}
	return NewTable(sizeMB * 1024 * 1024 / entrySize)
}

// Get probes the table. On a key mismatch the response is empty; a
// collided slot's move belongs to an unrelated position and must not
// reach the move ordering. When the key matches, the stored move comes
// back even if the score is unusable, and the score is usable when the
// stored depth is at least the requested depth and the bound agrees
// with the window:
//
//	Exact → the stored eval;
//	Upper → alpha, when the stored eval ≤ alpha;
//	Lower → beta, when the stored eval ≥ beta.
func (t *Table) Get(key uint64, depth int, alpha, beta int32) Response {
	entry := &t.entries[key%t.size]

	if entry.Key != key {
		return Response{}
	}

	resp := Response{Move: entry.Move}

	if int(entry.Depth) < depth {
		return resp
	}

	switch entry.Bound {
	case BoundExact:
		resp.Known = true
		resp.Value = entry.Eval
	case BoundUpper:
		if entry.Eval <= alpha {
			resp.Known = true
			resp.Value = alpha
		}
	case BoundLower:
		if entry.Eval >= beta {
			resp.Known = true
			resp.Value = beta
		}
	}

	return resp
}

// Put writes an entry, unconditionally replacing the slot.
func (t *Table) Put(entry Entry) {
	t.entries[entry.Key%t.size] = entry
}

// PutScore stores a move-less entry.
func (t *Table) PutScore(key uint64, depth int, eval int32, bound Bound, age uint16) {
	t.Put(Entry{
		Key:   key,
		Depth: int16(depth),
		Eval:  eval,
		Bound: bound,
		Age:   age,
	})
}

// PutMove stores an entry with its best move.
func (t *Table) PutMove(key uint64, depth int, move board.Move, eval int32, bound Bound, age uint16) {
	t.Put(Entry{
		Key:   key,
		Depth: int16(depth),
		Move:  move,
		Eval:  eval,
		Bound: bound,
		Age:   age,
	})
}

// Size returns the table's capacity in entries.
func (t *Table) Size() int {
	return int(t.size)
}

// Clear empties the table.
func (t *Table) Clear() {
	for i := range t.entries {
		t.entries[i] = Entry{}
	}
}

// Package hash implements position fingerprinting and the
// transposition table used by the search.
package hash

import "github.com/hailam/abhelper/internal/board"

// Keyer derives and incrementally updates 64-bit position
// fingerprints. The key material covers every position feature the
// fingerprint depends on: piece placement per color, side to move,
// en passant file, and the full 4-bit castling mask.
//
// The table is generated once from a fixed-seed PRNG so identical
// positions yield identical fingerprints across runs. Keyers are
// read-only after construction and safe to share.
type Keyer struct {
	piece    [2][6][64]uint64 // [Color][PieceType][Square]
	epFile   [8]uint64        // one per file
	castling [16]uint64       // one per castling-mask value
	side     uint64           // XOR'd in when black to move
}

// prng is an xorshift64* generator used only to seed the key table.
type prng struct {
	state uint64
}

func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

const keyerSeed = 0x9E4C27A591BD03F7

// NewKeyer builds the key table.
func NewKeyer() *Keyer {
	k := &Keyer{}
	rng := &prng{state: keyerSeed}

	for c := board.White; c <= board.Black; c++ {
		for pt := board.Pawn; pt <= board.King; pt++ {
			for sq := board.A1; sq <= board.H8; sq++ {
				k.piece[c][pt][sq] = rng.next()
			}
		}
	}

	k.side = rng.next()

	for file := 0; file < 8; file++ {
		k.epFile[file] = rng.next()
	}

	for mask := 0; mask < 16; mask++ {
		k.castling[mask] = rng.next()
	}

	return k
}

// KeyOf computes the fingerprint of a position from scratch.
// The fingerprint depends only on piece placement, side to move,
// castling rights, and the en passant file; move counters do not
// contribute.
func (k *Keyer) KeyOf(pos *board.Position) uint64 {
	var key uint64

	for c := board.White; c <= board.Black; c++ {
		for pt := board.Pawn; pt <= board.King; pt++ {
			bb := pos.Pieces[c][pt]
			for bb != 0 {
				sq := bb.PopLSB()
				key ^= k.piece[c][pt][sq]
			}
		}
	}

	if pos.SideToMove == board.Black {
		key ^= k.side
	}

	key ^= k.castling[pos.CastlingRights]

	if pos.EnPassant != board.NoSquare {
		key ^= k.epFile[pos.EnPassant.File()]
	}

	return key
}

// UpdateKey derives next's fingerprint from prev's by XOR-ing the
// symmetric difference of the piece bitboards plus the castling,
// en passant, and side-to-move deltas. The result equals
// KeyOf(next) for every transition between two positions whose
// sides to move differ; no allocation, cost proportional to the
// number of changed squares.
func (k *Keyer) UpdateKey(prevKey uint64, prev, next *board.Position) uint64 {
	key := prevKey

	for c := board.White; c <= board.Black; c++ {
		for pt := board.Pawn; pt <= board.King; pt++ {
			delta := prev.Pieces[c][pt] ^ next.Pieces[c][pt]
			for delta != 0 {
				sq := delta.PopLSB()
				key ^= k.piece[c][pt][sq]
			}
		}
	}

	// Castling mask keys are indexed by the full 4-bit mask, so the
	// transition XORs the old mask key out and the new one in.
	key ^= k.castling[prev.CastlingRights]
	key ^= k.castling[next.CastlingRights]

	if prev.EnPassant != board.NoSquare {
		key ^= k.epFile[prev.EnPassant.File()]
	}
	if next.EnPassant != board.NoSquare {
		key ^= k.epFile[next.EnPassant.File()]
	}

	key ^= k.side

	return key
}

package eval

import (
	"fmt"

	"github.com/hailam/chessplay/sfnnue"
	"github.com/hailam/chessplay/sfnnue/features"
)

// sfPiece converts a piece-list code to the Stockfish network piece
// encoding (W_PAWN=1 … W_KING=6, B_PAWN=9 … B_KING=14).
func sfPiece(code int) int {
	if code <= 6 {
		return 7 - code
	}
	return 21 - code
}

// Stockfish evaluates piece lists with official Stockfish networks
// through the sfnnue port. The big network provides the positional
// term; the PSQT term is averaged across both networks.
type Stockfish struct {
	nets  *sfnnue.Networks
	big   *sfnnue.Accumulator
	small *sfnnue.Accumulator

	active [MaxPieces]int
}

// NewStockfish loads the big and small network files.
func NewStockfish(bigFile, smallFile string) (*Stockfish, error) {
	nets, err := sfnnue.LoadNetworks(bigFile, smallFile)
	if err != nil {
		return nil, fmt.Errorf("loading networks: %w", err)
	}

	return &Stockfish{
		nets:  nets,
		big:   sfnnue.NewAccumulator(nets.Big.FeatureTransformer.HalfDimensions),
		small: sfnnue.NewAccumulator(nets.Small.FeatureTransformer.HalfDimensions),
	}, nil
}

// Evaluate scores a piece list. Both accumulators are refreshed from
// scratch; the scratch index buffer is reused across calls.
func (e *Stockfish) Evaluate(player int, pieces, squares []int) int32 {
	count := listLen(pieces)

	e.compute(e.nets.Big, e.big, pieces, squares, count)
	e.compute(e.nets.Small, e.small, pieces, squares, count)

	bigPsqt, bigPositional := e.nets.Big.Evaluate(
		e.big.Accumulation,
		e.big.PSQTAccumulation,
		player,
		count,
	)

	smallPsqt, _ := e.nets.Small.Evaluate(
		e.small.Accumulation,
		e.small.PSQTAccumulation,
		player,
		count,
	)

	return bigPositional + (smallPsqt+bigPsqt)/2
}

// compute refreshes one network's accumulator for both perspectives.
// The king squares come from the first two list entries.
func (e *Stockfish) compute(net *sfnnue.Network, acc *sfnnue.Accumulator, pieces, squares []int, count int) {
	kings := [2]int{squares[0], squares[1]}

	for perspective := 0; perspective < 2; perspective++ {
		n := 0
		for i := 0; i < count; i++ {
			idx := features.MakeIndex(perspective, squares[i], sfPiece(pieces[i]), kings[perspective])
			e.active[n] = idx
			n++
		}

		net.FeatureTransformer.ComputeAccumulator(
			e.active[:n],
			acc.Accumulation[perspective],
			acc.PSQTAccumulation[perspective],
		)
		acc.Computed[perspective] = true
		acc.KingSq[perspective] = kings[perspective]
	}
}

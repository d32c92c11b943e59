package eval

// Network dimensions and quantization constants.
const (
	L1Size     = 256 // First hidden layer (per perspective, 512 combined)
	L2Size     = 32  // Second hidden layer
	OutputSize = 1

	L1QuantShift = 6   // L1 output scaled by 2^6
	L2QuantShift = 6   // L2 output scaled by 2^6
	OutputScale  = 600 // Final scale to centipawns
)

// Network holds the quantized HalfKP network weights.
type Network struct {
	// Layer 1: HalfKPSize -> L1Size (per perspective)
	L1Weights [HalfKPSize][L1Size]int16
	L1Bias    [L1Size]int16

	// Layer 2: L1Size*2 (both perspectives) -> L2Size
	L2Weights [L1Size * 2][L2Size]int8
	L2Bias    [L2Size]int32

	// Output layer: L2Size -> 1
	OutputWeights [L2Size]int8
	OutputBias    int32
}

// NewNetwork creates a network with zero weights.
func NewNetwork() *Network {
	return &Network{}
}

// accumulator holds the hidden layer sums for both perspectives.
type accumulator struct {
	white [L1Size]int16
	black [L1Size]int16
}

// refresh recomputes both perspectives' accumulators from a piece list.
// squares[0] and squares[1] carry the king squares the HalfKP features
// are relative to.
func (acc *accumulator) refresh(n *Network, pieces, squares []int) {
	whiteKing := squares[0]
	blackKing := squares[1]

	copy(acc.white[:], n.L1Bias[:])
	copy(acc.black[:], n.L1Bias[:])

	for i := 0; pieces[i] != 0; i++ {
		code := pieces[i]
		sq := squares[i]

		if idx := halfKPIndex(0, whiteKing, code, sq); idx >= 0 {
			w := &n.L1Weights[idx]
			for j := 0; j < L1Size; j++ {
				acc.white[j] += w[j]
			}
		}
		if idx := halfKPIndex(1, blackKing, code, sq); idx >= 0 {
			w := &n.L1Weights[idx]
			for j := 0; j < L1Size; j++ {
				acc.black[j] += w[j]
			}
		}
	}
}

// forward computes the network output given an accumulator.
// Returns the evaluation in centipawns from the perspective of the
// side to move (player: white=0, black=1).
func (n *Network) forward(acc *accumulator, player int) int32 {
	var stm, nstm *[L1Size]int16
	if player == 0 {
		stm = &acc.white
		nstm = &acc.black
	} else {
		stm = &acc.black
		nstm = &acc.white
	}

	// Layer 1 output: clipped ReLU over the accumulated values, side
	// to move first.
	var l1Out [L1Size * 2]int8
	for i := 0; i < L1Size; i++ {
		l1Out[i] = ClampedReLU(stm[i])
		l1Out[L1Size+i] = ClampedReLU(nstm[i])
	}

	// Layer 2: matrix multiply + bias + clipped ReLU
	var l2Out [L2Size]int8
	for i := 0; i < L2Size; i++ {
		sum := n.L2Bias[i]
		for j := 0; j < L1Size*2; j++ {
			sum += int32(l1Out[j]) * int32(n.L2Weights[j][i])
		}
		l2Out[i] = ClampedReLU(int16(sum >> L1QuantShift))
	}

	// Output layer
	output := n.OutputBias
	for i := 0; i < L2Size; i++ {
		output += int32(l2Out[i]) * int32(n.OutputWeights[i])
	}

	return output * OutputScale >> (L2QuantShift + 8)
}

// InitRandom initializes weights with small deterministic values.
// Used when no weights file is supplied; tests rely on the
// determinism.
func (n *Network) InitRandom(seed int64) {
	state := uint64(seed)
	next := func() int16 {
		state = state*6364136223846793005 + 1442695040888963407
		return int16((state>>48)&0xFF) - 128
	}

	for i := 0; i < HalfKPSize; i++ {
		for j := 0; j < L1Size; j++ {
			n.L1Weights[i][j] = next() >> 5
		}
	}

	for i := 0; i < L1Size; i++ {
		n.L1Bias[i] = next() >> 3
	}

	for i := 0; i < L1Size*2; i++ {
		for j := 0; j < L2Size; j++ {
			val := next() >> 6
			if val > 127 {
				val = 127
			} else if val < -128 {
				val = -128
			}
			n.L2Weights[i][j] = int8(val)
		}
	}

	for i := 0; i < L2Size; i++ {
		n.L2Bias[i] = int32(next())
	}

	for i := 0; i < L2Size; i++ {
		val := next() >> 6
		if val > 127 {
			val = 127
		} else if val < -128 {
			val = -128
		}
		n.OutputWeights[i] = int8(val)
	}

	n.OutputBias = int32(next()) * 100
}

// NNUE is the in-repo piece-list evaluator.
type NNUE struct {
	net *Network
	acc accumulator
}

// NewNNUE creates an evaluator. When weightsFile is empty the network
// is seeded with deterministic small random weights.
func NewNNUE(weightsFile string) (*NNUE, error) {
	net := NewNetwork()

	if weightsFile != "" {
		if err := net.LoadWeights(weightsFile); err != nil {
			return nil, err
		}
	} else {
		net.InitRandom(12345)
	}

	return &NNUE{net: net}, nil
}

// Evaluate scores a piece list. The accumulator is recomputed from
// scratch; the struct is reused across calls so the hot path does not
// allocate.
func (e *NNUE) Evaluate(player int, pieces, squares []int) int32 {
	e.acc.refresh(e.net, pieces, squares)
	return e.net.forward(&e.acc, player)
}

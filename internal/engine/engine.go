package engine

import (
	"time"

	"github.com/hailam/abhelper/internal/board"
	"github.com/hailam/abhelper/internal/eval"
	"github.com/hailam/abhelper/internal/hash"
)

// Config selects the engine's collaborators.
type Config struct {
	// TTSizeMB is the transposition table size in megabytes.
	TTSizeMB int

	// WeightsFile is the in-repo network weights file. Empty means
	// the deterministic built-in initialization.
	WeightsFile string

	// StockfishBig/StockfishSmall select official Stockfish networks
	// through sfnnue instead of the in-repo network.
	StockfishBig   string
	StockfishSmall string
}

// Limits constrains one analysis call.
type Limits struct {
	Depth    int           // Maximum depth (0 means MaxPly)
	MoveTime time.Duration // Wall-clock budget (0 means none)
}

// Result is the outcome of an analysis.
type Result struct {
	Score int32
	PV    []board.Move
	Nodes uint64
}

// Engine wires the keyer, transposition table, evaluator, and
// searcher together.
type Engine struct {
	keyer    *hash.Keyer
	tt       *hash.Table
	searcher *Searcher
}

// New builds an engine from the config. Evaluator construction
// failure is reported here, before any search begins.
func New(cfg Config) (*Engine, error) {
	ttSize := cfg.TTSizeMB
	if ttSize <= 0 {
		ttSize = 64
	}

	var evaluator eval.Evaluator
	var err error
	if cfg.StockfishBig != "" {
		evaluator, err = eval.NewStockfish(cfg.StockfishBig, cfg.StockfishSmall)
	} else {
		evaluator, err = eval.NewNNUE(cfg.WeightsFile)
	}
	if err != nil {
		return nil, err
	}

	keyer := hash.NewKeyer()
	tt := hash.NewTableMB(ttSize)

	return &Engine{
		keyer:    keyer,
		tt:       tt,
		searcher: NewSearcher(keyer, tt, evaluator),
	}, nil
}

// Keyer exposes the fingerprint keyer, e.g. for persisting analyses
// keyed by position.
func (e *Engine) Keyer() *hash.Keyer {
	return e.keyer
}

// OnInfo installs the per-iteration report callback.
func (e *Engine) OnInfo(f func(SearchInfo)) {
	e.searcher.OnInfo = f
}

// SetRootHistory seeds pre-root fingerprints for repetition detection.
func (e *Engine) SetRootHistory(keys []uint64) {
	e.searcher.SetRootHistory(keys)
}

// Analyze searches the position within the limits and returns the
// last completed iteration's score and PV.
func (e *Engine) Analyze(pos *board.Position, limits Limits) Result {
	depth := limits.Depth
	if depth <= 0 || depth > MaxPly {
		depth = MaxPly
	}

	var timer *time.Timer
	if limits.MoveTime > 0 {
		timer = time.AfterFunc(limits.MoveTime, e.searcher.Stop)
	}

	score, pv := e.searcher.Search(pos, depth)

	if timer != nil {
		timer.Stop()
	}

	return Result{
		Score: score,
		PV:    pv,
		Nodes: e.searcher.Nodes(),
	}
}

// Stop aborts the in-flight search.
func (e *Engine) Stop() {
	e.searcher.Stop()
}

// Clear empties the transposition table.
func (e *Engine) Clear() {
	e.tt.Clear()
}

// Evaluate returns the leaf evaluator's score for the position.
func (e *Engine) Evaluate(pos *board.Position) int32 {
	return e.searcher.evaluate(pos)
}

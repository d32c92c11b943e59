// Package uci implements the console protocol for the search helper.
package uci

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hailam/abhelper/internal/board"
	"github.com/hailam/abhelper/internal/engine"
	"github.com/hailam/abhelper/internal/storage"
)

// UCI implements the protocol loop around an engine and an optional
// analysis store.
type UCI struct {
	cfg     engine.Config
	eng     *engine.Engine
	pos     *board.Position
	store   *storage.Store
	history []uint64 // fingerprints of positions before the current one

	searchDone chan struct{}
}

// New creates a protocol handler. The engine is built from cfg and
// rebuilt when options change it.
func New(cfg engine.Config) (*UCI, error) {
	eng, err := engine.New(cfg)
	if err != nil {
		return nil, err
	}

	return &UCI{
		cfg: cfg,
		eng: eng,
		pos: board.NewPosition(),
	}, nil
}

// Run starts the protocol main loop.
func (u *UCI) Run() {
	scanner := bufio.NewScanner(os.Stdin)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			fmt.Println("readyok")
		case "ucinewgame":
			u.handleNewGame()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "eval":
			fmt.Printf("info string eval %d\n", u.eng.Evaluate(u.pos))
		case "stop":
			u.handleStop()
		case "quit":
			u.handleQuit()
			return
		case "setoption":
			u.handleSetOption(args)
		// Debug commands
		case "d":
			fmt.Println(u.pos.String())
		case "key":
			fmt.Printf("%016x\n", u.eng.Keyer().KeyOf(u.pos))
		}
	}
}

func (u *UCI) handleUCI() {
	fmt.Println("id name abhelper")
	fmt.Println("id author abhelper team")
	fmt.Println()
	fmt.Println("option name Hash type spin default 64 min 1 max 4096")
	fmt.Println("option name WeightsFile type string default <empty>")
	fmt.Println("option name EvalFile type string default <empty>")
	fmt.Println("option name EvalFileSmall type string default <empty>")
	fmt.Println("option name AnalysisStore type check default false")
	fmt.Println("uciok")
}

func (u *UCI) handleNewGame() {
	u.eng.Clear()
	u.pos = board.NewPosition()
	u.history = u.history[:0]
}

// handlePosition parses "position [startpos|fen <fen>] [moves ...]".
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	var movesIdx int

	switch args[0] {
	case "startpos":
		u.pos = board.NewPosition()
		movesIdx = 1
	case "fen":
		fenParts := args[1:]
		for i, p := range fenParts {
			if p == "moves" {
				fenParts = fenParts[:i]
				break
			}
		}
		pos, err := board.ParseFEN(strings.Join(fenParts, " "))
		if err != nil {
			fmt.Printf("info string invalid fen: %v\n", err)
			return
		}
		u.pos = pos
		movesIdx = 1 + len(fenParts)
	default:
		return
	}

	u.history = u.history[:0]

	if movesIdx < len(args) && args[movesIdx] == "moves" {
		keyer := u.eng.Keyer()
		for _, moveStr := range args[movesIdx+1:] {
			m, err := board.ParseMove(moveStr, u.pos)
			if err != nil {
				fmt.Printf("info string invalid move %s: %v\n", moveStr, err)
				return
			}
			u.history = append(u.history, keyer.KeyOf(u.pos))
			child, ok := u.pos.Apply(m)
			if !ok {
				fmt.Printf("info string illegal move: %s\n", moveStr)
				return
			}
			u.pos = child
		}
	}
}

// handleGo starts a search. Only depth and movetime limits apply.
func (u *UCI) handleGo(args []string) {
	if u.searchDone != nil {
		select {
		case <-u.searchDone:
			u.searchDone = nil
		default:
			fmt.Println("info string search already running")
			return
		}
	}

	limits := engine.Limits{}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			if i+1 < len(args) {
				limits.Depth, _ = strconv.Atoi(args[i+1])
				i++
			}
		case "movetime":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				limits.MoveTime = msToDuration(ms)
				i++
			}
		}
	}

	fingerprint := u.eng.Keyer().KeyOf(u.pos)

	// A persisted analysis at sufficient depth answers immediately
	if u.store != nil && limits.Depth > 0 {
		if rec, err := u.store.LoadAnalysis(fingerprint); err == nil && rec != nil && rec.Depth >= limits.Depth && len(rec.PV) > 0 {
			fmt.Printf("info depth %d score cp %d nodes %d pv %s\n",
				rec.Depth, rec.Score, rec.Nodes, strings.Join(rec.PV, " "))
			fmt.Printf("bestmove %s\n", rec.PV[0])
			if err := u.store.RecordAnalysis(0, true); err != nil {
				log.Printf("analysis store: %v", err)
			}
			return
		}
	}

	u.eng.SetRootHistory(u.history)
	u.eng.OnInfo(func(info engine.SearchInfo) {
		fmt.Printf("info depth %d score %s nodes %d time %d pv %s\n",
			info.Depth, formatScore(info.Score), info.Nodes,
			info.Time.Milliseconds(), formatPV(info.PV))
	})

	pos := u.pos.Copy()
	done := make(chan struct{})
	u.searchDone = done

	go func() {
		defer close(done)

		result := u.eng.Analyze(pos, limits)

		if len(result.PV) > 0 {
			fmt.Printf("bestmove %s\n", result.PV[0].String())
		} else {
			fmt.Println("bestmove 0000")
		}

		if u.store != nil {
			rec := storage.AnalysisRecord{
				FEN:   pos.ToFEN(),
				Depth: limits.Depth,
				Score: result.Score,
				PV:    formatPVList(result.PV),
				Nodes: result.Nodes,
			}
			if err := u.store.SaveAnalysis(fingerprint, rec); err != nil {
				log.Printf("analysis store: %v", err)
			}
			if err := u.store.RecordAnalysis(result.Nodes, false); err != nil {
				log.Printf("analysis store: %v", err)
			}
		}
	}()
}

func (u *UCI) handleStop() {
	u.eng.Stop()
	if u.searchDone != nil {
		<-u.searchDone
		u.searchDone = nil
	}
}

func (u *UCI) handleQuit() {
	u.eng.Stop()
	if u.searchDone != nil {
		<-u.searchDone
	}
	if u.store != nil {
		if err := u.store.Close(); err != nil {
			log.Printf("closing store: %v", err)
		}
	}
}

// handleSetOption parses "setoption name <name> [value <value>]".
func (u *UCI) handleSetOption(args []string) {
	var name, value string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "name":
			if i+1 < len(args) {
				name = args[i+1]
				i++
			}
		case "value":
			if i+1 < len(args) {
				value = strings.Join(args[i+1:], " ")
				i = len(args)
			}
		}
	}

	switch strings.ToLower(name) {
	case "hash":
		if mb, err := strconv.Atoi(value); err == nil {
			u.cfg.TTSizeMB = mb
			u.rebuild()
		}
	case "weightsfile":
		u.cfg.WeightsFile = value
		u.rebuild()
	case "evalfile":
		u.cfg.StockfishBig = value
		u.rebuild()
	case "evalfilesmall":
		u.cfg.StockfishSmall = value
		u.rebuild()
	case "analysisstore":
		u.setStoreEnabled(strings.EqualFold(value, "true"))
	}
}

// rebuild recreates the engine with the current config.
func (u *UCI) rebuild() {
	eng, err := engine.New(u.cfg)
	if err != nil {
		fmt.Printf("info string engine configuration failed: %v\n", err)
		return
	}
	u.eng = eng
}

func (u *UCI) setStoreEnabled(enabled bool) {
	if enabled && u.store == nil {
		store, err := storage.Open()
		if err != nil {
			fmt.Printf("info string analysis store unavailable: %v\n", err)
			return
		}
		u.store = store
	}
	if !enabled && u.store != nil {
		if err := u.store.Close(); err != nil {
			log.Printf("closing store: %v", err)
		}
		u.store = nil
	}
}

func formatScore(score int32) string {
	if score >= engine.MaxEval-engine.MaxPly {
		return fmt.Sprintf("mate %d", (engine.MaxEval-score+1)/2)
	}
	if score <= engine.MinEval+engine.MaxPly {
		return fmt.Sprintf("mate -%d", (score-engine.MinEval+1)/2)
	}
	return fmt.Sprintf("cp %d", score)
}

func formatPV(pv []board.Move) string {
	return strings.Join(formatPVList(pv), " ")
}

func formatPVList(pv []board.Move) []string {
	out := make([]string, len(pv))
	for i, m := range pv {
		out[i] = m.String()
	}
	return out
}

func msToDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// Command abhelper-uci runs the search helper behind a UCI-style
// console protocol.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hailam/abhelper/internal/engine"
	"github.com/hailam/abhelper/internal/uci"
)

func main() {
	hashMB := flag.Int("hash", 64, "transposition table size in MB")
	weights := flag.String("weights", "", "network weights file (empty uses the built-in initialization)")
	evalBig := flag.String("eval-file", "", "Stockfish big network file")
	evalSmall := flag.String("eval-file-small", "", "Stockfish small network file")
	flag.Parse()

	cfg := engine.Config{
		TTSizeMB:       *hashMB,
		WeightsFile:    *weights,
		StockfishBig:   *evalBig,
		StockfishSmall: *evalSmall,
	}

	handler, err := uci.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "abhelper: %v\n", err)
		os.Exit(1)
	}

	handler.Run()
}

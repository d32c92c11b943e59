package storage

import (
	"encoding/binary"
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Key prefixes and fixed keys.
const (
	analysisPrefix = "analysis/"
	keyStats       = "stats"
)

// AnalysisRecord is a persisted analysis result for one position.
// The PV is stored as UCI move strings so records stay readable
// without the move encoding.
type AnalysisRecord struct {
	FEN   string    `json:"fen"`
	Depth int       `json:"depth"`
	Score int32     `json:"score"`
	PV    []string  `json:"pv"`
	Nodes uint64    `json:"nodes"`
	When  time.Time `json:"when"`
}

// Stats tracks cumulative usage.
type Stats struct {
	Analyses   int    `json:"analyses"`
	TotalNodes uint64 `json:"total_nodes"`
	Hits       int    `json:"hits"`
}

// Store wraps BadgerDB for persisted analyses.
type Store struct {
	db *badger.DB
}

// Open opens the store in the platform data directory.
func Open() (*Store, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return OpenAt(dbDir)
}

// OpenAt opens the store in a specific directory.
func OpenAt(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// analysisKey builds the database key for a position fingerprint.
func analysisKey(fingerprint uint64) []byte {
	key := make([]byte, len(analysisPrefix)+8)
	copy(key, analysisPrefix)
	binary.BigEndian.PutUint64(key[len(analysisPrefix):], fingerprint)
	return key
}

// SaveAnalysis persists an analysis, replacing a shallower record for
// the same position.
func (s *Store) SaveAnalysis(fingerprint uint64, rec AnalysisRecord) error {
	existing, err := s.LoadAnalysis(fingerprint)
	if err != nil {
		return err
	}
	if existing != nil && existing.Depth > rec.Depth {
		return nil
	}

	rec.When = time.Now()
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(analysisKey(fingerprint), data)
	})
}

// LoadAnalysis returns the persisted analysis for a position, or nil
// when none exists.
func (s *Store) LoadAnalysis(fingerprint uint64) (*AnalysisRecord, error) {
	var rec *AnalysisRecord

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(analysisKey(fingerprint))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			rec = &AnalysisRecord{}
			return json.Unmarshal(val, rec)
		})
	})

	return rec, err
}

// RecordAnalysis updates the cumulative stats after a completed search.
func (s *Store) RecordAnalysis(nodes uint64, cached bool) error {
	stats, err := s.LoadStats()
	if err != nil {
		return err
	}

	stats.Analyses++
	stats.TotalNodes += nodes
	if cached {
		stats.Hits++
	}

	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyStats), data)
	})
}

// LoadStats loads the cumulative stats, returning zeroes when none
// have been recorded.
func (s *Store) LoadStats() (*Stats, error) {
	stats := &Stats{}

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyStats))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, stats)
		})
	})

	return stats, err
}

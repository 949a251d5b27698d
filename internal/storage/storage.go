package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgraph-io/badger/v4"

	"github.com/imjasonh/chesslaw/internal/chess"
)

const gamePrefix = "game/"

var ErrGameNotFound = errors.New("game not found")

// Result is how a recorded game ended, if it has.
type Result string

const (
	ResultOngoing   Result = ""
	ResultWhiteWins Result = "white"
	ResultBlackWins Result = "black"
	ResultAbandoned Result = "abandoned"
)

// GameRecord is a persisted game: who played it, under which rules, and the
// ledger of committed moves.
type GameRecord struct {
	ID        string       `json:"id"`
	White     string       `json:"white"`
	Black     string       `json:"black"`
	Rules     string       `json:"rules"`
	Moves     []chess.Move `json:"moves"`
	Result    Result       `json:"result,omitempty"`
	StartedAt time.Time    `json:"started_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Replay rebuilds the live game from the recorded ledger.
func (r GameRecord) Replay() (*chess.Game, error) {
	rules, err := chess.ParseRules(r.Rules)
	if err != nil {
		return nil, err
	}
	return chess.Replay(r.Moves, chess.WithRules(rules))
}

// Store wraps BadgerDB for persistent game storage
type Store struct {
	db *badger.DB
}

// Open opens the database in dir. An empty dir keeps everything in memory.
func Open(dir string, logger *log.Logger) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil
	if logger != nil {
		l := logger.WithPrefix("badger")
		l.SetLevel(log.WarnLevel)
		opts.Logger = badgerLogger{l}
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", dir, err)
	}
	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func gameKey(id string) []byte {
	return []byte(gamePrefix + id)
}

// CreateGame stores a new record. The ledger of an existing game with the
// same ID is overwritten.
func (s *Store) CreateGame(rec GameRecord) error {
	now := time.Now()
	if rec.StartedAt.IsZero() {
		rec.StartedAt = now
	}
	rec.UpdatedAt = now
	if rec.Moves == nil {
		rec.Moves = []chess.Move{}
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return put(txn, rec)
	})
}

// AppendMove adds one committed move to a game's ledger.
func (s *Store) AppendMove(id string, m chess.Move) error {
	return s.update(id, func(rec *GameRecord) {
		rec.Moves = append(rec.Moves, m)
	})
}

// FinishGame records the result of a game.
func (s *Store) FinishGame(id string, result Result) error {
	return s.update(id, func(rec *GameRecord) {
		rec.Result = result
	})
}

func (s *Store) update(id string, fn func(*GameRecord)) error {
	return s.db.Update(func(txn *badger.Txn) error {
		rec, err := get(txn, id)
		if err != nil {
			return err
		}
		fn(&rec)
		rec.UpdatedAt = time.Now()
		return put(txn, rec)
	})
}

// LoadGame returns the record stored under id.
func (s *Store) LoadGame(id string) (GameRecord, error) {
	var rec GameRecord
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		rec, err = get(txn, id)
		return err
	})
	return rec, err
}

// ListGames returns every stored game, oldest first.
func (s *Store) ListGames() ([]GameRecord, error) {
	var recs []GameRecord
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(gamePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var rec GameRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			recs = append(recs, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].StartedAt.Before(recs[j].StartedAt)
	})
	return recs, nil
}

func get(txn *badger.Txn, id string) (GameRecord, error) {
	var rec GameRecord
	item, err := txn.Get(gameKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return rec, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	if err != nil {
		return rec, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	})
	return rec, err
}

func put(txn *badger.Txn, rec GameRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return txn.Set(gameKey(rec.ID), data)
}

// badgerLogger adapts a charm logger to badger.Logger.
type badgerLogger struct {
	*log.Logger
}

func (l badgerLogger) Warningf(format string, args ...any) {
	l.Warnf(format, args...)
}

// Package storage persists finished games to a local SQLite database
// for later review. It never touches in-progress search state: only
// completed games are recorded, after the fact, in a fire-and-forget
// goroutine so a slow disk never stalls the game loop.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"fiveinrow/internal/board"
)

// Store wraps a SQLite handle recording finished games.
type Store struct {
	db *sql.DB
}

// Open creates (if needed) the database directory and schema at path
// and returns a ready Store.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("storage: create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open database: %w", err)
	}

	const createTableSQL = `
	CREATE TABLE IF NOT EXISTS games (
		id TEXT PRIMARY KEY,
		started_at DATETIME,
		ended_at DATETIME,
		self_id TEXT,
		winner_id TEXT,
		move_count INTEGER,
		moves_json TEXT
	);
	`
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: create table: %w", err)
	}

	log.Printf("storage: database ready at %s", path)
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// recordedMove mirrors board.Move in a JSON-friendly shape.
type recordedMove struct {
	Mine bool `json:"mine"`
	X    int  `json:"x"`
	Y    int  `json:"y"`
}

// SaveGame records a finished game asynchronously: the caller's board
// and metadata are captured by value before the goroutine starts, so
// the search loop can move on to the next game immediately.
func (s *Store) SaveGame(gameID, selfID, winnerID string, startedAt time.Time, b *board.Board) {
	moves := b.Moves()
	recorded := make([]recordedMove, len(moves))
	for i, m := range moves {
		recorded[i] = recordedMove{Mine: m.IsMine(), X: m.X, Y: m.Y}
	}
	movesJSON, err := json.Marshal(recorded)
	if err != nil {
		log.Printf("storage: failed to marshal moves for game %s: %v", gameID, err)
		return
	}
	endedAt := time.Now()
	moveCount := len(recorded)

	go func() {
		const insertSQL = `
		INSERT INTO games (id, started_at, ended_at, self_id, winner_id, move_count, moves_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		`
		if _, err := s.db.Exec(insertSQL, gameID, startedAt, endedAt, selfID, winnerID, moveCount, string(movesJSON)); err != nil {
			log.Printf("storage: failed to save game %s: %v", gameID, err)
			return
		}
		log.Printf("storage: game %s saved (%d moves)", gameID, moveCount)
	}()
}

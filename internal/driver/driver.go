// Package driver runs the process-level game loop around the core
// search engine: register a game, play it to completion against a
// GameConnection, record the outcome, and repeat forever. A Manager
// runs a pool of such loops side by side, each single-threaded
// internally, and tracks aggregate win/loss/error counters.
package driver

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"fiveinrow/internal/board"
	"fiveinrow/internal/config"
	"fiveinrow/internal/engine"
	"fiveinrow/internal/score"
	"fiveinrow/internal/spectate"
	"fiveinrow/internal/storage"
)

// ConnectionFactory builds a fresh GameConnection for one game. Bots
// reconnect with a new connection per game rather than reusing one
// across games, mirroring the reference client's one-shot JobsApi per
// GamePlay.
type ConnectionFactory func() engine.GameConnection

// Stats is a snapshot of one bot's accumulated outcomes.
type Stats struct {
	Games  int
	Wins   int
	Losses int
	Errors int
}

// Bot runs one game-playing loop: connect, play to a decided winner (or
// an error), record the result, repeat. It never runs two games
// concurrently with itself, matching the core's single-threaded search
// requirement.
type Bot struct {
	ID      string
	connect ConnectionFactory
	cfg     *config.Config
	store   *storage.Store
	hub     *spectate.Hub

	mu    sync.Mutex
	stats Stats
}

// NewBot builds a Bot. store and hub may be nil to skip persistence or
// spectating respectively.
func NewBot(id string, connect ConnectionFactory, cfg *config.Config, store *storage.Store, hub *spectate.Hub) *Bot {
	return &Bot{ID: id, connect: connect, cfg: cfg, store: store, hub: hub}
}

// Stats returns a copy of the bot's current counters.
func (b *Bot) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// Run plays games back to back until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Printf("[Bot %s] shutting down", b.ID)
			return
		default:
		}
		b.playOne(ctx)
	}
}

func (b *Bot) playOne(ctx context.Context) {
	gameID := uuid.New().String()
	startedAt := time.Now()

	conn := b.connect()
	startedBoard, err := conn.StartGame(ctx)
	if err != nil {
		log.Printf("[Bot %s] game %s: failed to start: %v", b.ID, gameID, err)
		b.recordOutcome("", err)
		return
	}

	eng := engine.New(startedBoard, conn)
	if b.cfg.BeamBase != 0 {
		eng.BeamBase = b.cfg.BeamBase
	}
	b.publish(gameID, startedBoard)

	winnerID, err := b.playLoop(ctx, eng, gameID)
	if err != nil {
		log.Printf("[Bot %s] game %s ended in error: %v", b.ID, gameID, err)
		b.recordOutcome("", err)
		if b.store != nil {
			b.store.SaveGame(gameID, b.cfg.SelfID, "", startedAt, eng.Board)
		}
		return
	}

	log.Printf("[Bot %s] game %s finished, winner %s", b.ID, gameID, winnerID)
	b.recordOutcome(winnerID, nil)
	if b.store != nil {
		b.store.SaveGame(gameID, b.cfg.SelfID, winnerID, startedAt, eng.Board)
	}
}

// playLoop runs the game loop (await, apply the opponent's move, search,
// submit and apply our move) one step at a time so each real move (ours
// and the opponent's) can be published to spectators as it lands.
func (b *Bot) playLoop(ctx context.Context, eng *engine.Engine, gameID string) (string, error) {
	for {
		opponentMove, winner, err := eng.Connection.AwaitMove(ctx)
		if err != nil {
			return "", err
		}
		if winner != "" {
			return winner, nil
		}
		if opponentMove != nil {
			if err := eng.AddMove(*opponentMove); err != nil {
				return "", err
			}
			b.publishMove(gameID, *opponentMove, nil)
		}

		if err := eng.ComputeSuggestions(true, nil, b.cfg.SearchDepth); err != nil {
			return "", err
		}
		best, err := eng.SuggestMove(true)
		if err != nil {
			return "", err
		}
		if err := eng.Connection.PutMove(ctx, best.Move); err != nil {
			return "", err
		}
		if err := eng.AddMove(best.Move); err != nil {
			return "", err
		}
		b.publishMove(gameID, best.Move, &best.ShallowScore)
	}
}

func (b *Bot) publish(gameID string, brd *board.Board) {
	if b.hub == nil {
		return
	}
	for _, m := range brd.Moves() {
		b.publishMove(gameID, m, nil)
	}
}

func (b *Bot) publishMove(gameID string, m board.Move, s *score.Score) {
	if b.hub == nil {
		return
	}
	ev := spectate.Event{GameID: gameID, Mine: m.IsMine(), X: m.X, Y: m.Y}
	if s != nil {
		ev.Score = s.String()
	}
	b.hub.Publish(ev)
}

func (b *Bot) recordOutcome(winnerID string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stats.Games++
	switch {
	case err != nil:
		b.stats.Errors++
	case winnerID == b.cfg.SelfID:
		b.stats.Wins++
	default:
		b.stats.Losses++
	}
}

// ErrNoBotsConnected reports that no bot in the pool connected
// successfully. Manager.Start has no error result and does not return it.
var ErrNoBotsConnected = errors.New("driver: no bots connected successfully")

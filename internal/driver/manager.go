package driver

import (
	"context"
	"fmt"
	"log"
	"sync"

	"fiveinrow/internal/config"
	"fiveinrow/internal/connection"
	"fiveinrow/internal/engine"
	"fiveinrow/internal/spectate"
	"fiveinrow/internal/storage"
)

// Manager owns a pool of independent bots, each playing games against
// the remote service sequentially. Bots never share search state; the
// pool only exists to run several game-playing loops side by side and
// aggregate their counters.
type Manager struct {
	cfg   *config.Config
	store *storage.Store
	hub   *spectate.Hub

	mu   sync.RWMutex
	bots []*Bot
	wg   sync.WaitGroup
}

// NewManager builds a Manager for cfg.PoolSize bots. store and hub may
// be nil.
func NewManager(cfg *config.Config, store *storage.Store, hub *spectate.Hub) *Manager {
	return &Manager{cfg: cfg, store: store, hub: hub}
}

// Start launches the configured pool size worth of bots, each running
// its own game loop in a goroutine, until ctx is cancelled.
func (m *Manager) Start(ctx context.Context) {
	log.Printf("driver: starting bot pool with size %d", m.cfg.PoolSize)

	for i := 0; i < m.cfg.PoolSize; i++ {
		id := fmt.Sprintf("bot-%d", i+1)
		connect := func() engine.GameConnection {
			return connection.NewHTTPConnection(m.cfg.BackendURL, m.cfg.SelfID, m.cfg.SelfToken)
		}
		bot := NewBot(id, connect, m.cfg, m.store, m.hub)

		m.mu.Lock()
		m.bots = append(m.bots, bot)
		m.mu.Unlock()

		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			bot.Run(ctx)
		}()

		log.Printf("driver: bot %d/%d started", i+1, m.cfg.PoolSize)
	}

	log.Printf("driver: pool ready, %d bots running", m.cfg.PoolSize)
}

// Wait blocks until every bot's Run loop has returned (i.e. until the
// context passed to Start is cancelled and each bot finishes its
// current game).
func (m *Manager) Wait() {
	m.wg.Wait()
}

// PoolStats aggregates every bot's Stats into pool-wide totals.
type PoolStats struct {
	Bots   int
	Games  int
	Wins   int
	Losses int
	Errors int
}

// Stats returns the current aggregate counters across the whole pool.
func (m *Manager) Stats() PoolStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	totals := PoolStats{Bots: len(m.bots)}
	for _, bot := range m.bots {
		s := bot.Stats()
		totals.Games += s.Games
		totals.Wins += s.Wins
		totals.Losses += s.Losses
		totals.Errors += s.Errors
	}
	return totals
}

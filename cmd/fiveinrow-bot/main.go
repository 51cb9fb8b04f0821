// Command fiveinrow-bot wires configuration, game-history storage, the
// spectator websocket feed, and a pool of search-driven bots, then runs
// until interrupted.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fiveinrow/internal/config"
	"fiveinrow/internal/driver"
	"fiveinrow/internal/spectate"
	"fiveinrow/internal/storage"
)

func main() {
	log.Println("=== fiveinrow-bot starting ===")

	cfg := config.Load()
	log.Printf("configuration:")
	log.Printf("  backend URL:  %s", cfg.BackendURL)
	log.Printf("  pool size:    %d", cfg.PoolSize)
	log.Printf("  search depth: %d", cfg.SearchDepth)
	log.Printf("  beam base:    %d", cfg.BeamBase)

	store, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("failed to open game store: %v", err)
	}
	defer store.Close()

	hub := spectate.NewHub()
	hubStop := make(chan struct{})
	go hub.Run(hubStop)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeHTTP)
	spectateServer := &http.Server{Addr: cfg.SpectateAddr, Handler: mux}
	go func() {
		log.Printf("spectate: serving on %s", cfg.SpectateAddr)
		if err := spectateServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("spectate: server error: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	manager := driver.NewManager(cfg, store, hub)
	manager.Start(ctx)

	log.Println("=== fiveinrow-bot running ===")

	statsTicker := time.NewTicker(30 * time.Second)
	defer statsTicker.Stop()
	go func() {
		for range statsTicker.C {
			s := manager.Stats()
			log.Printf("pool stats: bots=%d games=%d wins=%d losses=%d errors=%d",
				s.Bots, s.Games, s.Wins, s.Losses, s.Errors)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("=== shutdown signal received ===")
	cancel()
	manager.Wait()
	close(hubStop)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	spectateServer.Shutdown(shutdownCtx)

	log.Println("=== fiveinrow-bot stopped ===")
}

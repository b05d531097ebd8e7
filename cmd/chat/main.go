package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"

	"invagro-dashboard/internal/chat"
	"invagro-dashboard/internal/config"
	"invagro-dashboard/internal/database"
	"invagro-dashboard/internal/history"
	"invagro-dashboard/internal/storage"
	"invagro-dashboard/internal/terminal"
	"invagro-dashboard/internal/widget"
	"invagro-dashboard/migrations"
)

// openKV returns the history backend selected by cfg and a func releasing it.
func openKV(cfg *config.Config) (storage.KV, func(), error) {
	switch cfg.HistoryBackend {
	case config.BackendMemory:
		return storage.NewMemoryStore(cfg.HistoryQuotaBytes), func() {}, nil

	case config.BackendRedis:
		client, err := database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewRedisStore(client), func() { client.Close() }, nil

	case config.BackendPostgres:
		pool, err := database.NewPostgresPool(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := database.RunMigrations(ctx, pool, migrations.FS); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return storage.NewPostgresStore(pool), pool.Close, nil

	default:
		kv, err := storage.NewFileStore(cfg.HistoryDir, cfg.HistoryQuotaBytes)
		if err != nil {
			return nil, nil, err
		}
		return kv, func() {}, nil
	}
}

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("✗ Invalid configuration: %v", err)
	}

	kv, release, err := openKV(cfg)
	if err != nil {
		log.Fatalf("✗ History storage (%s) unavailable: %v", cfg.HistoryBackend, err)
	}
	defer release()

	scope := cfg.HistoryScope
	if scope == "" {
		scope = cfg.FrontendURL
	}
	store := history.NewStore(storage.Scoped(kv, scope), cfg.HistoryKey, cfg.HistoryLimit)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupts
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")
		cancel()
		os.Stdin.Close()
	}()

	boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Println(boldGreen("💬 Invagro chat"))
	fmt.Printf("Endpoint: %s\n", boldCyan(cfg.ChatEndpoint))
	fmt.Printf("Historial: %s (máx. %d mensajes)\n", cfg.HistoryBackend, store.Limit())
	fmt.Println("Comandos: /open /close /esc /backdrop /history /quit")
	fmt.Println()

	screen := terminal.NewScreen(os.Stdout)
	w := widget.New(screen.Page(), store, chat.NewClient(cfg.ChatEndpoint, nil))
	w.Initialize(ctx)

	if err := terminal.Run(ctx, os.Stdin, screen, w, store); err != nil {
		log.Printf("input error: %v", err)
	}
}

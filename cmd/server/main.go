package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"invagro-dashboard/internal/config"
	"invagro-dashboard/internal/handlers"
	"invagro-dashboard/internal/middleware"
	"invagro-dashboard/internal/router"
	"invagro-dashboard/internal/services"
)

func main() {
	log.Println("🚀 Starting Invagro chat reply server...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Pick the reply provider ────
	var replier services.Replier = services.MockReplier{}
	if cfg.GeminiAPIKey != "" {
		gemini, err := services.NewGeminiReplier(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiConcurrentReqs)
		if err != nil {
			log.Fatalf("✗ Gemini client initialization failed: %v", err)
		}
		defer gemini.Close()
		replier = gemini
	}
	log.Printf("✓ Reply provider: %s", replier.Model())

	// ──── Step 3: Start HTTP Server ────
	chatLimiter := middleware.NewRateLimiter(cfg.ChatRateLimitPerMin, time.Minute)
	defer chatLimiter.Stop()

	r := router.New(handlers.NewChatHandler(replier), chatLimiter, cfg.FrontendURL)

	// WriteTimeout stays unset: replies have no deadline.
	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Reply server ready on http://localhost:%s", cfg.Port)
	log.Printf("  Chat: POST http://localhost:%s/api/chat", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}

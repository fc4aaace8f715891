// In file: cmd/chatbot/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/dileep-u-k/genai-chatbot/internal/auth"
	"github.com/dileep-u-k/genai-chatbot/internal/chat"
	"github.com/dileep-u-k/genai-chatbot/internal/llm"
	"github.com/dileep-u-k/genai-chatbot/internal/store"
)

// main is the entry point for the application.
// Its primary role is the "Composition Root": it loads configuration,
// initializes all services, injects dependencies, and starts the server.
// Every client handle built here lives for the whole process and is torn
// down on shutdown; nothing below main creates its own connections.
func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	buildInfo := GetBuildInfo()
	log.Printf("🚀 Starting GenAI Chatbot | Version: %s | Commit: %s", buildInfo.Version, buildInfo.GitCommit)

	// 1. LOAD CONFIGURATION
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("❌ FATAL: Configuration Error: %v", err)
	}
	log.Println("✅ Configuration loaded.")

	// 2. INITIALIZE SERVICES
	cacheStore, historyStore, closeStores := initializeStores(cfg)
	defer closeStores()

	gateway, err := llm.NewGeminiGateway(context.Background(), cfg.GeminiAPIKey, cfg.Generation)
	if err != nil {
		log.Fatalf("❌ FATAL: Could not create Gemini gateway: %v", err)
	}
	log.Printf("✅ Gemini gateway initialized (model: %s).", cfg.Generation.Model)

	verifier := auth.NewStaticVerifier(cfg.Users)
	service := chat.NewService(cacheStore, historyStore, gateway)
	handler := NewChatHandler(service, verifier)
	log.Println("✅ All services initialized.")

	// 3. SETUP AND RUN THE WEB SERVER
	gin.SetMode(os.Getenv("GIN_MODE"))
	engine := gin.Default()
	v1 := engine.Group("/api/v1", handler.RequireUser())
	{
		v1.POST("/login", handler.HandleLogin)
		v1.POST("/ask", handler.HandleAsk)
		v1.GET("/history", handler.HandleHistory)
		v1.DELETE("/history", handler.HandleClearHistory)
	}

	srv := &http.Server{Addr: fmt.Sprintf(":%s", cfg.Port), Handler: engine}
	runServerWithGracefulShutdown(srv)
}

// initializeStores connects the cache and history stores. With REDIS_ADDR
// set, both run on one Redis client that is pinged up front so a bad address
// fails the deploy instead of degrading every request. Without it, the
// in-memory store serves local development at the cost of durability.
func initializeStores(cfg *AppConfig) (store.CacheStore, store.HistoryStore, func()) {
	if cfg.RedisAddr == "" {
		log.Println("⚠️ REDIS_ADDR is not set; using the in-memory store. Cache and history will not survive a restart.")
		mem := store.NewMemory()
		return mem, mem, func() {}
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("❌ FATAL: Could not connect to Redis: %v", err)
	}
	log.Printf("✅ Connected to Redis at %s.", cfg.RedisAddr)

	rs := store.NewRedis(rdb)
	return rs, rs, func() {
		if err := rdb.Close(); err != nil {
			log.Printf("WARNING: Failed to close Redis client: %v", err)
		}
	}
}

// runServerWithGracefulShutdown handles the server lifecycle.
func runServerWithGracefulShutdown(srv *http.Server) {
	go func() {
		log.Printf("👂 Chatbot is listening on http://localhost%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Listen error: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("❌ Server shutdown failed:", err)
	}

	log.Println("👋 Server exited gracefully.")
}

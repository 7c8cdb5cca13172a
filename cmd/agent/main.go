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

	"weather-agent/internal/llm"
	"weather-agent/internal/session"
	"weather-agent/internal/tools"
	"weather-agent/internal/version"
	"weather-agent/internal/weatherapi"
)

// main is the application's composition root: it loads configuration,
// initializes every service, injects dependencies, and starts the server.
func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	buildInfo := version.Get()
	log.Printf("🚀 Starting Weather Agent | Version: %s | Commit: %s", buildInfo.Version, buildInfo.GitCommit)

	// 1. LOAD CONFIGURATION
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("❌ FATAL: Configuration Error: %v", err)
	}
	log.Println("✅ Configuration loaded.")

	// 2. INITIALIZE SERVICES
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("❌ FATAL: Could not connect to Redis: %v", err)
	}
	sessions := session.NewStore(rdb, cfg.SessionTTL, cfg.SessionMaxMessages)

	providerClient := weatherapi.NewClient(cfg.Provider)
	registry := tools.NewWeatherRegistry(providerClient, cfg.DefaultUnits)
	dispatcher := tools.NewDispatcher(registry)

	gemini, err := llm.NewGeminiClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, llm.SystemPrompt)
	if err != nil {
		log.Fatalf("❌ FATAL: Could not create Gemini client: %v", err)
	}
	defer gemini.Close()

	agent := llm.NewAgent(gemini, registry, dispatcher, cfg.MaxToolRounds)
	handler := NewAgentHandler(agent, registry, dispatcher, sessions)
	log.Printf("✅ All services initialized (%d tools registered).", registry.Count())

	// 3. SETUP AND RUN THE WEB SERVER
	gin.SetMode(os.Getenv("GIN_MODE"))
	engine := gin.Default()
	registerRoutes(engine, handler)

	srv := &http.Server{Addr: fmt.Sprintf(":%s", cfg.Port), Handler: engine}
	runServerWithGracefulShutdown(srv)
}

// registerRoutes wires the HTTP surface. Split out so handler tests can
// build the same router.
func registerRoutes(engine *gin.Engine, handler *AgentHandler) {
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "build": version.Get()})
	})

	v1 := engine.Group("/api/v1")
	{
		v1.POST("/chat", handler.HandleChat)
		v1.GET("/tools", handler.HandleListTools)
		v1.POST("/tools/:name", handler.HandleToolCall)
	}
}

// runServerWithGracefulShutdown handles the server lifecycle.
func runServerWithGracefulShutdown(srv *http.Server) {
	go func() {
		log.Printf("👂 Weather agent is listening on http://localhost%s", srv.Addr)
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

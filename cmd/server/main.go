/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the payment scheduling server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Initialize SQLite store
  3. Connect the schedule cache (Redis if configured, in-memory otherwise)
  4. Create API handler and status refresher
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080, env PORT)
  -db      SQLite database path (default: woyu.db, env DATABASE_PATH)
           Use ":memory:" for an in-memory database

ENVIRONMENT:
  PORT           HTTP server port
  DATABASE_PATH  SQLite database path
  REDIS_ADDR     Redis address for the schedule cache (optional)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the status refresher
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close the database connection
  5. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - api/refresher.go: Background overdue-status sweep
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/biglong-lab/woyu-money-sub010/api"
	"github.com/biglong-lab/woyu-money-sub010/store/cache"
	"github.com/biglong-lab/woyu-money-sub010/store/sqlite"
)

func main() {
	_ = godotenv.Load()

	defaultPort := 8080
	if p, err := strconv.Atoi(os.Getenv("PORT")); err == nil {
		defaultPort = p
	}
	defaultDB := os.Getenv("DATABASE_PATH")
	if defaultDB == "" {
		defaultDB = "woyu.db"
	}

	port := flag.Int("port", defaultPort, "HTTP server port")
	dbPath := flag.String("db", defaultDB, "SQLite database path")
	flag.Parse()

	// Initialize store
	st, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer st.Close()

	// Schedule cache: Redis when configured, in-memory otherwise.
	var scheduleCache cache.Cache = cache.NewMemoryCache()
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisCache := cache.NewRedisCache(addr)
		if err := redisCache.Ping(context.Background()); err != nil {
			log.Printf("Warning: Redis at %s unreachable, using in-memory cache: %v", addr, err)
		} else {
			scheduleCache = redisCache
			defer redisCache.Close()
		}
	}

	// Initialize handler and refresher
	handler := api.NewHandler(st, scheduleCache)
	refresher := api.NewStatusRefresher(st, handler)
	refresher.Start()
	defer refresher.Stop()

	// Create router
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
		log.Printf("API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

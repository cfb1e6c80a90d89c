package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/nightpost/relay/internal/config"
	"github.com/nightpost/relay/internal/db"
	routes "github.com/nightpost/relay/internal/http"
	"github.com/nightpost/relay/internal/models"
	"github.com/nightpost/relay/internal/ws"
)

func main() {
	// Load .env first. Missing files are fine: production sets real
	// environment variables directly.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// 1. Initialize Database
	database, err := db.Init(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// 2. Run Migrations
	log.Println("Running database migrations...")
	if err := database.AutoMigrate(&models.Participant{}, &models.StopWord{}, &models.ContentLog{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations complete.")

	// 3. Wire channels and the moderation environment
	publicHub := ws.NewHub()
	reviewHub := ws.NewHub()
	go publicHub.Run()
	go reviewHub.Run()

	env := routes.NewEnv(cfg, database, publicHub, reviewHub)

	if len(cfg.SeedStopWords) > 0 {
		if err := env.StopWords.Seed(cfg.SeedStopWords); err != nil {
			log.Fatalf("Failed to seed stop words: %v", err)
		}
		log.Printf("Seeded %d stop words.", len(cfg.SeedStopWords))
	}

	// 4. Initialize Gin Router
	router := gin.New()
	routes.SetupRoutes(router, env)

	// 5. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Relay listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}

package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/paperdex/paperdex/internal/config"
	"github.com/paperdex/paperdex/internal/database"
	"github.com/paperdex/paperdex/internal/handler"
	"github.com/paperdex/paperdex/internal/queue"
)

func main() {
	// Load .env file if exists
	godotenv.Load()

	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	rdb, err := queue.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	q := queue.New(rdb)

	r, err := handler.SetupRouter(cfg, db, q)
	if err != nil {
		log.Fatalf("Failed to set up router: %v", err)
	}

	addr := cfg.Host + ":" + cfg.Port
	log.Printf("Paperdex API starting on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// server/cmd/api/main.go
package main

import (
	"context"
	"log"
	"time"

	"freight-match-api-server/config"
	"freight-match-api-server/internal/api/routes"
	"freight-match-api-server/internal/cache"
	"freight-match-api-server/internal/database"
	"freight-match-api-server/internal/notifier"
	"freight-match-api-server/internal/s3"
	"freight-match-api-server/internal/schedule"
	"freight-match-api-server/internal/socket"
	"freight-match-api-server/internal/sweeper"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading config from environment")
	}

	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.JWT.Secret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	jwtExpiration, err := time.ParseDuration(cfg.JWT.Expiration)
	if err != nil {
		log.Fatalf("Invalid JWT expiration %q: %v", cfg.JWT.Expiration, err)
	}
	sweepInterval, err := time.ParseDuration(cfg.Sweeper.Interval)
	if err != nil {
		log.Fatalf("Invalid sweeper interval %q: %v", cfg.Sweeper.Interval, err)
	}

	db, err := database.Connect(cfg.Mongo)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	log.Println("Successfully connected to MongoDB!")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := database.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}
	if err := database.SeedAdmin(db); err != nil {
		log.Fatalf("Failed to seed admin account: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("Redis unavailable, location snapshots disabled: %v", err)
		rdb = nil
	}
	locCache := &cache.Locations{RDB: rdb}

	var uploader *s3.Uploader
	if cfg.S3.Bucket != "" {
		uploader, err = s3.NewUploader(cfg.S3)
		if err != nil {
			log.Fatalf("Failed to initialize S3 uploader: %v", err)
		}
	} else {
		log.Println("S3 bucket not configured, photo uploads disabled")
	}

	hub := socket.NewHub()
	sched := &schedule.Store{DB: db}
	notif := notifier.New(cfg.Notifier.PasswordResetWebhookURL)

	delaySweeper := &sweeper.Sweeper{DB: db, Hub: hub, Interval: sweepInterval}
	go delaySweeper.Run(ctx)

	router := routes.SetupRouter(cfg, db, hub, sched, locCache, uploader, notif, jwtExpiration)

	log.Printf("Server starting on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}

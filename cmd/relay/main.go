package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"stayhub/messenger/internal/api/handler"
	"stayhub/messenger/internal/config"
	"stayhub/messenger/internal/hub"
	"stayhub/messenger/internal/models"
	"stayhub/messenger/internal/storage"
)

func setupDependencies(cfg *config.Config) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.Room{},
		&models.MessageRecord{},
		&models.Profile{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting StayHub message relay...")

	cfg := config.Load()
	db, rdb := setupDependencies(cfg)
	s := storage.NewService(db, rdb)

	messageHub := hub.NewHub(s)
	go messageHub.Run()

	r := gin.Default()
	h := handler.NewHandler(messageHub, s, cfg.JWTSecret)

	r.POST("/token", h.IssueToken)
	r.GET("/ws", h.ServeWebSocket)
	r.POST("/rooms", h.CreateRoom)
	r.GET("/rooms", h.ListRooms)
	r.GET("/rooms/:id/messages", h.GetHistory)
	r.GET("/users/:id", h.GetProfile)

	server := &http.Server{
		Addr:           cfg.ListenAddr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}

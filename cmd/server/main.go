package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"prompt-clash/internal/ai"
	"prompt-clash/internal/comms"
	"prompt-clash/internal/config"
	"prompt-clash/internal/db"
	"prompt-clash/internal/game"
	"prompt-clash/internal/server"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg := config.Load()

	conn, err := db.Open()
	if err != nil {
		log.Printf("running without persistence: %v", err)
		conn = nil
	} else if err := db.Migrate(conn); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	channel, err := comms.Connect(cfg.NATSURL)
	if err != nil {
		log.Fatalf("transport connect failed: %v", err)
	}
	defer channel.Close()

	service, err := comms.NewService(channel, time.Duration(cfg.ReplyGraceSeconds)*time.Second)
	if err != nil {
		log.Fatalf("reply listener failed: %v", err)
	}
	defer service.Close()

	store := game.NewMemoryStore(time.Duration(cfg.RoomTTLSeconds) * time.Second)
	defer store.Close()

	client := ai.New(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIImageModel)
	srv := server.New(conn, cfg, server.Deps{
		Store:     store,
		Comms:     service,
		Bus:       channel,
		Questions: client,
		Assessor:  client,
		Announcer: client,
	})

	addr := ":8080"
	if env := os.Getenv("PORT"); env != "" {
		addr = ":" + env
	}
	log.Printf("prompt-clash server listening on %s", addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		log.Fatal(err)
	}
}

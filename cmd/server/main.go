package main

import (
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"telepathy-drawing/internal/config"
	"telepathy-drawing/internal/db"
	"telepathy-drawing/internal/server"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Warn().Err(err).Msg("failed to load .env")
	}
	cfg := config.Load()

	conn := openDatabase(cfg)
	srv := server.New(conn, cfg)
	srv.LoadWordLibrary()
	srv.RestoreActiveRooms()

	addr := ":8080"
	if env := os.Getenv("PORT"); env != "" {
		addr = ":" + env
	}
	log.Info().Str("addr", addr).Msg("telepathy drawing server listening")
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func openDatabase(cfg config.Config) *gorm.DB {
	if os.Getenv("DATABASE_URL") == "" {
		log.Warn().Msg("DATABASE_URL not set, running memory-only")
		return nil
	}
	conn, err := db.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	if os.Getenv("DB_AUTO_MIGRATE") == "1" {
		if err := db.Migrate(conn); err != nil {
			log.Fatal().Err(err).Msg("auto-migration failed")
		}
	}
	return conn
}

package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"eduplatform/internal/api"
	"eduplatform/internal/config"
	"eduplatform/internal/providers"
	"eduplatform/internal/quiz"
	"eduplatform/internal/storage"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load(".env")
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Caller().Logger()

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	db, err := storage.NewDB(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()
	if err := storage.Bootstrap(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("bootstrap schema")
	}

	manager, err := providers.NewManager(cfg.LLMProviders)
	if err != nil {
		log.Fatal().Err(err).Msg("configure providers")
	}
	client, ref, ok := manager.ActiveLLMProvider()
	if ok {
		log.Info().Str("provider", ref.Name).Str("key_alias", ref.KeyAlias).Msg("llm provider active")
	} else {
		log.Warn().Str("providers", cfg.LLMProviders).Msg("no llm provider configured, quiz generation uses the mock fallback")
	}

	gen := quiz.NewGenerator(client, quiz.Options{
		MaxAttempts: cfg.GenMaxAttempts,
		BaseDelay:   time.Duration(cfg.GenBaseDelaySecs) * time.Second,
		Sink:        storage.NewLLMAuditRepo(db),
	})

	srv := api.NewServer(cfg, db, gen)
	log.Info().Str("addr", cfg.APIAddr).Str("llm_providers", cfg.LLMProviders).Msg("eduplatform api listening")
	if err := http.ListenAndServe(cfg.APIAddr, srv.Routes()); err != nil {
		log.Fatal().Err(err).Msg("api server stopped")
	}
}

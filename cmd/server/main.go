package main

import (
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"docqa/internal/config"
	"docqa/internal/embedding"
	"docqa/internal/extractor"
	"docqa/internal/fetcher"
	"docqa/internal/pipeline"
	"docqa/internal/rag"
	"docqa/internal/server"
)

const defaultConfigPath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", defaultConfigPath, "Path to the config file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	embedder, err := embedding.New(&cfg.LLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating embedder")
	}

	generator, err := rag.NewLLM(&cfg.LLM, cfg.RAG.MaxAnswerTokens)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating chat model")
	}

	ext, err := extractor.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating extractor")
	}

	p := pipeline.New(
		fetcher.New(time.Duration(cfg.Fetch.TimeoutSecs)*time.Second),
		ext,
		embedder,
		rag.NewAnswerer(generator),
		cfg.RAG,
	)
	srv := server.New(p, cfg.Server.APIKey, log.Logger)

	log.Info().Str("addr", cfg.Server.Addr).Msg("listening")
	if err := http.ListenAndServe(cfg.Server.Addr, srv.Router()); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

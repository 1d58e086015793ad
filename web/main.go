package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/df07/go-pathtracer/pkg/config"
	"github.com/df07/go-pathtracer/web/server"
)

func main() {
	cfgPath := flag.String("config", "", "YAML config file")
	addr := flag.String("addr", "", "Listen address (overrides preview.addr)")
	sceneName := flag.String("scene", "", "Initial scene name or .scene file")
	sceneDir := flag.String("scenes", "scenes", "Directory searched for .scene files")
	debug := flag.Bool("debug", false, "Log every preview frame")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			log.Fatal().Err(err).Msg("Load config")
		}
	}
	if *addr != "" {
		cfg.Preview.Addr = *addr
	}
	if *sceneName != "" {
		cfg.Scene = *sceneName
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(cfg, *sceneDir, log.Logger)
	defer srv.Close()

	log.Info().Msgf("Visit http://localhost%s/api/scenes or connect to ws://localhost%s/ws/frames", cfg.Preview.Addr, cfg.Preview.Addr)
	if err := srv.ListenAndServe(ctx, cfg.Preview.Addr); err != nil {
		log.Error().Err(err).Msg("Server stopped")
		os.Exit(1)
	}
}

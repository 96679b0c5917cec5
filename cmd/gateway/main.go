// Command gateway runs the protocol-normalization gateway: SSE session
// layer, JSON-RPC bridge, sandboxed tool host, cognitive-memory engine, and
// committee-evaluated MCTS planner, composed behind one gin HTTP server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/cyrup-ai/sweetmcp-sub007/internal/config"
	"github.com/cyrup-ai/sweetmcp-sub007/internal/logging"
)

func init() {
	_ = logging.Init("info", "json")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	if err := logging.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatal().Err(err).Msg("failed to configure logger")
	}
	log.Info().
		Str("listen_addr", cfg.ListenAddr).
		Str("log_level", cfg.LogLevel).
		Msg("starting sweetmcp gateway")

	app, err := CreateApplication(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create application")
	}

	errc := make(chan error, 1)
	go func() { errc <- app.httpServer.Run() }()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
		os.Exit(0)
	case err := <-errc:
		if err != nil {
			log.Fatal().Err(err).Msg("http server exited")
		}
	}
}

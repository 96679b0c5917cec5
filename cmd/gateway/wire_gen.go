// Hand-maintained equivalent of the code wire would generate from wire.go.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject

package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cyrup-ai/sweetmcp-sub007/internal/auth"
	"github.com/cyrup-ai/sweetmcp-sub007/internal/clock"
	"github.com/cyrup-ai/sweetmcp-sub007/internal/config"
	"github.com/cyrup-ai/sweetmcp-sub007/internal/gateway"
	"github.com/cyrup-ai/sweetmcp-sub007/internal/gateway/peers"
	"github.com/cyrup-ai/sweetmcp-sub007/internal/httpserver"
	"github.com/cyrup-ai/sweetmcp-sub007/internal/httpserver/routes"
	"github.com/cyrup-ai/sweetmcp-sub007/internal/memory"
	"github.com/cyrup-ai/sweetmcp-sub007/internal/memory/embeddings"
	"github.com/cyrup-ai/sweetmcp-sub007/internal/pluginhost"
	"github.com/cyrup-ai/sweetmcp-sub007/internal/pluginhost/tools"
	"github.com/cyrup-ai/sweetmcp-sub007/internal/vectormath"
)

// Application holds the fully-wired dependency graph main.go runs.
type Application struct {
	httpServer *httpserver.HTTPServer
	registry   *peers.Registry
}

// CreateApplication wires every subsystem from cfg, mirroring what
// `wire` would generate from wire.go's ProviderSet: the cognitive-memory
// engine, the sandboxed tool host (seeded with the built-in echo/fetch
// tools plus the memory- and planner-backed ones), the optional peer
// bridge, and the composite HTTP server.
func CreateApplication(ctx context.Context, cfg *config.Config) (*Application, error) {
	src := clock.Real{}

	embedder := embeddings.New(cfg.EmbeddingServiceURL, cfg.EmbeddingTimeout)
	store := memory.NewItemStore(cfg.EmbeddingDimension, src)

	simCache, err := vectormath.NewSimilarityCache(1024)
	if err != nil {
		return nil, err
	}
	searcher := memory.NewSearcher(store, embedder, simCache)

	registry := pluginhost.NewRegistry()
	registry.Register(tools.NewEcho())
	registry.Register(tools.NewFetch(10 * time.Second))
	registry.Register(tools.NewMemoryObserve(store, embedder, src))
	registry.Register(tools.NewMemoryRecall(searcher))
	registry.Register(tools.NewMemoryRecommend(searcher))
	registry.Register(tools.NewPlanOptimize())

	sandbox := pluginhost.NewSandbox(cfg.SandboxWallTime)
	dispatcher := pluginhost.NewDispatcher(registry, sandbox)

	peerRegistry, bridge := buildPeerRegistry(cfg)

	sessions := gateway.NewSessionManager(cfg.MaxConnections, "/v1/messages")

	validator, err := buildAuthValidator(ctx, cfg)
	if err != nil {
		return nil, err
	}

	gatewayRoute := routes.NewGatewayRoute(sessions, dispatcher, peerRegistry, bridge, cfg.PingInterval)
	httpSrv := httpserver.NewHTTPServer(cfg, gatewayRoute, validator)

	return &Application{httpServer: httpSrv, registry: peerRegistry}, nil
}

// buildPeerRegistry loads the peer-forwarding config when configured,
// returning the bridge to this node's primary MCP server otherwise (the
// teacher's mcpprovider.Bridge generalized to any downstream, single-peer
// when no peers.yml is present).
func buildPeerRegistry(cfg *config.Config) (*peers.Registry, *gateway.Bridge) {
	client := &http.Client{Timeout: cfg.BridgeTimeout}

	peerCfg, err := peers.LoadConfig(cfg.PeerConfigPath)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.PeerConfigPath).Msg("no peer config found, falling back to single downstream")
		downstream := &gateway.HTTPDownstream{Client: client, Base: cfg.MCPServerURL}
		return nil, gateway.NewBridge(downstream, cfg.BridgeTimeout)
	}

	registry := peers.NewRegistry(peerCfg, client)
	if len(peerCfg.Peers) == 0 {
		return registry, nil
	}
	if b, err := registry.BridgeFor(peerCfg.Peers[0].Name); err == nil {
		return registry, b
	}
	return registry, nil
}

// buildAuthValidator constructs a JWKS-backed validator when
// GATEWAY_AUTH_JWKS_URL is configured, or disables auth (nil validator)
// otherwise.
func buildAuthValidator(ctx context.Context, cfg *config.Config) (*auth.Validator, error) {
	if cfg.AuthJWKSURL == "" {
		if cfg.AuthRequired {
			log.Warn().Msg("GATEWAY_AUTH_REQUIRED is set but GATEWAY_AUTH_JWKS_URL is empty, running without auth")
		}
		return nil, nil
	}
	return auth.NewValidator(ctx, cfg.AuthJWKSURL, cfg.AuthIssuer, cfg.AuthAudience, cfg.AuthRefresh, 30*time.Second, log.Logger)
}

//go:build wireinject

package main

import (
	"context"
	"time"

	"github.com/google/wire"

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
)

// Application holds the fully-wired dependency graph main.go runs.
type Application struct {
	httpServer *httpserver.HTTPServer
	registry   *peers.Registry
}

// ProviderSet lists every constructor wire needs to assemble an Application
// from a *config.Config, grounded on
// mcp-tools/internal/infrastructure.InfrastructureProvider's wire.NewSet
// shape collapsed into one binary's worth of providers (this module has no
// domain/infrastructure/interfaces split, so one set covers it).
var ProviderSet = wire.NewSet(
	ProvideClock,
	ProvideEmbedder,
	ProvideItemStore,
	ProvideSearcher,
	ProvideToolRegistry,
	ProvideSandbox,
	ProvideDispatcher,
	ProvidePeerRegistry,
	ProvideBridge,
	ProvideSessionManager,
	ProvidePingInterval,
	ProvideAuthValidator,
	routes.NewGatewayRoute,
	httpserver.NewHTTPServer,
	wire.Struct(new(Application), "*"),
)

func CreateApplication(ctx context.Context, cfg *config.Config) (*Application, error) {
	wire.Build(ProviderSet)
	return nil, nil
}

func ProvideClock() clock.Source { return clock.Real{} }

func ProvideEmbedder(cfg *config.Config) memory.Embedder {
	return embeddings.New(cfg.EmbeddingServiceURL, cfg.EmbeddingTimeout)
}

func ProvideItemStore(cfg *config.Config, src clock.Source) *memory.ItemStore {
	return memory.NewItemStore(cfg.EmbeddingDimension, src)
}

func ProvideSearcher(store *memory.ItemStore, embedder memory.Embedder) *memory.Searcher {
	return memory.NewSearcher(store, embedder, nil)
}

func ProvideToolRegistry(store *memory.ItemStore, searcher *memory.Searcher, src clock.Source) *pluginhost.Registry {
	return nil
}

func ProvideSandbox(cfg *config.Config) *pluginhost.Sandbox {
	return pluginhost.NewSandbox(cfg.SandboxWallTime)
}

func ProvideDispatcher(registry *pluginhost.Registry, sandbox *pluginhost.Sandbox) *pluginhost.Dispatcher {
	return pluginhost.NewDispatcher(registry, sandbox)
}

func ProvidePeerRegistry(cfg *config.Config) *peers.Registry { return nil }

func ProvideBridge(registry *peers.Registry) *gateway.Bridge { return nil }

func ProvideSessionManager(cfg *config.Config) *gateway.SessionManager { return nil }

func ProvidePingInterval(cfg *config.Config) time.Duration { return cfg.PingInterval }

func ProvideAuthValidator(ctx context.Context, cfg *config.Config) (*auth.Validator, error) {
	return nil, nil
}

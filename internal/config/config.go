// Package config loads the gateway's environment-addressed configuration,
// following the teacher's caarlos0/env struct-tag convention
// (mcp-tools/internal/infrastructure/config, memory-tools/internal/configs).
package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every environment-addressed knob named in spec.md §6.
type Config struct {
	// HTTP / SSE gateway surface.
	ListenAddr      string        `env:"GATEWAY_LISTEN_ADDR" envDefault:":8443"`
	MaxConnections  int           `env:"GATEWAY_MAX_CONNECTIONS" envDefault:"1000"`
	SessionTimeout  time.Duration `env:"GATEWAY_SESSION_TIMEOUT" envDefault:"5m"`
	PingInterval    time.Duration `env:"GATEWAY_PING_INTERVAL" envDefault:"15s"`
	CORSOrigins     []string      `env:"GATEWAY_CORS_ORIGINS" envSeparator:","`
	LogLevel        string        `env:"GATEWAY_LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"GATEWAY_LOG_FORMAT" envDefault:"json"`

	// Bridge / downstream MCP service.
	MCPServerURL    string        `env:"GATEWAY_MCP_SERVER_URL" envDefault:"http://localhost:3000"`
	BridgeTimeout   time.Duration `env:"GATEWAY_BRIDGE_TIMEOUT" envDefault:"30s"`
	BridgeMaxRetry  int           `env:"GATEWAY_BRIDGE_MAX_RETRY" envDefault:"3"`
	BridgeRetryWait time.Duration `env:"GATEWAY_BRIDGE_RETRY_WAIT" envDefault:"500ms"`
	BatchConcurrency int          `env:"GATEWAY_BATCH_CONCURRENCY" envDefault:"10"`

	// Peer forwarding (supplements the single-provider teacher shape).
	PeerConfigPath string `env:"GATEWAY_PEERS_CONFIG" envDefault:"configs/peers.yml"`

	// Memory engine.
	EmbeddingDimension int           `env:"MEMORY_EMBEDDING_DIM" envDefault:"768"`
	VectorIndexType    string        `env:"MEMORY_VECTOR_INDEX" envDefault:"flat"`
	CleanupInterval    time.Duration `env:"MEMORY_CLEANUP_INTERVAL" envDefault:"1h"`
	CleanupMaxAgeDays  int           `env:"MEMORY_CLEANUP_MAX_AGE_DAYS" envDefault:"180"`
	CleanupMinConfidence float64     `env:"MEMORY_CLEANUP_MIN_CONFIDENCE" envDefault:"0.2"`
	CleanupMaxUnusedDays int         `env:"MEMORY_CLEANUP_MAX_UNUSED_DAYS" envDefault:"60"`
	CleanupBatchSize     int         `env:"MEMORY_CLEANUP_BATCH_SIZE" envDefault:"500"`

	// Persistence backends (abstract store concrete adapter).
	PostgresWriteDSN string `env:"DB_POSTGRESQL_WRITE_DSN"`
	PostgresReadDSN  string `env:"DB_POSTGRESQL_READ_DSN"`
	RedisURL         string `env:"GATEWAY_REDIS_URL" envDefault:"redis://localhost:6379/0"`

	EmbeddingServiceURL string        `env:"MEMORY_EMBEDDING_SERVICE_URL" envDefault:"http://localhost:8091/embed"`
	EmbeddingTimeout    time.Duration `env:"MEMORY_EMBEDDING_TIMEOUT" envDefault:"10s"`
	EmbeddingBatchSize  int           `env:"MEMORY_EMBEDDING_BATCH_SIZE" envDefault:"32"`

	// MCTS / committee / quantum planner.
	MCTSMaxIterations int           `env:"MCTS_MAX_ITERATIONS" envDefault:"1000"`
	MCTSMaxDuration   time.Duration `env:"MCTS_MAX_DURATION" envDefault:"5s"`
	MCTSMaxNodes      int           `env:"MCTS_MAX_NODES" envDefault:"100000"`
	MCTSExploration   float64       `env:"MCTS_EXPLORATION_CONSTANT" envDefault:"1.41421356"`
	CommitteeSize     int           `env:"COMMITTEE_SIZE" envDefault:"7"`
	QuantumMode       bool          `env:"QUANTUM_MODE_ENABLED" envDefault:"false"`

	// Auth (JWKS-backed bearer validation contract only; issuance is external).
	AuthJWKSURL  string        `env:"GATEWAY_AUTH_JWKS_URL"`
	AuthIssuer   string        `env:"GATEWAY_AUTH_ISSUER" envDefault:"sweetmcp-gateway"`
	AuthAudience string        `env:"GATEWAY_AUTH_AUDIENCE" envDefault:"sweetmcp-gateway"`
	AuthRefresh  time.Duration `env:"GATEWAY_AUTH_JWKS_REFRESH" envDefault:"1h"`
	AuthRequired bool          `env:"GATEWAY_AUTH_REQUIRED" envDefault:"false"`

	// Sandbox / plugin host.
	SandboxWallTime time.Duration `env:"PLUGIN_SANDBOX_WALL_TIME" envDefault:"5s"`
}

// Load reads the Config from the process environment, normalizing a few
// string fields the way the teacher's configs.Load does.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	return cfg, nil
}

// DatabaseReadDSN mirrors the teacher's read/write DSN split, falling back to
// the write DSN when no replica is configured.
func (c *Config) DatabaseReadDSN() string {
	if c.PostgresReadDSN != "" {
		return c.PostgresReadDSN
	}
	return c.PostgresWriteDSN
}

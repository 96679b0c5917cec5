// Package httpserver assembles the gateway's gin HTTP server: middleware
// chain, route groups, and the health/readiness surface, mirroring
// mcp-tools/internal/interfaces/httpserver.HTTPServer generalized from a
// single MCP passthrough service to the full protocol-normalizing gateway.
package httpserver

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cyrup-ai/sweetmcp-sub007/internal/auth"
	"github.com/cyrup-ai/sweetmcp-sub007/internal/config"
	"github.com/cyrup-ai/sweetmcp-sub007/internal/httpserver/middlewares"
	"github.com/cyrup-ai/sweetmcp-sub007/internal/httpserver/routes"
)

// HTTPServer is the gateway node's HTTP entry point.
type HTTPServer struct {
	router        *gin.Engine
	config        *config.Config
	gatewayRoute  *routes.GatewayRoute
	authValidator *auth.Validator
}

// NewHTTPServer builds an HTTPServer with the standard middleware chain:
// panic recovery, request logging, CORS, and (when configured) bearer-token
// auth.
func NewHTTPServer(cfg *config.Config, gatewayRoute *routes.GatewayRoute, authValidator *auth.Validator) *HTTPServer {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middlewares.RequestLogger())
	router.Use(middlewares.CORS())
	router.Use(middlewares.Auth(authValidator))

	return &HTTPServer{
		router:        router,
		config:        cfg,
		gatewayRoute:  gatewayRoute,
		authValidator: authValidator,
	}
}

func (s *HTTPServer) setupRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "sweetmcp-gateway"})
	})
	s.router.GET("/readyz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ready", "service": "sweetmcp-gateway"})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/v1")
	s.gatewayRoute.RegisterRouter(v1)
}

// Run starts the HTTP server, blocking until it exits.
func (s *HTTPServer) Run() error {
	s.setupRoutes()
	return s.router.Run(s.config.ListenAddr)
}

// Package routes implements the gateway's HTTP surface: the SSE session
// endpoint, the JSON-RPC message bridge, and health reporting, mirroring
// mcp-tools/internal/interfaces/httpserver/routes/mcp's MCPRoute wiring
// generalized from a single MCP passthrough to the full protocol-normalizing
// gateway.
package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/cyrup-ai/sweetmcp-sub007/internal/gateway"
	"github.com/cyrup-ai/sweetmcp-sub007/internal/gateway/peers"
	"github.com/cyrup-ai/sweetmcp-sub007/internal/gatewayerr"
	"github.com/cyrup-ai/sweetmcp-sub007/internal/pluginhost"
	"github.com/cyrup-ai/sweetmcp-sub007/internal/pluginhost/toolconfig"
	"github.com/cyrup-ai/sweetmcp-sub007/internal/telemetry"
)

// toolCallerAdapter satisfies gateway.ToolCaller (and gateway.ToolLister) over
// a pluginhost.Dispatcher, translating pluginhost.Result's typed Content
// slice into the transport-agnostic JSON shape gateway.ToolResult carries.
// Listed descriptions are memoized behind an LRU cache keyed by tool name.
type toolCallerAdapter struct {
	dispatcher *pluginhost.Dispatcher
	descCache  *toolconfig.Cache
}

func newToolCallerAdapter(dispatcher *pluginhost.Dispatcher) *toolCallerAdapter {
	cache, _ := toolconfig.New(256)
	return &toolCallerAdapter{dispatcher: dispatcher, descCache: cache}
}

func (a *toolCallerAdapter) CallTool(ctx context.Context, name string, args json.RawMessage) (gateway.ToolResult, error) {
	result, err := a.dispatcher.CallTool(ctx, name, args)
	if err != nil {
		return gateway.ToolResult{}, err
	}

	content := make([]json.RawMessage, 0, len(result.Content))
	for _, c := range result.Content {
		b, err := json.Marshal(c)
		if err != nil {
			return gateway.ToolResult{}, gatewayerr.Internal("failed to encode tool content", nil).Wrap(err)
		}
		content = append(content, b)
	}
	return gateway.ToolResult{Content: content, IsError: result.IsError}, nil
}

// ListTools satisfies gateway.ToolLister, serving cached descriptions when
// present and filling the cache on a miss.
func (a *toolCallerAdapter) ListTools(_ context.Context) []gateway.ToolDescription {
	toGateway := func(d pluginhost.ToolDescription) gateway.ToolDescription {
		schema, _ := json.Marshal(d.InputSchema)
		return gateway.ToolDescription{Name: d.Name, Description: d.Description, InputSchema: schema}
	}
	descs := a.dispatcher.ListTools()
	out := make([]gateway.ToolDescription, 0, len(descs))
	for _, d := range descs {
		if a.descCache != nil {
			if cached, ok := a.descCache.Get(d.Name); ok {
				out = append(out, toGateway(cached))
				continue
			}
			a.descCache.Put(d.Name, d)
		}
		out = append(out, toGateway(d))
	}
	return out
}

// GatewayRoute binds the protocol-normalization gateway, SSE session layer,
// and downstream bridge into gin handlers.
type GatewayRoute struct {
	sessions     *gateway.SessionManager
	router       *gateway.Router
	peers        *peers.Registry
	bridge       *gateway.Bridge
	pingInterval time.Duration
}

// NewGatewayRoute wires a GatewayRoute from its collaborators. peerRegistry
// may be nil when no peers.yml is configured. defaultBridge may be nil when
// this node has neither a declared peer for a method nor a default
// downstream (local-only mode); in that case unroutable methods return
// Method not found instead of being forwarded.
func NewGatewayRoute(sessions *gateway.SessionManager, dispatcher *pluginhost.Dispatcher, peerRegistry *peers.Registry, defaultBridge *gateway.Bridge, pingInterval time.Duration) *GatewayRoute {
	if pingInterval <= 0 {
		pingInterval = 15 * time.Second
	}
	return &GatewayRoute{
		sessions:     sessions,
		router:       gateway.NewRouter(newToolCallerAdapter(dispatcher)),
		peers:        peerRegistry,
		bridge:       defaultBridge,
		pingInterval: pingInterval,
	}
}

// bridgeFor resolves the downstream bridge a method should forward to: a
// peer that declares explicit ownership of method takes priority over this
// node's default downstream bridge.
func (g *GatewayRoute) bridgeFor(method string) *gateway.Bridge {
	if g.peers != nil {
		if b, err := g.peers.RouteFor(method); err == nil {
			return b
		}
	}
	return g.bridge
}

// RegisterRouter mounts /sse, /messages, and /health onto group.
func (g *GatewayRoute) RegisterRouter(group gin.IRouter) {
	group.GET("/sse", g.serveSSE)
	group.POST("/messages", g.serveMessages)
	group.GET("/health", g.serveHealth)
}

func (g *GatewayRoute) serveSSE(c *gin.Context) {
	session, err := g.sessions.Create()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "at capacity"})
		return
	}
	defer g.sessions.Close(session.ID)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	go g.sessions.RunPingLoop(session, g.pingInterval)

	flusher, ok := c.Writer.(http.Flusher)
	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, open := <-session.Events:
			if !open {
				return
			}
			frame := "event: " + ev.Name + "\n"
			if ev.ID != "" {
				frame += "id: " + ev.ID + "\n"
			}
			frame += "data: " + ev.Data + "\n\n"
			if _, err := c.Writer.Write([]byte(frame)); err != nil {
				return
			}
			if ok {
				flusher.Flush()
			}
		}
	}
}

func (g *GatewayRoute) serveMessages(c *gin.Context) {
	sessionID := c.Query("session_id")
	if _, err := g.sessions.Get(sessionID); err != nil {
		c.JSON(http.StatusNotFound, gateway.FailureResponse(err))
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gateway.FailureResponse(gatewayerr.Validation("failed to read request body", nil)))
		return
	}

	normalized, err := gateway.Normalize(body, gateway.ContextFromRequest(c.Request))
	if err != nil {
		c.JSON(http.StatusOK, gateway.FailureResponse(err))
		return
	}

	resp, routeErr := g.router.Route(c.Request.Context(), normalized.Envelope)
	if routeErr != nil {
		if ge, ok := gatewayerr.As(routeErr); ok && ge.Kind == gatewayerr.KindNotFound {
			if bridge := g.bridgeFor(normalized.Envelope.Method); bridge != nil {
				resp = bridge.Forward(c.Request.Context(), normalized.Envelope)
			} else {
				resp = gateway.NewErrorResponse(normalized.Envelope.ID, gateway.CodeMethodNotFound,
					"Method not found", "The method '"+normalized.Envelope.Method+"' does not exist")
			}
		} else {
			resp = gateway.FailureResponseWithID(routeErr, normalized.Envelope.ID)
		}
	}

	telemetry.RequestsTotal.WithLabelValues(string(normalized.Protocol), statusLabel(resp)).Inc()

	out, reshapeErr := gateway.Reshape(resp, normalized.Protocol)
	if reshapeErr != nil {
		log.Error().Err(reshapeErr).Msg("failed to reshape gateway response")
		c.JSON(http.StatusInternalServerError, gateway.FailureResponse(reshapeErr))
		return
	}
	c.Data(http.StatusOK, "application/json", out)
}

func statusLabel(resp gateway.Response) string {
	if resp.Error != nil {
		return "error"
	}
	return "ok"
}

func (g *GatewayRoute) serveHealth(c *gin.Context) {
	health := gin.H{
		"sessions": g.sessions.Len(),
	}
	if g.bridge != nil {
		health["downstream"] = g.bridge.DownstreamURL()
	}
	if g.peers != nil {
		health["peers"] = g.peers.Names()
	}
	c.JSON(http.StatusOK, health)
}

package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyrup-ai/sweetmcp-sub007/internal/gateway"
	"github.com/cyrup-ai/sweetmcp-sub007/internal/gatewayerr"
	"github.com/cyrup-ai/sweetmcp-sub007/internal/pluginhost"
	"github.com/cyrup-ai/sweetmcp-sub007/internal/pluginhost/tools"
)

func init() { gin.SetMode(gin.TestMode) }

func newTestRouter(route *GatewayRoute) *gin.Engine {
	r := gin.New()
	route.RegisterRouter(r.Group("/"))
	return r
}

func newDispatcherWithEcho() *pluginhost.Dispatcher {
	registry := pluginhost.NewRegistry()
	registry.Register(tools.NewEcho())
	sandbox := pluginhost.NewSandbox(time.Second)
	return pluginhost.NewDispatcher(registry, sandbox)
}

func postMessage(t *testing.T, router *gin.Engine, sessions *gateway.SessionManager, body []byte, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	session, err := sessions.Create()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/messages?session_id="+session.ID, bytes.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGatewayRoute_CanonicalEchoRoundTrips(t *testing.T) {
	sessions := gateway.NewSessionManager(10, "http://gateway.local")
	route := NewGatewayRoute(sessions, newDispatcherWithEcho(), nil, nil, time.Second)
	router := newTestRouter(route)

	body := []byte(`{"jsonrpc":"2.0","method":"echo","params":{"message":"hi"},"id":1}`)
	w := postMessage(t, router, sessions, body, "application/json")

	assert.Equal(t, http.StatusOK, w.Code)

	var resp gateway.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Nil(t, resp.Error)
	assert.Equal(t, json.RawMessage(`1`), resp.ID)
}

func TestGatewayRoute_GraphQLRequestWrapsResponseInData(t *testing.T) {
	sessions := gateway.NewSessionManager(10, "http://gateway.local")
	route := NewGatewayRoute(sessions, newDispatcherWithEcho(), nil, nil, time.Second)
	router := newTestRouter(route)

	body := []byte(`{"query":"{ echo }","operationName":"echo","variables":{"message":"hi"}}`)
	w := postMessage(t, router, sessions, body, "application/graphql")

	assert.Equal(t, http.StatusOK, w.Code)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	assert.Contains(t, decoded, "data")
}

func TestGatewayRoute_UnknownMethodWithNoBridgeIsMethodNotFound(t *testing.T) {
	sessions := gateway.NewSessionManager(10, "http://gateway.local")
	route := NewGatewayRoute(sessions, newDispatcherWithEcho(), nil, nil, time.Second)
	router := newTestRouter(route)

	body := []byte(`{"jsonrpc":"2.0","method":"nonexistent","id":1}`)
	w := postMessage(t, router, sessions, body, "application/json")

	var resp gateway.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, gateway.CodeMethodNotFound, resp.Error.Code)
}

type slowDownstream struct{ delay time.Duration }

func (s *slowDownstream) URL() string { return "http://slow-peer" }
func (s *slowDownstream) Send(ctx context.Context, env gateway.Envelope) (gateway.Response, error) {
	select {
	case <-time.After(s.delay):
		return gateway.Response{Version: "2.0", Result: map[string]any{"ok": true}}, nil
	case <-ctx.Done():
		return gateway.Response{}, gatewayerr.Timeout("downstream request timed out", s.URL()).Wrap(ctx.Err())
	}
}

func TestGatewayRoute_UnknownMethodForwardedToBridgeTimesOut(t *testing.T) {
	sessions := gateway.NewSessionManager(10, "http://gateway.local")
	bridge := gateway.NewBridge(&slowDownstream{delay: 50 * time.Millisecond}, 5*time.Millisecond)
	route := NewGatewayRoute(sessions, newDispatcherWithEcho(), nil, bridge, time.Second)
	router := newTestRouter(route)

	body := []byte(`{"jsonrpc":"2.0","method":"remote.op","id":1}`)
	w := postMessage(t, router, sessions, body, "application/json")

	var resp gateway.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, gateway.CodeTimeout, resp.Error.Code)
}

func TestGatewayRoute_Health_ReportsSessionCountAndDownstream(t *testing.T) {
	sessions := gateway.NewSessionManager(10, "http://gateway.local")
	bridge := gateway.NewBridge(&slowDownstream{}, time.Second)
	route := NewGatewayRoute(sessions, newDispatcherWithEcho(), nil, bridge, time.Second)
	router := newTestRouter(route)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	assert.Equal(t, "http://slow-peer", decoded["downstream"])
}

func TestGatewayRoute_ToolsListReturnsRegisteredDescriptions(t *testing.T) {
	sessions := gateway.NewSessionManager(10, "http://gateway.local")
	route := NewGatewayRoute(sessions, newDispatcherWithEcho(), nil, nil, time.Second)
	router := newTestRouter(route)

	body := []byte(`{"jsonrpc":"2.0","method":"tools/list","id":1}`)
	w := postMessage(t, router, sessions, body, "application/json")

	assert.Equal(t, http.StatusOK, w.Code)

	var resp gateway.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Nil(t, resp.Error)

	result, ok := resp.Result.(map[string]any)
	require.True(t, ok)
	tools, ok := result["tools"].([]any)
	require.True(t, ok)
	require.Len(t, tools, 1)

	desc, ok := tools[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "echo", desc["name"])
}

func TestGatewayRoute_Messages_UnknownSessionIsNotFound(t *testing.T) {
	sessions := gateway.NewSessionManager(10, "http://gateway.local")
	route := NewGatewayRoute(sessions, newDispatcherWithEcho(), nil, nil, time.Second)
	router := newTestRouter(route)

	req := httptest.NewRequest(http.MethodPost, "/messages?session_id=ghost", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

package gateway

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cyrup-ai/sweetmcp-sub007/internal/gatewayerr"
	"github.com/cyrup-ai/sweetmcp-sub007/internal/telemetry"
)

// Session is one open SSE connection's bookkeeping: when it was last seen
// alive (refreshed on every ping) and the outbound event channel the HTTP
// handler drains.
type Session struct {
	ID       string
	Events   chan Event
	LastSeen time.Time
	done     chan struct{}
}

// Event is a single server-sent event: a name, an optional id (emitted as
// the wire "id:" line when non-empty, letting a reconnecting client resume
// via Last-Event-ID), and a data payload.
type Event struct {
	Name string
	ID   string
	Data string
}

// SessionManager tracks live SSE sessions up to a configured capacity,
// grounded on the teacher's connection-registry pattern generalized from a
// single websocket hub to many independent SSE streams.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	capacity int
	baseURL  string
}

// NewSessionManager builds a manager capped at capacity concurrent
// sessions, advertising baseURL in the initial "endpoint" event.
func NewSessionManager(capacity int, baseURL string) *SessionManager {
	if capacity <= 0 {
		capacity = 1000
	}
	return &SessionManager{
		sessions: make(map[string]*Session),
		capacity: capacity,
		baseURL:  baseURL,
	}
}

// Create opens a new session, rejecting with a capacity error when the
// manager is already at its configured limit, per spec.md §4.2's "rejects
// with 503 when at capacity".
func (m *SessionManager) Create() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) >= m.capacity {
		return nil, gatewayerr.Capacity("sse session capacity reached", m.capacity)
	}

	s := &Session{
		ID:       uuid.NewString(),
		Events:   make(chan Event, 16),
		LastSeen: time.Now(),
		done:     make(chan struct{}),
	}
	m.sessions[s.ID] = s
	telemetry.SessionsActive.Inc()
	telemetry.SessionsTotal.Inc()

	s.Events <- Event{
		Name: "endpoint",
		Data: fmt.Sprintf(`{"url":%q,"session_id":%q}`, m.baseURL, s.ID),
	}
	return s, nil
}

// Get returns the live session for id, or a not-found error.
func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, gatewayerr.NotFound("unknown session", id)
	}
	return s, nil
}

// Touch refreshes a session's last-seen timestamp, called every ping.
func (m *SessionManager) Touch(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.LastSeen = time.Now()
	}
}

// Close removes a session and signals its ping loop to stop.
func (m *SessionManager) Close(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		close(s.done)
		delete(m.sessions, id)
		telemetry.SessionsActive.Dec()
	}
}

// Len reports the current number of open sessions.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// RunPingLoop emits a ping-<n> event on the session's channel every
// interval until the session closes or stopCh fires, incrementing n each
// time so consumers can assert monotonicity, per spec.md §4.2/§8. Each
// ping carries an "id: ping-<n>" SSE line (letting a reconnecting client
// resume via Last-Event-ID) and a JSON object timestamp in its data line.
func (m *SessionManager) RunPingLoop(s *Session, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	n := 0
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			id := fmt.Sprintf("ping-%d", n)
			data := fmt.Sprintf(`{"timestamp":%q}`, time.Now().UTC().Format(time.RFC3339))
			select {
			case s.Events <- Event{Name: "ping", ID: id, Data: data}:
				n++
				m.Touch(s.ID)
			default:
				// Slow consumer; drop the ping rather than block the loop.
			}
		}
	}
}

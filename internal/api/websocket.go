package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"battlecore/internal/combat"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const (
	// MaxWSConnectionsTotal caps concurrent combat-stream connections
	// across the whole service.
	MaxWSConnectionsTotal = 500

	// MaxWSConnectionsPerIP caps concurrent combat-stream connections
	// from a single client IP.
	MaxWSConnectionsPerIP = 10

	// streamPollInterval is how often a stream connection drains its
	// consumer queue when no new events are immediately available.
	streamPollInterval = 50 * time.Millisecond
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if IsAllowedOrigin(origin) {
			return true
		}
		log.Printf("websocket connection rejected from origin: %s", origin)
		RecordConnectionRejected("origin")
		return false
	},
}

// WebSocketHub tracks live combat-stream connections and enforces the
// total/per-IP connection caps, grounded on the teacher's hub but
// without a shared broadcast channel: each connection streams its own
// combat's events independently, so there is no fan-out to coordinate.
type WebSocketHub struct {
	mu        sync.Mutex
	count     int
	wsLimiter *WebSocketRateLimiter
}

// NewWebSocketHub creates a hub with connection limiting.
func NewWebSocketHub() *WebSocketHub {
	return &WebSocketHub{
		wsLimiter: NewWebSocketRateLimiter(MaxWSConnectionsPerIP),
	}
}

func (h *WebSocketHub) register() {
	h.mu.Lock()
	h.count++
	n := h.count
	h.mu.Unlock()
	UpdateWSConnections(n)
}

func (h *WebSocketHub) unregister() {
	h.mu.Lock()
	h.count--
	n := h.count
	h.mu.Unlock()
	UpdateWSConnections(n)
}

// HandleCombatStream upgrades the request and streams one combat's
// events live, starting from the connection's subscribe point — any
// events already in the authoritative log at subscribe time, plus
// everything dispatched afterward. Closes when the combat finishes and
// the backlog has fully drained, or when the client disconnects.
func (h *WebSocketHub) HandleCombatStream(registry *Registry, eventBufferSize int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := GetClientIP(r)

		h.mu.Lock()
		total := h.count
		h.mu.Unlock()
		if total >= MaxWSConnectionsTotal {
			RecordConnectionRejected("ws_total_limit")
			http.Error(w, "too many connections", http.StatusServiceUnavailable)
			return
		}
		if !h.wsLimiter.Allow(ip) {
			RecordConnectionRejected("ws_ip_limit")
			http.Error(w, "too many connections from your ip", http.StatusTooManyRequests)
			return
		}

		id := chi.URLParam(r, "id")
		handle, err := registry.Get(id)
		if err != nil {
			h.wsLimiter.Release(ip)
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.wsLimiter.Release(ip)
			log.Printf("websocket upgrade error: %v", err)
			return
		}
		defer func() {
			conn.Close()
			h.wsLimiter.Release(ip)
			h.unregister()
		}()
		h.register()

		consumer := handle.Subscribe(eventBufferSize)

		var lastSeq uint64
		for _, e := range handle.EventsSince(0) {
			if err := writeEvent(conn, e); err != nil {
				return
			}
			lastSeq = e.Seq
		}

		ticker := time.NewTicker(streamPollInterval)
		defer ticker.Stop()

		var lastDropped uint64
		for range ticker.C {
			// Read the status before draining so every event dispatched
			// before the combat finished is written before the stream closes.
			done, _ := handle.Status()
			for {
				e, ok := consumer.TryNext()
				if !ok {
					break
				}
				if e.Seq <= lastSeq {
					continue
				}
				if err := writeEvent(conn, e); err != nil {
					return
				}
			}

			if dropped := consumer.Dropped(); dropped > lastDropped {
				for i := uint64(0); i < dropped-lastDropped; i++ {
					RecordEventDropped()
				}
				lastDropped = dropped
			}

			if done {
				return
			}
		}
	}
}

func writeEvent(conn *websocket.Conn, e combat.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, payload)
}

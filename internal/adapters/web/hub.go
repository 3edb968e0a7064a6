package web

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lcalzada-xor/wdeck/internal/adapters/display"
	"github.com/lcalzada-xor/wdeck/internal/core/domain"
	"github.com/lcalzada-xor/wdeck/internal/core/ports"
)

// DefaultBroadcastInterval is how often connected viewers get the display.
const DefaultBroadcastInterval = 500 * time.Millisecond

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		// Allow same-origin (no Origin header)
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		if u.Host != r.Host {
			log.Printf("WebSocket: Rejected origin: %s", origin)
			return false
		}
		return true
	},
}

type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type screenPayload struct {
	Screen [display.Rows]string `json:"screen"`
	Mode   string               `json:"mode"`
}

// Hub mirrors the display to WebSocket viewers. It is a ports.Display: the
// control loop hands it every snapshot and a broadcaster pushes the latest
// one on its own schedule.
type Hub struct {
	interval time.Duration

	mu      sync.Mutex
	Clients map[*websocket.Conn]bool
	latest  *screenPayload
	sent    *screenPayload
}

var _ ports.Display = (*Hub)(nil)

func NewHub(interval time.Duration) *Hub {
	if interval <= 0 {
		interval = DefaultBroadcastInterval
	}
	return &Hub{
		interval: interval,
		Clients:  make(map[*websocket.Conn]bool),
	}
}

func (h *Hub) Start(ctx context.Context) {
	go h.processAndBroadcast(ctx)
}

// Render implements ports.Display. It only records the screen.
func (h *Hub) Render(s domain.Snapshot) error {
	p := &screenPayload{Screen: display.Compose(s), Mode: s.Mode.String()}
	h.mu.Lock()
	h.latest = p
	h.mu.Unlock()
	return nil
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}

	h.mu.Lock()
	h.Clients[conn] = true
	h.sent = nil // new viewer gets the current screen on the next tick
	h.mu.Unlock()

	log.Printf("WebSocket connected: %s", r.RemoteAddr)

	// Clean up on disconnect
	go func() {
		defer conn.Close()
		defer func() {
			h.mu.Lock()
			delete(h.Clients, conn)
			h.mu.Unlock()
			log.Printf("WebSocket disconnected: %s", r.RemoteAddr)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

// ClientCount returns the number of connected viewers.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.Clients)
}

// CloseAll disconnects every viewer.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.Clients {
		conn.Close()
		delete(h.Clients, conn)
	}
}

func (h *Hub) processAndBroadcast(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.broadcastScreen()
		}
	}
}

// broadcastScreen pushes the latest screen if it changed since last sent.
func (h *Hub) broadcastScreen() {
	h.mu.Lock()
	p := h.latest
	if p == nil || (h.sent != nil && *h.sent == *p) {
		h.mu.Unlock()
		return
	}
	h.sent = p
	h.mu.Unlock()

	h.broadcastMessage(WSMessage{Type: "screen", Payload: p})
}

func (h *Hub) broadcastMessage(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.Clients {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			delete(h.Clients, conn)
		}
	}
}

// Package stream broadcasts a running simulation to websocket watchers:
// every snapshot, agent event and the final report.
package stream

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/borkshop/roomba/internal/roomba"
	"github.com/borkshop/roomba/internal/stats"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub tracks connected watchers. It is a stats.Sink, so a simulation can
// record straight into it, and an http.Handler serving the websocket.
type Hub struct {
	log     *slog.Logger
	mutex   sync.RWMutex
	clients map[*Connection]struct{}
	runID   string
	last    *stats.Snapshot
}

// NewHub creates a hub with no watchers; a nil logger discards.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Hub{
		log:     log,
		clients: make(map[*Connection]struct{}),
	}
}

// ServeHTTP upgrades the request to a websocket and streams to it until
// either side hangs up.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	conn := NewConnection(ws, h.log)

	h.mutex.Lock()
	h.clients[conn] = struct{}{}
	hello := HelloMessage{RunID: h.runID}
	if h.last != nil {
		hello.Snapshot = *h.last
	}
	conn.SendMessage(Message{Type: MessageTypeHello, Payload: hello})
	h.mutex.Unlock()
	h.log.Info("watcher connected", "remote", ws.RemoteAddr())

	go conn.WritePump()
	conn.ReadPump()

	h.mutex.Lock()
	delete(h.clients, conn)
	h.mutex.Unlock()
	conn.Close()
	h.log.Info("watcher disconnected", "remote", ws.RemoteAddr())
}

// Clients returns the number of connected watchers.
func (h *Hub) Clients() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// BroadcastToAll sends msg to every watcher.
func (h *Hub) BroadcastToAll(msg interface{}) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	for conn := range h.clients {
		if err := conn.SendMessage(msg); err != nil {
			h.log.Error("broadcast failed", "remote", conn.ws.RemoteAddr(), "err", err)
		}
	}
}

// Record broadcasts snap and keeps it for watchers connecting later.
func (h *Hub) Record(_ context.Context, snap stats.Snapshot) error {
	h.mutex.Lock()
	h.runID = snap.RunID
	h.last = &snap
	h.mutex.Unlock()
	h.BroadcastToAll(Message{Type: MessageTypeSnapshot, Payload: snap})
	return nil
}

// Finish broadcasts the run's report.
func (h *Hub) Finish(_ context.Context, rep stats.Report) error {
	h.BroadcastToAll(Message{Type: MessageTypeReport, Payload: rep})
	return nil
}

// Event broadcasts an agent event; pass it to sim.WithEvents.
func (h *Hub) Event(ev roomba.Event) {
	h.mutex.RLock()
	runID := h.runID
	h.mutex.RUnlock()
	h.BroadcastToAll(Message{Type: MessageTypeEvent, Payload: EventMessage{
		RunID:   runID,
		Kind:    ev.Kind.String(),
		Agent:   ev.Agent,
		X:       ev.At.X,
		Y:       ev.At.Y,
		Battery: ev.Battery,
	}})
}

// Close disconnects every watcher.
func (h *Hub) Close() error {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for conn := range h.clients {
		conn.Close()
	}
	return nil
}

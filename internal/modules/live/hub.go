// Package live pushes collection-changed events to dashboard websockets.
package live

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"projecttracker/internal/modules/tracker"
	"projecttracker/internal/pkg/logger"
	"projecttracker/internal/repository"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024
	sendBuffer = 64
)

const (
	EventCollectionChanged = "collection_changed"
	EventSubscribe         = "subscribe"
	EventUnsubscribe       = "unsubscribe"
)

// Event is pushed to clients when a collection changes.
type Event struct {
	Type       string           `json:"type"`
	Collection repository.Table `json:"collection"`
	At         time.Time        `json:"at"`
}

// Notifier is the part of the tracker controller the hub listens to.
type Notifier interface {
	OnCollectionChanged(table repository.Table, l tracker.Listener) func()
}

// connection is one websocket client. An empty filter means every collection.
type connection struct {
	id     uint64
	conn   *websocket.Conn
	send   chan []byte
	filter map[repository.Table]bool
}

type Hub struct {
	mu          sync.RWMutex
	connections map[uint64]*connection
	nextID      uint64
	upgrader    websocket.Upgrader
	log         *logrus.Logger
	now         func() time.Time
}

// NewHub accepts websocket upgrades from the given origins; none means any origin.
func NewHub(log *logrus.Logger, origins []string) *Hub {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return &Hub{
		connections: make(map[uint64]*connection),
		log:         log,
		now:         time.Now,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

// Watch forwards every collection change of n to connected clients until the
// returned func is called.
func (h *Hub) Watch(n Notifier) func() {
	var stops []func()
	for _, t := range repository.AllTables {
		if t == repository.TableParts {
			continue
		}
		stops = append(stops, n.OnCollectionChanged(t, h.collectionChanged))
	}
	return func() {
		for _, stop := range stops {
			stop()
		}
	}
}

func (h *Hub) collectionChanged(t repository.Table) {
	h.Broadcast(Event{Type: EventCollectionChanged, Collection: t, At: h.now().UTC()})
}

// Broadcast queues e for every client subscribed to its collection. Clients whose
// buffer is full miss the event.
func (h *Hub) Broadcast(e Event) int {
	data, err := json.Marshal(e)
	if err != nil {
		logger.LogError(h.log, "live", "Broadcast", "marshal event", e, err)
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	sent := 0
	for _, c := range h.connections {
		if len(c.filter) > 0 && !c.filter[e.Collection] {
			continue
		}
		select {
		case c.send <- data:
			sent++
		default:
		}
	}
	return sent
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// ServeWS upgrades the request and serves the connection until the client leaves.
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.LogError(h.log, "live", "ServeWS", "upgrade", c.ClientIP(), err)
		return
	}
	cl := &connection{
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		filter: make(map[repository.Table]bool),
	}
	h.register(cl)

	go h.writePump(cl)
	h.readPump(cl)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.connections {
		close(c.send)
		delete(h.connections, id)
	}
}

func (h *Hub) register(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	c.id = h.nextID
	h.connections[c.id] = c
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if existing, ok := h.connections[c.id]; ok && existing == c {
		delete(h.connections, c.id)
		close(c.send)
	}
}

func (h *Hub) readPump(c *connection) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var req struct {
			Type       string           `json:"type"`
			Collection repository.Table `json:"collection"`
		}
		if err := json.Unmarshal(msg, &req); err != nil || !req.Collection.Valid() {
			continue
		}
		if req.Collection == repository.TableParts {
			req.Collection = repository.TablePurchaseOrders
		}

		switch req.Type {
		case EventSubscribe:
			h.mu.Lock()
			c.filter[req.Collection] = true
			h.mu.Unlock()
		case EventUnsubscribe:
			h.mu.Lock()
			delete(c.filter, req.Collection)
			h.mu.Unlock()
		}
	}
}

func (h *Hub) writePump(c *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

package control_api

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"push-to-talk-typer/logging"
)

// keepaliveTimeout is how long a results client may stay silent before it
// is pruned. Clients send the text frame "keepalive" to stay subscribed.
const keepaliveTimeout = 10 * time.Second

type transcriptMessage struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type wsClient struct {
	id            string
	conn          *websocket.Conn
	out           chan transcriptMessage
	lastKeepalive time.Time
}

// Hub fans transcripts out to the connected results websockets. It is the
// controller's TranscriptSink while remote listening is active.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *logging.Logger

	mu      sync.Mutex
	clients map[string]*wsClient

	// onEmpty fires when the last client disconnects, so remote
	// listening does not stay on with nobody receiving results.
	onEmpty func()
}

func NewHub(logger *logging.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:  logger.Named("results-hub"),
		clients: make(map[string]*wsClient),
	}
}

// Publish sends one transcript to every connected client. Slow clients
// drop messages rather than block the pipeline.
func (h *Hub) Publish(text string) {
	msg := transcriptMessage{
		Text:      text,
		Timestamp: time.Now().UTC(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range h.clients {
		select {
		case c.out <- msg:
		default:
			h.logger.Warn("dropping transcript for slow client", logging.String("client", c.id))
		}
	}
}

func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.clients)
}

// ServeWS upgrades the request and serves one results client until it
// disconnects or stops sending keepalives.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", logging.Error(err))

		return
	}

	c := &wsClient{
		id:            uuid.NewString(),
		conn:          conn,
		out:           make(chan transcriptMessage, 16),
		lastKeepalive: time.Now(),
	}

	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()

	h.logger.Info("results client connected", logging.String("client", c.id))

	go h.writeLoop(c)
	h.readLoop(c)
}

func (h *Hub) writeLoop(c *wsClient) {
	for msg := range c.out {
		if err := c.conn.WriteJSON(msg); err != nil {
			h.logger.Debug("write to results client failed", logging.String("client", c.id), logging.Error(err))

			// Drop the client now rather than leaving it for the
			// keepalive prune; Publish would keep feeding it.
			h.remove(c.id)

			return
		}
	}
}

func (h *Hub) readLoop(c *wsClient) {
	defer h.remove(c.id)

	for {
		msgType, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		if msgType == websocket.TextMessage && string(payload) == "keepalive" {
			h.mu.Lock()
			c.lastKeepalive = time.Now()
			h.mu.Unlock()
		} else {
			h.logger.Warn("unknown message from results client", logging.String("client", c.id))
		}
	}
}

func (h *Hub) remove(id string) {
	h.mu.Lock()

	c, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
		close(c.out)
		c.conn.Close()
	}

	empty := len(h.clients) == 0
	onEmpty := h.onEmpty

	h.mu.Unlock()

	if !ok {
		return
	}

	h.logger.Info("results client disconnected", logging.String("client", id))

	if empty && onEmpty != nil {
		onEmpty()
	}
}

// prune drops clients whose keepalives stopped, mirroring disconnects the
// read loop never observed (half-open connections).
func (h *Hub) prune() {
	h.mu.Lock()

	stale := make([]string, 0)
	for id, c := range h.clients {
		if time.Since(c.lastKeepalive) > keepaliveTimeout {
			stale = append(stale, id)
		}
	}

	h.mu.Unlock()

	for _, id := range stale {
		h.logger.Info("pruning stale results client", logging.String("client", id))
		h.remove(id)
	}
}

func (h *Hub) run(stop <-chan struct{}) {
	ticker := time.NewTicker(keepaliveTimeout)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.prune()
		case <-stop:
			return
		}
	}
}

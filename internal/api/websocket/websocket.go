// Package websocket streams real-time pipeline updates to dashboard clients.
// Three channels exist: new_anomaly, response_executed and processing_update;
// clients pick channels at connect time and receive everything on them.
package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/IT21259166/anbd-core/internal/config"
	"github.com/IT21259166/anbd-core/internal/metrics"
	"github.com/IT21259166/anbd-core/internal/models"
	"github.com/IT21259166/anbd-core/pkg/logger"
)

// Channels a client may subscribe to.
var knownChannels = map[string]bool{
	"new_anomaly":       true,
	"response_executed": true,
	"processing_update": true,
}

type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	logger     logger.Logger
	mu         sync.Mutex
}

type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	channels map[string]bool
}

func NewHub(log logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     log,
	}
}

// Run owns the client set until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			metrics.ActiveWebSocketConnections.Inc()
			h.logger.Info("websocket client connected", "channels", channelNames(client.channels))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				metrics.ActiveWebSocketConnections.Dec()
			}
			h.mu.Unlock()
			h.logger.Info("websocket client disconnected")

		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
				metrics.ActiveWebSocketConnections.Dec()
			}
			h.mu.Unlock()
			return
		}
	}
}

// Publish broadcasts a payload to every client subscribed to the channel.
// Fire-and-forget: a client whose send buffer is full is dropped, and
// marshalling failures are logged, never propagated.
func (h *Hub) Publish(channel string, payload interface{}) {
	msg, err := json.Marshal(models.Notification{
		Channel:   channel,
		Data:      payload,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		h.logger.Error("marshalling notification failed", "channel", channel, "error", err)
		return
	}

	h.mu.Lock()
	for client := range h.clients {
		if !client.channels[channel] {
			continue
		}
		select {
		case client.send <- msg:
		default:
			delete(h.clients, client)
			close(client.send)
			metrics.ActiveWebSocketConnections.Dec()
		}
	}
	h.mu.Unlock()
}

// ServeWS upgrades an HTTP request to a websocket subscription. The client
// picks channels with ?channels=new_anomaly,processing_update; no parameter
// subscribes to everything.
func ServeWS(hub *Hub, cfg config.WebSocketConfig) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin:     func(*http.Request) bool { return true },
	}
	pingInterval := time.Duration(cfg.PingIntervalSec) * time.Second
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}

	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			hub.logger.Warn("websocket upgrade failed", "error", err)
			return
		}

		client := &Client{
			hub:      hub,
			conn:     conn,
			send:     make(chan []byte, 64),
			channels: parseChannels(c.Query("channels")),
		}
		hub.register <- client

		go client.writePump(pingInterval)
		go client.readPump()
	}
}

func parseChannels(raw string) map[string]bool {
	channels := make(map[string]bool)
	if raw == "" {
		for ch := range knownChannels {
			channels[ch] = true
		}
		return channels
	}
	for _, ch := range strings.Split(raw, ",") {
		ch = strings.TrimSpace(ch)
		if knownChannels[ch] {
			channels[ch] = true
		}
	}
	return channels
}

func channelNames(channels map[string]bool) []string {
	names := make([]string, 0, len(channels))
	for ch := range channels {
		names = append(names, ch)
	}
	return names
}

// readPump drains inbound frames so pongs and close frames are processed.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(1024)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump(pingInterval time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

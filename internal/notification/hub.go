package notification

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
	wsSendBuffer = 16
)

type wsClient struct {
	userID string
	conn   *websocket.Conn
	send   chan []byte
}

// Hub keeps the open websocket connections of this process, keyed by user.
// Messages arrive through Redis so any API instance can reach any user.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*wsClient]struct{}
	logger  *zap.Logger
}

func NewHub(logger ...*zap.Logger) *Hub {
	l := zap.L().Named("notification.hub")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.hub")
	}
	return &Hub{clients: make(map[string]map[*wsClient]struct{}), logger: l}
}

func (h *Hub) register(userID string, conn *websocket.Conn) *wsClient {
	c := &wsClient{userID: userID, conn: conn, send: make(chan []byte, wsSendBuffer)}

	h.mu.Lock()
	if _, ok := h.clients[userID]; !ok {
		h.clients[userID] = make(map[*wsClient]struct{})
	}
	h.clients[userID][c] = struct{}{}
	total := len(h.clients[userID])
	h.mu.Unlock()

	h.logger.Debug("ws connected", zap.String("user_id", userID), zap.Int("connections", total))
	return c
}

func (h *Hub) unregister(c *wsClient) {
	h.mu.Lock()
	if conns, ok := h.clients[c.userID]; ok {
		if _, ok := conns[c]; ok {
			delete(conns, c)
			close(c.send)
		}
		if len(conns) == 0 {
			delete(h.clients, c.userID)
		}
	}
	h.mu.Unlock()

	h.logger.Debug("ws disconnected", zap.String("user_id", c.userID))
}

// Connections reports how many sockets a user has open on this instance.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Deliver queues payload to every socket of userID and returns how many took it.
// Slow sockets whose buffer is full are skipped.
func (h *Hub) Deliver(userID string, payload []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for c := range h.clients[userID] {
		select {
		case c.send <- payload:
			delivered++
		default:
			h.logger.Warn("ws send buffer full, dropping message", zap.String("user_id", userID))
		}
	}
	return delivered
}

// Serve pumps messages to conn until the peer goes away or ctx ends.
func (h *Hub) Serve(ctx context.Context, userID string, conn *websocket.Conn) {
	c := h.register(userID, conn)
	done := make(chan struct{})

	go h.writePump(ctx, c, done)

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.unregister(c)
	<-done
	_ = conn.Close()
}

func (h *Hub) writePump(ctx context.Context, c *wsClient, done chan<- struct{}) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		close(done)
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.logger.Warn("ws write failed", zap.String("user_id", c.userID), zap.Error(err))
				_ = c.conn.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.conn.Close()
				return
			}
		case <-ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(time.Second))
			_ = c.conn.Close()
			return
		}
	}
}

// Run subscribes to every user channel and forwards payloads until ctx ends.
func (h *Hub) Run(ctx context.Context, rdb *redis.Client) error {
	pubsub := rdb.PSubscribe(ctx, ChannelPrefix+"*")
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}
	h.logger.Info("realtime hub subscribed", zap.String("pattern", ChannelPrefix+"*"))

	h.Forward(ctx, pubsub.Channel())
	return nil
}

// Forward delivers messages from a Redis subscription channel.
func (h *Hub) Forward(ctx context.Context, ch <-chan *redis.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			userID := strings.TrimPrefix(msg.Channel, ChannelPrefix)
			if userID == "" || userID == msg.Channel {
				continue
			}
			h.Deliver(userID, []byte(msg.Payload))
		}
	}
}

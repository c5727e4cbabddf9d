package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

const (
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

type redisMessage struct {
	Origin string `json:"origin"` // hub instance id, to avoid echo
	UserID string `json:"userId"`
	Data   []byte `json:"data"`
}

// client serializes writes to one connection; gorilla allows a single writer.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(msgType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(msgType, data)
}

// room holds the open sessions of one user on this instance.
type room struct {
	logger *slog.Logger

	userID string
	origin string

	redisClient *redis.Client
	ctx         context.Context
	cancelRedis context.CancelFunc

	clients  map[*client]struct{}
	clientMu sync.RWMutex
	// closed is set together with the last client leaving; a closed room
	// never accepts clients again.
	closed bool

	onEmpty func(*room)
}

func newRoom(userID, origin string, redisClient *redis.Client, logger *slog.Logger) *room {
	ctx, cancel := context.WithCancel(context.Background())

	r := &room{
		logger:      logger,
		userID:      userID,
		origin:      origin,
		redisClient: redisClient,
		ctx:         ctx,
		cancelRedis: cancel,
		clients:     make(map[*client]struct{}),
	}

	if redisClient != nil {
		go r.subscribeToRedis()
	}

	return r
}

// addClient reports false when the room has already shut down.
func (r *room) addClient(conn *websocket.Conn) (*client, bool) {
	r.clientMu.Lock()
	defer r.clientMu.Unlock()
	if r.closed {
		return nil, false
	}
	c := &client{conn: conn}
	r.clients[c] = struct{}{}
	return c, true
}

func (r *room) clientCount() int {
	r.clientMu.RLock()
	defer r.clientMu.RUnlock()
	return len(r.clients)
}

// listen drains incoming frames until the peer goes away. Clients never send
// anything meaningful; reading is what surfaces pongs and close frames.
func (r *room) listen(c *client) {
	defer r.removeClient(c)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go r.ping(c, done)

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				r.logger.Error("WebSocket error", "userId", r.userID, "error", err)
			}
			return
		}
	}
}

func (r *room) ping(c *client, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (r *room) broadcastLocal(data []byte) {
	r.clientMu.RLock()
	targets := make([]*client, 0, len(r.clients))
	for c := range r.clients {
		targets = append(targets, c)
	}
	r.clientMu.RUnlock()

	for _, c := range targets {
		if err := c.write(websocket.TextMessage, data); err != nil {
			r.removeClient(c)
		}
	}
}

func (r *room) removeClient(c *client) {
	r.clientMu.Lock()
	if _, ok := r.clients[c]; !ok {
		r.clientMu.Unlock()
		return
	}
	delete(r.clients, c)
	empty := len(r.clients) == 0
	if empty {
		r.closed = true
	}
	onEmpty := r.onEmpty
	r.clientMu.Unlock()

	_ = c.conn.Close()

	if empty {
		r.cancelRedis()
		if onEmpty != nil {
			onEmpty(r)
		}
	}
}

func channelName(userID string) string {
	return "notes:" + userID
}

func publishToRedis(ctx context.Context, rc *redis.Client, origin, userID string, data []byte, logger *slog.Logger) {
	msgBytes, err := json.Marshal(redisMessage{Origin: origin, UserID: userID, Data: data})
	if err != nil {
		logger.Error("Failed to marshal Redis message", "error", err)
		return
	}
	if err := rc.Publish(ctx, channelName(userID), msgBytes).Err(); err != nil {
		logger.Error("Failed to publish to Redis", "userId", userID, "error", err)
	}
}

func (r *room) subscribeToRedis() {
	pubsub := r.redisClient.Subscribe(r.ctx, channelName(r.userID))
	defer pubsub.Close()

	ch := pubsub.Channel()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var m redisMessage
			if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
				r.logger.Error("Failed to unmarshal Redis message", "error", err)
				continue
			}
			// this instance already delivered its own events locally
			if m.Origin != r.origin {
				r.broadcastLocal(m.Data)
			}

		case <-r.ctx.Done():
			return
		}
	}
}

// Package live pushes note change events to a user's open websocket
// sessions, fanning out across server instances through Redis pub/sub when
// a Redis client is configured.
package live

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"notesboard/internal/utils"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
	EventBulk    = "bulk"
)

type Event struct {
	Type      string      `json:"type"`
	NoteIDs   []string    `json:"noteIds"`
	Note      *utils.Note `json:"note,omitempty"`
	Operation string      `json:"operation,omitempty"`
}

type Hub struct {
	logger      *slog.Logger
	redisClient *redis.Client
	id          string
	upgrader    websocket.Upgrader

	rooms  map[string]*room
	roomMu sync.RWMutex
}

// NewHub builds a hub; redisClient may be nil for single-instance setups.
// checkOrigin may be nil to accept same-origin requests only.
func NewHub(redisClient *redis.Client, logger *slog.Logger, checkOrigin func(*http.Request) bool) *Hub {
	return &Hub{
		logger:      logger,
		redisClient: redisClient,
		id:          utils.NewID(),
		upgrader:    websocket.Upgrader{CheckOrigin: checkOrigin},
		rooms:       make(map[string]*room),
	}
}

// ServeUser upgrades the request and attaches the connection to userID's room.
func (h *Hub) ServeUser(w http.ResponseWriter, r *http.Request, userID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("websocket upgrade: %w", err)
	}
	h.join(userID, conn)
	return nil
}

func (h *Hub) join(userID string, conn *websocket.Conn) {
	h.roomMu.Lock()
	rm, exists := h.rooms[userID]
	var c *client
	if exists {
		c, exists = rm.addClient(conn)
	}
	if !exists {
		// either no room yet or one that emptied and has not been removed
		rm = newRoom(userID, h.id, h.redisClient, h.logger)
		rm.onEmpty = h.removeRoom
		h.rooms[userID] = rm
		c, _ = rm.addClient(conn)
		h.logger.Debug("Created new room", "userId", userID)
	}
	h.roomMu.Unlock()

	go rm.listen(c)
}

// removeRoom unmaps rm if it is still the user's current room.
func (h *Hub) removeRoom(rm *room) {
	h.roomMu.Lock()
	defer h.roomMu.Unlock()

	if h.rooms[rm.userID] == rm {
		delete(h.rooms, rm.userID)
		h.logger.Debug("Removed empty room", "userId", rm.userID)
	}
}

// Publish delivers ev to userID's sessions here and on every other instance.
func (h *Hub) Publish(ctx context.Context, userID string, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("Failed to marshal event", "error", err)
		return
	}

	h.roomMu.RLock()
	rm := h.rooms[userID]
	h.roomMu.RUnlock()
	if rm != nil {
		rm.broadcastLocal(data)
	}

	if h.redisClient != nil {
		publishToRedis(ctx, h.redisClient, h.id, userID, data, h.logger)
	}
}

func (h *Hub) ClientCount(userID string) int {
	h.roomMu.RLock()
	rm := h.rooms[userID]
	h.roomMu.RUnlock()
	if rm == nil {
		return 0
	}
	return rm.clientCount()
}

func (h *Hub) RoomCount() int {
	h.roomMu.RLock()
	defer h.roomMu.RUnlock()
	return len(h.rooms)
}

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
)

const (
	LiveCreated = "created"
	LiveUpdated = "updated"
	LiveDeleted = "deleted"
	LiveBulk    = "bulk"
)

// LiveEvent is a note change pushed by the server.
type LiveEvent struct {
	Type      string   `json:"type"`
	NoteIDs   []string `json:"noteIds"`
	Note      *Note    `json:"note,omitempty"`
	Operation string   `json:"operation,omitempty"`
}

// Watch streams the session's live note events into fn until ctx ends or
// the connection drops.
func (a *API) Watch(ctx context.Context, fn func(LiveEvent)) error {
	u := *a.base
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path += "/api/notes/live"

	dialer := websocket.Dialer{Jar: a.jar, HandshakeTimeout: a.http.Timeout}
	conn, resp, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			return &APIError{Status: resp.StatusCode, Message: resp.Status}
		}
		return fmt.Errorf("dial live: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read live: %w", err)
		}
		var ev LiveEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			continue
		}
		fn(ev)
	}
}

// Follow keeps the controller in sync with events from other sessions,
// refetching when an event cannot be applied locally.
func (c *Notes) Follow(ctx context.Context, a *API) error {
	err := a.Watch(ctx, func(ev LiveEvent) {
		if c.ApplyEvent(ev) {
			_ = c.Fetch(ctx)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

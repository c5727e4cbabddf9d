package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStubServer(t *testing.T) (*API, *http.ServeMux) {
	t.Helper()
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	api, err := NewAPI(srv.URL + "/")
	require.NoError(t, err)
	return api, mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewAPI(t *testing.T) {
	_, err := NewAPI("ftp://example.com")
	assert.Error(t, err)

	api, err := NewAPI("https://notes.example:8443/")
	require.NoError(t, err)
	assert.Equal(t, "https://notes.example:8443", api.Origin())
}

func TestAPISessionCookie(t *testing.T) {
	api, mux := newStubServer(t)
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var c Credentials
		_ = json.NewDecoder(r.Body).Decode(&c)
		http.SetCookie(w, &http.Cookie{Name: "token", Value: "abc", Path: "/", HttpOnly: true})
		writeJSON(w, http.StatusOK, map[string]any{"message": "Login successful", "user": User{ID: "u1", Email: c.Email}})
	})
	mux.HandleFunc("GET /api/notes", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("token"); err != nil || c.Value != "abc" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"notes": []map[string]any{
			{"id": "n1", "title": "T", "content": nil, "tags": []string{}, "priority": nil, "workspace": "default"},
		}})
	})

	ctx := context.Background()
	_, err := api.ListNotes(ctx)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Unauthorized", apiErr.Message)

	u, err := api.Login(ctx, Credentials{Email: "ada@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)

	notes, err := api.ListNotes(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "n1", notes[0].ID)
	assert.Empty(t, notes[0].Content)
}

func TestAPIErrors(t *testing.T) {
	api, mux := newStubServer(t)
	mux.HandleFunc("DELETE /api/notes", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Note not found: " + r.URL.Query().Get("id")})
	})
	mux.HandleFunc("POST /api/notes/bulk", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	err := api.DeleteNote(context.Background(), "a b&c")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Note not found: a b&c", apiErr.Message)

	err = api.BulkNotes(context.Background(), []string{"a"}, BulkArchive)
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestAPIRequestBodies(t *testing.T) {
	api, mux := newStubServer(t)
	var gotUpdate map[string]any
	var gotBulk map[string]any
	mux.HandleFunc("PUT /api/notes", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotUpdate)
		writeJSON(w, http.StatusOK, map[string]any{"note": Note{ID: "n1", IsPinned: true}})
	})
	mux.HandleFunc("POST /api/notes/bulk", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBulk)
		writeJSON(w, http.StatusOK, map[string]any{"message": "1 notes archived", "updatedCount": 1})
	})

	n, err := api.UpdateNote(context.Background(), NoteInput{NoteID: "n1", IsPinned: ptr(true)})
	require.NoError(t, err)
	assert.True(t, n.IsPinned)
	assert.Equal(t, map[string]any{"noteId": "n1", "isPinned": true}, gotUpdate)

	require.NoError(t, api.BulkNotes(context.Background(), []string{"n1"}, BulkArchive))
	assert.Equal(t, map[string]any{"noteIds": []any{"n1"}, "operation": "archive"}, gotBulk)
}

func TestWatch(t *testing.T) {
	api, mux := newStubServer(t)
	upgrader := websocket.Upgrader{}
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "token", Value: "abc", Path: "/"})
		writeJSON(w, http.StatusOK, map[string]any{"user": User{ID: "u1"}})
	})
	mux.HandleFunc("GET /api/notes/live", func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("token"); err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteJSON(LiveEvent{Type: LiveDeleted, NoteIDs: []string{"n1"}})
		_ = conn.WriteMessage(websocket.TextMessage, []byte("not json"))
		_ = conn.WriteJSON(LiveEvent{Type: LiveBulk, NoteIDs: []string{"n2"}, Operation: "archive"})
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_, _, _ = conn.ReadMessage()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := api.Watch(ctx, func(LiveEvent) {})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	_, err = api.Login(ctx, Credentials{})
	require.NoError(t, err)

	var got []LiveEvent
	require.NoError(t, api.Watch(ctx, func(ev LiveEvent) { got = append(got, ev) }))
	require.Len(t, got, 2, "undecodable frames are skipped")
	assert.Equal(t, LiveDeleted, got[0].Type)
	assert.Equal(t, "archive", got[1].Operation)
}

func TestFollowApplies(t *testing.T) {
	api, mux := newStubServer(t)
	upgrader := websocket.Upgrader{}
	mux.HandleFunc("GET /api/notes/live", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteJSON(LiveEvent{Type: LiveDeleted, NoteIDs: []string{"a"}})
		_ = conn.WriteJSON(LiveEvent{Type: "mystery"})
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_, _, _ = conn.ReadMessage()
	})

	h := newHarness(t, twoNotes()...)
	h.api.notes = h.api.notes[1:]
	require.NoError(t, h.notes.Follow(context.Background(), api))
	assert.Equal(t, []string{"b"}, ids(h.state().Notes))
	assert.Equal(t, 2, h.api.lists, "the unknown event triggers a refetch")
}

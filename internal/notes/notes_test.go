package notes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"notesboard/internal/auth"
	"notesboard/internal/database"
	"notesboard/internal/database/databasetest"
	"notesboard/internal/live"
	"notesboard/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	userID string
	event  live.Event
}

type fakeEvents struct {
	mu     sync.Mutex
	events []published
}

func (f *fakeEvents) Publish(_ context.Context, userID string, ev live.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, published{userID: userID, event: ev})
}

func (f *fakeEvents) ServeUser(w http.ResponseWriter, _ *http.Request, userID string) error {
	w.WriteHeader(http.StatusSwitchingProtocols)
	return nil
}

func (f *fakeEvents) last() published {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events[len(f.events)-1]
}

type testEnv struct {
	router *gin.Engine
	store  *database.Store
	tokens *auth.Tokens
	events *fakeEvents
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		store:  databasetest.NewStore(t),
		tokens: auth.NewTokens([]byte("test-secret")),
		events: &fakeEvents{},
	}
	h := NewHandler(env.store, slog.New(slog.NewTextHandler(io.Discard, nil)), env.events)

	r := gin.New()
	g := r.Group("/api/notes", auth.MiddleWare(env.tokens))
	g.GET("", h.List)
	g.POST("", h.Create)
	g.PUT("", h.Update)
	g.DELETE("", h.Delete)
	g.POST("/bulk", h.Bulk)
	g.GET("/stats", h.Stats)
	g.GET("/live", h.Live)
	g.GET("/:id", h.Get)
	env.router = r
	return env
}

// user creates an account and returns a cookie authenticating as it.
func (e *testEnv) user(t *testing.T, email string) (*utils.User, *http.Cookie) {
	t.Helper()
	u := &utils.User{FirstName: "Ada", LastName: "Lovelace", Email: email, Password: "hash"}
	require.NoError(t, e.store.CreateUser(context.Background(), u))
	token, err := e.tokens.Sign(auth.Identity{UserID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName})
	require.NoError(t, err)
	return u, &http.Cookie{Name: auth.CookieName, Value: token}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, cookie *http.Cookie) (int, map[string]any) {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func (e *testEnv) create(t *testing.T, cookie *http.Cookie, body map[string]any) map[string]any {
	t.Helper()
	code, out := e.do(t, http.MethodPost, "/api/notes", body, cookie)
	require.Equal(t, http.StatusCreated, code, out)
	return out["note"].(map[string]any)
}

func TestRequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	code, out := env.do(t, http.MethodGet, "/api/notes", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Unauthorized", out["error"])

	code, out = env.do(t, http.MethodGet, "/api/notes", nil, &http.Cookie{Name: auth.CookieName, Value: "forged"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid or expired token", out["error"])
}

func TestCreateNote(t *testing.T) {
	env := newTestEnv(t)
	u, cookie := env.user(t, "ada@example.com")

	note := env.create(t, cookie, map[string]any{
		"title":    "Groceries",
		"content":  "milk",
		"tags":     []string{"home"},
		"priority": "high",
		"dueDate":  "2025-06-01",
		"isPinned": true,
	})
	assert.Equal(t, "Groceries", note["title"])
	assert.Equal(t, "default", note["workspace"])
	assert.Equal(t, "high", note["priority"])
	assert.Equal(t, true, note["isPinned"])
	assert.Equal(t, false, note["isArchived"])
	assert.Equal(t, []any{"home"}, note["tags"])
	assert.Equal(t, "2025-06-01T00:00:00Z", note["dueDate"])
	assert.Equal(t, u.ID, note["userId"])

	last := env.events.last()
	assert.Equal(t, u.ID, last.userID)
	assert.Equal(t, live.EventCreated, last.event.Type)
	assert.Equal(t, []string{note["id"].(string)}, last.event.NoteIDs)

	bare := env.create(t, cookie, map[string]any{"title": "Bare", "workspace": "work"})
	assert.Equal(t, []any{}, bare["tags"])
	assert.Equal(t, "work", bare["workspace"])
	assert.Nil(t, bare["category"])
	assert.Nil(t, bare["dueDate"])
}

func TestCreateNoteValidation(t *testing.T) {
	env := newTestEnv(t)
	_, cookie := env.user(t, "ada@example.com")

	tests := []struct {
		name string
		body any
		want string
	}{
		{"missing title", map[string]any{"content": "x"}, "Title is required"},
		{"bad priority", map[string]any{"title": "x", "priority": "someday"}, "Priority must be one of low, medium, high, urgent"},
		{"bad due date", map[string]any{"title": "x", "dueDate": "next tuesday"}, "Invalid due date"},
		{"malformed body", "{", utils.InvalidBodyMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out := env.do(t, http.MethodPost, "/api/notes", tt.body, cookie)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, tt.want, out["error"])
		})
	}
}

func TestListAndGetAreScoped(t *testing.T) {
	env := newTestEnv(t)
	_, ada := env.user(t, "ada@example.com")
	_, grace := env.user(t, "grace@example.com")

	mine := env.create(t, ada, map[string]any{"title": "mine"})
	pinned := env.create(t, ada, map[string]any{"title": "pinned", "isPinned": true})
	theirs := env.create(t, grace, map[string]any{"title": "theirs"})

	code, out := env.do(t, http.MethodGet, "/api/notes", nil, ada)
	require.Equal(t, http.StatusOK, code)
	list := out["notes"].([]any)
	require.Len(t, list, 2)
	assert.Equal(t, pinned["id"], list[0].(map[string]any)["id"])
	assert.Equal(t, mine["id"], list[1].(map[string]any)["id"])

	code, out = env.do(t, http.MethodGet, "/api/notes/"+mine["id"].(string), nil, ada)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "mine", out["note"].(map[string]any)["title"])

	code, out = env.do(t, http.MethodGet, "/api/notes/"+theirs["id"].(string), nil, ada)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Note not found", out["error"])
}

func TestUpdateNote(t *testing.T) {
	env := newTestEnv(t)
	_, ada := env.user(t, "ada@example.com")
	_, grace := env.user(t, "grace@example.com")
	note := env.create(t, ada, map[string]any{"title": "draft", "content": "body", "dueDate": "2025-06-01", "category": "work"})
	id := note["id"].(string)

	code, out := env.do(t, http.MethodPut, "/api/notes", map[string]any{
		"noteId":   id,
		"title":    "final",
		"tags":     []string{"a", "b"},
		"dueDate":  "",
		"category": "",
	}, ada)
	require.Equal(t, http.StatusOK, code, out)
	updated := out["note"].(map[string]any)
	assert.Equal(t, "final", updated["title"])
	assert.Equal(t, "body", updated["content"])
	assert.Equal(t, []any{"a", "b"}, updated["tags"])
	assert.Nil(t, updated["dueDate"])
	assert.Nil(t, updated["category"])
	assert.Equal(t, live.EventUpdated, env.events.last().event.Type)

	tests := []struct {
		name   string
		body   any
		cookie *http.Cookie
		code   int
		want   string
	}{
		{"missing id", map[string]any{"title": "x"}, ada, http.StatusBadRequest, "Note ID is required"},
		{"missing id beats validation", map[string]any{"priority": "nope"}, ada, http.StatusBadRequest, "Note ID is required"},
		{"bad priority", map[string]any{"noteId": id, "priority": "nope"}, ada, http.StatusBadRequest, "Priority must be one of low, medium, high, urgent"},
		{"empty title", map[string]any{"noteId": id, "title": ""}, ada, http.StatusBadRequest, "Title is required"},
		{"bad due date", map[string]any{"noteId": id, "dueDate": "soon"}, ada, http.StatusBadRequest, "Invalid due date"},
		{"malformed body", "[", ada, http.StatusBadRequest, utils.InvalidBodyMessage},
		{"unknown note", map[string]any{"noteId": "missing", "title": "x"}, ada, http.StatusNotFound, "Note not found"},
		{"someone else's note", map[string]any{"noteId": id, "title": "x"}, grace, http.StatusNotFound, "Note not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out := env.do(t, http.MethodPut, "/api/notes", tt.body, tt.cookie)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.want, out["error"])
		})
	}
}

func TestDeleteNote(t *testing.T) {
	env := newTestEnv(t)
	_, ada := env.user(t, "ada@example.com")
	note := env.create(t, ada, map[string]any{"title": "gone"})
	id := note["id"].(string)

	code, out := env.do(t, http.MethodDelete, "/api/notes", nil, ada)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Note ID is required", out["error"])

	code, out = env.do(t, http.MethodDelete, "/api/notes?id="+id, nil, ada)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Note deleted successfully", out["message"])
	last := env.events.last()
	assert.Equal(t, live.EventDeleted, last.event.Type)
	assert.Equal(t, []string{id}, last.event.NoteIDs)

	code, out = env.do(t, http.MethodDelete, "/api/notes?id="+id, nil, ada)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Note not found", out["error"])
}

func TestBulk(t *testing.T) {
	env := newTestEnv(t)
	u, ada := env.user(t, "ada@example.com")
	_, grace := env.user(t, "grace@example.com")

	var ids []string
	for _, title := range []string{"a", "b", "c"} {
		ids = append(ids, env.create(t, ada, map[string]any{"title": title})["id"].(string))
	}
	foreign := env.create(t, grace, map[string]any{"title": "x"})["id"].(string)

	code, out := env.do(t, http.MethodPost, "/api/notes/bulk", map[string]any{
		"noteIds":   []string{ids[0], ids[1], ids[0]},
		"operation": OpArchive,
	}, ada)
	require.Equal(t, http.StatusOK, code, out)
	assert.Equal(t, "2 notes archived", out["message"])
	assert.Equal(t, float64(2), out["updatedCount"])
	last := env.events.last()
	assert.Equal(t, live.EventBulk, last.event.Type)
	assert.Equal(t, OpArchive, last.event.Operation)
	assert.Equal(t, []string{ids[0], ids[1]}, last.event.NoteIDs)

	code, out = env.do(t, http.MethodPost, "/api/notes/bulk", map[string]any{
		"noteIds":   ids,
		"operation": OpUpdateWorkspace,
		"data":      map[string]any{"workspace": "work"},
	}, ada)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "3 notes moved to workspace: work", out["message"])

	code, out = env.do(t, http.MethodPost, "/api/notes/bulk", map[string]any{
		"noteIds":   ids[:1],
		"operation": OpUpdateCategory,
		"data":      map[string]any{"category": "ideas"},
	}, ada)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "1 notes updated to category: ideas", out["message"])

	note, err := env.store.FindNote(context.Background(), u.ID, ids[0])
	require.NoError(t, err)
	assert.True(t, note.IsArchived)
	assert.Equal(t, "work", note.Workspace)
	require.NotNil(t, note.Category)
	assert.Equal(t, "ideas", *note.Category)

	tests := []struct {
		name string
		body map[string]any
		code int
		want string
	}{
		{"no ids", map[string]any{"noteIds": []string{}, "operation": OpArchive}, http.StatusBadRequest, "At least one note ID is required"},
		{"unknown operation", map[string]any{"noteIds": ids, "operation": "shred"}, http.StatusBadRequest, "Invalid operation"},
		{"workspace missing", map[string]any{"noteIds": ids, "operation": OpUpdateWorkspace}, http.StatusBadRequest, "Workspace is required for updateWorkspace operation"},
		{"category missing", map[string]any{"noteIds": ids, "operation": OpUpdateCategory, "data": map[string]any{}}, http.StatusBadRequest, "Category is required for updateCategory operation"},
		{"foreign id", map[string]any{"noteIds": []string{ids[0], foreign}, "operation": OpDelete}, http.StatusNotFound, "Some notes not found or don't belong to user"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out := env.do(t, http.MethodPost, "/api/notes/bulk", tt.body, ada)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.want, out["error"])
		})
	}

	// the rejected delete above must not have touched the owned note
	_, err = env.store.FindNote(context.Background(), u.ID, ids[0])
	require.NoError(t, err)

	code, out = env.do(t, http.MethodPost, "/api/notes/bulk", map[string]any{
		"noteIds":   ids,
		"operation": OpDelete,
	}, ada)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "3 notes deleted", out["message"])
	assert.Equal(t, float64(3), out["deletedCount"])
}

func TestBulkLeavesOtherNotesAlone(t *testing.T) {
	env := newTestEnv(t)
	u, ada := env.user(t, "ada@example.com")
	ctx := context.Background()

	var ids []string
	for _, title := range []string{"a", "b", "c"} {
		ids = append(ids, env.create(t, ada, map[string]any{"title": title})["id"].(string))
	}
	keep := env.create(t, ada, map[string]any{"title": "d", "isPinned": true, "workspace": "personal"})["id"].(string)

	for _, op := range []string{OpArchive, OpDelete} {
		code, out := env.do(t, http.MethodPost, "/api/notes/bulk", map[string]any{"noteIds": ids, "operation": op}, ada)
		require.Equal(t, http.StatusOK, code, out)

		note, err := env.store.FindNote(ctx, u.ID, keep)
		require.NoError(t, err, op)
		assert.False(t, note.IsArchived, op)
		assert.True(t, note.IsPinned, op)
		assert.Equal(t, "personal", note.Workspace, op)
	}

	left, err := env.store.ListNotes(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, keep, left[0].ID)
}

func TestStats(t *testing.T) {
	env := newTestEnv(t)
	_, ada := env.user(t, "ada@example.com")
	env.create(t, ada, map[string]any{"title": "a", "category": "work", "isPinned": true})
	env.create(t, ada, map[string]any{"title": "b", "category": "work"})
	env.create(t, ada, map[string]any{"title": "c"})

	code, out := env.do(t, http.MethodGet, "/api/notes/stats", nil, ada)
	require.Equal(t, http.StatusOK, code)
	stats := out["stats"].(map[string]any)
	assert.Equal(t, float64(3), stats["totalNotes"])
	assert.Equal(t, float64(1), stats["pinnedNotes"])
	assert.Equal(t, float64(1), stats["categoriesCount"])
	assert.Equal(t, map[string]any{"work": float64(2), "Uncategorized": float64(1)}, stats["notesByCategory"])
	assert.Len(t, stats["recentNotes"], 3)
}

func TestComputeStatsRecentLimit(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var notes []utils.Note
	for i := 0; i < 7; i++ {
		notes = append(notes, utils.Note{ID: string(rune('a' + i)), UpdatedAt: base.Add(time.Duration(i) * time.Hour)})
	}
	st := computeStats(notes)
	require.Len(t, st.RecentNotes, 5)
	assert.Equal(t, "g", st.RecentNotes[0].ID)
	assert.Equal(t, "c", st.RecentNotes[4].ID)
	assert.Equal(t, map[string]int{"Uncategorized": 7}, st.NotesByCategory)
	assert.Zero(t, st.CategoriesCount)

	empty := computeStats(nil)
	assert.Empty(t, empty.RecentNotes)
	assert.NotNil(t, empty.RecentNotes)
}

func TestLiveDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := auth.NewTokens([]byte("secret"))
	h := NewHandler(databasetest.NewStore(t), slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	r := gin.New()
	r.GET("/live", auth.MiddleWare(tokens), h.Live)

	token, err := tokens.Sign(auth.Identity{UserID: "u", Email: "e@x.y", FirstName: "a", LastName: "b"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Live updates are disabled"}`, rec.Body.String())
}

func TestParseDueDate(t *testing.T) {
	got, err := parseDueDate("2025-06-01T10:30:00.000+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC), *got)

	got, err = parseDueDate("2025-06-01T10:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC), *got)

	got, err = parseDueDate("  ")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = parseDueDate("06/01/2025")
	assert.ErrorIs(t, err, errInvalidDueDate)
}

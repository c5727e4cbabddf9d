package notes

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"notesboard/internal/auth"
	"notesboard/internal/database"
	"notesboard/internal/live"
	"notesboard/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

// Events receives a notification after every successful mutation.
type Events interface {
	Publish(ctx context.Context, userID string, ev live.Event)
	ServeUser(w http.ResponseWriter, r *http.Request, userID string) error
}

type Handler struct {
	store  *database.Store
	logger *slog.Logger
	events Events
}

func NewHandler(store *database.Store, logger *slog.Logger, events Events) *Handler {
	return &Handler{
		store:  store,
		logger: logger,
		events: events,
	}
}

var errInvalidDueDate = errors.New("invalid due date")

type CreateNoteRequest struct {
	Title      string   `json:"title" binding:"required"`
	Content    *string  `json:"content"`
	Category   *string  `json:"category"`
	Tags       []string `json:"tags"`
	Priority   *string  `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	DueDate    *string  `json:"dueDate"`
	IsPinned   *bool    `json:"isPinned"`
	IsArchived *bool    `json:"isArchived"`
	Workspace  *string  `json:"workspace"`
}

func (CreateNoteRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"Title.required": "Title is required",
		"Priority.oneof": "Priority must be one of low, medium, high, urgent",
	}
}

type UpdateNoteRequest struct {
	NoteID     string   `json:"noteId"`
	Title      *string  `json:"title"`
	Content    *string  `json:"content"`
	Category   *string  `json:"category"`
	Tags       []string `json:"tags"`
	Priority   *string  `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	DueDate    *string  `json:"dueDate"`
	IsPinned   *bool    `json:"isPinned"`
	IsArchived *bool    `json:"isArchived"`
	Workspace  *string  `json:"workspace"`
}

func (UpdateNoteRequest) ValidationMessages() map[string]string {
	return CreateNoteRequest{}.ValidationMessages()
}

// parseDueDate accepts full timestamps and bare calendar dates. An empty
// string yields nil.
func parseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, errInvalidDueDate
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func (h *Handler) internalError(ctx *gin.Context, msg string, err error) {
	h.logger.Error(msg, "path", ctx.FullPath(), "error", err)
	ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

func (h *Handler) publish(ctx *gin.Context, userID string, ev live.Event) {
	if h.events == nil {
		return
	}
	h.events.Publish(ctx.Request.Context(), userID, ev)
}

func (h *Handler) List(ctx *gin.Context) {
	id, _ := auth.CurrentUser(ctx)
	notes, err := h.store.ListNotes(ctx, id.UserID)
	if err != nil {
		h.internalError(ctx, "Error fetching notes", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"notes": notes})
}

func (h *Handler) Get(ctx *gin.Context) {
	id, _ := auth.CurrentUser(ctx)
	noteID := ctx.Param("id")
	if noteID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Note ID is required"})
		return
	}

	note, err := h.store.FindNote(ctx, id.UserID, noteID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Note not found"})
			return
		}
		h.internalError(ctx, "Error fetching note", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"note": note})
}

func (h *Handler) Create(ctx *gin.Context) {
	id, _ := auth.CurrentUser(ctx)

	var req CreateNoteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": utils.ValidationMessage(err, req)})
		return
	}
	dueDate, err := parseDueDate(deref(req.DueDate))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid due date"})
		return
	}

	note := utils.Note{
		UserID:    id.UserID,
		Title:     req.Title,
		Content:   req.Content,
		Category:  emptyToNil(req.Category),
		Tags:      req.Tags,
		Priority:  emptyToNil(req.Priority),
		DueDate:   dueDate,
		Workspace: utils.DefaultWorkspace,
	}
	if req.IsPinned != nil {
		note.IsPinned = *req.IsPinned
	}
	if req.IsArchived != nil {
		note.IsArchived = *req.IsArchived
	}
	if ws := deref(req.Workspace); ws != "" {
		note.Workspace = ws
	}

	if err := h.store.CreateNote(ctx, &note); err != nil {
		h.internalError(ctx, "Error creating note", err)
		return
	}

	h.publish(ctx, id.UserID, live.Event{Type: live.EventCreated, NoteIDs: []string{note.ID}, Note: &note})
	ctx.JSON(http.StatusCreated, gin.H{"note": note})
}

// updateFields turns the present members of req into column updates.
func (req UpdateNoteRequest) updateFields() (map[string]any, error) {
	fields := make(map[string]any)
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Content != nil {
		fields["content"] = *req.Content
	}
	if req.Category != nil {
		fields["category"] = emptyToNil(req.Category)
	}
	if req.Tags != nil {
		fields["tags"] = datatypes.JSONSlice[string](req.Tags)
	}
	if req.Priority != nil {
		fields["priority"] = emptyToNil(req.Priority)
	}
	if req.DueDate != nil {
		dueDate, err := parseDueDate(*req.DueDate)
		if err != nil {
			return nil, err
		}
		fields["due_date"] = dueDate
	}
	if req.IsPinned != nil {
		fields["is_pinned"] = *req.IsPinned
	}
	if req.IsArchived != nil {
		fields["is_archived"] = *req.IsArchived
	}
	if ws := deref(req.Workspace); ws != "" {
		fields["workspace"] = ws
	}
	return fields, nil
}

func (h *Handler) Update(ctx *gin.Context) {
	id, _ := auth.CurrentUser(ctx)

	var req UpdateNoteRequest
	err := ctx.ShouldBindJSON(&req)
	if err != nil && !utils.IsValidationError(err) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": utils.InvalidBodyMessage})
		return
	}
	if req.NoteID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Note ID is required"})
		return
	}
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": utils.ValidationMessage(err, req)})
		return
	}
	if req.Title != nil && *req.Title == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	fields, err := req.updateFields()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid due date"})
		return
	}

	note, err := h.store.UpdateNote(ctx, id.UserID, req.NoteID, fields)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Note not found"})
			return
		}
		h.internalError(ctx, "Error updating note", err)
		return
	}

	h.publish(ctx, id.UserID, live.Event{Type: live.EventUpdated, NoteIDs: []string{note.ID}, Note: note})
	ctx.JSON(http.StatusOK, gin.H{"note": note})
}

func (h *Handler) Delete(ctx *gin.Context) {
	id, _ := auth.CurrentUser(ctx)
	noteID := ctx.Query("id")
	if noteID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Note ID is required"})
		return
	}

	if err := h.store.DeleteNote(ctx, id.UserID, noteID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Note not found"})
			return
		}
		h.internalError(ctx, "Error deleting note", err)
		return
	}

	h.publish(ctx, id.UserID, live.Event{Type: live.EventDeleted, NoteIDs: []string{noteID}})
	ctx.JSON(http.StatusOK, gin.H{"message": "Note deleted successfully"})
}

// Live upgrades the request to a websocket that receives the caller's note events.
func (h *Handler) Live(ctx *gin.Context) {
	id, _ := auth.CurrentUser(ctx)
	if h.events == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Live updates are disabled"})
		return
	}
	if err := h.events.ServeUser(ctx.Writer, ctx.Request, id.UserID); err != nil {
		// the upgrader has already answered the request
		h.logger.Warn("Live connection rejected", "userId", id.UserID, "error", err)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

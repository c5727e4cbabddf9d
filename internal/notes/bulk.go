package notes

import (
	"fmt"
	"net/http"

	"notesboard/internal/auth"
	"notesboard/internal/live"
	"notesboard/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	OpArchive         = "archive"
	OpUnarchive       = "unarchive"
	OpDelete          = "delete"
	OpUpdateWorkspace = "updateWorkspace"
	OpUpdateCategory  = "updateCategory"
)

type BulkData struct {
	Workspace string `json:"workspace"`
	Category  string `json:"category"`
}

type BulkRequest struct {
	NoteIDs   []string  `json:"noteIds" binding:"required,min=1"`
	Operation string    `json:"operation" binding:"required,oneof=archive unarchive delete updateWorkspace updateCategory"`
	Data      *BulkData `json:"data"`
}

func (BulkRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"NoteIDs.required":   "At least one note ID is required",
		"NoteIDs.min":        "At least one note ID is required",
		"Operation.required": "Invalid operation",
		"Operation.oneof":    "Invalid operation",
	}
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Bulk applies one operation to a batch of the caller's notes. The batch is
// rejected as a whole if any id is not owned by the caller.
func (h *Handler) Bulk(ctx *gin.Context) {
	id, _ := auth.CurrentUser(ctx)

	var req BulkRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": utils.ValidationMessage(err, req)})
		return
	}
	var data BulkData
	if req.Data != nil {
		data = *req.Data
	}

	var fields map[string]any
	var message string
	ids := uniqueIDs(req.NoteIDs)
	n := len(ids)

	switch req.Operation {
	case OpArchive:
		fields = map[string]any{"is_archived": true}
		message = fmt.Sprintf("%d notes archived", n)
	case OpUnarchive:
		fields = map[string]any{"is_archived": false}
		message = fmt.Sprintf("%d notes unarchived", n)
	case OpUpdateWorkspace:
		if data.Workspace == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Workspace is required for updateWorkspace operation"})
			return
		}
		fields = map[string]any{"workspace": data.Workspace}
		message = fmt.Sprintf("%d notes moved to workspace: %s", n, data.Workspace)
	case OpUpdateCategory:
		if data.Category == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Category is required for updateCategory operation"})
			return
		}
		fields = map[string]any{"category": data.Category}
		message = fmt.Sprintf("%d notes updated to category: %s", n, data.Category)
	}

	owned, err := h.store.CountOwnedNotes(ctx, id.UserID, ids)
	if err != nil {
		h.internalError(ctx, "Error performing bulk operation", err)
		return
	}
	if owned != int64(n) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Some notes not found or don't belong to user"})
		return
	}

	ev := live.Event{Type: live.EventBulk, NoteIDs: ids, Operation: req.Operation}

	if req.Operation == OpDelete {
		if _, err := h.store.DeleteNotes(ctx, id.UserID, ids); err != nil {
			h.internalError(ctx, "Error performing bulk operation", err)
			return
		}
		h.publish(ctx, id.UserID, ev)
		ctx.JSON(http.StatusOK, gin.H{
			"message":      fmt.Sprintf("%d notes deleted", n),
			"deletedCount": n,
		})
		return
	}

	updated, err := h.store.UpdateNotes(ctx, id.UserID, ids, fields)
	if err != nil {
		h.internalError(ctx, "Error performing bulk operation", err)
		return
	}
	h.publish(ctx, id.UserID, ev)
	ctx.JSON(http.StatusOK, gin.H{
		"message":      message,
		"updatedCount": updated,
	})
}

package notes

import (
	"net/http"
	"sort"

	"notesboard/internal/auth"
	"notesboard/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	recentNotesLimit = 5
	uncategorized    = "Uncategorized"
)

type Stats struct {
	TotalNotes      int            `json:"totalNotes"`
	PinnedNotes     int            `json:"pinnedNotes"`
	CategoriesCount int            `json:"categoriesCount"`
	NotesByCategory map[string]int `json:"notesByCategory"`
	RecentNotes     []utils.Note   `json:"recentNotes"`
}

func computeStats(notes []utils.Note) Stats {
	st := Stats{
		TotalNotes:      len(notes),
		NotesByCategory: make(map[string]int),
	}
	categories := make(map[string]struct{})
	for _, n := range notes {
		if n.IsPinned {
			st.PinnedNotes++
		}
		name := uncategorized
		if n.Category != nil && *n.Category != "" {
			name = *n.Category
			categories[name] = struct{}{}
		}
		st.NotesByCategory[name]++
	}
	st.CategoriesCount = len(categories)

	recent := make([]utils.Note, len(notes))
	copy(recent, notes)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].UpdatedAt.After(recent[j].UpdatedAt)
	})
	if len(recent) > recentNotesLimit {
		recent = recent[:recentNotesLimit]
	}
	st.RecentNotes = recent
	return st
}

func (h *Handler) Stats(ctx *gin.Context) {
	id, _ := auth.CurrentUser(ctx)
	notes, err := h.store.ListNotes(ctx, id.UserID)
	if err != nil {
		h.internalError(ctx, "Error fetching stats", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"stats": computeStats(notes)})
}

package client

import (
	"slices"
	"time"
)

// Action is a synchronous input event consumed by Notes.Dispatch.
type Action interface {
	action()
}

type (
	SetSearch        struct{ Term string }
	SetSelectedTags  struct{ Tags []string }
	ToggleTagFilter  struct{ Tag string }
	SetDateRange     struct{ Range DateRange }
	SetArchiveView   struct{ Archived bool }
	SetWorkspace     struct{ ID string }
	SetViewMode      struct{ Mode ViewMode }
	SetSort          struct{ Key SortKey }
	ToggleSelect     struct{ ID string }
	SetSelection     struct{ IDs []string }
	OpenCreate       struct{}
	OpenEdit         struct{ ID string }
	CloseModal       struct{}
	SetTitle         struct{ Value string }
	SetContent       struct{ Value string }
	SetPinned        struct{ Value bool }
	SetPriority      struct{ Value Priority }
	SetDueDate       struct{ Value *time.Time }
	SetFormWorkspace struct{ ID string }
	TagKeyPress      struct{ Key string }
	TagInputChange   struct{ Value string }
	AddTag           struct{}
	RemoveTag        struct{ Tag string }
	SetQuickCreate   struct{ Open bool }
	SetQuickTitle    struct{ Value string }
	ShowQuickActions struct{ ID string }
	OpenShare        struct{ ID string }
	CloseShare       struct{}
	DragStart        struct{ ID string }
	DragOver         struct{ ID string }
	DragLeave        struct{}
	DragEnd          struct{}
	Drop             struct{ TargetID string }
)

func (SetSearch) action()        {}
func (SetSelectedTags) action()  {}
func (ToggleTagFilter) action()  {}
func (SetDateRange) action()     {}
func (SetArchiveView) action()   {}
func (SetWorkspace) action()     {}
func (SetViewMode) action()      {}
func (SetSort) action()          {}
func (ToggleSelect) action()     {}
func (SetSelection) action()     {}
func (OpenCreate) action()       {}
func (OpenEdit) action()         {}
func (CloseModal) action()       {}
func (SetTitle) action()         {}
func (SetContent) action()       {}
func (SetPinned) action()        {}
func (SetPriority) action()      {}
func (SetDueDate) action()       {}
func (SetFormWorkspace) action() {}
func (TagKeyPress) action()      {}
func (TagInputChange) action()   {}
func (AddTag) action()           {}
func (RemoveTag) action()        {}
func (SetQuickCreate) action()   {}
func (SetQuickTitle) action()    {}
func (ShowQuickActions) action() {}
func (OpenShare) action()        {}
func (CloseShare) action()       {}
func (DragStart) action()        {}
func (DragOver) action()         {}
func (DragLeave) action()        {}
func (DragEnd) action()          {}
func (Drop) action()             {}

func (c *Notes) closeModalLocked() {
	c.state.Modal.Open = false
	c.state.Modal.EditingID = ""
}

// Dispatch applies an input event to the state.
func (c *Notes) Dispatch(a Action) {
	var notice string

	c.mu.Lock()
	s := &c.state
	switch a := a.(type) {
	case SetSearch:
		s.Filter.Search = a.Term
	case SetSelectedTags:
		s.Filter.Tags = slices.Clone(a.Tags)
	case ToggleTagFilter:
		if i := slices.Index(s.Filter.Tags, a.Tag); i >= 0 {
			s.Filter.Tags = slices.Delete(s.Filter.Tags, i, i+1)
		} else {
			s.Filter.Tags = append(s.Filter.Tags, a.Tag)
		}
	case SetDateRange:
		s.Filter.Dates = a.Range
	case SetArchiveView:
		s.Filter.Archived = a.Archived
	case SetWorkspace:
		s.Filter.Workspace = a.ID
	case SetViewMode:
		s.ViewMode = a.Mode
	case SetSort:
		s.Sort = a.Key
	case ToggleSelect:
		if i := slices.Index(s.Selected, a.ID); i >= 0 {
			s.Selected = slices.Delete(s.Selected, i, i+1)
		} else {
			s.Selected = append(s.Selected, a.ID)
		}
	case SetSelection:
		s.Selected = slices.Clone(a.IDs)

	case OpenCreate:
		s.Modal = Modal{
			Open: true,
			Mode: ModalCreate,
			Form: NoteForm{Workspace: s.Filter.Workspace},
		}
	case OpenEdit:
		if n, ok := c.findLocked(a.ID); ok {
			s.Modal = Modal{Open: true, Mode: ModalEdit, EditingID: n.ID, Form: formFor(n)}
		}
	case CloseModal:
		c.closeModalLocked()
	case SetTitle:
		s.Modal.Form.Title = a.Value
	case SetContent:
		s.Modal.Form.Content = a.Value
	case SetPinned:
		s.Modal.Form.IsPinned = a.Value
	case SetPriority:
		s.Modal.Form.Priority = a.Value
	case SetDueDate:
		s.Modal.Form.DueDate = a.Value
	case SetFormWorkspace:
		s.Modal.Form.Workspace = a.ID
	case TagKeyPress:
		s.Modal.Form.TagKey(a.Key)
	case TagInputChange:
		s.Modal.Form.ChangeTagInput(a.Value)
	case AddTag:
		s.Modal.Form.AddTag()
	case RemoveTag:
		s.Modal.Form.RemoveTag(a.Tag)

	case SetQuickCreate:
		s.QuickCreate.Open = a.Open
	case SetQuickTitle:
		s.QuickCreate.Title = a.Value
	case ShowQuickActions:
		s.QuickActions = a.ID
	case OpenShare:
		if n, ok := c.findLocked(a.ID); ok {
			s.Share = ShareTarget{Open: true, Note: &n}
		}
	case CloseShare:
		s.Share.Open = false

	case DragStart:
		s.Drag.Source = a.ID
	case DragOver:
		s.Drag.Over = a.ID
	case DragLeave:
		s.Drag.Over = ""
	case DragEnd:
		s.Drag = Drag{}
	case Drop:
		notice = c.dropLocked(a.TargetID)
	}
	c.mu.Unlock()

	if notice != "" {
		c.success(notice)
	}
}

// dropLocked ends a drag onto target. Order is never persisted; the drop
// only produces a notice.
func (c *Notes) dropLocked(target string) string {
	src := c.state.Drag.Source
	if src == "" || src == target {
		return ""
	}

	var notice string
	view := c.viewLocked()
	inView := func(id string) bool {
		return slices.ContainsFunc(view, func(n Note) bool { return n.ID == id })
	}
	if inView(src) && inView(target) {
		from, ok1 := c.findLocked(src)
		to, ok2 := c.findLocked(target)
		if ok1 && ok2 {
			notice = `Moved "` + from.Title + `" near "` + to.Title + `"`
		}
	}
	c.state.Drag = Drag{}
	return notice
}

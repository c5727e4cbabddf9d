package client

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

var (
	ErrTitleRequired = errors.New("title is required")
	ErrUnknownNote   = errors.New("unknown note")
	ErrNotConfigured = errors.New("not configured")
)

type Modal struct {
	Open      bool
	Mode      ModalMode
	EditingID string
	Form      NoteForm
}

type QuickCreate struct {
	Open  bool
	Title string
}

type ShareTarget struct {
	Open bool
	Note *Note
}

type Drag struct {
	Source string
	Over   string
}

// State is everything the notes screen shows, owned by a Notes controller.
type State struct {
	Notes        []Note
	Filter       Filter
	ViewMode     ViewMode
	Sort         SortKey
	Selected     []string
	Modal        Modal
	QuickCreate  QuickCreate
	Share        ShareTarget
	QuickActions string
	Drag         Drag
	Loading      bool
	Workspaces   []Workspace
}

func (s State) clone() State {
	c := s
	c.Notes = slices.Clone(s.Notes)
	c.Filter.Tags = slices.Clone(s.Filter.Tags)
	c.Selected = slices.Clone(s.Selected)
	c.Modal.Form.Tags = slices.Clone(s.Modal.Form.Tags)
	c.Workspaces = slices.Clone(s.Workspaces)
	if s.Share.Note != nil {
		n := *s.Share.Note
		c.Share.Note = &n
	}
	return c
}

// NotesDeps are the side-effect ports of a Notes controller. Nil Now and
// Location default to time.Now and time.Local.
type NotesDeps struct {
	API        NotesAPI
	Notifier   Notifier
	Confirmer  Confirmer
	Downloader Downloader
	Clipboard  Clipboard
	Opener     URLOpener
	Origin     string
	Now        func() time.Time
	Location   *time.Location
	PickColor  func(n int) int
}

// Notes is the single owner of the notes screen state. Input events go
// through Dispatch; server-backed actions are methods that apply their
// result only after the call succeeds.
type Notes struct {
	deps NotesDeps

	mu    sync.Mutex
	state State
}

func NewNotes(deps NotesDeps) *Notes {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Location == nil {
		deps.Location = time.Local
	}
	return &Notes{
		deps: deps,
		state: State{
			Notes:      []Note{},
			Filter:     Filter{Workspace: defaultWorkspaceID},
			ViewMode:   ViewGrid,
			Sort:       SortUpdated,
			Modal:      Modal{Mode: ModalCreate, Form: NoteForm{Workspace: defaultWorkspaceID}},
			Loading:    true,
			Workspaces: DefaultWorkspaces(),
		},
	}
}

// Snapshot returns a copy of the state and the derived visible notes.
func (c *Notes) Snapshot() (State, []Note) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone(), c.viewLocked()
}

func (c *Notes) View() []Note {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Notes) viewLocked() []Note {
	return Derive(c.state.Notes, c.state.Filter, c.state.Sort, c.deps.Now())
}

func (c *Notes) findLocked(id string) (Note, bool) {
	i := slices.IndexFunc(c.state.Notes, func(n Note) bool { return n.ID == id })
	if i < 0 {
		return Note{}, false
	}
	return c.state.Notes[i], true
}

func (c *Notes) find(id string) (Note, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.findLocked(id)
}

func (c *Notes) replaceLocked(n Note) {
	for i := range c.state.Notes {
		if c.state.Notes[i].ID == n.ID {
			c.state.Notes[i] = n
		}
	}
}

// prependLocked puts n at the front unless a note with its id is already
// held, in which case that record is replaced in place.
func (c *Notes) prependLocked(n Note) {
	if _, ok := c.findLocked(n.ID); ok {
		c.replaceLocked(n)
		return
	}
	c.state.Notes = append([]Note{n}, c.state.Notes...)
}

func (c *Notes) success(msg string) {
	if c.deps.Notifier != nil {
		c.deps.Notifier.Success(msg)
	}
}

func (c *Notes) failure(msg string) {
	if c.deps.Notifier != nil {
		c.deps.Notifier.Error(msg)
	}
}

func (c *Notes) Fetch(ctx context.Context) error {
	c.mu.Lock()
	c.state.Loading = true
	c.mu.Unlock()

	notes, err := c.deps.API.ListNotes(ctx)

	c.mu.Lock()
	c.state.Loading = false
	if err == nil {
		if notes == nil {
			notes = []Note{}
		}
		c.state.Notes = notes
	}
	c.mu.Unlock()

	if err != nil {
		c.failure("Failed to fetch notes")
		return fmt.Errorf("fetch notes: %w", err)
	}
	return nil
}

// SaveNote submits the modal form, creating or updating depending on its mode.
func (c *Notes) SaveNote(ctx context.Context) error {
	c.mu.Lock()
	modal := c.state.Modal
	modal.Form.Tags = slices.Clone(modal.Form.Tags)
	c.mu.Unlock()

	if strings.TrimSpace(modal.Form.Title) == "" {
		c.failure("Title is required")
		return ErrTitleRequired
	}

	in := modal.Form.input()
	if modal.Mode == ModalEdit {
		in.NoteID = modal.EditingID
		note, err := c.deps.API.UpdateNote(ctx, in)
		if err != nil {
			c.failure("Failed to update note")
			return fmt.Errorf("update note: %w", err)
		}
		c.mu.Lock()
		c.replaceLocked(note)
		c.closeModalLocked()
		c.mu.Unlock()
		c.success("Note updated successfully")
		return nil
	}

	note, err := c.deps.API.CreateNote(ctx, in)
	if err != nil {
		c.failure("Failed to create note")
		return fmt.Errorf("create note: %w", err)
	}
	c.mu.Lock()
	c.prependLocked(note)
	c.closeModalLocked()
	c.mu.Unlock()
	c.success("Note created successfully")
	return nil
}

// QuickCreate creates a note from the quick-create title alone. A blank
// title does nothing.
func (c *Notes) QuickCreate(ctx context.Context) error {
	c.mu.Lock()
	title := strings.TrimSpace(c.state.QuickCreate.Title)
	workspace := c.state.Filter.Workspace
	c.mu.Unlock()

	if title == "" {
		return nil
	}

	note, err := c.deps.API.CreateNote(ctx, NoteInput{
		Title:     &title,
		Content:   ptr(""),
		IsPinned:  ptr(false),
		Workspace: &workspace,
	})
	if err != nil {
		c.failure("Failed to create note")
		return fmt.Errorf("create note: %w", err)
	}

	c.mu.Lock()
	c.prependLocked(note)
	c.state.QuickCreate = QuickCreate{}
	c.mu.Unlock()
	c.success("Note created successfully!")
	return nil
}

func (c *Notes) DeleteNote(ctx context.Context, id string) error {
	if c.deps.Confirmer == nil || !c.deps.Confirmer.Confirm("Are you sure you want to delete this note?") {
		return nil
	}

	if err := c.deps.API.DeleteNote(ctx, id); err != nil {
		c.failure("Failed to delete note")
		return fmt.Errorf("delete note: %w", err)
	}

	c.mu.Lock()
	c.state.Notes = slices.DeleteFunc(c.state.Notes, func(n Note) bool { return n.ID == id })
	c.mu.Unlock()
	c.success("Note deleted successfully")
	return nil
}

func (c *Notes) TogglePin(ctx context.Context, id string) error {
	note, ok := c.find(id)
	if !ok {
		return ErrUnknownNote
	}

	updated, err := c.deps.API.UpdateNote(ctx, NoteInput{NoteID: id, IsPinned: ptr(!note.IsPinned)})
	if err != nil {
		c.failure("Failed to update note")
		return fmt.Errorf("toggle pin: %w", err)
	}

	c.mu.Lock()
	c.replaceLocked(updated)
	c.mu.Unlock()
	if note.IsPinned {
		c.success("Note unpinned")
	} else {
		c.success("Note pinned")
	}
	return nil
}

func (c *Notes) ToggleArchive(ctx context.Context, id string) error {
	note, ok := c.find(id)
	if !ok {
		return ErrUnknownNote
	}

	updated, err := c.deps.API.UpdateNote(ctx, NoteInput{NoteID: id, IsArchived: ptr(!note.IsArchived)})
	if err != nil {
		c.failure("Failed to update note")
		return fmt.Errorf("toggle archive: %w", err)
	}

	c.mu.Lock()
	c.replaceLocked(updated)
	c.mu.Unlock()
	if note.IsArchived {
		c.success("Note unarchived")
	} else {
		c.success("Note archived")
	}
	return nil
}

func (c *Notes) selection() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.state.Selected)
}

func (c *Notes) BulkArchive(ctx context.Context) error {
	ids := c.selection()
	if len(ids) == 0 {
		return nil
	}

	if err := c.deps.API.BulkNotes(ctx, ids, BulkArchive); err != nil {
		c.failure("Failed to archive notes")
		return fmt.Errorf("bulk archive: %w", err)
	}

	c.mu.Lock()
	for i := range c.state.Notes {
		if slices.Contains(ids, c.state.Notes[i].ID) {
			c.state.Notes[i].IsArchived = true
		}
	}
	c.state.Selected = nil
	c.mu.Unlock()
	c.success(fmt.Sprintf("%d notes archived", len(ids)))
	return nil
}

func (c *Notes) BulkDelete(ctx context.Context) error {
	ids := c.selection()
	if len(ids) == 0 {
		return nil
	}

	if err := c.deps.API.BulkNotes(ctx, ids, BulkDelete); err != nil {
		c.failure("Failed to delete notes")
		return fmt.Errorf("bulk delete: %w", err)
	}

	c.mu.Lock()
	c.state.Notes = slices.DeleteFunc(c.state.Notes, func(n Note) bool { return slices.Contains(ids, n.ID) })
	c.state.Selected = nil
	c.mu.Unlock()
	c.success(fmt.Sprintf("%d notes deleted", len(ids)))
	return nil
}

// BulkExport downloads the selected notes as one file. Nothing happens when
// no selected id matches a held note.
func (c *Notes) BulkExport(format ExportFormat) error {
	c.mu.Lock()
	var picked []Note
	for _, n := range c.state.Notes {
		if slices.Contains(c.state.Selected, n.ID) {
			picked = append(picked, n)
		}
	}
	c.mu.Unlock()

	if len(picked) == 0 {
		return nil
	}

	f, err := ExportNotes(picked, format, c.deps.Now(), c.deps.Location)
	if err != nil {
		return err
	}
	if c.deps.Downloader == nil {
		return fmt.Errorf("download %s: %w", f.Name, ErrNotConfigured)
	}
	if err := c.deps.Downloader.Download(f.Name, f.MIME, f.Data); err != nil {
		return fmt.Errorf("download %s: %w", f.Name, err)
	}
	c.success(fmt.Sprintf("%d notes exported as %s", len(picked), strings.ToUpper(string(format))))
	return nil
}

func (c *Notes) ExportNote(id string, format ExportFormat) error {
	note, ok := c.find(id)
	if !ok {
		return ErrUnknownNote
	}

	f, produced, err := ExportNote(note, format, c.deps.Location)
	if err != nil {
		return err
	}
	if produced {
		if c.deps.Downloader == nil {
			return fmt.Errorf("download %s: %w", f.Name, ErrNotConfigured)
		}
		if err := c.deps.Downloader.Download(f.Name, f.MIME, f.Data); err != nil {
			return fmt.Errorf("download %s: %w", f.Name, err)
		}
	}
	c.success("Note exported as " + strings.ToUpper(string(format)))
	return nil
}

func (c *Notes) writeClipboard(text string) error {
	if c.deps.Clipboard == nil {
		return ErrNotConfigured
	}
	return c.deps.Clipboard.WriteText(text)
}

func (c *Notes) CopyLink(id string) error {
	if err := c.writeClipboard(ShareLink(c.deps.Origin, id)); err != nil {
		c.failure("Failed to copy note link")
		return fmt.Errorf("copy link: %w", err)
	}
	c.success("Note link copied to clipboard")
	return nil
}

func (c *Notes) CopyContent(id string) error {
	note, ok := c.find(id)
	if !ok {
		return ErrUnknownNote
	}
	if err := c.writeClipboard(ShareContent(note)); err != nil {
		c.failure("Failed to copy note content")
		return fmt.Errorf("copy content: %w", err)
	}
	c.success("Note content copied to clipboard")
	return nil
}

func (c *Notes) ShareEmail(id string) error {
	note, ok := c.find(id)
	if !ok {
		return ErrUnknownNote
	}
	if c.deps.Opener == nil {
		return fmt.Errorf("open mail link: %w", ErrNotConfigured)
	}
	return c.deps.Opener.Open(MailtoURL(note))
}

// AddWorkspace appends a workspace named name. Blank names are ignored.
func (c *Notes) AddWorkspace(name string) (Workspace, bool) {
	ws, ok := NewWorkspace(name, c.deps.PickColor)
	if !ok {
		return Workspace{}, false
	}
	c.mu.Lock()
	c.state.Workspaces = append(c.state.Workspaces, ws)
	c.mu.Unlock()
	c.success(`Workspace "` + name + `" created successfully`)
	return ws, true
}

// ApplyEvent folds a live event from another session into the held notes.
// It reports whether the event cannot be applied locally and the caller
// should refetch.
func (c *Notes) ApplyEvent(ev LiveEvent) (refetch bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev.Type {
	case LiveCreated:
		if ev.Note == nil {
			return true
		}
		c.prependLocked(*ev.Note)
	case LiveUpdated:
		if ev.Note == nil {
			return true
		}
		if _, exists := c.findLocked(ev.Note.ID); !exists {
			return true
		}
		c.replaceLocked(*ev.Note)
	case LiveDeleted:
		c.state.Notes = slices.DeleteFunc(c.state.Notes, func(n Note) bool { return slices.Contains(ev.NoteIDs, n.ID) })
	case LiveBulk:
		switch BulkOperation(ev.Operation) {
		case BulkDelete:
			c.state.Notes = slices.DeleteFunc(c.state.Notes, func(n Note) bool { return slices.Contains(ev.NoteIDs, n.ID) })
		case BulkArchive, BulkUnarchive:
			archived := BulkOperation(ev.Operation) == BulkArchive
			for i := range c.state.Notes {
				if slices.Contains(ev.NoteIDs, c.state.Notes[i].ID) {
					c.state.Notes[i].IsArchived = archived
				}
			}
		default:
			return true
		}
	default:
		return true
	}
	return false
}

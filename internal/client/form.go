package client

import (
	"slices"
	"strings"
	"time"
)

type ModalMode string

const (
	ModalCreate ModalMode = "create"
	ModalEdit   ModalMode = "edit"
)

// NoteForm holds the fields of the create/edit modal.
type NoteForm struct {
	Title     string
	Content   string
	IsPinned  bool
	Tags      []string
	TagInput  string
	Priority  Priority
	DueDate   *time.Time
	Workspace string
}

func formFor(n Note) NoteForm {
	ws := n.Workspace
	if ws == "" {
		ws = defaultWorkspaceID
	}
	return NoteForm{
		Title:     n.Title,
		Content:   n.Content,
		IsPinned:  n.IsPinned,
		Tags:      slices.Clone(n.Tags),
		Priority:  n.Priority,
		DueDate:   n.DueDate,
		Workspace: ws,
	}
}

func (f *NoteForm) addTagValue(v string) {
	tag := strings.TrimSpace(v)
	if tag == "" || slices.Contains(f.Tags, tag) {
		return
	}
	f.Tags = append(f.Tags, tag)
}

// AddTag commits the tag input. The input is kept when it is blank or a duplicate.
func (f *NoteForm) AddTag() {
	tag := strings.TrimSpace(f.TagInput)
	if tag == "" || slices.Contains(f.Tags, tag) {
		return
	}
	f.Tags = append(f.Tags, tag)
	f.TagInput = ""
}

func (f *NoteForm) RemoveTag(tag string) {
	f.Tags = slices.DeleteFunc(f.Tags, func(t string) bool { return t == tag })
}

// TagKey handles a key press in the tag input; enter and space commit.
// It reports whether the key was consumed.
func (f *NoteForm) TagKey(key string) bool {
	if key != "Enter" && key != " " {
		return false
	}
	f.AddTag()
	return true
}

// ChangeTagInput handles typing in the tag input. A value ending in a space
// commits its trimmed content and clears the input.
func (f *NoteForm) ChangeTagInput(value string) {
	if strings.HasSuffix(value, " ") && strings.TrimSpace(value) != "" {
		f.addTagValue(value)
		f.TagInput = ""
		return
	}
	f.TagInput = value
}

// input builds the request body for saving the form.
func (f NoteForm) input() NoteInput {
	in := NoteInput{
		Title:     ptr(strings.TrimSpace(f.Title)),
		IsPinned:  ptr(f.IsPinned),
		Workspace: ptr(f.Workspace),
	}
	if c := strings.TrimSpace(f.Content); c != "" {
		in.Content = &c
	}
	if len(f.Tags) > 0 {
		in.Tags = slices.Clone(f.Tags)
	}
	if f.Priority != "" {
		in.Priority = ptr(f.Priority)
	}
	if f.DueDate != nil {
		in.DueDate = ptr(f.DueDate.UTC().Format("2006-01-02T15:04:05.000Z07:00"))
	}
	return in
}

// Package client is the notes application's client side: HTTP access to the
// server, the auth session, the profile helpers, and the notes controller
// that owns filtering, sorting, selection and all note mutations.
package client

import (
	"context"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) rank() int {
	switch p {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

type Note struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Content    string     `json:"content,omitempty"`
	Category   string     `json:"category,omitempty"`
	Tags       []string   `json:"tags"`
	Priority   Priority   `json:"priority,omitempty"`
	DueDate    *time.Time `json:"dueDate,omitempty"`
	IsPinned   bool       `json:"isPinned"`
	IsArchived bool       `json:"isArchived"`
	Workspace  string     `json:"workspace,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

type User struct {
	ID        string     `json:"id"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     string     `json:"email"`
	Bio       string     `json:"bio,omitempty"`
	Role      string     `json:"role,omitempty"`
	Avatar    string     `json:"avatar,omitempty"`
	Interests string     `json:"interests,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

type Workspace struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type SortKey string

const (
	SortUpdated  SortKey = "updated"
	SortCreated  SortKey = "created"
	SortTitle    SortKey = "title"
	SortPriority SortKey = "priority"
)

type ViewMode string

const (
	ViewGrid ViewMode = "grid"
	ViewList ViewMode = "list"
)

// DateRange bounds createdAt inclusively; nil bounds are open.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// NoteInput is the body of note create and update calls. Nil members are
// left out of the request.
type NoteInput struct {
	NoteID     string    `json:"noteId,omitempty"`
	Title      *string   `json:"title,omitempty"`
	Content    *string   `json:"content,omitempty"`
	IsPinned   *bool     `json:"isPinned,omitempty"`
	IsArchived *bool     `json:"isArchived,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
	Priority   *Priority `json:"priority,omitempty"`
	DueDate    *string   `json:"dueDate,omitempty"`
	Workspace  *string   `json:"workspace,omitempty"`
}

type BulkOperation string

const (
	BulkArchive   BulkOperation = "archive"
	BulkUnarchive BulkOperation = "unarchive"
	BulkDelete    BulkOperation = "delete"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type ProfileInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Bio       string `json:"bio"`
	Interests string `json:"interests"`
}

type NotesAPI interface {
	ListNotes(ctx context.Context) ([]Note, error)
	CreateNote(ctx context.Context, in NoteInput) (Note, error)
	UpdateNote(ctx context.Context, in NoteInput) (Note, error)
	DeleteNote(ctx context.Context, id string) error
	BulkNotes(ctx context.Context, ids []string, op BulkOperation) error
}

type AuthAPI interface {
	Me(ctx context.Context) (User, error)
	Login(ctx context.Context, c Credentials) (User, error)
	Signup(ctx context.Context, in SignupInput) (User, error)
	Logout(ctx context.Context) error
}

type ProfileAPI interface {
	UpdateProfile(ctx context.Context, in ProfileInput) error
	ChangePassword(ctx context.Context, current, next string) error
	DeleteProfile(ctx context.Context) error
}

// Notifier shows transient success and error messages.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

type Confirmer interface {
	Confirm(prompt string) bool
}

// Downloader hands a generated file to the user.
type Downloader interface {
	Download(name, mime string, data []byte) error
}

type Clipboard interface {
	WriteText(text string) error
}

type URLOpener interface {
	Open(url string) error
}

type Navigator interface {
	Navigate(path string)
}

func ptr[T any](v T) *T {
	return &v
}

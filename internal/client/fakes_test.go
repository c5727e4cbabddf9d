package client

import (
	"context"
	"errors"
	"sync"
)

var errBoom = errors.New("boom")

type bulkCall struct {
	ids []string
	op  BulkOperation
}

type fakeNotesAPI struct {
	mu sync.Mutex

	notes []Note

	listErr, createErr, updateErr, deleteErr, bulkErr error

	// onCreate runs before CreateNote returns, like a live event that
	// beats the HTTP response.
	onCreate func(Note)

	lists   int
	created []NoteInput
	updated []NoteInput
	deleted []string
	bulk    []bulkCall
}

func (f *fakeNotesAPI) ListNotes(context.Context) ([]Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]Note(nil), f.notes...), nil
}

func (f *fakeNotesAPI) CreateNote(_ context.Context, in NoteInput) (Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, in)
	if f.createErr != nil {
		return Note{}, f.createErr
	}
	n := Note{ID: "new", Title: *in.Title, Tags: in.Tags}
	if in.Workspace != nil {
		n.Workspace = *in.Workspace
	}
	if f.onCreate != nil {
		f.onCreate(n)
	}
	return n, nil
}

func (f *fakeNotesAPI) UpdateNote(_ context.Context, in NoteInput) (Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, in)
	if f.updateErr != nil {
		return Note{}, f.updateErr
	}
	n := Note{ID: in.NoteID}
	for _, held := range f.notes {
		if held.ID == in.NoteID {
			n = held
		}
	}
	if in.Title != nil {
		n.Title = *in.Title
	}
	if in.IsPinned != nil {
		n.IsPinned = *in.IsPinned
	}
	if in.IsArchived != nil {
		n.IsArchived = *in.IsArchived
	}
	return n, nil
}

func (f *fakeNotesAPI) DeleteNote(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

func (f *fakeNotesAPI) BulkNotes(_ context.Context, ids []string, op BulkOperation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bulk = append(f.bulk, bulkCall{ids: ids, op: op})
	return f.bulkErr
}

type fakeNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (f *fakeNotifier) Success(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.successes = append(f.successes, msg)
}

func (f *fakeNotifier) Error(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, msg)
}

func (f *fakeNotifier) lastSuccess() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.successes) == 0 {
		return ""
	}
	return f.successes[len(f.successes)-1]
}

func (f *fakeNotifier) lastError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.errors) == 0 {
		return ""
	}
	return f.errors[len(f.errors)-1]
}

type fakeConfirmer struct {
	answer  bool
	prompts []string
}

func (f *fakeConfirmer) Confirm(prompt string) bool {
	f.prompts = append(f.prompts, prompt)
	return f.answer
}

type fakeDownloader struct {
	files []File
}

func (f *fakeDownloader) Download(name, mime string, data []byte) error {
	f.files = append(f.files, File{Name: name, MIME: mime, Data: data})
	return nil
}

type fakeClipboard struct {
	err  error
	text string
}

func (f *fakeClipboard) WriteText(text string) error {
	if f.err != nil {
		return f.err
	}
	f.text = text
	return nil
}

type fakeOpener struct {
	urls []string
}

func (f *fakeOpener) Open(url string) error {
	f.urls = append(f.urls, url)
	return nil
}

type fakeNavigator struct {
	paths []string
}

func (f *fakeNavigator) Navigate(path string) {
	f.paths = append(f.paths, path)
}

type fakeAuthAPI struct {
	user      User
	meErr     error
	loginErr  error
	signupErr error
	logoutErr error

	updateErr, passwordErr, deleteErr error

	meCalls  int
	logins   []Credentials
	profiles []ProfileInput
}

func (f *fakeAuthAPI) Me(context.Context) (User, error) {
	f.meCalls++
	return f.user, f.meErr
}

func (f *fakeAuthAPI) Login(_ context.Context, c Credentials) (User, error) {
	f.logins = append(f.logins, c)
	if f.loginErr != nil {
		return User{}, f.loginErr
	}
	return f.user, nil
}

func (f *fakeAuthAPI) Signup(_ context.Context, in SignupInput) (User, error) {
	if f.signupErr != nil {
		return User{}, f.signupErr
	}
	return User{ID: "u1", FirstName: in.FirstName, LastName: in.LastName, Email: in.Email}, nil
}

func (f *fakeAuthAPI) Logout(context.Context) error { return f.logoutErr }

func (f *fakeAuthAPI) UpdateProfile(_ context.Context, in ProfileInput) error {
	f.profiles = append(f.profiles, in)
	return f.updateErr
}

func (f *fakeAuthAPI) ChangePassword(context.Context, string, string) error { return f.passwordErr }

func (f *fakeAuthAPI) DeleteProfile(context.Context) error { return f.deleteErr }

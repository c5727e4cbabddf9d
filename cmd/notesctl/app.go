package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"notesboard/internal/client"

	"github.com/atotto/clipboard"
)

type console struct {
	w io.Writer
}

func (c console) Success(msg string) { fmt.Fprintln(c.w, "✓", msg) }
func (c console) Error(msg string)   { fmt.Fprintln(c.w, "✗", msg) }

type fileDownloader struct {
	dir string
	w   io.Writer
}

func (d fileDownloader) Download(name, _ string, data []byte) error {
	path := filepath.Join(d.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintln(d.w, "saved", path)
	return nil
}

type systemClipboard struct{}

func (systemClipboard) WriteText(text string) error { return clipboard.WriteAll(text) }

// printOpener shows links instead of launching a browser or mail client.
type printOpener struct {
	w io.Writer
}

func (o printOpener) Open(url string) error {
	_, err := fmt.Fprintln(o.w, url)
	return err
}

type App struct {
	api     *client.API
	auth    *client.Auth
	notes   *client.Notes
	profile *client.Profile

	out     io.Writer
	scanner *bufio.Scanner
	page    string

	stopFollow context.CancelFunc
}

func NewApp(server, exportDir string, out io.Writer) (*App, error) {
	api, err := client.NewAPI(server)
	if err != nil {
		return nil, err
	}
	notify := console{w: out}
	a := &App{api: api, out: out}

	a.auth = client.NewAuth(api, notify, a)
	a.profile = client.NewProfile(api, a.auth, notify)
	a.notes = client.NewNotes(client.NotesDeps{
		API:        api,
		Notifier:   notify,
		Confirmer:  a,
		Downloader: fileDownloader{dir: exportDir, w: out},
		Clipboard:  systemClipboard{},
		Opener:     printOpener{w: out},
		Origin:     api.Origin(),
	})
	return a, nil
}

// Navigate records the page the session moved to.
func (a *App) Navigate(path string) {
	a.page = path
}

func (a *App) Confirm(question string) bool {
	answer, err := prompt(a.scanner, a.out, question+" [y/N]")
	if err != nil {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}

func (a *App) isLoggedIn() bool {
	return a.auth.IsAuthenticated()
}

func (a *App) status() string {
	u, ok := a.auth.User()
	if !ok {
		return "signed out"
	}
	st, _ := a.notes.Snapshot()
	view := st.Filter.Workspace
	if st.Filter.Archived {
		view += "/archive"
	}
	return u.Email + " " + view
}

func (a *App) Run(ctx context.Context, scanner *bufio.Scanner) {
	a.scanner = scanner
	a.auth.Init(ctx)
	if a.isLoggedIn() {
		a.startSession(ctx)
	}
	defer a.endSession()
	runREPL(ctx, a, a.status, scanner)
}

func (a *App) startSession(ctx context.Context) {
	_ = a.notes.Fetch(ctx)
	followCtx, cancel := context.WithCancel(ctx)
	a.stopFollow = cancel
	go func() {
		_ = a.notes.Follow(followCtx, a.api)
	}()
}

func (a *App) endSession() {
	if a.stopFollow != nil {
		a.stopFollow()
		a.stopFollow = nil
	}
}

func (a *App) Signup(ctx context.Context) error {
	var in client.SignupInput
	var err error
	if in.FirstName, err = prompt(a.scanner, a.out, "First name"); err != nil {
		return err
	}
	if in.LastName, err = prompt(a.scanner, a.out, "Last name"); err != nil {
		return err
	}
	if in.Email, err = prompt(a.scanner, a.out, "Email"); err != nil {
		return err
	}
	if in.Password, err = promptPassword(a.out, "Password"); err != nil {
		return err
	}
	if err := a.auth.Signup(ctx, in); err != nil {
		return err
	}
	a.startSession(ctx)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	var c client.Credentials
	var err error
	if c.Email, err = prompt(a.scanner, a.out, "Email"); err != nil {
		return err
	}
	if c.Password, err = promptPassword(a.out, "Password"); err != nil {
		return err
	}
	if err := a.auth.Login(ctx, c); err != nil {
		return err
	}
	a.startSession(ctx)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.endSession()
	return a.auth.Logout(ctx)
}

func (a *App) List(_ context.Context) error {
	st, view := a.notes.Snapshot()
	if len(view) == 0 {
		fmt.Fprintln(a.out, "No notes.")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEL\tID\tTITLE\tPRIORITY\tTAGS\tUPDATED")
	for _, n := range view {
		sel := " "
		for _, id := range st.Selected {
			if id == n.ID {
				sel = "*"
			}
		}
		title := n.Title
		if n.IsPinned {
			title = "📌 " + title
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", sel, n.ID, title, n.Priority,
			strings.Join(n.Tags, ","), n.UpdatedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}

func (a *App) Show(_ context.Context, id string) error {
	st, _ := a.notes.Snapshot()
	for _, n := range st.Notes {
		if n.ID != id {
			continue
		}
		fmt.Fprintf(a.out, "%s\n\n%s\n\n", n.Title, n.Content)
		fmt.Fprintf(a.out, "workspace: %s  priority: %s  tags: %s\n", n.Workspace, n.Priority, strings.Join(n.Tags, ", "))
		if n.DueDate != nil {
			fmt.Fprintf(a.out, "due: %s\n", n.DueDate.Local().Format(time.DateOnly))
		}
		return nil
	}
	return client.ErrUnknownNote
}

// editForm walks the modal form fields. Empty answers keep the current value.
func (a *App) editForm() error {
	st, _ := a.notes.Snapshot()
	form := st.Modal.Form

	title, err := prompt(a.scanner, a.out, fmt.Sprintf("Title [%s]", form.Title))
	if err != nil {
		return err
	}
	if title != "" {
		a.notes.Dispatch(client.SetTitle{Value: title})
	}
	content, err := prompt(a.scanner, a.out, "Content")
	if err != nil {
		return err
	}
	if content != "" {
		a.notes.Dispatch(client.SetContent{Value: content})
	}
	tags, err := prompt(a.scanner, a.out, "Tags (space separated)")
	if err != nil {
		return err
	}
	if tags != "" {
		for _, t := range strings.Fields(tags) {
			a.notes.Dispatch(client.TagInputChange{Value: t + " "})
		}
	}
	priority, err := prompt(a.scanner, a.out, "Priority (low/medium/high/urgent)")
	if err != nil {
		return err
	}
	if priority != "" {
		a.notes.Dispatch(client.SetPriority{Value: client.Priority(priority)})
	}
	due, err := prompt(a.scanner, a.out, "Due date (YYYY-MM-DD)")
	if err != nil {
		return err
	}
	if due != "" {
		t, err := time.ParseInLocation(time.DateOnly, due, time.Local)
		if err != nil {
			return fmt.Errorf("due date: %w", err)
		}
		a.notes.Dispatch(client.SetDueDate{Value: &t})
	}
	pinned, err := prompt(a.scanner, a.out, "Pin? [y/N]")
	if err != nil {
		return err
	}
	if pinned != "" {
		a.notes.Dispatch(client.SetPinned{Value: strings.HasPrefix(strings.ToLower(pinned), "y")})
	}
	return nil
}

func (a *App) New(ctx context.Context) error {
	a.notes.Dispatch(client.OpenCreate{})
	if err := a.editForm(); err != nil {
		a.notes.Dispatch(client.CloseModal{})
		return err
	}
	return a.notes.SaveNote(ctx)
}

func (a *App) Edit(ctx context.Context, id string) error {
	a.notes.Dispatch(client.OpenEdit{ID: id})
	if st, _ := a.notes.Snapshot(); !st.Modal.Open {
		return client.ErrUnknownNote
	}
	if err := a.editForm(); err != nil {
		a.notes.Dispatch(client.CloseModal{})
		return err
	}
	return a.notes.SaveNote(ctx)
}

func (a *App) Quick(ctx context.Context, title string) error {
	a.notes.Dispatch(client.SetQuickCreate{Open: true})
	a.notes.Dispatch(client.SetQuickTitle{Value: title})
	return a.notes.QuickCreate(ctx)
}

func (a *App) Workspaces() {
	st, _ := a.notes.Snapshot()
	for _, ws := range st.Workspaces {
		marker := " "
		if ws.ID == st.Filter.Workspace {
			marker = "*"
		}
		fmt.Fprintf(a.out, "%s %-12s %s (%s)\n", marker, ws.ID, ws.Name, ws.Color)
	}
}

func (a *App) Profile(_ context.Context) error {
	u, ok := a.auth.User()
	if !ok {
		return errors.New("not signed in")
	}
	now := time.Now()
	fmt.Fprintf(a.out, "%s %s <%s>\n", u.FirstName, u.LastName, u.Email)
	fmt.Fprintf(a.out, "role: %s  status: %s  member for: %s  profile: %d%%\n",
		client.RoleDisplay(&u).Label, client.AccountStatus(&u, now).Label,
		client.AccountAge(&u, now), client.Completion(&u))
	if u.Bio != "" {
		fmt.Fprintln(a.out, "bio:", u.Bio)
	}
	if u.Interests != "" {
		fmt.Fprintln(a.out, "interests:", u.Interests)
	}
	return nil
}

func (a *App) EditProfile(ctx context.Context) error {
	u, ok := a.auth.User()
	if !ok {
		return errors.New("not signed in")
	}
	in := client.ProfileInput{FirstName: u.FirstName, LastName: u.LastName, Email: u.Email, Bio: u.Bio, Interests: u.Interests}
	for _, f := range []struct {
		label string
		dst   *string
	}{
		{"First name", &in.FirstName},
		{"Last name", &in.LastName},
		{"Email", &in.Email},
		{"Bio", &in.Bio},
		{"Interests", &in.Interests},
	} {
		v, err := prompt(a.scanner, a.out, fmt.Sprintf("%s [%s]", f.label, *f.dst))
		if err != nil {
			return err
		}
		if v != "" {
			*f.dst = v
		}
	}
	return a.profile.UpdateProfile(ctx, in)
}

func (a *App) ChangePassword(ctx context.Context) error {
	current, err := promptPassword(a.out, "Current password")
	if err != nil {
		return err
	}
	next, err := promptPassword(a.out, "New password")
	if err != nil {
		return err
	}
	confirm, err := promptPassword(a.out, "Confirm new password")
	if err != nil {
		return err
	}
	if next != confirm {
		console{w: a.out}.Error("Passwords don't match")
		return errors.New("passwords don't match")
	}
	return a.profile.ChangePassword(ctx, current, next)
}

func (a *App) DeleteAccount(ctx context.Context) error {
	if !a.Confirm("Delete your account and all notes?") {
		return nil
	}
	a.endSession()
	return a.profile.DeleteAccount(ctx)
}

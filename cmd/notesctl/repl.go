package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"notesboard/internal/client"
)

// printlnFn is replaced in tests to capture output.
var printlnFn = fmt.Println

// notesCmd is the surface the REPL drives; App satisfies it.
type notesCmd interface {
	isLoggedIn() bool
	Signup(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	List(ctx context.Context) error
	Show(ctx context.Context, id string) error
	New(ctx context.Context) error
	Edit(ctx context.Context, id string) error
	Quick(ctx context.Context, title string) error
	Workspaces()
	Profile(ctx context.Context) error
	EditProfile(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	DeleteAccount(ctx context.Context) error
	Controller() *client.Notes
}

func (a *App) Controller() *client.Notes { return a.notes }

const (
	guestHelp  = "Available commands: signup, login, exit"
	memberHelp = "Available commands: (l)ist, show, new, quick, edit, pin, archive, delete, " +
		"select, bulk-archive, bulk-delete, export, export-selected, link, copy, email, drag, " +
		"search, tag, dates, sort, view, archived, workspace, workspaces, add-workspace, " +
		"refresh, profile, edit-profile, password, delete-account, logout, exit"
)

// runREPL reads commands from scanner until EOF or exit. Handler errors
// are reported by the handlers themselves through the notifier.
func runREPL(ctx context.Context, a notesCmd, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("notes> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}
		if cmd == "help" {
			if a.isLoggedIn() {
				printlnFn(memberHelp)
			} else {
				printlnFn(guestHelp)
			}
			continue
		}

		if !a.isLoggedIn() {
			switch cmd {
			case "signup":
				_ = a.Signup(ctx)
			case "login":
				_ = a.Login(ctx)
			default:
				printlnFn("Unknown command:", cmd)
			}
			continue
		}

		if err := dispatch(ctx, a, cmd, args); err != nil {
			printlnFn("error:", err)
		}
	}
}

func needArg(args []string, n int, usage string) error {
	if len(args) < n {
		return fmt.Errorf("usage: %s", usage)
	}
	return nil
}

func dispatch(ctx context.Context, a notesCmd, cmd string, args []string) error {
	notes := a.Controller()

	switch cmd {
	case "l", "list":
		return a.List(ctx)
	case "show":
		if err := needArg(args, 1, "show <id>"); err != nil {
			return err
		}
		return a.Show(ctx, args[0])
	case "new":
		return a.New(ctx)
	case "quick":
		return a.Quick(ctx, strings.Join(args, " "))
	case "edit":
		if err := needArg(args, 1, "edit <id>"); err != nil {
			return err
		}
		return a.Edit(ctx, args[0])
	case "pin":
		if err := needArg(args, 1, "pin <id>"); err != nil {
			return err
		}
		return notes.TogglePin(ctx, args[0])
	case "archive":
		if err := needArg(args, 1, "archive <id>"); err != nil {
			return err
		}
		return notes.ToggleArchive(ctx, args[0])
	case "delete":
		if err := needArg(args, 1, "delete <id>"); err != nil {
			return err
		}
		return notes.DeleteNote(ctx, args[0])
	case "select":
		for _, id := range args {
			notes.Dispatch(client.ToggleSelect{ID: id})
		}
		if len(args) == 0 {
			notes.Dispatch(client.SetSelection{})
		}
	case "bulk-archive":
		return notes.BulkArchive(ctx)
	case "bulk-delete":
		return notes.BulkDelete(ctx)
	case "export":
		if err := needArg(args, 2, "export <id> json|markdown|pdf"); err != nil {
			return err
		}
		return notes.ExportNote(args[0], client.ExportFormat(args[1]))
	case "export-selected":
		if err := needArg(args, 1, "export-selected json|markdown"); err != nil {
			return err
		}
		return notes.BulkExport(client.ExportFormat(args[0]))
	case "link":
		if err := needArg(args, 1, "link <id>"); err != nil {
			return err
		}
		return notes.CopyLink(args[0])
	case "copy":
		if err := needArg(args, 1, "copy <id>"); err != nil {
			return err
		}
		return notes.CopyContent(args[0])
	case "email":
		if err := needArg(args, 1, "email <id>"); err != nil {
			return err
		}
		return notes.ShareEmail(args[0])
	case "drag":
		if err := needArg(args, 2, "drag <id> <target-id>"); err != nil {
			return err
		}
		notes.Dispatch(client.DragStart{ID: args[0]})
		notes.Dispatch(client.DragOver{ID: args[1]})
		notes.Dispatch(client.Drop{TargetID: args[1]})
		notes.Dispatch(client.DragEnd{})
	case "search":
		notes.Dispatch(client.SetSearch{Term: strings.Join(args, " ")})
		return a.List(ctx)
	case "tag":
		if err := needArg(args, 1, "tag <tag>"); err != nil {
			return err
		}
		notes.Dispatch(client.ToggleTagFilter{Tag: args[0]})
		return a.List(ctx)
	case "dates":
		r, err := parseDateRange(args)
		if err != nil {
			return err
		}
		notes.Dispatch(client.SetDateRange{Range: r})
		return a.List(ctx)
	case "sort":
		if err := needArg(args, 1, "sort updated|created|title|priority"); err != nil {
			return err
		}
		notes.Dispatch(client.SetSort{Key: client.SortKey(args[0])})
		return a.List(ctx)
	case "view":
		if err := needArg(args, 1, "view grid|list"); err != nil {
			return err
		}
		notes.Dispatch(client.SetViewMode{Mode: client.ViewMode(args[0])})
	case "archived":
		on := len(args) == 0 || args[0] == "on"
		notes.Dispatch(client.SetArchiveView{Archived: on})
		return a.List(ctx)
	case "workspace":
		if err := needArg(args, 1, "workspace <id>"); err != nil {
			return err
		}
		notes.Dispatch(client.SetWorkspace{ID: args[0]})
		return a.List(ctx)
	case "workspaces":
		a.Workspaces()
	case "add-workspace":
		notes.AddWorkspace(strings.Join(args, " "))
	case "refresh":
		return notes.Fetch(ctx)
	case "profile":
		return a.Profile(ctx)
	case "edit-profile":
		return a.EditProfile(ctx)
	case "password":
		return a.ChangePassword(ctx)
	case "delete-account":
		return a.DeleteAccount(ctx)
	case "logout":
		return a.Logout(ctx)
	default:
		printlnFn("Unknown command:", cmd)
	}
	return nil
}

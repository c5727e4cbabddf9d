package client

import (
	"math/rand"
	"strings"
	"unicode"
)

const defaultWorkspaceID = "default"

var workspaceColors = []string{"blue", "green", "purple", "orange", "red", "yellow", "pink", "indigo"}

func DefaultWorkspaces() []Workspace {
	return []Workspace{
		{ID: defaultWorkspaceID, Name: "Personal", Color: "blue"},
		{ID: "work", Name: "Work", Color: "green"},
		{ID: "projects", Name: "Projects", Color: "purple"},
	}
}

// workspaceID lowercases name and replaces each whitespace run with "-".
func workspaceID(name string) string {
	var b strings.Builder
	inSpace := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('-')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// NewWorkspace builds a workspace from a user supplied name. pick chooses a
// color index in [0, n); nil means random. ok is false for a blank name.
func NewWorkspace(name string, pick func(n int) int) (ws Workspace, ok bool) {
	if strings.TrimSpace(name) == "" {
		return Workspace{}, false
	}
	if pick == nil {
		pick = rand.Intn
	}
	return Workspace{
		ID:    workspaceID(name),
		Name:  strings.TrimSpace(name),
		Color: workspaceColors[pick(len(workspaceColors))],
	}, true
}

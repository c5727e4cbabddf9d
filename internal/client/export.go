package client

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type ExportFormat string

const (
	FormatJSON     ExportFormat = "json"
	FormatMarkdown ExportFormat = "markdown"
	FormatPDF      ExportFormat = "pdf"
)

type File struct {
	Name string
	MIME string
	Data []byte
}

// exportBaseName replaces every character outside [A-Za-z0-9] with "_" and
// lowercases the result. Characters outside the BMP become two underscores.
func exportBaseName(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r > 0xFFFF:
			b.WriteString("__")
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func formatCreated(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("January 2, 2006")
}

func noteMarkdown(n Note, loc *time.Location) string {
	tags := strings.Join(n.Tags, ", ")
	if tags == "" {
		tags = "None"
	}
	return fmt.Sprintf("# %s\n\n%s\n\n---\n\n**Tags:** %s\n**Created:** %s",
		n.Title, n.Content, tags, formatCreated(n.CreatedAt, loc))
}

// ExportNote renders one note. ok is false for formats that produce no file.
func ExportNote(n Note, format ExportFormat, loc *time.Location) (f File, ok bool, err error) {
	name := exportBaseName(n.Title)
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(n, "", "  ")
		if err != nil {
			return File{}, false, fmt.Errorf("marshal note: %w", err)
		}
		return File{Name: name + ".json", MIME: "application/json", Data: data}, true, nil
	case FormatMarkdown:
		return File{Name: name + ".md", MIME: "text/markdown", Data: []byte(noteMarkdown(n, loc))}, true, nil
	}
	return File{}, false, nil
}

// ExportNotes renders several notes into one file named after today's UTC date.
func ExportNotes(notes []Note, format ExportFormat, now time.Time, loc *time.Location) (File, error) {
	base := "notes_export_" + now.UTC().Format("2006-01-02")
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(notes, "", "  ")
		if err != nil {
			return File{}, fmt.Errorf("marshal notes: %w", err)
		}
		return File{Name: base + ".json", MIME: "application/json", Data: data}, nil
	case FormatMarkdown:
		blocks := make([]string, len(notes))
		for i, n := range notes {
			blocks[i] = noteMarkdown(n, loc) + "\n\n"
		}
		return File{Name: base + ".md", MIME: "text/markdown", Data: []byte(strings.Join(blocks, "\n\n"))}, nil
	}
	return File{}, fmt.Errorf("unsupported export format %q", format)
}

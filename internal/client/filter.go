package client

import (
	"slices"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type Filter struct {
	Search    string
	Tags      []string
	Dates     DateRange
	Archived  bool
	Workspace string
}

// Derive returns the visible notes for f, sorted by key with pinned notes
// first. The input slice is not modified. Ties keep their input order.
func Derive(notes []Note, f Filter, key SortKey, now time.Time) []Note {
	term := strings.ToLower(f.Search)
	var start, end time.Time
	hasRange := f.Dates.Start != nil || f.Dates.End != nil
	if hasRange {
		start = time.Unix(0, 0)
		if f.Dates.Start != nil {
			start = *f.Dates.Start
		}
		end = now
		if f.Dates.End != nil {
			end = *f.Dates.End
		}
	}

	out := make([]Note, 0, len(notes))
	for _, n := range notes {
		if n.IsArchived != f.Archived {
			continue
		}
		if n.Workspace != f.Workspace && n.Workspace != "" {
			continue
		}
		if term != "" && !matchesSearch(n, term) {
			continue
		}
		if !hasAllTags(n, f.Tags) {
			continue
		}
		if hasRange && (n.CreatedAt.Before(start) || n.CreatedAt.After(end)) {
			continue
		}
		out = append(out, n)
	}

	sortNotes(out, key)
	return out
}

func matchesSearch(n Note, term string) bool {
	if strings.Contains(strings.ToLower(n.Title), term) {
		return true
	}
	if strings.Contains(strings.ToLower(n.Content), term) {
		return true
	}
	for _, tag := range n.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

func hasAllTags(n Note, tags []string) bool {
	for _, tag := range tags {
		if !slices.Contains(n.Tags, tag) {
			return false
		}
	}
	return true
}

func sortNotes(notes []Note, key SortKey) {
	var less func(a, b Note) bool
	switch key {
	case SortCreated:
		less = func(a, b Note) bool { return a.CreatedAt.After(b.CreatedAt) }
	case SortTitle:
		// Collator is not safe for concurrent use.
		col := collate.New(language.English)
		less = func(a, b Note) bool { return col.CompareString(a.Title, b.Title) < 0 }
	case SortPriority:
		less = func(a, b Note) bool { return a.Priority.rank() > b.Priority.rank() }
	default:
		less = func(a, b Note) bool { return a.UpdatedAt.After(b.UpdatedAt) }
	}

	sort.SliceStable(notes, func(i, j int) bool {
		a, b := notes[i], notes[j]
		if a.IsPinned != b.IsPinned {
			return a.IsPinned
		}
		return less(a, b)
	})
}

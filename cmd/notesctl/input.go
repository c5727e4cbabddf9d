package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"notesboard/internal/client"

	"golang.org/x/term"
)

// readPassword is replaced in tests to keep them off the terminal.
var readPassword = term.ReadPassword

func prompt(scanner *bufio.Scanner, w io.Writer, label string) (string, error) {
	if _, err := fmt.Fprint(w, label+": "); err != nil {
		return "", err
	}
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(scanner.Text()), nil
}

func promptPassword(w io.Writer, label string) (string, error) {
	if _, err := fmt.Fprint(w, label+": "); err != nil {
		return "", err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// parseDateRange reads "dates [from] [to]" arguments. "-" leaves a bound
// open; no arguments clear the range.
func parseDateRange(args []string) (client.DateRange, error) {
	var r client.DateRange
	bounds := []**time.Time{&r.Start, &r.End}
	for i, arg := range args {
		if i >= len(bounds) {
			return client.DateRange{}, fmt.Errorf("usage: dates [from|-] [to|-]")
		}
		if arg == "-" {
			continue
		}
		t, err := time.ParseInLocation(time.DateOnly, arg, time.Local)
		if err != nil {
			return client.DateRange{}, fmt.Errorf("date %q: %w", arg, err)
		}
		if i == 1 {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		*bounds[i] = &t
	}
	return r, nil
}

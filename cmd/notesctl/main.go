// Command notesctl is a terminal front end for the notes server.
package main

import (
	"bufio"
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
)

func main() {
	server := flag.String("s", envOr("NOTES_SERVER", "http://localhost:8081"), "notes server base URL")
	exportDir := flag.String("o", ".", "directory for exported files")
	flag.Parse()

	app, err := NewApp(*server, *exportDir, os.Stdout)
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app.Run(ctx, bufio.NewScanner(os.Stdin))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

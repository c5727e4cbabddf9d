package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notesboard/internal/auth"
	"notesboard/internal/config"
	"notesboard/internal/database"
	"notesboard/internal/live"
	"notesboard/internal/server"
	"notesboard/internal/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalln("Failed to open error_logger file")
	}
	defer func(logFile *os.File) {
		err := logFile.Close()
		if err != nil {
			log.Fatalln("Failed to close error_logger file")
		}
	}(logFile)

	errorLogger := slog.New(slog.NewTextHandler(io.MultiWriter(logFile, os.Stderr), nil))

	db := database.NewDatabaseManager(cfg.DatabaseDriver, cfg.DatabaseURL, database.ParseLogLevel(cfg.DBLogLevel))
	err = db.Connect()
	if err != nil {
		errorLogger.Error(fmt.Sprintf("error connecting to database: %v", err.Error()))
		return
	}

	defer func(db *database.Manager) {
		err := db.Close()
		if err != nil {
			errorLogger.Error(fmt.Sprintf("error closing database: %v", err.Error()))
		}
	}(db)

	redisClient, err := utils.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		errorLogger.Error(fmt.Sprintf("error creating redis client: %v", err.Error()))
		return
	}
	if redisClient != nil {
		defer redisClient.Close()
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			errorLogger.Error(fmt.Sprintf("error connecting to redis: %v", err.Error()))
			return
		}
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	hub := live.NewHub(redisClient, errorLogger, originChecker(cfg))
	r := server.NewRouter(server.Deps{
		Store:  db.Store(),
		Tokens: auth.NewTokens([]byte(cfg.JWTKey)),
		Hub:    hub,
		Logger: errorLogger,
		Config: cfg,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		errorLogger.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errorLogger.Error(fmt.Sprintf("error starting server: %v", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errorLogger.Error(fmt.Sprintf("error shutting down server: %v", err.Error()))
	}
}

// originChecker applies the CORS allow list to websocket upgrades.
func originChecker(cfg *config.Config) func(*http.Request) bool {
	if cfg.AllowAllOrigins {
		return func(*http.Request) bool { return true }
	}
	allowed := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		allowed[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := allowed[origin]; ok {
			return true
		}
		return origin == "http://"+r.Host || origin == "https://"+r.Host
	}
}

// Package server wires handlers, middleware and page routes into a gin engine.
package server

import (
	"log/slog"
	"net/http"

	"notesboard/internal/auth"
	"notesboard/internal/config"
	"notesboard/internal/database"
	"notesboard/internal/live"
	"notesboard/internal/notes"

	"github.com/gin-gonic/gin"
)

type Deps struct {
	Store  *database.Store
	Tokens *auth.Tokens
	Hub    *live.Hub
	Logger *slog.Logger
	Config *config.Config
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if !d.Config.IsProduction() {
		r.Use(gin.Logger())
	}
	r.Use(auth.CORSMiddleware(d.Config.AllowedOrigins, d.Config.AllowAllOrigins))

	authHandler := auth.NewHandler(d.Store, d.Tokens, d.Logger, d.Config.IsProduction())
	var events notes.Events
	if d.Hub != nil {
		events = d.Hub
	}
	notesHandler := notes.NewHandler(d.Store, d.Logger, events)

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{})
	})

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/signup", authHandler.Signup)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.GET("/me", auth.MiddleWareWithMessages(d.Tokens, "Authentication required", "Invalid or expired token"), authHandler.Me)

	account := authGroup.Group("")
	account.Use(auth.MiddleWareWithMessages(d.Tokens, "Unauthorized", "Invalid token"))
	account.GET("/profile", authHandler.GetProfile)
	account.PUT("/profile", authHandler.UpdateProfile)
	account.DELETE("/profile", authHandler.DeleteProfile)
	account.PUT("/password", authHandler.ChangePassword)

	notesGroup := api.Group("/notes")
	notesGroup.Use(auth.MiddleWare(d.Tokens))
	notesGroup.GET("", notesHandler.List)
	notesGroup.POST("", notesHandler.Create)
	notesGroup.PUT("", notesHandler.Update)
	notesGroup.DELETE("", notesHandler.Delete)
	notesGroup.POST("/bulk", notesHandler.Bulk)
	notesGroup.GET("/stats", notesHandler.Stats)
	notesGroup.GET("/live", notesHandler.Live)
	notesGroup.GET("/:id", notesHandler.Get)

	registerPages(r, d.Tokens)
	return r
}

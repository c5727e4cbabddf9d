package server

import (
	"html/template"
	"net/http"

	"notesboard/internal/auth"

	"github.com/gin-gonic/gin"
)

var shell = template.Must(template.New("shell").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}} - Notes App</title></head>
<body><div id="app" data-page="{{.Page}}"></div></body>
</html>
`))

type page struct {
	Title string
	Page  string
}

func render(title string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Status(http.StatusOK)
		ctx.Header("Content-Type", "text/html; charset=utf-8")
		_ = shell.Execute(ctx.Writer, page{Title: title, Page: ctx.Request.URL.Path})
	}
}

func registerPages(r *gin.Engine, tokens *auth.Tokens) {
	r.GET("/", func(ctx *gin.Context) {
		ctx.Redirect(http.StatusFound, auth.DashboardPage)
	})

	// each section also gates everything below it
	for _, sec := range []struct{ path, title, nested string }{
		{"/dashboard", "Dashboard", "Dashboard"},
		{"/notes", "Notes", "Note"},
		{"/profile", "Profile", "Profile"},
	} {
		g := r.Group(sec.path, auth.ProtectPages(tokens))
		g.GET("", render(sec.title))
		g.GET("/*path", render(sec.nested))
	}

	guest := r.Group("/auth")
	guest.Use(auth.GuestOnly(tokens))
	guest.GET("/login", render("Sign in"))
	guest.GET("/signup", render("Sign up"))
}

package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	LoginPage     = "/auth/login"
	DashboardPage = "/dashboard"
)

func (t *Tokens) validCookie(ctx *gin.Context) bool {
	tokenString, err := ctx.Cookie(CookieName)
	if err != nil || tokenString == "" {
		return false
	}
	_, err = t.Verify(tokenString)
	return err == nil
}

// ProtectPages sends visitors without a valid credential to the login page.
func ProtectPages(tokens *Tokens) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !tokens.validCookie(ctx) {
			ctx.Redirect(http.StatusFound, LoginPage)
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// GuestOnly sends signed-in visitors away from the auth pages.
func GuestOnly(tokens *Tokens) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if tokens.validCookie(ctx) {
			ctx.Redirect(http.StatusFound, DashboardPage)
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

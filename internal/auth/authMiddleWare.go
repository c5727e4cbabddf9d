package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	CookieName = "token"

	contextUserKey = "current_user"
)

// MiddleWare rejects requests without a valid token cookie and stores the
// verified Identity on the context.
func MiddleWare(tokens *Tokens) gin.HandlerFunc {
	return MiddleWareWithMessages(tokens, "Unauthorized", "Invalid or expired token")
}

func MiddleWareWithMessages(tokens *Tokens, missing, invalid string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString, err := ctx.Cookie(CookieName)
		if err != nil || tokenString == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": missing})
			return
		}

		id, err := tokens.Verify(tokenString)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": invalid})
			return
		}
		if id.UserID == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": invalid})
			return
		}

		ctx.Set(contextUserKey, id)
		ctx.Next()
	}
}

// CurrentUser returns the Identity stored by MiddleWare.
func CurrentUser(ctx *gin.Context) (Identity, bool) {
	v, exists := ctx.Get(contextUserKey)
	if !exists {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

func setTokenCookie(ctx *gin.Context, token string, secure bool) {
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(TokenTTL.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearTokenCookie(ctx *gin.Context, secure bool) {
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

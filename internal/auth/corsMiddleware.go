package auth

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware allows credentialed requests from allowedOrigins. With
// allowAll set every origin is reflected back.
func CORSMiddleware(allowedOrigins []string, allowAll bool) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept", "X-Requested-With", "Cache-Control"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		AllowWebSockets:  true,
		MaxAge:           24 * time.Hour,
	}
	switch {
	case allowAll:
		cfg.AllowOriginFunc = func(string) bool { return true }
	case len(allowedOrigins) == 0:
		return func(ctx *gin.Context) { ctx.Next() }
	default:
		cfg.AllowOrigins = allowedOrigins
	}
	return cors.New(cfg)
}

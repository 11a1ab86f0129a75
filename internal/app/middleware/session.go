package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-tripboard/internal/app/models"
)

// SessionReader resolves the signed-in user of a request.
type SessionReader interface {
	UserFromRequest(r *http.Request) (*models.User, error)
}

// ProtectedPrefixes lists the pages and API roots that require a confirmed user.
var ProtectedPrefixes = []string{
	"/my-itineraries",
	"/country",
	"/search-page",
	"/api/itineraries",
	"/api/search",
	"/api/items",
}

// Session puts the signed-in user, if any, on the context. Invalid or
// expired tokens are treated as anonymous.
func Session(sessions SessionReader, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := sessions.UserFromRequest(c.Request)
		if err != nil {
			logger.Debug("Ignoring invalid session", zap.String("path", c.Request.URL.Path), zap.Error(err))
		}
		if user != nil {
			SetUser(c, user)
		}
		c.Next()
	}
}

func isProtected(path string) bool {
	for _, prefix := range ProtectedPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// Protect guards ProtectedPrefixes. API callers get JSON errors, page
// visitors are redirected. Signed-in visitors of the landing page go
// straight to their itineraries. Runs after Session.
func Protect() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		user := GetUserFromContext(c)

		if path == "/" && user != nil {
			c.Redirect(http.StatusFound, "/my-itineraries")
			c.Abort()
			return
		}
		if !isProtected(path) {
			c.Next()
			return
		}

		switch {
		case user == nil:
			if isAPI(path) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
				return
			}
			c.Redirect(http.StatusFound, "/?auth=required")
			c.Abort()
		case !user.EmailConfirmed:
			if isAPI(path) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Email not confirmed"})
				return
			}
			c.Redirect(http.StatusFound, "/verify-email")
			c.Abort()
		default:
			c.Next()
		}
	}
}

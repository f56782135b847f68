package auth

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionCookie is the cookie the web client stores its session token in.
const SessionCookie = "tw_session"

const callerKey = "auth.caller"

// Identity resolves the caller from a bearer token or session cookie and
// stores it on the request context. Requests without a valid token proceed
// anonymously; enforcement happens in the service layer, which knows whether
// owner scoping is on.
func Identity(verifier *Verifier, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if verifier == nil {
			c.Next()
			return
		}

		token := tokenFromRequest(c)
		if token == "" {
			c.Next()
			return
		}

		owner, err := verifier.Verify(token)
		if err != nil {
			log.Debug("session token rejected", "path", c.Request.URL.Path, "error", err)
			c.Next()
			return
		}

		c.Set(callerKey, owner)
		c.Next()
	}
}

// CallerID returns the authenticated owner id, if any.
func CallerID(c *gin.Context) (uuid.UUID, bool) {
	value, ok := c.Get(callerKey)
	if !ok {
		return uuid.Nil, false
	}
	owner, ok := value.(uuid.UUID)
	return owner, ok
}

func tokenFromRequest(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}

	cookie, err := c.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return cookie
}

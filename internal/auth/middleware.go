package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// SessionCookie is the cookie the login handler sets for browser clients.
const SessionCookie = "fp_session"

const (
	ctxFacultyID   = "faculty_id"
	ctxFacultyName = "faculty_name"
	ctxSessionID   = "session_id"
)

// SessionAuth enforces a signed token whose session id is still live in the
// store. The token is accepted as a bearer header or a cookie.
func SessionAuth(signingKey, issuer string, sessions SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := bearerToken(c)
		if tokenStr == "" {
			if cookie, err := c.Cookie(SessionCookie); err == nil {
				tokenStr = cookie
			}
		}
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
			return
		}

		claims, err := ParseToken(tokenStr, signingKey, issuer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
			return
		}
		alive, err := sessions.Alive(c.Request.Context(), claims.ID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "system error, try again"})
			return
		}
		if !alive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
			return
		}

		c.Set(ctxFacultyID, claims.FacultyID)
		c.Set(ctxFacultyName, claims.Name)
		c.Set(ctxSessionID, claims.ID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authz := c.GetHeader("Authorization")
	if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return ""
	}
	return strings.TrimSpace(authz[len("bearer "):])
}

// FacultyID returns the logged-in faculty id set by SessionAuth.
func FacultyID(c *gin.Context) (int, bool) {
	v, ok := c.Get(ctxFacultyID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int)
	return id, ok
}

// FacultyName returns the logged-in display name set by SessionAuth.
func FacultyName(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxFacultyName)
	if !ok {
		return "", false
	}
	name, ok := v.(string)
	return name, ok
}

// SessionID returns the live session id set by SessionAuth.
func SessionID(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxSessionID)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"qwiklearn/config"
	"qwiklearn/logger"
)

// SessionCookie is the name of the login session cookie
const SessionCookie = "session"

const sessionLifetime = 7 * 24 * time.Hour

// IssueSession signs a session token for the user and sets it as an
// HttpOnly cookie on the response.
func IssueSession(c *gin.Context, userID uint) error {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(sessionLifetime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(config.ConfigInstance.SecretKey))
	if err != nil {
		return err
	}
	c.SetCookie(SessionCookie, tokenString, int(sessionLifetime.Seconds()), "/", "", false, true)
	return nil
}

// ClearSession removes the session cookie
func ClearSession(c *gin.Context) {
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
}

// ParseSession validates a session token and returns the user ID
func ParseSession(tokenString string) (uint, bool) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(config.ConfigInstance.SecretKey), nil
	})
	if err != nil || !token.Valid {
		return 0, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}
	userID, ok := claims["user_id"].(float64)
	if !ok || userID <= 0 {
		return 0, false
	}
	return uint(userID), true
}

// Middleware gates protected routes. Browser page requests without a
// valid session are redirected to the login view; JSON requests get a
// 401 response.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(SessionCookie)
		if err == nil {
			if userID, ok := ParseSession(tokenString); ok {
				c.Set("userID", userID)
				c.Next()
				return
			}
			logger.Log.Debugw("invalid session token", "path", c.Request.URL.Path)
		}

		if wantsHTML(c) {
			c.Redirect(http.StatusFound, "/login")
		} else {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		}
		c.Abort()
	}
}

// CurrentUserID returns the authenticated user's id from the request
// context. Only valid below Middleware.
func CurrentUserID(c *gin.Context) uint {
	return c.GetUint("userID")
}

func wantsHTML(c *gin.Context) bool {
	if c.Request.Method != http.MethodGet {
		return false
	}
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, "text/html") || accept == "" || accept == "*/*"
}

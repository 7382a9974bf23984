package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// AdminPinHeader carries the operator PIN on admin requests.
const AdminPinHeader = "X-Admin-Pin"

// AdminPinMiddleware accepts requests whose PIN matches the bcrypt hash, or
// the plain PIN when no hash is configured. Preflight requests pass through.
func AdminPinMiddleware(pin, pinHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		if pin == "" && pinHash == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Admin access is not configured"})
			return
		}

		supplied := c.GetHeader(AdminPinHeader)
		if supplied == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing admin PIN"})
			return
		}

		var ok bool
		if pinHash != "" {
			ok = bcrypt.CompareHashAndPassword([]byte(pinHash), []byte(supplied)) == nil
		} else {
			ok = subtle.ConstantTimeCompare([]byte(pin), []byte(supplied)) == 1
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized admin access"})
			return
		}

		c.Set("isAdmin", true)
		c.Next()
	}
}

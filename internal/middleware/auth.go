package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// WebhookAuth validates the shared-secret token the gateway appends to
// the webhook URL as a query parameter. An empty expected token disables
// the check entirely, matching deployments that rely on URL secrecy.
func WebhookAuth(expectedToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if expectedToken == "" {
			c.Next()
			return
		}

		token := c.Query("token")
		if subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
			logrus.WithFields(logrus.Fields{
				"path":      c.Request.URL.Path,
				"client_ip": c.ClientIP(),
			}).Warn("Webhook token mismatch")

			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Invalid webhook token",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// Package respond centralizes the JSON response shapes of the HTTP surface.
package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON writes payload with the given status code.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// OK writes a 200 response. Webhook acknowledgments go through here; the
// transport treats any 2xx as delivered.
func OK(c *gin.Context, payload any) {
	JSON(c, http.StatusOK, payload)
}

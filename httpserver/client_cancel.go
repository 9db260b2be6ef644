package httpserver

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
)

// StatusClientClosedRequest is the nginx convention for a client that hung up first.
const StatusClientClosedRequest = 499

// HandleClientCancel records 499 when the client went away before the handler finished.
func HandleClientCancel(c *gin.Context) {
	c.Next()
	if errors.Is(c.Request.Context().Err(), context.Canceled) {
		c.Status(StatusClientClosedRequest)
	}
}

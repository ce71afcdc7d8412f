// Package httperr maps usecase errors onto JSON error responses.
package httperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"leadbook-backend/pkg/logger"
)

// FieldError is a validation failure tied to one input field.
type FieldError interface {
	error
	ValidationField() string
}

// Respond writes err as a JSON error. Validation failures become 400 with the
// failing field, errors matching notFound become 404, anything else is logged
// and answered with a generic 500 "Failed to <action>".
func Respond(c *gin.Context, err error, action string, notFound ...error) {
	var fe FieldError
	if errors.As(err, &fe) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fe.Error(), "field": fe.ValidationField()})
		return
	}
	for _, target := range notFound {
		if errors.Is(err, target) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
	}

	logger.For("http").WithError(err).Errorf("[HTTP] %s %s: failed to %s", c.Request.Method, c.FullPath(), action)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action})
}

// BadRequest writes a 400 with message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

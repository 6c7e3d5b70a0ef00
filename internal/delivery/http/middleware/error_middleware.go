package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ZinoM21/any-cv-api/internal/delivery/http/response"
	"github.com/ZinoM21/any-cv-api/pkg/apperror"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Check if there are errors appended to the context
		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			var appErr *apperror.AppError
			if errors.As(err, &appErr) {
				response.Error(c, appErr.Code, appErr.Message, nil)
			} else {
				// Never expose internal error details to clients. Log the
				// actual error server-side and send a generic message.
				slog.Error("Internal server error",
					"error", err,
					"path", c.FullPath(),
					"method", c.Request.Method)
				response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
			}
		}
	}
}

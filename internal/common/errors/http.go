// internal/common/errors/http.go
package errors

import (
	"github.com/gin-gonic/gin"
)

// Handler renders the last error attached to the gin context as
// {"status": "fail"|"error", "message": ...}. 4xx responses use "fail".
func Handler(log Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		stdErr := Normalize(c.Errors.Last().Err)
		status := HTTPStatus(stdErr.Code)

		body := gin.H{"status": "fail", "message": stdErr.Message}
		if status >= 500 {
			body["status"] = "error"
			log.Error("request failed", map[string]interface{}{
				"method":    c.Request.Method,
				"path":      c.FullPath(),
				"errorCode": string(stdErr.Code),
				"details":   stdErr.Details,
			})
			if stdErr.Code == ErrCodeInternal {
				body["message"] = "Something went wrong"
			}
		} else if stdErr.Code == ErrCodeValidationFailed && stdErr.Details != "" {
			body["message"] = stdErr.Message + ": " + stdErr.Details
		}

		c.JSON(status, body)
	}
}

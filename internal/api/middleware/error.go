package middleware

import (
	"fmt"
	"net/http"

	"f1-fantasy/internal/api/models"
	"f1-fantasy/internal/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler middleware handles panics and errors
func ErrorHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.WithHTTPContext(c.Request.Method, c.Request.URL.Path, c.ClientIP()).
			WithField("panic", fmt.Sprint(recovered)).
			Error("Recovered from panic")

		msg := "An unexpected error occurred"
		if s, ok := recovered.(string); ok {
			msg = s
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: msg,
			},
		})
	})
}

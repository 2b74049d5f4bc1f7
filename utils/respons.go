package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/servhunt/digimenu/apperrors"
)

type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

// RespondError maps the error kind to an HTTP status. 5xx causes are logged
// server-side in full; the client only sees a generic message.
func RespondError(c *gin.Context, err error) {
	code := apperrors.HTTPStatus(err)
	message := err.Error()
	if code >= http.StatusInternalServerError {
		if ErrorLogger != nil {
			ErrorLogger.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		}
		message = "Internal server error"
		if apperrors.KindOf(err) == apperrors.Provider {
			message = "Service temporarily unavailable. Please try again."
		}
	}
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: message,
	})
}

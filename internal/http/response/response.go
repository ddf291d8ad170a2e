package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Spirits-Studio/zakeke-lite/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// RespondAPIError writes err with the status and code of the *apierr.Error it wraps,
// or as a 500.
func RespondAPIError(c *gin.Context, err error) {
	var ae *apierr.Error
	if errors.As(err, &ae) && ae.Status != 0 {
		RespondError(c, ae.Status, ae.Code, ae)
		return
	}
	RespondError(c, http.StatusInternalServerError, "internal", err)
}

package handler

import (
	"net/http"

	"github.com/dcizov/t3-starter-template/internal/dto"
	"github.com/dcizov/t3-starter-template/internal/service"
	"github.com/gin-gonic/gin"
)

// flowErrorStatus maps each error kind to its HTTP status. USER_NOT_FOUND
// and INVALID_CREDENTIALS share a status and message so unauthenticated
// callers cannot probe which emails are registered.
var flowErrorStatus = map[service.ErrorKind]int{
	service.KindConflict:           http.StatusConflict,
	service.KindUserNotFound:       http.StatusUnauthorized,
	service.KindInvalidCredentials: http.StatusUnauthorized,
	service.KindEmailNotVerified:   http.StatusUnauthorized,
	service.KindTokenNotFound:      http.StatusUnauthorized,
	service.KindInvalidToken:       http.StatusBadRequest,
	service.KindTokenExpired:       http.StatusBadRequest,
	service.KindExpiredToken:       http.StatusBadRequest,
	service.KindEmailNotExist:      http.StatusBadRequest,
	service.KindUpdateFailed:       http.StatusInternalServerError,
	service.KindEmailNotFound:      http.StatusNotFound,
	service.KindMissingToken:       http.StatusBadRequest,
	service.KindInvalidPassword:    http.StatusBadRequest,
	service.KindPasswordMismatch:   http.StatusBadRequest,
}

var flowErrorMessage = map[service.ErrorKind]string{
	service.KindConflict:           "User already exists",
	service.KindUserNotFound:       "Invalid email or password",
	service.KindInvalidCredentials: "Invalid email or password",
	service.KindEmailNotVerified:   "Email not verified",
	service.KindTokenNotFound:      "Two-factor code not found",
	service.KindInvalidToken:       "Invalid token",
	service.KindTokenExpired:       "Token has expired",
	service.KindExpiredToken:       "Token has expired",
	service.KindEmailNotExist:      "Email does not exist",
	service.KindUpdateFailed:       "Failed to update user",
	service.KindEmailNotFound:      "Email not found",
	service.KindMissingToken:       "Missing token",
	service.KindInvalidPassword:    "Current password is incorrect",
	service.KindPasswordMismatch:   "New password and confirm new password do not match",
}

// respondFlowError writes the typed-error envelope for a flow failure.
// Unknown kinds collapse into a generic 500 so internals never leak.
func respondFlowError(c *gin.Context, err error) {
	kind := service.KindOf(err)

	status, ok := flowErrorStatus[kind]
	if !ok {
		c.JSON(http.StatusInternalServerError, dto.FlowResponse{
			Success: false,
			Error:   string(service.KindInternal),
			Message: "An unexpected error occurred",
		})
		return
	}

	c.JSON(status, dto.FlowResponse{
		Success: false,
		Error:   string(kind),
		Message: flowErrorMessage[kind],
	})
}

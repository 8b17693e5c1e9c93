package handler

import (
	"net/http"

	"github.com/dcizov/t3-starter-template/internal/dto"
	"github.com/dcizov/t3-starter-template/internal/service"
	"github.com/gin-gonic/gin"
)

// Context keys set by SessionAuthMiddleware
const (
	ContextUserID       = "user_id"
	ContextSessionToken = "session_token"
)

// SessionAuthMiddleware authenticates requests by the session cookie. The
// cookie value is an opaque token looked up in the session store; expired
// rows are deleted lazily and the cookie cleared.
func SessionAuthMiddleware(sessions service.SessionService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Session cookie is required",
			})
			c.Abort()
			return
		}

		session, err := sessions.GetByToken(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Invalid or expired session",
			})
			c.Abort()
			return
		}

		if session.IsExpired() {
			_, _ = sessions.Delete(c.Request.Context(), session.Token)
			http.SetCookie(c.Writer, sessions.ExpiredCookie())

			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Invalid or expired session",
			})
			c.Abort()
			return
		}

		c.Set(ContextUserID, session.UserID)
		c.Set(ContextSessionToken, session.Token)

		c.Next()
	}
}

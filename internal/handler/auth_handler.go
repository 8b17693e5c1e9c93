package handler

import (
	"net/http"
	"time"

	"github.com/dcizov/t3-starter-template/internal/domain"
	"github.com/dcizov/t3-starter-template/internal/dto"
	"github.com/dcizov/t3-starter-template/internal/service"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService    service.AuthService
	sessionService service.SessionService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService, sessionService service.SessionService) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		sessionService: sessionService,
	}
}

// Register handles user registration
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	result, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondFlowError(c, err)
		return
	}

	emailSent := result.VerificationEmailSent
	c.JSON(http.StatusCreated, dto.FlowResponse{
		Success:   true,
		Message:   "User registered successfully",
		EmailSent: &emailSent,
		User:      userView(result.User),
	})
}

// Login handles user login, including the two-factor resubmission
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondFlowError(c, err)
		return
	}

	if result.TwoFactor {
		c.JSON(http.StatusOK, dto.FlowResponse{
			Success:   true,
			TwoFactor: true,
			Message:   "Two-factor code sent",
		})
		return
	}

	http.SetCookie(c.Writer, h.sessionService.Cookie(result.Session))

	c.JSON(http.StatusOK, dto.FlowResponse{
		Success: true,
		Message: "Login successful",
		User:    userView(result.User),
	})
}

// Logout deletes the session row and clears the session cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	token, exists := c.Get(ContextSessionToken)
	if !exists {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "No active session",
		})
		return
	}

	deleted, err := h.sessionService.Delete(c.Request.Context(), token.(string))
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: "Failed to delete session",
		})
		return
	}
	if !deleted {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "No active session",
		})
		return
	}

	http.SetCookie(c.Writer, h.sessionService.ExpiredCookie())

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Logged out successfully",
	})
}

// GetMe returns the current authenticated user
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, exists := c.Get(ContextUserID)
	if !exists {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "User ID not found in context",
		})
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userID.(string))
	if err != nil {
		respondFlowError(c, err)
		return
	}

	c.JSON(http.StatusOK, userView(user))
}

// VerifyEmail consumes an email verification token
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req dto.VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	if err := h.authService.VerifyEmail(c.Request.Context(), req.Token); err != nil {
		respondFlowError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FlowResponse{
		Success: true,
		Message: "Email verified!",
	})
}

// ResetPassword starts the password reset flow
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	result, err := h.authService.RequestPasswordReset(c.Request.Context(), req.Email)
	if err != nil {
		respondFlowError(c, err)
		return
	}

	emailSent := result.PasswordResetEmailSent
	c.JSON(http.StatusOK, dto.FlowResponse{
		Success:   true,
		Message:   "Reset email sent!",
		EmailSent: &emailSent,
	})
}

// SetNewPassword completes the password reset flow
func (h *AuthHandler) SetNewPassword(c *gin.Context) {
	var req dto.SetNewPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	if err := h.authService.SetNewPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		respondFlowError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FlowResponse{
		Success: true,
		Message: "Password updated!",
	})
}

// OAuthCallback signs a user in from a normalized provider profile
func (h *AuthHandler) OAuthCallback(c *gin.Context) {
	var req dto.OAuthCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	result, err := h.authService.OAuthSignIn(c.Request.Context(), &req)
	if err != nil {
		respondFlowError(c, err)
		return
	}

	http.SetCookie(c.Writer, h.sessionService.Cookie(result.Session))

	c.JSON(http.StatusOK, dto.FlowResponse{
		Success: true,
		Message: "Login successful",
		User:    userView(result.User),
	})
}

// userView converts a sanitized domain user to its response shape
func userView(user *domain.User) *dto.UserView {
	view := &dto.UserView{
		ID:                 user.ID,
		FirstName:          user.FirstName,
		LastName:           user.LastName,
		Name:               user.Name,
		Email:              user.Email,
		Image:              user.Image,
		Role:               user.Role,
		Bio:                user.Bio,
		IsTwoFactorEnabled: user.IsTwoFactorEnabled,
	}

	if user.EmailVerified != nil {
		verified := user.EmailVerified.Format(time.RFC3339)
		view.EmailVerified = &verified
	}

	return view
}

package dto

// RegisterRequest represents a registration request
type RegisterRequest struct {
	FirstName string `json:"first_name" binding:"required,max=255"`
	LastName  string `json:"last_name" binding:"required,max=255"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
}

// LoginRequest represents a login request. Code carries the two-factor code
// when the client re-submits after a challenge.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Code     string `json:"code"`
}

// VerifyEmailRequest carries an email verification token
type VerifyEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

// ResetPasswordRequest starts the password reset flow
type ResetPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// SetNewPasswordRequest completes the password reset flow
type SetNewPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password" binding:"required,min=8"`
}

// OAuthCallbackRequest carries the normalized profile produced by an
// identity provider after its own handshake
type OAuthCallbackRequest struct {
	Provider          string `json:"provider" binding:"required"`
	ProviderAccountID string `json:"provider_account_id" binding:"required"`
	Email             string `json:"email" binding:"required,email"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	Image             string `json:"image"`
}

// UpdateSettingsRequest is a partial profile update. The three password
// fields form the password-change sub-flow and must be supplied together.
type UpdateSettingsRequest struct {
	FirstName          *string `json:"first_name"`
	LastName           *string `json:"last_name"`
	Email              *string `json:"email" binding:"omitempty,email"`
	Bio                *string `json:"bio"`
	IsTwoFactorEnabled *bool   `json:"is_two_factor_enabled"`
	CurrentPassword    string  `json:"current_password"`
	NewPassword        string  `json:"new_password"`
	ConfirmNewPassword string  `json:"confirm_new_password"`
}

// UserView represents user information in responses, without the password hash
type UserView struct {
	ID                 string  `json:"id"`
	FirstName          string  `json:"first_name"`
	LastName           string  `json:"last_name"`
	Name               string  `json:"name"`
	Email              string  `json:"email"`
	EmailVerified      *string `json:"email_verified"`
	Image              *string `json:"image,omitempty"`
	Role               string  `json:"role"`
	Bio                *string `json:"bio,omitempty"`
	IsTwoFactorEnabled bool    `json:"is_two_factor_enabled"`
}

// FlowResponse is the envelope returned by the auth flows
type FlowResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message,omitempty"`
	Error     string    `json:"error,omitempty"`
	TwoFactor bool      `json:"two_factor,omitempty"`
	EmailSent *bool     `json:"email_sent,omitempty"`
	User      *UserView `json:"user,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string `json:"message"`
}

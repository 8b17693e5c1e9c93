package mail

import (
	"context"
	"fmt"
	"net/url"
)

// SendVerificationEmail sends the email-verification link for a freshly
// issued verification token.
func SendVerificationEmail(ctx context.Context, mailer Mailer, baseURL, email, token string) error {
	link := fmt.Sprintf("%s/verify-email?token=%s", baseURL, url.QueryEscape(token))
	body := fmt.Sprintf(`
		<p>Hello,</p>
		<p>Please click the link below to verify your email address:</p>
		<a href=%q>Verify Email</a>
		<p>If you did not request this, please ignore this email.</p>
	`, link)

	return mailer.Send(ctx, email, "Email Verification", body)
}

// SendPasswordResetEmail sends the password reset link for a freshly issued
// reset token.
func SendPasswordResetEmail(ctx context.Context, mailer Mailer, baseURL, email, token string) error {
	link := fmt.Sprintf("%s/set-new-password?token=%s", baseURL, url.QueryEscape(token))
	body := fmt.Sprintf(`
		<p>Hello,</p>
		<p>You requested to reset your password. Click the link below to reset it:</p>
		<a href=%q>Reset Password</a>
		<p>If you did not request this, please ignore this email.</p>
	`, link)

	return mailer.Send(ctx, email, "Password Reset Request", body)
}

// SendTwoFactorEmail sends the short-lived two-factor login code.
func SendTwoFactorEmail(ctx context.Context, mailer Mailer, email, code string) error {
	body := fmt.Sprintf(`
		<p>Hello,</p>
		<p>Your two-factor authentication code is:</p>
		<p><strong>%s</strong></p>
		<p>The code expires in 5 minutes. If you did not request this, please ignore this email.</p>
	`, code)

	return mailer.Send(ctx, email, "Two-Factor Authentication Code", body)
}

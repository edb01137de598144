package dto

import "time"

// SetupRequest payload for explicit first-admin bootstrap.
type SetupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest payload for admin login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest payload for authenticated password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// SetPasswordRequest payload for first-login password setup.
type SetPasswordRequest struct {
	NewPassword string `json:"new_password"`
}

// ResetRequest payload for requesting a password reset token.
type ResetRequest struct {
	Email string `json:"email"`
}

// ResetConfirmRequest payload for consuming a reset token.
type ResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// UserResponse is the admin identity returned to the client.
type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SessionResponse describes the issued session. Tokens travel only in
// httpOnly cookies, never in response bodies.
type SessionResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
}

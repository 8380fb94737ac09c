package dto

// ForgotPasswordReq is the body of POST /api/auth/forgot-password.
type ForgotPasswordReq struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordReq is the body of POST /api/auth/reset-password.
type ResetPasswordReq struct {
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

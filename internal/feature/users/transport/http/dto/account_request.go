// Package dto defines the request bodies of the account endpoints.
package dto

// UpdateProfileReq is the body of PUT /api/users/update. Omitted fields are left unchanged;
// a field sent as "" is validated and rejected.
type UpdateProfileReq struct {
	Name  *string `json:"name" binding:"omitempty,min=4,max=20,username"`
	Email *string `json:"email" binding:"omitempty,email"`
}

// ChangePasswordReq is the body of PUT /api/users/password.
type ChangePasswordReq struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

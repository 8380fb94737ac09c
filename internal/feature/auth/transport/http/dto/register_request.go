package dto

// RegisterReq is the body of POST /api/auth/register.
// The password policy is enforced by the usecase so register, reset and change share it.
type RegisterReq struct {
	Name     string `json:"name" binding:"required,min=4,max=20,username"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRes acknowledges a registration.
type RegisterRes struct {
	Message string  `json:"message"`
	User    UserRes `json:"user"`
}

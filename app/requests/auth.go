package requests

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required,between=3,50"`
	Password string `json:"password" validate:"required,min=6"`
}

// ChangePasswordRequest is the body of POST /api/auth/change-password.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

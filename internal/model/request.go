package model

// LoginForm is the form-encoded credential pair posted to /api/v1/auth/login.
type LoginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type UserCreateRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Username string  `json:"username" binding:"required,min=3,max=64"`
	Password string  `json:"password" binding:"required,min=8,max=128"`
	FullName *string `json:"full_name"`
}

// UserUpdateRequest carries a partial update; nil fields are left unchanged.
type UserUpdateRequest struct {
	Email    *string `json:"email" binding:"omitempty,email"`
	Username *string `json:"username" binding:"omitempty,min=3,max=64"`
	FullName *string `json:"full_name"`
	Password *string `json:"password" binding:"omitempty,min=8,max=128"`
}

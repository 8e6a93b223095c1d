// Package dto - các cấu trúc input/output cho domain auth.
package dto

// RegisterInput dữ liệu đăng ký tài khoản mới.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=1,max=100,no_xss"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,strong_password"`
}

// LoginInput dữ liệu đăng nhập.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordInput dữ liệu đổi mật khẩu.
type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,strong_password"`
}

// UserCreateInput dữ liệu tạo user (dành cho admin).
type UserCreateInput struct {
	Name     string `json:"name" validate:"required,min=1,max=100,no_xss"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,strong_password"`
	Role     string `json:"role" validate:"omitempty,oneof=admin user"`
	IsActive bool   `json:"isActive"`
}

// UserUpdateInput dữ liệu cập nhật user (partial update, chỉ các field được gửi).
type UserUpdateInput struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=100,no_xss"`
	Role     *string `json:"role,omitempty" validate:"omitempty,oneof=admin user"`
	IsActive *bool   `json:"isActive,omitempty"`
}

// UserResponse thông tin user trả về cho client (không chứa password).
type UserResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	IsActive    bool   `json:"isActive"`
	LastLoginAt int64  `json:"lastLoginAt,omitempty"`
	CreatedAt   int64  `json:"createdAt"`
	UpdatedAt   int64  `json:"updatedAt"`
}

// LoginResult kết quả đăng nhập: token JWT và thông tin user.
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt int64        `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

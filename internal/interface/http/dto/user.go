package dto

// RegisterRequest HTTP层注册请求
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=50" example:"张三"`
	Email    string `json:"email" binding:"required,email" example:"zhangsan@example.com"`
	Password string `json:"password" binding:"required,min=6,max=72" example:"secret123"`
}

// LoginRequest HTTP层登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"zhangsan@example.com"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

// RefreshRequest 刷新Token请求
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// UpdateProfileRequest 修改个人资料，空值保持不变
type UpdateProfileRequest struct {
	Name   string `json:"name" binding:"omitempty,max=50" example:"李四"`
	Avatar string `json:"avatar" binding:"omitempty,max=500" example:"/uploads/avatars/1.jpg"`
}

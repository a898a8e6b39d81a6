package user

import (
	"strings"
	"time"
)

// Role 用户角色
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsValid 判断角色是否合法
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User 用户实体（聚合根）
// 密码为bcrypt哈希值，领域实体不依赖GORM tag
type User struct {
	ID        uint
	Name      string
	Email     string
	Password  string
	Role      Role
	Avatar    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建新用户（工厂方法）
// hashedPassword必须是bcrypt加密后的密码
func NewUser(name, email, hashedPassword string, role Role) *User {
	if !role.IsValid() {
		role = RoleUser
	}
	now := time.Now()
	return &User{
		Name:      strings.TrimSpace(name),
		Email:     NormalizeEmail(email),
		Password:  hashedPassword,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsAdmin 是否管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UpdateProfile 更新资料
func (u *User) UpdateProfile(name, avatar string) {
	if name = strings.TrimSpace(name); name != "" {
		u.Name = name
	}
	if avatar != "" {
		u.Avatar = avatar
	}
	u.UpdatedAt = time.Now()
}

// NormalizeEmail 邮箱统一小写去空格，唯一索引基于该值
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

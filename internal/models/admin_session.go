package models

// UserRole defines back-office access levels.
type UserRole string

const (
	UserRoleAdmin  UserRole = "ADMIN"
	UserRoleEditor UserRole = "EDITOR"
)

func (r UserRole) IsValid() bool {
	return r == UserRoleAdmin || r == UserRoleEditor
}

// User is a back-office account.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
}

// AdminSession represents an authenticated back-office web session.
type AdminSession struct {
	UserID    string   `json:"userId"`
	Email     string   `json:"email"`
	Name      string   `json:"name"`
	Role      UserRole `json:"role"`
	ExpiresAt int64    `json:"exp"`
	IssuedAt  int64    `json:"iat"`
}

type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

type AdminLoginResponse struct {
	Success bool          `json:"success"`
	Session *AdminSession `json:"session,omitempty"`
	Error   string        `json:"error,omitempty"`
}

type AdminLogoutResponse struct {
	Success bool `json:"success"`
}

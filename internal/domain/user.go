package domain

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User 登录凭证，仅由审核通过的 Registro 派生（或启动时的管理员账号）
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	Role         string    `json:"role"`
	DisplayName  string    `json:"displayName"`
	Phone        string    `json:"phone,omitempty"`
	ProfileID    string    `json:"profileId,omitempty"`
	RegistroID   string    `json:"registroId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User is a dashboard account (admin or check-in staff).
type User struct {
	bun.BaseModel `bun:"table:users"`

	ID           string    `bun:"id,pk" json:"id"`
	Username     string    `bun:"username,unique,notnull" json:"username"`
	PasswordHash string    `bun:"password_hash,notnull" json:"-"`
	Role         string    `bun:"role,notnull,default:'staff'" json:"role"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}

// Roles expands the stored role into the role set carried in session tokens.
// Admins can do everything staff can.
func (u *User) Roles() []string {
	if u.Role == RoleAdmin {
		return []string{RoleAdmin, RoleStaff}
	}
	return []string{RoleStaff}
}

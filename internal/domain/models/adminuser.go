// internal/domain/models/adminuser.go
package models

import (
	"time"
)

// RoleAdmin is the only role the portal knows about today.
const RoleAdmin = "admin"

// AdminUser is an account allowed to manage groups, slots, rosters and
// attendance. Only the bcrypt hash of the password is stored.
type AdminUser struct {
	ID           string `bson:"_id" json:"id"`
	Username     string `bson:"username" json:"username"`
	UsernameCI   string `bson:"username_ci" json:"-"`
	PasswordHash string `bson:"password_hash" json:"-"`
	Role         string `bson:"role" json:"role"`

	CreatedAt   time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updatedAt"`
	LastLoginAt *time.Time `bson:"last_login_at,omitempty" json:"lastLoginAt,omitempty"`
}

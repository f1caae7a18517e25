package models

import "time"

// Role is the moderation tier of a user.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// ReservedUsername cannot be registered because it shadows the /users/me route.
const ReservedUsername = "me"

// User represents an account that can review titles.
type User struct {
	ID               string    `json:"-" gorm:"primaryKey;type:varchar(36)"`
	Username         string    `json:"username" gorm:"uniqueIndex;type:varchar(150);not null"`
	Email            string    `json:"email" gorm:"uniqueIndex;type:varchar(254);not null"`
	FirstName        string    `json:"first_name" gorm:"type:varchar(150)"`
	LastName         string    `json:"last_name" gorm:"type:varchar(150)"`
	Bio              string    `json:"bio" gorm:"type:text"`
	Role             Role      `json:"role" gorm:"type:varchar(9);not null;default:user"`
	IsStaff          bool      `json:"-" gorm:"not null;default:false"`
	IsSuperuser      bool      `json:"-" gorm:"not null;default:false"`
	ConfirmationCode string    `json:"-" gorm:"type:varchar(255)"` // bcrypt hash, never the raw code
	CreatedAt        time.Time `json:"-"`
	UpdatedAt        time.Time `json:"-"`
}

// IsAdmin reports elevated privilege: the admin role or either Django-style staff flag.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.IsStaff || u.IsSuperuser
}

// IsModerator reports whether the user holds the moderator role.
func (u *User) IsModerator() bool {
	return u.Role == RoleModerator
}

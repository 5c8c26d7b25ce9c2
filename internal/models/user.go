package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User describes platform users and their organizational affiliation.
//
// Organization and ManagedByID together form the affiliation pair: both are
// set when the user belongs to a business owner's organization, both are nil
// otherwise. A business owner carries its own Organization name with a nil
// ManagedByID. The pair is written exclusively by the membership subsystem.
type User struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar"`

	Organization *string `json:"organization"`
	ManagedByID  *string `gorm:"type:uuid;index" json:"managed_by_id"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	Roles []Role `gorm:"many2many:user_roles;" json:"roles,omitempty"`

	LastLoginAt *time.Time `json:"last_login_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// FullName renders the display name used in counterpart projections.
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	default:
		return u.Username
	}
}

// HasRole reports whether the user holds the role with the given identifier.
func (u *User) HasRole(roleID string) bool {
	for _, role := range u.Roles {
		if role.ID == roleID {
			return true
		}
	}
	return false
}

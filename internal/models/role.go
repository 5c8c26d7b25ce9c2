package models

// Role identifiers seeded at start-up. Business ownership is established when
// an organization is created and is never assignable through role changes.
const (
	RoleBusinessOwner  = "business_owner"
	RoleProjectManager = "project_manager"
	RoleMember         = "member"
)

type Role struct {
	BaseModel

	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `json:"description"`
	IsSystem    bool   `gorm:"default:false" json:"is_system"`

	Users []User `gorm:"many2many:user_roles;" json:"users,omitempty"`
}

package models

// Project groups tasks and meetings under a single business owner.
type Project struct {
	BaseModel

	Name        string `gorm:"not null;index" json:"name"`
	Description string `json:"description"`
	OwnerID     string `gorm:"type:uuid;not null;index" json:"owner_id"`
	IsArchived  bool   `gorm:"default:false" json:"is_archived"`

	Owner   *User           `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Members []ProjectMember `gorm:"foreignKey:ProjectID" json:"members,omitempty"`
}

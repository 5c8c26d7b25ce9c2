package models

import (
	"time"

	"gorm.io/datatypes"
)

// Meeting is a scheduled gathering, optionally scoped to a project.
// Transcription and recording storage are handled by an external system.
type Meeting struct {
	BaseModel

	ProjectID   *string        `gorm:"type:uuid;index" json:"project_id"`
	OrganizerID string         `gorm:"type:uuid;not null;index" json:"organizer_id"`
	Title       string         `gorm:"not null" json:"title"`
	Location    string         `json:"location"`
	StartsAt    time.Time      `gorm:"not null;index" json:"starts_at"`
	EndsAt      time.Time      `gorm:"not null" json:"ends_at"`
	Agenda      datatypes.JSON `json:"agenda"`
	IsCanceled  bool           `gorm:"default:false" json:"is_canceled"`

	Project   *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Organizer *User    `gorm:"foreignKey:OrganizerID" json:"organizer,omitempty"`
}

package models

import "time"

// ProjectMember records a user's membership in one project. Membership is
// closed, never deleted: LeftAt is stamped once when the member's
// organizational affiliation to the project owner ends and is never cleared,
// so historical queries keep working.
type ProjectMember struct {
	BaseModel

	ProjectID string     `gorm:"type:uuid;not null;index" json:"project_id"`
	MemberID  string     `gorm:"type:uuid;not null;index" json:"member_id"`
	JoinedAt  time.Time  `gorm:"not null" json:"joined_at"`
	LeftAt    *time.Time `gorm:"index" json:"left_at"`

	Project *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Member  *User    `gorm:"foreignKey:MemberID" json:"member,omitempty"`
}

// IsActive reports whether the membership is currently open.
func (m *ProjectMember) IsActive() bool {
	return m.LeftAt == nil
}

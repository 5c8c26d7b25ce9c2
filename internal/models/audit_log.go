package models

// AuditLog captures a single recorded action for compliance queries.
type AuditLog struct {
	BaseModel

	UserID   *string `gorm:"type:uuid;index" json:"user_id"`
	Username string  `json:"username"`
	Action   string  `gorm:"not null;index" json:"action"`
	Resource string  `gorm:"index" json:"resource"`
	Result   string  `gorm:"not null" json:"result"`
	Metadata string  `gorm:"type:text" json:"metadata"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

package models

import "time"

// TaskStatus enumerates the task workflow states.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// Task is a unit of work inside a project.
type Task struct {
	BaseModel

	ProjectID   string     `gorm:"type:uuid;not null;index" json:"project_id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `gorm:"type:varchar(16);not null;default:'todo';index" json:"status"`
	AssigneeID  *string    `gorm:"type:uuid;index" json:"assignee_id"`
	DueAt       *time.Time `json:"due_at"`

	Project  *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Assignee *User    `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
}

package models

import "time"

// Risk tracks a project risk and its mitigation.
type Risk struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID   uint      `gorm:"not null;index" json:"project_id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Severity    string    `gorm:"size:16;default:medium" json:"severity"`
	Mitigation  string    `gorm:"type:text" json:"mitigation"`
	Status      string    `gorm:"size:16;default:open" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

package models

import "time"

// Template is a stored, reusable project tree. TreeJSON holds the
// serialized sprint/epic/story shape.
type Template struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"size:200;not null;uniqueIndex" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	ProjectType string    `gorm:"size:32;default:general" json:"project_type"`
	TreeJSON    string    `gorm:"column:template_data;type:text;not null" json:"-"`
	CreatedBy   string    `gorm:"size:100;default:system" json:"created_by"`
	IsPublic    bool      `gorm:"index" json:"is_public"`
	UsageCount  int       `gorm:"default:0" json:"usage_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

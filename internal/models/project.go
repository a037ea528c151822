package models

import "time"

// Project is the root of a sprint/epic/story tree.
type Project struct {
	ID                  uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name                string    `gorm:"size:200;not null;uniqueIndex" json:"name"`
	Description         string    `gorm:"type:text" json:"description"`
	ProjectType         string    `gorm:"size:32;default:general;index" json:"project_type"`
	Status              string    `gorm:"size:32;default:active;index" json:"status"`
	CreatedFromTemplate *uint     `json:"created_from_template,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`

	Sprints []Sprint `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"sprints,omitempty"`
	Risks   []Risk   `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"risks,omitempty"`
}

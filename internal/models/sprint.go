package models

import "time"

// Sprint is a time-boxed iteration within a project. StoryPoints caches the
// sum of its stories' points as of the last instantiation or recalculation.
type Sprint struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID   uint      `gorm:"not null;uniqueIndex:idx_sprint_project_name" json:"project_id"`
	Name        string    `gorm:"size:200;not null;uniqueIndex:idx_sprint_project_name" json:"name"`
	Goal        string    `gorm:"type:text" json:"goal"`
	Duration    string    `gorm:"size:50" json:"duration"`
	Status      string    `gorm:"size:32;default:planned" json:"status"`
	StoryPoints int       `json:"story_points"`
	SprintOrder int       `gorm:"index" json:"sprint_order"`
	CreatedAt   time.Time `json:"created_at"`

	Project *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Epics   []Epic   `gorm:"foreignKey:SprintID;constraint:OnDelete:CASCADE" json:"epics,omitempty"`
}

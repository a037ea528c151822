package models

import "time"

// Story is a single unit of work. Code is "{epic_code}-{seq:03d}" and is
// never reused within its epic.
type Story struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	EpicID      uint      `gorm:"not null;uniqueIndex:idx_story_epic_code" json:"epic_id"`
	Code        string    `gorm:"size:20;not null;uniqueIndex:idx_story_epic_code" json:"story_id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Prompt      string    `gorm:"type:text" json:"prompt"`
	StoryPoints int       `json:"story_points"`
	Status      string    `gorm:"size:16;default:todo;index" json:"status"`
	Assignee    string    `gorm:"size:100" json:"assignee"`
	Priority    string    `gorm:"size:16;default:medium" json:"priority"`
	IssueNumber int       `json:"issue_number,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Epic *Epic `gorm:"foreignKey:EpicID" json:"epic,omitempty"`
}

package models

import "time"

// Epic groups stories inside a sprint. StorySeq is the highest story
// sequence number ever issued under this epic.
type Epic struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SprintID  uint      `gorm:"not null;uniqueIndex:idx_epic_sprint_name" json:"sprint_id"`
	Code      string    `gorm:"column:epic_code;size:10;not null" json:"epic_code"`
	Name      string    `gorm:"size:200;not null;uniqueIndex:idx_epic_sprint_name" json:"name"`
	Goal      string    `gorm:"type:text" json:"goal"`
	StorySeq  int       `json:"-"`
	CreatedAt time.Time `json:"created_at"`

	Sprint  *Sprint `gorm:"foreignKey:SprintID" json:"sprint,omitempty"`
	Stories []Story `gorm:"foreignKey:EpicID;constraint:OnDelete:CASCADE" json:"stories,omitempty"`
}

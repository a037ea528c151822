package project

import (
	"fmt"
	"math"

	"gorm.io/gorm"

	"github.com/digit2ai/CRM-Co-Pilot/internal/models"
	"github.com/digit2ai/CRM-Co-Pilot/internal/story"
)

// Analytics summarises progress for one project. Point totals come from the
// cached sprint totals.
type Analytics struct {
	ProjectID              uint    `json:"project_id"`
	ProjectType            string  `json:"project_type"`
	TotalSprints           int     `json:"total_sprints"`
	TotalStoryPoints       int     `json:"total_story_points"`
	TotalStories           int     `json:"total_stories"`
	CompletedStories       int     `json:"completed_stories"`
	CompletionRate         float64 `json:"completion_rate"`
	AveragePointsPerSprint float64 `json:"average_points_per_sprint"`
}

// GetAnalytics computes the progress summary for a project.
func GetAnalytics(db *gorm.DB, id uint) (*Analytics, error) {
	p, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	var sprintAgg struct {
		Count  int
		Points int
	}
	if err := db.Model(&models.Sprint{}).
		Select("COUNT(*) AS count, COALESCE(SUM(story_points), 0) AS points").
		Where("project_id = ?", id).
		Scan(&sprintAgg).Error; err != nil {
		return nil, fmt.Errorf("project: analytics %d: sprints: %w", id, err)
	}

	var total, done int64
	storiesOf := func() *gorm.DB {
		return db.Model(&models.Story{}).
			Joins("JOIN epics ON epics.id = stories.epic_id").
			Joins("JOIN sprints ON sprints.id = epics.sprint_id").
			Where("sprints.project_id = ?", id)
	}
	if err := storiesOf().Count(&total).Error; err != nil {
		return nil, fmt.Errorf("project: analytics %d: stories: %w", id, err)
	}
	if err := storiesOf().Where("stories.status = ?", story.StatusDone).Count(&done).Error; err != nil {
		return nil, fmt.Errorf("project: analytics %d: completed: %w", id, err)
	}

	a := &Analytics{
		ProjectID:        p.ID,
		ProjectType:      p.ProjectType,
		TotalSprints:     sprintAgg.Count,
		TotalStoryPoints: sprintAgg.Points,
		TotalStories:     int(total),
		CompletedStories: int(done),
	}
	if total > 0 {
		a.CompletionRate = round2(float64(done) / float64(total) * 100)
	}
	if sprintAgg.Count > 0 {
		a.AveragePointsPerSprint = round2(float64(sprintAgg.Points) / float64(sprintAgg.Count))
	}
	return a, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

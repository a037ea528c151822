package planner

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/digit2ai/CRM-Co-Pilot/internal/blueprint"
	"github.com/digit2ai/CRM-Co-Pilot/internal/domain"
	"github.com/digit2ai/CRM-Co-Pilot/internal/models"
	"github.com/digit2ai/CRM-Co-Pilot/internal/story"
)

// SprintStatusPlanned is the status of every instantiated sprint.
const SprintStatusPlanned = "planned"

// Summary counts the rows an instantiation created.
type Summary struct {
	SprintCount int `json:"sprint_count"`
	EpicCount   int `json:"epic_count"`
	StoryCount  int `json:"story_count"`
	TotalPoints int `json:"total_points"`
}

// Instantiate creates the sprints, epics and stories of tree under project
// using tx. The caller owns the transaction and must have validated the
// tree. Sprint order continues after any sprints the project already has.
func Instantiate(tx *gorm.DB, project *models.Project, tree blueprint.Tree) (Summary, error) {
	var sum Summary

	var existing int64
	if err := tx.Model(&models.Sprint{}).Where("project_id = ?", project.ID).Count(&existing).Error; err != nil {
		return sum, fmt.Errorf("count sprints: %w", err)
	}

	for i, sd := range tree.Sprints {
		sprint := models.Sprint{
			ProjectID:   project.ID,
			Name:        sd.Name,
			Goal:        sd.Goal,
			Duration:    sd.Duration,
			Status:      SprintStatusPlanned,
			SprintOrder: int(existing) + i + 1,
		}
		if err := tx.Create(&sprint).Error; err != nil {
			return sum, fmt.Errorf("create sprint %q: %w", sd.Name, conflictOr(err, "sprint", sd.Name))
		}

		points := 0
		for _, ed := range sd.Epics {
			epic := models.Epic{
				SprintID: sprint.ID,
				Code:     ed.Code,
				Name:     ed.Name,
				Goal:     ed.Goal,
				StorySeq: len(ed.Stories),
			}
			if err := tx.Create(&epic).Error; err != nil {
				return sum, fmt.Errorf("create epic %q: %w", ed.Code, conflictOr(err, "epic", ed.Name))
			}

			if len(ed.Stories) > 0 {
				stories := make([]models.Story, 0, len(ed.Stories))
				for j, sdef := range ed.Stories {
					stories = append(stories, models.Story{
						EpicID:      epic.ID,
						Code:        story.Code(ed.Code, j+1),
						Title:       sdef.Title,
						Description: sdef.Description,
						Prompt:      sdef.Prompt,
						StoryPoints: sdef.Points,
						Status:      story.StatusTodo,
						Priority:    sdef.Priority,
					})
					points += sdef.Points
				}
				if err := tx.Create(&stories).Error; err != nil {
					return sum, fmt.Errorf("create stories for epic %q: %w", ed.Code, err)
				}
				sum.StoryCount += len(stories)
			}
			sum.EpicCount++
		}

		if err := tx.Model(&sprint).UpdateColumn("story_points", points).Error; err != nil {
			return sum, fmt.Errorf("cache points for sprint %q: %w", sd.Name, err)
		}
		sum.SprintCount++
		sum.TotalPoints += points
	}
	return sum, nil
}

// RecalculateSprint recomputes a sprint's cached point total from its
// stories using tx, and returns the new total.
func RecalculateSprint(tx *gorm.DB, sprintID uint) (int, error) {
	var count int64
	if err := tx.Model(&models.Sprint{}).Where("id = ?", sprintID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("planner: find sprint %d: %w", sprintID, err)
	}
	if count == 0 {
		return 0, fmt.Errorf("planner: sprint %w: %d", domain.ErrNotFound, sprintID)
	}

	var total struct{ Points int }
	err := tx.Model(&models.Story{}).
		Select("COALESCE(SUM(stories.story_points), 0) AS points").
		Joins("JOIN epics ON epics.id = stories.epic_id").
		Where("epics.sprint_id = ?", sprintID).
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("planner: sum sprint %d: %w", sprintID, err)
	}
	if err := tx.Model(&models.Sprint{}).Where("id = ?", sprintID).
		UpdateColumn("story_points", total.Points).Error; err != nil {
		return 0, fmt.Errorf("planner: update sprint %d: %w", sprintID, err)
	}
	return total.Points, nil
}

func conflictOr(err error, resource, name string) error {
	if domain.IsDuplicateKey(err) {
		return &domain.ConflictError{Resource: resource, Name: name}
	}
	return err
}

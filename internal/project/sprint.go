package project

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/digit2ai/CRM-Co-Pilot/internal/domain"
	"github.com/digit2ai/CRM-Co-Pilot/internal/models"
)

// ListSprints returns sprints with their project loaded. A zero projectID
// lists sprints across all projects.
func ListSprints(db *gorm.DB, projectID uint) ([]models.Sprint, error) {
	q := db.Model(&models.Sprint{}).Preload("Project")
	if projectID != 0 {
		q = q.Where("project_id = ?", projectID)
	}
	var sprints []models.Sprint
	if err := q.Order("project_id ASC, sprint_order ASC, id ASC").Find(&sprints).Error; err != nil {
		return nil, fmt.Errorf("project: list sprints: %w", err)
	}
	return sprints, nil
}

// GetSprint retrieves a sprint with its project, epics and stories.
func GetSprint(db *gorm.DB, id uint) (*models.Sprint, error) {
	var s models.Sprint
	err := db.Preload("Project").
		Preload("Epics", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Epics.Stories", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&s, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("project: sprint %w: %d", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("project: get sprint %d: %w", id, err)
	}
	return &s, nil
}

// Backlog returns every story of a project in sprint, epic, story order.
func Backlog(db *gorm.DB, projectID uint) ([]models.Story, error) {
	if _, err := Get(db, projectID); err != nil {
		return nil, err
	}
	var stories []models.Story
	err := db.Model(&models.Story{}).
		Joins("JOIN epics ON epics.id = stories.epic_id").
		Joins("JOIN sprints ON sprints.id = epics.sprint_id").
		Where("sprints.project_id = ?", projectID).
		Preload("Epic.Sprint").
		Order("sprints.sprint_order ASC, sprints.id ASC, epics.id ASC, stories.id ASC").
		Find(&stories).Error
	if err != nil {
		return nil, fmt.Errorf("project: backlog %d: %w", projectID, err)
	}
	return stories, nil
}

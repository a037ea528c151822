// Package story provides user story operations for the generic CRUD path:
// creation with per-epic code sequencing, status normalisation, updates
// and prompt editing.
package story

import (
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/gorm"

	"github.com/digit2ai/CRM-Co-Pilot/internal/domain"
	"github.com/digit2ai/CRM-Co-Pilot/internal/models"
)

// Canonical story statuses.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// Story priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// DefaultPoints is applied when a story is created through CRUD without an
// estimate.
const DefaultPoints = 1

// CreateOpts holds parameters for creating a story under an existing epic.
type CreateOpts struct {
	EpicID      uint
	Title       string
	Description string
	Prompt      string
	Points      *int // nil means DefaultPoints
	Status      string
	Assignee    string
	Priority    string
}

// UpdateOpts holds the fields an update may change. Nil fields are left
// untouched.
type UpdateOpts struct {
	Title       *string
	Description *string
	Prompt      *string
	Points      *int
	Status      *string
	Assignee    *string
	Priority    *string
}

// ListFilters holds optional filters for listing stories.
type ListFilters struct {
	ProjectID uint
	SprintID  uint
	EpicID    uint
	Status    string
}

// Code formats a story code from its epic code and 1-based sequence.
func Code(epicCode string, seq int) string {
	return fmt.Sprintf("%s-%03d", epicCode, seq)
}

// NormalizeStatus maps any casing or separator variant of a status
// ("Done", "in-progress", "In Progress", "TODO") to its canonical form.
func NormalizeStatus(s string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	switch key {
	case "todo", "to_do":
		return StatusTodo, nil
	case "in_progress", "inprogress", "doing":
		return StatusInProgress, nil
	case "done", "complete", "completed":
		return StatusDone, nil
	}
	return "", fmt.Errorf("story: %w: unknown status %q", domain.ErrValidation, s)
}

// Create inserts a story under opts.EpicID, issuing the next code in the
// epic's sequence.
func Create(db *gorm.DB, opts CreateOpts) (*models.Story, error) {
	points := DefaultPoints
	if opts.Points != nil {
		points = *opts.Points
	}
	status := StatusTodo
	if opts.Status != "" {
		s, err := NormalizeStatus(opts.Status)
		if err != nil {
			return nil, err
		}
		status = s
	}
	priority := strings.ToLower(opts.Priority)
	if priority == "" {
		priority = PriorityMedium
	}
	if err := validateFields(opts.Title, points, priority); err != nil {
		return nil, err
	}

	s := models.Story{
		EpicID:      opts.EpicID,
		Title:       strings.TrimSpace(opts.Title),
		Description: opts.Description,
		Prompt:      opts.Prompt,
		StoryPoints: points,
		Status:      status,
		Assignee:    opts.Assignee,
		Priority:    priority,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		code, err := NextCode(tx, opts.EpicID)
		if err != nil {
			return err
		}
		s.Code = code
		if err := tx.Create(&s).Error; err != nil {
			return fmt.Errorf("insert: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("story: create: %w", err)
	}
	return &s, nil
}

// NextCode advances the epic's story sequence and returns the new code.
// Sequence numbers are never handed out twice, even after deletions.
func NextCode(tx *gorm.DB, epicID uint) (string, error) {
	res := tx.Model(&models.Epic{}).Where("id = ?", epicID).
		UpdateColumn("story_seq", gorm.Expr("story_seq + ?", 1))
	if res.Error != nil {
		return "", fmt.Errorf("advance sequence for epic %d: %w", epicID, res.Error)
	}
	if res.RowsAffected == 0 {
		return "", fmt.Errorf("epic %w: %d", domain.ErrNotFound, epicID)
	}
	var epic models.Epic
	if err := tx.Select("id", "epic_code", "story_seq").First(&epic, epicID).Error; err != nil {
		return "", fmt.Errorf("load epic %d: %w", epicID, err)
	}
	return Code(epic.Code, epic.StorySeq), nil
}

// Get retrieves a story with its epic, sprint and project loaded.
func Get(db *gorm.DB, id uint) (*models.Story, error) {
	var s models.Story
	if err := db.Preload("Epic.Sprint.Project").First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("story: %w: %d", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("story: get %d: %w", id, err)
	}
	return &s, nil
}

// List returns stories matching the filters in creation order.
func List(db *gorm.DB, filters ListFilters) ([]models.Story, error) {
	q := db.Model(&models.Story{}).Preload("Epic.Sprint.Project")
	if filters.EpicID != 0 {
		q = q.Where("stories.epic_id = ?", filters.EpicID)
	}
	if filters.SprintID != 0 || filters.ProjectID != 0 {
		q = q.Joins("JOIN epics ON epics.id = stories.epic_id")
		if filters.SprintID != 0 {
			q = q.Where("epics.sprint_id = ?", filters.SprintID)
		}
		if filters.ProjectID != 0 {
			q = q.Joins("JOIN sprints ON sprints.id = epics.sprint_id").
				Where("sprints.project_id = ?", filters.ProjectID)
		}
	}
	if filters.Status != "" {
		status, err := NormalizeStatus(filters.Status)
		if err != nil {
			return nil, err
		}
		q = q.Where("stories.status = ?", status)
	}

	var stories []models.Story
	if err := q.Order("stories.id ASC").Find(&stories).Error; err != nil {
		return nil, fmt.Errorf("story: list: %w", err)
	}
	return stories, nil
}

// Update applies the non-nil fields of opts. Cached sprint point totals are
// not touched; see planner.RecalculateSprint.
func Update(db *gorm.DB, id uint, opts UpdateOpts) (*models.Story, error) {
	s, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if opts.Title != nil {
		s.Title = strings.TrimSpace(*opts.Title)
		updates["title"] = s.Title
	}
	if opts.Description != nil {
		updates["description"] = *opts.Description
	}
	if opts.Prompt != nil {
		updates["prompt"] = *opts.Prompt
	}
	if opts.Points != nil {
		s.StoryPoints = *opts.Points
		updates["story_points"] = *opts.Points
	}
	if opts.Status != nil {
		status, err := NormalizeStatus(*opts.Status)
		if err != nil {
			return nil, err
		}
		updates["status"] = status
	}
	if opts.Assignee != nil {
		updates["assignee"] = *opts.Assignee
	}
	if opts.Priority != nil {
		s.Priority = strings.ToLower(*opts.Priority)
		updates["priority"] = s.Priority
	}
	if err := validateFields(s.Title, s.StoryPoints, s.Priority); err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return s, nil
	}
	updates["updated_at"] = time.Now()

	if err := db.Model(&models.Story{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("story: update %d: %w", id, err)
	}
	return Get(db, id)
}

// UpdatePrompt replaces a story's generation prompt. Blank prompts are
// rejected.
func UpdatePrompt(db *gorm.DB, id uint, prompt string) (*models.Story, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, fmt.Errorf("story: %w: prompt cannot be empty", domain.ErrValidation)
	}
	return Update(db, id, UpdateOpts{Prompt: &prompt})
}

// MarkExported records the issue number a story was exported to.
func MarkExported(db *gorm.DB, id uint, issueNumber int) error {
	res := db.Model(&models.Story{}).Where("id = ?", id).Update("issue_number", issueNumber)
	if res.Error != nil {
		return fmt.Errorf("story: mark exported %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("story: %w: %d", domain.ErrNotFound, id)
	}
	return nil
}

// Delete removes a story. Its code is not reissued.
func Delete(db *gorm.DB, id uint) error {
	res := db.Delete(&models.Story{}, id)
	if res.Error != nil {
		return fmt.Errorf("story: delete %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("story: %w: %d", domain.ErrNotFound, id)
	}
	return nil
}

func validateFields(title string, points int, priority string) error {
	err := validation.Errors{
		"title":        validation.Validate(strings.TrimSpace(title), validation.Required, validation.Length(1, 200)),
		"story_points": validation.Validate(points, validation.Min(0)),
		"priority":     validation.Validate(priority, validation.Required, validation.In(PriorityHigh, PriorityMedium, PriorityLow)),
	}.Filter()
	if err != nil {
		return fmt.Errorf("story: %w: %v", domain.ErrValidation, err)
	}
	return nil
}

// Package risk provides CRUD operations for project risks.
package risk

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/gorm"

	"github.com/digit2ai/CRM-Co-Pilot/internal/domain"
	"github.com/digit2ai/CRM-Co-Pilot/internal/models"
)

// Severities and statuses a risk may carry.
var (
	Severities = []interface{}{"low", "medium", "high", "critical"}
	Statuses   = []interface{}{"open", "mitigated", "closed"}
)

// CreateOpts holds parameters for recording a risk.
type CreateOpts struct {
	ProjectID   uint
	Title       string
	Description string
	Severity    string
	Mitigation  string
	Status      string
}

// UpdateOpts holds the fields an update may change.
type UpdateOpts struct {
	Title       *string
	Description *string
	Severity    *string
	Mitigation  *string
	Status      *string
}

// Create records a risk against an existing project.
func Create(db *gorm.DB, opts CreateOpts) (*models.Risk, error) {
	if opts.Severity == "" {
		opts.Severity = "medium"
	}
	if opts.Status == "" {
		opts.Status = "open"
	}
	r := models.Risk{
		ProjectID:   opts.ProjectID,
		Title:       strings.TrimSpace(opts.Title),
		Description: opts.Description,
		Severity:    strings.ToLower(opts.Severity),
		Mitigation:  opts.Mitigation,
		Status:      strings.ToLower(opts.Status),
	}
	if err := validate(&r); err != nil {
		return nil, err
	}

	var count int64
	if err := db.Model(&models.Project{}).Where("id = ?", opts.ProjectID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("risk: check project %d: %w", opts.ProjectID, err)
	}
	if count == 0 {
		return nil, fmt.Errorf("risk: project %w: %d", domain.ErrNotFound, opts.ProjectID)
	}

	if err := db.Create(&r).Error; err != nil {
		return nil, fmt.Errorf("risk: create: %w", err)
	}
	return &r, nil
}

// Get retrieves a risk by ID.
func Get(db *gorm.DB, id uint) (*models.Risk, error) {
	var r models.Risk
	if err := db.First(&r, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("risk: %w: %d", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("risk: get %d: %w", id, err)
	}
	return &r, nil
}

// List returns the risks of a project, most severe first.
func List(db *gorm.DB, projectID uint) ([]models.Risk, error) {
	var risks []models.Risk
	err := db.Where("project_id = ?", projectID).
		Order("CASE severity WHEN 'critical' THEN 0 WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END, id ASC").
		Find(&risks).Error
	if err != nil {
		return nil, fmt.Errorf("risk: list for project %d: %w", projectID, err)
	}
	return risks, nil
}

// Update applies the non-nil fields of opts.
func Update(db *gorm.DB, id uint, opts UpdateOpts) (*models.Risk, error) {
	r, err := Get(db, id)
	if err != nil {
		return nil, err
	}
	if opts.Title != nil {
		r.Title = strings.TrimSpace(*opts.Title)
	}
	if opts.Description != nil {
		r.Description = *opts.Description
	}
	if opts.Severity != nil {
		r.Severity = strings.ToLower(*opts.Severity)
	}
	if opts.Mitigation != nil {
		r.Mitigation = *opts.Mitigation
	}
	if opts.Status != nil {
		r.Status = strings.ToLower(*opts.Status)
	}
	if err := validate(r); err != nil {
		return nil, err
	}
	if err := db.Save(r).Error; err != nil {
		return nil, fmt.Errorf("risk: update %d: %w", id, err)
	}
	return r, nil
}

// Delete removes a risk.
func Delete(db *gorm.DB, id uint) error {
	res := db.Delete(&models.Risk{}, id)
	if res.Error != nil {
		return fmt.Errorf("risk: delete %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("risk: %w: %d", domain.ErrNotFound, id)
	}
	return nil
}

func validate(r *models.Risk) error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Severity, validation.Required, validation.In(Severities...)),
		validation.Field(&r.Status, validation.Required, validation.In(Statuses...)),
	)
	if err != nil {
		return fmt.Errorf("risk: %w: %v", domain.ErrValidation, err)
	}
	return nil
}

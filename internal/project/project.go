// Package project provides project lifecycle operations: creation with
// name uniqueness, listing, updates and cascading deletion.
package project

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/gorm"

	"github.com/digit2ai/CRM-Co-Pilot/internal/classify"
	"github.com/digit2ai/CRM-Co-Pilot/internal/domain"
	"github.com/digit2ai/CRM-Co-Pilot/internal/models"
)

// Conventional project statuses. Status is free-form; these are the values
// the pages and CLI filter on.
const (
	StatusActive    = "active"
	StatusOnHold    = "on_hold"
	StatusCompleted = "completed"
	StatusArchived  = "archived"
)

// MaxNameLength bounds project names.
const MaxNameLength = 200

// MaxStatusLength matches the width of the status column.
const MaxStatusLength = 32

// CreateOpts holds parameters for creating a project.
type CreateOpts struct {
	Name                string
	Description         string
	ProjectType         string // crm, ecommerce, mobile, web, analytics, ai, general
	Status              string
	CreatedFromTemplate *uint
}

// UpdateOpts holds the fields an update may change. Nil fields are left
// untouched.
type UpdateOpts struct {
	Name        *string
	Description *string
	Status      *string
	ProjectType *string
}

// ListFilters holds optional filters for listing projects.
type ListFilters struct {
	Status      string
	ProjectType string
}

// Create validates opts, rejects duplicate names and inserts the project.
// It is safe to call inside a transaction.
func Create(db *gorm.DB, opts CreateOpts) (*models.Project, error) {
	opts.Name = strings.TrimSpace(opts.Name)
	if opts.ProjectType == "" {
		opts.ProjectType = string(classify.General)
	}
	if opts.Status == "" {
		opts.Status = StatusActive
	}
	if err := validateFields(opts.Name, opts.Status, opts.ProjectType); err != nil {
		return nil, err
	}
	if err := CheckName(db, opts.Name, 0); err != nil {
		return nil, err
	}

	p := models.Project{
		Name:                opts.Name,
		Description:         opts.Description,
		ProjectType:         opts.ProjectType,
		Status:              opts.Status,
		CreatedFromTemplate: opts.CreatedFromTemplate,
	}
	if err := db.Create(&p).Error; err != nil {
		if domain.IsDuplicateKey(err) {
			return nil, fmt.Errorf("project: create: %w", &domain.ConflictError{Resource: "project", Name: p.Name})
		}
		return nil, fmt.Errorf("project: create: %w", err)
	}
	return &p, nil
}

// ValidateName checks a prospective project name without touching the
// store.
func ValidateName(name string) error {
	err := validation.Validate(strings.TrimSpace(name),
		validation.Required.Error("project name is required"),
		validation.Length(1, MaxNameLength),
	)
	if err != nil {
		return fmt.Errorf("project: %w: %v", domain.ErrValidation, err)
	}
	return nil
}

// CheckName validates name and reports a conflict if another project
// (other than exceptID) already uses it.
func CheckName(db *gorm.DB, name string, exceptID uint) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	var count int64
	q := db.Model(&models.Project{}).Where("name = ?", name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return fmt.Errorf("project: check name %q: %w", name, err)
	}
	if count > 0 {
		return fmt.Errorf("project: %w", &domain.ConflictError{Resource: "project", Name: name})
	}
	return nil
}

// Get retrieves a project by ID.
func Get(db *gorm.DB, id uint) (*models.Project, error) {
	var p models.Project
	if err := db.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("project: %w: %d", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("project: get %d: %w", id, err)
	}
	return &p, nil
}

// GetTree retrieves a project with its sprints, epics and stories loaded
// in storage order.
func GetTree(db *gorm.DB, id uint) (*models.Project, error) {
	var p models.Project
	err := db.
		Preload("Sprints", func(db *gorm.DB) *gorm.DB { return db.Order("sprint_order ASC, id ASC") }).
		Preload("Sprints.Epics", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Sprints.Epics.Stories", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Risks", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&p, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("project: %w: %d", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("project: get tree %d: %w", id, err)
	}
	return &p, nil
}

// List returns projects matching the filters, newest first, with their
// sprints loaded for point totals.
func List(db *gorm.DB, filters ListFilters) ([]models.Project, error) {
	q := db.Model(&models.Project{}).
		Preload("Sprints", func(db *gorm.DB) *gorm.DB { return db.Order("sprint_order ASC, id ASC") })
	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}
	if filters.ProjectType != "" {
		q = q.Where("project_type = ?", filters.ProjectType)
	}

	var projects []models.Project
	if err := q.Order("created_at DESC, id DESC").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("project: list: %w", err)
	}
	return projects, nil
}

// Update applies the non-nil fields of opts.
func Update(db *gorm.DB, id uint, opts UpdateOpts) (*models.Project, error) {
	p, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if opts.Name != nil {
		name := strings.TrimSpace(*opts.Name)
		if name != p.Name {
			if err := CheckName(db, name, id); err != nil {
				return nil, err
			}
		}
		p.Name = name
		updates["name"] = name
	}
	if opts.Description != nil {
		p.Description = *opts.Description
		updates["description"] = *opts.Description
	}
	if opts.Status != nil {
		p.Status = *opts.Status
		updates["status"] = *opts.Status
	}
	if opts.ProjectType != nil {
		p.ProjectType = *opts.ProjectType
		updates["project_type"] = *opts.ProjectType
	}
	if err := validateFields(p.Name, p.Status, p.ProjectType); err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return p, nil
	}

	if err := db.Model(&models.Project{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		if domain.IsDuplicateKey(err) {
			return nil, fmt.Errorf("project: update %d: %w", id, &domain.ConflictError{Resource: "project", Name: p.Name})
		}
		return nil, fmt.Errorf("project: update %d: %w", id, err)
	}
	return Get(db, id)
}

// Delete removes a project together with its sprints, epics, stories and
// risks in one transaction.
func Delete(db *gorm.DB, id uint) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		var p models.Project
		if err := tx.First(&p, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %d", domain.ErrNotFound, id)
			}
			return fmt.Errorf("load: %w", err)
		}

		var sprintIDs []uint
		if err := tx.Model(&models.Sprint{}).Where("project_id = ?", id).Pluck("id", &sprintIDs).Error; err != nil {
			return fmt.Errorf("list sprints: %w", err)
		}
		if len(sprintIDs) > 0 {
			var epicIDs []uint
			if err := tx.Model(&models.Epic{}).Where("sprint_id IN ?", sprintIDs).Pluck("id", &epicIDs).Error; err != nil {
				return fmt.Errorf("list epics: %w", err)
			}
			if len(epicIDs) > 0 {
				if err := tx.Where("epic_id IN ?", epicIDs).Delete(&models.Story{}).Error; err != nil {
					return fmt.Errorf("delete stories: %w", err)
				}
				if err := tx.Where("id IN ?", epicIDs).Delete(&models.Epic{}).Error; err != nil {
					return fmt.Errorf("delete epics: %w", err)
				}
			}
			if err := tx.Where("id IN ?", sprintIDs).Delete(&models.Sprint{}).Error; err != nil {
				return fmt.Errorf("delete sprints: %w", err)
			}
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.Risk{}).Error; err != nil {
			return fmt.Errorf("delete risks: %w", err)
		}
		if err := tx.Delete(&p).Error; err != nil {
			return fmt.Errorf("delete project: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("project: delete %d: %w", id, err)
	}
	return nil
}

func validateFields(name, status, projectType string) error {
	err := validation.Errors{
		"name":         validation.Validate(name, validation.Required, validation.Length(1, MaxNameLength)),
		"status":       validation.Validate(strings.TrimSpace(status), validation.Required, validation.Length(1, MaxStatusLength)),
		"project_type": validation.Validate(projectType, validation.Required, validation.By(knownType)),
	}.Filter()
	if err != nil {
		return fmt.Errorf("project: %w: %v", domain.ErrValidation, err)
	}
	return nil
}

func knownType(value interface{}) error {
	s, _ := value.(string)
	if _, err := classify.Parse(s); err != nil {
		return fmt.Errorf("unknown project type %q", s)
	}
	return nil
}

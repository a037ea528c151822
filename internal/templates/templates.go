// Package templates stores reusable project trees.
package templates

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/gorm"

	"github.com/digit2ai/CRM-Co-Pilot/internal/blueprint"
	"github.com/digit2ai/CRM-Co-Pilot/internal/classify"
	"github.com/digit2ai/CRM-Co-Pilot/internal/domain"
	"github.com/digit2ai/CRM-Co-Pilot/internal/models"
)

// DefaultCreator is recorded when no author is given.
const DefaultCreator = "system"

// CreateOpts holds parameters for storing a template.
type CreateOpts struct {
	Name        string
	Description string
	ProjectType string
	Tree        blueprint.Tree
	Private     bool
	CreatedBy   string
}

// ListFilters holds optional filters for listing templates.
type ListFilters struct {
	PublicOnly  bool
	ProjectType string
	Limit       int
}

// Create validates and stores a template with a usage count of zero.
func Create(db *gorm.DB, opts CreateOpts) (*models.Template, error) {
	opts.Name = strings.TrimSpace(opts.Name)
	if opts.ProjectType == "" {
		opts.ProjectType = string(classify.General)
	}
	if opts.CreatedBy == "" {
		opts.CreatedBy = DefaultCreator
	}
	err := validation.Errors{
		"name":         validation.Validate(opts.Name, validation.Required, validation.Length(1, 200)),
		"project_type": validation.Validate(opts.ProjectType, validation.By(knownType)),
	}.Filter()
	if err != nil {
		return nil, fmt.Errorf("templates: %w: %v", domain.ErrValidation, err)
	}
	if err := blueprint.Validate(opts.Tree); err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}
	if err := CheckName(db, opts.Name); err != nil {
		return nil, err
	}

	data, err := blueprint.Encode(opts.Tree)
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}
	t := models.Template{
		Name:        opts.Name,
		Description: opts.Description,
		ProjectType: opts.ProjectType,
		TreeJSON:    string(data),
		CreatedBy:   opts.CreatedBy,
		IsPublic:    !opts.Private,
	}
	if err := db.Create(&t).Error; err != nil {
		if domain.IsDuplicateKey(err) {
			return nil, fmt.Errorf("templates: create: %w", &domain.ConflictError{Resource: "template", Name: t.Name})
		}
		return nil, fmt.Errorf("templates: create: %w", err)
	}
	return &t, nil
}

// CheckName reports a conflict if a template already uses name.
func CheckName(db *gorm.DB, name string) error {
	var count int64
	if err := db.Model(&models.Template{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return fmt.Errorf("templates: check name %q: %w", name, err)
	}
	if count > 0 {
		return fmt.Errorf("templates: %w", &domain.ConflictError{Resource: "template", Name: name})
	}
	return nil
}

// Get retrieves a template by ID.
func Get(db *gorm.DB, id uint) (*models.Template, error) {
	var t models.Template
	if err := db.First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("templates: %w: %d", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("templates: get %d: %w", id, err)
	}
	return &t, nil
}

// List returns templates ordered by usage, most used first.
func List(db *gorm.DB, filters ListFilters) ([]models.Template, error) {
	q := db.Model(&models.Template{})
	if filters.PublicOnly {
		q = q.Where("is_public = ?", true)
	}
	if filters.ProjectType != "" {
		q = q.Where("project_type = ?", filters.ProjectType)
	}
	if filters.Limit > 0 {
		q = q.Limit(filters.Limit)
	}
	var out []models.Template
	if err := q.Order("usage_count DESC, id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("templates: list: %w", err)
	}
	return out, nil
}

// Tree decodes and validates the stored tree. A tree that cannot be used
// for instantiation matches domain.ErrMalformedTree.
func Tree(t *models.Template) (blueprint.Tree, error) {
	tree, err := blueprint.Decode([]byte(t.TreeJSON))
	if err != nil {
		return blueprint.Tree{}, fmt.Errorf("templates: %d: %w", t.ID, err)
	}
	if err := blueprint.Validate(tree); err != nil {
		return blueprint.Tree{}, fmt.Errorf("templates: %d: %w: %v", t.ID, domain.ErrMalformedTree, err)
	}
	return tree, nil
}

// IncrementUsage bumps the usage counter of a template by one.
func IncrementUsage(db *gorm.DB, id uint) error {
	res := db.Model(&models.Template{}).Where("id = ?", id).
		UpdateColumn("usage_count", gorm.Expr("usage_count + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("templates: increment usage %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("templates: %w: %d", domain.ErrNotFound, id)
	}
	return nil
}

// Delete removes a template and clears the back-reference on projects
// created from it.
func Delete(db *gorm.DB, id uint) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Project{}).Where("created_from_template = ?", id).
			Update("created_from_template", nil).Error; err != nil {
			return fmt.Errorf("clear project references: %w", err)
		}
		res := tx.Delete(&models.Template{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %d", domain.ErrNotFound, id)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("templates: delete %d: %w", id, err)
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

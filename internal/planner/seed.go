package planner

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/digit2ai/CRM-Co-Pilot/internal/blueprint"
	"github.com/digit2ai/CRM-Co-Pilot/internal/catalog"
	"github.com/digit2ai/CRM-Co-Pilot/internal/models"
	"github.com/digit2ai/CRM-Co-Pilot/internal/templates"
)

// SeedResult reports what Seed created.
type SeedResult struct {
	Templates     int
	SampleProject *models.Project
}

// Seed inserts the default public templates, skipping names that already
// exist, and generates the sample project when the store has no projects.
// It is idempotent.
func (s *Service) Seed(ctx context.Context) (SeedResult, error) {
	var res SeedResult
	db := s.db.WithContext(ctx)

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, seed := range catalog.Seeds() {
			data, err := blueprint.Encode(s.catalog.Lookup(seed.Tag))
			if err != nil {
				return fmt.Errorf("encode %s: %w", seed.Name, err)
			}
			t := models.Template{
				Name:        seed.Name,
				Description: seed.Description,
				ProjectType: string(seed.Tag),
				TreeJSON:    string(data),
				CreatedBy:   templates.DefaultCreator,
				IsPublic:    true,
			}
			r := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoNothing: true,
			}).Create(&t)
			if r.Error != nil {
				return fmt.Errorf("seed template %s: %w", seed.Name, r.Error)
			}
			res.Templates += int(r.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("planner: seed: %w", err)
	}

	var count int64
	if err := db.Model(&models.Project{}).Count(&count).Error; err != nil {
		return res, fmt.Errorf("planner: seed: count projects: %w", err)
	}
	if count == 0 {
		r, err := s.GenerateFromPrompt(ctx, catalog.SampleProject.Name, catalog.SampleProject.Description)
		if err != nil {
			return res, fmt.Errorf("planner: seed sample project: %w", err)
		}
		res.SampleProject = r.Project
	}

	s.log.Info("database seeded", "templates", res.Templates, "sample_project", res.SampleProject != nil)
	return res, nil
}

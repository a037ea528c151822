package importer

import (
	"fmt"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/digit2ai/CRM-Co-Pilot/internal/domain"
	"github.com/digit2ai/CRM-Co-Pilot/internal/models"
	"github.com/digit2ai/CRM-Co-Pilot/internal/planner"
	"github.com/digit2ai/CRM-Co-Pilot/internal/story"
)

// SprintDuration is recorded on sprints created by an import.
const SprintDuration = "2 weeks"

// Result summarises an import.
type Result struct {
	Rows    int `json:"rows"`
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Sprints int `json:"sprints_touched"`
}

// Import adds rows to a project in one transaction. Sprints and epics are
// found or created by natural key; a row whose epic already holds a story
// with the same title is skipped, so re-importing a file is a no-op.
// Cached point totals are recomputed for every sprint the import touched.
func Import(db *gorm.DB, projectID uint, rows []Row) (Result, error) {
	res := Result{Rows: len(rows)}
	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Project{}).Where("id = ?", projectID).Count(&count).Error; err != nil {
			return fmt.Errorf("check project: %w", err)
		}
		if count == 0 {
			return fmt.Errorf("project %w: %d", domain.ErrNotFound, projectID)
		}

		sprints := map[int]*models.Sprint{}
		epics := map[string]*models.Epic{}
		for i, row := range rows {
			num := SprintNumber(row.Labels)
			sp, ok := sprints[num]
			if !ok {
				var err error
				if sp, err = ensureSprint(tx, projectID, num); err != nil {
					return fmt.Errorf("row %d: %w", i+1, err)
				}
				sprints[num] = sp
			}

			epicName := EpicName(row.Summary, row.Description)
			key := fmt.Sprintf("%d/%s", sp.ID, epicName)
			ep, ok := epics[key]
			if !ok {
				var err error
				if ep, err = ensureEpic(tx, sp.ID, epicName); err != nil {
					return fmt.Errorf("row %d: %w", i+1, err)
				}
				epics[key] = ep
			}

			title := Title(row.Summary)
			if title == "" {
				title = row.Summary
			}
			var dup int64
			if err := tx.Model(&models.Story{}).Where("epic_id = ? AND title = ?", ep.ID, title).Count(&dup).Error; err != nil {
				return fmt.Errorf("row %d: check story: %w", i+1, err)
			}
			if dup > 0 {
				res.Skipped++
				continue
			}

			code, err := story.NextCode(tx, ep.ID)
			if err != nil {
				return fmt.Errorf("row %d: %w", i+1, err)
			}
			s := models.Story{
				EpicID:      ep.ID,
				Code:        code,
				Title:       title,
				Description: row.Description,
				StoryPoints: EstimatePoints(row.Summary, row.Description, row.Priority),
				Status:      story.StatusTodo,
				Priority:    Priority(row.Priority),
			}
			if err := tx.Create(&s).Error; err != nil {
				return fmt.Errorf("row %d: create story: %w", i+1, err)
			}
			res.Created++
		}

		nums := make([]int, 0, len(sprints))
		for n := range sprints {
			nums = append(nums, n)
		}
		sort.Ints(nums)
		for _, n := range nums {
			if _, err := planner.RecalculateSprint(tx, sprints[n].ID); err != nil {
				return err
			}
		}
		res.Sprints = len(nums)
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("importer: project %d: %w", projectID, err)
	}
	return res, nil
}

func ensureSprint(tx *gorm.DB, projectID uint, num int) (*models.Sprint, error) {
	name := fmt.Sprintf("Sprint %d", num)
	sp := models.Sprint{
		ProjectID:   projectID,
		Name:        name,
		Duration:    SprintDuration,
		Status:      planner.SprintStatusPlanned,
		SprintOrder: num,
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "project_id"}, {Name: "name"}},
		DoNothing: true,
	}).Create(&sp).Error
	if err != nil {
		return nil, fmt.Errorf("upsert sprint %q: %w", name, err)
	}
	var out models.Sprint
	if err := tx.Where("project_id = ? AND name = ?", projectID, name).First(&out).Error; err != nil {
		return nil, fmt.Errorf("load sprint %q: %w", name, err)
	}
	return &out, nil
}

func ensureEpic(tx *gorm.DB, sprintID uint, name string) (*models.Epic, error) {
	ep := models.Epic{
		SprintID: sprintID,
		Code:     EpicCode(name),
		Name:     name,
		Goal:     fmt.Sprintf("Epic for %s related stories", name),
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sprint_id"}, {Name: "name"}},
		DoNothing: true,
	}).Create(&ep).Error
	if err != nil {
		return nil, fmt.Errorf("upsert epic %q: %w", name, err)
	}
	var out models.Epic
	if err := tx.Where("sprint_id = ? AND name = ?", sprintID, name).First(&out).Error; err != nil {
		return nil, fmt.Errorf("load epic %q: %w", name, err)
	}
	return &out, nil
}

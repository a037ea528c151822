// Package planner turns descriptions and stored templates into persisted
// sprint/epic/story trees, and serializes existing projects back into
// reusable templates. Every top-level operation runs in one transaction.
package planner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/gorm"

	"github.com/digit2ai/CRM-Co-Pilot/internal/blueprint"
	"github.com/digit2ai/CRM-Co-Pilot/internal/catalog"
	"github.com/digit2ai/CRM-Co-Pilot/internal/classify"
	"github.com/digit2ai/CRM-Co-Pilot/internal/domain"
	"github.com/digit2ai/CRM-Co-Pilot/internal/models"
	"github.com/digit2ai/CRM-Co-Pilot/internal/notify"
	"github.com/digit2ai/CRM-Co-Pilot/internal/project"
	"github.com/digit2ai/CRM-Co-Pilot/internal/templates"
)

// Service runs planner operations against one database.
type Service struct {
	db       *gorm.DB
	catalog  *catalog.Catalog
	notifier notify.Notifier
	log      *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithNotifier sends post-commit events to n.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithLogger sets the logger used for operation records.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// New creates a Service. A nil catalog uses catalog.Default.
func New(db *gorm.DB, cat *catalog.Catalog, opts ...Option) *Service {
	if cat == nil {
		cat = catalog.Default()
	}
	s := &Service{
		db:       db,
		catalog:  cat,
		notifier: notify.Nop{},
		log:      slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Result describes a newly created project and the rows created under it.
type Result struct {
	Project *models.Project `json:"project"`
	Summary Summary         `json:"summary"`
}

// SaveOpts holds parameters for saving a project as a template. Empty name
// and description fall back to defaults derived from the project name.
type SaveOpts struct {
	Name        string
	Description string
	Private     bool
	CreatedBy   string
}

// GenerateFromPrompt classifies description, looks up the catalog tree for
// the tag and creates a new project populated from it.
func (s *Service) GenerateFromPrompt(ctx context.Context, name, description string) (*Result, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	err := validation.Errors{
		"name":        validation.Validate(name, validation.Required.Error("project name is required"), validation.Length(1, project.MaxNameLength)),
		"description": validation.Validate(description, validation.Required.Error("project description is required")),
	}.Filter()
	if err != nil {
		return nil, fmt.Errorf("planner: generate: %w: %v", domain.ErrValidation, err)
	}

	db := s.db.WithContext(ctx)
	if err := project.CheckName(db, name, 0); err != nil {
		return nil, fmt.Errorf("planner: generate: %w", err)
	}
	tag := classify.Classify(description)
	tree := s.catalog.Lookup(tag)
	if err := blueprint.Validate(tree); err != nil {
		return nil, fmt.Errorf("planner: generate: catalog tree for %s: %w", tag, err)
	}

	var res Result
	err = db.Transaction(func(tx *gorm.DB) error {
		p, err := project.Create(tx, project.CreateOpts{
			Name:        name,
			Description: description,
			ProjectType: string(tag),
			Status:      project.StatusActive,
		})
		if err != nil {
			return err
		}
		sum, err := Instantiate(tx, p, tree)
		if err != nil {
			return err
		}
		res = Result{Project: p, Summary: sum}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("planner: generate %q: %w", name, err)
	}

	s.log.Info("project generated",
		"project_id", res.Project.ID, "type", tag,
		"sprints", res.Summary.SprintCount, "stories", res.Summary.StoryCount, "points", res.Summary.TotalPoints)
	s.notify(ctx, notify.FormatProjectCreated(notify.ProjectCreated{
		ProjectID:   res.Project.ID,
		Name:        res.Project.Name,
		ProjectType: res.Project.ProjectType,
		Source:      "prompt",
		Sprints:     res.Summary.SprintCount,
		Stories:     res.Summary.StoryCount,
		TotalPoints: res.Summary.TotalPoints,
	}))
	return &res, nil
}

// InstantiateInto adds the tree to an existing project.
func (s *Service) InstantiateInto(ctx context.Context, projectID uint, tree blueprint.Tree) (Summary, error) {
	if err := blueprint.Validate(tree); err != nil {
		return Summary{}, fmt.Errorf("planner: instantiate: %w", err)
	}

	db := s.db.WithContext(ctx)
	p, err := project.Get(db, projectID)
	if err != nil {
		return Summary{}, fmt.Errorf("planner: instantiate: %w", err)
	}
	var existing []string
	if err := db.Model(&models.Sprint{}).Where("project_id = ?", projectID).Pluck("name", &existing).Error; err != nil {
		return Summary{}, fmt.Errorf("planner: instantiate: list sprints: %w", err)
	}
	taken := make(map[string]bool, len(existing))
	for _, n := range existing {
		taken[n] = true
	}
	for _, sd := range tree.Sprints {
		if taken[sd.Name] {
			return Summary{}, fmt.Errorf("planner: instantiate: %w", &domain.ConflictError{Resource: "sprint", Name: sd.Name})
		}
	}

	var sum Summary
	err = db.Transaction(func(tx *gorm.DB) error {
		var err error
		sum, err = Instantiate(tx, p, tree)
		return err
	})
	if err != nil {
		return Summary{}, fmt.Errorf("planner: instantiate into project %d: %w", projectID, err)
	}
	s.log.Info("tree instantiated", "project_id", projectID,
		"sprints", sum.SprintCount, "stories", sum.StoryCount, "points", sum.TotalPoints)
	return sum, nil
}

// InstantiateFromTemplate creates a project from a stored template and
// bumps the template's usage count. An empty description falls back to the
// template's own.
func (s *Service) InstantiateFromTemplate(ctx context.Context, templateID uint, name, description string) (*Result, error) {
	db := s.db.WithContext(ctx)
	tpl, err := templates.Get(db, templateID)
	if err != nil {
		return nil, fmt.Errorf("planner: from template: %w", err)
	}
	tree, err := templates.Tree(tpl)
	if err != nil {
		return nil, fmt.Errorf("planner: from template: %w", err)
	}
	if err := project.CheckName(db, name, 0); err != nil {
		return nil, fmt.Errorf("planner: from template: %w", err)
	}
	if strings.TrimSpace(description) == "" {
		description = tpl.Description
	}

	var res Result
	err = db.Transaction(func(tx *gorm.DB) error {
		p, err := project.Create(tx, project.CreateOpts{
			Name:                name,
			Description:         description,
			ProjectType:         tpl.ProjectType,
			Status:              project.StatusActive,
			CreatedFromTemplate: &tpl.ID,
		})
		if err != nil {
			return err
		}
		if err := templates.IncrementUsage(tx, tpl.ID); err != nil {
			return err
		}
		sum, err := Instantiate(tx, p, tree)
		if err != nil {
			return err
		}
		res = Result{Project: p, Summary: sum}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("planner: from template %d: %w", templateID, err)
	}

	s.log.Info("project created from template",
		"project_id", res.Project.ID, "template_id", tpl.ID,
		"sprints", res.Summary.SprintCount, "stories", res.Summary.StoryCount)
	s.notify(ctx, notify.FormatProjectCreated(notify.ProjectCreated{
		ProjectID:   res.Project.ID,
		Name:        res.Project.Name,
		ProjectType: res.Project.ProjectType,
		Source:      tpl.Name,
		Sprints:     res.Summary.SprintCount,
		Stories:     res.Summary.StoryCount,
		TotalPoints: res.Summary.TotalPoints,
	}))
	return &res, nil
}

// SerializeProject walks a project's sprints, epics and stories in storage
// order and returns the equivalent tree.
func (s *Service) SerializeProject(ctx context.Context, projectID uint) (blueprint.Tree, error) {
	p, err := project.GetTree(s.db.WithContext(ctx), projectID)
	if err != nil {
		return blueprint.Tree{}, fmt.Errorf("planner: serialize: %w", err)
	}
	return TreeOf(p), nil
}

// SaveAsTemplate serializes a project and stores it as a new template with
// a usage count of zero.
func (s *Service) SaveAsTemplate(ctx context.Context, projectID uint, opts SaveOpts) (*models.Template, error) {
	db := s.db.WithContext(ctx)
	p, err := project.GetTree(db, projectID)
	if err != nil {
		return nil, fmt.Errorf("planner: save template: %w", err)
	}
	if strings.TrimSpace(opts.Name) == "" {
		opts.Name = p.Name + " Template"
	}
	if strings.TrimSpace(opts.Description) == "" {
		opts.Description = fmt.Sprintf("Template based on %s project structure", p.Name)
	}

	tpl, err := templates.Create(db, templates.CreateOpts{
		Name:        opts.Name,
		Description: opts.Description,
		ProjectType: p.ProjectType,
		Tree:        TreeOf(p),
		Private:     opts.Private,
		CreatedBy:   opts.CreatedBy,
	})
	if err != nil {
		return nil, fmt.Errorf("planner: save template from project %d: %w", projectID, err)
	}

	s.log.Info("template saved", "template_id", tpl.ID, "project_id", p.ID, "public", tpl.IsPublic)
	s.notify(ctx, notify.FormatTemplateSaved(notify.TemplateSaved{
		TemplateID:  tpl.ID,
		Name:        tpl.Name,
		ProjectName: p.Name,
		Public:      tpl.IsPublic,
	}))
	return tpl, nil
}

// RecalculateSprintPoints refreshes a sprint's cached point total.
func (s *Service) RecalculateSprintPoints(ctx context.Context, sprintID uint) (int, error) {
	var total int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		total, err = RecalculateSprint(tx, sprintID)
		return err
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// TreeOf converts a project loaded with project.GetTree into a tree.
func TreeOf(p *models.Project) blueprint.Tree {
	tree := blueprint.Tree{Sprints: make([]blueprint.SprintDef, 0, len(p.Sprints))}
	for _, sp := range p.Sprints {
		sd := blueprint.SprintDef{
			Name:     sp.Name,
			Goal:     sp.Goal,
			Duration: sp.Duration,
			Epics:    make([]blueprint.EpicDef, 0, len(sp.Epics)),
		}
		for _, ep := range sp.Epics {
			ed := blueprint.EpicDef{
				Code:    ep.Code,
				Name:    ep.Name,
				Goal:    ep.Goal,
				Stories: make([]blueprint.StoryDef, 0, len(ep.Stories)),
			}
			for _, st := range ep.Stories {
				ed.Stories = append(ed.Stories, blueprint.StoryDef{
					Title:       st.Title,
					Description: st.Description,
					Points:      st.StoryPoints,
					Priority:    st.Priority,
					Prompt:      st.Prompt,
				})
			}
			sd.Epics = append(sd.Epics, ed)
		}
		tree.Sprints = append(tree.Sprints, sd)
	}
	return tree
}

// notify delivers evt after commit. Delivery failures are logged only.
func (s *Service) notify(ctx context.Context, evt notify.Event) {
	if err := s.notifier.Notify(ctx, evt); err != nil {
		s.log.Warn("notification failed", "title", evt.Title, "error", err)
	}
}

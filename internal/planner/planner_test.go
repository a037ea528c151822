package planner

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/digit2ai/CRM-Co-Pilot/internal/blueprint"
	"github.com/digit2ai/CRM-Co-Pilot/internal/catalog"
	"github.com/digit2ai/CRM-Co-Pilot/internal/classify"
	"github.com/digit2ai/CRM-Co-Pilot/internal/domain"
	"github.com/digit2ai/CRM-Co-Pilot/internal/models"
	"github.com/digit2ai/CRM-Co-Pilot/internal/notify"
)

// testDB creates an in-memory SQLite database with all tables.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(
		&models.Project{},
		&models.Sprint{},
		&models.Epic{},
		&models.Story{},
		&models.Template{},
		&models.Risk{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// recordingNotifier captures events for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
	err    error
}

func (r *recordingNotifier) Notify(_ context.Context, evt notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return r.err
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func assertEmpty(t *testing.T, db *gorm.DB) {
	t.Helper()
	for name, m := range map[string]interface{}{
		"projects": &models.Project{},
		"sprints":  &models.Sprint{},
		"epics":    &models.Epic{},
		"stories":  &models.Story{},
	} {
		if n := countRows(t, db, m); n != 0 {
			t.Errorf("%s = %d, want 0", name, n)
		}
	}
}

func TestGenerateFromPrompt_CRM(t *testing.T) {
	db := testDB(t)
	n := &recordingNotifier{}
	svc := New(db, nil, WithNotifier(n))

	res, err := svc.GenerateFromPrompt(context.Background(), "Acme", "Track customer leads and sales pipeline")
	if err != nil {
		t.Fatalf("GenerateFromPrompt: %v", err)
	}
	if res.Project.ProjectType != string(classify.CRM) {
		t.Errorf("project type = %q, want crm", res.Project.ProjectType)
	}
	want := catalog.Default().Lookup(classify.CRM).Counts()
	if res.Summary.SprintCount != want.Sprints || res.Summary.EpicCount != want.Epics ||
		res.Summary.StoryCount != want.Stories || res.Summary.TotalPoints != want.TotalPoints {
		t.Errorf("summary = %+v, want counts %+v", res.Summary, want)
	}

	var sprints []models.Sprint
	db.Where("project_id = ?", res.Project.ID).Order("sprint_order").Find(&sprints)
	if len(sprints) != 3 {
		t.Fatalf("sprints = %d, want 3", len(sprints))
	}
	for i, wantPts := range []int{21, 34, 26} {
		if sprints[i].StoryPoints != wantPts {
			t.Errorf("sprint %d points = %d, want %d", i+1, sprints[i].StoryPoints, wantPts)
		}
		if sprints[i].SprintOrder != i+1 {
			t.Errorf("sprint %d order = %d", i+1, sprints[i].SprintOrder)
		}
		if sprints[i].Status != SprintStatusPlanned {
			t.Errorf("sprint %d status = %q", i+1, sprints[i].Status)
		}
	}

	var stories []models.Story
	db.Joins("JOIN epics ON epics.id = stories.epic_id").
		Where("epics.epic_code = ?", "FND").Order("stories.id").Find(&stories)
	wantCodes := []string{"FND-001", "FND-002", "FND-003", "FND-004"}
	if len(stories) != len(wantCodes) {
		t.Fatalf("FND stories = %d, want %d", len(stories), len(wantCodes))
	}
	for i, s := range stories {
		if s.Code != wantCodes[i] {
			t.Errorf("story %d code = %q, want %q", i, s.Code, wantCodes[i])
		}
		if s.Status != "todo" {
			t.Errorf("story %s status = %q, want todo", s.Code, s.Status)
		}
	}

	if len(n.events) != 1 {
		t.Errorf("notifications = %d, want 1", len(n.events))
	}
}

func TestGenerateFromPrompt_DuplicateName(t *testing.T) {
	db := testDB(t)
	svc := New(db, nil)
	ctx := context.Background()

	if _, err := svc.GenerateFromPrompt(ctx, "Acme", "an online store"); err != nil {
		t.Fatalf("first generate: %v", err)
	}
	before := countRows(t, db, &models.Story{})

	_, err := svc.GenerateFromPrompt(ctx, "Acme", "a mobile app")
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("duplicate name should also match ErrValidation")
	}
	if got := countRows(t, db, &models.Project{}); got != 1 {
		t.Errorf("projects = %d, want 1", got)
	}
	if got := countRows(t, db, &models.Story{}); got != before {
		t.Errorf("stories = %d, want %d", got, before)
	}
}

func TestGenerateFromPrompt_Validation(t *testing.T) {
	tests := []struct {
		name        string
		projectName string
		description string
	}{
		{"empty name", "", "a crm"},
		{"blank name", "   ", "a crm"},
		{"empty description", "Acme", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testDB(t)
			_, err := New(db, nil).GenerateFromPrompt(context.Background(), tt.projectName, tt.description)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
			assertEmpty(t, db)
		})
	}
}

func TestGenerateFromPrompt_RollsBackOnFailure(t *testing.T) {
	db := testDB(t)
	err := db.Callback().Create().Before("gorm:create").Register("test:fail_stories", func(tx *gorm.DB) {
		if tx.Statement.Schema != nil && tx.Statement.Schema.Table == "stories" {
			tx.AddError(errors.New("disk full"))
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	n := &recordingNotifier{}
	_, err = New(db, nil, WithNotifier(n)).GenerateFromPrompt(context.Background(), "Acme", "crm")
	if err == nil {
		t.Fatal("expected error")
	}
	assertEmpty(t, db)
	if len(n.events) != 0 {
		t.Errorf("notifications = %d, want 0 after rollback", len(n.events))
	}
}

func TestGenerateFromPrompt_NotifierFailureIgnored(t *testing.T) {
	db := testDB(t)
	n := &recordingNotifier{err: errors.New("slack down")}
	if _, err := New(db, nil, WithNotifier(n)).GenerateFromPrompt(context.Background(), "Acme", "crm"); err != nil {
		t.Fatalf("GenerateFromPrompt: %v", err)
	}
	if got := countRows(t, db, &models.Project{}); got != 1 {
		t.Errorf("projects = %d, want 1", got)
	}
}

func TestInstantiateInto_EdgeTrees(t *testing.T) {
	db := testDB(t)
	svc := New(db, nil)
	ctx := context.Background()
	p := models.Project{Name: "Empty", ProjectType: "general", Status: "active"}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("create project: %v", err)
	}

	sum, err := svc.InstantiateInto(ctx, p.ID, blueprint.Tree{})
	if err != nil {
		t.Fatalf("empty tree: %v", err)
	}
	if sum != (Summary{}) {
		t.Errorf("empty tree summary = %+v", sum)
	}

	sum, err = svc.InstantiateInto(ctx, p.ID, blueprint.Tree{Sprints: []blueprint.SprintDef{{Name: "Sprint 1"}}})
	if err != nil {
		t.Fatalf("epic-less sprint: %v", err)
	}
	if sum.SprintCount != 1 || sum.EpicCount != 0 || sum.TotalPoints != 0 {
		t.Errorf("summary = %+v", sum)
	}
	var sp models.Sprint
	db.Where("project_id = ?", p.ID).First(&sp)
	if sp.StoryPoints != 0 || sp.SprintOrder != 1 {
		t.Errorf("sprint = %+v", sp)
	}

	_, err = svc.InstantiateInto(ctx, p.ID, blueprint.Tree{Sprints: []blueprint.SprintDef{{Name: "Sprint 1"}}})
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("repeat sprint name err = %v, want ErrConflict", err)
	}

	sum, err = svc.InstantiateInto(ctx, p.ID, blueprint.Tree{Sprints: []blueprint.SprintDef{{Name: "Sprint 2"}}})
	if err != nil {
		t.Fatalf("second sprint: %v", err)
	}
	var second models.Sprint
	db.Where("project_id = ? AND name = ?", p.ID, "Sprint 2").First(&second)
	if second.SprintOrder != 2 {
		t.Errorf("appended sprint order = %d, want 2", second.SprintOrder)
	}
}

func TestInstantiateInto_Errors(t *testing.T) {
	db := testDB(t)
	svc := New(db, nil)
	ctx := context.Background()

	_, err := svc.InstantiateInto(ctx, 42, blueprint.Tree{})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing project err = %v, want ErrNotFound", err)
	}

	p := models.Project{Name: "P", ProjectType: "general", Status: "active"}
	db.Create(&p)
	bad := blueprint.Tree{Sprints: []blueprint.SprintDef{{Name: "S", Epics: []blueprint.EpicDef{{
		Code: "E", Name: "Epic",
		Stories: []blueprint.StoryDef{{Title: "x", Points: -1, Priority: "medium"}},
	}}}}}
	_, err = svc.InstantiateInto(ctx, p.ID, bad)
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("negative points err = %v, want ErrValidation", err)
	}
	if got := countRows(t, db, &models.Sprint{}); got != 0 {
		t.Errorf("sprints = %d, want 0", got)
	}
}

func TestSerializeProject_RoundTrip(t *testing.T) {
	db := testDB(t)
	svc := New(db, nil)
	ctx := context.Background()

	res, err := svc.GenerateFromPrompt(ctx, "Shop", "an online shop with cart")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	got, err := svc.SerializeProject(ctx, res.Project.ID)
	if err != nil {
		t.Fatalf("SerializeProject: %v", err)
	}
	want := catalog.Default().Lookup(classify.Ecommerce)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("serialized tree differs from catalog tree")
	}

	if _, err := svc.SerializeProject(ctx, 999); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing project err = %v, want ErrNotFound", err)
	}
}

func TestInstantiateFromTemplate_CountsEachUse(t *testing.T) {
	db := testDB(t)
	svc := New(db, nil)
	ctx := context.Background()

	res, err := svc.GenerateFromPrompt(ctx, "Runner", "mobile app for runners")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	tpl, err := svc.SaveAsTemplate(ctx, res.Project.ID, SaveOpts{})
	if err != nil {
		t.Fatalf("SaveAsTemplate: %v", err)
	}

	for i, name := range []string{"Runner A", "Runner B"} {
		if _, err := svc.InstantiateFromTemplate(ctx, tpl.ID, name, ""); err != nil {
			t.Fatalf("InstantiateFromTemplate(%q): %v", name, err)
		}
		var stored models.Template
		if err := db.First(&stored, tpl.ID).Error; err != nil {
			t.Fatalf("reload template: %v", err)
		}
		if want := i + 1; stored.UsageCount != want {
			t.Errorf("after %d uses usage count = %d, want %d", want, stored.UsageCount, want)
		}
	}
}

func TestSaveAsTemplate_AndInstantiate(t *testing.T) {
	db := testDB(t)
	svc := New(db, nil)
	ctx := context.Background()

	res, err := svc.GenerateFromPrompt(ctx, "Acme", "crm for sales")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	tpl, err := svc.SaveAsTemplate(ctx, res.Project.ID, SaveOpts{})
	if err != nil {
		t.Fatalf("SaveAsTemplate: %v", err)
	}
	if tpl.Name != "Acme Template" {
		t.Errorf("name = %q", tpl.Name)
	}
	if tpl.Description != "Template based on Acme project structure" {
		t.Errorf("description = %q", tpl.Description)
	}
	if !tpl.IsPublic || tpl.UsageCount != 0 || tpl.ProjectType != "crm" || tpl.CreatedBy != "system" {
		t.Errorf("template = %+v", tpl)
	}

	_, err = svc.SaveAsTemplate(ctx, res.Project.ID, SaveOpts{})
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("duplicate template err = %v, want ErrConflict", err)
	}

	copyRes, err := svc.InstantiateFromTemplate(ctx, tpl.ID, "Acme 2", "")
	if err != nil {
		t.Fatalf("InstantiateFromTemplate: %v", err)
	}
	if copyRes.Project.Description != tpl.Description {
		t.Errorf("description = %q, want template description", copyRes.Project.Description)
	}
	if copyRes.Project.CreatedFromTemplate == nil || *copyRes.Project.CreatedFromTemplate != tpl.ID {
		t.Errorf("created_from_template = %v, want %d", copyRes.Project.CreatedFromTemplate, tpl.ID)
	}
	if copyRes.Project.ProjectType != "crm" {
		t.Errorf("project type = %q", copyRes.Project.ProjectType)
	}
	if copyRes.Summary != res.Summary {
		t.Errorf("summary = %+v, want %+v", copyRes.Summary, res.Summary)
	}

	var stored models.Template
	db.First(&stored, tpl.ID)
	if stored.UsageCount != 1 {
		t.Errorf("usage count = %d, want 1", stored.UsageCount)
	}

	a, _ := svc.SerializeProject(ctx, res.Project.ID)
	b, _ := svc.SerializeProject(ctx, copyRes.Project.ID)
	if !reflect.DeepEqual(a, b) {
		t.Error("instantiated copy differs from source project")
	}
}

func TestSaveAsTemplate_Private(t *testing.T) {
	db := testDB(t)
	svc := New(db, nil)
	ctx := context.Background()
	res, err := svc.GenerateFromPrompt(ctx, "Acme", "mobile app")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	tpl, err := svc.SaveAsTemplate(ctx, res.Project.ID, SaveOpts{Name: "Mine", Private: true, CreatedBy: "dana"})
	if err != nil {
		t.Fatalf("SaveAsTemplate: %v", err)
	}
	var stored models.Template
	db.First(&stored, tpl.ID)
	if stored.IsPublic {
		t.Error("private template stored as public")
	}
	if stored.CreatedBy != "dana" {
		t.Errorf("created_by = %q", stored.CreatedBy)
	}
}

func TestInstantiateFromTemplate_Errors(t *testing.T) {
	db := testDB(t)
	svc := New(db, nil)
	ctx := context.Background()

	if _, err := svc.InstantiateFromTemplate(ctx, 7, "X", ""); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing template err = %v, want ErrNotFound", err)
	}

	bad := models.Template{Name: "Broken", ProjectType: "general", TreeJSON: `{"sprints":[{"name":"S1"}]}`, IsPublic: true}
	if err := db.Create(&bad).Error; err != nil {
		t.Fatalf("create template: %v", err)
	}
	_, err := svc.InstantiateFromTemplate(ctx, bad.ID, "X", "")
	if !errors.Is(err, domain.ErrMalformedTree) {
		t.Errorf("err = %v, want ErrMalformedTree", err)
	}
	assertEmpty(t, db)

	var stored models.Template
	db.First(&stored, bad.ID)
	if stored.UsageCount != 0 {
		t.Errorf("usage count = %d, want 0", stored.UsageCount)
	}
}

func TestRecalculateSprintPoints(t *testing.T) {
	db := testDB(t)
	svc := New(db, nil)
	ctx := context.Background()

	res, err := svc.GenerateFromPrompt(ctx, "Acme", "crm")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	var sp models.Sprint
	db.Where("project_id = ? AND sprint_order = 1", res.Project.ID).First(&sp)

	var st models.Story
	db.Joins("JOIN epics ON epics.id = stories.epic_id").Where("epics.sprint_id = ?", sp.ID).First(&st)
	db.Model(&st).UpdateColumn("story_points", st.StoryPoints+10)

	db.First(&sp, sp.ID)
	if sp.StoryPoints != 21 {
		t.Errorf("cached points changed before recalculation: %d", sp.StoryPoints)
	}
	total, err := svc.RecalculateSprintPoints(ctx, sp.ID)
	if err != nil {
		t.Fatalf("RecalculateSprintPoints: %v", err)
	}
	if total != 31 {
		t.Errorf("total = %d, want 31", total)
	}
	db.First(&sp, sp.ID)
	if sp.StoryPoints != 31 {
		t.Errorf("stored points = %d, want 31", sp.StoryPoints)
	}

	if _, err := svc.RecalculateSprintPoints(ctx, 999); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing sprint err = %v, want ErrNotFound", err)
	}
}

func TestSeed_Idempotent(t *testing.T) {
	db := testDB(t)
	svc := New(db, nil)
	ctx := context.Background()

	first, err := svc.Seed(ctx)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if first.Templates != 3 {
		t.Errorf("templates = %d, want 3", first.Templates)
	}
	if first.SampleProject == nil || first.SampleProject.ProjectType != "crm" {
		t.Errorf("sample project = %+v", first.SampleProject)
	}

	second, err := svc.Seed(ctx)
	if err != nil {
		t.Fatalf("second Seed: %v", err)
	}
	if second.Templates != 0 || second.SampleProject != nil {
		t.Errorf("second seed = %+v, want nothing created", second)
	}
	if got := countRows(t, db, &models.Template{}); got != 3 {
		t.Errorf("templates = %d, want 3", got)
	}
	if got := countRows(t, db, &models.Project{}); got != 1 {
		t.Errorf("projects = %d, want 1", got)
	}
}

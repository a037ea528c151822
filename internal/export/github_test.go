package export

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/go-github/v68/github"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/digit2ai/CRM-Co-Pilot/internal/domain"
	"github.com/digit2ai/CRM-Co-Pilot/internal/models"
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

// mockIssues records issue requests and hands out sequential numbers.
type mockIssues struct {
	requests []*github.IssueRequest
	owner    string
	repo     string
	next     int
	errs     []error // consumed one per call before succeeding
}

func (m *mockIssues) Create(_ context.Context, owner, repo string, req *github.IssueRequest) (*github.Issue, *github.Response, error) {
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		return nil, nil, err
	}
	m.owner, m.repo = owner, repo
	m.requests = append(m.requests, req)
	m.next++
	return &github.Issue{
		Number:  github.Ptr(m.next),
		HTMLURL: github.Ptr("https://github.com/acme/app/issues/" + string(rune('0'+m.next))),
	}, nil, nil
}

func seedBacklog(t *testing.T, db *gorm.DB) uint {
	t.Helper()
	p := models.Project{Name: "Acme", ProjectType: "crm", Status: "active"}
	db.Create(&p)
	sp := models.Sprint{ProjectID: p.ID, Name: "Sprint 1", SprintOrder: 1}
	db.Create(&sp)
	ep := models.Epic{SprintID: sp.ID, Code: "FND", Name: "Foundation"}
	db.Create(&ep)
	stories := []models.Story{
		{EpicID: ep.ID, Code: "FND-001", Title: "Schema", Description: "Design it", Prompt: "Create a schema", StoryPoints: 8, Status: "todo", Priority: "high"},
		{EpicID: ep.ID, Code: "FND-002", Title: "Auth", StoryPoints: 5, Status: "todo", Priority: "medium"},
		{EpicID: ep.ID, Code: "FND-003", Title: "Already", StoryPoints: 1, Status: "done", Priority: "low", IssueNumber: 9},
	}
	if err := db.Create(&stories).Error; err != nil {
		t.Fatalf("create stories: %v", err)
	}
	return p.ID
}

func TestNewGitHub_Repo(t *testing.T) {
	tests := []struct {
		repo    string
		wantErr bool
	}{
		{"acme/app", false},
		{"acme", true},
		{"/app", true},
		{"acme/", true},
		{"acme/app/extra", true},
	}
	for _, tt := range tests {
		_, err := NewGitHub(context.Background(), GitHubOpts{Repo: tt.repo, Client: &mockIssues{}})
		if (err != nil) != tt.wantErr {
			t.Errorf("repo %q: err = %v, wantErr %v", tt.repo, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, domain.ErrValidation) {
			t.Errorf("repo %q: err = %v, want ErrValidation", tt.repo, err)
		}
	}
	if _, err := NewGitHub(context.Background(), GitHubOpts{Repo: "acme/app"}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("missing token err = %v, want ErrValidation", err)
	}
}

func TestIssueFormatting(t *testing.T) {
	s := &models.Story{
		Code: "FND-001", Title: "Schema", Description: "Design it", Prompt: "Create a schema",
		StoryPoints: 8, Priority: "high", Epic: &models.Epic{Code: "FND"},
	}
	if got := IssueTitle(s); got != "FND-001: Schema" {
		t.Errorf("title = %q", got)
	}
	body := IssueBody(s)
	for _, want := range []string{"Design it", "**Prompt**", "Create a schema", "**Story points**: 8"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
	labels := IssueLabels(s)
	if len(labels) != 2 || labels[0] != "FND" || labels[1] != "high" {
		t.Errorf("labels = %v", labels)
	}

	bare := IssueBody(&models.Story{StoryPoints: 0})
	if bare != "**Story points**: 0" {
		t.Errorf("bare body = %q", bare)
	}
}

func TestExportProject(t *testing.T) {
	db := testDB(t)
	pid := seedBacklog(t, db)
	mock := &mockIssues{}
	g, err := NewGitHub(context.Background(), GitHubOpts{Repo: "acme/app", Client: mock})
	if err != nil {
		t.Fatalf("NewGitHub: %v", err)
	}

	res, err := g.ExportProject(context.Background(), db, pid)
	if err != nil {
		t.Fatalf("ExportProject: %v", err)
	}
	if len(res.Exported) != 2 || res.Skipped != 1 {
		t.Fatalf("result = %+v", res)
	}
	if mock.owner != "acme" || mock.repo != "app" {
		t.Errorf("target = %s/%s", mock.owner, mock.repo)
	}
	if got := mock.requests[0].GetTitle(); got != "FND-001: Schema" {
		t.Errorf("first title = %q", got)
	}

	var stored []models.Story
	db.Order("id").Find(&stored)
	if stored[0].IssueNumber != 1 || stored[1].IssueNumber != 2 || stored[2].IssueNumber != 9 {
		t.Errorf("issue numbers = %d, %d, %d", stored[0].IssueNumber, stored[1].IssueNumber, stored[2].IssueNumber)
	}

	again, err := g.ExportProject(context.Background(), db, pid)
	if err != nil {
		t.Fatalf("second ExportProject: %v", err)
	}
	if len(again.Exported) != 0 || again.Skipped != 3 {
		t.Errorf("second result = %+v, want all skipped", again)
	}
	if len(mock.requests) != 2 {
		t.Errorf("requests = %d, want 2", len(mock.requests))
	}
}

func TestExportProject_DryRun(t *testing.T) {
	db := testDB(t)
	pid := seedBacklog(t, db)
	g, err := NewGitHub(context.Background(), GitHubOpts{Repo: "acme/app", DryRun: true})
	if err != nil {
		t.Fatalf("NewGitHub: %v", err)
	}
	g.issues = &mockIssues{}

	res, err := g.ExportProject(context.Background(), db, pid)
	if err != nil {
		t.Fatalf("ExportProject: %v", err)
	}
	if len(res.Exported) != 2 || res.Exported[0].Number != 0 {
		t.Errorf("result = %+v", res)
	}
	var n int64
	db.Model(&models.Story{}).Where("issue_number <> 0").Count(&n)
	if n != 1 {
		t.Errorf("exported stories = %d, want 1 (unchanged)", n)
	}
}

func TestExportProject_Errors(t *testing.T) {
	db := testDB(t)
	mock := &mockIssues{errs: []error{errors.New("boom")}}
	g, _ := NewGitHub(context.Background(), GitHubOpts{Repo: "acme/app", Client: mock})

	if _, err := g.ExportProject(context.Background(), db, 99); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing project err = %v, want ErrNotFound", err)
	}

	pid := seedBacklog(t, db)
	if _, err := g.ExportProject(context.Background(), db, pid); err == nil {
		t.Error("expected API error")
	}
	var n int64
	db.Model(&models.Story{}).Where("issue_number <> 0").Count(&n)
	if n != 1 {
		t.Errorf("exported stories = %d, want 1", n)
	}
}

func TestRetryOnRateLimit(t *testing.T) {
	db := testDB(t)
	pid := seedBacklog(t, db)
	req, _ := http.NewRequest(http.MethodPost, "https://api.github.com/repos/acme/app/issues", nil)
	limited := &github.AbuseRateLimitError{
		Response:   &http.Response{StatusCode: http.StatusForbidden, Request: req},
		RetryAfter: github.Ptr(time.Millisecond),
	}
	mock := &mockIssues{errs: []error{limited, limited}}
	g, _ := NewGitHub(context.Background(), GitHubOpts{Repo: "acme/app", Client: mock})
	g.baseBackoff = time.Millisecond

	res, err := g.ExportProject(context.Background(), db, pid)
	if err != nil {
		t.Fatalf("ExportProject: %v", err)
	}
	if len(res.Exported) != 2 {
		t.Errorf("exported = %d, want 2", len(res.Exported))
	}

	mock.errs = []error{limited, limited, limited, limited, limited}
	g.maxRetries = 2
	db.Model(&models.Story{}).Where("1 = 1").Update("issue_number", 0)
	if _, err := g.ExportProject(context.Background(), db, pid); !errors.As(err, new(*github.AbuseRateLimitError)) {
		t.Errorf("err = %v, want AbuseRateLimitError after retries", err)
	}
}

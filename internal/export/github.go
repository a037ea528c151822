// Package export publishes project backlogs to external trackers.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/digit2ai/CRM-Co-Pilot/internal/domain"
	"github.com/digit2ai/CRM-Co-Pilot/internal/models"
	"github.com/digit2ai/CRM-Co-Pilot/internal/project"
	"github.com/digit2ai/CRM-Co-Pilot/internal/story"
)

// issuesClient abstracts the GitHub issues API for testing.
type issuesClient interface {
	Create(ctx context.Context, owner, repo string, issue *github.IssueRequest) (*github.Issue, *github.Response, error)
}

// GitHubOpts holds configuration for the GitHub exporter.
type GitHubOpts struct {
	Token  string // personal access token with repo scope
	Repo   string // "owner/name"
	DryRun bool   // plan issues without creating them
	Logger *slog.Logger
	Client issuesClient // optional; created from Token if nil
}

// GitHub creates one issue per story.
type GitHub struct {
	issues issuesClient
	owner  string
	repo   string
	dryRun bool
	log    *slog.Logger

	baseBackoff time.Duration
	maxRetries  int
}

// Issue records one exported (or planned) issue.
type Issue struct {
	StoryID   uint   `json:"story_id"`
	StoryCode string `json:"story_code"`
	Title     string `json:"title"`
	Number    int    `json:"number,omitempty"`
	URL       string `json:"url,omitempty"`
}

// Result summarises an export run.
type Result struct {
	Exported []Issue `json:"exported"`
	Skipped  int     `json:"skipped"`
}

// NewGitHub creates an exporter for opts.Repo.
func NewGitHub(ctx context.Context, opts GitHubOpts) (*GitHub, error) {
	owner, repo, ok := strings.Cut(opts.Repo, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return nil, fmt.Errorf("export: %w: repo must be owner/name, got %q", domain.ErrValidation, opts.Repo)
	}
	client := opts.Client
	if client == nil {
		if opts.Token == "" && !opts.DryRun {
			return nil, fmt.Errorf("export: %w: github token is required", domain.ErrValidation)
		}
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
		client = github.NewClient(oauth2.NewClient(ctx, ts)).Issues
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &GitHub{
		issues:      client,
		owner:       owner,
		repo:        repo,
		dryRun:      opts.DryRun,
		log:         log,
		baseBackoff: time.Second,
		maxRetries:  3,
	}, nil
}

// IssueTitle formats the issue title for a story.
func IssueTitle(s *models.Story) string {
	return fmt.Sprintf("%s: %s", s.Code, s.Title)
}

// IssueBody formats the issue body for a story.
func IssueBody(s *models.Story) string {
	var b strings.Builder
	if s.Description != "" {
		b.WriteString(s.Description)
		b.WriteString("\n\n")
	}
	if s.Prompt != "" {
		b.WriteString("**Prompt**\n\n")
		b.WriteString(s.Prompt)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "**Story points**: %d", s.StoryPoints)
	return b.String()
}

// IssueLabels returns the labels for a story: its epic code and priority.
func IssueLabels(s *models.Story) []string {
	var labels []string
	if s.Epic != nil && s.Epic.Code != "" {
		labels = append(labels, s.Epic.Code)
	}
	if s.Priority != "" {
		labels = append(labels, s.Priority)
	}
	return labels
}

// ExportProject creates an issue for every story in the project that has
// not been exported yet and records the issue number on the story. A
// failure stops the run; stories exported before it keep their numbers.
func (g *GitHub) ExportProject(ctx context.Context, db *gorm.DB, projectID uint) (Result, error) {
	var res Result
	stories, err := project.Backlog(db.WithContext(ctx), projectID)
	if err != nil {
		return res, fmt.Errorf("export: %w", err)
	}

	for i := range stories {
		s := &stories[i]
		if s.IssueNumber != 0 {
			res.Skipped++
			continue
		}
		planned := Issue{StoryID: s.ID, StoryCode: s.Code, Title: IssueTitle(s)}
		if g.dryRun {
			res.Exported = append(res.Exported, planned)
			continue
		}

		req := &github.IssueRequest{
			Title:  github.Ptr(planned.Title),
			Body:   github.Ptr(IssueBody(s)),
			Labels: github.Ptr(IssueLabels(s)),
		}
		var created *github.Issue
		err := g.retryOnRateLimit(ctx, func() error {
			var err error
			created, _, err = g.issues.Create(ctx, g.owner, g.repo, req)
			return err
		})
		if err != nil {
			return res, fmt.Errorf("export: story %s: %w", s.Code, err)
		}
		planned.Number = created.GetNumber()
		planned.URL = created.GetHTMLURL()
		if err := story.MarkExported(db.WithContext(ctx), s.ID, planned.Number); err != nil {
			return res, fmt.Errorf("export: %w", err)
		}
		g.log.Info("story exported", "story", s.Code, "issue", planned.Number)
		res.Exported = append(res.Exported, planned)
	}
	return res, nil
}

// retryOnRateLimit retries fn while GitHub reports a rate limit, waiting
// for the advertised reset or an exponential backoff.
func (g *GitHub) retryOnRateLimit(ctx context.Context, fn func() error) error {
	backoff := g.baseBackoff
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		wait, limited := rateLimitWait(err)
		if !limited || attempt >= g.maxRetries {
			return err
		}
		if wait <= 0 {
			wait = backoff
			backoff *= 2
		}
		g.log.Warn("github rate limited, retrying", "attempt", attempt+1, "wait", wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func rateLimitWait(err error) (time.Duration, bool) {
	var rle *github.RateLimitError
	if errors.As(err, &rle) {
		return time.Until(rle.Rate.Reset.Time), true
	}
	var abuse *github.AbuseRateLimitError
	if errors.As(err, &abuse) {
		return abuse.GetRetryAfter(), true
	}
	return 0, false
}

package notify

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/digit2ai/CRM-Co-Pilot/internal/models"
)

// Digest is a point-in-time summary of every active project.
type Digest struct {
	GeneratedAt time.Time
	Projects    []ProjectDigest
}

// ProjectDigest holds per-project progress for a digest.
type ProjectDigest struct {
	ProjectID  uint
	Name       string
	Sprints    int
	Stories    int
	Done       int
	InProgress int
	Points     int
	DonePoints int
}

// CompletionRate returns the share of done stories as a percentage.
func (p ProjectDigest) CompletionRate() float64 {
	if p.Stories == 0 {
		return 0
	}
	return float64(p.Done) / float64(p.Stories) * 100
}

// BuildDigest summarises active projects. It returns nil when there are
// none.
func BuildDigest(db *gorm.DB, now time.Time) (*Digest, error) {
	var rows []ProjectDigest
	err := db.Model(&models.Project{}).
		Select(`projects.id AS project_id, projects.name AS name,
			COUNT(DISTINCT sprints.id) AS sprints,
			COUNT(stories.id) AS stories,
			COALESCE(SUM(CASE WHEN stories.status = 'done' THEN 1 ELSE 0 END), 0) AS done,
			COALESCE(SUM(CASE WHEN stories.status = 'in_progress' THEN 1 ELSE 0 END), 0) AS in_progress,
			COALESCE(SUM(stories.story_points), 0) AS points,
			COALESCE(SUM(CASE WHEN stories.status = 'done' THEN stories.story_points ELSE 0 END), 0) AS done_points`).
		Joins("LEFT JOIN sprints ON sprints.project_id = projects.id").
		Joins("LEFT JOIN epics ON epics.sprint_id = sprints.id").
		Joins("LEFT JOIN stories ON stories.epic_id = epics.id").
		Where("projects.status = ?", "active").
		Group("projects.id, projects.name").
		Order("projects.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("notify: build digest: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &Digest{GeneratedAt: now, Projects: rows}, nil
}

// FormatDigest formats a digest as an Event.
func FormatDigest(d *Digest) Event {
	var lines []string
	lines = append(lines, fmt.Sprintf("**As of**: %s", d.GeneratedAt.Format("Jan 2 15:04")))

	var stories, done, points int
	for _, p := range d.Projects {
		stories += p.Stories
		done += p.Done
		points += p.Points
	}
	lines = append(lines, fmt.Sprintf("**Stories**: %d total, %d done", stories, done))
	lines = append(lines, "")
	lines = append(lines, "**Per Project**:")
	for _, p := range d.Projects {
		lines = append(lines, fmt.Sprintf("  %s: %d/%d stories done (%.0f%%), %d/%d points, %d in progress",
			p.Name, p.Done, p.Stories, p.CompletionRate(), p.DonePoints, p.Points, p.InProgress))
	}

	return Event{
		Title:    "Portfolio Digest",
		Body:     strings.Join(lines, "\n"),
		Severity: "info",
		Color:    ColorInfo,
		Fields: []Field{
			{Name: "Projects", Value: fmt.Sprintf("%d", len(d.Projects)), Short: true},
			{Name: "Stories", Value: fmt.Sprintf("%d", stories), Short: true},
			{Name: "Done", Value: fmt.Sprintf("%d", done), Short: true},
			{Name: "Points", Value: fmt.Sprintf("%d", points), Short: true},
		},
	}
}

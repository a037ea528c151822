package notify

import (
	"fmt"
	"strings"
)

// ProjectCreated describes a project produced by generation or template
// instantiation.
type ProjectCreated struct {
	ProjectID   uint
	Name        string
	ProjectType string
	Source      string // "prompt" or the template name
	Sprints     int
	Stories     int
	TotalPoints int
}

// TemplateSaved describes a template serialized from a project.
type TemplateSaved struct {
	TemplateID  uint
	Name        string
	ProjectName string
	Public      bool
}

// FormatProjectCreated formats a project creation event.
func FormatProjectCreated(p ProjectCreated) Event {
	verb := "generated"
	if p.Source != "" && p.Source != "prompt" {
		verb = "created from " + p.Source
	}
	body := fmt.Sprintf("%d sprints, %d stories, %d points", p.Sprints, p.Stories, p.TotalPoints)
	return Event{
		Title:    fmt.Sprintf("Project %s %s", p.Name, verb),
		Body:     body,
		Severity: "success",
		Color:    severityColor("success"),
		Fields: []Field{
			{Name: "Project", Value: fmt.Sprintf("#%d", p.ProjectID), Short: true},
			{Name: "Type", Value: p.ProjectType, Short: true},
			{Name: "Sprints", Value: fmt.Sprintf("%d", p.Sprints), Short: true},
			{Name: "Points", Value: fmt.Sprintf("%d", p.TotalPoints), Short: true},
		},
	}
}

// FormatTemplateSaved formats a template save event.
func FormatTemplateSaved(t TemplateSaved) Event {
	visibility := "private"
	if t.Public {
		visibility = "public"
	}
	return Event{
		Title:    fmt.Sprintf("Template %s saved", t.Name),
		Body:     fmt.Sprintf("Serialized from project %s", t.ProjectName),
		Severity: "info",
		Color:    severityColor("info"),
		Fields: []Field{
			{Name: "Template", Value: fmt.Sprintf("#%d", t.TemplateID), Short: true},
			{Name: "Visibility", Value: visibility, Short: true},
		},
	}
}

// PlainText renders an event for terminals and plain-text channels.
func PlainText(evt Event) string {
	var b strings.Builder
	b.WriteString(evt.Title)
	if evt.Body != "" {
		b.WriteString("\n")
		b.WriteString(strings.ReplaceAll(evt.Body, "**", ""))
	}
	return b.String()
}

// Package classify maps a free-text project description to a project-type
// tag by keyword matching.
package classify

import (
	"fmt"
	"strings"

	"github.com/digit2ai/CRM-Co-Pilot/internal/domain"
)

// Tag is a project-type tag.
type Tag string

// Project-type tags.
const (
	CRM       Tag = "crm"
	Ecommerce Tag = "ecommerce"
	Mobile    Tag = "mobile"
	Web       Tag = "web"
	Analytics Tag = "analytics"
	AI        Tag = "ai"
	General   Tag = "general"
)

type rule struct {
	tag      Tag
	keywords []string
}

// rules is scanned in order; the first rule with any matching keyword wins.
var rules = []rule{
	{CRM, []string{"crm", "customer", "sales", "lead", "contact"}},
	{Ecommerce, []string{"ecommerce", "shop", "store", "cart", "payment", "product"}},
	{Mobile, []string{"mobile", "app", "ios", "android", "react native"}},
	{Web, []string{"web", "website", "frontend", "backend", "api"}},
	{Analytics, []string{"analytics", "dashboard", "reporting", "data"}},
	{AI, []string{"ai", "machine learning", "ml", "artificial intelligence"}},
}

// Classify returns the tag for a description. Matching is a case-insensitive
// substring test; unmatched input is General.
func Classify(description string) Tag {
	desc := strings.ToLower(description)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(desc, kw) {
				return r.tag
			}
		}
	}
	return General
}

// Tags lists every tag in priority order, General last.
func Tags() []Tag {
	out := make([]Tag, 0, len(rules)+1)
	for _, r := range rules {
		out = append(out, r.tag)
	}
	return append(out, General)
}

// Parse validates a tag string.
func Parse(s string) (Tag, error) {
	t := Tag(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Tags() {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("classify: %w: unknown project type %q", domain.ErrValidation, s)
}

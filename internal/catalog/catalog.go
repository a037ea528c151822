// Package catalog holds the fixed table of project-type trees used by
// prompt-based generation.
package catalog

import (
	"github.com/digit2ai/CRM-Co-Pilot/internal/blueprint"
	"github.com/digit2ai/CRM-Co-Pilot/internal/classify"
)

// Catalog is an immutable tag -> tree lookup. The zero value is not usable;
// build one with Default.
type Catalog struct {
	trees    map[classify.Tag]blueprint.Tree
	fallback classify.Tag
}

// Default returns the built-in catalog. web, analytics and ai share the
// general tree.
func Default() *Catalog {
	return &Catalog{
		trees: map[classify.Tag]blueprint.Tree{
			classify.CRM:       crmTree,
			classify.Ecommerce: ecommerceTree,
			classify.Mobile:    mobileTree,
			classify.General:   generalTree,
		},
		fallback: classify.General,
	}
}

// Lookup returns a private copy of the tree for tag. Tags without a
// dedicated entry resolve to the general tree.
func (c *Catalog) Lookup(tag classify.Tag) blueprint.Tree {
	tree, ok := c.trees[tag]
	if !ok {
		tree = c.trees[c.fallback]
	}
	return tree.Clone()
}

// Has reports whether tag has its own entry rather than the fallback.
func (c *Catalog) Has(tag classify.Tag) bool {
	_, ok := c.trees[tag]
	return ok
}

// Seed describes a stored template created from a catalog entry when a
// database is first initialised.
type Seed struct {
	Name        string
	Description string
	Tag         classify.Tag
}

// Seeds lists the default public templates.
func Seeds() []Seed {
	return []Seed{
		{"Standard CRM Template", "Complete CRM system with contact management, lead tracking, and communication tools", classify.CRM},
		{"E-commerce Store Template", "Complete e-commerce solution with product catalog, shopping cart, and payment processing", classify.Ecommerce},
		{"Mobile App Template", "Mobile application development with React Native", classify.Mobile},
	}
}

// SampleProject is created on first initialisation when no project exists.
var SampleProject = struct {
	Name        string
	Description string
}{
	Name:        "CRM Assistant Project",
	Description: "Build a comprehensive CRM assistant with contact management, lead tracking, communication tools, and sales pipeline automation",
}

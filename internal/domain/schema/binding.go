package schema

import (
	"fmt"
	"regexp"

	"github.com/peoplekit/hradmin/pkg/constants"
	"github.com/peoplekit/hradmin/pkg/errors"
)

// ResourceBinding maps a logical (category, module) pair to the concrete
// endpoint path serving it. Built once per page session, never mutated.
type ResourceBinding struct {
	Category string `json:"category"`
	Module   string `json:"module"`
	Endpoint string `json:"endpoint"`
}

// Detail returns the endpoint for a single record.
func (b ResourceBinding) Detail(id string) string {
	return fmt.Sprintf("%s%s/", b.Endpoint, id)
}

// Export returns the bulk export endpoint.
func (b ResourceBinding) Export() string {
	return b.Endpoint + "export/"
}

// Template returns the import template endpoint.
func (b ResourceBinding) Template() string {
	return b.Endpoint + "template/"
}

// Import returns the bulk import endpoint.
func (b ResourceBinding) Import() string {
	return b.Endpoint + "import/"
}

// Key returns the registry key for override lookups.
func (b ResourceBinding) Key() string {
	return b.Category + "/" + b.Module
}

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// categoryPaths overrides the path segment for categories whose backend app
// name differs from the logical category.
var categoryPaths = map[string]string{
	"rbac": "abac",
}

// NewResourceBinding validates the pair and derives the endpoint path. Any
// slug-shaped pair resolves; unknown resources still get a usable binding
// so the minimal schema fallback can serve them.
func NewResourceBinding(category, module string) (ResourceBinding, error) {
	if !slugPattern.MatchString(category) {
		return ResourceBinding{}, errors.NewValidationError("category", "must be a lowercase slug")
	}
	if !slugPattern.MatchString(module) {
		return ResourceBinding{}, errors.NewValidationError("module", "must be a lowercase slug")
	}

	segment := category
	if p, ok := categoryPaths[category]; ok {
		segment = p
	}
	return ResourceBinding{
		Category: category,
		Module:   module,
		Endpoint: fmt.Sprintf("/api/v1/%s/%s/", segment, module),
	}, nil
}

// CatalogEntry describes one admin-manageable resource for catalog listing.
type CatalogEntry struct {
	Category string `json:"category"`
	Module   string `json:"module"`
	Label    string `json:"label"`
	Transfer bool   `json:"transfer"`
}

// Catalog lists the resources the admin console manages. Order is the menu
// order.
func Catalog() []CatalogEntry {
	entries := []CatalogEntry{
		{Category: "employees", Module: "departments", Label: "Departments"},
		{Category: "attendance", Module: "shifts", Label: "Shifts"},
		{Category: "attendance", Module: "geo-fences", Label: "Geo Fences"},
		{Category: "leave", Module: "types", Label: "Leave Types"},
		{Category: "payroll", Module: "runs", Label: "Payroll Runs"},
		{Category: "workflows", Module: "definitions", Label: "Workflow Definitions"},
		{Category: "workflows", Module: "steps", Label: "Workflow Steps"},
		{Category: "workflows", Module: "instances", Label: "Workflow Instances"},
		{Category: "rbac", Module: "permissions", Label: "Permissions"},
		{Category: "rbac", Module: "roles", Label: "Roles"},
	}
	for i := range entries {
		entries[i].Transfer = constants.IsTransferEnabled(entries[i].Module)
	}
	return entries
}

// Package domain defines the normalized, category-typed model of a
// documentation project. Every document variant is a flat struct embedding a
// shared Document block; entities are value objects constructed once per
// ingestion and replaced wholesale in the store.
package domain

import "strings"

// Category identifies one of the fixed document classes. The value doubles
// as the slug prefix, the seed-dataset key and the store namespace.
type Category string

const (
	CategoryModuleSpec        Category = "ssdc-ms"
	CategoryProjectManagement Category = "ssdc-pm"
	CategoryInterface         Category = "ssdc-if"
	CategoryDataProduct       Category = "ssdc-dp"
	CategoryTestReport        Category = "ssdc-tr"
	CategoryTechnicalNote     Category = "ssdc-tn"
	CategoryOperationsNote    Category = "ssdc-op"
)

// categorySeries maps each category to its document series code.
var categorySeries = map[Category]string{
	CategoryModuleSpec:        "SSDC-MS",
	CategoryProjectManagement: "SSDC-PM",
	CategoryInterface:         "SSDC-IF",
	CategoryDataProduct:       "SSDC-DP",
	CategoryTestReport:        "SSDC-TR",
	CategoryTechnicalNote:     "SSDC-TN",
	CategoryOperationsNote:    "SSDC-OP",
}

// Categories returns all known categories in a stable order.
func Categories() []Category {
	return []Category{
		CategoryModuleSpec,
		CategoryProjectManagement,
		CategoryInterface,
		CategoryDataProduct,
		CategoryTestReport,
		CategoryTechnicalNote,
		CategoryOperationsNote,
	}
}

// Series returns the category's document series code (e.g. "SSDC-MS").
func (c Category) Series() string {
	return categorySeries[c]
}

// ParseCategory returns the category matching the given code.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(s))
	if _, ok := categorySeries[c]; !ok {
		return "", false
	}
	return c, true
}

// CategoryForSlug classifies a project slug by its category prefix.
// Unrecognized prefixes return false; callers skip those projects.
func CategoryForSlug(slug string) (Category, bool) {
	for c := range categorySeries {
		if strings.HasPrefix(slug, string(c)) {
			return c, true
		}
	}
	return "", false
}

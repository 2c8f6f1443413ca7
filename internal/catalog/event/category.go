package event

import "strings"

// Category classifies an event into the catalog's closed taxonomy.
//
// The set is closed: every category value that reaches storage must be one of
// the members below. [Normalize] is the single gate that enforces this.
type Category string

const (
	CategoryCultural      Category = "CULTURAL"
	CategorySports        Category = "SPORTS"
	CategoryBusiness      Category = "BUSINESS"
	CategoryTechnology    Category = "TECHNOLOGY"
	CategoryEntertainment Category = "ENTERTAINMENT"
	CategoryEducation     Category = "EDUCATION"
	CategoryHealth        Category = "HEALTH"
	CategoryEnvironment   Category = "ENVIRONMENT"
	CategoryOther         Category = "OTHER"
)

// categories is the membership set used by Normalize and IsValid.
var categories = map[Category]struct{}{
	CategoryCultural:      {},
	CategorySports:        {},
	CategoryBusiness:      {},
	CategoryTechnology:    {},
	CategoryEntertainment: {},
	CategoryEducation:     {},
	CategoryHealth:        {},
	CategoryEnvironment:   {},
	CategoryOther:         {},
}

// AllCategories returns the canonical category tokens in declaration order.
func AllCategories() []Category {
	return []Category{
		CategoryCultural,
		CategorySports,
		CategoryBusiness,
		CategoryTechnology,
		CategoryEntertainment,
		CategoryEducation,
		CategoryHealth,
		CategoryEnvironment,
		CategoryOther,
	}
}

// IsValid reports whether c is a member of the closed category set.
func (c Category) IsValid() bool {
	_, ok := categories[c]
	return ok
}

// Normalize maps an arbitrary category string onto the closed category set.
//
// The input is uppercased and checked for membership; anything unrecognized
// falls back to [CategoryOther]. Normalize is total and pure — it never
// fails, which makes it the safety net between free-text category values
// (AI output, client payloads) and storage.
func Normalize(raw string) Category {
	candidate := Category(strings.ToUpper(raw))
	if candidate.IsValid() {
		return candidate
	}
	return CategoryOther
}

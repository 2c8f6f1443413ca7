package city

import "time"

// City is a browsable destination in the catalog.
type City struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`

	// Slug is derived from Name at creation time and used in browse URLs.
	Slug string `json:"slug"`

	CreatedAt time.Time `json:"-"`
}

// Field identifiers used in validation error details.
const (
	FieldName    = "name"
	FieldCountry = "country"
)

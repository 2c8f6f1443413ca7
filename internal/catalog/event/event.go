package event

import "time"

// Event is a persisted happening in a city's catalog.
//
// Category always holds a member of the closed category set, and CityID
// always references an existing city — both are enforced by the service
// layer before persistence.
type Event struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Location    string   `json:"location"`

	// EventDate is nil for AI-sourced events, whose candidates carry no
	// date. Dated events sort before undated ones in list reads.
	EventDate *time.Time `json:"event_date"`

	ImageURL   string `json:"image_url,omitempty"`
	IsFeatured bool   `json:"is_featured"`
	CityID     int    `json:"city_id"`

	// CityName is populated only on single-event reads (joined from the
	// owning city), mirroring what the detail page renders.
	CityName string `json:"city_name,omitempty"`

	CreatedAt time.Time `json:"-"`
}

// Field identifiers used in validation error details.
const (
	FieldTitle    = "title"
	FieldCategory = "category"
	FieldLocation = "location"
	FieldDate     = "date"
	FieldCityID   = "city_id"
)

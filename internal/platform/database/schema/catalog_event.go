package schema

// EventTable represents the 'catalog.event' table
type EventTable struct {
	Table       string
	ID          string
	Title       string
	Description string
	Category    string
	Location    string
	EventDate   string
	ImageURL    string
	IsFeatured  string
	CityID      string
	CreatedAt   string
}

// Event is the schema definition for catalog.event
var Event = EventTable{
	Table:       "catalog.event",
	ID:          "id",
	Title:       "title",
	Description: "description",
	Category:    "category",
	Location:    "location",
	EventDate:   "event_date",
	ImageURL:    "image_url",
	IsFeatured:  "is_featured",
	CityID:      "city_id",
	CreatedAt:   "created_at",
}

func (t EventTable) Columns() []string {
	return []string{t.ID, t.Title, t.Description, t.Category, t.Location, t.EventDate, t.ImageURL, t.IsFeatured, t.CityID}
}

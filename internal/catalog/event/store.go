package event

import "context"

// Repository defines the data access contract for events.
type Repository interface {
	// ListByCity returns a page of a city's events ordered by event date
	// ascending (undated events last), plus the total count for pagination.
	ListByCity(context context.Context, cityID, limit, offset int) ([]*Event, int, error)

	// Featured returns upcoming featured events ordered by event date ascending.
	Featured(context context.Context, limit int) ([]*Event, error)

	// FindByID returns a single event with its owning city's name joined in.
	FindByID(context context.Context, id int) (*Event, error)

	// Create persists a new event and fills in its generated ID.
	Create(context context.Context, event *Event) error
}

package city

import "context"

// Repository defines the data access contract for cities.
type Repository interface {
	// List returns a page of cities ordered by name, plus the total count.
	List(context context.Context, limit, offset int) ([]*City, int, error)

	// FindByID returns a single city by its identifier.
	FindByID(context context.Context, id int) (*City, error)

	// FindByNameContains returns the first city whose name contains the given
	// fragment, case-insensitively.
	FindByNameContains(context context.Context, fragment string) (*City, error)

	// Search returns up to limit cities whose name contains the query,
	// case-insensitively, ordered by name.
	Search(context context.Context, query string, limit int) ([]*City, error)

	// Create persists a new city and fills in its generated ID.
	Create(context context.Context, city *City) error
}

package city

import (
	"context"
	"log/slog"
	"strings"

	"github.com/citypulse/citypulse/internal/platform/constants"
	"github.com/citypulse/citypulse/internal/platform/validate"
	"github.com/citypulse/citypulse/pkg/slug"
)

// # Service Layer

// Service orchestrates the business logic for the city catalog.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a new [Service] with its required repository.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// # City Lookups

// List retrieves a page of cities ordered by name.
func (service *Service) List(context context.Context, limit, offset int) ([]*City, int, error) {
	return service.repo.List(context, limit, offset)
}

// Get fetches a single city by its identifier.
func (service *Service) Get(context context.Context, id int) (*City, error) {
	return service.repo.FindByID(context, id)
}

/*
GetByName resolves a city from a name fragment.

Description: The lookup is a case-insensitive substring match returning the
first hit in name order, so "hano" resolves Hanoi. This is the resolution
step browse pages use when they only know the display name.

Parameters:
  - context: context.Context
  - fragment: string (Partial or full city name)

Returns:
  - *City: The matched city
  - error: NOT_FOUND when no name contains the fragment
*/
func (service *Service) GetByName(context context.Context, fragment string) (*City, error) {
	return service.repo.FindByNameContains(context, fragment)
}

/*
Search returns typeahead suggestions for a partial city name.

Description: An empty or whitespace-only query short-circuits to an empty
slice without touching storage; the suggestion dropdown simply closes. At
most [constants.MaxCitySearchResults] hits are returned.
*/
func (service *Service) Search(context context.Context, query string) ([]*City, error) {
	if strings.TrimSpace(query) == "" {
		return []*City{}, nil
	}

	return service.repo.Search(context, query, constants.MaxCitySearchResults)
}

// # City Management

/*
Create validates and persists a new city.

Description: The browse slug is derived from the name at creation time and
is not client-settable.

Parameters:
  - context: context.Context
  - city: *City (Slug is overwritten)

Returns:
  - error: Validation or persistence errors
*/
func (service *Service) Create(context context.Context, city *City) error {

	validator := &validate.Validator{}
	validator.Required(FieldName, city.Name).MaxLen(FieldName, city.Name, 200)
	validator.Required(FieldCountry, city.Country).MaxLen(FieldCountry, city.Country, 200)

	if err := validator.Err(); err != nil {
		return err
	}

	city.Slug = slug.From(city.Name)

	if err := service.repo.Create(context, city); err != nil {
		return err
	}

	service.logger.Info("city_created",
		slog.Int("city_id", city.ID),
		slog.String("slug", city.Slug),
	)

	return nil
}

package event

import (
	"context"
	"log/slog"
	"time"

	"github.com/citypulse/citypulse/internal/platform/validate"
)

// # Service Layer

// Service orchestrates the business logic for the event catalog.
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

// # Event Lookups

/*
ListByCity retrieves a page of a city's events ordered by date ascending.

Description: A city with no events yields an empty page, not an error — the
list read does not verify city existence, mirroring the generic read path
that discovery clients re-query after a trigger.

Parameters:
  - context: context.Context
  - cityID: int
  - limit: int (Max records to return)
  - offset: int (Pagination cursor)

Returns:
  - []*Event: Page of events
  - int: Total count for pagination metadata
  - error: Repository level errors
*/
func (service *Service) ListByCity(context context.Context, cityID, limit, offset int) ([]*Event, int, error) {
	return service.repo.ListByCity(context, cityID, limit, offset)
}

// Featured returns the upcoming featured events strip.
func (service *Service) Featured(context context.Context, limit int) ([]*Event, error) {
	return service.repo.Featured(context, limit)
}

// Get fetches a single event with its owning city's name.
func (service *Service) Get(context context.Context, id int) (*Event, error) {
	return service.repo.FindByID(context, id)
}

// # Event Management

/*
Create validates and persists a new event.

Description: This is the write path both for API clients and for the external
scraper process posting structured results back. The category is always
normalized onto the closed set before persistence — free text never reaches
storage.

Parameters:
  - context: context.Context
  - event: *Event (EventDate must be set by the caller)
  - rawCategory: string (free-text category to normalize)

Returns:
  - error: Validation or persistence errors
*/
func (service *Service) Create(context context.Context, event *Event, rawCategory string) error {

	validator := &validate.Validator{}
	validator.Required(FieldTitle, event.Title).MaxLen(FieldTitle, event.Title, 500)
	validator.Required(FieldCategory, rawCategory)
	validator.Required(FieldLocation, event.Location)
	validator.Custom(FieldDate, event.EventDate == nil, "This field is required")
	validator.Custom(FieldCityID, event.CityID <= 0, "Must be a positive identifier")

	if err := validator.Err(); err != nil {
		return err
	}

	// Total mapping with OTHER fallback; never fails.
	event.Category = Normalize(rawCategory)

	if err := service.repo.Create(context, event); err != nil {
		return err
	}

	service.logger.Info("event_created",
		slog.Int("event_id", event.ID),
		slog.Int("city_id", event.CityID),
		slog.String("category", string(event.Category)),
	)

	return nil
}

/*
CreateCandidate persists an AI-sourced event without a date.

Description: Candidates produced by the AI extraction path carry no event
date; they are persisted with a NULL date and sort after dated events. The
category has already been normalized by the extraction client, but Normalize
is applied again here so the storage invariant never depends on a caller.

Parameters:
  - context: context.Context
  - event: *Event (EventDate may be nil)

Returns:
  - error: Validation or persistence errors
*/
func (service *Service) CreateCandidate(context context.Context, event *Event) error {

	validator := &validate.Validator{}
	validator.Required(FieldTitle, event.Title).MaxLen(FieldTitle, event.Title, 500)
	validator.Required(FieldLocation, event.Location)
	validator.Custom(FieldCityID, event.CityID <= 0, "Must be a positive identifier")

	if err := validator.Err(); err != nil {
		return err
	}

	event.Category = Normalize(string(event.Category))

	if err := service.repo.Create(context, event); err != nil {
		return err
	}

	service.logger.Info("candidate_event_persisted",
		slog.Int("event_id", event.ID),
		slog.Int("city_id", event.CityID),
		slog.String("category", string(event.Category)),
	)

	return nil
}

// ParseEventDate parses the wire format of the event date field.
//
// Both RFC 3339 timestamps and plain dates (2006-01-02) are accepted.
func ParseEventDate(raw string) (*time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return &parsed, true
		}
	}
	return nil, false
}

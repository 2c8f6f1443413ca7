package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/citypulse/citypulse/internal/catalog/city"
	"github.com/citypulse/citypulse/internal/catalog/event"
	"github.com/citypulse/citypulse/internal/discovery/gemini"
	"github.com/citypulse/citypulse/internal/platform/apperr"
	"github.com/citypulse/citypulse/internal/platform/metrics"
)

// Extractor produces typed event candidates for a city from an AI backend.
type Extractor interface {
	DiscoverEvents(ctx context.Context, cityName, country string) ([]gemini.CandidateEvent, error)
}

// Service orchestrates the two discovery paths: the external scraper trigger
// and the in-process AI extraction.
type Service struct {
	cities    city.Repository
	events    *event.Service
	runner    Runner
	extractor Extractor
	logger    *slog.Logger
}

// NewService constructs a new [Service].
func NewService(cities city.Repository, events *event.Service, runner Runner, extractor Extractor, logger *slog.Logger) *Service {
	return &Service{
		cities:    cities,
		events:    events,
		runner:    runner,
		extractor: extractor,
		logger:    logger,
	}
}

// # Scraper Trigger

// Ack is the acknowledgment returned when a scrape has been launched.
type Ack struct {
	Message string `json:"message"`
}

/*
Trigger launches the external scraper for a city.

Description: The city must exist; its display name is reduced to the scraper
target token. A spawn failure is the only error surfaced after the lookup.
Once the process is running the returned acknowledgment is final; the caller
learns nothing further about the scrape through this call.

Parameters:
  - context: context.Context
  - cityID: int

Returns:
  - *Ack: "Scraping for <name> started."
  - error: NOT_FOUND for unknown cities, SCRAPER_SPAWN_FAILED on spawn errors
*/
func (service *Service) Trigger(context context.Context, cityID int) (*Ack, error) {
	target, err := service.cities.FindByID(context, cityID)
	if err != nil {
		return nil, err
	}

	token := TargetToken(target.Name)

	if err := service.runner.Start(context, token, target.ID); err != nil {
		metrics.DiscoveryTriggersTotal.WithLabelValues("spawn_failed").Inc()

		service.logger.Error("scraper_spawn_failed",
			slog.Int("city_id", target.ID),
			slog.String("target", token),
			slog.Any("error", err),
		)

		return nil, &apperr.AppError{
			Code:       "SCRAPER_SPAWN_FAILED",
			Message:    "Failed to start scraper process.",
			HTTPStatus: http.StatusInternalServerError,
			Cause:      err,
		}
	}

	metrics.DiscoveryTriggersTotal.WithLabelValues("launched").Inc()

	return &Ack{Message: fmt.Sprintf("Scraping for %s started.", target.Name)}, nil
}

// # AI Extraction

// ExtractionResult summarizes a completed extraction run.
type ExtractionResult struct {
	CityID    int            `json:"city_id"`
	Persisted int            `json:"persisted"`
	Events    []*event.Event `json:"events"`
}

/*
ExtractAndStore runs the AI extraction path for a city and persists the
resulting candidates.

Description: Unlike the scraper trigger this path is synchronous; the caller
gets the persisted events back. An unparseable model reply fails the whole
call with EXTRACTION_FAILED and persists nothing. Candidates that fail event
validation are skipped, not fatal; the model occasionally invents elements
the defensive parse lets through.

Parameters:
  - context: context.Context
  - cityID: int

Returns:
  - *ExtractionResult: The persisted events
  - error: NOT_FOUND, EXTRACTION_FAILED (502), or AI_UPSTREAM_FAILED (502)
*/
func (service *Service) ExtractAndStore(context context.Context, cityID int) (*ExtractionResult, error) {
	target, err := service.cities.FindByID(context, cityID)
	if err != nil {
		return nil, err
	}

	candidates, err := service.extractor.DiscoverEvents(context, target.Name, target.Country)
	if err != nil {
		if errors.Is(err, gemini.ErrExtraction) {
			return nil, apperr.Upstream("EXTRACTION_FAILED", "The AI reply could not be parsed into events.", err)
		}
		return nil, apperr.Upstream("AI_UPSTREAM_FAILED", "The AI backend could not be reached.", err)
	}

	result := &ExtractionResult{CityID: target.ID, Events: []*event.Event{}}

	for _, candidate := range candidates {
		persisted := &event.Event{
			Title:       candidate.Title,
			Description: candidate.Description,
			Category:    candidate.Category,
			Location:    candidate.Location,
			CityID:      target.ID,
		}

		if err := service.events.CreateCandidate(context, persisted); err != nil {
			service.logger.Warn("candidate_rejected",
				slog.Int("city_id", target.ID),
				slog.String("title", candidate.Title),
				slog.Any("error", err),
			)
			continue
		}

		result.Events = append(result.Events, persisted)
	}

	result.Persisted = len(result.Events)

	service.logger.Info("extraction_completed",
		slog.Int("city_id", target.ID),
		slog.Int("extracted", len(candidates)),
		slog.Int("persisted", result.Persisted),
	)

	return result, nil
}

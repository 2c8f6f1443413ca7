package discovery

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citypulse/citypulse/internal/catalog/city"
	"github.com/citypulse/citypulse/internal/catalog/event"
	"github.com/citypulse/citypulse/internal/discovery/gemini"
	"github.com/citypulse/citypulse/internal/platform/apperr"
)

// fakeCityRepository serves a fixed set of cities.
type fakeCityRepository struct {
	cities map[int]*city.City
}

func (f *fakeCityRepository) List(_ context.Context, _, _ int) ([]*city.City, int, error) {
	return nil, 0, nil
}

func (f *fakeCityRepository) FindByID(_ context.Context, id int) (*city.City, error) {
	if c, ok := f.cities[id]; ok {
		return c, nil
	}
	return nil, apperr.NotFound("City")
}

func (f *fakeCityRepository) FindByNameContains(_ context.Context, _ string) (*city.City, error) {
	return nil, apperr.NotFound("City")
}

func (f *fakeCityRepository) Search(_ context.Context, _ string, _ int) ([]*city.City, error) {
	return nil, nil
}

func (f *fakeCityRepository) Create(_ context.Context, _ *city.City) error { return nil }

// fakeRunner records launches and optionally fails them.
type fakeRunner struct {
	mu       sync.Mutex
	launches []string
	failWith error
}

func (f *fakeRunner) Start(_ context.Context, target string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.launches = append(f.launches, target)
	return nil
}

// fakeExtractor returns a canned candidate batch or error.
type fakeExtractor struct {
	candidates []gemini.CandidateEvent
	err        error
}

func (f *fakeExtractor) DiscoverEvents(_ context.Context, _, _ string) ([]gemini.CandidateEvent, error) {
	return f.candidates, f.err
}

// fakeEventRepository collects persisted events.
type fakeEventRepository struct {
	events []*event.Event
}

func (f *fakeEventRepository) ListByCity(_ context.Context, _, _, _ int) ([]*event.Event, int, error) {
	return nil, 0, nil
}

func (f *fakeEventRepository) Featured(_ context.Context, _ int) ([]*event.Event, error) {
	return nil, nil
}

func (f *fakeEventRepository) FindByID(_ context.Context, _ int) (*event.Event, error) {
	return nil, apperr.NotFound("Event")
}

func (f *fakeEventRepository) Create(_ context.Context, e *event.Event) error {
	e.ID = len(f.events) + 1
	f.events = append(f.events, e)
	return nil
}

type testHarness struct {
	service   *Service
	runner    *fakeRunner
	extractor *fakeExtractor
	events    *fakeEventRepository
}

func newTestHarness() *testHarness {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cities := &fakeCityRepository{cities: map[int]*city.City{
		7: {ID: 7, Name: "New York City", Country: "USA"},
	}}
	runner := &fakeRunner{}
	extractor := &fakeExtractor{}
	eventRepo := &fakeEventRepository{}
	eventService := event.NewService(eventRepo, logger)

	return &testHarness{
		service:   NewService(cities, eventService, runner, extractor, logger),
		runner:    runner,
		extractor: extractor,
		events:    eventRepo,
	}
}

// # Trigger

/*
TestTrigger_LaunchesScraper verifies the happy path: the city name is reduced
to the scraper token and the acknowledgment names the city.
*/
func TestTrigger_LaunchesScraper(t *testing.T) {
	harness := newTestHarness()

	ack, err := harness.service.Trigger(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, "Scraping for New York City started.", ack.Message)
	assert.Equal(t, []string{"new-york-city"}, harness.runner.launches)
}

/*
TestTrigger_UnknownCity verifies that nothing is spawned for an unknown city.
*/
func TestTrigger_UnknownCity(t *testing.T) {
	harness := newTestHarness()

	_, err := harness.service.Trigger(context.Background(), 999)
	require.Error(t, err)

	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	assert.Empty(t, harness.runner.launches)
}

/*
TestTrigger_SpawnFailure verifies the spawn error surface: 500 with the
SCRAPER_SPAWN_FAILED code, cause preserved for logging.
*/
func TestTrigger_SpawnFailure(t *testing.T) {
	harness := newTestHarness()
	harness.runner.failWith = errors.New("fork/exec: no such file or directory")

	_, err := harness.service.Trigger(context.Background(), 7)
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "SCRAPER_SPAWN_FAILED", appError.Code)
	assert.Equal(t, "Failed to start scraper process.", appError.Message)
	assert.Equal(t, 500, appError.HTTPStatus)
	assert.Error(t, appError.Cause)
}

/*
TestTrigger_ConcurrentTriggersBothSpawn verifies that nothing deduplicates
concurrent triggers for the same city; each one launches its own process.
*/
func TestTrigger_ConcurrentTriggersBothSpawn(t *testing.T) {
	harness := newTestHarness()

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := harness.service.Trigger(context.Background(), 7)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, harness.runner.launches, 2)
}

// # Extraction

/*
TestExtractAndStore_PersistsCandidates verifies the synchronous extraction
path end to end against fakes.
*/
func TestExtractAndStore_PersistsCandidates(t *testing.T) {
	harness := newTestHarness()
	harness.extractor.candidates = []gemini.CandidateEvent{
		{Title: "Broadway Week", Description: "Discounted shows", Category: event.CategoryCultural, Location: "Theater District"},
		{Title: "Harbor Run", Description: "10k race", Category: event.CategorySports, Location: "Battery Park"},
	}

	result, err := harness.service.ExtractAndStore(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Persisted)
	require.Len(t, harness.events.events, 2)
	assert.Equal(t, 7, harness.events.events[0].CityID)
	assert.Nil(t, harness.events.events[0].EventDate)
}

/*
TestExtractAndStore_ExtractionFailure verifies that an unparseable model
reply maps to the 502 EXTRACTION_FAILED surface and persists nothing.
*/
func TestExtractAndStore_ExtractionFailure(t *testing.T) {
	harness := newTestHarness()
	harness.extractor.err = gemini.ErrExtraction

	_, err := harness.service.ExtractAndStore(context.Background(), 7)
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "EXTRACTION_FAILED", appError.Code)
	assert.Equal(t, 502, appError.HTTPStatus)
	assert.Empty(t, harness.events.events)
}

/*
TestExtractAndStore_TransportFailure verifies that an unreachable AI backend
is reported distinctly from a parse failure.
*/
func TestExtractAndStore_TransportFailure(t *testing.T) {
	harness := newTestHarness()
	harness.extractor.err = errors.New("dial tcp: connection refused")

	_, err := harness.service.ExtractAndStore(context.Background(), 7)
	require.Error(t, err)

	assert.Equal(t, "AI_UPSTREAM_FAILED", apperr.As(err).Code)
}

/*
TestExtractAndStore_SkipsInvalidCandidates verifies that a candidate the
event service rejects is skipped without failing the batch.
*/
func TestExtractAndStore_SkipsInvalidCandidates(t *testing.T) {
	harness := newTestHarness()
	harness.extractor.candidates = []gemini.CandidateEvent{
		{Title: "Valid Fair", Category: event.CategoryEntertainment, Location: "Market"},
		{Title: "No Location", Category: event.CategoryEntertainment, Location: ""},
	}

	result, err := harness.service.ExtractAndStore(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Persisted)
	require.Len(t, result.Events, 1)
	assert.Equal(t, "Valid Fair", result.Events[0].Title)
}

package event

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citypulse/citypulse/internal/platform/apperr"
)

// fakeRepository is an in-memory Repository for service tests.
type fakeRepository struct {
	events []*Event
	nextID int
}

func (f *fakeRepository) ListByCity(_ context.Context, cityID, limit, offset int) ([]*Event, int, error) {
	var matched []*Event
	for _, e := range f.events {
		if e.CityID == cityID {
			matched = append(matched, e)
		}
	}

	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (f *fakeRepository) Featured(_ context.Context, limit int) ([]*Event, error) {
	var featured []*Event
	for _, e := range f.events {
		if e.IsFeatured && len(featured) < limit {
			featured = append(featured, e)
		}
	}
	return featured, nil
}

func (f *fakeRepository) FindByID(_ context.Context, id int) (*Event, error) {
	for _, e := range f.events {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, apperr.NotFound("Event")
}

func (f *fakeRepository) Create(_ context.Context, event *Event) error {
	f.nextID++
	event.ID = f.nextID
	f.events = append(f.events, event)
	return nil
}

func newTestService() (*Service, *fakeRepository) {
	repo := &fakeRepository{}
	return NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil))), repo
}

/*
TestCreate_NormalizesCategory verifies that the free-text category on the
write path is always mapped onto the closed set before persistence.
*/
func TestCreate_NormalizesCategory(t *testing.T) {
	service, repo := newTestService()
	date := time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		raw      string
		expected Category
	}{
		{name: "exact member passes through", raw: "CULTURAL", expected: CategoryCultural},
		{name: "lowercase member is uppercased", raw: "sports", expected: CategorySports},
		{name: "unknown text falls back to OTHER", raw: "underwater basket weaving", expected: CategoryOther},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			event := &Event{
				Title:     "Test Event",
				Location:  "Town Hall",
				EventDate: &date,
				CityID:    1,
			}

			err := service.Create(context.Background(), event, testCase.raw)
			require.NoError(t, err)

			assert.Equal(t, testCase.expected, event.Category)
			assert.Equal(t, testCase.expected, repo.events[len(repo.events)-1].Category)
		})
	}
}

/*
TestCreate_Validation verifies that incomplete events are rejected before
reaching the repository.
*/
func TestCreate_Validation(t *testing.T) {
	date := time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC)

	testCases := []struct {
		name  string
		event *Event
		raw   string
	}{
		{
			name:  "missing title",
			event: &Event{Location: "Town Hall", EventDate: &date, CityID: 1},
			raw:   "CULTURAL",
		},
		{
			name:  "missing location",
			event: &Event{Title: "Concert", EventDate: &date, CityID: 1},
			raw:   "CULTURAL",
		},
		{
			name:  "missing date",
			event: &Event{Title: "Concert", Location: "Town Hall", CityID: 1},
			raw:   "CULTURAL",
		},
		{
			name:  "missing category",
			event: &Event{Title: "Concert", Location: "Town Hall", EventDate: &date, CityID: 1},
			raw:   "",
		},
		{
			name:  "non-positive city id",
			event: &Event{Title: "Concert", Location: "Town Hall", EventDate: &date, CityID: 0},
			raw:   "CULTURAL",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			service, repo := newTestService()

			err := service.Create(context.Background(), testCase.event, testCase.raw)
			require.Error(t, err)

			var appError *apperr.AppError
			require.ErrorAs(t, err, &appError)
			assert.Equal(t, "VALIDATION_ERROR", appError.Code)
			assert.Empty(t, repo.events)
		})
	}
}

/*
TestCreateCandidate_AllowsMissingDate verifies the AI-sourced write path,
which persists candidates without a date and re-normalizes the category.
*/
func TestCreateCandidate_AllowsMissingDate(t *testing.T) {
	service, repo := newTestService()

	candidate := &Event{
		Title:    "Street Food Festival",
		Category: Category("business"),
		Location: "Riverside Market",
		CityID:   3,
	}

	err := service.CreateCandidate(context.Background(), candidate)
	require.NoError(t, err)

	require.Len(t, repo.events, 1)
	assert.Nil(t, repo.events[0].EventDate)
	assert.Equal(t, CategoryBusiness, repo.events[0].Category)
}

/*
TestCreateCandidate_RequiresTitleAndLocation verifies that candidates missing
the identifying fields are rejected.
*/
func TestCreateCandidate_RequiresTitleAndLocation(t *testing.T) {
	service, repo := newTestService()

	err := service.CreateCandidate(context.Background(), &Event{
		Category: CategoryCultural,
		CityID:   3,
	})
	require.Error(t, err)
	assert.Empty(t, repo.events)
}

func TestParseEventDate(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
		ok   bool
	}{
		{name: "rfc3339", raw: "2026-09-12T19:00:00Z", ok: true},
		{name: "plain date", raw: "2026-09-12", ok: true},
		{name: "garbage", raw: "next friday", ok: false},
		{name: "empty", raw: "", ok: false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			parsed, ok := ParseEventDate(testCase.raw)
			assert.Equal(t, testCase.ok, ok)
			if testCase.ok {
				require.NotNil(t, parsed)
			}
		})
	}
}

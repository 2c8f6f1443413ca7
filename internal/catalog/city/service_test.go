package city

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citypulse/citypulse/internal/platform/apperr"
)

// fakeRepository is an in-memory Repository for service tests.
type fakeRepository struct {
	cities []*City
	nextID int

	searchCalls int
}

func (f *fakeRepository) List(_ context.Context, limit, offset int) ([]*City, int, error) {
	total := len(f.cities)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return f.cities[offset:end], total, nil
}

func (f *fakeRepository) FindByID(_ context.Context, id int) (*City, error) {
	for _, c := range f.cities {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, apperr.NotFound("City")
}

func (f *fakeRepository) FindByNameContains(_ context.Context, fragment string) (*City, error) {
	for _, c := range f.cities {
		if strings.Contains(strings.ToLower(c.Name), strings.ToLower(fragment)) {
			return c, nil
		}
	}
	return nil, apperr.NotFound("City")
}

func (f *fakeRepository) Search(_ context.Context, query string, limit int) ([]*City, error) {
	f.searchCalls++
	var matched []*City
	for _, c := range f.cities {
		if strings.Contains(strings.ToLower(c.Name), strings.ToLower(query)) && len(matched) < limit {
			matched = append(matched, c)
		}
	}
	return matched, nil
}

func (f *fakeRepository) Create(_ context.Context, city *City) error {
	f.nextID++
	city.ID = f.nextID
	f.cities = append(f.cities, city)
	return nil
}

func newTestService() (*Service, *fakeRepository) {
	repo := &fakeRepository{}
	return NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil))), repo
}

/*
TestCreate_DerivesSlug verifies that the browse slug is derived from the name
and cannot be supplied by the caller.
*/
func TestCreate_DerivesSlug(t *testing.T) {
	service, _ := newTestService()

	city := &City{Name: "São Paulo", Country: "Brazil", Slug: "client-supplied"}

	err := service.Create(context.Background(), city)
	require.NoError(t, err)

	assert.Equal(t, "sao-paulo", city.Slug)
	assert.NotZero(t, city.ID)
}

func TestCreate_Validation(t *testing.T) {
	testCases := []struct {
		name string
		city *City
	}{
		{name: "missing name", city: &City{Country: "Vietnam"}},
		{name: "missing country", city: &City{Name: "Hanoi"}},
		{name: "blank name", city: &City{Name: "   ", Country: "Vietnam"}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			service, repo := newTestService()

			err := service.Create(context.Background(), testCase.city)
			require.Error(t, err)

			var appError *apperr.AppError
			require.ErrorAs(t, err, &appError)
			assert.Equal(t, "VALIDATION_ERROR", appError.Code)
			assert.Empty(t, repo.cities)
		})
	}
}

/*
TestSearch_EmptyQuery verifies the empty-query short circuit: no storage call
and an empty (not nil) result.
*/
func TestSearch_EmptyQuery(t *testing.T) {
	service, repo := newTestService()
	repo.cities = []*City{{ID: 1, Name: "Hanoi", Country: "Vietnam"}}

	for _, query := range []string{"", "   "} {
		cities, err := service.Search(context.Background(), query)
		require.NoError(t, err)
		assert.NotNil(t, cities)
		assert.Empty(t, cities)
	}

	assert.Zero(t, repo.searchCalls)
}

func TestSearch_MatchesSubstring(t *testing.T) {
	service, repo := newTestService()
	repo.cities = []*City{
		{ID: 1, Name: "Hanoi", Country: "Vietnam"},
		{ID: 2, Name: "Ho Chi Minh City", Country: "Vietnam"},
		{ID: 3, Name: "Lisbon", Country: "Portugal"},
	}

	cities, err := service.Search(context.Background(), "ho")
	require.NoError(t, err)

	require.Len(t, cities, 1)
	assert.Equal(t, "Ho Chi Minh City", cities[0].Name)
}

func TestGetByName_Fragment(t *testing.T) {
	service, repo := newTestService()
	repo.cities = []*City{{ID: 1, Name: "Hanoi", Country: "Vietnam"}}

	city, err := service.GetByName(context.Background(), "hano")
	require.NoError(t, err)
	assert.Equal(t, 1, city.ID)

	_, err = service.GetByName(context.Background(), "atlantis")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

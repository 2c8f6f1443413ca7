package city

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/citypulse/citypulse/internal/platform/request"
	"github.com/citypulse/citypulse/internal/platform/respond"
	"github.com/citypulse/citypulse/pkg/pagination"
)

// Handler exposes the city catalog over HTTP.
type Handler struct {
	service *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the city endpoints on the given router. The enclosing
// router owns the /cities prefix.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.List)
	router.Get("/search", handler.Search)
	router.Get("/by-name/{name}", handler.GetByName)
	router.Get("/{id}", handler.Get)
	router.Post("/", handler.Create)
}

// # Read Endpoints

// List handles GET /api/v1/cities.
func (handler *Handler) List(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	cities, total, err := handler.service.List(request.Context(), params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if cities == nil {
		cities = []*City{}
	}

	respond.Paginated(writer, cities, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
Search handles GET /api/v1/cities/search?q=.

Description: Typeahead suggestions for the city picker. An empty query
returns an empty list, not an error.
*/
func (handler *Handler) Search(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query().Get("q")

	cities, err := handler.service.Search(request.Context(), query)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, cities)
}

// GetByName handles GET /api/v1/cities/by-name/{name}.
func (handler *Handler) GetByName(writer http.ResponseWriter, request *http.Request) {
	name := requestutil.Param(request, "name")

	city, err := handler.service.GetByName(request.Context(), name)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, city)
}

// Get handles GET /api/v1/cities/{id}.
func (handler *Handler) Get(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	city, err := handler.service.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, city)
}

// # Write Endpoints

// CreateCityRequest is the wire payload for creating a city.
type CreateCityRequest struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}

// Create handles POST /api/v1/cities.
func (handler *Handler) Create(writer http.ResponseWriter, request *http.Request) {
	var payload CreateCityRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	city := &City{
		Name:    payload.Name,
		Country: payload.Country,
	}

	if err := handler.service.Create(request.Context(), city); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, city)
}

package event

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/citypulse/citypulse/internal/platform/constants"
	requestutil "github.com/citypulse/citypulse/internal/platform/request"
	"github.com/citypulse/citypulse/internal/platform/respond"
	"github.com/citypulse/citypulse/internal/platform/validate"
	"github.com/citypulse/citypulse/pkg/pagination"
)

// Handler exposes the event catalog over HTTP.
type Handler struct {
	service *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the event endpoints on the given router.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/categories", handler.Categories)
	router.Get("/featured", handler.Featured)
	router.Get("/{id}", handler.Get)
	router.Post("/", handler.Create)
}

// RegisterCityRoutes mounts the city-scoped event endpoints. The enclosing
// router owns the /cities prefix.
func (handler *Handler) RegisterCityRoutes(router chi.Router) {
	router.Get("/{id}/events", handler.ListByCity)
}

// # Read Endpoints

/*
ListByCity handles GET /api/v1/cities/{id}/events.

Description: Returns a paginated page of the city's events, earliest first.
An unknown city id yields an empty page rather than a 404; this is the read
that discovery clients poll after triggering a scrape.
*/
func (handler *Handler) ListByCity(writer http.ResponseWriter, request *http.Request) {
	cityID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)

	events, total, err := handler.service.ListByCity(request.Context(), cityID, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if events == nil {
		events = []*Event{}
	}

	respond.Paginated(writer, events, pagination.NewMeta(params.Page, params.Limit, total))
}

// Categories handles GET /api/v1/events/categories. Browse filters render
// from this list instead of hardcoding the taxonomy.
func (handler *Handler) Categories(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, AllCategories())
}

// Featured handles GET /api/v1/events/featured.
func (handler *Handler) Featured(writer http.ResponseWriter, request *http.Request) {
	events, err := handler.service.Featured(request.Context(), constants.MaxFeaturedEvents)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if events == nil {
		events = []*Event{}
	}

	respond.OK(writer, events)
}

// Get handles GET /api/v1/events/{id}.
func (handler *Handler) Get(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	event, err := handler.service.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, event)
}

// # Write Endpoints

// CreateEventRequest is the wire payload for creating an event.
type CreateEventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Location    string `json:"location"`
	EventDate   string `json:"event_date"`
	ImageURL    string `json:"image_url"`
	IsFeatured  bool   `json:"is_featured"`
	CityID      int    `json:"city_id"`
}

/*
Create handles POST /api/v1/events.

Description: This is the structured write path used both by API clients and
by the scraper process posting results back. The category field accepts free
text and is normalized onto the closed set; anything unrecognized lands in
OTHER rather than failing the request.
*/
func (handler *Handler) Create(writer http.ResponseWriter, request *http.Request) {
	var payload CreateEventRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	eventDate, ok := ParseEventDate(payload.EventDate)
	if payload.EventDate != "" && !ok {
		validator := &validate.Validator{}
		validator.Custom(FieldDate, true, "Must be an RFC 3339 timestamp or a 2006-01-02 date")
		respond.Error(writer, request, validator.Err())
		return
	}

	event := &Event{
		Title:       payload.Title,
		Description: payload.Description,
		Location:    payload.Location,
		EventDate:   eventDate,
		ImageURL:    payload.ImageURL,
		IsFeatured:  payload.IsFeatured,
		CityID:      payload.CityID,
	}

	if err := handler.service.Create(request.Context(), event, payload.Category); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, event)
}

package discovery

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/citypulse/citypulse/internal/platform/request"
	"github.com/citypulse/citypulse/internal/platform/respond"
)

// Handler exposes the discovery pipeline over HTTP.
type Handler struct {
	service *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the discovery endpoints. The enclosing router owns
// the /cities prefix.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/{id}/find-events", handler.Trigger)
	router.Post("/{id}/extract-events", handler.Extract)
}

/*
Trigger handles POST /api/v1/cities/{id}/find-events.

Description: Launches the external scraper and acknowledges with 202. The
acknowledgment means "launched", not "found anything"; clients re-read the
city's events later to observe results.
*/
func (handler *Handler) Trigger(writer http.ResponseWriter, request *http.Request) {
	cityID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	ack, err := handler.service.Trigger(request.Context(), cityID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Accepted(writer, ack)
}

/*
Extract handles POST /api/v1/cities/{id}/extract-events.

Description: Runs the synchronous AI extraction path and returns the
persisted events.
*/
func (handler *Handler) Extract(writer http.ResponseWriter, request *http.Request) {
	cityID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.ExtractAndStore(request.Context(), cityID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, result)
}

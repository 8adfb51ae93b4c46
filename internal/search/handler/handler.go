package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"playfinder/internal/place/models"
	"playfinder/internal/search"
	dErrors "playfinder/pkg/domain-errors"
	"playfinder/pkg/geo"
	"playfinder/pkg/platform/httputil"
	"playfinder/pkg/requestcontext"
)

// Service defines the search operations the handler depends on.
type Service interface {
	Search(ctx context.Context, req search.Request) ([]models.Place, error)
}

// Handler wires the playground search endpoint to the search service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts search endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/playgrounds", h.HandleSearch)
}

// HandleSearch handles GET /playgrounds requests. Accepts either a free-text
// query or lat/lng coordinates with an optional radius; with neither, the
// service resolves a location itself.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, err := parseSearchParams(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	places, err := h.service.Search(ctx, req)
	if err != nil {
		h.logger.ErrorContext(ctx, "playground search failed",
			"request_id", requestID,
			"query", req.Text,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "playground search served",
		"request_id", requestID,
		"query", req.Text,
		"results", len(places),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, SearchResponse{
		Playgrounds: places,
		Count:       len(places),
	})
}

// SearchResponse is the HTTP response for GET /playgrounds.
type SearchResponse struct {
	Playgrounds []models.Place `json:"playgrounds"`
	Count       int            `json:"count"`
}

func parseSearchParams(r *http.Request) (search.Request, error) {
	q := r.URL.Query()
	req := search.Request{Text: strings.TrimSpace(q.Get("query"))}

	latRaw, lngRaw := q.Get("lat"), q.Get("lng")
	if (latRaw == "") != (lngRaw == "") {
		return search.Request{}, dErrors.New(dErrors.CodeInvalidInput, "lat and lng must be provided together")
	}
	if latRaw != "" {
		lat, err := strconv.ParseFloat(latRaw, 64)
		if err != nil {
			return search.Request{}, dErrors.New(dErrors.CodeInvalidInput, "lat must be a number")
		}
		lng, err := strconv.ParseFloat(lngRaw, 64)
		if err != nil {
			return search.Request{}, dErrors.New(dErrors.CodeInvalidInput, "lng must be a number")
		}
		coords := geo.Coordinates{Lat: lat, Lng: lng}
		if !coords.Valid() {
			return search.Request{}, dErrors.New(dErrors.CodeInvalidInput, "lat/lng out of range")
		}
		req.Coords = &coords
	}

	if radiusRaw := q.Get("radius"); radiusRaw != "" {
		radius, err := strconv.Atoi(radiusRaw)
		if err != nil || radius <= 0 {
			return search.Request{}, dErrors.New(dErrors.CodeInvalidInput, "radius must be a positive integer")
		}
		req.RadiusMeters = radius
	}

	return req, nil
}

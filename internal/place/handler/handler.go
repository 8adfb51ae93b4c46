package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"playfinder/internal/place/models"
	placeservice "playfinder/internal/place/service"
	dErrors "playfinder/pkg/domain-errors"
	id "playfinder/pkg/domain"
	"playfinder/pkg/geo"
	"playfinder/pkg/platform/httputil"
	"playfinder/pkg/requestcontext"
)

// Service defines the place operations the handler depends on.
type Service interface {
	Detail(ctx context.Context, externalID string) (models.Place, error)
	Submit(ctx context.Context, userID id.UserID, input placeservice.SubmitInput) (models.Place, error)
	Remove(ctx context.Context, userID id.UserID, placeID id.PlaceID) error
	Near(ctx context.Context, req placeservice.NearRequest) ([]models.Place, error)
}

// Saver is the saved-playgrounds relation, owned by the user service.
type Saver interface {
	SavePlace(ctx context.Context, userID id.UserID, placeID id.PlaceID) error
	UnsavePlace(ctx context.Context, userID id.UserID, placeID id.PlaceID) error
}

// Handler wires place endpoints to the place service.
type Handler struct {
	service Service
	saver   Saver
	logger  *slog.Logger
}

func New(service Service, saver Saver, logger *slog.Logger) *Handler {
	return &Handler{service: service, saver: saver, logger: logger}
}

// RegisterPublic mounts the read-only endpoints.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/playgrounds/near", h.HandleNear)
	r.Get("/playgrounds/id/{externalID}", h.HandleDetail)
}

// RegisterProtected mounts the endpoints that require a valid bearer token.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Post("/playgrounds", h.HandleSubmit)
	r.Delete("/playgrounds/{placeID}", h.HandleRemove)
	r.Post("/playgrounds/{placeID}/save", h.HandleSave)
	r.Delete("/playgrounds/{placeID}/save", h.HandleUnsave)
}

// HandleDetail handles GET /playgrounds/id/{externalID} requests.
func (h *Handler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	place, err := h.service.Detail(ctx, chi.URLParam(r, "externalID"))
	if err != nil {
		if dErrors.CodeOf(err) != dErrors.CodeNotFound {
			h.logger.ErrorContext(ctx, "playground detail failed",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, place)
}

// HandleNear handles GET /playgrounds/near requests. Answers purely from the
// in-memory index.
func (h *Handler) HandleNear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := parseNearParams(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	places, err := h.service.Near(ctx, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, PlacesResponse{Playgrounds: places, Count: len(places)})
}

// HandleSubmit handles POST /playgrounds requests.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID := requestcontext.UserID(ctx)
	if userID == (id.UserID{}) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[SubmitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	place, err := h.service.Submit(ctx, userID, req.ToInput())
	if err != nil {
		h.logger.ErrorContext(ctx, "playground submission failed",
			"request_id", requestID,
			"user_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, place)
}

// HandleRemove handles DELETE /playgrounds/{placeID} requests.
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := requestcontext.UserID(ctx)
	if userID == (id.UserID{}) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	placeID, err := id.ParsePlaceID(chi.URLParam(r, "placeID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid place id"))
		return
	}

	if err := h.service.Remove(ctx, userID, placeID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSave handles POST /playgrounds/{placeID}/save requests.
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	h.handleSaveChange(w, r, h.saver.SavePlace)
}

// HandleUnsave handles DELETE /playgrounds/{placeID}/save requests.
func (h *Handler) HandleUnsave(w http.ResponseWriter, r *http.Request) {
	h.handleSaveChange(w, r, h.saver.UnsavePlace)
}

func (h *Handler) handleSaveChange(w http.ResponseWriter, r *http.Request, change func(context.Context, id.UserID, id.PlaceID) error) {
	ctx := r.Context()

	userID := requestcontext.UserID(ctx)
	if userID == (id.UserID{}) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	placeID, err := id.ParsePlaceID(chi.URLParam(r, "placeID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid place id"))
		return
	}

	if err := change(ctx, userID, placeID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PlacesResponse is the HTTP response for place listings.
type PlacesResponse struct {
	Playgrounds []models.Place `json:"playgrounds"`
	Count       int            `json:"count"`
}

func parseNearParams(r *http.Request) (placeservice.NearRequest, error) {
	q := r.URL.Query()

	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		return placeservice.NearRequest{}, dErrors.New(dErrors.CodeInvalidInput, "lat must be a number")
	}
	lng, err := strconv.ParseFloat(q.Get("lng"), 64)
	if err != nil {
		return placeservice.NearRequest{}, dErrors.New(dErrors.CodeInvalidInput, "lng must be a number")
	}
	req := placeservice.NearRequest{Coords: geo.Coordinates{Lat: lat, Lng: lng}}
	if !req.Coords.Valid() {
		return placeservice.NearRequest{}, dErrors.New(dErrors.CodeInvalidInput, "lat/lng out of range")
	}

	if raw := q.Get("radius"); raw != "" {
		radius, err := strconv.Atoi(raw)
		if err != nil || radius <= 0 {
			return placeservice.NearRequest{}, dErrors.New(dErrors.CodeInvalidInput, "radius must be a positive integer")
		}
		req.RadiusMeters = radius
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return placeservice.NearRequest{}, dErrors.New(dErrors.CodeInvalidInput, "limit must be a positive integer")
		}
		req.Limit = limit
	}
	return req, nil
}

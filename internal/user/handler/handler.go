package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	placemodels "playfinder/internal/place/models"
	"playfinder/internal/user/models"
	dErrors "playfinder/pkg/domain-errors"
	id "playfinder/pkg/domain"
	"playfinder/pkg/platform/httputil"
	"playfinder/pkg/requestcontext"
)

// Service defines the account operations the handler depends on.
type Service interface {
	Register(ctx context.Context, name, email, password string) (models.User, error)
	Login(ctx context.Context, email, password string) (models.User, error)
	Logout(ctx context.Context, userID id.UserID) error
	SavedPlaces(ctx context.Context, userID id.UserID) ([]placemodels.Place, error)
}

// Handler wires account endpoints to the user service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the endpoints that need no authentication.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/users", h.HandleRegister)
	r.Post("/sessions", h.HandleLogin)
}

// RegisterProtected mounts the endpoints that require a valid bearer token.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Delete("/sessions", h.HandleLogout)
	r.Get("/users/me/saved", h.HandleSavedPlaces)
}

// HandleRegister handles POST /users requests.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	user, err := h.service.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeConflict) {
			h.logger.ErrorContext(ctx, "user registration failed",
				"request_id", requestID,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "user registered",
		"request_id", requestID,
		"user_id", user.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, FromUser(user))
}

// HandleLogin handles POST /sessions requests.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	user, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "session opened",
		"request_id", requestID,
		"user_id", user.ID,
	)
	httputil.WriteJSON(w, http.StatusOK, FromUser(user))
}

// HandleLogout handles DELETE /sessions requests.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)
	if userID == (id.UserID{}) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	if err := h.service.Logout(ctx, userID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSavedPlaces handles GET /users/me/saved requests.
func (h *Handler) HandleSavedPlaces(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)
	if userID == (id.UserID{}) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	places, err := h.service.SavedPlaces(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "listing saved playgrounds failed",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if places == nil {
		places = []placemodels.Place{}
	}

	httputil.WriteJSON(w, http.StatusOK, SavedPlacesResponse{
		Playgrounds: places,
		Count:       len(places),
	})
}

// UserResponse is the HTTP shape of an account. The access token appears only
// here, in direct responses to register and login.
type UserResponse struct {
	ID          id.UserID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	AccessToken string    `json:"accessToken"`
	CreatedAt   time.Time `json:"createdAt"`
}

// SavedPlacesResponse is the HTTP response for GET /users/me/saved.
type SavedPlacesResponse struct {
	Playgrounds []placemodels.Place `json:"playgrounds"`
	Count       int                 `json:"count"`
}

// FromUser converts a domain user to its HTTP shape.
func FromUser(user models.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		AccessToken: user.AccessToken,
		CreatedAt:   user.CreatedAt,
	}
}

// AngelaMos | 2026
// handler.go

package usage

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/control-panel/internal/core"
	"github.com/carterperez-dev/templates/control-panel/internal/middleware"
)

type RecordRequest struct {
	Tokens int64 `json:"tokens" validate:"gte=0,lte=1000000"`
}

type Handler struct {
	service   *Service
	loader    middleware.SnapshotLoader
	validator *validator.Validate
}

func NewHandler(service *Service, loader middleware.SnapshotLoader) *Handler {
	return &Handler{
		service:   service,
		loader:    loader,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	optionalAuth func(http.Handler) http.Handler,
) {
	r.Route("/usage", func(r chi.Router) {
		r.Use(optionalAuth)
		r.Get("/", h.Current)
		r.Post("/", h.Record)
	})
}

func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	var req RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	caller, err := middleware.LoadSnapshot(r.Context(), h.loader)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	status, err := h.service.Record(r.Context(), caller, middleware.ClientIP(r), req.Tokens)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, status)
}

func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	caller, err := middleware.LoadSnapshot(r.Context(), h.loader)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	status, err := h.service.Current(r.Context(), caller, middleware.ClientIP(r))
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, status)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrSuspended), errors.Is(err, core.ErrInvalidInput):
		core.JSONError(w, err)
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "user")
	default:
		core.InternalServerError(w, err)
	}
}

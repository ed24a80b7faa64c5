// AngelaMos | 2026
// handler.go

package panel

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/control-panel/internal/access"
	"github.com/carterperez-dev/templates/control-panel/internal/core"
	"github.com/carterperez-dev/templates/control-panel/internal/middleware"
)

type SaveTabsRequest struct {
	Tabs []access.TabDescriptor `json:"tabs" validate:"required,max=64"`
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

// RegisterRoutes mounts the tab endpoints. optionalAuth lets guests read
// their tab bar; writes go through guards.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	optionalAuth func(http.Handler) http.Handler,
) {
	r.Route("/panel/tabs", func(r chi.Router) {
		r.Use(optionalAuth)

		r.Get("/", h.ListTabs)
		r.Get("/{tabID}/access", h.TabAccess)

		r.With(middleware.RequireDeveloper(h.loader)).Put("/", h.SaveTabs)
		r.With(middleware.Guard(h.loader, access.Requirement{})).Delete("/", h.ResetTabs)
	})
}

func (h *Handler) ListTabs(w http.ResponseWriter, r *http.Request) {
	viewer, err := middleware.LoadSnapshot(r.Context(), h.loader)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	tabs, err := h.service.VisibleTabs(r.Context(), viewer)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, map[string]any{"tabs": tabs})
}

func (h *Handler) TabAccess(w http.ResponseWriter, r *http.Request) {
	viewer, err := middleware.LoadSnapshot(r.Context(), h.loader)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	res, err := h.service.TabAccess(
		r.Context(),
		viewer,
		access.TabID(chi.URLParam(r, "tabID")),
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "tab")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, res)
}

func (h *Handler) SaveTabs(w http.ResponseWriter, r *http.Request) {
	var req SaveTabsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	tabs, err := h.service.Save(r.Context(), middleware.GetSnapshot(r.Context()), req.Tabs)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, err.Error())
			return
		}
		core.JSONError(w, err)
		return
	}

	core.OK(w, map[string]any{"tabs": tabs})
}

func (h *Handler) ResetTabs(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Reset(r.Context(), middleware.GetSnapshot(r.Context())); err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

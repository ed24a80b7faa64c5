// AngelaMos | 2026
// handler.go

package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/control-panel/internal/core"
	"github.com/carterperez-dev/templates/control-panel/internal/middleware"
)

// ProfileQueue accepts profile edits for deferred, coalesced writing.
type ProfileQueue interface {
	Submit(userID string, fields map[string]string)
}

type Handler struct {
	service   *Service
	profiles  ProfileQueue
	validator *validator.Validate
}

func NewHandler(service *Service, profiles ProfileQueue) *Handler {
	return &Handler{
		service:   service,
		profiles:  profiles,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes mounts self-service routes. Reading your own record only
// needs a token so suspended users can still see their status.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, guard func(http.Handler) http.Handler,
) {
	r.Route("/users/me", func(r chi.Router) {
		r.Use(authenticator)
		r.Get("/", h.GetMe)

		r.Group(func(r chi.Router) {
			r.Use(guard)
			r.Delete("/", h.DeleteMe)
			r.Patch("/profile", h.UpdateProfile)
			r.Put("/preferences", h.UpdatePreferences)
		})
	})
}

// RegisterAdminRoutes mounts user management. The guard only demands an
// active account; each operation applies its own permission rule.
func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, guard func(http.Handler) http.Handler,
) {
	r.Route("/admin/users", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(guard)

		r.Get("/", h.ListUsers)
		r.Get("/{userID}", h.GetUser)
		r.Put("/{userID}/role", h.UpdateRole)
		r.Put("/{userID}/permissions", h.UpdatePermissions)
		r.Put("/{userID}/suspension", h.UpdateSuspension)
		r.Put("/{userID}/tier", h.UpdateTier)
	})
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.GetMe(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToUserResponse(u))
}

func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteMe(r.Context(), middleware.GetUserID(r.Context())); err != nil {
		writeError(w, err)
		return
	}

	core.NoContent(w)
}

// UpdateProfile queues the edit and answers 202 before it is persisted.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if !h.decode(w, r, &req) {
		return
	}

	fields := req.Fields()
	if len(fields) == 0 {
		core.BadRequest(w, "no profile fields provided")
		return
	}

	h.profiles.Submit(middleware.GetUserID(r.Context()), fields)
	core.Accepted(w, map[string]any{"queued": fields})
}

func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var req UpdatePreferencesRequest
	if !h.decode(w, r, &req) {
		return
	}

	u, err := h.service.UpdatePreferences(
		r.Context(),
		middleware.GetUserID(r.Context()),
		req,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToUserResponse(u))
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := ListUsersParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 20),
		Search:   q.Get("search"),
		Role:     q.Get("role"),
		Tier:     q.Get("tier"),
	}
	if v, err := strconv.ParseBool(q.Get("suspended")); err == nil {
		params.Suspended = &v
	}
	params.Normalize()

	users, total, err := h.service.ListUsers(
		r.Context(),
		middleware.GetSnapshot(r.Context()),
		params,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Paginated(
		w,
		ToUserResponseList(users),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.GetUser(
		r.Context(),
		middleware.GetSnapshot(r.Context()),
		chi.URLParam(r, "userID"),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToUserResponse(u))
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req UpdateRoleRequest
	if !h.decode(w, r, &req) {
		return
	}

	u, err := h.service.ChangeRole(
		r.Context(),
		middleware.GetSnapshot(r.Context()),
		chi.URLParam(r, "userID"),
		req.Role,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToUserResponse(u))
}

func (h *Handler) UpdatePermissions(w http.ResponseWriter, r *http.Request) {
	var req UpdatePermissionsRequest
	if !h.decode(w, r, &req) {
		return
	}

	u, err := h.service.SetPermissions(
		r.Context(),
		middleware.GetSnapshot(r.Context()),
		chi.URLParam(r, "userID"),
		req.Permissions(),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToUserResponse(u))
}

func (h *Handler) UpdateSuspension(w http.ResponseWriter, r *http.Request) {
	var req UpdateSuspensionRequest
	if !h.decode(w, r, &req) {
		return
	}

	u, err := h.service.SetSuspended(
		r.Context(),
		middleware.GetSnapshot(r.Context()),
		chi.URLParam(r, "userID"),
		*req.Suspended,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToUserResponse(u))
}

func (h *Handler) UpdateTier(w http.ResponseWriter, r *http.Request) {
	var req UpdateTierRequest
	if !h.decode(w, r, &req) {
		return
	}

	u, err := h.service.ChangeTier(
		r.Context(),
		middleware.GetSnapshot(r.Context()),
		chi.URLParam(r, "userID"),
		req.Tier,
		req.EndsAt,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToUserResponse(u))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		core.BadRequest(w, "invalid request body")
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "user")
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, err.Error())
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "insufficient permissions")
	case errors.Is(err, core.ErrUnauthorized):
		core.Unauthorized(w, "")
	default:
		core.InternalServerError(w, err)
	}
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	parsed, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return defaultVal
	}
	return parsed
}

// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/control-panel/internal/access"
	"github.com/carterperez-dev/templates/control-panel/internal/auth"
	"github.com/carterperez-dev/templates/control-panel/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Snapshot loads the authorization view of a user for guards.
func (s *Service) Snapshot(
	ctx context.Context,
	id string,
) (*access.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.Snapshot(), nil
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserInfo(u), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	return toUserInfo(u), nil
}

// Create provisions a self-registered account: role user with that
// role's default permissions, free tier, unverified.
func (s *Service) Create(
	ctx context.Context,
	email, passwordHash, displayName string,
) (*auth.UserInfo, error) {
	u := NewUser(email, passwordHash, displayName, access.RoleUser)
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return toUserInfo(u), nil
}

// NewUser builds an unsaved user record with the default permission
// record for role.
func NewUser(email, passwordHash, displayName string, role access.Role) *User {
	return &User{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(email),
		PasswordHash: passwordHash,
		DisplayName:  displayName,
		Role:         role,
		Permissions:  NewJSONB(access.DefaultPermissions(role)),
		Profile:      NewJSONB(Profile{}),
		Preferences:  NewJSONB(Preferences{}),
		Tier:         TierFree,
	}
}

func (s *Service) IncrementTokenVersion(
	ctx context.Context,
	userID string,
) error {
	return s.repo.IncrementTokenVersion(ctx, userID)
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) TouchLastLogin(ctx context.Context, userID string) error {
	return s.repo.TouchLastLogin(ctx, userID)
}

func (s *Service) GetMe(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}
	return s.repo.GetByID(ctx, userID)
}

func (s *Service) DeleteMe(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("delete me: %w", core.ErrUnauthorized)
	}
	return s.repo.SoftDelete(ctx, userID)
}

// WriteProfileFields persists coalesced profile edits. Unknown field
// names are rejected before anything is written.
func (s *Service) WriteProfileFields(
	ctx context.Context,
	userID string,
	fields map[string]string,
) error {
	if len(fields) == 0 {
		return nil
	}
	for name := range fields {
		if !KnownProfileField(name) {
			return fmt.Errorf(
				"write profile: unknown field %q: %w",
				name,
				core.ErrInvalidInput,
			)
		}
	}
	return s.repo.UpdateProfileFields(ctx, userID, fields)
}

func (s *Service) UpdatePreferences(
	ctx context.Context,
	userID string,
	req UpdatePreferencesRequest,
) (*User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	prefs := u.Preferences.V
	if req.Notifications != nil {
		prefs.Notifications = req.Notifications
	}
	if req.Theme != "" {
		prefs.Theme = req.Theme
	}
	if req.Language != "" {
		prefs.Language = req.Language
	}

	if err := s.repo.UpdatePreferences(ctx, userID, prefs); err != nil {
		return nil, err
	}

	u.Preferences = NewJSONB(prefs)
	return u, nil
}

// RecordUsage adds tokens to the user's running total and returns it.
func (s *Service) RecordUsage(
	ctx context.Context,
	userID string,
	tokens int64,
) (int64, error) {
	if tokens < 0 {
		return 0, fmt.Errorf("record usage: negative amount: %w", core.ErrInvalidInput)
	}
	return s.repo.RecordUsage(ctx, userID, tokens)
}

func (s *Service) CountByRole(ctx context.Context) (map[access.Role]int, error) {
	return s.repo.CountByRole(ctx)
}

func (s *Service) CountBySuspension(ctx context.Context) (active, suspended int, err error) {
	return s.repo.CountBySuspension(ctx)
}

// canList mirrors who may open the user directory: administrators,
// developers, and anyone explicitly granted canManageUsers.
func canList(actor *access.User) bool {
	return access.HasRole(actor, access.RoleAdmin, access.RoleDeveloper) ||
		access.HasPermission(actor, access.PermManageUsers)
}

func requireManage(actor *access.User, op string) error {
	if !access.HasPermission(actor, access.PermManageUsers) {
		return fmt.Errorf("%s: %w", op, core.ErrForbidden)
	}
	return nil
}

func (s *Service) ListUsers(
	ctx context.Context,
	actor *access.User,
	params ListUsersParams,
) ([]User, int, error) {
	if !canList(actor) {
		return nil, 0, fmt.Errorf("list users: %w", core.ErrForbidden)
	}
	if params.Role != "" {
		if _, ok := access.ParseRole(params.Role); !ok {
			return nil, 0, fmt.Errorf(
				"list users: invalid role %q: %w",
				params.Role,
				core.ErrInvalidInput,
			)
		}
	}
	return s.repo.List(ctx, params)
}

func (s *Service) GetUser(
	ctx context.Context,
	actor *access.User,
	id string,
) (*User, error) {
	if !canList(actor) {
		return nil, fmt.Errorf("get user: %w", core.ErrForbidden)
	}
	return s.repo.GetByID(ctx, id)
}

// ChangeRole resets the permission record to the new role's defaults.
// Administrators cannot change their own role.
func (s *Service) ChangeRole(
	ctx context.Context,
	actor *access.User,
	id, roleName string,
) (*User, error) {
	if err := requireManage(actor, "change role"); err != nil {
		return nil, err
	}

	role, ok := access.ParseRole(roleName)
	if !ok {
		return nil, fmt.Errorf(
			"change role: invalid role %q: %w",
			roleName,
			core.ErrInvalidInput,
		)
	}

	if actor.ID == id && role != actor.Role {
		return nil, fmt.Errorf("change role: cannot change own role: %w", core.ErrForbidden)
	}

	if err := s.repo.UpdateRole(ctx, id, role, access.DefaultPermissions(role)); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, id)
}

func (s *Service) SetPermissions(
	ctx context.Context,
	actor *access.User,
	id string,
	perms access.Permissions,
) (*User, error) {
	if err := requireManage(actor, "set permissions"); err != nil {
		return nil, err
	}
	if perms.MaxTokensPerMonth < 0 || perms.MaxProjectsAllowed < 0 {
		return nil, fmt.Errorf("set permissions: negative quota: %w", core.ErrInvalidInput)
	}

	if err := s.repo.UpdatePermissions(ctx, id, perms); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, id)
}

// SetSuspended toggles suspension. Nobody can suspend themselves.
func (s *Service) SetSuspended(
	ctx context.Context,
	actor *access.User,
	id string,
	suspended bool,
) (*User, error) {
	if err := requireManage(actor, "set suspension"); err != nil {
		return nil, err
	}
	if actor.ID == id && suspended {
		return nil, fmt.Errorf("set suspension: cannot suspend self: %w", core.ErrForbidden)
	}

	if err := s.repo.SetSuspended(ctx, id, suspended); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, id)
}

func (s *Service) ChangeTier(
	ctx context.Context,
	actor *access.User,
	id, tier string,
	endsAt *time.Time,
) (*User, error) {
	if err := requireManage(actor, "change tier"); err != nil {
		return nil, err
	}
	if !validTier(tier) {
		return nil, fmt.Errorf(
			"change tier: invalid tier %q: %w",
			tier,
			core.ErrInvalidInput,
		)
	}

	if tier == TierFree && endsAt != nil {
		return nil, fmt.Errorf(
			"change tier: free tier has no end date: %w",
			core.ErrInvalidInput,
		)
	}

	if err := s.repo.UpdateTier(ctx, id, tier, endsAt); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		DisplayName:  u.DisplayName,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Tier:         u.Tier,
		TokenVersion: u.TokenVersion,
		Suspended:    u.Suspended,
		CreatedAt:    u.CreatedAt,
	}
}

var _ auth.UserProvider = (*Service)(nil)

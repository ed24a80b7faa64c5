// AngelaMos | 2026
// dto.go

package user

import (
	"time"

	"github.com/carterperez-dev/templates/control-panel/internal/access"
)

type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,min=1,max=100"`
	Bio         *string `json:"bio,omitempty"          validate:"omitempty,max=500"`
	Location    *string `json:"location,omitempty"     validate:"omitempty,max=100"`
	Website     *string `json:"website,omitempty"      validate:"omitempty,url,max=255"`
	AvatarURL   *string `json:"avatar_url,omitempty"   validate:"omitempty,url,max=1024"`
	Company     *string `json:"company,omitempty"        validate:"omitempty,max=100"`
	Twitter     *string `json:"twitter_handle,omitempty" validate:"omitempty,max=15,excludesall=@/"`
	GitHub      *string `json:"github_handle,omitempty"  validate:"omitempty,max=39,excludesall=@/"`
}

// Fields flattens the request into the per-field edits the debouncer
// coalesces. Absent fields are not included.
func (r UpdateProfileRequest) Fields() map[string]string {
	out := make(map[string]string, len(profileFields))
	set := func(name string, v *string) {
		if v != nil {
			out[name] = *v
		}
	}
	set(FieldDisplayName, r.DisplayName)
	set(FieldBio, r.Bio)
	set(FieldLocation, r.Location)
	set(FieldWebsite, r.Website)
	set(FieldAvatarURL, r.AvatarURL)
	set(FieldCompany, r.Company)
	set(FieldTwitter, r.Twitter)
	set(FieldGitHub, r.GitHub)
	return out
}

type UpdatePreferencesRequest struct {
	Notifications *bool  `json:"notifications,omitempty"`
	Theme         string `json:"theme,omitempty"         validate:"omitempty,oneof=light dark system"`
	Language      string `json:"language,omitempty"      validate:"omitempty,min=2,max=10"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=guest user developer admin"`
}

type UpdatePermissionsRequest struct {
	CanAccessAdmin     bool `json:"canAccessAdmin"`
	CanManageUsers     bool `json:"canManageUsers"`
	CanViewAnalytics   bool `json:"canViewAnalytics"`
	MaxTokensPerMonth  int  `json:"maxTokensPerMonth"  validate:"gte=0"`
	MaxProjectsAllowed int  `json:"maxProjectsAllowed" validate:"gte=0"`
}

func (r UpdatePermissionsRequest) Permissions() access.Permissions {
	return access.Permissions{
		CanAccessAdmin:     r.CanAccessAdmin,
		CanManageUsers:     r.CanManageUsers,
		CanViewAnalytics:   r.CanViewAnalytics,
		MaxTokensPerMonth:  r.MaxTokensPerMonth,
		MaxProjectsAllowed: r.MaxProjectsAllowed,
	}
}

type UpdateSuspensionRequest struct {
	Suspended *bool `json:"suspended" validate:"required"`
}

// UpdateTierRequest sets the subscription tier. EndsAt is only accepted
// for paid tiers.
type UpdateTierRequest struct {
	Tier   string     `json:"tier"                 validate:"required,oneof=free basic pro enterprise"`
	EndsAt *time.Time `json:"subscription_ends_at"`
}

type UserResponse struct {
	ID          string              `json:"id"`
	Email       string              `json:"email"`
	DisplayName string              `json:"display_name"`
	Role        access.Role         `json:"role"`
	Permissions *access.Permissions `json:"permissions"`
	Profile     Profile             `json:"profile"`
	Preferences Preferences         `json:"preferences"`
	Verified    bool                `json:"verified"`
	Suspended   bool                `json:"suspended"`
	TokensUsed  int64               `json:"tokens_used"`
	TokenQuota  int64               `json:"token_quota"`
	Subscribed  bool                `json:"is_subscribed"`
	Tier        string              `json:"subscription_tier"`
	TierEndsAt  *time.Time          `json:"subscription_ends_at,omitempty"`
	LastLoginAt *time.Time          `json:"last_login_at,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

type ListUsersParams struct {
	Page      int
	PageSize  int
	Search    string
	Role      string
	Tier      string
	Suspended *bool
}

func (p *ListUsersParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	switch {
	case p.PageSize < 1:
		p.PageSize = 20
	case p.PageSize > 100:
		p.PageSize = 100
	}
}

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToUserResponse(u *User) UserResponse {
	snap := u.Snapshot()
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		Permissions: snap.Permissions,
		Profile:     u.Profile.V,
		Preferences: u.Preferences.V,
		Verified:    u.Verified,
		Suspended:   u.Suspended,
		TokensUsed:  u.TokensUsed,
		TokenQuota:  access.TokenQuota(snap),
		Subscribed:  u.Subscribed,
		Tier:        u.Tier,
		TierEndsAt:  u.TierEndsAt,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, ToUserResponse(&users[i]))
	}
	return out
}

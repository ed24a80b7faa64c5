// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/carterperez-dev/templates/control-panel/internal/access"
)

type User struct {
	ID           string                    `db:"id"`
	Email        string                    `db:"email"`
	PasswordHash string                    `db:"password_hash"`
	DisplayName  string                    `db:"display_name"`
	Role         access.Role               `db:"role"`
	Permissions  JSONB[access.Permissions] `db:"permissions"`
	Profile      JSONB[Profile]            `db:"profile"`
	Preferences  JSONB[Preferences]        `db:"preferences"`
	Verified     bool                      `db:"verified"`
	Suspended    bool                      `db:"suspended"`
	TokensUsed   int64                     `db:"tokens_used"`
	Subscribed   bool                      `db:"is_subscribed"`
	Tier         string                    `db:"subscription_tier"`
	TierEndsAt   *time.Time                `db:"subscription_ends_at"`
	TokenVersion int                       `db:"token_version"`
	LastLoginAt  *time.Time                `db:"last_login_at"`
	CreatedAt    time.Time                 `db:"created_at"`
	UpdatedAt    time.Time                 `db:"updated_at"`
	DeletedAt    *time.Time                `db:"deleted_at"`
}

// Profile holds the free-form fields users edit from the profile tab.
type Profile struct {
	Bio       string `json:"bio,omitempty"`
	Location  string `json:"location,omitempty"`
	Website   string `json:"website,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Company   string `json:"company,omitempty"`
	Twitter   string `json:"twitter_handle,omitempty"`
	GitHub    string `json:"github_handle,omitempty"`
}

type Preferences struct {
	Notifications *bool  `json:"notifications,omitempty"`
	Theme         string `json:"theme,omitempty"`
	Language      string `json:"language,omitempty"`
}

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

// Snapshot projects the stored record onto the authorization model. A
// missing permissions column stays nil so the policy denies by default.
func (u *User) Snapshot() *access.User {
	s := &access.User{
		ID:         u.ID,
		Email:      u.Email,
		Verified:   u.Verified,
		Role:       u.Role,
		Suspended:  u.Suspended,
		TokensUsed: u.TokensUsed,
		Tier:       u.Tier,
		Subscribed: u.Subscribed,
		Preferences: access.Preferences{
			Notifications: u.Preferences.V.Notifications,
		},
	}
	if u.Permissions.Valid {
		perms := u.Permissions.V
		s.Permissions = &perms
	}
	return s
}

const (
	TierFree       = "free"
	TierBasic      = "basic"
	TierPro        = "pro"
	TierEnterprise = "enterprise"
)

func validTier(tier string) bool {
	switch tier {
	case TierFree, TierBasic, TierPro, TierEnterprise:
		return true
	default:
		return false
	}
}

// Profile edits arrive one field at a time. display_name is a column;
// the rest live in the profile document.
const (
	FieldDisplayName = "display_name"
	FieldBio         = "bio"
	FieldLocation    = "location"
	FieldWebsite     = "website"
	FieldAvatarURL   = "avatar_url"
	FieldCompany     = "company"
	FieldTwitter     = "twitter_handle"
	FieldGitHub      = "github_handle"
)

var profileFields = map[string]struct{}{
	FieldDisplayName: {},
	FieldBio:         {},
	FieldLocation:    {},
	FieldWebsite:     {},
	FieldAvatarURL:   {},
	FieldCompany:     {},
	FieldTwitter:     {},
	FieldGitHub:      {},
}

func KnownProfileField(name string) bool {
	_, ok := profileFields[name]
	return ok
}

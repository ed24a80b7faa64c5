// AngelaMos | 2026
// entity.go

package auth

import (
	"time"
)

// RefreshToken is one link in a rotation chain. Tokens in a chain share a
// family id so reuse of a spent token can revoke the whole chain.
type RefreshToken struct {
	ID           string     `db:"id"`
	UserID       string     `db:"user_id"`
	TokenHash    string     `db:"token_hash"`
	FamilyID     string     `db:"family_id"`
	ExpiresAt    time.Time  `db:"expires_at"`
	CreatedAt    time.Time  `db:"created_at"`
	IsUsed       bool       `db:"is_used"`
	UsedAt       *time.Time `db:"used_at"`
	RevokedAt    *time.Time `db:"revoked_at"`
	ReplacedByID *string    `db:"replaced_by_id"`
	UserAgent    string     `db:"user_agent"`
	IPAddress    string     `db:"ip_address"`
}

// Usable reports whether the token can still be exchanged at now. A used
// token is handled separately as reuse.
func (t *RefreshToken) Usable(now time.Time) error {
	switch {
	case t.RevokedAt != nil:
		return errRefreshRevoked
	case !now.Before(t.ExpiresAt):
		return errRefreshExpired
	}
	return nil
}

// ClientMeta identifies where a session was opened from.
type ClientMeta struct {
	UserAgent string
	IPAddress string
}

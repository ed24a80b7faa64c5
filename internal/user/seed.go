// AngelaMos | 2026
// seed.go

package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/carterperez-dev/templates/control-panel/internal/access"
	"github.com/carterperez-dev/templates/control-panel/internal/core"
)

// SeedEmail is the address used for the seeded account of role.
func SeedEmail(role access.Role, domain string) string {
	return string(role) + "@" + domain
}

// SeedUsers creates one verified account per role with that role's
// default permissions. Accounts that already exist are returned as is.
func SeedUsers(
	ctx context.Context,
	repo Repository,
	domain, passwordHash string,
) ([]*User, error) {
	out := make([]*User, 0, len(access.Roles()))

	for _, role := range access.Roles() {
		email := SeedEmail(role, domain)

		existing, err := repo.GetByEmail(ctx, email)
		switch {
		case err == nil:
			out = append(out, existing)
			continue
		case !errors.Is(err, core.ErrNotFound):
			return nil, fmt.Errorf("seed %s: %w", role, err)
		}

		u := NewUser(email, passwordHash, "Seeded "+string(role), role)
		u.Verified = true
		if err := repo.Create(ctx, u); err != nil {
			return nil, fmt.Errorf("seed %s: %w", role, err)
		}
		out = append(out, u)
	}

	return out, nil
}

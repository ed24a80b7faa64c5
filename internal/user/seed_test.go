// AngelaMos | 2026
// seed_test.go

package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/control-panel/internal/access"
	"github.com/carterperez-dev/templates/control-panel/internal/core"
)

func TestSeedUsers(t *testing.T) {
	repo := new(mockRepository)
	ctx := context.Background()

	existing := NewUser("admin@seed.local", "hash", "Admin", access.RoleAdmin)
	repo.On("GetByEmail", ctx, "admin@seed.local").Return(existing, nil)
	for _, role := range []access.Role{access.RoleGuest, access.RoleUser, access.RoleDeveloper} {
		repo.On("GetByEmail", ctx, SeedEmail(role, "seed.local")).Return(nil, core.ErrNotFound)
	}
	repo.On("Create", ctx, mock.AnythingOfType("*user.User")).Return(nil).Times(3)

	users, err := SeedUsers(ctx, repo, "seed.local", "hash")
	require.NoError(t, err)
	require.Len(t, users, 4)

	for _, u := range users {
		assert.Equal(t, SeedEmail(u.Role, "seed.local"), u.Email)
		require.True(t, u.Permissions.Valid)
		assert.Equal(t, access.DefaultPermissions(u.Role), u.Permissions.V)
	}
	assert.Same(t, existing, users[3])
	assert.True(t, users[0].Verified)
	repo.AssertExpectations(t)
}

func TestSeedUsers_StopsOnError(t *testing.T) {
	repo := new(mockRepository)
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "guest@seed.local").Return(nil, errors.New("db down"))

	_, err := SeedUsers(ctx, repo, "seed.local", "hash")
	assert.ErrorContains(t, err, "seed guest")
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// AngelaMos | 2026
// repository_integration_test.go

//go:build integration

package user

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/control-panel/internal/access"
	"github.com/carterperez-dev/templates/control-panel/internal/core"
	"github.com/carterperez-dev/templates/control-panel/internal/testutil"
)

func TestRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	create := func(t *testing.T, email string, role access.Role) *User {
		t.Helper()
		u := NewUser(email, "hash", "", role)
		require.NoError(t, repo.Create(ctx, u))
		return u
	}

	t.Run("create and lookup", func(t *testing.T) {
		truncate(t, db)

		u := create(t, "Ada@Example.com", access.RoleUser)
		got, err := repo.GetByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		assert.Equal(t, 0, got.TokenVersion)
		require.True(t, got.Permissions.Valid)
		assert.Equal(t, access.DefaultPermissions(access.RoleUser), got.Permissions.V)
		assert.Nil(t, got.TierEndsAt)

		err = repo.Create(ctx, NewUser("ada@example.com", "hash", "", access.RoleUser))
		assert.ErrorIs(t, err, core.ErrDuplicateKey)

		require.NoError(t, repo.SoftDelete(ctx, u.ID))
		_, err = repo.GetByID(ctx, u.ID)
		assert.ErrorIs(t, err, core.ErrNotFound)

		create(t, "ada@example.com", access.RoleUser)
	})

	t.Run("profile fields merge", func(t *testing.T) {
		truncate(t, db)
		u := create(t, "merge@example.com", access.RoleUser)

		require.NoError(t, repo.UpdateProfileFields(ctx, u.ID, map[string]string{
			FieldDisplayName: "Ada",
			FieldBio:         "first",
			FieldTwitter:     "ada",
		}))
		require.NoError(t, repo.UpdateProfileFields(ctx, u.ID, map[string]string{
			FieldCompany: "Analytical Engines",
			FieldTwitter: "ada_l",
		}))

		got, err := repo.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ada", got.DisplayName)
		assert.Equal(t, Profile{
			Bio:     "first",
			Company: "Analytical Engines",
			Twitter: "ada_l",
		}, got.Profile.V)

		err = repo.UpdateProfileFields(ctx, "00000000-0000-0000-0000-000000000000",
			map[string]string{FieldBio: "x"})
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("role change resets permissions and bumps version", func(t *testing.T) {
		truncate(t, db)
		u := create(t, "role@example.com", access.RoleUser)

		custom := access.DefaultPermissions(access.RoleUser)
		custom.CanManageUsers = true
		require.NoError(t, repo.UpdatePermissions(ctx, u.ID, custom))

		require.NoError(t, repo.UpdateRole(ctx, u.ID, access.RoleDeveloper,
			access.DefaultPermissions(access.RoleDeveloper)))

		got, err := repo.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, access.RoleDeveloper, got.Role)
		assert.Equal(t, access.DefaultPermissions(access.RoleDeveloper), got.Permissions.V)
		assert.Equal(t, 2, got.TokenVersion)
	})

	t.Run("usage never decreases", func(t *testing.T) {
		truncate(t, db)
		u := create(t, "usage@example.com", access.RoleUser)

		for _, step := range []struct {
			add  int64
			want int64
		}{
			{100, 100},
			{50, 150},
			{-500, 150},
			{0, 150},
		} {
			total, err := repo.RecordUsage(ctx, u.ID, step.add)
			require.NoError(t, err)
			assert.Equal(t, step.want, total)
		}

		_, err := repo.RecordUsage(ctx, "00000000-0000-0000-0000-000000000000", 1)
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("tier and end date", func(t *testing.T) {
		truncate(t, db)
		u := create(t, "tier@example.com", access.RoleUser)
		endsAt := time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC)

		require.NoError(t, repo.UpdateTier(ctx, u.ID, TierBasic, &endsAt))
		got, err := repo.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, TierBasic, got.Tier)
		require.NotNil(t, got.TierEndsAt)
		assert.True(t, endsAt.Equal(*got.TierEndsAt))

		require.NoError(t, repo.UpdateTier(ctx, u.ID, TierFree, nil))
		got, err = repo.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Nil(t, got.TierEndsAt)

		assert.Error(t, repo.UpdateTier(ctx, u.ID, "gold", nil))
	})

	t.Run("list filters and escapes search", func(t *testing.T) {
		truncate(t, db)
		create(t, "bob_1@example.com", access.RoleUser)
		create(t, "bobx1@example.com", access.RoleUser)
		admin := create(t, "root@example.com", access.RoleAdmin)
		gone := create(t, "gone@example.com", access.RoleUser)
		require.NoError(t, repo.SoftDelete(ctx, gone.ID))
		require.NoError(t, repo.SetSuspended(ctx, admin.ID, true))

		users, total, err := repo.List(ctx, ListUsersParams{Search: "bob_1"})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, users, 1)
		assert.Equal(t, "bob_1@example.com", users[0].Email)

		_, total, err = repo.List(ctx, ListUsersParams{Search: "%"})
		require.NoError(t, err)
		assert.Zero(t, total)

		users, _, err = repo.List(ctx, ListUsersParams{Search: admin.ID[:8]})
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, admin.ID, users[0].ID)

		_, total, err = repo.List(ctx, ListUsersParams{Role: "admin"})
		require.NoError(t, err)
		assert.Equal(t, 1, total)

		suspended := true
		users, _, err = repo.List(ctx, ListUsersParams{Suspended: &suspended})
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, admin.ID, users[0].ID)

		users, total, err = repo.List(ctx, ListUsersParams{Page: 2, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Len(t, users, 1)
	})

	t.Run("counts", func(t *testing.T) {
		truncate(t, db)
		create(t, "u1@example.com", access.RoleUser)
		create(t, "u2@example.com", access.RoleUser)
		dev := create(t, "dev@example.com", access.RoleDeveloper)
		gone := create(t, "gone@example.com", access.RoleAdmin)
		require.NoError(t, repo.SetSuspended(ctx, dev.ID, true))
		require.NoError(t, repo.SoftDelete(ctx, gone.ID))

		byRole, err := repo.CountByRole(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[access.Role]int{
			access.RoleGuest:     0,
			access.RoleUser:      2,
			access.RoleDeveloper: 1,
			access.RoleAdmin:     0,
		}, byRole)

		active, suspended, err := repo.CountBySuspension(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, active)
		assert.Equal(t, 1, suspended)
	})
}

func truncate(t *testing.T, db *sqlx.DB) {
	t.Helper()
	_, err := db.Exec(`TRUNCATE users CASCADE`)
	require.NoError(t, err)
}

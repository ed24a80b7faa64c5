// AngelaMos | 2026
// policy_test.go

package access_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carterperez-dev/templates/control-panel/internal/access"
)

func newUser(role access.Role) *access.User {
	perms := access.DefaultPermissions(role)
	return &access.User{
		ID:          "u-" + string(role),
		Role:        role,
		Permissions: &perms,
	}
}

var allPermissionKeys = []access.PermissionKey{
	access.PermAccessAdmin,
	access.PermManageUsers,
	access.PermViewAnalytics,
	access.PermTokensPerMonth,
	access.PermProjectsAllowed,
}

func TestDefaultPermissions_Table(t *testing.T) {
	tests := []struct {
		role      access.Role
		admin     bool
		manage    bool
		analytics bool
		tokens    int
		projects  int
	}{
		{access.RoleGuest, false, false, false, 1000, 1},
		{access.RoleUser, false, false, false, 10000, 5},
		{access.RoleDeveloper, true, false, true, 50000, 20},
		{access.RoleAdmin, true, true, true, 100000, 100},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			p := access.DefaultPermissions(tt.role)
			assert.Equal(t, tt.admin, p.CanAccessAdmin)
			assert.Equal(t, tt.manage, p.CanManageUsers)
			assert.Equal(t, tt.analytics, p.CanViewAnalytics)
			assert.Equal(t, tt.tokens, p.MaxTokensPerMonth)
			assert.Equal(t, tt.projects, p.MaxProjectsAllowed)
		})
	}
}

func TestDefaultPermissions_UnknownRoleIsGuest(t *testing.T) {
	assert.Equal(
		t,
		access.DefaultPermissions(access.RoleGuest),
		access.DefaultPermissions(access.Role("owner")),
	)
}

func TestParseRole(t *testing.T) {
	r, ok := access.ParseRole("developer")
	assert.True(t, ok)
	assert.Equal(t, access.RoleDeveloper, r)

	r, ok = access.ParseRole("superuser")
	assert.False(t, ok)
	assert.Equal(t, access.RoleGuest, r)
}

func TestHasRole(t *testing.T) {
	dev := newUser(access.RoleDeveloper)

	assert.True(t, access.HasRole(dev, access.RoleDeveloper))
	assert.True(t, access.HasRole(dev, access.RoleAdmin, access.RoleDeveloper))
	assert.False(t, access.HasRole(dev, access.RoleUser), "no implied hierarchy")
	assert.False(t, access.HasRole(dev))
}

func TestHasRole_NilUser(t *testing.T) {
	for _, r := range access.Roles() {
		assert.False(t, access.HasRole(nil, r))
	}
	assert.False(t, access.HasRole(nil, access.Roles()...))
}

func TestHasPermission_NilUserOrRecord(t *testing.T) {
	for _, key := range allPermissionKeys {
		assert.False(t, access.HasPermission(nil, key))
	}

	admin := &access.User{ID: "a", Role: access.RoleAdmin}
	assert.False(
		t,
		access.HasPermission(admin, access.PermManageUsers),
		"missing record denies even admins",
	)
}

func TestHasPermission_AdminOverride(t *testing.T) {
	admin := &access.User{
		ID:          "a",
		Role:        access.RoleAdmin,
		Permissions: &access.Permissions{},
	}

	for _, key := range allPermissionKeys {
		assert.True(t, access.HasPermission(admin, key), key)
	}
}

func TestHasPermission_StoredRecord(t *testing.T) {
	dev := newUser(access.RoleDeveloper)

	assert.True(t, access.HasPermission(dev, access.PermAccessAdmin))
	assert.True(t, access.HasPermission(dev, access.PermViewAnalytics))
	assert.False(t, access.HasPermission(dev, access.PermManageUsers))
	assert.True(t, access.HasPermission(dev, access.PermTokensPerMonth))
	assert.False(t, access.HasPermission(dev, access.PermissionKey("canDeploy")))
}

func TestHasPermission_RoleChangeFlipsWithoutRecordChange(t *testing.T) {
	u := &access.User{
		ID:          "u",
		Role:        access.RoleUser,
		Permissions: &access.Permissions{CanManageUsers: false},
	}
	assert.False(t, access.HasPermission(u, access.PermManageUsers))

	promoted := *u
	promoted.Role = access.RoleAdmin
	assert.True(t, access.HasPermission(&promoted, access.PermManageUsers))
	assert.False(t, promoted.Permissions.CanManageUsers)
}

func TestCanEnter(t *testing.T) {
	suspendedAdmin := newUser(access.RoleAdmin)
	suspendedAdmin.Suspended = true

	tests := []struct {
		name string
		user *access.User
		req  access.Requirement
		want access.Decision
	}{
		{"absent user", nil, access.Requirement{}, access.DecisionSignIn},
		{"plain user no requirement", newUser(access.RoleUser), access.Requirement{}, access.DecisionAllow},
		{"suspended admin", suspendedAdmin, access.AdminOnly, access.DecisionSuspended},
		{"suspended admin no requirement", suspendedAdmin, access.Requirement{}, access.DecisionSuspended},
		{"user on admin guard", newUser(access.RoleUser), access.AdminOnly, access.DecisionForbidden},
		{"developer on admin guard", newUser(access.RoleDeveloper), access.AdminOnly, access.DecisionAllow},
		{"user on developer guard", newUser(access.RoleUser), access.DeveloperOrAdmin, access.DecisionForbidden},
		{"admin on developer guard", newUser(access.RoleAdmin), access.DeveloperOrAdmin, access.DecisionAllow},
		{
			"role ok but permission missing",
			newUser(access.RoleDeveloper),
			access.Requirement{
				Roles:      []access.Role{access.RoleDeveloper},
				Permission: access.PermManageUsers,
			},
			access.DecisionForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, access.CanEnter(tt.user, tt.req))
		})
	}
}

func TestCanEnter_SuspendedAlwaysRejected(t *testing.T) {
	reqs := []access.Requirement{
		{},
		access.AdminOnly,
		access.DeveloperOrAdmin,
		{Permission: access.PermTokensPerMonth},
		{Roles: access.Roles()},
	}

	for _, role := range access.Roles() {
		u := newUser(role)
		u.Suspended = true
		for _, req := range reqs {
			d := access.CanEnter(u, req)
			assert.False(t, d.Allowed())
			assert.Equal(t, access.DecisionSuspended, d)
		}
	}
}

func TestNamedGuards(t *testing.T) {
	assert.Equal(t, access.DecisionAllow, access.AdminGuard(newUser(access.RoleDeveloper)))
	assert.Equal(t, access.DecisionForbidden, access.AdminGuard(newUser(access.RoleUser)))
	assert.Equal(t, access.DecisionAllow, access.DeveloperGuard(newUser(access.RoleDeveloper)))
	assert.Equal(t, access.DecisionSignIn, access.DeveloperGuard(nil))
}

func TestTokenQuota(t *testing.T) {
	assert.Equal(t, int64(-1), access.TokenQuota(newUser(access.RoleAdmin)))
	assert.Equal(t, int64(10000), access.TokenQuota(newUser(access.RoleUser)))
	assert.Equal(t, int64(1000), access.TokenQuota(nil))
	assert.Equal(t, int64(0), access.TokenQuota(&access.User{Role: access.RoleUser}))
}

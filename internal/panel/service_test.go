// AngelaMos | 2026
// service_test.go

package panel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/control-panel/internal/access"
	"github.com/carterperez-dev/templates/control-panel/internal/core"
)

func viewer(id string, role access.Role) *access.User {
	perms := access.DefaultPermissions(role)
	return &access.User{ID: id, Role: role, Permissions: &perms}
}

func ids(tabs []access.TabDescriptor) []access.TabID {
	out := make([]access.TabID, 0, len(tabs))
	for _, t := range tabs {
		out = append(out, t.ID)
	}
	return out
}

func TestDecodeTabs(t *testing.T) {
	assert.Nil(t, decodeTabs([]byte("null")))
	assert.Nil(t, decodeTabs([]byte(`{"id":"profile"}`)))
	assert.Nil(t, decodeTabs([]byte("not json")))

	empty := decodeTabs([]byte("[]"))
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	tabs := decodeTabs([]byte(`[{"id":"profile","window":"user","order":3,"visible":false}]`))
	require.Len(t, tabs, 1)
	assert.Equal(t, access.TabProfile, tabs[0].ID)
	assert.Equal(t, 3, tabs[0].Order)
}

func TestVisibleTabs_Anonymous(t *testing.T) {
	svc := NewService(newMemStore())

	tabs, err := svc.VisibleTabs(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []access.TabID{access.TabSettings}, ids(tabs))
}

func TestVisibleTabs_MalformedStoredListIsReset(t *testing.T) {
	store := newMemStore()
	store.docs["u1"] = []byte("null")
	svc := NewService(store)

	tabs, err := svc.VisibleTabs(context.Background(), viewer("u1", access.RoleAdmin))
	require.NoError(t, err)
	assert.Empty(t, tabs)
	assert.Equal(t, 1, store.resets)

	tabs, err = svc.VisibleTabs(context.Background(), viewer("u1", access.RoleAdmin))
	require.NoError(t, err)
	assert.Len(t, tabs, len(access.DefaultCatalog())+1)
}

func TestVisibleTabs_OrdinaryUser(t *testing.T) {
	svc := NewService(newMemStore())

	tabs, err := svc.VisibleTabs(context.Background(), viewer("u1", access.RoleUser))
	require.NoError(t, err)
	assert.ElementsMatch(t, []access.TabID{
		access.TabConnection,
		access.TabData,
		access.TabProfile,
		access.TabAcademy,
		access.TabReferral,
	}, ids(tabs))
}

func TestTabAccess(t *testing.T) {
	svc := NewService(newMemStore())
	ctx := context.Background()

	res, err := svc.TabAccess(ctx, viewer("u1", access.RoleUser), access.TabAdmin)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, "forbidden", res.Decision)
	assert.False(t, res.Visible)

	res, err = svc.TabAccess(ctx, viewer("d1", access.RoleDeveloper), access.TabTabManagement)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.True(t, res.Visible)

	res, err = svc.TabAccess(ctx, nil, access.TabSettings)
	require.NoError(t, err)
	assert.Equal(t, "sign_in", res.Decision)
	assert.True(t, res.Visible)

	_, err = svc.TabAccess(ctx, nil, "billing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSave(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	dev := viewer("d1", access.RoleDeveloper)

	_, err := svc.Save(context.Background(), dev, []access.TabDescriptor{{ID: "billing"}})
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = svc.Save(context.Background(), dev, []access.TabDescriptor{
		{ID: access.TabDebug}, {ID: access.TabDebug},
	})
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = svc.Save(context.Background(), dev, []access.TabDescriptor{{ID: access.TabDebug, Order: -1}})
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	tabs, err := svc.Save(context.Background(), dev, []access.TabDescriptor{
		{ID: access.TabDebug, Window: access.WindowDeveloper, Order: 1},
		{ID: access.TabTabManagement, Order: 0},
		{ID: access.TabProfile, Window: "bogus", Order: 2, Extra: true},
	})
	require.NoError(t, err)

	stored := store.saved["d1"]
	require.Len(t, stored, 2)
	assert.Equal(t, access.WindowUser, stored[1].Window)
	assert.False(t, stored[1].Extra)

	assert.Contains(t, ids(tabs), access.TabTabManagement)

	_, err = svc.Save(context.Background(), nil, nil)
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

// AngelaMos | 2026
// service_test.go

package usage

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/control-panel/internal/access"
	"github.com/carterperez-dev/templates/control-panel/internal/core"
)

type memCounter struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newMemCounter() *memCounter {
	return &memCounter{counts: map[string]int64{}}
}

func (c *memCounter) Add(_ context.Context, clientID string, tokens int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[clientID] += tokens
	return c.counts[clientID], nil
}

func (c *memCounter) Get(_ context.Context, clientID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[clientID], nil
}

type memRecorder struct {
	totals map[string]int64
	calls  int
}

func (r *memRecorder) RecordUsage(_ context.Context, userID string, tokens int64) (int64, error) {
	r.calls++
	if _, ok := r.totals[userID]; !ok {
		return 0, core.ErrNotFound
	}
	r.totals[userID] += tokens
	return r.totals[userID], nil
}

func caller(role access.Role) *access.User {
	perms := access.DefaultPermissions(role)
	return &access.User{ID: "u-" + string(role), Role: role, Permissions: &perms}
}

func TestRecord_GuestLimit(t *testing.T) {
	svc := NewService(newMemCounter(), &memRecorder{}, 150000)
	ctx := context.Background()

	st, err := svc.Record(ctx, nil, "10.0.0.1", 149999)
	require.NoError(t, err)
	assert.True(t, st.Guest)
	assert.True(t, st.CanContinue)
	assert.Equal(t, int64(1), st.Remaining)

	st, err = svc.Record(ctx, nil, "10.0.0.1", 1)
	require.NoError(t, err)
	assert.False(t, st.CanContinue, "reaching the limit exactly stops the guest")
	assert.Zero(t, st.Remaining)

	st, err = svc.Record(ctx, nil, "10.0.0.1", 500)
	require.NoError(t, err)
	assert.Equal(t, int64(150500), st.TokensUsed)
	assert.Zero(t, st.Remaining)

	st, err = svc.Current(ctx, nil, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, st.CanContinue)
	assert.Zero(t, st.TokensUsed)
}

func TestRecord_SignedInQuota(t *testing.T) {
	u := caller(access.RoleUser)
	rec := &memRecorder{totals: map[string]int64{u.ID: 9000}}
	svc := NewService(newMemCounter(), rec, 150000)

	st, err := svc.Record(context.Background(), u, "ip", 999)
	require.NoError(t, err)
	assert.False(t, st.Guest)
	assert.Equal(t, int64(10000), st.Limit)
	assert.True(t, st.CanContinue)

	st, err = svc.Record(context.Background(), u, "ip", 1)
	require.NoError(t, err)
	assert.False(t, st.CanContinue)
}

func TestRecord_AdminUnlimited(t *testing.T) {
	u := caller(access.RoleAdmin)
	rec := &memRecorder{totals: map[string]int64{u.ID: 1 << 40}}
	svc := NewService(newMemCounter(), rec, 150000)

	st, err := svc.Record(context.Background(), u, "ip", 10)
	require.NoError(t, err)
	assert.Equal(t, Unlimited, st.Limit)
	assert.Equal(t, Unlimited, st.Remaining)
	assert.True(t, st.CanContinue)
}

func TestRecord_Rejections(t *testing.T) {
	rec := &memRecorder{totals: map[string]int64{}}
	svc := NewService(newMemCounter(), rec, 150000)

	_, err := svc.Record(context.Background(), nil, "ip", -1)
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	u := caller(access.RoleDeveloper)
	u.Suspended = true
	_, err = svc.Record(context.Background(), u, "ip", 1)
	assert.ErrorIs(t, err, core.ErrSuspended)
	assert.Zero(t, rec.calls)

	st, err := svc.Current(context.Background(), u, "ip")
	require.NoError(t, err)
	assert.False(t, st.CanContinue)
}

// AngelaMos | 2026
// debouncer_test.go

package profile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type write struct {
	userID string
	fields map[string]string
}

type recordingWriter struct {
	mu     sync.Mutex
	writes []write
	err    error
}

func (w *recordingWriter) WriteProfileFields(
	_ context.Context,
	userID string,
	fields map[string]string,
) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.writes = append(w.writes, write{userID: userID, fields: fields})
	return w.err
}

func (w *recordingWriter) snapshot() []write {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]write(nil), w.writes...)
}

func TestDebouncer_CoalescesAndLastValueWins(t *testing.T) {
	w := &recordingWriter{}
	d := NewDebouncer(w, 20*time.Millisecond, nil)

	d.Submit("u1", map[string]string{"bio": "a"})
	d.Submit("u1", map[string]string{"bio": "ab", "location": "Berlin"})
	d.Submit("u1", map[string]string{"bio": "abc"})

	require.Eventually(t, func() bool {
		return len(w.snapshot()) == 1
	}, time.Second, 5*time.Millisecond)

	got := w.snapshot()[0]
	assert.Equal(t, "u1", got.userID)
	assert.Equal(t, map[string]string{"bio": "abc", "location": "Berlin"}, got.fields)
	assert.Zero(t, d.Pending())
}

func TestDebouncer_HandlesTypedPerKeystroke(t *testing.T) {
	w := &recordingWriter{}
	d := NewDebouncer(w, 20*time.Millisecond, nil)

	for _, prefix := range []string{"a", "ad", "ada"} {
		d.Submit("u1", map[string]string{"twitter_handle": prefix})
		d.Submit("u1", map[string]string{"github_handle": prefix + "-l"})
	}
	d.Submit("u1", map[string]string{"company": "Analytical Engines"})

	require.Eventually(t, func() bool {
		return len(w.snapshot()) == 1
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, map[string]string{
		"twitter_handle": "ada",
		"github_handle":  "ada-l",
		"company":        "Analytical Engines",
	}, w.snapshot()[0].fields)
}

func TestDebouncer_UsersAreIndependent(t *testing.T) {
	w := &recordingWriter{}
	d := NewDebouncer(w, 10*time.Millisecond, nil)

	d.Submit("u1", map[string]string{"bio": "one"})
	d.Submit("u2", map[string]string{"bio": "two"})

	require.Eventually(t, func() bool {
		return len(w.snapshot()) == 2
	}, time.Second, 5*time.Millisecond)
}

func TestDebouncer_IgnoresEmptySubmissions(t *testing.T) {
	w := &recordingWriter{}
	d := NewDebouncer(w, time.Hour, nil)

	d.Submit("", map[string]string{"bio": "x"})
	d.Submit("u1", nil)

	assert.Zero(t, d.Pending())
}

func TestDebouncer_FlushWritesImmediately(t *testing.T) {
	w := &recordingWriter{}
	d := NewDebouncer(w, time.Hour, nil)

	d.Submit("u1", map[string]string{"display_name": "Ada"})
	assert.Equal(t, 1, d.Pending())

	d.Flush()

	require.Len(t, w.snapshot(), 1)
	assert.Zero(t, d.Pending())
}

func TestDebouncer_CloseFlushesAndWritesLateSubmissions(t *testing.T) {
	w := &recordingWriter{}
	d := NewDebouncer(w, time.Hour, nil)

	d.Submit("u1", map[string]string{"bio": "before"})
	require.NoError(t, d.Close(context.Background()))
	require.Len(t, w.snapshot(), 1)

	d.Submit("u1", map[string]string{"bio": "after"})
	writes := w.snapshot()
	require.Len(t, writes, 2)
	assert.Equal(t, "after", writes[1].fields["bio"])
}

func TestDebouncer_WriteErrorsAreSwallowed(t *testing.T) {
	w := &recordingWriter{err: errors.New("db down")}
	d := NewDebouncer(w, time.Hour, nil)

	d.Submit("u1", map[string]string{"bio": "x"})
	assert.NotPanics(t, d.Flush)
	assert.Len(t, w.snapshot(), 1)
}

func TestDebouncer_SubmitDoesNotAliasCallerMap(t *testing.T) {
	w := &recordingWriter{}
	d := NewDebouncer(w, time.Hour, nil)

	fields := map[string]string{"bio": "original"}
	d.Submit("u1", fields)
	fields["bio"] = "mutated"
	d.Flush()

	assert.Equal(t, "original", w.snapshot()[0].fields["bio"])
}

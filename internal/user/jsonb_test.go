// AngelaMos | 2026
// jsonb_test.go

package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/control-panel/internal/access"
)

func TestJSONB_ScanNullAndLiteralNull(t *testing.T) {
	for _, src := range []any{nil, []byte("null"), "null"} {
		var j JSONB[access.Permissions]
		require.NoError(t, j.Scan(src))
		assert.False(t, j.Valid)
	}
}

func TestJSONB_ScanCamelCaseRecord(t *testing.T) {
	var j JSONB[access.Permissions]
	require.NoError(t, j.Scan([]byte(`{"canAccessAdmin":true,"maxTokensPerMonth":50000}`)))

	assert.True(t, j.Valid)
	assert.True(t, j.V.CanAccessAdmin)
	assert.Equal(t, 50000, j.V.MaxTokensPerMonth)
}

func TestJSONB_ScanRejectsGarbage(t *testing.T) {
	var j JSONB[Profile]
	assert.Error(t, j.Scan([]byte("{")))
	assert.Error(t, j.Scan(42))
	assert.False(t, j.Valid)
}

func TestJSONB_Value(t *testing.T) {
	v, err := JSONB[Profile]{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = NewJSONB(Profile{Bio: "hi"}).Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{"bio":"hi"}`, v.(string))
}

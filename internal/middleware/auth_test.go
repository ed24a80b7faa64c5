// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carterperez-dev/templates/control-panel/internal/core"
)

type fakeVerifier map[string]error

func (f fakeVerifier) VerifyAccessToken(
	_ context.Context,
	token string,
) (*AccessTokenClaims, error) {
	if err, ok := f[token]; ok {
		return nil, err
	}
	return &AccessTokenClaims{UserID: token, Tier: TierPro}, nil
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc", "abc"},
		{"bearer  abc ", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", tt.header)
		assert.Equal(t, tt.want, ExtractToken(req), tt.header)
	}
}

func TestAuthenticator(t *testing.T) {
	verifier := fakeVerifier{
		"expired": core.ErrTokenExpired,
		"broken":  context.DeadlineExceeded,
	}

	tests := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{"missing", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"expired", "Bearer expired", http.StatusUnauthorized, "TOKEN_EXPIRED"},
		{"unexpected error", "Bearer broken", http.StatusUnauthorized, "TOKEN_INVALID"},
		{"valid", "Bearer u1", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var userID string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				userID = GetUserID(r.Context())
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", tt.header)
			rec := httptest.NewRecorder()
			Authenticator(verifier)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.code != "" {
				assert.Contains(t, rec.Body.String(), tt.code)
				return
			}
			assert.Equal(t, "u1", userID)
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	verifier := fakeVerifier{"expired": core.ErrTokenExpired}

	for header, wantAuth := range map[string]bool{
		"":               false,
		"Bearer expired": false,
		"Bearer u1":      true,
	} {
		var authed bool
		var tier string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authed = IsAuthenticated(r.Context())
			tier = GetUserTier(r.Context())
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		OptionalAuth(verifier)(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, header)
		assert.Equal(t, wantAuth, authed, header)
		if wantAuth {
			assert.Equal(t, TierPro, tier)
		}
	}
}

func TestAuthenticator_ReusesVerifiedClaims(t *testing.T) {
	calls := 0
	verifier := countingVerifier{calls: &calls}

	h := OptionalAuth(verifier)(Authenticator(verifier)(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "u1", GetUserID(r.Context()))
		},
	)))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer u1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, calls)
}

type countingVerifier struct {
	calls *int
}

func (v countingVerifier) VerifyAccessToken(
	_ context.Context,
	token string,
) (*AccessTokenClaims, error) {
	*v.calls++
	return &AccessTokenClaims{UserID: token}, nil
}

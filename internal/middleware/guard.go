// AngelaMos | 2026
// guard.go

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/carterperez-dev/templates/control-panel/internal/access"
	"github.com/carterperez-dev/templates/control-panel/internal/core"
)

// SnapshotLoader returns the current policy view of a user. Guards never
// trust the role in the token since it may predate a role change.
type SnapshotLoader interface {
	Snapshot(ctx context.Context, userID string) (*access.User, error)
}

type SnapshotLoaderFunc func(ctx context.Context, userID string) (*access.User, error)

func (f SnapshotLoaderFunc) Snapshot(
	ctx context.Context,
	userID string,
) (*access.User, error) {
	return f(ctx, userID)
}

// Guard admits the request only when access.CanEnter allows the caller.
// The loaded snapshot is stored in the context for the handler.
func Guard(
	loader SnapshotLoader,
	req access.Requirement,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			u, err := LoadSnapshot(ctx, loader)
			if err != nil {
				core.InternalServerError(w, err)
				return
			}

			decision := access.CanEnter(u, req)
			recordDecision(ctx, u, decision)

			switch decision {
			case access.DecisionAllow:
				next.ServeHTTP(w, r.WithContext(WithSnapshot(ctx, u)))
			case access.DecisionSignIn:
				core.JSONError(w, core.UnauthorizedError("sign in required"))
			case access.DecisionSuspended:
				core.JSONError(w, core.SuspendedError())
			default:
				core.JSONError(w, core.ForbiddenError(""))
			}
		})
	}
}

func RequireAdmin(loader SnapshotLoader) func(http.Handler) http.Handler {
	return Guard(loader, access.AdminOnly)
}

func RequireDeveloper(loader SnapshotLoader) func(http.Handler) http.Handler {
	return Guard(loader, access.DeveloperOrAdmin)
}

// LoadSnapshot resolves the caller into a policy user. Anonymous callers
// and users that no longer exist yield a nil user without error.
func LoadSnapshot(
	ctx context.Context,
	loader SnapshotLoader,
) (*access.User, error) {
	if u := GetSnapshot(ctx); u != nil {
		return u, nil
	}

	userID := GetUserID(ctx)
	if userID == "" {
		return nil, nil
	}

	u, err := loader.Snapshot(ctx, userID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	return u, err
}

func recordDecision(ctx context.Context, u *access.User, d access.Decision) {
	var id, role string
	if u != nil {
		id, role = u.ID, string(u.Role)
	}

	core.RecordAccessDecision(ctx, id, role, d.String())
	if !d.Allowed() {
		slog.DebugContext(ctx, "access denied",
			"user_id", id,
			"role", role,
			"decision", d.String(),
			"request_id", GetRequestID(ctx),
		)
	}
}

func WithSnapshot(ctx context.Context, u *access.User) context.Context {
	return context.WithValue(ctx, SnapshotKey, u)
}

func GetSnapshot(ctx context.Context) *access.User {
	if u, ok := ctx.Value(SnapshotKey).(*access.User); ok {
		return u
	}
	return nil
}

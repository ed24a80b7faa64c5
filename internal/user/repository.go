// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carterperez-dev/templates/control-panel/internal/access"
	"github.com/carterperez-dev/templates/control-panel/internal/core"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateProfileFields(ctx context.Context, id string, fields map[string]string) error
	UpdatePreferences(ctx context.Context, id string, prefs Preferences) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateRole(ctx context.Context, id string, role access.Role, perms access.Permissions) error
	UpdatePermissions(ctx context.Context, id string, perms access.Permissions) error
	SetSuspended(ctx context.Context, id string, suspended bool) error
	UpdateTier(ctx context.Context, id, tier string, endsAt *time.Time) error
	RecordUsage(ctx context.Context, id string, tokens int64) (int64, error)
	TouchLastLogin(ctx context.Context, id string) error
	IncrementTokenVersion(ctx context.Context, id string) error
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, params ListUsersParams) ([]User, int, error)
	CountByRole(ctx context.Context) (map[access.Role]int, error)
	CountBySuspension(ctx context.Context) (active, suspended int, err error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const userColumns = `
	id, email, password_hash, display_name, role, permissions, profile,
	preferences, verified, suspended, tokens_used, is_subscribed,
	subscription_tier, subscription_ends_at, token_version, last_login_at,
	created_at, updated_at, deleted_at`

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (
			id, email, password_hash, display_name, role, permissions,
			profile, preferences, verified, is_subscribed, subscription_tier
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at, token_version`

	err := r.db.QueryRowxContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.DisplayName,
		string(user.Role),
		user.Permissions,
		user.Profile,
		user.Preferences,
		user.Verified,
		user.Subscribed,
		user.Tier,
	).Scan(&user.CreatedAt, &user.UpdatedAt, &user.TokenVersion)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE id = $1 AND deleted_at IS NULL`

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE email = $1 AND deleted_at IS NULL`

	var user User
	err := r.db.GetContext(ctx, &user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return &user, nil
}

// UpdateProfileFields writes display_name to its column and merges every
// other field into the profile document.
func (r *repository) UpdateProfileFields(
	ctx context.Context,
	id string,
	fields map[string]string,
) error {
	var displayName *string
	doc := make(map[string]string, len(fields))
	for k, v := range fields {
		if k == FieldDisplayName {
			displayName = &v
			continue
		}
		doc[k] = v
	}

	patch, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	query := `
		UPDATE users
		SET display_name = COALESCE($2, display_name),
		    profile = COALESCE(profile, '{}'::jsonb) || $3::jsonb,
		    updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	return r.execOne(ctx, "update profile", query, id, displayName, string(patch))
}

func (r *repository) UpdatePreferences(
	ctx context.Context,
	id string,
	prefs Preferences,
) error {
	query := `
		UPDATE users
		SET preferences = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	return r.execOne(ctx, "update preferences", query, id, NewJSONB(prefs))
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	return r.execOne(ctx, "update password", query, id, passwordHash)
}

// UpdateRole replaces the role and its permission record in one statement
// and invalidates outstanding access tokens.
func (r *repository) UpdateRole(
	ctx context.Context,
	id string,
	role access.Role,
	perms access.Permissions,
) error {
	query := `
		UPDATE users
		SET role = $2, permissions = $3,
		    token_version = token_version + 1, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	return r.execOne(ctx, "update role", query, id, string(role), NewJSONB(perms))
}

func (r *repository) UpdatePermissions(
	ctx context.Context,
	id string,
	perms access.Permissions,
) error {
	query := `
		UPDATE users
		SET permissions = $2,
		    token_version = token_version + 1, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	return r.execOne(ctx, "update permissions", query, id, NewJSONB(perms))
}

func (r *repository) SetSuspended(
	ctx context.Context,
	id string,
	suspended bool,
) error {
	query := `
		UPDATE users
		SET suspended = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	return r.execOne(ctx, "set suspended", query, id, suspended)
}

func (r *repository) UpdateTier(
	ctx context.Context,
	id, tier string,
	endsAt *time.Time,
) error {
	query := `
		UPDATE users
		SET subscription_tier = $2, subscription_ends_at = $3,
		    updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	return r.execOne(ctx, "update tier", query, id, tier, endsAt)
}

// RecordUsage adds tokens to the running total. The counter never
// decreases even if a negative amount slips through.
func (r *repository) RecordUsage(
	ctx context.Context,
	id string,
	tokens int64,
) (int64, error) {
	query := `
		UPDATE users
		SET tokens_used = GREATEST(tokens_used, tokens_used + $2),
		    updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING tokens_used`

	var total int64
	err := r.db.GetContext(ctx, &total, query, id, tokens)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("record usage: %w", core.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("record usage: %w", err)
	}

	return total, nil
}

func (r *repository) TouchLastLogin(ctx context.Context, id string) error {
	query := `
		UPDATE users
		SET last_login_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	return r.execOne(ctx, "touch last login", query, id)
}

func (r *repository) IncrementTokenVersion(
	ctx context.Context,
	id string,
) error {
	query := `
		UPDATE users
		SET token_version = token_version + 1, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	return r.execOne(ctx, "increment token version", query, id)
}

func (r *repository) SoftDelete(ctx context.Context, id string) error {
	query := `
		UPDATE users
		SET deleted_at = NOW(), updated_at = NOW(),
		    token_version = token_version + 1
		WHERE id = $1 AND deleted_at IS NULL`

	return r.execOne(ctx, "delete user", query, id)
}

func (r *repository) List(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	params.Normalize()

	conditions := []string{"deleted_at IS NULL"}
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if params.Search != "" {
		p := arg("%" + escapeLike(params.Search) + "%")
		conditions = append(conditions, fmt.Sprintf(
			"(email ILIKE %[1]s OR display_name ILIKE %[1]s OR id::text ILIKE %[1]s)",
			p,
		))
	}
	if params.Role != "" {
		conditions = append(conditions, "role = "+arg(params.Role))
	}
	if params.Tier != "" {
		conditions = append(conditions, "subscription_tier = "+arg(params.Tier))
	}
	if params.Suspended != nil {
		conditions = append(conditions, "suspended = "+arg(*params.Suspended))
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM users WHERE " + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s
		FROM users
		WHERE %s
		ORDER BY created_at DESC
		LIMIT %s OFFSET %s`,
		userColumns, where, arg(params.PageSize), arg(params.Offset()))

	users := []User{}
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	return users, total, nil
}

// CountByRole reports every role, including those with no users.
func (r *repository) CountByRole(
	ctx context.Context,
) (map[access.Role]int, error) {
	query := `
		SELECT role, COUNT(*) AS n
		FROM users
		WHERE deleted_at IS NULL
		GROUP BY role`

	var rows []struct {
		Role string `db:"role"`
		N    int    `db:"n"`
	}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count by role: %w", err)
	}

	counts := make(map[access.Role]int, len(access.Roles()))
	for _, role := range access.Roles() {
		counts[role] = 0
	}
	for _, row := range rows {
		counts[access.Role(row.Role)] = row.N
	}

	return counts, nil
}

func (r *repository) CountBySuspension(
	ctx context.Context,
) (active, suspended int, err error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE NOT suspended) AS active,
			COUNT(*) FILTER (WHERE suspended) AS suspended
		FROM users
		WHERE deleted_at IS NULL`

	var row struct {
		Active    int `db:"active"`
		Suspended int `db:"suspended"`
	}
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		return 0, 0, fmt.Errorf("count by suspension: %w", err)
	}

	return row.Active, row.Suspended, nil
}

func (r *repository) execOne(
	ctx context.Context,
	op, query string,
	args ...any,
) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}

	return nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

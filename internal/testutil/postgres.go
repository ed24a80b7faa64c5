// AngelaMos | 2026
// postgres.go

//go:build integration

// Package testutil starts throwaway dependencies for integration tests.
package testutil

import (
	"context"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/carterperez-dev/templates/control-panel/migrations"
)

// NewTestDB starts a Postgres container, applies every migration and
// returns a connection. Everything is torn down through t.Cleanup.
func NewTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	pgCtr, err := tcpostgres.Run(ctx,
		"postgres:17-alpine",
		tcpostgres.WithDatabase("control_panel_test"),
		tcpostgres.WithUsername("control_panel_test"),
		tcpostgres.WithPassword("testpassword"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, pgCtr)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}

	connStr, err := pgCtr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	if _, _, err := migrations.Run(connStr, false); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	db, err := sqlx.ConnectContext(ctx, "pgx", connStr)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

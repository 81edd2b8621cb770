package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/patientcard/patientcard/internal/platform/db"
)

// globalPool is shared by every test in the package. It is nil when no
// database could be reached, in which case tests skip.
var globalPool *pgxpool.Pool

// TestMain uses TEST_DATABASE_URL when set and otherwise starts a throwaway
// Postgres container.
func TestMain(m *testing.M) {
	ctx := context.Background()

	connStr := os.Getenv("TEST_DATABASE_URL")
	cleanup := func() {}
	if connStr == "" {
		var err error
		connStr, cleanup, err = startPostgresContainer(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "integration tests skipped: %v\n", err)
			os.Exit(m.Run())
		}
	}

	pool, err := db.NewPool(ctx, db.PoolConfig{DatabaseURL: connStr, MaxConns: 5})
	if err != nil {
		cleanup()
		fmt.Fprintf(os.Stderr, "connect: %v\n", err)
		os.Exit(1)
	}
	if _, err := db.NewMigrator(pool, findMigrationsDir()).Up(ctx); err != nil {
		pool.Close()
		cleanup()
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}

	globalPool = pool
	code := m.Run()
	pool.Close()
	cleanup()
	os.Exit(code)
}

func findMigrationsDir() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "..", "..", "migrations")
}

// requireDB skips the test without a database and empties both tables.
func requireDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if globalPool == nil {
		t.Skip("no database available")
	}
	_, err := globalPool.Exec(context.Background(), `TRUNCATE disease, patient RESTART IDENTITY`)
	if err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return globalPool
}

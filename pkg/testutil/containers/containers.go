//go:build integration

// Package containers starts the databases integration suites run against.
// One Postgres container serves the whole test binary; suites isolate
// themselves by truncating the tables they touch.
package containers

import (
	"context"
	"sync"
	"testing"
)

var (
	pgOnce sync.Once
	pg     *PostgresContainer
	pgErr  error
)

// Postgres returns the shared container, starting it on first use. Suites
// are skipped under -short so `go test -short -tags integration` stays
// offline.
func Postgres(t *testing.T) *PostgresContainer {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container skipped in short mode")
	}
	pgOnce.Do(func() {
		pg, pgErr = startPostgres(context.Background())
	})
	if pgErr != nil {
		t.Fatalf("start postgres: %v", pgErr)
	}
	return pg
}

// Reset empties tables before a test and fails it when that is impossible.
func (p *PostgresContainer) Reset(t *testing.T, tables ...string) {
	t.Helper()
	if err := p.TruncateTables(context.Background(), tables...); err != nil {
		t.Fatalf("reset tables: %v", err)
	}
}

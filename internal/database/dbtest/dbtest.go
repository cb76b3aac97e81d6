// Package dbtest opens throwaway in-memory stores for tests.
package dbtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/iliyamo/moviego/internal/database"
)

// Open returns a migrated, empty in-memory sqlite store that is closed when
// the test finishes.
func Open(t testing.TB) *database.Store {
	t.Helper()
	path := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	store, err := database.Open(database.Options{Driver: database.DialectSQLite, Path: path})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := database.Migrate(context.Background(), store); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

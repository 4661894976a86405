package testsupport

import (
	"context"
	"testing"

	"prodscan/internal/config"
	"prodscan/internal/store"
)

// MustOpenRepository opens the configured store and registers cleanup.
func MustOpenRepository(t testing.TB, cfg *config.Config) *store.Repository {
	t.Helper()

	kv, err := store.Open(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	repo := store.NewRepository(kv)
	t.Cleanup(func() {
		_ = repo.Close()
	})
	return repo
}

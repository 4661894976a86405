package preflight

import (
	"context"

	"prodscan/internal/config"
	"prodscan/internal/store"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every check against cfg and the already open kv. token is
// the effective Discogs token, which may come from saved settings rather than
// cfg.
func RunAll(ctx context.Context, cfg *config.Config, kv store.KV, token string) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckDirectoryAccess("Data directory", cfg.Storage.DataDir)}
	results = append(results, CheckStore(ctx, cfg.Storage.Backend, kv))
	results = append(results, CheckDiscogs(ctx, cfg.Discogs.BaseURL, token, cfg.Discogs.UserAgent))
	return results
}

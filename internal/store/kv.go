package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"prodscan/internal/config"
	"prodscan/internal/logging"
)

// ErrNotFound is returned by KV.Get when a key is absent.
var ErrNotFound = errors.New("store: key not found")

// KV is an opaque key/value store.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Remove deletes key; removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	Close() error
}

// Open connects to the backend selected in cfg.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (KV, error) {
	if cfg == nil {
		return nil, errors.New("store: config is nil")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "store")

	var (
		kv  KV
		err error
	)
	switch cfg.Storage.Backend {
	case config.BackendSQLite, "":
		if err := cfg.EnsureDirectories(); err != nil {
			return nil, fmt.Errorf("ensure directories: %w", err)
		}
		kv, err = OpenSQLite(ctx, cfg.DatabasePath())
	case config.BackendBadger:
		if err := cfg.EnsureDirectories(); err != nil {
			return nil, fmt.Errorf("ensure directories: %w", err)
		}
		kv, err = OpenBadger(cfg.BadgerDir())
	case config.BackendRedis:
		kv, err = OpenRedis(ctx, RedisOptions{Addr: cfg.Storage.RedisAddr, DB: cfg.Storage.RedisDB})
	default:
		return nil, fmt.Errorf("store: unknown backend %q", cfg.Storage.Backend)
	}
	if err != nil {
		return nil, err
	}
	logger.Debug("store opened", logging.String("backend", cfg.Storage.Backend))
	return kv, nil
}

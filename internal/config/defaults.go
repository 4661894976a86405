package config

import "time"

const (
	defaultUserAgent             = "ProductionCreditScanner/0.2.1-alpha"
	defaultBaseURL               = "https://api.discogs.com"
	defaultMaxAttempts           = 3
	defaultDetailMaxAttempts     = 3
	defaultMaxAdditionalVersions = 5
	defaultHTTPTimeoutSeconds    = 30
	defaultOnlyMainRole          = true
	defaultStorageBackend        = BackendSQLite
	defaultRedisAddr             = "127.0.0.1:6379"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultSortColumn            = "year"
	defaultSortDirection         = "desc"

	defaultTokenDelay     = 1100 * time.Millisecond
	defaultAnonymousDelay = 3000 * time.Millisecond

	maxAdditionalVersionsLimit = 10
)

// Storage backends understood by the store package.
const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendRedis  = "redis"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Discogs: Discogs{
			UserAgent:             defaultUserAgent,
			BaseURL:               defaultBaseURL,
			MaxAttempts:           defaultMaxAttempts,
			DetailMaxAttempts:     defaultDetailMaxAttempts,
			MaxAdditionalVersions: defaultMaxAdditionalVersions,
			HTTPTimeoutSeconds:    defaultHTTPTimeoutSeconds,
			OnlyMainRole:          defaultOnlyMainRole,
		},
		Storage: Storage{
			Backend:   defaultStorageBackend,
			DataDir:   defaultDataDir(),
			RedisAddr: defaultRedisAddr,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Export: Export{
			SortColumn:    defaultSortColumn,
			SortDirection: defaultSortDirection,
		},
	}
}

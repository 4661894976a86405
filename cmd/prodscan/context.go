package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"prodscan/internal/config"
	"prodscan/internal/discogs"
	"prodscan/internal/logging"
	"prodscan/internal/resolver"
	"prodscan/internal/scan"
	"prodscan/internal/services"
	"prodscan/internal/store"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// withRepository opens the configured store for the duration of fn.
func (c *commandContext) withRepository(ctx context.Context, fn func(*store.Repository) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}
	kv, err := store.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	repo := store.NewRepository(kv)
	defer repo.Close()
	return fn(repo)
}

// newClient builds the listing client. The token from config wins over a
// token saved with the artist settings.
func (c *commandContext) newClient(settings store.Settings, onThrottle func(discogs.ThrottleEvent)) (*discogs.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	token := cfg.Discogs.Token
	if token == "" {
		token = settings.Token
	}
	delay := cfg.RequestDelay(token != "")
	return discogs.New(discogs.Config{
		Token:             token,
		UserAgent:         cfg.Discogs.UserAgent,
		BaseURL:           cfg.Discogs.BaseURL,
		HTTPClient:        &http.Client{Timeout: cfg.HTTPTimeout()},
		MaxAttempts:       cfg.Discogs.MaxAttempts,
		RequestsPerMinute: requestsPerMinute(delay),
		Burst:             1,
		Logger:            logger,
		OnThrottle:        onThrottle,
	})
}

// requestsPerMinute sizes the token bucket so it never undercuts the
// explicit inter-request delay.
func requestsPerMinute(delay time.Duration) int {
	if delay <= 0 {
		return 0
	}
	rpm := int(time.Minute / delay)
	if rpm < 1 {
		return 1
	}
	return rpm
}

// scanner bundles what sync and retry commands need.
type scanner struct {
	orch     *scan.Orchestrator
	session  *scan.Session
	settings store.Settings
}

func (c *commandContext) newScanner(cmd *cobra.Command, repo *store.Repository) (*scanner, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	settings, err := c.activeArtist(cmd.Context(), repo)
	if err != nil {
		return nil, err
	}

	observer := newCLIObserver(logger, cmd.ErrOrStderr())
	client, err := c.newClient(settings, scan.ThrottleHook(observer))
	if err != nil {
		return nil, err
	}
	delay := cfg.RequestDelay(client.HasToken())

	res, err := resolver.New(resolver.Config{
		Fetcher:               client.WithMaxAttempts(cfg.Discogs.DetailMaxAttempts),
		MaxAdditionalVersions: cfg.Discogs.MaxAdditionalVersions,
		SubFetchDelay:         discogs.SubFetchDelay(delay),
		Logger:                logger,
	})
	if err != nil {
		return nil, err
	}
	orch, err := scan.New(scan.Config{
		Lister:       client,
		Resolver:     res,
		State:        repo,
		Observer:     observer,
		Logger:       logger,
		OnlyMainRole: cfg.Discogs.OnlyMainRole,
	})
	if err != nil {
		return nil, err
	}
	return &scanner{
		orch:     orch,
		session:  scan.NewSession(settings.ArtistID, settings.ArtistName, delay),
		settings: settings,
	}, nil
}

// activeArtist returns the saved settings, falling back to the configured
// default artist whose name is looked up and saved on first use.
func (c *commandContext) activeArtist(ctx context.Context, repo *store.Repository) (store.Settings, error) {
	settings, ok, err := repo.Settings(ctx)
	if err != nil {
		return store.Settings{}, err
	}
	if ok && settings.ArtistID != "" {
		return settings, nil
	}

	cfg, err := c.ensureConfig()
	if err != nil {
		return store.Settings{}, err
	}
	if cfg.Artist.ID == "" {
		return store.Settings{}, services.Wrap(services.ErrConfiguration, "cli", "select artist",
			"no artist selected; run `prodscan artist set <id>`", nil)
	}
	return c.saveArtist(ctx, repo, cfg.Artist.ID, "")
}

func (c *commandContext) saveArtist(ctx context.Context, repo *store.Repository, input, token string) (store.Settings, error) {
	artistID, err := discogs.ParseArtistID(input)
	if err != nil {
		return store.Settings{}, services.Wrap(services.ErrValidation, "cli", "parse artist id", "", err)
	}
	client, err := c.newClient(store.Settings{Token: token}, nil)
	if err != nil {
		return store.Settings{}, err
	}
	artist, err := client.GetArtist(ctx, artistID)
	if err != nil {
		return store.Settings{}, fmt.Errorf("look up artist %s: %w", artistID, err)
	}
	settings := store.Settings{ArtistID: artistID, ArtistName: artist.Name, Token: token}
	if err := repo.SaveSettings(ctx, settings); err != nil {
		return store.Settings{}, fmt.Errorf("save settings: %w", err)
	}
	return settings, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

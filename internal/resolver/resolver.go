package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"prodscan/internal/catalog"
	"prodscan/internal/credits"
	"prodscan/internal/discogs"
	"prodscan/internal/logging"
	"prodscan/internal/services"
	"prodscan/internal/textutil"
)

// Display defaults used when no source carries a value.
const (
	UnknownLabel     = "Unknown Label"
	NoCredits        = "N/A"
	NoVersionCredits = "N/A (No version data for detailed credits)"

	discogsSiteURL = "https://www.discogs.com"
)

// Fetcher is the subset of the Discogs client used during resolution.
type Fetcher interface {
	GetMaster(ctx context.Context, masterID int64) (*discogs.Master, error)
	GetRelease(ctx context.Context, releaseID int64) (*discogs.Release, error)
	MasterVersions(ctx context.Context, masterID int64, perPage int) (*discogs.VersionsPage, error)
}

// Config configures a Resolver.
type Config struct {
	Fetcher Fetcher
	// MaxAdditionalVersions bounds the alternate versions fetched per master.
	MaxAdditionalVersions int
	// SubFetchDelay separates requests made for the same item.
	SubFetchDelay time.Duration
	Logger        *slog.Logger
	Sleep         func(context.Context, time.Duration) error
}

// Resolver resolves stubs into items.
type Resolver struct {
	fetcher     Fetcher
	maxVersions int
	delay       time.Duration
	logger      *slog.Logger
	sleep       func(context.Context, time.Duration) error
}

// New constructs a Resolver.
func New(cfg Config) (*Resolver, error) {
	if cfg.Fetcher == nil {
		return nil, errors.New("resolver: fetcher is required")
	}
	if cfg.MaxAdditionalVersions < 0 {
		return nil, fmt.Errorf("resolver: max additional versions must be >= 0 (got %d)", cfg.MaxAdditionalVersions)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = discogs.SleepWithContext
	}
	return &Resolver{
		fetcher:     cfg.Fetcher,
		maxVersions: cfg.MaxAdditionalVersions,
		delay:       cfg.SubFetchDelay,
		logger:      logging.NewComponentLogger(logger, "resolver"),
		sleep:       sleep,
	}, nil
}

// Resolve fetches the details of stub and builds its item. variants identify
// the target artist in credit lists.
func (r *Resolver) Resolve(ctx context.Context, stub catalog.Stub, variants []string) (catalog.Item, error) {
	ctx = services.WithItemID(ctx, stub.ID)
	ctx = services.WithItemKind(ctx, string(stub.Kind))
	if err := stopped(ctx, "before request"); err != nil {
		return catalog.Item{}, err
	}
	if stub.IsMaster() {
		return r.resolveMaster(ctx, stub, variants)
	}
	return r.resolveRelease(ctx, stub, variants)
}

func (r *Resolver) resolveRelease(ctx context.Context, stub catalog.Stub, variants []string) (catalog.Item, error) {
	logger := logging.WithContext(ctx, r.logger)
	logger.Debug("fetching release", logging.String("title", stub.Title))

	release, err := r.fetcher.GetRelease(ctx, stub.ID)
	if err != nil {
		return catalog.Item{}, topLevelError(ctx, "fetch release", stub.ID, err)
	}
	if err := stopped(ctx, "after release fetch"); err != nil {
		return catalog.Item{}, err
	}

	roles := credits.Extract(release, variants)
	item := catalog.Item{
		ID:         stub.ID,
		Kind:       catalog.KindRelease,
		Title:      firstNonEmpty(release.Title, stub.Title),
		Artist:     artistString(release.Artists, stub.Artist),
		Year:       yearString(release.Year, stub),
		Label:      labelString(release.Labels),
		Credits:    roles.Summary(),
		Roles:      roles,
		ArtworkURL: firstNonEmpty(firstImage(release.Images), stub.Thumb, release.Thumb),
		SourceURL:  firstNonEmpty(release.URI, siteURL("release", stub.ID)),
	}
	logger.Debug("release resolved", logging.String("credits", item.Credits))
	return item, nil
}

func (r *Resolver) resolveMaster(ctx context.Context, stub catalog.Stub, variants []string) (catalog.Item, error) {
	logger := logging.WithContext(ctx, r.logger)
	logger.Debug("fetching master", logging.String("title", stub.Title))

	master, err := r.fetcher.GetMaster(ctx, stub.ID)
	if err != nil {
		return catalog.Item{}, topLevelError(ctx, "fetch master", stub.ID, err)
	}
	if err := stopped(ctx, "after master fetch"); err != nil {
		return catalog.Item{}, err
	}

	var key *discogs.Release
	if master.MainRelease != 0 {
		key, err = r.subFetchRelease(ctx, master.MainRelease, "key release")
		if err != nil {
			return catalog.Item{}, err
		}
	} else {
		logger.Info("master has no key release")
	}

	var alternates []*discogs.Release
	if key != nil && credits.HasTargetCredits(key, variants) {
		logger.Debug("key release credits the target artist; skipping alternate versions",
			logging.Int64("key_release_id", key.ID))
	} else {
		alternates, err = r.fetchAlternates(ctx, master.ID, master.MainRelease)
		if err != nil {
			return catalog.Item{}, err
		}
	}
	if err := stopped(ctx, "after version fetches"); err != nil {
		return catalog.Item{}, err
	}

	item := catalog.Item{
		ID:        stub.ID,
		Kind:      catalog.KindMaster,
		IsMaster:  true,
		Title:     firstNonEmpty(master.Title, keyField(key, func(r *discogs.Release) string { return r.Title }), stub.Title),
		Artist:    artistString(masterArtists(master, key), stub.Artist),
		Year:      masterYear(master, key, stub),
		Label:     UnknownLabel,
		Credits:   NoCredits,
		SourceURL: siteURL("master", stub.ID),
		ArtworkURL: firstNonEmpty(
			firstImage(master.Images),
			keyField(key, func(r *discogs.Release) string { return firstImage(r.Images) }),
			keyField(key, func(r *discogs.Release) string { return r.Thumb }),
			stub.Thumb,
		),
	}
	if key != nil {
		item.RepresentativeID = key.ID
		item.Label = labelString(key.Labels)
	}

	sources := alternates
	if key != nil {
		sources = append([]*discogs.Release{key}, alternates...)
	}
	if len(sources) == 0 {
		item.Credits = NoVersionCredits
		logger.Info("master resolved without any version data")
		return item, nil
	}
	roles := credits.Roles{}
	for _, release := range sources {
		roles.Merge(credits.Extract(release, variants))
	}
	item.Roles = roles
	item.Credits = roles.Summary()
	if roles.Empty() {
		logger.Info("no target artist credits found",
			logging.Int("versions_checked", len(sources)))
	}
	return item, nil
}

// fetchAlternates lists the master's versions newest first and fetches up to
// the budget of them, skipping the key release. Failures are logged and
// skipped; only a stop aborts.
func (r *Resolver) fetchAlternates(ctx context.Context, masterID, keyID int64) ([]*discogs.Release, error) {
	if r.maxVersions == 0 {
		return nil, nil
	}
	logger := logging.WithContext(ctx, r.logger)
	if err := r.pause(ctx, "before versions list"); err != nil {
		return nil, err
	}
	page, err := r.fetcher.MasterVersions(ctx, masterID, r.maxVersions*2+5)
	if err != nil {
		if isStop(ctx, err) {
			return nil, stopError(ctx, "versions list", err)
		}
		logging.WarnWithContext(logger, "versions list fetch failed", "versions_list_failed",
			logging.Error(err),
			logging.Impact("credits limited to the key release"),
		)
		return nil, nil
	}
	if err := stopped(ctx, "after versions list"); err != nil {
		return nil, err
	}

	ids := selectVersions(page.Versions, keyID, r.maxVersions)
	logger.Debug("alternate versions selected", logging.Int("count", len(ids)))

	out := make([]*discogs.Release, 0, len(ids))
	for _, id := range ids {
		release, err := r.subFetchRelease(ctx, id, "alternate version")
		if err != nil {
			return nil, err
		}
		if release != nil {
			out = append(out, release)
		}
	}
	return out, nil
}

// subFetchRelease waits the sub-fetch delay and fetches a release. A failure
// returns (nil, nil) after logging; a stop returns an error.
func (r *Resolver) subFetchRelease(ctx context.Context, releaseID int64, what string) (*discogs.Release, error) {
	if err := r.pause(ctx, "before "+what); err != nil {
		return nil, err
	}
	release, err := r.fetcher.GetRelease(ctx, releaseID)
	if err != nil {
		if isStop(ctx, err) {
			return nil, stopError(ctx, what, err)
		}
		logging.WarnWithContext(logging.WithContext(ctx, r.logger), what+" fetch failed", "sub_fetch_failed",
			logging.Int64("release_id", releaseID),
			logging.Error(err),
		)
		return nil, nil
	}
	if err := stopped(ctx, "after "+what); err != nil {
		return nil, err
	}
	return release, nil
}

func (r *Resolver) pause(ctx context.Context, point string) error {
	if err := stopped(ctx, point); err != nil {
		return err
	}
	if err := r.sleep(ctx, r.delay); err != nil {
		return stopError(ctx, point, err)
	}
	return stopped(ctx, point)
}

func selectVersions(versions []discogs.Version, keyID int64, limit int) []int64 {
	ids := make([]int64, 0, limit)
	seen := make(map[int64]struct{}, limit)
	for _, v := range versions {
		if len(ids) >= limit {
			break
		}
		if v.ID == keyID || v.ID == 0 {
			continue
		}
		if _, dup := seen[v.ID]; dup {
			continue
		}
		seen[v.ID] = struct{}{}
		ids = append(ids, v.ID)
	}
	return ids
}

func stopped(ctx context.Context, point string) error {
	if err := ctx.Err(); err != nil {
		return stopError(ctx, point, err)
	}
	return nil
}

func isStop(ctx context.Context, err error) bool {
	return ctx.Err() != nil || discogs.IsCancelled(err) || services.IsCancelled(err)
}

func stopError(ctx context.Context, point string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	return services.Wrap(services.ErrCancelled, "resolve", point, "", err)
}

func topLevelError(ctx context.Context, op string, id int64, err error) error {
	if isStop(ctx, err) {
		return stopError(ctx, op, err)
	}
	marker := services.ErrTransient
	switch discogs.StatusCode(err) {
	case http.StatusNotFound:
		marker = services.ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		marker = services.ErrConfiguration
	}
	return services.Wrap(marker, "resolve", fmt.Sprintf("%s %d", op, id), "", err)
}

func masterArtists(master *discogs.Master, key *discogs.Release) []discogs.Credit {
	if len(master.Artists) > 0 {
		return master.Artists
	}
	if key != nil {
		return key.Artists
	}
	return nil
}

func masterYear(master *discogs.Master, key *discogs.Release, stub catalog.Stub) string {
	switch {
	case master.Year > 0:
		return strconv.Itoa(master.Year)
	case key != nil && key.Year > 0:
		return strconv.Itoa(key.Year)
	}
	return firstNonEmpty(stub.YearString(), catalog.UnknownYear)
}

func yearString(year int, stub catalog.Stub) string {
	if year > 0 {
		return strconv.Itoa(year)
	}
	return firstNonEmpty(stub.YearString(), catalog.UnknownYear)
}

func artistString(artists []discogs.Credit, fallback string) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		if name := textutil.StripDisambiguation(a.Name); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return fallback
	}
	return strings.Join(names, ", ")
}

func labelString(labels []discogs.Label) string {
	names := make([]string, 0, len(labels))
	for _, l := range labels {
		if name := strings.TrimSpace(l.Name); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return UnknownLabel
	}
	return strings.Join(names, " / ")
}

func firstImage(images []discogs.Image) string {
	for _, img := range images {
		if img.URI != "" {
			return img.URI
		}
	}
	return ""
}

func keyField(key *discogs.Release, get func(*discogs.Release) string) string {
	if key == nil {
		return ""
	}
	return get(key)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func siteURL(kind string, id int64) string {
	return fmt.Sprintf("%s/%s/%d", discogsSiteURL, kind, id)
}

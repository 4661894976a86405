package scan

import (
	"context"
	"time"

	"github.com/google/uuid"

	"prodscan/internal/catalog"
	"prodscan/internal/credits"
	"prodscan/internal/discogs"
)

// Phase names the orchestrator state reported to observers.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseRetrying Phase = "retrying_failed"
	PhaseFetching Phase = "fetching_new"
	PhaseStopped  Phase = "stopped"
)

// Progress is a point-in-time report from a running cycle.
type Progress struct {
	Phase   Phase
	Done    int
	Total   int
	Message string
}

// Observer receives progress and throttle notices. Implementations must not
// block for long; they run on the scan goroutine.
type Observer interface {
	Progress(Progress)
	Throttled(discogs.ThrottleEvent)
}

// NopObserver discards every notice.
type NopObserver struct{}

func (NopObserver) Progress(Progress) {}

func (NopObserver) Throttled(discogs.ThrottleEvent) {}

// ThrottleHook adapts an observer to discogs.Config.OnThrottle.
func ThrottleHook(obs Observer) func(discogs.ThrottleEvent) {
	if obs == nil {
		return nil
	}
	return obs.Throttled
}

// Lister pages through an artist's discography.
type Lister interface {
	ArtistReleases(ctx context.Context, artistID string, page int) (*discogs.ArtistReleasesPage, error)
}

// Resolver turns a stub into a processed item.
type Resolver interface {
	Resolve(ctx context.Context, stub catalog.Stub, variants []string) (catalog.Item, error)
}

// State is the persistence the orchestrator needs. store.Repository
// satisfies it.
type State interface {
	Collection(ctx context.Context, artistID string) ([]catalog.Item, error)
	SaveCollection(ctx context.Context, artistID string, items []catalog.Item) error
	FailedQueue(ctx context.Context, artistID string) ([]catalog.FailedItem, error)
	SaveFailedQueue(ctx context.Context, artistID string, queue []catalog.FailedItem) error
	SetLastUpdated(ctx context.Context, artistID string, at time.Time) error
}

// Session carries the per-run scan state for one artist.
type Session struct {
	ID         string
	ArtistID   string
	ArtistName string
	Variants   []string
	// Delay separates top-level item fetches.
	Delay time.Duration

	items  []catalog.Item
	failed []catalog.FailedItem
}

// NewSession prepares a session for the artist, deriving name variants from
// its display name.
func NewSession(artistID, artistName string, delay time.Duration) *Session {
	return &Session{
		ID:         uuid.NewString(),
		ArtistID:   artistID,
		ArtistName: artistName,
		Variants:   credits.NameVariants(artistName),
		Delay:      delay,
	}
}

// Items returns the session's collection as last merged.
func (s *Session) Items() []catalog.Item {
	return s.items
}

// Failed returns the session's failure queue as last updated.
func (s *Session) Failed() []catalog.FailedItem {
	return s.failed
}

// Result summarises one cycle or retry run.
type Result struct {
	SessionID   string
	Retried     int
	Recovered   int
	Discovered  int
	Added       int
	Failed      int
	QueueLength int
	Collection  int
	Stopped     bool
	Duration    time.Duration
	LastUpdated time.Time
}

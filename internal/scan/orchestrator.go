package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"prodscan/internal/catalog"
	"prodscan/internal/discogs"
	"prodscan/internal/logging"
	"prodscan/internal/services"
)

// firstItemDelay replaces the full delay before the first item of a multi-item
// batch; the listing call already paced the session.
const firstItemDelay = 100 * time.Millisecond

// Config wires the orchestrator's collaborators.
type Config struct {
	Lister   Lister
	Resolver Resolver
	State    State
	Observer Observer
	Logger   *slog.Logger
	// OnlyMainRole keeps listing rows whose role is "Main", masters, and rows
	// with no role.
	OnlyMainRole bool
	Sleep        func(context.Context, time.Duration) error
	Now          func() time.Time
}

// Orchestrator runs sync cycles. It is not safe for concurrent use; callers
// serialise runs with synclock.
type Orchestrator struct {
	lister       Lister
	resolver     Resolver
	state        State
	observer     Observer
	logger       *slog.Logger
	onlyMainRole bool
	sleep        func(context.Context, time.Duration) error
	now          func() time.Time
}

// New validates cfg and returns an Orchestrator.
func New(cfg Config) (*Orchestrator, error) {
	switch {
	case cfg.Lister == nil:
		return nil, errors.New("scan: lister is required")
	case cfg.Resolver == nil:
		return nil, errors.New("scan: resolver is required")
	case cfg.State == nil:
		return nil, errors.New("scan: state is required")
	}
	o := &Orchestrator{
		lister:       cfg.Lister,
		resolver:     cfg.Resolver,
		state:        cfg.State,
		observer:     cfg.Observer,
		logger:       cfg.Logger,
		onlyMainRole: cfg.OnlyMainRole,
		sleep:        cfg.Sleep,
		now:          cfg.Now,
	}
	if o.observer == nil {
		o.observer = NopObserver{}
	}
	if o.logger == nil {
		o.logger = logging.NewNop()
	}
	o.logger = logging.NewComponentLogger(o.logger, "scan")
	if o.sleep == nil {
		o.sleep = discogs.SleepWithContext
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o, nil
}

// Sync runs a full cycle: retry the failure queue, fetch new items, dedupe,
// persist. A stop request ends the cycle early with Result.Stopped set; the
// partial state is still persisted and no error is returned for it.
func (o *Orchestrator) Sync(ctx context.Context, session *Session) (Result, error) {
	started := o.now()
	ctx = o.annotate(ctx, session)
	logger := logging.WithContext(ctx, o.logger)

	if err := o.load(ctx, session); err != nil {
		return Result{SessionID: session.ID}, err
	}
	result := Result{SessionID: session.ID}
	logger.Info("sync started",
		logging.Int("collection", len(session.items)),
		logging.Int("queued_failures", len(session.failed)),
	)

	if len(session.failed) > 0 {
		o.retryQueue(ctx, session, &result)
	}

	if !result.Stopped {
		watermark := catalog.MaxID(session.items)
		stubs, stopped := o.discover(ctx, session, watermark)
		result.Discovered = len(stubs)
		if stopped {
			result.Stopped = true
		} else if len(stubs) > 0 {
			logger.Info("new items discovered",
				logging.Int("count", len(stubs)),
				logging.Int64("watermark", watermark),
			)
			outcome := o.process(ctx, session, PhaseFetching, stubs)
			result.Added = outcome.succeeded
			result.Failed = outcome.failed
			result.Stopped = outcome.stopped
		}
	}

	return o.finish(ctx, session, result, started, !result.Stopped)
}

// RetryFailed runs only the retry phase of a cycle.
func (o *Orchestrator) RetryFailed(ctx context.Context, session *Session) (Result, error) {
	started := o.now()
	ctx = o.annotate(ctx, session)
	if err := o.load(ctx, session); err != nil {
		return Result{SessionID: session.ID}, err
	}
	result := Result{SessionID: session.ID}
	if len(session.failed) == 0 {
		logging.WithContext(ctx, o.logger).Info("failure queue empty")
		result.Collection = len(session.items)
		return result, nil
	}
	o.retryQueue(ctx, session, &result)
	return o.finish(ctx, session, result, started, false)
}

// RetryItem resolves exactly one queued failure. An empty kind prefers the
// master when both kinds are queued under the same id. The returned error is
// the resolution error when the item failed again.
func (o *Orchestrator) RetryItem(ctx context.Context, session *Session, id int64, kind catalog.Kind) (catalog.Item, error) {
	started := o.now()
	ctx = o.annotate(ctx, session)
	if err := o.load(ctx, session); err != nil {
		return catalog.Item{}, err
	}
	failure, ok := catalog.FindFailure(session.failed, id, kind)
	if !ok {
		return catalog.Item{}, services.Wrap(services.ErrNotFound, "scan", "retry item",
			fmt.Sprintf("%d is not in the failure queue", id), nil)
	}

	outcome := o.process(ctx, session, PhaseRetrying, []catalog.Stub{stubFor(failure)})
	if _, err := o.finish(ctx, session, Result{SessionID: session.ID}, started, false); err != nil {
		return catalog.Item{}, err
	}
	if outcome.lastErr != nil {
		return catalog.Item{}, outcome.lastErr
	}
	item, _ := catalog.Find(session.items, catalog.Key{ID: failure.ID, IsMaster: failure.Kind == catalog.KindMaster})
	return item, nil
}

func (o *Orchestrator) retryQueue(ctx context.Context, session *Session, result *Result) {
	stubs := make([]catalog.Stub, 0, len(session.failed))
	for _, f := range session.failed {
		stubs = append(stubs, stubFor(f))
	}
	logging.WithContext(ctx, o.logger).Info("retrying failed items", logging.Int("count", len(stubs)))
	outcome := o.process(ctx, session, PhaseRetrying, stubs)
	result.Retried = len(stubs)
	result.Recovered = outcome.succeeded
	result.Stopped = outcome.stopped
}

func (o *Orchestrator) load(ctx context.Context, session *Session) error {
	if session == nil || session.ArtistID == "" {
		return services.Wrap(services.ErrConfiguration, "scan", "load", "no target artist selected", nil)
	}
	items, err := o.state.Collection(ctx, session.ArtistID)
	if err != nil {
		return services.Wrap(services.ErrTransient, "scan", "load collection", "", err)
	}
	failed, err := o.state.FailedQueue(ctx, session.ArtistID)
	if err != nil {
		return services.Wrap(services.ErrTransient, "scan", "load failure queue", "", err)
	}
	session.items = items
	session.failed = failed
	return nil
}

// finish dedupes and persists. Writes ignore cancellation so a stopped cycle
// still saves what it merged.
func (o *Orchestrator) finish(ctx context.Context, session *Session, result Result, started time.Time, stamp bool) (Result, error) {
	logger := logging.WithContext(ctx, o.logger)
	session.items = catalog.Dedupe(session.items)

	persistCtx := context.WithoutCancel(ctx)
	if err := o.state.SaveCollection(persistCtx, session.ArtistID, session.items); err != nil {
		return result, services.Wrap(services.ErrTransient, "scan", "save collection", "", err)
	}
	if err := o.state.SaveFailedQueue(persistCtx, session.ArtistID, session.failed); err != nil {
		return result, services.Wrap(services.ErrTransient, "scan", "save failure queue", "", err)
	}
	if stamp {
		result.LastUpdated = o.now().UTC()
		if err := o.state.SetLastUpdated(persistCtx, session.ArtistID, result.LastUpdated); err != nil {
			return result, services.Wrap(services.ErrTransient, "scan", "save last updated", "", err)
		}
	}

	result.Collection = len(session.items)
	result.QueueLength = len(session.failed)
	result.Duration = o.now().Sub(started)

	phase := PhaseIdle
	if result.Stopped {
		phase = PhaseStopped
	}
	o.observer.Progress(Progress{Phase: phase, Message: "saved"})
	logger.Info("sync finished",
		logging.Int("collection", result.Collection),
		logging.Int("queued_failures", result.QueueLength),
		logging.Int("added", result.Added),
		logging.Int("recovered", result.Recovered),
		logging.Bool("stopped", result.Stopped),
		logging.Duration("duration", result.Duration),
	)
	return result, nil
}

func (o *Orchestrator) annotate(ctx context.Context, session *Session) context.Context {
	if session == nil {
		return ctx
	}
	ctx = services.WithSessionID(ctx, session.ID)
	return services.WithArtistID(ctx, session.ArtistID)
}

func stubFor(f catalog.FailedItem) catalog.Stub {
	stub := f.Stub
	if stub.ID == 0 {
		stub.ID = f.ID
	}
	if stub.Kind == "" {
		stub.Kind = f.Kind
	}
	return stub
}

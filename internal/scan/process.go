package scan

import (
	"context"
	"fmt"

	"prodscan/internal/catalog"
	"prodscan/internal/logging"
	"prodscan/internal/services"
)

type batchOutcome struct {
	succeeded int
	failed    int
	stopped   bool
	lastErr   error
}

// process resolves stubs one at a time, merging successes into the session
// and routing failures to the queue. On a stop the remaining stubs are queued
// as not yet processed.
func (o *Orchestrator) process(ctx context.Context, session *Session, phase Phase, stubs []catalog.Stub) batchOutcome {
	var outcome batchOutcome
	total := len(stubs)

	for i, stub := range stubs {
		wait := session.Delay
		if i == 0 && total > 1 {
			wait = firstItemDelay
		}
		if ctx.Err() != nil || o.sleep(ctx, wait) != nil {
			o.queueStopped(session, stubs[i:])
			outcome.stopped = true
			break
		}

		itemCtx := services.WithItemID(ctx, stub.ID)
		itemCtx = services.WithItemKind(itemCtx, string(stub.Kind))
		logger := logging.WithContext(itemCtx, o.logger)
		o.observer.Progress(Progress{
			Phase:   phase,
			Done:    i,
			Total:   total,
			Message: fmt.Sprintf("%s %d: %s", stub.Kind, stub.ID, stub.Title),
		})

		item, err := o.resolver.Resolve(itemCtx, stub, session.Variants)
		if err == nil {
			session.items = catalog.Merge(session.items, item)
			session.failed = catalog.RemoveFailure(session.failed, stub.ID, stub.Kind)
			outcome.succeeded++
			logger.Debug("item resolved", logging.String("credits", item.Credits))
			continue
		}

		outcome.lastErr = err
		session.failed = catalog.UpsertFailure(session.failed,
			catalog.NewFailedItem(stub, services.FailureMessage(err), o.now()))
		if services.IsCancelled(err) {
			logger.Info("item interrupted by stop request")
			o.queueStopped(session, stubs[i+1:])
			outcome.stopped = true
			break
		}
		outcome.failed++
		logging.WarnWithContext(logger, "item resolution failed; queued for retry", "item_failed",
			logging.Error(err),
			logging.Impact("item is missing from the collection until a retry succeeds"),
		)
	}

	if !outcome.stopped {
		o.observer.Progress(Progress{Phase: phase, Done: total, Total: total})
	}
	return outcome
}

func (o *Orchestrator) queueStopped(session *Session, remaining []catalog.Stub) {
	at := o.now()
	for _, stub := range remaining {
		session.failed = catalog.UpsertFailure(session.failed,
			catalog.NewFailedItem(stub, services.StoppedBeforeMessage, at))
	}
	if len(remaining) > 0 {
		o.logger.Info("queued unprocessed items after stop", logging.Int("count", len(remaining)))
	}
}

package scan

import (
	"context"
	"time"

	"prodscan/internal/catalog"
	"prodscan/internal/discogs"
	"prodscan/internal/logging"
	"prodscan/internal/services"
)

const firstPageDelay = 100 * time.Millisecond

// discover pages through the artist's listing and returns stubs above the
// watermark. A page error or malformed page ends paging; only a stop request
// reports stopped.
func (o *Orchestrator) discover(ctx context.Context, session *Session, watermark int64) ([]catalog.Stub, bool) {
	logger := logging.WithContext(services.WithStage(ctx, "discover"), o.logger)
	var stubs []catalog.Stub

	for page := 1; ; page++ {
		wait := firstPageDelay
		if page > 1 {
			wait = discogs.SubFetchDelay(session.Delay)
		}
		if err := o.sleep(ctx, wait); err != nil {
			return stubs, true
		}
		o.observer.Progress(Progress{Phase: PhaseFetching, Done: page - 1, Message: "listing page"})

		resp, err := o.lister.ArtistReleases(ctx, session.ArtistID, page)
		if err != nil {
			if services.IsCancelled(err) || ctx.Err() != nil {
				return stubs, true
			}
			logging.WarnWithContext(logger, "listing page failed; treating as last page", "listing_failed",
				logging.Int("page", page),
				logging.Error(err),
				logging.Impact("items on later pages are picked up next sync"),
			)
			return stubs, false
		}
		if ctx.Err() != nil {
			return stubs, true
		}
		if resp == nil || resp.Pagination == nil || resp.Releases == nil {
			logging.WarnWithContext(logger, "unexpected listing payload; stopping pagination", "listing_malformed",
				logging.Int("page", page),
			)
			return stubs, false
		}

		for _, row := range *resp.Releases {
			if row.ID <= watermark {
				continue
			}
			if o.onlyMainRole && !mainRole(row) {
				continue
			}
			stubs = append(stubs, catalog.StubFromListing(row))
		}
		logger.Debug("listing page fetched",
			logging.Int("page", page),
			logging.Int("pages", resp.Pagination.Pages),
			logging.Int("candidates", len(stubs)),
		)
		if page >= resp.Pagination.Pages {
			return stubs, false
		}
	}
}

func mainRole(row discogs.ArtistRelease) bool {
	return row.Role == "Main" || row.IsMaster() || row.Role == ""
}

package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"prodscan/internal/discogs"
	"prodscan/internal/logging"
	"prodscan/internal/scan"
)

// cliObserver logs scan progress and prints a banner while Discogs throttles.
type cliObserver struct {
	logger   *slog.Logger
	out      io.Writer
	colorize bool
}

func newCLIObserver(logger *slog.Logger, out io.Writer) *cliObserver {
	return &cliObserver{
		logger:   logging.NewComponentLogger(logger, "cli"),
		out:      out,
		colorize: shouldColorize(out),
	}
}

func (o *cliObserver) Progress(p scan.Progress) {
	if p.Total == 0 {
		o.logger.Debug("scan progress", logging.String("phase", string(p.Phase)), logging.String("detail", p.Message))
		return
	}
	o.logger.Info(fmt.Sprintf("%s %d/%d", p.Phase, p.Done, p.Total), logging.String("detail", p.Message))
}

func (o *cliObserver) Throttled(ev discogs.ThrottleEvent) {
	msg := fmt.Sprintf("waiting %s before retrying (throttle #%d)", ev.Wait.Round(100*time.Millisecond), ev.Count)
	fmt.Fprintln(o.out, renderStatusLine("Discogs rate limit", statusWarn, msg, o.colorize))
}

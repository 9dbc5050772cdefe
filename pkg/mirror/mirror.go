// Package mirror drives one full sync cycle: extract the profile's
// newest posts, cut the list at the stored watermark, transfer each new
// post, then enforce retention.
package mirror

import (
	"context"

	"igmirror/pkg/logger"
	"igmirror/pkg/models"
)

// Options bound a sync cycle.
type Options struct {
	// Username is the profile being mirrored.
	Username string
	// PageLimit caps how many candidates one cycle may accept.
	PageLimit int
	// KeepCount is the retention window enforced after transfer.
	KeepCount int
}

// Summary reports what one cycle did.
type Summary struct {
	Found         int
	Added         int
	Updated       int
	Skipped       int
	Deleted       int
	OrphanedBlobs int
	Outcomes      []models.TransferOutcome
}

// Mirror coordinates the extractor, transfer pipeline and retention
// enforcer for one profile.
type Mirror struct {
	extractor Extractor
	transfer  *Transferrer
	retention *Enforcer
	records   RecordStore
	opts      Options
	logger    logger.Logger
}

// New assembles a Mirror from its collaborators.
func New(extractor Extractor, transfer *Transferrer, retention *Enforcer, records RecordStore, opts Options, log logger.Logger) *Mirror {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Mirror{
		extractor: extractor,
		transfer:  transfer,
		retention: retention,
		records:   records,
		opts:      opts,
		logger:    log,
	}
}

// Run executes one sync cycle. Extraction failure empties the transfer
// phase but never aborts the cycle: retention still runs so the dataset
// converges even when upstream is down.
func (m *Mirror) Run(ctx context.Context) (Summary, error) {
	var summary Summary
	log := m.logger.WithField("username", m.opts.Username)

	watermark, haveWatermark, err := m.records.LatestPostedAt(ctx)
	if err != nil {
		// A failed watermark read degrades to a full page scan, which the
		// idempotent transfer absorbs as Updated outcomes.
		log.WithError(err).Warn("watermark lookup failed, proceeding without one")
		haveWatermark = false
	}

	posts, err := m.extractor.Extract(ctx, m.opts.Username)
	if err != nil {
		log.WithError(err).Error("extraction failed")
		posts = nil
	}
	summary.Found = len(posts)

	fresh := CutAtWatermark(posts, watermark, haveWatermark, m.opts.PageLimit)
	log.InfoWithFields("sync cycle starting", map[string]interface{}{
		"found": summary.Found,
		"new":   len(fresh),
	})

	for _, post := range fresh {
		if ctx.Err() != nil {
			log.Warn("sync cycle cancelled")
			break
		}

		outcome := m.transfer.Transfer(ctx, post)
		summary.Outcomes = append(summary.Outcomes, outcome)
		switch outcome.Outcome {
		case models.OutcomeAdded:
			summary.Added++
		case models.OutcomeUpdated:
			summary.Updated++
		case models.OutcomeSkipped:
			summary.Skipped++
		}
	}

	deleted, orphaned, err := m.retention.Enforce(ctx, m.opts.KeepCount)
	if err != nil {
		log.WithError(err).Error("retention enforcement failed")
	}
	summary.Deleted = deleted
	summary.OrphanedBlobs = orphaned

	log.InfoWithFields("sync cycle complete", map[string]interface{}{
		"found":    summary.Found,
		"added":    summary.Added,
		"updated":  summary.Updated,
		"skipped":  summary.Skipped,
		"deleted":  summary.Deleted,
		"orphaned": summary.OrphanedBlobs,
	})

	return summary, nil
}

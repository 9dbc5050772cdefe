package mirror

import (
	"context"

	"igmirror/pkg/logger"
)

// Enforcer trims the mirrored dataset down to the newest K records after
// every sync cycle.
type Enforcer struct {
	records RecordStore
	blobs   BlobStore
	logger  logger.Logger
}

// NewEnforcer creates a retention enforcer.
func NewEnforcer(records RecordStore, blobs BlobStore, log logger.Logger) *Enforcer {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Enforcer{
		records: records,
		blobs:   blobs,
		logger:  log,
	}
}

// Enforce deletes every record beyond the newest keep by posted_at
// ordering, together with its blob. The record row goes first: an
// orphaned blob after a failed blob delete costs storage but not
// correctness, while a dangling blob_url would. Orphans are logged and
// counted, never fatal.
func (e *Enforcer) Enforce(ctx context.Context, keep int) (deleted, orphaned int, err error) {
	records, err := e.records.ListNewestFirst(ctx)
	if err != nil {
		return 0, 0, err
	}

	if len(records) <= keep {
		e.logger.DebugWithFields("record count within retention window", map[string]interface{}{
			"count": len(records),
			"keep":  keep,
		})
		return 0, 0, nil
	}

	for _, rec := range records[keep:] {
		if err := e.records.Delete(ctx, rec.Shortcode); err != nil {
			e.logger.WithError(err).WithField("shortcode", rec.Shortcode).
				Error("failed to delete record")
			continue
		}
		deleted++

		path, ok := e.blobs.PathFromURL(rec.BlobURL)
		if !ok {
			e.logger.WarnWithFields("could not resolve blob path, blob orphaned", map[string]interface{}{
				"shortcode": rec.Shortcode,
				"blob_url":  rec.BlobURL,
			})
			orphaned++
			continue
		}

		if err := e.blobs.Remove(ctx, path); err != nil {
			e.logger.WithError(err).WithFields(map[string]interface{}{
				"shortcode": rec.Shortcode,
				"path":      path,
			}).Warn("failed to delete blob, blob orphaned")
			orphaned++
			continue
		}

		e.logger.DebugWithFields("evicted record", map[string]interface{}{
			"shortcode": rec.Shortcode,
		})
	}

	e.logger.InfoWithFields("retention enforced", map[string]interface{}{
		"kept":     keep,
		"deleted":  deleted,
		"orphaned": orphaned,
	})

	return deleted, orphaned, nil
}

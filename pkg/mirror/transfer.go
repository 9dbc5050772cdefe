package mirror

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"igmirror/pkg/logger"
	"igmirror/pkg/models"
	"igmirror/pkg/pacing"
	"igmirror/pkg/spool"
	"igmirror/pkg/store"
)

// Transferrer materializes one post into durable storage: fetch media,
// stage locally, upload to the blob store, upsert the record. Every
// failure is isolated to the single post.
type Transferrer struct {
	fetcher MediaFetcher
	blobs   BlobStore
	records RecordStore
	spool   *spool.Spool
	pacer   pacing.Policy
	logger  logger.Logger

	username string

	// now is swappable in tests.
	now func() time.Time
}

// NewTransferrer wires the transfer pipeline for one profile.
func NewTransferrer(username string, fetcher MediaFetcher, blobs BlobStore, records RecordStore, sp *spool.Spool, pacer pacing.Policy, log logger.Logger) *Transferrer {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Transferrer{
		fetcher:  fetcher,
		blobs:    blobs,
		records:  records,
		spool:    sp,
		pacer:    pacer,
		logger:   log,
		username: username,
		now:      time.Now,
	}
}

// Transfer runs the pipeline for a single post. It is idempotent: running
// it twice on the same post converges to one record, the second run
// reporting Updated.
func (t *Transferrer) Transfer(ctx context.Context, post models.Post) models.TransferOutcome {
	log := t.logger.WithFields(map[string]interface{}{
		"username":  t.username,
		"shortcode": post.Shortcode,
	})

	if post.MediaURL == "" {
		log.Warn("post has no media URL, skipping")
		return skipped(post, models.SkipDownloadFailed)
	}

	t.pacer.BeforeCall(pacing.CallDownload)
	data, err := t.fetcher.Fetch(ctx, post.MediaURL)
	if err != nil {
		t.pacer.OnFailure(pacing.CallDownload)
		log.WithError(err).Error("media download failed")
		return skipped(post, models.SkipDownloadFailed)
	}
	t.pacer.OnSuccess()

	// The staged copy is transient and must go away on every exit path.
	if _, err := t.spool.Write(post.Shortcode, post.Extension(), data); err != nil {
		log.WithError(err).Error("failed to stage media")
		return skipped(post, models.SkipDownloadFailed)
	}
	defer func() {
		if err := t.spool.Remove(post.Shortcode, post.Extension()); err != nil {
			log.WithError(err).Warn("failed to remove staged media")
		}
	}()

	staged, err := t.spool.Read(post.Shortcode, post.Extension())
	if err != nil {
		log.WithError(err).Error("failed to read staged media")
		return skipped(post, models.SkipDownloadFailed)
	}

	// The upload must complete before any database write so a persisted
	// blob_url never references a blob that does not exist.
	blobPath := fmt.Sprintf("%s/%s%s", t.username, post.Shortcode, post.Extension())

	t.pacer.BeforeCall(pacing.CallUpload)
	blobURL, err := t.blobs.Upload(ctx, blobPath, staged, post.ContentType())
	if err != nil {
		t.pacer.OnFailure(pacing.CallUpload)
		log.WithError(err).WithField("path", blobPath).Error("blob upload failed")
		return skipped(post, models.SkipUploadFailed)
	}
	t.pacer.OnSuccess()

	rec := models.MirroredRecord{
		Shortcode: post.Shortcode,
		PostURL:   post.PostURL,
		BlobURL:   blobURL,
		Caption:   post.Caption,
		Likes:     post.Likes,
		IsVideo:   post.IsVideo,
		PostedAt:  post.PostedAt,
		ScrapedAt: t.now().UTC(),
	}

	err = t.records.Insert(ctx, rec)
	if err == nil {
		log.Info("post mirrored")
		return models.TransferOutcome{Shortcode: post.Shortcode, Outcome: models.OutcomeAdded}
	}

	if stderrors.Is(err, store.ErrDuplicate) {
		if err := t.records.Update(ctx, rec); err != nil {
			log.WithError(err).Error("record update failed")
			return skipped(post, models.SkipSaveFailed)
		}
		log.Info("post refreshed")
		return models.TransferOutcome{Shortcode: post.Shortcode, Outcome: models.OutcomeUpdated}
	}

	log.WithError(err).Error("record insert failed")
	return skipped(post, models.SkipSaveFailed)
}

func skipped(post models.Post, reason string) models.TransferOutcome {
	return models.TransferOutcome{
		Shortcode:  post.Shortcode,
		Outcome:    models.OutcomeSkipped,
		SkipReason: reason,
	}
}

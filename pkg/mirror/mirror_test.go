package mirror

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igmirror/pkg/models"
	"igmirror/pkg/spool"
)

func candidates(n int, newest time.Time) []models.Post {
	posts := make([]models.Post, 0, n)
	for i := 0; i < n; i++ {
		shortcode := fmt.Sprintf("cand%02d", i)
		posts = append(posts, models.Post{
			Shortcode: shortcode,
			PostURL:   "https://www.instagram.com/p/" + shortcode + "/",
			MediaURL:  "https://cdn.test/" + shortcode + ".jpg",
			PostedAt:  newest.Add(-time.Duration(i) * time.Hour),
		})
	}
	return posts
}

func newTestMirror(t *testing.T, extractor Extractor, records *fakeRecords, blobs *fakeBlobs, keep int) *Mirror {
	t.Helper()
	sp, err := spool.New(t.TempDir())
	require.NoError(t, err)

	pacer := &recordingPacer{}
	transfer := NewTransferrer("testuser", &fakeFetcher{}, blobs, records, sp, pacer, nil)
	enforcer := NewEnforcer(records, blobs, nil)

	return New(extractor, transfer, enforcer, records, Options{
		Username:  "testuser",
		PageLimit: 12,
		KeepCount: keep,
	}, nil)
}

func TestRunFreshStoreMirrorsUpToPageLimit(t *testing.T) {
	records := newFakeRecords()
	blobs := newFakeBlobs()
	newest := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	extractor := &fakeExtractor{posts: candidates(15, newest)}

	summary, err := newTestMirror(t, extractor, records, blobs, 12).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 15, summary.Found)
	assert.Equal(t, 12, summary.Added)
	assert.Zero(t, summary.Updated)
	assert.Zero(t, summary.Skipped)
	assert.Zero(t, summary.Deleted)
	assert.Equal(t, 12, records.count())
}

func TestRunStopsAtWatermark(t *testing.T) {
	records := newFakeRecords()
	blobs := newFakeBlobs()
	newest := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	posts := candidates(8, newest)

	// The fourth-newest candidate is already mirrored; everything at or
	// below it must be left untouched.
	require.NoError(t, records.Insert(context.Background(), models.MirroredRecord{
		Shortcode: posts[3].Shortcode,
		BlobURL:   fakeBlobBase + "testuser/" + posts[3].Shortcode + ".jpg",
		PostedAt:  posts[3].PostedAt,
	}))

	extractor := &fakeExtractor{posts: posts}
	summary, err := newTestMirror(t, extractor, records, blobs, 12).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, summary.Added)
	assert.Zero(t, summary.Updated)
	assert.Equal(t, 4, records.count())
}

func TestRunNoNewPostsWhenTimestampsMatch(t *testing.T) {
	records := newFakeRecords()
	blobs := newFakeBlobs()
	newest := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	posts := candidates(5, newest)

	require.NoError(t, records.Insert(context.Background(), models.MirroredRecord{
		Shortcode: posts[0].Shortcode,
		PostedAt:  posts[0].PostedAt,
	}))

	extractor := &fakeExtractor{posts: posts}
	summary, err := newTestMirror(t, extractor, records, blobs, 12).Run(context.Background())

	require.NoError(t, err)
	assert.Zero(t, summary.Added)
	assert.Zero(t, summary.Updated)
	assert.Zero(t, summary.Skipped)
}

func TestRunExtractionFailureStillEnforcesRetention(t *testing.T) {
	records := newFakeRecords()
	blobs := newFakeBlobs()
	seedRecords(t, records, blobs, 15)

	extractor := &fakeExtractor{err: stderrors.New("all strategies failed")}
	summary, err := newTestMirror(t, extractor, records, blobs, 12).Run(context.Background())

	require.NoError(t, err, "a failed extraction is zero new posts, not a crash")
	assert.Zero(t, summary.Found)
	assert.Equal(t, 3, summary.Deleted)
	assert.Equal(t, 12, records.count())
}

func TestRunSkippedPostDoesNotAbortCycle(t *testing.T) {
	records := newFakeRecords()
	blobs := newFakeBlobs()
	newest := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	posts := candidates(3, newest)
	posts[1].MediaURL = ""

	extractor := &fakeExtractor{posts: posts}
	summary, err := newTestMirror(t, extractor, records, blobs, 12).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, summary.Added)
	assert.Equal(t, 1, summary.Skipped)
	require.Len(t, summary.Outcomes, 3)
	assert.Equal(t, models.SkipDownloadFailed, summary.Outcomes[1].SkipReason)
}

func TestRunWatermarkFailureFallsBackToFullScan(t *testing.T) {
	records := newFakeRecords()
	blobs := newFakeBlobs()
	newest := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	posts := candidates(3, newest)

	require.NoError(t, records.Insert(context.Background(), models.MirroredRecord{
		Shortcode: posts[0].Shortcode,
		PostedAt:  posts[0].PostedAt,
	}))
	records.latestErr = stderrors.New("connection refused")

	extractor := &fakeExtractor{posts: posts}
	summary, err := newTestMirror(t, extractor, records, blobs, 12).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, summary.Added)
	assert.Equal(t, 1, summary.Updated, "already-mirrored post degrades to an update, not a duplicate")
}

func TestRunRetentionAfterTransfer(t *testing.T) {
	records := newFakeRecords()
	blobs := newFakeBlobs()
	newest := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	extractor := &fakeExtractor{posts: candidates(10, newest)}

	summary, err := newTestMirror(t, extractor, records, blobs, 6).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 10, summary.Added)
	assert.Equal(t, 4, summary.Deleted)
	assert.Equal(t, 6, records.count())
}

func TestRunCancelledContextStopsTransfers(t *testing.T) {
	records := newFakeRecords()
	blobs := newFakeBlobs()
	extractor := &fakeExtractor{posts: candidates(5, time.Now().UTC())}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := newTestMirror(t, extractor, records, blobs, 12).Run(ctx)

	require.NoError(t, err)
	assert.Zero(t, summary.Added)
}

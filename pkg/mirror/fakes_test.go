package mirror

import (
	"context"
	stderrors "errors"
	"sort"
	"strings"
	"sync"
	"time"

	"igmirror/pkg/models"
	"igmirror/pkg/pacing"
	"igmirror/pkg/store"
)

// fakeExtractor returns a canned candidate list.
type fakeExtractor struct {
	posts []models.Post
	err   error
}

func (f *fakeExtractor) Extract(ctx context.Context, username string) ([]models.Post, error) {
	return f.posts, f.err
}

// fakeRecords is an in-memory RecordStore with error injection.
type fakeRecords struct {
	mu   sync.Mutex
	rows map[string]models.MirroredRecord

	insertErr error
	updateErr error
	listErr   error
	deleteErr error
	latestErr error
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{rows: make(map[string]models.MirroredRecord)}
}

func (f *fakeRecords) Insert(ctx context.Context, rec models.MirroredRecord) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.rows[rec.Shortcode]; exists {
		return store.ErrDuplicate
	}
	f.rows[rec.Shortcode] = rec
	return nil
}

func (f *fakeRecords) Update(ctx context.Context, rec models.MirroredRecord) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, exists := f.rows[rec.Shortcode]
	if !exists {
		return stderrors.New("no such record")
	}
	existing.Likes = rec.Likes
	existing.Caption = rec.Caption
	existing.BlobURL = rec.BlobURL
	existing.ScrapedAt = rec.ScrapedAt
	f.rows[rec.Shortcode] = existing
	return nil
}

func (f *fakeRecords) ListNewestFirst(ctx context.Context) ([]models.MirroredRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	records := make([]models.MirroredRecord, 0, len(f.rows))
	for _, rec := range f.rows {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].PostedAt.After(records[j].PostedAt)
	})
	return records, nil
}

func (f *fakeRecords) Delete(ctx context.Context, shortcode string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, shortcode)
	return nil
}

func (f *fakeRecords) LatestPostedAt(ctx context.Context) (time.Time, bool, error) {
	if f.latestErr != nil {
		return time.Time{}, false, f.latestErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest time.Time
	for _, rec := range f.rows {
		if rec.PostedAt.After(latest) {
			latest = rec.PostedAt
		}
	}
	if latest.IsZero() {
		return time.Time{}, false, nil
	}
	return latest, true, nil
}

func (f *fakeRecords) get(shortcode string) (models.MirroredRecord, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.rows[shortcode]
	return rec, ok
}

func (f *fakeRecords) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

const fakeBlobBase = "https://blob.test/public/bucket/"

// fakeBlobs is an in-memory BlobStore with error injection.
type fakeBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	removed []string

	uploadErr error
	removeErr error
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{objects: make(map[string][]byte)}
}

func (f *fakeBlobs) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[path] = append([]byte(nil), data...)
	return fakeBlobBase + path, nil
}

func (f *fakeBlobs) Remove(ctx context.Context, path string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, path)
	f.removed = append(f.removed, path)
	return nil
}

func (f *fakeBlobs) PathFromURL(publicURL string) (string, bool) {
	if !strings.HasPrefix(publicURL, fakeBlobBase) {
		return "", false
	}
	return strings.TrimPrefix(publicURL, fakeBlobBase), true
}

func (f *fakeBlobs) stored(path string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[path]
	return data, ok
}

// fakeFetcher serves media bytes by URL.
type fakeFetcher struct {
	data map[string][]byte
	err  error
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	if data, ok := f.data[url]; ok {
		return data, nil
	}
	return []byte("media:" + url), nil
}

// recordingPacer records hook invocations without sleeping.
type recordingPacer struct {
	mu       sync.Mutex
	before   []pacing.CallKind
	failures []pacing.CallKind
	success  int
}

func (p *recordingPacer) BeforeCall(kind pacing.CallKind) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.before = append(p.before, kind)
}

func (p *recordingPacer) OnFailure(kind pacing.CallKind) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures = append(p.failures, kind)
}

func (p *recordingPacer) OnSuccess() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.success++
}

package mirror

import (
	"context"
	"time"

	"igmirror/pkg/models"
)

// Extractor produces the ordered candidate list for a profile.
type Extractor interface {
	Extract(ctx context.Context, username string) ([]models.Post, error)
}

// RecordStore is the row-oriented record collaborator.
type RecordStore interface {
	Insert(ctx context.Context, rec models.MirroredRecord) error
	Update(ctx context.Context, rec models.MirroredRecord) error
	ListNewestFirst(ctx context.Context) ([]models.MirroredRecord, error)
	Delete(ctx context.Context, shortcode string) error
	LatestPostedAt(ctx context.Context) (time.Time, bool, error)
}

// BlobStore is the path-addressed blob collaborator.
type BlobStore interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)
	Remove(ctx context.Context, path string) error
	PathFromURL(publicURL string) (string, bool)
}

// MediaFetcher downloads media bytes from upstream CDN URLs.
type MediaFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

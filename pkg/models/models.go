package models

import "time"

// MaxCaptionLength bounds stored captions.
const MaxCaptionLength = 500

// Post is a normalized media item extracted from the upstream profile feed.
type Post struct {
	Shortcode string
	PostURL   string
	MediaURL  string
	Caption   string
	Likes     int
	IsVideo   bool
	PostedAt  time.Time
}

// Extension returns the file extension used for the mirrored media.
func (p Post) Extension() string {
	if p.IsVideo {
		return ".mp4"
	}
	return ".jpg"
}

// ContentType returns the MIME type used when uploading the media.
func (p Post) ContentType() string {
	if p.IsVideo {
		return "video/mp4"
	}
	return "image/jpeg"
}

// TruncateCaption bounds a caption to MaxCaptionLength runes.
func TruncateCaption(caption string) string {
	runes := []rune(caption)
	if len(runes) <= MaxCaptionLength {
		return caption
	}
	return string(runes[:MaxCaptionLength])
}

// MirroredRecord is the persisted projection of a Post.
type MirroredRecord struct {
	Shortcode string
	PostURL   string
	BlobURL   string
	Caption   string
	Likes     int
	IsVideo   bool
	PostedAt  time.Time
	ScrapedAt time.Time
}

// Outcome classifies the result of transferring a single post.
type Outcome string

const (
	OutcomeAdded   Outcome = "added"
	OutcomeUpdated Outcome = "updated"
	OutcomeSkipped Outcome = "skipped"
)

// Skip reasons reported alongside OutcomeSkipped.
const (
	SkipDownloadFailed = "download-failed"
	SkipUploadFailed   = "upload-failed"
	SkipSaveFailed     = "save-failed"
)

// TransferOutcome is the per-post result of the transfer pipeline.
type TransferOutcome struct {
	Shortcode  string
	Outcome    Outcome
	SkipReason string
}

package mirror

import (
	"time"

	"igmirror/pkg/models"
)

// CutAtWatermark bounds a newest-first candidate list to genuinely new
// content. Iteration stops at the first candidate whose posted_at is at
// or before the watermark, and at limit accepted candidates. When
// haveWatermark is false (empty record set) no early stop triggers.
//
// Candidates are assumed to arrive in non-increasing posted_at order. If
// upstream violates that, the early stop may exclude genuinely new older
// posts; this is an accepted limitation, not corrected by re-sorting,
// because a sort would change which posts the upstream page ceiling
// already truncated away.
func CutAtWatermark(posts []models.Post, watermark time.Time, haveWatermark bool, limit int) []models.Post {
	var accepted []models.Post

	for _, post := range posts {
		if haveWatermark && !post.PostedAt.After(watermark) {
			break
		}
		if limit > 0 && len(accepted) >= limit {
			break
		}
		accepted = append(accepted, post)
	}

	return accepted
}

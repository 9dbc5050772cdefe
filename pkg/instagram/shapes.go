package instagram

import (
	"time"

	"igmirror/pkg/errors"
	"igmirror/pkg/logger"
	"igmirror/pkg/models"
)

// The upstream payload has gone through several historical layouts. The
// types below cover every shape we have observed; resolvePosts walks the
// known roots in priority order and accepts the first that yields a
// non-empty item list.

type likeCount struct {
	Count int `json:"count"`
}

type captionEdges struct {
	Edges []struct {
		Node struct {
			Text string `json:"text"`
		} `json:"node"`
	} `json:"edges"`
}

// graphNode is a timeline media node in the GraphQL layout
type graphNode struct {
	Shortcode            string       `json:"shortcode"`
	DisplayURL           string       `json:"display_url"`
	VideoURL             string       `json:"video_url"`
	IsVideo              bool         `json:"is_video"`
	TakenAtTimestamp     int64        `json:"taken_at_timestamp"`
	EdgeMediaPreviewLike likeCount    `json:"edge_media_preview_like"`
	EdgeLikedBy          likeCount    `json:"edge_liked_by"`
	EdgeMediaToCaption   captionEdges `json:"edge_media_to_caption"`
}

type timelineMedia struct {
	Count int `json:"count"`
	Edges []struct {
		Node graphNode `json:"node"`
	} `json:"edges"`
}

type graphUser struct {
	ID                       string        `json:"id"`
	EdgeOwnerToTimelineMedia timelineMedia `json:"edge_owner_to_timeline_media"`
}

// apiItem is a media item in the mobile API layout
type apiItem struct {
	Code      string `json:"code"`
	TakenAt   int64  `json:"taken_at"`
	LikeCount int    `json:"like_count"`
	MediaType int    `json:"media_type"`
	Caption   *struct {
		Text string `json:"text"`
	} `json:"caption"`
	VideoVersions []struct {
		URL string `json:"url"`
	} `json:"video_versions"`
	ImageVersions2 struct {
		Candidates []struct {
			URL string `json:"url"`
		} `json:"candidates"`
	} `json:"image_versions2"`
}

// envelope is the union of every known top-level payload layout
type envelope struct {
	RequiresToLogin bool   `json:"requires_to_login"`
	Status          string `json:"status"`

	Data struct {
		User *graphUser `json:"user"`
	} `json:"data"`

	Graphql struct {
		User *graphUser `json:"user"`
	} `json:"graphql"`

	EntryData struct {
		ProfilePage []struct {
			Graphql struct {
				User *graphUser `json:"user"`
			} `json:"graphql"`
		} `json:"ProfilePage"`
	} `json:"entry_data"`

	Items []apiItem `json:"items"`
}

// userID returns the first user id found in any known root
func (e *envelope) userID() string {
	for _, u := range e.userRoots() {
		if u != nil && u.ID != "" {
			return u.ID
		}
	}
	return ""
}

func (e *envelope) userRoots() []*graphUser {
	roots := []*graphUser{e.Data.User, e.Graphql.User}
	for i := range e.EntryData.ProfilePage {
		roots = append(roots, e.EntryData.ProfilePage[i].Graphql.User)
	}
	return roots
}

// resolvePosts locates post data among the known layouts, normalizes each
// node and truncates to MaxCandidates. It returns a schema_mismatch error
// when no root yields any post.
func resolvePosts(env *envelope, username string, log logger.Logger) ([]models.Post, error) {
	for _, user := range env.userRoots() {
		if user == nil {
			continue
		}
		if posts := normalizeGraphNodes(user.EdgeOwnerToTimelineMedia, username, log); len(posts) > 0 {
			return posts, nil
		}
	}

	if posts := normalizeAPIItems(env.Items, username, log); len(posts) > 0 {
		return posts, nil
	}

	return nil, errors.New(errors.ErrorTypeSchemaMismatch, "no known payload shape yielded posts")
}

func normalizeGraphNodes(media timelineMedia, username string, log logger.Logger) []models.Post {
	var posts []models.Post
	for _, edge := range media.Edges {
		if len(posts) >= MaxCandidates {
			break
		}

		node := edge.Node
		if node.Shortcode == "" {
			log.WarnWithFields("skipping node without shortcode", map[string]interface{}{
				"username": username,
			})
			continue
		}

		mediaURL := node.DisplayURL
		if node.IsVideo && node.VideoURL != "" {
			mediaURL = node.VideoURL
		}
		if mediaURL == "" {
			log.WarnWithFields("dropping post without media URL", map[string]interface{}{
				"username":  username,
				"shortcode": node.Shortcode,
			})
			continue
		}

		likes := node.EdgeMediaPreviewLike.Count
		if likes == 0 {
			likes = node.EdgeLikedBy.Count
		}
		if likes < 0 {
			likes = 0
		}

		var caption string
		if len(node.EdgeMediaToCaption.Edges) > 0 {
			caption = node.EdgeMediaToCaption.Edges[0].Node.Text
		}

		posts = append(posts, models.Post{
			Shortcode: node.Shortcode,
			PostURL:   GetPostURL(node.Shortcode),
			MediaURL:  mediaURL,
			Caption:   models.TruncateCaption(caption),
			Likes:     likes,
			IsVideo:   node.IsVideo,
			PostedAt:  time.Unix(node.TakenAtTimestamp, 0).UTC(),
		})
	}
	return posts
}

func normalizeAPIItems(items []apiItem, username string, log logger.Logger) []models.Post {
	var posts []models.Post
	for _, item := range items {
		if len(posts) >= MaxCandidates {
			break
		}

		if item.Code == "" {
			log.WarnWithFields("skipping item without shortcode", map[string]interface{}{
				"username": username,
			})
			continue
		}

		isVideo := item.MediaType == 2
		var mediaURL string
		if isVideo && len(item.VideoVersions) > 0 {
			mediaURL = item.VideoVersions[0].URL
		} else if len(item.ImageVersions2.Candidates) > 0 {
			mediaURL = item.ImageVersions2.Candidates[0].URL
		}
		if mediaURL == "" {
			log.WarnWithFields("dropping item without media URL", map[string]interface{}{
				"username":  username,
				"shortcode": item.Code,
			})
			continue
		}

		likes := item.LikeCount
		if likes < 0 {
			likes = 0
		}

		var caption string
		if item.Caption != nil {
			caption = item.Caption.Text
		}

		posts = append(posts, models.Post{
			Shortcode: item.Code,
			PostURL:   GetPostURL(item.Code),
			MediaURL:  mediaURL,
			Caption:   models.TruncateCaption(caption),
			Likes:     likes,
			IsVideo:   isVideo,
			PostedAt:  time.Unix(item.TakenAt, 0).UTC(),
		})
	}
	return posts
}

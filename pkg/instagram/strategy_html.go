package instagram

import (
	"context"
	"encoding/json"
	"strings"

	"igmirror/pkg/errors"
	"igmirror/pkg/models"
)

// ProfileHTMLStrategy fetches the public profile page and digs the post
// data out of the JSON blobs embedded in its script tags. Slowest and
// most fragile, so it runs last.
type ProfileHTMLStrategy struct {
	client *Client
}

// NewProfileHTMLStrategy creates the embedded-JSON HTML strategy
func NewProfileHTMLStrategy(client *Client) *ProfileHTMLStrategy {
	return &ProfileHTMLStrategy{client: client}
}

// Name implements Strategy
func (s *ProfileHTMLStrategy) Name() string {
	return "profile_html"
}

// Attempt implements Strategy
func (s *ProfileHTMLStrategy) Attempt(ctx context.Context, username string) ([]models.Post, error) {
	body, err := s.client.GetBody(ctx, GetProfilePageURL(username))
	if err != nil {
		return nil, err
	}

	raw, ok := extractEmbeddedJSON(string(body))
	if !ok {
		return nil, errors.New(errors.ErrorTypeSchemaMismatch, "no embedded JSON found in profile page")
	}

	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, errors.Newf(errors.ErrorTypeSchemaMismatch, "embedded JSON did not parse: %v", err)
	}

	return resolvePosts(&env, username, s.client.logger)
}

// Markers that have carried the profile payload over the years, newest
// last observed first.
var embeddedJSONMarkers = []string{
	"window._sharedData = ",
	"window.__additionalDataLoaded('feed',",
	"window.__additionalDataLoaded(\"feed\",",
}

// extractEmbeddedJSON locates the first balanced JSON object after any
// known marker.
func extractEmbeddedJSON(html string) (string, bool) {
	for _, marker := range embeddedJSONMarkers {
		idx := strings.Index(html, marker)
		if idx < 0 {
			continue
		}
		if raw, ok := balancedJSONObject(html[idx+len(marker):]); ok {
			return raw, true
		}
	}
	return "", false
}

// balancedJSONObject returns the prefix of s that forms one complete JSON
// object, tracking strings and escapes so braces inside values don't
// terminate the scan early.
func balancedJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		ch := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}

package instagram

import (
	"context"

	"igmirror/pkg/errors"
	"igmirror/pkg/models"
)

// WebProfileStrategy extracts posts via the web_profile_info JSON API.
type WebProfileStrategy struct {
	client *Client
}

// NewWebProfileStrategy creates the JSON API strategy
func NewWebProfileStrategy(client *Client) *WebProfileStrategy {
	return &WebProfileStrategy{client: client}
}

// Name implements Strategy
func (s *WebProfileStrategy) Name() string {
	return "web_profile_info"
}

// Attempt implements Strategy
func (s *WebProfileStrategy) Attempt(ctx context.Context, username string) ([]models.Post, error) {
	var env envelope
	if err := s.client.GetJSON(ctx, GetProfileInfoURL(username), &env); err != nil {
		return nil, err
	}

	if env.RequiresToLogin {
		return nil, errors.New(errors.ErrorTypeAuth, "profile requires authentication")
	}

	return resolvePosts(&env, username, s.client.logger)
}

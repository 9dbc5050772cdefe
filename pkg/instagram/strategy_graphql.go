package instagram

import (
	"context"

	"igmirror/pkg/errors"
	"igmirror/pkg/models"
)

// GraphQLStrategy extracts posts via the GraphQL timeline query. It needs
// the numeric user id first, so it performs two calls: a profile lookup
// and the media query. Either step can fail independently.
type GraphQLStrategy struct {
	client *Client
}

// NewGraphQLStrategy creates the GraphQL query strategy
func NewGraphQLStrategy(client *Client) *GraphQLStrategy {
	return &GraphQLStrategy{client: client}
}

// Name implements Strategy
func (s *GraphQLStrategy) Name() string {
	return "graphql_query"
}

// Attempt implements Strategy
func (s *GraphQLStrategy) Attempt(ctx context.Context, username string) ([]models.Post, error) {
	userID, err := s.lookupUserID(ctx, username)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := s.client.GetJSON(ctx, GetMediaURL(userID, MaxCandidates), &env); err != nil {
		return nil, err
	}

	return resolvePosts(&env, username, s.client.logger)
}

// lookupUserID resolves the numeric user id for a username
func (s *GraphQLStrategy) lookupUserID(ctx context.Context, username string) (string, error) {
	var env envelope
	if err := s.client.GetJSON(ctx, GetProfileInfoURL(username), &env); err != nil {
		return "", err
	}

	if env.RequiresToLogin {
		return "", errors.New(errors.ErrorTypeAuth, "profile requires authentication")
	}

	userID := env.userID()
	if userID == "" {
		return "", errors.Newf(errors.ErrorTypeFieldMissing, "no user id in profile payload for %s", username)
	}

	return userID, nil
}

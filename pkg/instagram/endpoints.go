package instagram

import (
	"fmt"
	"net/url"
)

const (
	// BaseURL is the base URL for Instagram
	BaseURL = "https://www.instagram.com"

	// ProfileInfoEndpoint is the endpoint pattern for user profiles
	ProfileInfoEndpoint = "/api/v1/users/web_profile_info/"

	// GraphqlEndpoint is the endpoint pattern for user media
	GraphqlEndpoint = "/graphql/query/"

	// MediaQueryHash is the query hash for fetching user media
	MediaQueryHash = "e769aa130647d2354c40ea6a439bfc08"

	// WebAppID is the app id header Instagram's web client sends
	WebAppID = "936619743392459"

	// MaxCandidates is the hard page-size ceiling for a single run
	MaxCandidates = 12
)

// GetProfileInfoURL constructs the URL for the web_profile_info API
func GetProfileInfoURL(username string) string {
	params := url.Values{}
	params.Set("username", username)

	return fmt.Sprintf("%s%s?%s", BaseURL, ProfileInfoEndpoint, params.Encode())
}

// GetMediaURL constructs the GraphQL URL for a user's timeline media
func GetMediaURL(userID string, limit int) string {
	if limit <= 0 || limit > MaxCandidates {
		limit = MaxCandidates
	}

	params := url.Values{}
	params.Set("query_hash", MediaQueryHash)
	params.Set("variables", fmt.Sprintf(`{"id":"%s","first":%d}`, userID, limit))

	return fmt.Sprintf("%s%s?%s", BaseURL, GraphqlEndpoint, params.Encode())
}

// GetProfilePageURL constructs the public profile page URL for a user
func GetProfilePageURL(username string) string {
	if username == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/", BaseURL, username)
}

// GetPostURL constructs the URL for a specific post
func GetPostURL(shortcode string) string {
	if shortcode == "" {
		return ""
	}
	return fmt.Sprintf("%s/p/%s/", BaseURL, shortcode)
}

// IsValidUsername checks if a username is valid according to Instagram rules
func IsValidUsername(username string) bool {
	if username == "" || len(username) > 30 {
		return false
	}

	// Usernames can only contain letters, numbers, periods, and underscores
	for _, char := range username {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '.' || char == '_') {
			return false
		}
	}

	return true
}

// SanitizeUsername removes any invalid characters from a username
func SanitizeUsername(username string) string {
	if username == "" {
		return ""
	}

	if username[0] == '@' {
		username = username[1:]
	}

	for len(username) > 0 && (username[len(username)-1] == '/' || username[len(username)-1] == ' ') {
		username = username[:len(username)-1]
	}

	return username
}

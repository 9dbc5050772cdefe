package instagram

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetProfileInfoURL(t *testing.T) {
	url := GetProfileInfoURL("testuser")

	assert.Contains(t, url, BaseURL+ProfileInfoEndpoint)
	assert.Contains(t, url, "username=testuser")
}

func TestGetMediaURLClampsLimit(t *testing.T) {
	assert.Contains(t, GetMediaURL("123", 5), `%22first%22%3A5`)
	assert.Contains(t, GetMediaURL("123", 0), `%22first%22%3A12`)
	assert.Contains(t, GetMediaURL("123", 100), `%22first%22%3A12`)
}

func TestGetPostURL(t *testing.T) {
	assert.Equal(t, "https://www.instagram.com/p/ABC123/", GetPostURL("ABC123"))
	assert.Empty(t, GetPostURL(""))
}

func TestGetProfilePageURL(t *testing.T) {
	assert.Equal(t, "https://www.instagram.com/testuser/", GetProfilePageURL("testuser"))
	assert.Empty(t, GetProfilePageURL(""))
}

func TestIsValidUsername(t *testing.T) {
	valid := []string{"testuser", "test.user", "test_user", "user123", "a"}
	for _, username := range valid {
		assert.True(t, IsValidUsername(username), username)
	}

	invalid := []string{"", "user name", "user@name", "user/name",
		"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"} // 31 chars
	for _, username := range invalid {
		assert.False(t, IsValidUsername(username), username)
	}
}

func TestSanitizeUsername(t *testing.T) {
	assert.Equal(t, "testuser", SanitizeUsername("@testuser"))
	assert.Equal(t, "testuser", SanitizeUsername("testuser/"))
	assert.Equal(t, "testuser", SanitizeUsername("testuser  "))
	assert.Equal(t, "testuser", SanitizeUsername("@testuser/ "))
	assert.Empty(t, SanitizeUsername(""))
}

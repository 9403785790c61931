package validation

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidLeagueID(t *testing.T) {
	tests := []struct {
		id       string
		expected bool
	}{
		{"39", true},
		{"2", true},
		{"0", false},
		{"-1", false},
		{"39a", false},
		{"", false},
		{" 39", false},
		{"1.5", false},
	}

	for _, tt := range tests {
		if got := ValidLeagueID(tt.id); got != tt.expected {
			t.Errorf("ValidLeagueID(%q) = %v, want %v", tt.id, got, tt.expected)
		}
	}
}

func TestValidSeason(t *testing.T) {
	now := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		season   string
		expected bool
	}{
		{"2023", true},
		{"2000", true},
		{"2027", true},
		{"2028", false},
		{"1999", false},
		{"23", false},
		{"20233", false},
		{"abcd", false},
	}

	for _, tt := range tests {
		if got := ValidSeason(tt.season, now); got != tt.expected {
			t.Errorf("ValidSeason(%q) = %v, want %v", tt.season, got, tt.expected)
		}
	}
}

func TestValidImageURL(t *testing.T) {
	tests := []struct {
		url      string
		expected bool
	}{
		{"https://media.api-sports.io/football/teams/42.png", true},
		{"http://example.com/logo.JPG", true},
		{"https://example.com/a/b.webp?size=64", true},
		{"https://example.com/logo.svg", true},
		{"ftp://example.com/logo.png", false},
		{"https://example.com/logo.pdf", false},
		{"https://example.com/", false},
		{"/relative/logo.png", false},
		{"not a url", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidImageURL(tt.url); got != tt.expected {
			t.Errorf("ValidImageURL(%q) = %v, want %v", tt.url, got, tt.expected)
		}
	}
}

func decodeDataURI(t *testing.T, uri string) string {
	t.Helper()
	const prefix = "data:image/svg+xml;base64,"
	require.True(t, strings.HasPrefix(uri, prefix), "unexpected uri %q", uri)
	b, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, prefix))
	require.NoError(t, err)
	return string(b)
}

func TestFallbackTeamLogo(t *testing.T) {
	first := FallbackTeamLogo("Arsenal")
	assert.Equal(t, first, FallbackTeamLogo("Arsenal"), "output should be deterministic")

	svg := decodeDataURI(t, first)
	assert.Contains(t, svg, ">A</text>")
	assert.True(t, strings.HasPrefix(svg, "<svg"))

	assert.Contains(t, decodeDataURI(t, FallbackTeamLogo("chelsea")), ">C</text>")
	assert.Contains(t, decodeDataURI(t, FallbackTeamLogo("")), ">T</text>")
	assert.Contains(t, decodeDataURI(t, FallbackTeamLogo("<script>")), ">&lt;</text>")
}

func TestLogoOrFallback(t *testing.T) {
	logo := "https://media.api-sports.io/football/teams/42.png"
	assert.Equal(t, logo, LogoOrFallback(logo, "Arsenal"))
	assert.Equal(t, FallbackTeamLogo("Arsenal"), LogoOrFallback("", "Arsenal"))
	assert.Equal(t, FallbackTeamLogo("Arsenal"), LogoOrFallback("javascript:alert(1)", "Arsenal"))
}

package validation

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const minSeason = 2000

var (
	digitsRe     = regexp.MustCompile(`^\d+$`)
	seasonRe     = regexp.MustCompile(`^\d{4}$`)
	imagePathRe  = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|svg|webp)$`)
	imageSchemes = map[string]bool{"http": true, "https": true}
)

// ValidLeagueID accepts digit-only ids greater than zero
func ValidLeagueID(id string) bool {
	if !digitsRe.MatchString(id) {
		return false
	}
	n, err := strconv.ParseUint(id, 10, 64)
	return err == nil && n > 0
}

// ValidSeason accepts a four digit year from 2000 up to next year
func ValidSeason(season string, now time.Time) bool {
	if !seasonRe.MatchString(season) {
		return false
	}
	year, _ := strconv.Atoi(season)
	return year >= minSeason && year <= now.Year()+1
}

// ValidImageURL reports whether raw is an absolute http(s) URL whose path
// ends in a known image extension. Query strings are ignored.
func ValidImageURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return imageSchemes[strings.ToLower(u.Scheme)] && imagePathRe.MatchString(u.Path)
}

const fallbackSVG = `<svg width="32" height="32" viewBox="0 0 32 32" xmlns="http://www.w3.org/2000/svg">` +
	`<circle cx="16" cy="16" r="16" fill="#f3f4f6"/>` +
	`<text x="16" y="20" text-anchor="middle" font-family="Arial, sans-serif" font-size="14" font-weight="bold" fill="#6b7280">%s</text>` +
	`</svg>`

// FallbackTeamLogo renders the first letter of name into a small SVG
// avatar and returns it as a data URI. An empty name renders "T".
func FallbackTeamLogo(name string) string {
	letter := "T"
	if r, _ := utf8.DecodeRuneInString(strings.TrimSpace(name)); r != utf8.RuneError {
		letter = string(unicode.ToUpper(r))
	}
	svg := fmt.Sprintf(fallbackSVG, escapeXML(letter))
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg))
}

// LogoOrFallback returns logo when it is a trustworthy image URL and a
// generated avatar for name otherwise
func LogoOrFallback(logo, name string) string {
	if ValidImageURL(logo) {
		return logo
	}
	return FallbackTeamLogo(name)
}

func escapeXML(s string) string {
	switch s {
	case "<":
		return "&lt;"
	case ">":
		return "&gt;"
	case "&":
		return "&amp;"
	}
	return s
}

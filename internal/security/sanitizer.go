package security

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	htmlPolicy   = bluemonday.StrictPolicy()
	numericRegex = regexp.MustCompile(`^[0-9]+$`)
)

const rbxAssetPrefix = "rbxasset://"

// SanitizeString removes potentially dangerous characters
func SanitizeString(input string) string {
	// Trim whitespace
	input = strings.TrimSpace(input)

	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Limit length
	if len(input) > 1000 {
		input = input[:1000]
	}

	return input
}

// SanitizeHTML removes all HTML tags
func SanitizeHTML(input string) string {
	return htmlPolicy.Sanitize(input)
}

// SanitizeText strips markup and trims free text shown in game. The game
// client renders plain text, so entities left by the HTML policy are decoded.
func SanitizeText(input string) string {
	return SanitizeString(html.UnescapeString(SanitizeHTML(input)))
}

// ValidateImageRef accepts a numeric asset id or an rbxasset:// reference.
func ValidateImageRef(ref string) bool {
	ref = strings.TrimSpace(ref)
	return numericRegex.MatchString(ref) || strings.HasPrefix(ref, rbxAssetPrefix)
}

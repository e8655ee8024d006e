package util

import (
	"regexp"
	"strings"
)

var slugInvalidRunRegexp = regexp.MustCompile("[^a-z0-9-]+")

// Slugify builds a URL-safe slug from a catalogue node title, adapted from
// the teacher's GenerateCollectionName normalization (lowercase, spaces to
// hyphens, each run of characters outside [a-z0-9-] replaced by one hyphen,
// leading/trailing hyphens trimmed) — here used for
// DocumentCatalogue.URLSlug instead of a vector DB collection name.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = strings.ReplaceAll(s, " ", "-")
	s = slugInvalidRunRegexp.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	const maxSlugLength = 200
	if len(s) > maxSlugLength {
		s = s[:maxSlugLength]
	}
	if s == "" {
		s = "section"
	}
	return s
}

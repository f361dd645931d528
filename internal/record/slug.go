// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package record

import (
	"regexp"
	"strings"
)

var (
	// slugRegex matches characters that should be removed from slugs
	slugRegex = regexp.MustCompile(`[^a-z0-9\s-]`)
	// multiSpaceRegex matches runs of spaces/dashes
	multiSpaceRegex = regexp.MustCompile(`[\s-]+`)
	// controlRegex matches control characters stripped from titles
	controlRegex = regexp.MustCompile(`[\x00-\x1F\x7F]`)
)

// maxSlugLength caps the sanitized title portion of a filename.
const maxSlugLength = 60

// SlugifyTitle converts a conversation title into a filename-safe slug.
// The date and id prefixes in the filename carry the uniqueness; the slug
// only exists for human readability.
func SlugifyTitle(title string) string {
	slug := strings.ToLower(SanitizeTitle(title))
	slug = slugRegex.ReplaceAllString(slug, "")
	slug = multiSpaceRegex.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	if slug == "" {
		slug = "untitled"
	}
	if len(slug) > maxSlugLength {
		slug = strings.Trim(slug[:maxSlugLength], "-")
	}
	return slug
}

// SanitizeTitle trims whitespace and removes control characters from a title.
func SanitizeTitle(title string) string {
	title = strings.TrimSpace(title)
	return controlRegex.ReplaceAllString(title, "")
}

package utils

import (
	"regexp"
	"strings"
)

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9-]`)
	slugDashes  = regexp.MustCompile(`-+`)
)

// Slugify lowercases s and reduces it to ASCII letters, digits and single
// hyphens, capped at 150 characters to fit the slug columns.
func Slugify(s string) string {
	slug := strings.ToLower(strings.TrimSpace(s))
	slug = strings.NewReplacer(" ", "-", "_", "-").Replace(slug)
	slug = slugInvalid.ReplaceAllString(slug, "")
	slug = slugDashes.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 150 {
		slug = strings.TrimRight(slug[:150], "-")
	}
	return slug
}

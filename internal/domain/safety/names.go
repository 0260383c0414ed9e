package safety

import (
	"regexp"
	"strings"
)

const maxSegmentRunes = 100

var unsafeChars = regexp.MustCompile(`[^\p{L}\p{N}._-]+`)

// SafeSegment turns s into a single path segment: no separators, no leading
// dots, no "..". Returns fallback when nothing usable remains.
func SafeSegment(s, fallback string) string {
	s = strings.TrimSpace(s)
	s = unsafeChars.ReplaceAllString(s, "_")
	s = strings.Trim(s, "._")
	if s == "" {
		return fallback
	}
	if r := []rune(s); len(r) > maxSegmentRunes {
		s = string(r[:maxSegmentRunes])
	}
	return s
}

// SafeRelative reports whether rel is a relative path that stays below its base.
func SafeRelative(rel string) bool {
	if rel == "" || strings.HasPrefix(rel, "/") || strings.HasPrefix(rel, `\`) {
		return false
	}
	for _, part := range strings.FieldsFunc(rel, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return false
		}
	}
	return !strings.Contains(rel, ":")
}

package oracle

import (
	"regexp"
	"strings"
)

const fence = "```"

var langTag = regexp.MustCompile(`^[A-Za-z0-9_+#.\-]*$`)

// StripFences returns the body of the first markdown code block in s, trimmed.
// Text without a fence is only trimmed, so the function is idempotent.
func StripFences(s string) string {
	start := strings.Index(s, fence)
	if start == -1 {
		return strings.TrimSpace(s)
	}
	body := s[start+len(fence):]

	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		if langTag.MatchString(strings.TrimSpace(body[:nl])) {
			body = body[nl+1:]
		}
	}
	if end := strings.Index(body, fence); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

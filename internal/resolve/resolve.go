package resolve

import (
	"net/url"
	"regexp"
	"strings"
)

// Canonical video IDs are exactly 11 characters of [A-Za-z0-9_-].
var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// IsVideoID reports whether s is a canonical bare video ID.
func IsVideoID(s string) bool {
	return idPattern.MatchString(s)
}

// VideoID extracts the video ID from the common YouTube URL shapes
// (watch, youtu.be, embed, shorts, mobile subdomains), or returns the
// trimmed input unchanged when it already looks like an ID.
//
// Unrecognized or malformed input degrades to passthrough, the transcript
// fetch then fails with a clear error instead of this layer guessing.
func VideoID(input string) string {
	s := strings.TrimSpace(input)
	if idPattern.MatchString(s) {
		return s
	}

	u, err := url.Parse(s)
	if err != nil {
		return s
	}

	host := strings.ToLower(u.Host)
	if strings.Contains(host, "youtube.com") {
		if v := u.Query().Get("v"); v != "" {
			return v
		}

		parts := pathParts(u.Path)
		if len(parts) >= 2 && (parts[0] == "embed" || parts[0] == "shorts") {
			return parts[1]
		}
	}

	if strings.Contains(host, "youtu.be") {
		if parts := pathParts(u.Path); len(parts) > 0 {
			return parts[0]
		}
	}

	return s
}

func pathParts(path string) []string {
	var parts []string
	for _, part := range strings.Split(path, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}

	return parts
}

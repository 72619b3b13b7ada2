// Package clean normalizes raw caption text for display and storage.
package clean

import (
	"regexp"
	"strings"
)

var (
	// A stage direction is a bracketed annotation like [Music] or [Applause].
	// A single pass is enough: each match runs from a '[' to the nearest ']',
	// so stripping can never form a new pair from the leftovers.
	stageDirections = regexp.MustCompile(`\[[^\]]+\]`)
	whitespace      = regexp.MustCompile(`\s+`)
)

// Text collapses every run of whitespace to a single space and trims the
// ends. With stripStage set, bracketed stage directions are removed first.
// The result is stable under repeated application.
func Text(text string, stripStage bool) string {
	if stripStage {
		text = stageDirections.ReplaceAllString(text, "")
	}

	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}

// Package failures turns transcript fetch errors into a closed set of
// categories with deterministic user-facing messages. Errors are classified
// here, rendered once, and never persisted.
package failures

import (
	"errors"
	"strings"

	"github.com/tavanh/ytscript/internal/tube"
)

type Kind int

const (
	Unknown Kind = iota
	Disabled
	NotFoundInLanguages
	RateLimited
)

// Classified carries the category plus the structured context needed to
// render it. Message holds the raw error text for the Unknown fallback.
type Classified struct {
	Kind      Kind
	VideoID   string
	Requested []string
	Available []string
	// OthersAvailable is set when we know the video has transcripts in
	// languages other than the requested ones, even if we could not learn
	// which (the substring fallback path).
	OthersAvailable bool
	Message         string
}

// Classify inspects err in priority order: the typed errors from the tube
// package first, then substring checks on the message as a fallback for
// anything that reaches us as free text. The substring heuristics
// (especially the ip/block one) are brittle by nature and are kept only for
// compatibility with upstream error messages we don't control.
func Classify(err error, videoId string, requested []string) Classified {
	c := Classified{
		Kind:      Unknown,
		VideoID:   videoId,
		Requested: requested,
		Message:   err.Error(),
	}

	var noTranscript *tube.ErrNoTranscript
	switch {
	case errors.Is(err, tube.ErrDisabled):
		c.Kind = Disabled
	case errors.As(err, &noTranscript):
		c.Kind = NotFoundInLanguages
		c.Available = noTranscript.Available
		c.OthersAvailable = len(noTranscript.Available) > 0
	case errors.Is(err, tube.ErrTooManyRequests):
		c.Kind = RateLimited
	default:
		msg := strings.ToLower(c.Message)
		switch {
		case strings.Contains(msg, "transcripts are available in the following languages"):
			c.Kind = NotFoundInLanguages
			c.OthersAvailable = true
		case strings.Contains(msg, "ipblocked"),
			strings.Contains(msg, "ip") && strings.Contains(msg, "block"):
			c.Kind = RateLimited
		}
	}

	return c
}

// Render produces the user-facing sentence for the failure. It never fails.
func (c Classified) Render() string {
	switch c.Kind {
	case Disabled:
		return "Error: Transcripts are disabled for this video."
	case NotFoundInLanguages:
		langs := strings.Join(c.Requested, ", ")
		if c.OthersAvailable {
			return "Error: No " + langs + " transcript found for this video. " +
				"The video may have transcripts in other languages only."
		}

		return "Error: No " + langs + " transcript found for this video. " +
			"Many Shorts and recent uploads do not have captions."
	case RateLimited:
		return "Error: Your IP has been temporarily blocked by YouTube due to too many requests. " +
			"Please wait 15-30 minutes and try again."
	default:
		if strings.Contains(strings.ToLower(c.Message), "no element found") {
			return "Error: Unable to fetch transcript. This video may not have captions available."
		}

		return "Error: " + c.Message
	}
}

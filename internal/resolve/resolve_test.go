package resolve_test

import (
	"testing"

	"github.com/tavanh/ytscript/internal/resolve"
)

func TestVideoID(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"bare id", "ABCDEFGHIJK", "ABCDEFGHIJK"},
		{"bare id with whitespace", "  dQw4w9WgXcQ\n", "dQw4w9WgXcQ"},
		{"watch url", "https://www.youtube.com/watch?v=ABCDEFGHIJK", "ABCDEFGHIJK"},
		{"watch url extra params", "https://www.youtube.com/watch?v=ABCDEFGHIJK&t=42s", "ABCDEFGHIJK"},
		{"mobile watch url", "https://m.youtube.com/watch?v=ABCDEFGHIJK", "ABCDEFGHIJK"},
		{"short url", "https://youtu.be/ABCDEFGHIJK", "ABCDEFGHIJK"},
		{"short url with query", "https://youtu.be/ABCDEFGHIJK?t=30", "ABCDEFGHIJK"},
		{"embed url", "https://www.youtube.com/embed/ABCDEFGHIJK", "ABCDEFGHIJK"},
		{"shorts url", "https://www.youtube.com/shorts/ABCDEFGHIJK", "ABCDEFGHIJK"},
		{"unknown host passes through", "https://example.com/watch?v=ABCDEFGHIJK", "https://example.com/watch?v=ABCDEFGHIJK"},
		{"playlist url passes through", "https://www.youtube.com/playlist?list=PL0123456789abcdef", "https://www.youtube.com/playlist?list=PL0123456789abcdef"},
		{"garbage passes through", "not a url at all", "not a url at all"},
		{"malformed url passes through", "::nope::", "::nope::"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := resolve.VideoID(tc.input); got != tc.want {
				t.Errorf("VideoID(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestIsVideoID(t *testing.T) {
	if !resolve.IsVideoID("dQw4w9WgXcQ") {
		t.Error("expected dQw4w9WgXcQ to be a valid video ID")
	}

	for _, s := range []string{"", "short", "waytoolongtobevalid", "bad/chars#!?", "dQw4w9WgXc."} {
		if resolve.IsVideoID(s) {
			t.Errorf("expected %q to be rejected", s)
		}
	}
}

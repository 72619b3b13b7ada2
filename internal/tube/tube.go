// Package tube fetches caption tracks straight from the YouTube watch page,
// the same way the watch player itself does. No API key is needed.
package tube

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
)

// WatchEndpoint is a variable so tests can point the client at a stub server.
var WatchEndpoint = "https://www.youtube.com/watch"

var (
	ErrNotOk           = errors.New("unexpected non 200 status code")
	ErrTooManyRequests = errors.New("too many requests")
	ErrDisabled        = errors.New("transcripts are disabled")
	ErrUnavailable     = errors.New("video unavailable")
)

// ErrNoTranscript is returned when the video has caption tracks, but none of
// them match the requested language codes. There is deliberately no fallback
// to other languages: silently returning an unwanted language is worse than
// failing.
type ErrNoTranscript struct {
	VideoID   string
	Requested []string
	Available []string
}

func (e *ErrNoTranscript) Error() string {
	return fmt.Sprintf(
		"no transcript for video %q in languages [%s]; transcripts are available in the following languages: [%s]",
		e.VideoID,
		strings.Join(e.Requested, ", "),
		strings.Join(e.Available, ", "),
	)
}

type Client struct {
	HTTP *http.Client // nil falls back to http.DefaultClient
}

// Segment is one timed chunk of caption text.
type Segment struct {
	Text     string
	Start    float64
	Duration float64
}

// Track describes one caption track offered by the watch page.
type Track struct {
	BaseUrl string
	Name    struct {
		SimpleText string
	}
	LanguageCode string
	Kind         string
}

// Generated reports whether the track was auto generated (speech
// recognition) rather than written by the creator or community.
func (t *Track) Generated() bool {
	return t.Kind == "asr"
}

type resCaptionsList struct {
	PlayerCaptionsTrackListRenderer struct {
		CaptionTracks []Track
	}
}

type resTranscript struct {
	Entries []struct {
		Text  string  `xml:",chardata"`
		Start float64 `xml:"start,attr"`
		Dur   float64 `xml:"dur,attr"`
	} `xml:"text"`
}

// Transcript fetches the caption track for the video in the first requested
// language that exists, in the order given. The returned track carries the
// matched language code and whether it was auto generated.
func (c *Client) Transcript(videoId string, languages []string) ([]Segment, Track, error) {
	page, err := c.watchPage(videoId)
	if err != nil {
		return nil, Track{}, err
	}

	tracks, err := captionTracks(videoId, page)
	if err != nil {
		return nil, Track{}, err
	}

	track, ok := matchTrack(tracks, languages)
	if !ok {
		available := make([]string, 0, len(tracks))
		for _, t := range tracks {
			available = append(available, t.LanguageCode)
		}

		return nil, Track{}, &ErrNoTranscript{
			VideoID:   videoId,
			Requested: languages,
			Available: available,
		}
	}

	segments, err := c.fetchTrack(track)
	if err != nil {
		return nil, Track{}, err
	}

	return segments, track, nil
}

func (c *Client) watchPage(videoId string) (string, error) {
	res, err := c.client().Get(WatchEndpoint + "?v=" + videoId)
	if err != nil {
		return "", fmt.Errorf("requesting watch page: %w", err)
	}
	defer res.Body.Close()

	content, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("reading watch page body: %w", err)
	}
	sContent := string(content)

	if strings.Contains(sContent, `class="g-recaptcha"`) ||
		strings.Contains(sContent, `action="https://consent.youtube.com/s"`) {
		return "", fmt.Errorf("video %q got captcha: %w", videoId, ErrTooManyRequests)
	}

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("watch page status code %d: %w", res.StatusCode, ErrNotOk)
	}

	return sContent, nil
}

// captionTracks digs the caption track list out of the player config that is
// inlined into the watch page HTML.
func captionTracks(videoId string, page string) ([]Track, error) {
	split := strings.Split(page, `"captions":`)
	if len(split) <= 1 {
		if !strings.Contains(page, `"playabilityStatus"`) {
			return nil, fmt.Errorf("video %q: %w", videoId, ErrUnavailable)
		}

		return nil, fmt.Errorf("no captions json for video %q: %w", videoId, ErrDisabled)
	}

	rawCaptions := strings.ReplaceAll(strings.Split(split[1], `,"videoDetails`)[0], "\n", "")
	captionsList := resCaptionsList{}
	if err := json.Unmarshal([]byte(rawCaptions), &captionsList); err != nil {
		return nil, fmt.Errorf("could not unmarshal caption results %q: %w", rawCaptions, err)
	}

	return captionsList.PlayerCaptionsTrackListRenderer.CaptionTracks, nil
}

// matchTrack returns the first track matching the requested language codes.
// Requested order wins over track order, and a requested code matches its
// regional variants ("en" accepts "en-US").
func matchTrack(tracks []Track, languages []string) (Track, bool) {
	for _, lang := range languages {
		for _, track := range tracks {
			if strings.HasPrefix(track.LanguageCode, lang) {
				return track, true
			}
		}
	}

	return Track{}, false
}

func (c *Client) fetchTrack(track Track) ([]Segment, error) {
	res, err := c.client().Get(track.BaseUrl)
	if err != nil {
		return nil, fmt.Errorf("captions request: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("reading captions body: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("captions file status code %d: %w", res.StatusCode, ErrNotOk)
	}

	transcript := resTranscript{}
	if err := xml.Unmarshal(body, &transcript); err != nil {
		return nil, fmt.Errorf("could not parse transcript xml %q: %w", body, err)
	}

	segments := make([]Segment, 0, len(transcript.Entries))
	for _, entry := range transcript.Entries {
		segments = append(segments, Segment{
			Text:     html.UnescapeString(entry.Text),
			Start:    entry.Start,
			Duration: entry.Dur,
		})
	}

	return segments, nil
}

var (
	titlePattern  = regexp.MustCompile(`<title>(.+?)</title>`)
	titleYtSuffix = regexp.MustCompile(`(?i)\s*-\s*YouTube\s*$`)
)

// Title returns the video's display title, best effort. Any failure along
// the way (network, missing tag) falls back to the video ID, it never fails.
func (c *Client) Title(videoId string) string {
	res, err := c.client().Get(WatchEndpoint + "?v=" + videoId)
	if err != nil {
		return videoId
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return videoId
	}

	match := titlePattern.FindSubmatch(body)
	if match == nil {
		return videoId
	}

	title := titleYtSuffix.ReplaceAllString(html.UnescapeString(string(match[1])), "")
	if strings.TrimSpace(title) == "" {
		return videoId
	}

	return title
}

func (c *Client) client() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}

	return http.DefaultClient
}

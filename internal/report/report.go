// Package report writes the fetched transcript to a flat text file named
// after the video title.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Characters that are invalid in filenames on at least one supported OS.
var invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

const maxFilenameLen = 200

// SanitizeFilename replaces invalid filename characters with underscores,
// trims leading/trailing spaces and dots, and caps the length. The cap
// counts runes, slicing bytes could split a multibyte title mid-rune.
func SanitizeFilename(name string) string {
	name = invalidFilenameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, ". ")
	if runes := []rune(name); len(runes) > maxFilenameLen {
		name = string(runes[:maxFilenameLen])
	}

	return name
}

// Write saves the transcript under outputDir as "<sanitized title>.txt",
// creating the directory if needed, and returns the path written. Writing
// the same title twice overwrites, last write wins.
func Write(videoId, title, transcript, outputDir string) (string, error) {
	name := SanitizeFilename(title)
	if name == "" {
		name = videoId
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory %q: %w", outputDir, err)
	}

	path := filepath.Join(outputDir, name+".txt")

	content := strings.Builder{}
	fmt.Fprintf(&content, "Video ID: %s\n", videoId)
	fmt.Fprintf(&content, "Title: %s\n", title)
	fmt.Fprintf(&content, "URL: https://www.youtube.com/watch?v=%s\n", videoId)
	content.WriteString("\n" + strings.Repeat("=", 80) + "\n\n")
	content.WriteString(transcript)

	if err := os.WriteFile(path, []byte(content.String()), 0644); err != nil {
		return "", fmt.Errorf("writing transcript file %q: %w", path, err)
	}

	return path, nil
}

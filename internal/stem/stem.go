// Package stem reduces words to their stems so different forms of the same
// word compare equal when searching the archive.
package stem

import (
	"strings"

	"github.com/reiver/go-porterstemmer"
)

// StemLine stems every word of the line, dropping common punctuation.
func StemLine(value string) string {
	return strings.Join(StemWords(value), " ")
}

// StemWords splits the line on whitespace and stems each word.
func StemWords(value string) []string {
	fields := strings.Fields(value)
	words := make([]string, 0, len(fields))
	for _, field := range fields {
		word := strings.TrimFunc(field, isPunctuation)
		if word == "" {
			continue
		}

		words = append(words, porterstemmer.StemString(word))
	}

	return words
}

func isPunctuation(r rune) bool {
	return r == ',' || r == '.' || r == '!' || r == '?' || r == '"'
}

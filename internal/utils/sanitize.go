package utils

import (
	"regexp"
	"unicode/utf8"

	"github.com/vouchportal/vouch-api/internal/constants"
)

// Redaction marker substituted for denylisted terms in vouch messages.
const Redacted = "[redacted]"

var bannedWords = []string{
	"scam", "fraud", "fake", "cheat", "steal", "hack",
	"phishing", "ponzi", "pyramid",
}

var bannedPatterns = compileBannedPatterns()

func compileBannedPatterns() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(bannedWords))
	for _, word := range bannedWords {
		patterns = append(patterns, regexp.MustCompile("(?i)"+regexp.QuoteMeta(word)))
	}
	return patterns
}

// SanitizeMessage replaces denylisted terms (case-insensitively) with the
// redaction marker and truncates the result to the maximum message length.
// The limit counts characters, not bytes; truncation never splits a rune.
func SanitizeMessage(text string) string {
	if text == "" {
		return ""
	}

	sanitized := text
	for _, p := range bannedPatterns {
		sanitized = p.ReplaceAllString(sanitized, Redacted)
	}

	return TruncateRunes(sanitized, constants.MaxMessageLength)
}

// TruncateRunes cuts s to at most max characters.
func TruncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

package utils

import "strings"

// NormalizeUsername strips a leading "@" and lowercases the result so that
// usernames compare case-insensitively everywhere. Empty input normalizes to
// the empty string, which callers treat as "no username".
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(username), "@"))
}

package textutil

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"unicode/utf8"
)

// Hash computes a SHA-256 hex hash of a string for change detection.
func Hash(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// MD5 computes the MD5 hex digest used for hashed phrase keys.
func MD5(s string) string {
	h := md5.Sum([]byte(s))
	return hex.EncodeToString(h[:])
}

// Truncate shortens a string to maxLen runes, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	r := []rune(s)
	return string(r[:maxLen]) + "..."
}

// In file: internal/fingerprint/fingerprint.go

// Package fingerprint derives stable, fixed-length identifiers for question
// text. The fingerprint is what makes "the same question asked again"
// recognizable to the cache: identical trimmed text always hashes to the
// identical key, so a repeat lookup lands on the entry the first ask wrote.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// KeyLength is the number of hex characters kept from the SHA-256 digest.
// 16 hex characters give 64 bits of key, which keeps Redis keys short while
// making an accidental collision between two distinct questions negligible
// at any realistic per-user question volume.
const KeyLength = 16

// Key hashes the trimmed question text into a short, deterministic
// fingerprint. Leading/trailing whitespace never changes the result, so
// " what is TCP? " and "what is TCP?" share one cache identity.
//
// Empty questions are rejected by the orchestrator before lookup; Key itself
// stays a pure function and will happily hash the empty string.
func Key(question string) string {
	hasher := sha256.New()
	hasher.Write([]byte(strings.TrimSpace(question)))
	return hex.EncodeToString(hasher.Sum(nil))[:KeyLength]
}

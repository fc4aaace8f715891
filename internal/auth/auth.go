// In file: internal/auth/auth.go

// Package auth supplies identity verification as a pluggable capability.
// The core never embeds a credential scheme; it takes a Verifier by
// injection and treats the returned identity as a given. The identity is
// the sole partition key for all cached and logged data, so it is
// case-normalized here before anything downstream sees it.
package auth

import (
	"strings"

	"github.com/dileep-u-k/genai-chatbot/internal/keyspace"
)

// Verifier checks a credential pair and, on success, returns the canonical
// user identity to partition storage by.
type Verifier interface {
	Authenticate(username, secret string) (identity string, ok bool)
}

// Normalize produces the canonical form of a username: trimmed and
// lowercased, so "Alice" and "alice " own the same cache and history.
func Normalize(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// StaticVerifier is the operator-provisioned implementation: a fixed map of
// normalized username to secret, loaded from configuration at startup.
type StaticVerifier struct {
	secrets map[string]string
}

var _ Verifier = (*StaticVerifier)(nil)

// NewStaticVerifier builds a verifier from raw (possibly unnormalized)
// usernames. Names that cannot be embedded in a storage key are skipped;
// LoadConfig reports them before this point.
func NewStaticVerifier(users map[string]string) *StaticVerifier {
	secrets := make(map[string]string, len(users))
	for name, secret := range users {
		normalized := Normalize(name)
		if !keyspace.ValidUsername(normalized) {
			continue
		}
		secrets[normalized] = secret
	}
	return &StaticVerifier{secrets: secrets}
}

func (v *StaticVerifier) Authenticate(username, secret string) (string, bool) {
	identity := Normalize(username)
	want, ok := v.secrets[identity]
	if !ok || want != secret {
		return "", false
	}
	return identity, true
}

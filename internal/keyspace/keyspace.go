// In file: internal/keyspace/keyspace.go

// Package keyspace centralizes the construction of every Redis key the
// chatbot writes.
//
// This is a deliberate caching strategy. All keys share a common prefix and a
// schema version segment, so bumping SchemaVersion before deploying a change
// to the stored format automatically orphans every old entry: the gateway
// simply regenerates fresh ones instead of misreading stale data. Keys are
// partitioned by user and by purpose, which keeps the summary cache, the
// seen markers, and the history collections collision-free even though they
// live in the same Redis database.
package keyspace

import "fmt"

// Purpose tags the logical namespace a key belongs to. Using a defined type
// and constants prevents typos from silently crossing namespaces.
type Purpose string

const (
	// PurposeSummary keys hold the condensed answer for one question.
	PurposeSummary Purpose = "summary"
	// PurposeSeen keys mark that a question was fully answered recently.
	PurposeSeen Purpose = "seen"
	// PurposeHistory keys hold the per-user conversation log.
	PurposeHistory Purpose = "history"
)

// SchemaVersion is embedded in every key. Manually increment it before
// deploying a change to any stored value format.
const SchemaVersion = "v1"

const keyPrefix = "chat"

// ForQuestion builds the storage key for a per-question fact
// (summary cache or seen marker) owned by one user.
//
// Example output: "chat:v1:summary:alice:a1b2c3d4e5f60718"
//
// The username must already be validated by ValidUsername (the builder
// assumes it contains no delimiter) and the fingerprint is fixed-length
// hex, so the segments can never shift into each other.
func ForQuestion(user string, purpose Purpose, fp string) string {
	return fmt.Sprintf("%s:%s:%s:%s:%s", keyPrefix, SchemaVersion, purpose, user, fp)
}

// ForHistory builds the storage key for a user's ordered history collection.
func ForHistory(user string) string {
	return fmt.Sprintf("%s:%s:%s:%s", keyPrefix, SchemaVersion, PurposeHistory, user)
}

// ValidUsername reports whether a case-normalized username is safe to embed
// in a storage key. The key delimiter and whitespace are rejected outright
// rather than escaped; identities are provisioned by the operator, so a name
// that fails here is a configuration mistake, not user input to accommodate.
func ValidUsername(user string) bool {
	if user == "" {
		return false
	}
	for _, r := range user {
		switch {
		case r == ':':
			return false
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			return false
		}
	}
	return true
}

// In file: internal/keyspace/keyspace_test.go
package keyspace

import "testing"

func TestForQuestionKeysAreDistinct(t *testing.T) {
	fp := "a1b2c3d4e5f60718"
	keys := []string{
		ForQuestion("alice", PurposeSummary, fp),
		ForQuestion("alice", PurposeSeen, fp),
		ForQuestion("bob", PurposeSummary, fp),
		ForQuestion("alice", PurposeSummary, "ffffffffffffffff"),
		ForHistory("alice"),
	}
	seen := make(map[string]bool)
	for _, key := range keys {
		if seen[key] {
			t.Errorf("key collision: %s", key)
		}
		seen[key] = true
	}
}

func TestForQuestionEmbedsSchemaVersion(t *testing.T) {
	key := ForQuestion("alice", PurposeSummary, "a1b2c3d4e5f60718")
	want := "chat:" + SchemaVersion + ":summary:alice:a1b2c3d4e5f60718"
	if key != want {
		t.Errorf("ForQuestion = %s, want %s", key, want)
	}
}

func TestValidUsername(t *testing.T) {
	valid := []string{"alice", "bob_42", "user-1", "名前"}
	for _, name := range valid {
		if !ValidUsername(name) {
			t.Errorf("ValidUsername(%q) = false, want true", name)
		}
	}

	invalid := []string{"", "a:b", "alice smith", "tab\tname", "line\nname"}
	for _, name := range invalid {
		if ValidUsername(name) {
			t.Errorf("ValidUsername(%q) = true, want false", name)
		}
	}
}

package hashing

import "testing"

func TestHash(t *testing.T) {
	// Known SHA-256 of the empty string.
	if got := Hash(""); got != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Errorf("Hash(\"\") = %s", got)
	}

	a := Hash("git-helper: Provides git workflow assistance")
	b := Hash("git-helper: Provides git workflow assistance")
	if a != b {
		t.Errorf("same input hashed differently: %s vs %s", a, b)
	}

	if Hash("summary text") == Hash("full text") {
		t.Error("distinct inputs produced the same digest")
	}

	if len(a) != 64 {
		t.Errorf("digest length = %d, want 64 hex chars", len(a))
	}
}

package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDeriveWSEndpoint(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://api.example.com/graphql", "wss://api.example.com/graphql"},
		{"http://localhost:4000/graphql", "ws://localhost:4000/graphql"},
		{"wss://already.ws/graphql", "wss://already.ws/graphql"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := deriveWSEndpoint(tt.in); got != tt.want {
			t.Errorf("deriveWSEndpoint(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseVariables(t *testing.T) {
	vars, err := parseVariables(`{"id":"42","limit":10}`)
	if err != nil {
		t.Fatalf("parseVariables() error = %v", err)
	}
	if vars["id"] != "42" {
		t.Errorf("vars[id] = %v", vars["id"])
	}

	if vars, err := parseVariables(""); err != nil || vars != nil {
		t.Errorf("empty input: vars=%v err=%v", vars, err)
	}

	if _, err := parseVariables("not json"); err == nil {
		t.Error("parseVariables() accepted invalid JSON")
	}
}

func TestReadDocument(t *testing.T) {
	inline, err := readDocument(`query { ok }`)
	if err != nil || inline != `query { ok }` {
		t.Fatalf("inline: %q, %v", inline, err)
	}

	path := filepath.Join(t.TempDir(), "op.graphql")
	if err := os.WriteFile(path, []byte(`subscription { tick }`), 0o600); err != nil {
		t.Fatal(err)
	}
	fromFile, err := readDocument("@" + path)
	if err != nil || fromFile != `subscription { tick }` {
		t.Fatalf("from file: %q, %v", fromFile, err)
	}

	if _, err := readDocument("@/does/not/exist"); err == nil {
		t.Error("readDocument() accepted a missing file")
	}
}

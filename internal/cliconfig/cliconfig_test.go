package cliconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, LocalConfigFileName)
	content := `
endpoint: https://api.example.com/graphql
wsEndpoint: wss://api.example.com/graphql
token: Bearer abc
authHeader: X-Api-Key
logLevel: debug
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Endpoint != "https://api.example.com/graphql" {
		t.Errorf("Endpoint = %q", cfg.Endpoint)
	}
	if cfg.WSEndpoint != "wss://api.example.com/graphql" {
		t.Errorf("WSEndpoint = %q", cfg.WSEndpoint)
	}
	if cfg.Token != "Bearer abc" {
		t.Errorf("Token = %q", cfg.Token)
	}
	if cfg.AuthHeader != "X-Api-Key" {
		t.Errorf("AuthHeader = %q", cfg.AuthHeader)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoadFileInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("endpoint: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Error("LoadFile() accepted invalid YAML")
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadFile() accepted a missing file")
	}
}

func TestFindLocalConfig(t *testing.T) {
	dir := t.TempDir()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(orig) })

	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	path, err := FindLocalConfig()
	if err != nil {
		t.Fatalf("FindLocalConfig() error = %v", err)
	}
	if path != "" {
		t.Errorf("FindLocalConfig() = %q, want empty in a bare dir", path)
	}

	want := filepath.Join(dir, LocalConfigFileName)
	if err := os.WriteFile(want, []byte("endpoint: http://x"), 0o600); err != nil {
		t.Fatal(err)
	}

	path, err = FindLocalConfig()
	if err != nil {
		t.Fatalf("FindLocalConfig() error = %v", err)
	}
	if path == "" {
		t.Error("FindLocalConfig() missed the local file")
	}
}

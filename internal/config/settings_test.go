package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	if err := s.Validate(); err != nil {
		t.Fatalf("default settings invalid: %v", err)
	}
	if s.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", s.MaxAttempts)
	}
	if s.RetryDelay() != 5*time.Second {
		t.Errorf("RetryDelay() = %v, want 5s", s.RetryDelay())
	}
	if s.MinFileSize() != 100*1024 {
		t.Errorf("MinFileSize() = %d, want 102400", s.MinFileSize())
	}
}

func TestLoad_YAMLOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spotfetch.yaml")

	yaml := `
output_dir: /music/spotify
max_attempts: 5
retry_delay_sec: 0.5
credentials:
  client_id: abc
  client_secret: def
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if s.OutputDir != "/music/spotify" {
		t.Errorf("OutputDir = %q", s.OutputDir)
	}
	if s.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d, want 5", s.MaxAttempts)
	}
	if s.RetryDelay() != 500*time.Millisecond {
		t.Errorf("RetryDelay() = %v, want 500ms", s.RetryDelay())
	}
	// Untouched fields keep their defaults.
	if s.SpotdlBin != "spotdl" {
		t.Errorf("SpotdlBin = %q, want default", s.SpotdlBin)
	}
	if !s.Credentials.IsSet() {
		t.Error("credentials from file not picked up")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.OutputDir != "downloads" {
		t.Errorf("OutputDir = %q, want default", s.OutputDir)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SPOTFETCH_MAX_ATTEMPTS", "7")
	t.Setenv("SPOTFETCH_OUTPUT_DIR", "/tmp/out")

	s, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.MaxAttempts != 7 {
		t.Errorf("MaxAttempts = %d, want 7", s.MaxAttempts)
	}
	if s.OutputDir != "/tmp/out" {
		t.Errorf("OutputDir = %q, want /tmp/out", s.OutputDir)
	}
}

func TestLoad_CredentialsFromEnv(t *testing.T) {
	t.Setenv("SPOTIFY_CLIENT_ID", "envid")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "envsecret")

	s, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Credentials.ClientID != "envid" || s.Credentials.ClientSecret != "envsecret" {
		t.Errorf("Credentials = %+v", s.Credentials)
	}
}

func TestCredentials_Args(t *testing.T) {
	var empty Credentials
	if empty.Args() != nil {
		t.Error("unset credentials should produce no args")
	}

	creds := Credentials{ClientID: "id", ClientSecret: "sec"}
	got := creds.Args()
	want := []string{"--client-id", "id", "--client-secret", "sec"}
	if len(got) != len(want) {
		t.Fatalf("Args() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Args()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	assign := creds.AssignmentArgs()
	if len(assign) != 2 || assign[0] != "--client-id=id" || assign[1] != "--client-secret=sec" {
		t.Errorf("AssignmentArgs() = %v", assign)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"empty output dir", func(s *Settings) { s.OutputDir = "" }},
		{"zero attempts", func(s *Settings) { s.MaxAttempts = 0 }},
		{"negative delay", func(s *Settings) { s.RetryDelaySec = -1 }},
		{"zero timeout", func(s *Settings) { s.DownloadTimeoutSec = 0 }},
		{"zero min size", func(s *Settings) { s.MinFileSizeKB = 0 }},
		{"empty tool", func(s *Settings) { s.YtdlpBin = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(s)
			if err := s.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "spotfetch.yaml")

	s := DefaultSettings()
	s.OutputDir = "/music"
	if err := s.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.OutputDir != "/music" {
		t.Errorf("round-trip OutputDir = %q", loaded.OutputDir)
	}
}

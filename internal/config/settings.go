package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Credentials holds the Spotify API client credentials passed through to
// spotdl. Both fields empty means "use spotdl's built-in defaults".
type Credentials struct {
	ClientID     string `yaml:"client_id" envconfig:"CLIENT_ID"`
	ClientSecret string `yaml:"client_secret" envconfig:"CLIENT_SECRET"`
}

// IsSet reports whether both credential fields are present.
func (c Credentials) IsSet() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// Args renders the credentials as spotdl command-line arguments.
// Returns nil when unset.
func (c Credentials) Args() []string {
	if !c.IsSet() {
		return nil
	}
	return []string{"--client-id", c.ClientID, "--client-secret", c.ClientSecret}
}

// AssignmentArgs renders the credentials in the --key=value form some spotdl
// subcommands (save, since 4.4) require. Returns nil when unset.
func (c Credentials) AssignmentArgs() []string {
	if !c.IsSet() {
		return nil
	}
	return []string{
		fmt.Sprintf("--client-id=%s", c.ClientID),
		fmt.Sprintf("--client-secret=%s", c.ClientSecret),
	}
}

// Settings holds all configuration options.
//
// Delay and timeout knobs are expressed in seconds so they round-trip
// cleanly through the YAML settings file; accessor methods convert them to
// time.Duration. Tests set the delays to zero to run the retry machinery
// synchronously.
type Settings struct {
	// Paths
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR"`
	SongsFile string `yaml:"songs_file" envconfig:"SONGS_FILE"`

	// External tools
	SpotdlBin string `yaml:"spotdl_bin" envconfig:"SPOTDL_BIN"`
	YtdlpBin  string `yaml:"ytdlp_bin" envconfig:"YTDLP_BIN"`

	// Retry policy for the primary executor
	MaxAttempts   int     `yaml:"max_attempts" envconfig:"MAX_ATTEMPTS"`
	RetryDelaySec float64 `yaml:"retry_delay_sec" envconfig:"RETRY_DELAY_SEC"`

	// Filesystem settle time between a claimed success and re-snapshot
	SettleDelaySec float64 `yaml:"settle_delay_sec" envconfig:"SETTLE_DELAY_SEC"`

	// Per-invocation timeouts
	DownloadTimeoutSec float64 `yaml:"download_timeout_sec" envconfig:"DOWNLOAD_TIMEOUT_SEC"`
	ProbeTimeoutSec    float64 `yaml:"probe_timeout_sec" envconfig:"PROBE_TIMEOUT_SEC"`
	PlaylistTimeoutSec float64 `yaml:"playlist_timeout_sec" envconfig:"PLAYLIST_TIMEOUT_SEC"`

	// MinFileSizeKB is the corruption threshold: an artifact at or below
	// this size is deleted and the attempt treated as ambiguous.
	MinFileSizeKB int64 `yaml:"min_file_size_kb" envconfig:"MIN_FILE_SIZE_KB"`

	// Logging
	LogLevel  string `yaml:"log_level" envconfig:"LOG_LEVEL"`
	LogFormat string `yaml:"log_format" envconfig:"LOG_FORMAT"`

	Credentials Credentials `yaml:"credentials"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		OutputDir: "downloads",
		SongsFile: "songs-to-download.txt",

		SpotdlBin: "spotdl",
		YtdlpBin:  "yt-dlp",

		MaxAttempts:   3,
		RetryDelaySec: 5,

		SettleDelaySec: 2,

		DownloadTimeoutSec: 300,
		ProbeTimeoutSec:    15,
		PlaylistTimeoutSec: 180,

		MinFileSizeKB: 100,

		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load builds settings from, in increasing priority:
// defaults, a YAML settings file (optional), SPOTFETCH_* environment
// variables, and SPOTIFY_CLIENT_ID/SPOTIFY_CLIENT_SECRET for credentials.
// A .env file in the working directory is folded into the environment first.
func Load(path string) (*Settings, error) {
	// Missing .env is the common case, not an error.
	_ = godotenv.Load()

	settings := DefaultSettings()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading settings file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, settings); err != nil {
			return nil, fmt.Errorf("parsing settings file %s: %w", path, err)
		}
	}

	if err := envconfig.Process("SPOTFETCH", settings); err != nil {
		return nil, fmt.Errorf("processing environment: %w", err)
	}

	if !settings.Credentials.IsSet() {
		settings.Credentials = Credentials{
			ClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
			ClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
		}
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes the settings to a YAML file.
func (s *Settings) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks the settings for invalid values.
// Returns an error describing the first invalid setting found.
func (s *Settings) Validate() error {
	if s.OutputDir == "" {
		return fmt.Errorf("output directory cannot be empty")
	}
	if s.SpotdlBin == "" || s.YtdlpBin == "" {
		return fmt.Errorf("tool names cannot be empty")
	}
	if s.MaxAttempts <= 0 {
		return fmt.Errorf("max attempts must be positive: %d", s.MaxAttempts)
	}
	if s.RetryDelaySec < 0 || s.SettleDelaySec < 0 {
		return fmt.Errorf("delays cannot be negative")
	}
	if s.DownloadTimeoutSec <= 0 || s.ProbeTimeoutSec <= 0 || s.PlaylistTimeoutSec <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if s.MinFileSizeKB <= 0 {
		return fmt.Errorf("min file size must be positive: %d", s.MinFileSizeKB)
	}
	return nil
}

// RetryDelay returns the delay between primary-executor attempts.
func (s *Settings) RetryDelay() time.Duration {
	return secs(s.RetryDelaySec)
}

// SettleDelay returns the wait applied before re-snapshotting the output
// directory, tolerating filesystem propagation latency.
func (s *Settings) SettleDelay() time.Duration {
	return secs(s.SettleDelaySec)
}

// DownloadTimeout returns the per-invocation timeout for download commands.
func (s *Settings) DownloadTimeout() time.Duration {
	return secs(s.DownloadTimeoutSec)
}

// ProbeTimeout returns the timeout for read-only metadata probes.
func (s *Settings) ProbeTimeout() time.Duration {
	return secs(s.ProbeTimeoutSec)
}

// PlaylistTimeout returns the timeout for playlist metadata fetches.
func (s *Settings) PlaylistTimeout() time.Duration {
	return secs(s.PlaylistTimeoutSec)
}

// MinFileSize returns the corruption threshold in bytes.
func (s *Settings) MinFileSize() int64 {
	return s.MinFileSizeKB * 1024
}

func secs(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

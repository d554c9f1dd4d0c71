package spotify

import (
	"context"
	"testing"
	"time"

	"github.com/bruhMomentFixer/spotfetch/internal/config"
	"github.com/bruhMomentFixer/spotfetch/internal/model"
	"github.com/bruhMomentFixer/spotfetch/internal/runner"
)

const testRef = model.TrackReference("https://open.spotify.com/track/abc123")

func fixedOutput(stdout string, err error) runner.Runner {
	return runner.Func(func(_ context.Context, _ time.Duration, _ string, _ ...string) (runner.Result, error) {
		return runner.Result{Stdout: []byte(stdout)}, err
	})
}

func TestProber_Probe(t *testing.T) {
	tests := []struct {
		name       string
		stdout     string
		runErr     error
		wantNil    bool
		wantArtist string
		wantTitle  string
	}{
		{
			name:       "full metadata",
			stdout:     `{"name": "Karma Police", "artists": [{"name": "Radiohead"}, {"name": "Someone Else"}]}`,
			wantArtist: "Radiohead",
			wantTitle:  "Karma Police",
		},
		{
			name:       "missing artists defaults",
			stdout:     `{"name": "Karma Police"}`,
			wantArtist: "Unknown",
			wantTitle:  "Karma Police",
		},
		{
			name:       "missing name defaults",
			stdout:     `{"artists": [{"name": "Radiohead"}]}`,
			wantArtist: "Radiohead",
			wantTitle:  "Unknown Track",
		},
		{
			name:    "malformed JSON is soft failure",
			stdout:  `{"name": `,
			wantNil: true,
		},
		{
			name:    "empty output is soft failure",
			stdout:  "   \n",
			wantNil: true,
		},
		{
			name:    "process error is soft failure",
			stdout:  "",
			runErr:  context.DeadlineExceeded,
			wantNil: true,
		},
	}

	settings := config.DefaultSettings()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prober := NewProber(settings, fixedOutput(tt.stdout, tt.runErr))
			song := prober.Probe(context.Background(), testRef)

			if tt.wantNil {
				if song != nil {
					t.Fatalf("Probe() = %+v, want nil", song)
				}
				return
			}
			if song == nil {
				t.Fatal("Probe() = nil, want song info")
			}
			if song.Artist != tt.wantArtist {
				t.Errorf("Artist = %q, want %q", song.Artist, tt.wantArtist)
			}
			if song.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", song.Title, tt.wantTitle)
			}
		})
	}
}

func TestProber_CommandShape(t *testing.T) {
	settings := config.DefaultSettings()
	settings.Credentials = config.Credentials{ClientID: "id", ClientSecret: "sec"}

	var gotName string
	var gotArgs []string
	var gotTimeout time.Duration

	run := runner.Func(func(_ context.Context, timeout time.Duration, name string, args ...string) (runner.Result, error) {
		gotName, gotArgs, gotTimeout = name, args, timeout
		return runner.Result{Stdout: []byte(`{"name":"T","artists":[{"name":"A"}]}`)}, nil
	})

	NewProber(settings, run).Probe(context.Background(), testRef)

	if gotName != "spotdl" {
		t.Errorf("tool = %q, want spotdl", gotName)
	}
	want := []string{"search", testRef.String(), "--print", "json", "--client-id", "id", "--client-secret", "sec"}
	if len(gotArgs) != len(want) {
		t.Fatalf("args = %v, want %v", gotArgs, want)
	}
	for i := range want {
		if gotArgs[i] != want[i] {
			t.Errorf("args[%d] = %q, want %q", i, gotArgs[i], want[i])
		}
	}
	if gotTimeout != settings.ProbeTimeout() {
		t.Errorf("timeout = %v, want %v", gotTimeout, settings.ProbeTimeout())
	}
}

func TestProber_PredictFilename(t *testing.T) {
	settings := config.DefaultSettings()

	prober := NewProber(settings, fixedOutput(`{"name":"Back \"In\" Black","artists":[{"name":"AC/DC"}]}`, nil))
	if got, want := prober.PredictFilename(context.Background(), testRef), "ACDC - Back In Black.mp3"; got != want {
		t.Errorf("PredictFilename() = %q, want %q", got, want)
	}

	failing := NewProber(settings, fixedOutput("", context.DeadlineExceeded))
	if got := failing.PredictFilename(context.Background(), testRef); got != "" {
		t.Errorf("PredictFilename() on failure = %q, want empty", got)
	}
}

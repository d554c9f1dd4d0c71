package spotify

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/bruhMomentFixer/spotfetch/internal/config"
	"github.com/bruhMomentFixer/spotfetch/internal/runner"
)

// savingRunner fakes "spotdl save" by writing content to the path given
// after --save-file.
func savingRunner(t *testing.T, content string, failures int) runner.Runner {
	t.Helper()
	calls := 0
	return runner.Func(func(_ context.Context, _ time.Duration, _ string, args ...string) (runner.Result, error) {
		calls++
		if calls <= failures {
			return runner.Result{Stderr: []byte("error: rate limited")}, fmt.Errorf("exit status 1")
		}
		var savePath string
		for i, arg := range args {
			if arg == "--save-file" && i+1 < len(args) {
				savePath = args[i+1]
			}
		}
		if savePath == "" {
			t.Fatal("no --save-file argument passed")
		}
		if err := os.WriteFile(savePath, []byte(content), 0644); err != nil {
			t.Fatalf("fake save: %v", err)
		}
		return runner.Result{}, nil
	})
}

func newTestFetcher(run runner.Runner) *PlaylistFetcher {
	f := NewPlaylistFetcher(config.DefaultSettings(), run)
	f.BackoffBase = 0
	return f
}

func TestPlaylistFetcher_Fetch(t *testing.T) {
	metadata := `[
		{"url": "https://open.spotify.com/track/aaa111", "name": "One"},
		{"url": "https://open.spotify.com/intl-es/track/bbb222", "name": "Two"},
		{"url": "https://open.spotify.com/album/notatrack", "name": "Skip"},
		{"url": "https://open.spotify.com/track/ccc333", "name": "Three"}
	]`

	refs, err := newTestFetcher(savingRunner(t, metadata, 0)).
		Fetch(context.Background(), "https://open.spotify.com/playlist/xyz")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	want := []string{
		"https://open.spotify.com/track/aaa111",
		"https://open.spotify.com/track/bbb222",
		"https://open.spotify.com/track/ccc333",
	}
	if len(refs) != len(want) {
		t.Fatalf("got %d refs, want %d: %v", len(refs), len(want), refs)
	}
	for i := range want {
		if refs[i].String() != want[i] {
			t.Errorf("refs[%d] = %q, want %q", i, refs[i], want[i])
		}
	}
}

func TestPlaylistFetcher_RetriesThenSucceeds(t *testing.T) {
	metadata := `[{"url": "https://open.spotify.com/track/aaa111"}]`

	refs, err := newTestFetcher(savingRunner(t, metadata, 2)).
		Fetch(context.Background(), "https://open.spotify.com/playlist/xyz")
	if err != nil {
		t.Fatalf("Fetch after retries: %v", err)
	}
	if len(refs) != 1 {
		t.Fatalf("got %d refs, want 1", len(refs))
	}
}

func TestPlaylistFetcher_ExhaustsAttempts(t *testing.T) {
	calls := 0
	run := runner.Func(func(_ context.Context, _ time.Duration, _ string, _ ...string) (runner.Result, error) {
		calls++
		return runner.Result{Stderr: []byte("error: boom")}, fmt.Errorf("exit status 1")
	})

	_, err := newTestFetcher(run).Fetch(context.Background(), "https://open.spotify.com/playlist/xyz")
	if err == nil {
		t.Fatal("expected error after exhausted attempts")
	}
	if calls != 3 {
		t.Errorf("runner invoked %d times, want 3", calls)
	}
}

func TestPlaylistFetcher_EmptyMetadataIsError(t *testing.T) {
	_, err := newTestFetcher(savingRunner(t, "", 0)).
		Fetch(context.Background(), "https://open.spotify.com/playlist/xyz")
	if err == nil {
		t.Fatal("expected error for empty metadata file")
	}
}

func TestPlaylistFetcher_NoTracksIsError(t *testing.T) {
	_, err := newTestFetcher(savingRunner(t, `[{"url": "https://open.spotify.com/album/x"}]`, 0)).
		Fetch(context.Background(), "https://open.spotify.com/playlist/xyz")
	if err == nil {
		t.Fatal("expected error when metadata has no track URLs")
	}
}

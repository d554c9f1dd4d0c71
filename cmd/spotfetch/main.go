package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/pflag"

	"github.com/bruhMomentFixer/spotfetch/internal/config"
	"github.com/bruhMomentFixer/spotfetch/internal/download"
	"github.com/bruhMomentFixer/spotfetch/internal/input"
	ioutils "github.com/bruhMomentFixer/spotfetch/internal/io"
	"github.com/bruhMomentFixer/spotfetch/internal/model"
	"github.com/bruhMomentFixer/spotfetch/internal/runner"
	"github.com/bruhMomentFixer/spotfetch/internal/spotify"
	"github.com/bruhMomentFixer/spotfetch/internal/verify"
)

var (
	errColor    = color.New(color.FgRed)
	warnColor   = color.New(color.FgYellow)
	okColor     = color.New(color.FgGreen)
	infoColor   = color.New(color.FgCyan)
	faintColor  = color.New(color.Faint)
	headerColor = color.New(color.FgGreen, color.Bold)
)

func main() {
	var (
		urlFlag      = pflag.StringP("url", "u", "", "Spotify track URL to download")
		fileFlag     = pflag.StringP("file", "f", "", "songs file to download from (overrides config)")
		exportFlag   = pflag.String("export-playlist", "", "Spotify playlist URL: export its track URLs to the songs file and exit")
		initFlag     = pflag.Bool("init", false, "write a starter songs file and settings file, then exit")
		configFlag   = pflag.StringP("config", "c", "spotfetch.yaml", "path to settings file")
		outputFlag   = pflag.StringP("output", "o", "", "output directory (overrides config)")
		verboseFlag  = pflag.BoolP("verbose", "v", false, "show verbose output")
		noPromptFlag = pflag.Bool("no-prompt", false, "never ask interactive questions; take the safe default")
	)
	pflag.Parse()

	settings, err := config.Load(*configFlag)
	if err != nil {
		errColor.Fprintf(os.Stderr, "Error loading settings: %v\n", err)
		os.Exit(1)
	}
	if *outputFlag != "" {
		settings.OutputDir = *outputFlag
	}
	if *fileFlag != "" {
		settings.SongsFile = *fileFlag
	}
	if *verboseFlag {
		settings.LogLevel = "debug"
	}
	config.SetupLogger(settings)

	if *initFlag {
		os.Exit(runInit(settings, *configFlag))
	}

	headerColor.Println("spotfetch")
	faintColor.Println("Spotify track downloader (spotdl + yt-dlp)")
	fmt.Println()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	run := runner.New()
	if code := preflight(ctx, run, settings); code != 0 {
		os.Exit(code)
	}

	if !settings.Credentials.IsSet() && !*noPromptFlag {
		promptCredentials(settings)
	}

	if *exportFlag != "" {
		os.Exit(runExport(ctx, settings, run, *exportFlag, *noPromptFlag))
	}

	refs, code := resolveRefs(settings, *urlFlag)
	if code != 0 {
		os.Exit(code)
	}

	os.Exit(runBatch(ctx, settings, run, refs, *verboseFlag))
}

// preflight checks that the external tools respond before any download
// starts. A missing primary tool is fatal; a missing fallback tool only
// removes the safety net, so it just warns.
func preflight(ctx context.Context, run runner.Runner, settings *config.Settings) int {
	version, err := runner.CheckTool(ctx, run, settings.SpotdlBin)
	if err != nil {
		errColor.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Install it with: pip install spotdl")
		return 1
	}
	faintColor.Printf("%s %s\n", settings.SpotdlBin, version)

	version, err = runner.CheckTool(ctx, run, settings.YtdlpBin)
	if err != nil {
		warnColor.Printf("Warning: %s not available, fallback downloads disabled\n", settings.YtdlpBin)
	} else {
		faintColor.Printf("%s %s\n", settings.YtdlpBin, version)
	}
	fmt.Println()
	return 0
}

// promptCredentials offers the same three choices the settings file
// documents: read from .env, rely on spotdl's built-in defaults, or type
// them in.
func promptCredentials(settings *config.Settings) {
	const (
		optEnv     = "Use SPOTIFY_CLIENT_ID/SPOTIFY_CLIENT_SECRET from the environment or .env"
		optBuiltin = "Use spotdl's built-in credentials (rate-limited)"
		optManual  = "Enter credentials manually"
	)

	var choice string
	prompt := &survey.Select{
		Message: "No Spotify API credentials configured. How should spotdl authenticate?",
		Options: []string{optBuiltin, optEnv, optManual},
		Default: optBuiltin,
	}
	if err := survey.AskOne(prompt, &choice); err != nil {
		// Non-interactive terminal or ctrl+c; built-in defaults still work.
		return
	}

	switch choice {
	case optEnv:
		settings.Credentials = config.Credentials{
			ClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
			ClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
		}
		if !settings.Credentials.IsSet() {
			warnColor.Println("Environment credentials incomplete, falling back to spotdl defaults")
		}
	case optManual:
		qs := []*survey.Question{
			{Name: "clientid", Prompt: &survey.Input{Message: "Client ID:"}},
			{Name: "clientsecret", Prompt: &survey.Password{Message: "Client secret:"}},
		}
		answers := struct {
			ClientID     string `survey:"clientid"`
			ClientSecret string `survey:"clientsecret"`
		}{}
		if err := survey.Ask(qs, &answers); err == nil {
			settings.Credentials = config.Credentials{
				ClientID:     answers.ClientID,
				ClientSecret: answers.ClientSecret,
			}
		}
	}
}

const envTemplate = `# Spotify API credentials for spotdl.
# Create an app at https://developer.spotify.com/dashboard to get these.
SPOTIFY_CLIENT_ID=
SPOTIFY_CLIENT_SECRET=
`

// runInit writes the starter songs file, a settings file with defaults, and
// a .env template, refusing to clobber anything that already exists.
func runInit(settings *config.Settings, configPath string) int {
	if input.HasContent(settings.SongsFile) {
		warnColor.Printf("%s already exists and is not empty, leaving it alone\n", settings.SongsFile)
	} else {
		if err := ioutils.WriteFile(settings.SongsFile, []byte(input.Template)); err != nil {
			errColor.Fprintf(os.Stderr, "Error writing %s: %v\n", settings.SongsFile, err)
			return 1
		}
		okColor.Printf("Wrote %s\n", settings.SongsFile)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := settings.Save(configPath); err != nil {
			errColor.Fprintf(os.Stderr, "Error writing %s: %v\n", configPath, err)
			return 1
		}
		okColor.Printf("Wrote %s\n", configPath)
	}

	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		if err := ioutils.WriteFile(".env", []byte(envTemplate)); err != nil {
			errColor.Fprintf(os.Stderr, "Error writing .env: %v\n", err)
			return 1
		}
		okColor.Println("Wrote .env")
	}

	fmt.Println()
	fmt.Printf("Edit %s, then run: spotfetch\n", settings.SongsFile)
	return 0
}

// runExport fetches a playlist's track URLs and writes them to the songs
// file, asking what to do when the file already has content.
func runExport(ctx context.Context, settings *config.Settings, run runner.Runner, playlistURL string, noPrompt bool) int {
	if !spotify.IsPlaylistURL(playlistURL) {
		errColor.Fprintf(os.Stderr, "Error: not a Spotify playlist URL: %s\n", playlistURL)
		return 1
	}

	infoColor.Println("Fetching playlist metadata...")
	refs, err := spotify.NewPlaylistFetcher(settings, run).Fetch(ctx, playlistURL)
	if err != nil {
		errColor.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	okColor.Printf("Found %d tracks\n", len(refs))

	appendMode := false
	if input.HasContent(settings.SongsFile) {
		if noPrompt {
			errColor.Fprintf(os.Stderr, "Error: %s already has content; re-run without --no-prompt or move it away\n", settings.SongsFile)
			return 1
		}

		const (
			optOverwrite = "Overwrite it"
			optAppend    = "Append to it"
			optCancel    = "Cancel"
		)
		choice := optCancel
		prompt := &survey.Select{
			Message: fmt.Sprintf("%s already has content. What now?", settings.SongsFile),
			Options: []string{optOverwrite, optAppend, optCancel},
			Default: optCancel,
		}
		if err := survey.AskOne(prompt, &choice); err != nil || choice == optCancel {
			fmt.Println("Cancelled, songs file unchanged.")
			return 0
		}
		appendMode = choice == optAppend
	}

	if err := input.WriteURLs(settings.SongsFile, refs, appendMode); err != nil {
		errColor.Fprintf(os.Stderr, "Error writing %s: %v\n", settings.SongsFile, err)
		return 1
	}
	okColor.Printf("Saved %d track URLs to %s\n", len(refs), settings.SongsFile)
	return 0
}

// resolveRefs builds the download list from --url or the songs file.
func resolveRefs(settings *config.Settings, url string) ([]model.TrackReference, int) {
	if url != "" {
		normalized := spotify.Normalize(url)
		if !spotify.IsValidTrackURL(normalized.String()) {
			errColor.Fprintf(os.Stderr, "Error: not a Spotify track URL: %s\n", url)
			return nil, 1
		}
		return []model.TrackReference{normalized}, 0
	}

	list, err := input.ReadSongsFile(settings.SongsFile)
	if err != nil {
		errColor.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run spotfetch --init to create a starter songs file.")
		return nil, 1
	}

	for _, warning := range list.Warnings {
		warnColor.Printf("Warning: %s\n", warning)
	}
	// Any invalid line aborts the run; a partial batch is never started.
	if len(list.Invalid) > 0 {
		for _, invalid := range list.Invalid {
			errColor.Fprintf(os.Stderr, "Error: line %d is not a Spotify track URL: %s\n", invalid.Number, invalid.Text)
		}
		fmt.Fprintf(os.Stderr, "Fix %s and run again.\n", settings.SongsFile)
		return nil, 1
	}
	if len(list.Refs) == 0 {
		errColor.Fprintf(os.Stderr, "Error: no valid track URLs in %s\n", settings.SongsFile)
		return nil, 1
	}
	return list.Refs, 0
}

// runBatch downloads the tracks and prints the summary table.
func runBatch(ctx context.Context, settings *config.Settings, run runner.Runner, refs []model.TrackReference, verbose bool) int {
	prober := spotify.NewProber(settings, run)
	manager := download.NewManager(settings, run, prober, func(event download.ProgressEvent) {
		if event.Level == download.LevelVerbose && !verbose {
			return
		}
		switch event.Level {
		case download.LevelError:
			errColor.Println("✗ " + event.Message)
		case download.LevelWarning:
			warnColor.Println("! " + event.Message)
		case download.LevelSuccess:
			okColor.Println("✓ " + event.Message)
		case download.LevelInfo:
			infoColor.Println("› " + event.Message)
		default:
			faintColor.Println("  " + event.Message)
		}
	})

	if err := ioutils.EnsureDir(settings.OutputDir); err != nil {
		errColor.Fprintf(os.Stderr, "Error creating output directory %s: %v\n", settings.OutputDir, err)
		return 1
	}

	// Clear corrupt stubs left by an interrupted earlier run.
	gate := verify.NewGate(settings.MinFileSize())
	if removed, err := gate.CleanupUndersized(settings.OutputDir); err == nil {
		for _, name := range removed {
			warnColor.Printf("Removed leftover corrupt file: %s\n", name)
		}
	}

	infoColor.Printf("Downloading %d track(s) to %s\n\n", len(refs), settings.OutputDir)

	stats := manager.RunBatch(ctx, refs)

	fmt.Println()
	printSummary(stats)

	if ctx.Err() != nil {
		fmt.Println("\nCancelled.")
		return 130
	}
	if !stats.AllSucceeded() {
		return 1
	}
	return 0
}

func printSummary(stats *model.BatchStats) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Total", "Succeeded", "Failed", "Via Fallback"})
	table.Append([]string{
		fmt.Sprint(stats.Total),
		fmt.Sprint(stats.Succeeded),
		fmt.Sprint(stats.Failed),
		fmt.Sprint(len(stats.FallbackUsed)),
	})
	table.Render()

	if len(stats.FallbackUsed) > 0 {
		fmt.Println()
		warnColor.Println("Fetched via fallback search, worth spot-checking:")
		for _, label := range stats.FallbackUsed {
			fmt.Println("  " + label)
		}
	}

	if len(stats.FailedRefs) > 0 {
		fmt.Println()
		errColor.Println("Failed tracks:")
		for _, ref := range stats.FailedRefs {
			fmt.Println("  " + ref.String())
		}
	}

	if stats.OutputDirEmpty {
		fmt.Println()
		errColor.Println("Output directory is empty despite the run; check the tool installation.")
	}
}

// Surfmate overlays keyboard-addressable hints on live browser pages.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	neturl "net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"surfmate/command"
	"surfmate/config"
	"surfmate/fetcher"
	"surfmate/hint"
	"surfmate/host"
	"surfmate/label"
	"surfmate/llm"
	"surfmate/nav"
	"surfmate/session"
	"surfmate/survey"
)

func main() {
	url := ""
	printMode := false
	renderMode := false
	initConfig := false
	headless := false
	attachWS := ""

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; {
		case arg == "-p" || arg == "--print":
			printMode = true
		case arg == "--render":
			renderMode = true
		case arg == "--headless":
			headless = true
		case arg == "--init-config":
			initConfig = true
		case arg == "--attach" && i+1 < len(args):
			i++
			attachWS = args[i]
		case strings.HasPrefix(arg, "--attach="):
			attachWS = strings.TrimPrefix(arg, "--attach=")
		case arg == "-h" || arg == "--help":
			printUsage()
			return
		default:
			if url == "" {
				url = arg
			}
		}
	}

	// Generate default config and exit
	if initConfig {
		fmt.Print(config.DefaultTOML())
		return
	}

	if printMode {
		if err := runPrint(url, renderMode); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(url, attachWS, headless); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Surfmate - Keyboard Hints for Real Browsers

Usage: surfmate [options] [url]

Options:
  -p, --print       Fetch a page and print its ranked survey (one-shot mode)
  --render          Render through headless Chrome before surveying (with -p)
  --attach WS_URL   Attach to a running browser's DevTools websocket
  --headless        Launch the driven browser headless
  --init-config     Output default config (redirect to ~/.config/surfmate/config.toml)
  -h, --help        Show this help

Examples:
  surfmate https://example.com     Launch a browser with hints on example.com
  surfmate --attach ws://127.0.0.1:9222/devtools/browser/<id>
  surfmate -p https://example.com  Print the survey to stdout
  surfmate --init-config > ~/.config/surfmate/config.toml

In the browser:
  f        dim the page and show numbered region hints
  1-9      enter a region, then a-z activates an element
  /        fuzzy-search the visible hints
  :        command line (:help lists commands)
  Escape   back out one level`)
}

// run drives a live browser session until the context ends.
func run(startURL, attachWS string, headless bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Logging.SlogLevel(),
	}))
	slog.SetDefault(logger)

	if startURL != "" && !strings.Contains(startURL, "://") {
		startURL = "https://" + startURL
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	h, err := host.NewChrome(ctx, host.ChromeOptions{
		AttachWS:   attachWS,
		ChromePath: cfg.Fetcher.ChromePath,
		UserAgent:  cfg.Fetcher.UserAgent,
		Headless:   headless,
		StartURL:   startURL,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	defer h.Close()

	labelClient := buildLabeler(cfg, logger)

	scfg := survey.DefaultConfig()
	scfg.PageCap = cfg.Survey.PageCap
	scfg.ContainerCap = cfg.Survey.ContainerCap
	scfg.MaxTextLen = cfg.Survey.MaxTextLen
	surveyor := survey.New(h, scfg, logger)

	// A nil *label.Client must stay a nil interface, or the machine would
	// call Label on a nil receiver instead of falling back to heuristics.
	var labeler nav.Labeler
	if labelClient != nil {
		labeler = labelClient
	}

	machine := nav.New(h, surveyor, labeler, nav.Options{
		Keys: nav.Keys{
			Activate: cfg.Keys.Activate,
			Follow:   cfg.Keys.Follow,
			Command:  cfg.Keys.Command,
		},
		HintConfig: hint.Config{
			Padding:       cfg.Hints.Padding,
			MaxIterations: cfg.Hints.MaxIterations,
			OffscreenFade: cfg.Hints.OffscreenFade,
		},
		ViewportDelay: time.Duration(cfg.Engine.ViewportDelayMs) * time.Millisecond,
		SettleDelay:   time.Duration(cfg.Engine.SettleDelayMs) * time.Millisecond,
		LabelsEnabled: cfg.Labeling.Enabled && labelClient != nil,
		Logger:        logger,
	})

	sessDir, err := session.DefaultDir()
	if err != nil {
		return fmt.Errorf("resolving session directory: %w", err)
	}
	store := session.NewStore(sessDir)

	labelsOn := cfg.Labeling.Enabled && labelClient != nil
	machine.SetCommandRunner(commandRunner(machine, h, store, labelClient, labelsOn, stop))

	logger.Info("session ready", "url", startURL, "remote", attachWS != "")
	if err := machine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

const commandHelp = "save [name]  load [name]  sessions  delete <name>  relabel  labels [on|off]  open <url>  quit"

// commandRunner wires colon commands to the session store, the label cache
// and the browser. The machine calls it from its own goroutine, so session
// methods are safe to touch directly.
func commandRunner(m *nav.Machine, h *host.Chrome, store *session.Store, labels *label.Client, labelsOn bool, quit func()) func(context.Context, string) string {
	return func(ctx context.Context, line string) string {
		res := command.Parse(line)
		switch res.Kind {
		case command.KindNone:
			return ""

		case command.KindHelp:
			return commandHelp

		case command.KindQuit:
			quit()
			return ""

		case command.KindSave:
			page, ok := m.AnnotationSnapshot()
			if !ok {
				return "nothing to save, activate a page first"
			}
			name := res.Name
			if name == "" {
				name = defaultSessionName(m.PageURL())
			}
			if err := store.Save(&session.Snapshot{Name: name, URL: m.PageURL(), Page: *page}); err != nil {
				return "save failed: " + err.Error()
			}
			return "saved " + name

		case command.KindLoad:
			snap, err := store.Load(res.Name)
			if errors.Is(err, session.ErrNotFound) {
				return "no matching session"
			}
			if err != nil {
				return "load failed: " + err.Error()
			}
			m.RestoreAnnotations(ctx, &snap.Page)
			return "loaded " + snap.Name

		case command.KindDelete:
			err := store.Delete(res.Name)
			if errors.Is(err, session.ErrNotFound) {
				return "no session named " + res.Name
			}
			if err != nil {
				return "delete failed: " + err.Error()
			}
			return "deleted " + res.Name

		case command.KindSessions:
			snaps, err := store.List()
			if err != nil {
				return "sessions: " + err.Error()
			}
			if len(snaps) == 0 {
				return "no saved sessions"
			}
			names := make([]string, len(snaps))
			for i, s := range snaps {
				names[i] = s.Name
			}
			return strings.Join(names, "  ")

		case command.KindRelabel:
			if labels != nil {
				labels.Invalidate(m.PageURL())
			}
			m.Relabel(ctx)
			return ""

		case command.KindLabels:
			on := res.On
			if res.Toggle {
				on = !labelsOn
			}
			labelsOn = on
			m.SetLabelsEnabled(on)
			if on {
				return "labels on"
			}
			return "labels off"

		case command.KindNavigate:
			if err := h.Navigate(ctx, res.URL); err != nil {
				return "open failed: " + err.Error()
			}
			return ""
		}
		return "unknown command: " + res.Raw
	}
}

// defaultSessionName derives a session name from the page URL host.
func defaultSessionName(raw string) string {
	parsed, err := neturl.Parse(raw)
	if err != nil || parsed.Host == "" {
		return "page"
	}
	return strings.TrimPrefix(parsed.Host, "www.")
}

// buildLabeler assembles the model-backed label client, or nil when labeling
// is disabled or no provider is reachable. A nil client is not an error: the
// engine runs fine on heuristic labels.
func buildLabeler(cfg *config.Config, logger *slog.Logger) *label.Client {
	if !cfg.Labeling.Enabled {
		return nil
	}

	model := llm.NewClient(
		llm.NewClaudeCLI(),   // Prefer the local CLI (free for CLI users)
		llm.NewClaudeAPI(""), // Fall back to the API if a key is set
	)
	if cfg.Labeling.Provider != "" && !model.SetPreferred(cfg.Labeling.Provider) {
		logger.Warn("labeling: preferred provider unavailable", "provider", cfg.Labeling.Provider)
	}
	if !model.Available() {
		logger.Warn("labeling: no model provider available, falling back to heuristic labels")
		return nil
	}

	cacheDir := ""
	if dir, err := os.UserCacheDir(); err == nil {
		cacheDir = filepath.Join(dir, "surfmate", "labels")
	}

	client, err := label.NewClient(model, label.Options{
		Timeout:  time.Duration(cfg.Labeling.TimeoutSeconds) * time.Second,
		Retries:  cfg.Labeling.Retries,
		CacheDir: cacheDir,
		CacheTTL: time.Duration(cfg.Labeling.CacheTTLDays) * 24 * time.Hour,
		Logger:   logger,
	})
	if err != nil {
		logger.Warn("labeling: client init failed, falling back to heuristic labels", "err", err)
		return nil
	}
	return client
}

// runPrint fetches a page without a browser session and prints the ranked
// survey: the same candidate list a live session would hand to the labeler.
func runPrint(target string, rendered bool) error {
	if target == "" {
		return fmt.Errorf("print mode needs a URL")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	fetcher.Configure(fetcher.Options{
		UserAgent:      cfg.Fetcher.UserAgent,
		TimeoutSeconds: cfg.Fetcher.TimeoutSeconds,
		ChromePath:     cfg.Fetcher.ChromePath,
	})

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !strings.Contains(target, "://") {
		target = "https://" + target
	}

	var result *fetcher.FetchResult
	if rendered {
		result, err = fetcher.Rendered(ctx, target)
	} else {
		result, err = fetcher.Simple(ctx, target)
	}
	if err != nil {
		return err
	}

	h, err := host.NewStatic(result.HTML, result.FinalURL)
	if err != nil {
		return fmt.Errorf("parsing page: %w", err)
	}

	scfg := survey.DefaultConfig()
	scfg.PageCap = cfg.Survey.PageCap
	scfg.ContainerCap = cfg.Survey.ContainerCap
	scfg.MaxTextLen = cfg.Survey.MaxTextLen
	ds, err := survey.New(h, scfg, logger).Run(ctx, host.DocumentRef, survey.ModePage)
	if err != nil {
		return fmt.Errorf("surveying page: %w", err)
	}

	fmt.Printf("%s  (%d candidates in %s)\n\n", result.FinalURL, len(ds), result.FetchTime.Round(time.Millisecond))

	textW := terminalWidth() / 3
	if textW < 24 {
		textW = 24
	}
	if textW > 60 {
		textW = 60
	}
	for _, d := range ds {
		sel := d.Selector
		if d.Occurrence > 0 {
			sel = fmt.Sprintf("%s [%d]", sel, d.Occurrence)
		}
		fmt.Printf("%-9s %5d  %-*s  %s\n", d.Category, d.Score, textW, clip(d.Text, textW), sel)
	}
	return nil
}

// terminalWidth reports the stdout column count, or a sane default when
// stdout is not a terminal.
func terminalWidth() int {
	ws, err := unix.IoctlGetWinsize(int(os.Stdout.Fd()), unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 {
		return 100
	}
	return int(ws.Col)
}

func clip(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

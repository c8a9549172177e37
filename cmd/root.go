// Package cmd wires the CLI: input handling, configuration, persistence,
// and the terminal frontend.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aanujkhurana/backlog-reader/internal/config"
	"github.com/aanujkhurana/backlog-reader/internal/document"
	"github.com/aanujkhurana/backlog-reader/internal/extract"
	"github.com/aanujkhurana/backlog-reader/internal/playback"
	"github.com/aanujkhurana/backlog-reader/internal/state"
	"github.com/aanujkhurana/backlog-reader/internal/tui"
)

// Version info (injected via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	wpmFlag     int
	cfgPath     string
	freshStart  bool
	verbose     bool
	quiet       bool
	showVersion bool
)

var rootCmd = &cobra.Command{
	Use:   "backlog-reader [file]",
	Short: "Read documents one word at a time at a controllable pace",
	Long: `Backlog-reader presents prose one word at a time (RSVP), with dwell
times adjusted per word for length, punctuation, and document structure.
It reads plain text, Markdown, EPUB, and PDF files, or text piped to stdin,
and remembers where you left off per file.`,
	Args: cobra.MaximumNArgs(1),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
	RunE: run,
	Example: `  backlog-reader notes.md            Read a file at the saved or default speed
  backlog-reader --wpm 500 book.epub Read an EPUB at 500 WPM
  cat report.txt | backlog-reader    Read from stdin`,
}

func setupLogging() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	if quiet {
		level = slog.LevelError
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func run(cmd *cobra.Command, args []string) error {
	if showVersion {
		fmt.Printf("backlog-reader %s (commit: %s, built: %s)\n", version, commit, date)
		return nil
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	text, title, sourceFile, err := readInput(args)
	if err != nil {
		return err
	}

	doc, err := document.Structure(text, title, cfg)
	if err != nil {
		return err
	}
	slog.Debug("document structured",
		"id", doc.ID, "words", doc.TotalWords, "sections", len(doc.Sections))

	// Restore per-file position and speed unless starting fresh.
	var store *state.Store
	var hash string
	startPos := 0
	if sourceFile != "" {
		if s, err := state.NewStore(); err == nil {
			store = s
			if h, err := state.ComputeHash(sourceFile); err == nil {
				hash = h
				if !freshStart {
					saved := store.Get(hash)
					if saved.WordIndex > 0 && saved.WordIndex < doc.TotalWords {
						startPos = saved.WordIndex
					}
					if saved.WPM > 0 && !cmd.Flags().Changed("wpm") {
						cfg.Playback.DefaultWPM = saved.WPM
					}
				}
			}
		}
	}
	if cmd.Flags().Changed("wpm") {
		cfg.Playback.DefaultWPM = wpmFlag
	}

	engine := playback.NewEngine(cfg.Playback, slog.Default())
	res, err := tui.Run(engine, doc, startPos, cfg.Playback.DefaultWPM)
	if err != nil {
		return err
	}

	if store != nil && hash != "" {
		if res.Completed {
			_ = store.Clear(hash)
		} else {
			_ = store.Set(hash, state.ReadingState{WordIndex: res.LastPosition, WPM: res.WPM})
		}
	}
	return nil
}

// readInput returns the raw text, a display title, and the source path
// (empty for stdin).
func readInput(args []string) (text, title, sourceFile string, err error) {
	if len(args) > 0 {
		sourceFile = args[0]
		text, err = extract.Text(sourceFile)
		if err != nil {
			return "", "", "", fmt.Errorf("read %s: %w", sourceFile, err)
		}
		base := filepath.Base(sourceFile)
		title = strings.TrimSuffix(base, filepath.Ext(base))
		return text, title, sourceFile, nil
	}

	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) != 0 {
		return "", "", "", fmt.Errorf("no input: provide a file or pipe text to stdin")
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", "", "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), "stdin", "", nil
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Flags().IntVarP(&wpmFlag, "wpm", "w", 300, "words per minute")
	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to a YAML tuning config")
	rootCmd.Flags().BoolVar(&freshStart, "fresh", false, "ignore saved reading position")
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "show version information")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")

	rootCmd.SetHelpTemplate(rootCmd.HelpTemplate() +
		"\nSupported formats:\n  " + strings.Join(extract.SupportedFormats(), "\n  ") + "\n")
}

package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/treediff-go/config"
	"github.com/masmgr/treediff-go/internal/git"
	"github.com/masmgr/treediff-go/internal/output"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "treediff",
		Usage:   "Per-path text and binary diffs between git trees",
		Version: "0.3.0",
		Commands: []*cli.Command{
			DiffCmd(),
			ShowCmd(),
			LogCmd(),
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
			},
		},
	}
}

// Common flags shared across commands
func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "repo",
			Aliases: []string{"r"},
			Usage:   "Path to Git repository",
			Value:   ".",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format (console, json, csv, markdown, ci)",
			Value:   "console",
		},
		&cli.IntFlag{
			Name:    "top",
			Aliases: []string{"n"},
			Usage:   "Maximum number of entries to show (0 for all)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output file path (default: stdout, .gz compresses)",
		},
	}
}

// diffFlags are the flags of commands that produce diff records.
func diffFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "rename-detect",
			Usage: "Rename detection mode (off, simple, aggressive)",
		},
		&cli.StringSliceFlag{
			Name:  "include",
			Usage: "Glob patterns to include (can be specified multiple times)",
		},
		&cli.StringSliceFlag{
			Name:  "exclude",
			Usage: "Glob patterns to exclude (can be specified multiple times)",
		},
		&cli.IntFlag{
			Name:    "unified",
			Aliases: []string{"U"},
			Usage:   "Lines of context in diff bodies (default from config)",
		},
		&cli.BoolFlag{
			Name:  "ordered",
			Usage: "Keep change order instead of listing text diffs before binary ones",
		},
		&cli.StringFlag{
			Name:  "backend",
			Usage: "Tree diff backend (go-git, git)",
		},
		&cli.BoolFlag{
			Name:  "stat",
			Usage: "Show only per-path statistics, without diff bodies",
		},
	}
}

// parseDateFlag parses a date string flag.
func parseDateFlag(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", s)
	}
	return &t, nil
}

// parseRenameDetectFlag maps a rename-detect flag value to a mode.
func parseRenameDetectFlag(s string) (git.RenameDetectMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "off", "false", "none":
		return git.RenameDetectOff, nil
	case "simple", "exact", "auto":
		return git.RenameDetectSimple, nil
	case "aggressive", "similarity":
		return git.RenameDetectAggressive, nil
	default:
		return git.RenameDetectOff, fmt.Errorf("invalid rename-detect mode %q (expected off, simple or aggressive)", s)
	}
}

// getOutputFormat parses the output format flag.
func getOutputFormat(s string) output.OutputFormat {
	switch s {
	case "json":
		return output.FormatJSON
	case "csv":
		return output.FormatCSV
	case "markdown", "md":
		return output.FormatMarkdown
	case "ci", "ndjson":
		return output.FormatCI
	default:
		return output.FormatConsole
	}
}

// loadConfig loads configuration from file or defaults, then applies
// command-line overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if includes := c.StringSlice("include"); len(includes) > 0 {
		cfg.Filters.Include = includes
	}
	if excludes := c.StringSlice("exclude"); len(excludes) > 0 {
		cfg.Filters.Exclude = excludes
	}
	if c.IsSet("rename-detect") {
		mode, err := parseRenameDetectFlag(c.String("rename-detect"))
		if err != nil {
			return nil, err
		}
		cfg.Diff.RenameDetect = mode.String()
	}
	if c.IsSet("backend") {
		cfg.Diff.Backend = c.String("backend")
	}
	if c.IsSet("unified") {
		cfg.Diff.ContextLines = c.Int("unified")
	}
	if c.Bool("ordered") {
		cfg.Diff.PreserveOrder = true
	}
	if level := c.String("log-level"); level != "" {
		cfg.Log.Level = level
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Run executes the CLI application.
func Run() {
	if err := App().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

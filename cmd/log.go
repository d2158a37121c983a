package cmd

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/masmgr/treediff-go/internal/git"
	"github.com/masmgr/treediff-go/internal/output"
	"github.com/masmgr/treediff-go/internal/summary"
)

// LogCmd creates the log command.
func LogCmd() *cli.Command {
	return &cli.Command{
		Name:  "log",
		Usage: "List commit summaries, newest first",
		Flags: append(commonFlags(),
			&cli.StringFlag{
				Name:    "branch",
				Aliases: []string{"b"},
				Usage:   "Branch or revision to walk (default HEAD)",
			},
			&cli.StringFlag{
				Name:  "since",
				Usage: "Only commits after this date (YYYY-MM-DD)",
			},
			&cli.StringFlag{
				Name:  "until",
				Usage: "Only commits before this date (YYYY-MM-DD)",
			},
			&cli.StringSliceFlag{
				Name:  "grep",
				Usage: "Only commits whose message matches the regex (case-insensitive, repeatable)",
			},
			&cli.IntFlag{
				Name:  "max-count",
				Usage: "Maximum number of commits to read (0 for all)",
			},
		),
		Action: logAction,
	}
}

func logAction(c *cli.Context) error {
	since, err := parseDateFlag(c.String("since"))
	if err != nil {
		return fmt.Errorf("invalid since date: %w", err)
	}
	until, err := parseDateFlag(c.String("until"))
	if err != nil {
		return fmt.Errorf("invalid until date: %w", err)
	}

	filter, err := summary.NewMessageFilter(c.StringSlice("grep"))
	if err != nil {
		return err
	}

	cc, err := NewCommandContext(c)
	if err != nil {
		return err
	}
	defer cc.Close()

	reader := git.NewHistoryReader(cc.Store, git.LogOptions{
		Branch:   c.String("branch"),
		Since:    since,
		Until:    until,
		MaxCount: c.Int("max-count"),
	})
	commits, err := reader.ReadCommits(c.Context)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	records := make([]summary.CommitRecord, len(commits))
	for i, commit := range commits {
		records[i] = summary.SummarizeObject(commit)
	}
	records = filter.Filter(records)
	cc.Logger.Debug("read history", zap.Int("commits", len(commits)), zap.Int("matched", len(records)))

	if len(records) == 0 {
		fmt.Fprintln(c.App.Writer, "No commits found in the specified range.")
		return nil
	}

	return writeCommitReport(c, &output.CommitReport{
		RepoPath:    cc.RepoPath,
		GeneratedAt: time.Now(),
		Commits:     records,
	})
}

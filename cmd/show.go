package cmd

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/treediff-go/internal/output"
	"github.com/masmgr/treediff-go/internal/summary"
)

// ShowCmd creates the show command.
func ShowCmd() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Summarize a commit, optionally with its diff against the first parent",
		ArgsUsage: "[<rev>]",
		Flags: append(append(commonFlags(), diffFlags()...),
			&cli.BoolFlag{
				Name:    "patch",
				Aliases: []string{"p"},
				Usage:   "Print the commit's classic patch after the summary",
			},
		),
		Action: showAction,
	}
}

func showAction(c *cli.Context) error {
	if c.NArg() > 1 {
		return fmt.Errorf("expected at most one revision argument, got %d", c.NArg())
	}
	rev := c.Args().First()
	if rev == "" {
		rev = "HEAD"
	}

	cc, err := NewCommandContext(c)
	if err != nil {
		return err
	}
	defer cc.Close()

	commit, err := cc.Store.ResolveCommit(rev)
	if err != nil {
		return err
	}

	report := &output.CommitReport{
		RepoPath:    cc.RepoPath,
		GeneratedAt: time.Now(),
		Commits:     []summary.CommitRecord{summary.SummarizeObject(commit)},
	}
	if err := writeCommitReport(c, report); err != nil {
		return err
	}

	if !c.Bool("patch") {
		return nil
	}
	diff, err := treeDiffReport(c.Context, cc, commit.Hash.String())
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(c.App.Writer); err != nil {
		return err
	}
	return printClassic(c, diff.Records)
}

package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/masmgr/treediff-go/internal/git"
	"github.com/masmgr/treediff-go/internal/output"
	"github.com/masmgr/treediff-go/internal/treediff"
)

const workingTreeLabel = "(working tree)"

// DiffCmd creates the diff command.
func DiffCmd() *cli.Command {
	return &cli.Command{
		Name:      "diff",
		Usage:     "Diff two trees, text paths as unified diffs and binary paths by descriptor",
		ArgsUsage: "[<rev> | <base>..<head> | <base>...<head>]",
		Flags: append(append(commonFlags(), diffFlags()...),
			&cli.BoolFlag{
				Name:    "working",
				Aliases: []string{"w"},
				Usage:   "Compare the working tree against the revision (default HEAD)",
			},
			&cli.BoolFlag{
				Name:  "untracked",
				Usage: "Include untracked files in working tree diffs",
			},
			&cli.BoolFlag{
				Name:  "classic",
				Usage: "Print plain git-style patch text instead of a report",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Re-run the working tree diff whenever files change",
			},
		),
		Action: diffAction,
	}
}

func diffAction(c *cli.Context) error {
	if c.NArg() > 1 {
		return fmt.Errorf("expected at most one revision argument, got %d", c.NArg())
	}

	cc, err := NewCommandContext(c)
	if err != nil {
		return err
	}
	defer cc.Close()

	spec := c.Args().First()
	working := c.Bool("working") || c.Bool("watch") || spec == ""

	if working {
		if strings.Contains(spec, "..") {
			return fmt.Errorf("working tree diffs take a single revision, got %q", spec)
		}
		if spec == "" {
			spec = "HEAD"
		}
		if c.Bool("watch") {
			return watchWorkingTree(c, cc, spec)
		}
		report, err := workingDiffReport(c.Context, cc, spec, c.Bool("untracked"))
		if err != nil {
			return err
		}
		return emitDiff(c, report)
	}

	report, err := treeDiffReport(c.Context, cc, spec)
	if err != nil {
		return err
	}
	return emitDiff(c, report)
}

func emitDiff(c *cli.Context, report *output.DiffReport) error {
	if c.Bool("classic") {
		return printClassic(c, report.Records)
	}
	return writeDiffReport(c, report)
}

// treeDiffReport diffs the two trees named by spec.
func treeDiffReport(ctx context.Context, cc *CommandContext, spec string) (*output.DiffReport, error) {
	base, head, err := resolveRange(cc, spec)
	if err != nil {
		return nil, err
	}

	oldTree, err := treeOf(cc, base)
	if err != nil {
		return nil, err
	}
	newTree, err := cc.Store.ResolveTree(head)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	records, err := cc.Dispatcher.TreeDiff(ctx, cc.Objects, oldTree, newTree)
	if err != nil {
		return nil, err
	}
	cc.Logger.Info("tree diff complete",
		zap.String("base", base),
		zap.String("head", head),
		zap.Int("records", len(records)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &output.DiffReport{
		RepoPath:    cc.RepoPath,
		Base:        displayRev(base),
		Head:        head,
		GeneratedAt: time.Now(),
		Records:     records,
	}, nil
}

// workingDiffReport diffs the tree of rev against the working tree.
func workingDiffReport(ctx context.Context, cc *CommandContext, rev string, untracked bool) (*output.DiffReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tree, err := cc.Store.ResolveTree(rev)
	if err != nil {
		return nil, err
	}
	changes, fs, err := cc.Store.WorkingChanges(tree, untracked)
	if err != nil {
		return nil, fmt.Errorf("failed to read working tree status: %w", err)
	}

	records, err := cc.Dispatcher.DiffChangesWorking(cc.Store, fs, changes)
	if err != nil {
		return nil, err
	}
	cc.Logger.Info("working tree diff complete",
		zap.String("base", rev),
		zap.Int("records", len(records)),
	)

	return &output.DiffReport{
		RepoPath:    cc.RepoPath,
		Base:        rev,
		Head:        workingTreeLabel,
		GeneratedAt: time.Now(),
		Records:     records,
	}, nil
}

// resolveRange turns a diff argument into base and head revisions. A single
// revision is compared against its first parent; the base is empty for a
// root commit.
func resolveRange(cc *CommandContext, spec string) (base, head string, err error) {
	if !strings.Contains(spec, "..") {
		commit, err := cc.Store.ResolveCommit(spec)
		if err != nil {
			return "", "", err
		}
		if commit.NumParents() == 0 {
			return "", commit.Hash.String(), nil
		}
		return commit.ParentHashes[0].String(), commit.Hash.String(), nil
	}

	base, head, mergeBase, err := git.ParseDiffSpec(spec)
	if err != nil {
		return "", "", err
	}
	if !mergeBase {
		return base, head, nil
	}

	baseCommit, err := cc.Store.ResolveCommit(base)
	if err != nil {
		return "", "", err
	}
	headCommit, err := cc.Store.ResolveCommit(head)
	if err != nil {
		return "", "", err
	}
	mb, err := cc.Store.MergeBase(baseCommit, headCommit)
	if err != nil {
		return "", "", err
	}
	cc.Logger.Debug("using merge base", zap.String("mergeBase", mb.Hash.String()))
	return mb.Hash.String(), head, nil
}

// treeOf resolves rev to a tree hash; the empty revision is the empty tree.
func treeOf(cc *CommandContext, rev string) (plumbing.Hash, error) {
	if rev == "" {
		return plumbing.ZeroHash, nil
	}
	return cc.Store.ResolveTree(rev)
}

func displayRev(rev string) string {
	if rev == "" {
		return "(empty tree)"
	}
	return rev
}

// printClassic writes records in the classic git diff layout.
func printClassic(c *cli.Context, records []treediff.DiffRecord) error {
	_, err := fmt.Fprint(c.App.Writer, treediff.ClassicTreeDiff(records))
	return err
}

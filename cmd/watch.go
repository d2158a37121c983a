package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/treediff-go/internal/watch"
)

// watchWorkingTree reruns the working tree diff against rev whenever files
// in the worktree change, until interrupted.
func watchWorkingTree(c *cli.Context, cc *CommandContext, rev string) error {
	wt, err := cc.Store.Repository().Worktree()
	if err != nil {
		return fmt.Errorf("watch needs a worktree: %w", err)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	untracked := c.Bool("untracked")
	w, err := watch.New(watch.Options{
		Root:     wt.Filesystem.Root(),
		Debounce: time.Duration(cc.Config.Watch.DebounceMillis) * time.Millisecond,
		Logger:   cc.Logger,
		OnChange: func(ctx context.Context) error {
			report, err := workingDiffReport(ctx, cc, rev, untracked)
			if err != nil {
				return err
			}
			return emitDiff(c, report)
		},
	})
	if err != nil {
		return err
	}
	return w.Run(ctx)
}

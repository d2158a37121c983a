package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/masmgr/treediff-go/internal/output"
)

func writeDiffReport(c *cli.Context, report *output.DiffReport) error {
	opts := OutputOptions(c)
	writer := output.NewDiffReportWriter(opts.Format)
	return writer.Write(report, opts)
}

func writeCommitReport(c *cli.Context, report *output.CommitReport) error {
	opts := OutputOptions(c)
	writer := output.NewCommitReportWriter(opts.Format)
	return writer.Write(report, opts)
}

package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/masmgr/treediff-go/internal/treediff"
)

// ConsoleDiffWriter writes diff reports to the console.
type ConsoleDiffWriter struct{}

// Write outputs the diff report to the console.
func (w *ConsoleDiffWriter) Write(report *DiffReport, options OutputOptions) error {
	return withOutput(options.OutputPath, func(out io.Writer) error {
		records := limitTop(report.Records, options.Top)

		fmt.Fprintln(out, color.GreenString("Tree Diff Results"))
		fmt.Fprintf(out, "Repository: %s\n", report.RepoPath)
		fmt.Fprintf(out, "Range: %s\n", rangeLabel(report))
		fmt.Fprintf(out, "Total changes: %d\n\n", len(report.Records))

		if len(records) == 0 {
			fmt.Fprintln(out, "No changes.")
			return nil
		}

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "#\tStatus\tPath\tType\t+\t-")
		for i, r := range records {
			added, deleted := diffStats(r.Text)
			status := recordStatus(r)
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\n",
				i+1,
				getStatusColor(status)(status),
				recordLabel(r),
				r.Kind,
				added,
				deleted,
			)
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		if options.StatOnly {
			return nil
		}
		for _, r := range records {
			fmt.Fprintln(out)
			if r.Kind == treediff.KindBinary {
				fmt.Fprintln(out, color.New(color.Bold).Sprintf("Binary files differ: %s", recordLabel(r)))
				continue
			}
			writeColoredDiff(out, r.Text)
		}
		return nil
	})
}

// ConsoleCommitWriter writes commit summaries to the console.
type ConsoleCommitWriter struct{}

// Write outputs the commit report to the console.
func (w *ConsoleCommitWriter) Write(report *CommitReport, options OutputOptions) error {
	return withOutput(options.OutputPath, func(out io.Writer) error {
		for i, c := range limitTop(report.Commits, options.Top) {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintln(out, color.YellowString("commit %s", c.SHA))
			fmt.Fprintf(out, "Author:    %s\n", c.Author.Raw)
			if c.Committer.Raw != c.Author.Raw {
				fmt.Fprintf(out, "Committer: %s\n", c.Committer.Raw)
			}
			fmt.Fprintf(out, "Date:      %s\n", commitTime(c.Time, c.Timezone).Format("Mon Jan 2 15:04:05 2006 -0700"))
			fmt.Fprintln(out)
			fmt.Fprintf(out, "    %s\n", c.Summary)
			if c.Description != "" {
				fmt.Fprintln(out)
				for _, line := range strings.Split(c.Description, "\n") {
					fmt.Fprintf(out, "    %s\n", line)
				}
			}
		}
		return nil
	})
}

// Helper functions

func writeColoredDiff(out io.Writer, text string) {
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	inHunk := false
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "@@"):
			inHunk = true
			fmt.Fprintln(out, color.CyanString("%s", line))
		case !inHunk:
			fmt.Fprintln(out, color.New(color.Bold).Sprint(line))
		case strings.HasPrefix(line, "+"):
			fmt.Fprintln(out, color.GreenString("%s", line))
		case strings.HasPrefix(line, "-"):
			fmt.Fprintln(out, color.RedString("%s", line))
		default:
			fmt.Fprintln(out, line)
		}
	}
}

func truncateMessage(msg string, maxLen int) string {
	if len(msg) <= maxLen {
		return msg
	}
	return msg[:maxLen-3] + "..."
}

func getStatusColor(status string) func(string, ...interface{}) string {
	switch status {
	case "added":
		return color.GreenString
	case "deleted":
		return color.RedString
	case "renamed":
		return color.CyanString
	default:
		return color.YellowString
	}
}

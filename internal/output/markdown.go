package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/masmgr/treediff-go/internal/treediff"
)

// MarkdownDiffWriter writes diff reports as Markdown.
type MarkdownDiffWriter struct{}

// Write outputs the diff report as Markdown.
func (w *MarkdownDiffWriter) Write(report *DiffReport, options OutputOptions) error {
	return withOutput(options.OutputPath, func(out io.Writer) error {
		records := limitTop(report.Records, options.Top)

		fmt.Fprintln(out, "# Tree Diff Results")
		fmt.Fprintln(out)
		fmt.Fprintf(out, "**Repository:** %s\n\n", report.RepoPath)
		fmt.Fprintf(out, "**Range:** `%s`\n\n", rangeLabel(report))
		fmt.Fprintf(out, "**Total Changes:** %d\n\n", len(report.Records))

		fmt.Fprintln(out, "## Changes")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "| # | Status | Path | Type | + | - |")
		fmt.Fprintln(out, "|---|--------|------|------|---|---|")
		for i, r := range records {
			added, deleted := diffStats(r.Text)
			fmt.Fprintf(out, "| %d | %s %s | `%s` | %s | %d | %d |\n",
				i+1, getStatusEmoji(recordStatus(r)), recordStatus(r),
				escapeMarkdown(recordLabel(r)), r.Kind, added, deleted)
		}

		if options.StatOnly {
			return nil
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, "## Diffs")
		for _, r := range records {
			fmt.Fprintln(out)
			fmt.Fprintf(out, "### `%s`\n\n", recordLabel(r))
			if r.Kind == treediff.KindBinary {
				fmt.Fprintln(out, "_Binary file, no textual diff._")
				continue
			}
			if r.Text == "" {
				fmt.Fprintln(out, "_No content changes._")
				continue
			}
			fence := codeFence(r.Text)
			fmt.Fprintln(out, fence+"diff")
			fmt.Fprint(out, r.Text)
			if !strings.HasSuffix(r.Text, "\n") {
				fmt.Fprintln(out)
			}
			fmt.Fprintln(out, fence)
		}
		return nil
	})
}

// MarkdownCommitWriter writes commit summaries as Markdown.
type MarkdownCommitWriter struct{}

// Write outputs the commit report as Markdown.
func (w *MarkdownCommitWriter) Write(report *CommitReport, options OutputOptions) error {
	return withOutput(options.OutputPath, func(out io.Writer) error {
		commits := limitTop(report.Commits, options.Top)

		fmt.Fprintln(out, "# Commits")
		fmt.Fprintln(out)
		fmt.Fprintf(out, "**Repository:** %s\n\n", report.RepoPath)

		fmt.Fprintln(out, "| SHA | Date | Author | Summary |")
		fmt.Fprintln(out, "|-----|------|--------|---------|")
		for _, c := range commits {
			fmt.Fprintf(out, "| `%s` | %s | %s | %s |\n",
				shortSHA(c.SHA),
				commitTime(c.Time, c.Timezone).Format(reportDateTimeLayout),
				escapeMarkdown(c.Author.Name),
				escapeMarkdown(truncateMessage(c.Summary, 60)))
		}

		for _, c := range commits {
			if c.Description == "" {
				continue
			}
			fmt.Fprintln(out)
			fmt.Fprintf(out, "## %s\n\n", escapeMarkdown(c.Summary))
			fmt.Fprintln(out, c.Description)
		}
		return nil
	})
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}

// codeFence returns a backtick fence longer than any run inside text.
func codeFence(text string) string {
	longest, run := 0, 0
	for _, r := range text {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	if longest < 3 {
		return "```"
	}
	return strings.Repeat("`", longest+1)
}

func getStatusEmoji(status string) string {
	switch status {
	case "added":
		return "🟢"
	case "deleted":
		return "🔴"
	case "renamed":
		return "🔵"
	default:
		return "🟡"
	}
}

func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		"|", "\\|",
		"*", "\\*",
		"_", "\\_",
		"`", "\\`",
	)
	return replacer.Replace(s)
}
